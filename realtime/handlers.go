package realtime

import (
	"encoding/json"

	"github.com/CoreVine/nursy-backend/apperrors"
	"github.com/CoreVine/nursy-backend/models"
	"github.com/CoreVine/nursy-backend/services"
)

// handleCommand routes one inbound command. Every branch traps its own errors
// and emits a {success:false, error} envelope to the invoking connection only;
// a failing command never affects other connections.
func (g *Gateway) handleCommand(client *Client, raw []byte) {
	var cmd Command
	if err := json.Unmarshal(raw, &cmd); err != nil {
		client.Emit(errorEvent("error", apperrors.Validation("Malformed command envelope")))
		return
	}

	switch cmd.Type {
	case CmdCreate:
		g.handleCreate(client, cmd.Data)
	case CmdSearch:
		g.handleSearch(client)
	case CmdFetch:
		g.handleFetch(client)
	case CmdAccept:
		g.handleAccept(client, cmd.Data)
	case CmdRefuse:
		g.handleRefuse(client, cmd.Data)
	case CmdCancel:
		g.handleCancel(client, cmd.Data)
	case CmdJoinRoom:
		g.handleJoinRoom(client, cmd.Data)
	case CmdInitPayment:
		g.handleInitPayment(client, cmd.Data)
	case CmdAcceptPayment:
		g.handleAcceptPayment(client, cmd.Data)
	default:
		client.Emit(errorEvent("error", apperrors.Validation("Unknown command")))
	}
}

// decodePayload unmarshals and validates a command payload.
func (g *Gateway) decodePayload(data json.RawMessage, dst interface{}) error {
	if len(data) == 0 {
		return apperrors.Validation("Missing command payload")
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return apperrors.Validation("Malformed command payload")
	}
	if err := g.validate.Struct(dst); err != nil {
		return apperrors.Validation(err.Error())
	}
	return nil
}

func (g *Gateway) handleCreate(client *Client, data json.RawMessage) {
	var input services.CreateOrderInput
	if err := g.decodePayload(data, &input); err != nil {
		client.Emit(errorEvent(EventCreated, err))
		return
	}

	order, err := g.dispatch.Create(client.Principal, input)
	if err != nil {
		client.Emit(errorEvent(EventCreated, err))
		return
	}

	g.joinRoom(client, order.ID)
	client.Emit(successEvent(EventCreated, order))
}

func (g *Gateway) handleSearch(client *Client) {
	orders, err := g.matching.CandidatesForNurseID(client.Principal.ID)
	if err != nil {
		client.Emit(errorEvent(EventFetched, err))
		return
	}
	client.Emit(successEvent(EventFetched, orders))
}

func (g *Gateway) handleFetch(client *Client) {
	orders, err := g.matching.CandidatesForPatientID(client.Principal.ID)
	if err != nil {
		client.Emit(errorEvent(EventFetched, err))
		return
	}
	client.Emit(successEvent(EventFetched, orders))
}

// handleAccept routes by actor role: a nurse claiming a pending order, or a
// patient confirming the claiming nurse.
func (g *Gateway) handleAccept(client *Client, data json.RawMessage) {
	var payload OrderRefPayload
	if err := g.decodePayload(data, &payload); err != nil {
		client.Emit(errorEvent(EventAccepted, err))
		return
	}

	var order *models.Order
	var err error
	switch client.Principal.Type {
	case models.UserTypeNurse:
		order, err = g.dispatch.NurseAccept(client.Principal, payload.OrderID)
	case models.UserTypePatient:
		order, err = g.dispatch.PatientAccept(client.Principal, payload.OrderID)
	default:
		err = apperrors.Forbidden("Unknown user type")
	}
	if err != nil {
		client.Emit(errorEvent(EventAccepted, err))
		return
	}

	g.joinRoom(client, order.ID)
	client.Emit(successEvent(EventAccepted, order))
	g.emitToRoom(order.ID, client, successEvent(EventOrderUpdate, order))
}

// handleRefuse routes by actor role: a nurse refusing a pending order, or a
// patient rejecting the claiming nurse.
func (g *Gateway) handleRefuse(client *Client, data json.RawMessage) {
	var payload OrderRefPayload
	if err := g.decodePayload(data, &payload); err != nil {
		client.Emit(errorEvent(EventRefused, err))
		return
	}

	var order *models.Order
	var err error
	switch client.Principal.Type {
	case models.UserTypeNurse:
		order, err = g.dispatch.NurseRefuse(client.Principal, payload.OrderID)
	case models.UserTypePatient:
		order, err = g.dispatch.PatientRefuse(client.Principal, payload.OrderID)
	default:
		err = apperrors.Forbidden("Unknown user type")
	}
	if err != nil {
		client.Emit(errorEvent(EventRefused, err))
		return
	}

	client.Emit(successEvent(EventRefused, order))
	g.emitToRoom(order.ID, client, successEvent(EventOrderUpdate, order))
}

func (g *Gateway) handleCancel(client *Client, data json.RawMessage) {
	var payload OrderRefPayload
	if err := g.decodePayload(data, &payload); err != nil {
		client.Emit(errorEvent(EventCancelled, err))
		return
	}

	var err error
	switch client.Principal.Type {
	case models.UserTypeNurse:
		err = g.dispatch.NurseCancel(client.Principal, payload.OrderID)
	case models.UserTypePatient:
		err = g.dispatch.PatientCancel(client.Principal, payload.OrderID)
	default:
		err = apperrors.Forbidden("Unknown user type")
	}
	if err != nil {
		client.Emit(errorEvent(EventCancelled, err))
		return
	}

	confirmation := map[string]interface{}{"orderId": payload.OrderID, "deleted": true}
	client.Emit(successEvent(EventCancelled, confirmation))
	g.emitToRoom(payload.OrderID, client, successEvent(EventCancelled, confirmation))
	g.leaveRoom(client, payload.OrderID)
}

func (g *Gateway) handleJoinRoom(client *Client, data json.RawMessage) {
	var payload OrderRefPayload
	if err := g.decodePayload(data, &payload); err != nil {
		client.Emit(errorEvent(EventRoomJoined, err))
		return
	}

	order, err := g.dispatch.OrderForPrincipal(client.Principal, payload.OrderID)
	if err != nil {
		client.Emit(errorEvent(EventRoomJoined, err))
		return
	}

	g.joinRoom(client, order.ID)
	client.Emit(successEvent(EventRoomJoined, map[string]interface{}{"orderId": order.ID}))
}

func (g *Gateway) handleInitPayment(client *Client, data json.RawMessage) {
	var payload InitPaymentPayload
	if err := g.decodePayload(data, &payload); err != nil {
		client.Emit(errorEvent(EventPaymentInitialized, err))
		return
	}

	payment, err := g.payments.InitPayment(client.Principal, payload.OrderID, payload.TotalHours, payload.PaymentMethod)
	if err != nil {
		client.Emit(errorEvent(EventPaymentInitialized, err))
		return
	}

	client.Emit(successEvent(EventPaymentInitialized, payment))
	g.emitToRoom(payload.OrderID, client, successEvent(EventPaymentInitialized, payment))
}

func (g *Gateway) handleAcceptPayment(client *Client, data json.RawMessage) {
	var payload AcceptPaymentPayload
	if err := g.decodePayload(data, &payload); err != nil {
		client.Emit(errorEvent(EventPaymentAccepted, err))
		return
	}

	order, payment, err := g.payments.CashPaymentAccepted(client.Principal, payload.OrderID, *payload.Accepted)
	if err != nil {
		client.Emit(errorEvent(EventPaymentAccepted, err))
		return
	}

	result := map[string]interface{}{"order": order, "payment": payment}
	client.Emit(successEvent(EventPaymentAccepted, result))
	g.emitToRoom(order.ID, client, successEvent(EventPaymentAccepted, result))
}
