package realtime

import (
	"encoding/json"

	"github.com/CoreVine/nursy-backend/apperrors"
)

// CommandType enumerates every inbound command the gateway accepts. The
// dispatch switch over this set is exhaustive; unknown commands are rejected
// with a validation error.
type CommandType string

const (
	CmdCreate        CommandType = "requests.create"
	CmdSearch        CommandType = "requests.search"
	CmdFetch         CommandType = "requests.fetch"
	CmdAccept        CommandType = "requests.accept"
	CmdRefuse        CommandType = "requests.refuse"
	CmdCancel        CommandType = "requests.cancel"
	CmdJoinRoom      CommandType = "rooms.join"
	CmdInitPayment   CommandType = "payments.init"
	CmdAcceptPayment CommandType = "payments.accept"
)

// Result event names emitted back to clients.
const (
	EventCreated            = "requests.created"
	EventFetched            = "requests.fetched"
	EventAccepted           = "requests.accepted"
	EventRefused            = "requests.refused"
	EventCancelled          = "requests.cancelled"
	EventRoomJoined         = "rooms.joined"
	EventPaymentInitialized = "requests.paymentInitialized"
	EventPaymentAccepted    = "payments.accepted"
	// EventOrderUpdate is broadcast to the order room when the counterpart
	// changes the order.
	EventOrderUpdate = "requests.currentPatientRequest"
)

// Command is the envelope for every inbound message.
type Command struct {
	Type CommandType     `json:"command"`
	Data json.RawMessage `json:"data"`
}

// Event is the envelope for every outbound message.
type Event struct {
	Event   string      `json:"event"`
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *EventError `json:"error,omitempty"`
}

// EventError mirrors the HTTP error envelope for socket results.
type EventError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func successEvent(event string, data interface{}) Event {
	return Event{Event: event, Success: true, Data: data}
}

func errorEvent(event string, err error) Event {
	appErr := apperrors.From(err)
	return Event{
		Event:   event,
		Success: false,
		Error:   &EventError{Code: appErr.Code, Message: appErr.Message},
	}
}

// OrderRefPayload identifies an order for accept/refuse/cancel/room commands.
type OrderRefPayload struct {
	OrderID uint `json:"orderId" validate:"required,gt=0"`
}

// InitPaymentPayload starts payment for an accepted order.
type InitPaymentPayload struct {
	OrderID       uint   `json:"orderId" validate:"required,gt=0"`
	TotalHours    *int   `json:"totalHours" validate:"omitempty,gt=0"`
	PaymentMethod string `json:"paymentMethod" validate:"required,oneof=card cash"`
}

// AcceptPaymentPayload settles a pending cash payment.
type AcceptPaymentPayload struct {
	OrderID  uint  `json:"orderId" validate:"required,gt=0"`
	Accepted *bool `json:"accepted" validate:"required"`
}
