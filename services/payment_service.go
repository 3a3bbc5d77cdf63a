package services

import (
	"errors"
	"log"
	"net/url"
	"strings"

	"github.com/CoreVine/nursy-backend/apperrors"
	"github.com/CoreVine/nursy-backend/middleware"
	"github.com/CoreVine/nursy-backend/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// paymentCurrency is the only currency the gateway account is configured for.
const paymentCurrency = "EGP"

// PaymentService computes order cost, initializes gateway or cash payment,
// verifies gateway callbacks and drives the Accepted to Completed transition.
type PaymentService struct {
	db          *gorm.DB
	wallet      *WalletLedger
	gateway     KashierInterface
	hourlyRate  decimal.Decimal
	platformFee decimal.Decimal
}

// NewPaymentService creates a PaymentService with the configured pricing.
func NewPaymentService(db *gorm.DB, wallet *WalletLedger, gateway KashierInterface, hourlyRate, platformFee float64) *PaymentService {
	return &PaymentService{
		db:          db,
		wallet:      wallet,
		gateway:     gateway,
		hourlyRate:  decimal.NewFromFloat(hourlyRate),
		platformFee: decimal.NewFromFloat(platformFee),
	}
}

// InitPayment initializes payment for an Accepted order. Calling it again
// while a Pending payment exists returns that payment unchanged.
//
// Cash payments credit the nurse's wallet immediately, before completion is
// confirmed. That ordering is inherited behavior treated as an escrow-like
// advance; see DESIGN.md before changing it.
func (s *PaymentService) InitPayment(actor middleware.Principal, orderID uint, totalHours *int, method string) (*models.OrderPayment, error) {
	if method != models.PaymentMethodCard && method != models.PaymentMethodCash {
		return nil, apperrors.BadRequest("Payment method must be card or cash")
	}

	order, err := s.findOrder(orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != actor.ID {
		return nil, apperrors.Forbidden("You are not the owner of this order")
	}
	if order.Status != models.OrderStatusAccepted {
		return nil, apperrors.BadRequest("Order is not in accepted status")
	}
	if order.NurseID == nil {
		return nil, apperrors.BadRequest("Order has no assigned nurse")
	}

	totalAmount, err := s.computeAmount(order, totalHours)
	if err != nil {
		return nil, err
	}

	// Idempotency: an existing pending payment for this payer wins.
	var existing models.OrderPayment
	err = s.db.Where("order_id = ? AND user_id = ? AND status = ?",
		order.ID, actor.ID, models.PaymentStatusPending).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Database(err)
	}

	payment := models.OrderPayment{
		OrderID:       order.ID,
		UserID:        actor.ID,
		TotalAmount:   totalAmount,
		TotalHours:    totalHours,
		PaymentMethod: method,
		Status:        models.PaymentStatusPending,
	}

	if method == models.PaymentMethodCard {
		initResult, err := s.gateway.InitializePayment(totalAmount, paymentCurrency, order.ID)
		if err != nil {
			return nil, apperrors.BadRequest("Failed to initialize gateway payment")
		}
		payment.PaymentURL = &initResult.PaymentURL
		payment.KashierOrderID = &initResult.KashierOrderID
	}

	if err := s.db.Create(&payment).Error; err != nil {
		return nil, apperrors.Database(err)
	}

	if method == models.PaymentMethodCash {
		nurseID := *order.NurseID
		if _, err := s.wallet.Credit(nurseID, totalAmount, "Cash payment for order", models.ActorSystem); err != nil {
			return nil, err
		}
		if _, err := s.wallet.Debit(nurseID, s.platformFee, "Platform fee for order", models.ActorSystem); err != nil {
			return nil, err
		}
	}

	log.Printf("Payment %d initialized for order %d (%s, %s)", payment.ID, order.ID, method, totalAmount.String())
	return &payment, nil
}

// computeAmount prices the order: fixed specific-service price, or the hourly
// rate times the requested hours. Mismatched payment configuration is rejected.
func (s *PaymentService) computeAmount(order *models.Order, totalHours *int) (decimal.Decimal, error) {
	if order.SpecificServiceID != nil {
		if order.PaymentType != models.PaymentTypeServices {
			return decimal.Zero, apperrors.BadRequest("Specific service requires the services payment type")
		}
		var specific models.SpecificService
		if err := s.db.First(&specific, *order.SpecificServiceID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return decimal.Zero, apperrors.NotFound("Specific service not found")
			}
			return decimal.Zero, apperrors.Database(err)
		}
		return specific.Price, nil
	}

	if order.PaymentType != models.PaymentTypeHourly {
		return decimal.Zero, apperrors.BadRequest("Invalid payment type for order")
	}
	if totalHours == nil || *totalHours <= 0 {
		return decimal.Zero, apperrors.BadRequest("Total hours must be greater than zero for hourly orders")
	}
	return s.hourlyRate.Mul(decimal.NewFromInt(int64(*totalHours))), nil
}

// CashPaymentAccepted lets the assigned nurse settle a pending cash payment,
// completing the order. The payment is marked Paid or Refused per the
// nurse's decision.
func (s *PaymentService) CashPaymentAccepted(actor middleware.Principal, orderID uint, accepted bool) (*models.Order, *models.OrderPayment, error) {
	order, err := s.findOrder(orderID)
	if err != nil {
		return nil, nil, err
	}
	if order.NurseID == nil || *order.NurseID != actor.ID {
		return nil, nil, apperrors.Forbidden("You are not the nurse assigned to this order")
	}

	var payment models.OrderPayment
	if err := s.db.Where("order_id = ?", orderID).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperrors.NotFound("Payment not found for order")
		}
		return nil, nil, apperrors.Database(err)
	}
	if payment.Status != models.PaymentStatusPending {
		return nil, nil, apperrors.BadRequest("Payment is not pending")
	}
	if payment.PaymentMethod != models.PaymentMethodCash {
		return nil, nil, apperrors.BadRequest("Payment is not a cash payment")
	}

	paymentStatus := models.PaymentStatusPaid
	if !accepted {
		paymentStatus = models.PaymentStatusRefused
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Order{}).Where("id = ?", orderID).
			Update("status", models.OrderStatusCompleted).Error; err != nil {
			return err
		}
		return tx.Model(&models.OrderPayment{}).Where("id = ?", payment.ID).
			Update("status", paymentStatus).Error
	})
	if err != nil {
		return nil, nil, apperrors.Database(err)
	}

	payment.Status = paymentStatus
	order, err = s.findOrder(orderID)
	if err != nil {
		return nil, nil, err
	}

	log.Printf("Cash payment %d settled as %s by nurse %d", payment.ID, paymentStatus, actor.ID)
	return order, &payment, nil
}

// VerifyGatewayCallback checks the webhook signature and, on a verified
// success, completes the order. An invalid signature makes no state change
// and reports unverified; the call is safe to retry and never errors on
// malformed input.
func (s *PaymentService) VerifyGatewayCallback(orderID uint, signature, rawQuery string) (bool, *models.Order, error) {
	if !s.gateway.VerifyWebhookSignature(signature, rawQuery) {
		return false, nil, nil
	}

	params, parseErr := url.ParseQuery(rawQuery)
	if parseErr != nil {
		params = url.Values{}
	}
	if !strings.EqualFold(params.Get("paymentStatus"), "SUCCESS") {
		return false, nil, nil
	}

	order, err := s.findOrder(orderID)
	if err != nil {
		return false, nil, err
	}
	if order.Status == models.OrderStatusCompleted {
		// Gateway retries replay the same callback; the first one won.
		return true, order, nil
	}
	if order.Status != models.OrderStatusAccepted {
		return false, nil, apperrors.BadRequest("Order is not in accepted status")
	}

	var payment models.OrderPayment
	if err := s.db.Where("order_id = ?", orderID).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil, apperrors.NotFound("Payment not found for order")
		}
		return false, nil, apperrors.Database(err)
	}

	updates := map[string]interface{}{
		"status":    models.PaymentStatusPaid,
		"signature": signature,
	}
	if txID := params.Get("transactionId"); txID != "" {
		updates["transaction_id"] = txID
	}
	if brand := params.Get("cardBrand"); brand != "" {
		updates["card_brand"] = brand
	}
	if kashierOrderID := params.Get("merchantOrderId"); kashierOrderID != "" {
		updates["kashier_order_id"] = kashierOrderID
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Order{}).Where("id = ?", orderID).
			Update("status", models.OrderStatusCompleted).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.OrderPayment{}).Where("id = ?", payment.ID).
			Updates(updates).Error; err != nil {
			return err
		}
		return tx.Model(&models.InProgressOrder{}).Where("order_id = ?", orderID).
			Update("status", models.OrderStatusCompleted).Error
	})
	if err != nil {
		return false, nil, apperrors.Database(err)
	}

	order, err = s.findOrder(orderID)
	if err != nil {
		return false, nil, err
	}

	log.Printf("Gateway callback verified for order %d, payment %d paid", orderID, payment.ID)
	return true, order, nil
}

func (s *PaymentService) findOrder(orderID uint) (*models.Order, error) {
	var order models.Order
	err := s.db.Preload("User").Preload("Nurse").Preload("Service").Preload("SpecificService").
		First(&order, orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Order not found")
		}
		return nil, apperrors.Database(err)
	}
	return &order, nil
}
