package services

import (
	"errors"
	"log"
	"time"

	"github.com/CoreVine/nursy-backend/apperrors"
	"github.com/CoreVine/nursy-backend/middleware"
	"github.com/CoreVine/nursy-backend/models"
	"gorm.io/gorm"
)

// CreateOrderInput is the payload for creating an order.
type CreateOrderInput struct {
	ServiceID             uint       `json:"service_id" validate:"required,gt=0"`
	SpecificServiceID     *uint      `json:"specific_service_id" validate:"omitempty,gt=0"`
	Title                 string     `json:"title" validate:"required"`
	Description           *string    `json:"description"`
	EmploymentType        string     `json:"employment_type" validate:"required"`
	Type                  string     `json:"type" validate:"required,oneof=OnSpot Scheduled"`
	PaymentType           string     `json:"payment_type" validate:"required,oneof=Hourly Services"`
	Latitude              float64    `json:"latitude" validate:"required"`
	Longitude             float64    `json:"longitude" validate:"required"`
	AdditionalInformation *string    `json:"additional_information"`
	Date                  *time.Time `json:"date"`
	Gender                string     `json:"gender" validate:"required,oneof=Male Female"`
	Age                   int        `json:"age" validate:"required,gt=0"`
}

// DispatchService validates and applies every order-status transition,
// enforcing actor and precondition guards. The claim transition is a single
// conditional update so that concurrent claims cannot double-book an order.
type DispatchService struct {
	db      *gorm.DB
	refusal *RefusalLedger
}

// NewDispatchService creates a DispatchService backed by the given database
func NewDispatchService(db *gorm.DB, refusal *RefusalLedger) *DispatchService {
	return &DispatchService{db: db, refusal: refusal}
}

// Create creates a Pending order for the patient.
func (s *DispatchService) Create(actor middleware.Principal, input CreateOrderInput) (*models.Order, error) {
	user, err := s.loadUser(actor.ID)
	if err != nil {
		return nil, err
	}
	if user.Type != models.UserTypePatient {
		return nil, apperrors.Forbidden("User is not a patient")
	}

	var date *time.Time
	if input.Type == models.TimeTypeScheduled {
		if input.Date == nil {
			return nil, apperrors.BadRequest("Date is required for scheduled requests")
		}
		date = input.Date
	}

	if input.PaymentType == models.PaymentTypeHourly && input.SpecificServiceID != nil {
		return nil, apperrors.BadRequest("Specific service cannot be used with hourly payment type")
	}
	if input.PaymentType == models.PaymentTypeServices && input.SpecificServiceID == nil {
		return nil, apperrors.BadRequest("Specific service is required for services payment type")
	}

	order := models.Order{
		UserID:                user.ID,
		ServiceID:             input.ServiceID,
		SpecificServiceID:     input.SpecificServiceID,
		Title:                 input.Title,
		Description:           input.Description,
		EmploymentType:        input.EmploymentType,
		Type:                  input.Type,
		PaymentType:           input.PaymentType,
		Gender:                input.Gender,
		Age:                   input.Age,
		Latitude:              input.Latitude,
		Longitude:             input.Longitude,
		Date:                  date,
		Status:                models.OrderStatusPending,
	}
	if err := s.db.Create(&order).Error; err != nil {
		return nil, apperrors.Database(err)
	}

	log.Printf("Order %d created by patient %d", order.ID, user.ID)
	return s.reload(order.ID)
}

// NurseAccept claims a Pending order for the nurse, moving it to Stale.
// The claim is one conditional update checked by affected-row count: when two
// nurses race for the same order, exactly one update matches.
func (s *DispatchService) NurseAccept(actor middleware.Principal, orderID uint) (*models.Order, error) {
	user, err := s.loadUser(actor.ID)
	if err != nil {
		return nil, err
	}
	if user.Type != models.UserTypeNurse {
		return nil, apperrors.Forbidden("User is not a nurse")
	}

	var order *models.Order
	err = s.db.Transaction(func(tx *gorm.DB) error {
		// The exclusion guard is part of the claim statement itself, so a
		// refusal committed between any earlier read and this write still
		// blocks the claim.
		result := tx.Model(&models.Order{}).
			Where("id = ? AND status = ? AND nurse_id IS NULL", orderID, models.OrderStatusPending).
			Where("NOT EXISTS (SELECT 1 FROM refused_orders WHERE order_id = ? AND nurse_id = ?)", orderID, user.ID).
			Updates(map[string]interface{}{
				"nurse_id": user.ID,
				"status":   models.OrderStatusStale,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return s.diagnoseClaimFailure(tx, orderID, user.ID)
		}

		var claimed models.Order
		if err := tx.Select("user_id").First(&claimed, orderID).Error; err != nil {
			return err
		}
		inProgress := models.InProgressOrder{
			OrderID: orderID,
			UserID:  claimed.UserID,
			Status:  models.OrderStatusStale,
		}
		return tx.Create(&inProgress).Error
	})
	if err != nil {
		return nil, apperrors.From(err)
	}

	order, err = s.reload(orderID)
	if err != nil {
		return nil, err
	}

	log.Printf("Nurse %d accepted order %d", user.ID, orderID)
	return order, nil
}

// diagnoseClaimFailure explains why the conditional claim matched no rows.
func (s *DispatchService) diagnoseClaimFailure(tx *gorm.DB, orderID, nurseID uint) error {
	var order models.Order
	if err := tx.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("Order not found")
		}
		return err
	}
	excluded, err := s.refusal.IsExcludedIn(tx, orderID, nurseID)
	if err != nil {
		return err
	}
	if excluded {
		return apperrors.Forbidden("Order was refused and cannot be accepted again")
	}
	if order.NurseID != nil {
		return apperrors.Forbidden("Order is already accepted by another nurse")
	}
	return apperrors.BadRequest("Order is not in pending status")
}

// NurseRefuse records a permanent exclusion for the nurse against a Pending
// order. The order itself is untouched and stays visible to other nurses.
func (s *DispatchService) NurseRefuse(actor middleware.Principal, orderID uint) (*models.Order, error) {
	user, err := s.loadUser(actor.ID)
	if err != nil {
		return nil, err
	}
	if user.Type != models.UserTypeNurse {
		return nil, apperrors.Forbidden("User is not a nurse")
	}

	order, err := s.findOrder(orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderStatusPending {
		return nil, apperrors.BadRequest("Order is not in pending status")
	}

	if err := s.refusal.Exclude(orderID, user.ID); err != nil {
		return nil, err
	}

	log.Printf("Nurse %d refused order %d", user.ID, orderID)
	return order, nil
}

// NurseCancel deletes a Stale order the nurse had claimed.
func (s *DispatchService) NurseCancel(actor middleware.Principal, orderID uint) error {
	user, err := s.loadUser(actor.ID)
	if err != nil {
		return err
	}
	if user.Type != models.UserTypeNurse {
		return apperrors.Forbidden("User is not a nurse")
	}

	order, err := s.findOrder(orderID)
	if err != nil {
		return err
	}
	if order.NurseID == nil || *order.NurseID != user.ID {
		return apperrors.Forbidden("You are not the nurse assigned to this order")
	}
	if order.Status != models.OrderStatusStale {
		return apperrors.BadRequest("Order cannot be cancelled in its current status")
	}

	if err := s.deleteOrder(orderID); err != nil {
		return err
	}
	log.Printf("Nurse %d cancelled order %d", user.ID, orderID)
	return nil
}

// PatientAccept confirms the claiming nurse, moving the order to Accepted.
func (s *DispatchService) PatientAccept(actor middleware.Principal, orderID uint) (*models.Order, error) {
	order, err := s.ownedStaleOrder(actor, orderID)
	if err != nil {
		return nil, err
	}
	if order.NurseID == nil {
		return nil, apperrors.BadRequest("Order has no nurse to accept")
	}

	err = s.db.Model(&models.Order{}).Where("id = ?", orderID).
		Update("status", models.OrderStatusAccepted).Error
	if err != nil {
		return nil, apperrors.Database(err)
	}

	log.Printf("Patient %d accepted nurse %d for order %d", actor.ID, *order.NurseID, orderID)
	return s.reload(orderID)
}

// PatientRefuse rejects the claiming nurse: the order returns to Pending, the
// nurse is permanently excluded and the tracking row is removed.
func (s *DispatchService) PatientRefuse(actor middleware.Principal, orderID uint) (*models.Order, error) {
	order, err := s.ownedStaleOrder(actor, orderID)
	if err != nil {
		return nil, err
	}
	if order.NurseID == nil {
		return nil, apperrors.BadRequest("Order has no nurse to refuse")
	}
	refusedNurseID := *order.NurseID

	// The exclusion commits with the release: the refused nurse can never
	// observe the order back in Pending without the refusal row in place.
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Order{}).Where("id = ?", orderID).
			Updates(map[string]interface{}{
				"nurse_id": nil,
				"status":   models.OrderStatusPending,
			}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", orderID).Delete(&models.InProgressOrder{}).Error; err != nil {
			return err
		}
		return s.refusal.ExcludeIn(tx, orderID, refusedNurseID)
	})
	if err != nil {
		return nil, apperrors.From(err)
	}

	log.Printf("Patient %d refused nurse %d for order %d", actor.ID, refusedNurseID, orderID)
	return s.reload(orderID)
}

// PatientCancel deletes a Stale order owned by the patient.
func (s *DispatchService) PatientCancel(actor middleware.Principal, orderID uint) error {
	order, err := s.ownedStaleOrder(actor, orderID)
	if err != nil {
		return err
	}

	if err := s.deleteOrder(order.ID); err != nil {
		return err
	}
	log.Printf("Patient %d cancelled order %d", actor.ID, orderID)
	return nil
}

// OrderForPrincipal returns the order if the principal participates in it,
// either as the owning patient or the assigned nurse.
func (s *DispatchService) OrderForPrincipal(actor middleware.Principal, orderID uint) (*models.Order, error) {
	order, err := s.findOrder(orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID == actor.ID {
		return order, nil
	}
	if order.NurseID != nil && *order.NurseID == actor.ID {
		return order, nil
	}
	return nil, apperrors.Forbidden("You are not a participant in this order")
}

// ownedStaleOrder loads the order and checks patient ownership and the Stale
// precondition shared by the patient-side transitions.
func (s *DispatchService) ownedStaleOrder(actor middleware.Principal, orderID uint) (*models.Order, error) {
	user, err := s.loadUser(actor.ID)
	if err != nil {
		return nil, err
	}
	if user.Type != models.UserTypePatient {
		return nil, apperrors.Forbidden("User is not a patient")
	}

	order, err := s.findOrder(orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != user.ID {
		return nil, apperrors.Forbidden("You are not the owner of this order")
	}
	if order.Status != models.OrderStatusStale {
		return nil, apperrors.BadRequest("Order is not in stale status")
	}
	return order, nil
}

// deleteOrder hard-deletes the order row and its tracking rows. No terminal
// cancelled record is retained.
func (s *DispatchService) deleteOrder(orderID uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", orderID).Delete(&models.InProgressOrder{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Order{}, orderID).Error
	})
	if err != nil {
		return apperrors.Database(err)
	}
	return nil
}

func (s *DispatchService) loadUser(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, apperrors.Database(err)
	}
	return &user, nil
}

func (s *DispatchService) findOrder(orderID uint) (*models.Order, error) {
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

func (s *DispatchService) reload(orderID uint) (*models.Order, error) {
	return s.findOrder(orderID)
}
