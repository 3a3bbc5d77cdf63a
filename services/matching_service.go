package services

import (
	"errors"

	"github.com/CoreVine/nursy-backend/apperrors"
	"github.com/CoreVine/nursy-backend/models"
	"github.com/CoreVine/nursy-backend/utils"
	"gorm.io/gorm"
)

// maxDistanceKm is the geo-proximity cutoff for nurse candidate search.
const maxDistanceKm = 20

// visibleStatuses are the order statuses included in candidate sets.
var visibleStatuses = []string{
	models.OrderStatusPending,
	models.OrderStatusStale,
	models.OrderStatusAccepted,
	models.OrderStatusCompleted,
}

// MatchingService computes the candidate order set visible to a nurse or
// patient, applying status filters, refusal exclusions and the geo-distance
// cutoff. Results are not sorted by proximity; callers must not assume
// any ordering.
type MatchingService struct {
	db      *gorm.DB
	refusal *RefusalLedger
}

// NewMatchingService creates a MatchingService backed by the given database
func NewMatchingService(db *gorm.DB, refusal *RefusalLedger) *MatchingService {
	return &MatchingService{db: db, refusal: refusal}
}

// CandidatesForNurse returns orders the nurse can see: unclaimed orders plus
// their own, minus refused ones, within the distance cutoff of the nurse's
// location. The nurse must have coordinates set.
func (s *MatchingService) CandidatesForNurse(nurse *models.User) ([]models.Order, error) {
	if nurse.Type != models.UserTypeNurse {
		return nil, apperrors.Forbidden("User is not a nurse")
	}
	if !nurse.HasLocation() {
		return nil, apperrors.BadRequest("Nurse location is missing")
	}

	refusedIDs, err := s.refusal.RefusedOrderIDs(nurse.ID)
	if err != nil {
		return nil, err
	}

	query := s.db.Preload("User").Preload("Service").Preload("SpecificService").
		Where("(nurse_id IS NULL OR nurse_id = ?)", nurse.ID).
		Where("status IN ?", visibleStatuses)
	if len(refusedIDs) > 0 {
		query = query.Where("id NOT IN ?", refusedIDs)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, apperrors.Database(err)
	}

	nearby := make([]models.Order, 0, len(orders))
	for _, order := range orders {
		dist := utils.DistanceKm(*nurse.Latitude, *nurse.Longitude, order.Latitude, order.Longitude)
		if dist <= maxDistanceKm {
			nearby = append(nearby, order)
		}
	}
	return nearby, nil
}

// CandidatesForNurseID resolves the nurse and returns their candidate set.
func (s *MatchingService) CandidatesForNurseID(nurseID uint) ([]models.Order, error) {
	nurse, err := s.loadUser(nurseID)
	if err != nil {
		return nil, err
	}
	return s.CandidatesForNurse(nurse)
}

// CandidatesForPatientID resolves the patient and returns their own orders.
func (s *MatchingService) CandidatesForPatientID(patientID uint) ([]models.Order, error) {
	patient, err := s.loadUser(patientID)
	if err != nil {
		return nil, err
	}
	return s.CandidatesForPatient(patient)
}

func (s *MatchingService) loadUser(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, apperrors.Database(err)
	}
	return &user, nil
}

// CandidatesForPatient returns the patient's own orders.
func (s *MatchingService) CandidatesForPatient(patient *models.User) ([]models.Order, error) {
	if patient.Type != models.UserTypePatient {
		return nil, apperrors.Forbidden("User is not a patient")
	}

	var orders []models.Order
	err := s.db.Preload("User").Preload("Nurse").Preload("Service").Preload("SpecificService").
		Where("user_id = ?", patient.ID).
		Where("status IN ?", visibleStatuses).
		Find(&orders).Error
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return orders, nil
}
