package services

import (
	"github.com/CoreVine/nursy-backend/apperrors"
	"github.com/CoreVine/nursy-backend/models"
	"gorm.io/gorm"
)

// RefusalLedger tracks permanent (order, nurse) exclusions. Once a pair is
// recorded the nurse never sees that order again; there is no deletion path.
type RefusalLedger struct {
	db *gorm.DB
}

// NewRefusalLedger creates a RefusalLedger backed by the given database
func NewRefusalLedger(db *gorm.DB) *RefusalLedger {
	return &RefusalLedger{db: db}
}

// Exclude records the exclusion. Idempotent: a duplicate pair is not an error.
func (l *RefusalLedger) Exclude(orderID, nurseID uint) error {
	return l.ExcludeIn(l.db, orderID, nurseID)
}

// ExcludeIn records the exclusion inside an existing transaction, so callers
// can commit it atomically with the transition that caused it.
func (l *RefusalLedger) ExcludeIn(tx *gorm.DB, orderID, nurseID uint) error {
	refused := models.RefusedOrder{OrderID: orderID, NurseID: nurseID}
	err := tx.Where(models.RefusedOrder{OrderID: orderID, NurseID: nurseID}).
		FirstOrCreate(&refused).Error
	if err != nil {
		return apperrors.Database(err)
	}
	return nil
}

// IsExcluded reports whether the nurse has been barred from the order.
func (l *RefusalLedger) IsExcluded(orderID, nurseID uint) (bool, error) {
	return l.IsExcludedIn(l.db, orderID, nurseID)
}

// IsExcludedIn is IsExcluded against an existing transaction.
func (l *RefusalLedger) IsExcludedIn(tx *gorm.DB, orderID, nurseID uint) (bool, error) {
	var count int64
	err := tx.Model(&models.RefusedOrder{}).
		Where("order_id = ? AND nurse_id = ?", orderID, nurseID).
		Count(&count).Error
	if err != nil {
		return false, apperrors.Database(err)
	}
	return count > 0, nil
}

// RefusedOrderIDs returns every order id the nurse is excluded from.
func (l *RefusalLedger) RefusedOrderIDs(nurseID uint) ([]uint, error) {
	var ids []uint
	err := l.db.Model(&models.RefusedOrder{}).
		Where("nurse_id = ?", nurseID).
		Pluck("order_id", &ids).Error
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return ids, nil
}
