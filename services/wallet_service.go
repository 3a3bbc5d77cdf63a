package services

import (
	"errors"

	"github.com/CoreVine/nursy-backend/apperrors"
	"github.com/CoreVine/nursy-backend/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WalletLedger is the append-only balance/debit accounting for nurses. Every
// mutation applies the balance change and appends exactly one history row
// inside a single transaction.
type WalletLedger struct {
	db *gorm.DB
}

// NewWalletLedger creates a WalletLedger backed by the given database
func NewWalletLedger(db *gorm.DB) *WalletLedger {
	return &WalletLedger{db: db}
}

// Credit increases the nurse's balance by amount, creating the wallet lazily
// on first use, and records one history entry.
func (l *WalletLedger) Credit(nurseID uint, amount decimal.Decimal, description, actor string) (*models.Wallet, error) {
	return l.apply(nurseID, amount, models.WalletEntryCredit, description, actor)
}

// Debit increases the platform debit owed by the nurse and records one
// history entry.
func (l *WalletLedger) Debit(nurseID uint, amount decimal.Decimal, description, actor string) (*models.Wallet, error) {
	return l.apply(nurseID, amount, models.WalletEntryDebit, description, actor)
}

func (l *WalletLedger) apply(nurseID uint, amount decimal.Decimal, entryType, description, actor string) (*models.Wallet, error) {
	if amount.IsNegative() {
		return nil, apperrors.BadRequest("Wallet amount must not be negative")
	}

	var wallet models.Wallet
	err := l.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(models.Wallet{UserID: nurseID}).FirstOrCreate(&wallet).Error; err != nil {
			return err
		}

		switch entryType {
		case models.WalletEntryCredit:
			wallet.Balance = wallet.Balance.Add(amount)
		case models.WalletEntryDebit:
			wallet.Debit = wallet.Debit.Add(amount)
		}
		if err := tx.Model(&models.Wallet{}).Where("id = ?", wallet.ID).
			Updates(map[string]interface{}{"balance": wallet.Balance, "debit": wallet.Debit}).Error; err != nil {
			return err
		}

		history := models.WalletHistory{
			WalletID:    wallet.ID,
			Amount:      amount,
			Type:        entryType,
			Description: description,
			Actor:       actor,
		}
		return tx.Create(&history).Error
	})
	if err != nil {
		return nil, apperrors.From(err)
	}
	return &wallet, nil
}

// WalletOf returns the nurse's wallet, or a zero-balance wallet if none has
// been created yet.
func (l *WalletLedger) WalletOf(nurseID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	err := l.db.Where("user_id = ?", nurseID).First(&wallet).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.Wallet{UserID: nurseID, Balance: decimal.Zero, Debit: decimal.Zero}, nil
		}
		return nil, apperrors.Database(err)
	}
	return &wallet, nil
}

// HistoryOf returns the nurse's wallet history, newest first.
func (l *WalletLedger) HistoryOf(nurseID uint) ([]models.WalletHistory, error) {
	wallet, err := l.WalletOf(nurseID)
	if err != nil {
		return nil, err
	}
	if wallet.ID == 0 {
		return []models.WalletHistory{}, nil
	}

	var entries []models.WalletHistory
	if err := l.db.Where("wallet_id = ?", wallet.ID).Order("id desc").Find(&entries).Error; err != nil {
		return nil, apperrors.Database(err)
	}
	return entries, nil
}
