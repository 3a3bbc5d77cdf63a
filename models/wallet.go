package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet history entry types
const (
	WalletEntryCredit = "Credit"
	WalletEntryDebit  = "Debit"
)

// ActorSystem marks wallet entries written by payment flows rather than an admin.
const ActorSystem = "system"

// Wallet holds a nurse's earned balance and the platform debit owed. Created
// lazily on the first credit.
type Wallet struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	UserID    uint            `gorm:"not null;uniqueIndex" json:"user_id"`
	Balance   decimal.Decimal `gorm:"type:numeric;not null;default:0" json:"balance"`
	Debit     decimal.Decimal `gorm:"type:numeric;not null;default:0" json:"debit"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TableName specifies the table name for the Wallet model
func (Wallet) TableName() string {
	return "wallets"
}

// WalletHistory is an append-only ledger entry. The wallet balance is derivable
// as the signed sum of its entries.
type WalletHistory struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	WalletID    uint            `gorm:"not null;index" json:"wallet_id"`
	Amount      decimal.Decimal `gorm:"type:numeric;not null" json:"amount"`
	Type        string          `gorm:"not null" json:"type"` // "Credit" or "Debit"
	Description string          `gorm:"not null" json:"description"`
	Actor       string          `gorm:"not null;default:'system'" json:"actor"` // admin id or "system"
	CreatedAt   time.Time       `json:"created_at"`
}

// TableName specifies the table name for the WalletHistory model
func (WalletHistory) TableName() string {
	return "wallet_histories"
}
