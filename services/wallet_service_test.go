package services

import (
	"testing"

	"github.com/CoreVine/nursy-backend/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalletLedgerCreditCreatesWalletLazily(t *testing.T) {
	db := setupServiceTestDB(t)
	ledger := NewWalletLedger(db)

	var count int64
	db.Model(&models.Wallet{}).Count(&count)
	assert.Equal(t, int64(0), count)

	wallet, err := ledger.Credit(7, decimal.NewFromInt(200), "Cash payment for order", models.ActorSystem)
	require.NoError(t, err)
	assert.Equal(t, uint(7), wallet.UserID)
	assert.True(t, wallet.Balance.Equal(decimal.NewFromInt(200)))
	assert.True(t, wallet.Debit.Equal(decimal.Zero))

	db.Model(&models.Wallet{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestWalletLedgerCreditAndDebitArithmetic(t *testing.T) {
	db := setupServiceTestDB(t)
	ledger := NewWalletLedger(db)

	_, err := ledger.Credit(7, decimal.NewFromInt(200), "Cash payment for order", models.ActorSystem)
	require.NoError(t, err)
	_, err = ledger.Credit(7, decimal.NewFromInt(50), "Cash payment for order", models.ActorSystem)
	require.NoError(t, err)
	wallet, err := ledger.Debit(7, decimal.NewFromInt(10), "Platform fee for order", models.ActorSystem)
	require.NoError(t, err)

	assert.True(t, wallet.Balance.Equal(decimal.NewFromInt(250)), "balance is %s", wallet.Balance)
	assert.True(t, wallet.Debit.Equal(decimal.NewFromInt(10)), "debit is %s", wallet.Debit)
}

func TestWalletLedgerAppendsOneHistoryRowPerCall(t *testing.T) {
	db := setupServiceTestDB(t)
	ledger := NewWalletLedger(db)

	_, err := ledger.Credit(7, decimal.NewFromInt(200), "Cash payment for order", models.ActorSystem)
	require.NoError(t, err)
	_, err = ledger.Debit(7, decimal.NewFromInt(10), "Platform fee for order", "admin:1")
	require.NoError(t, err)

	entries, err := ledger.HistoryOf(7)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first
	assert.Equal(t, models.WalletEntryDebit, entries[0].Type)
	assert.Equal(t, "admin:1", entries[0].Actor)
	assert.Equal(t, models.WalletEntryCredit, entries[1].Type)
	assert.Equal(t, models.ActorSystem, entries[1].Actor)
}

func TestWalletLedgerBalanceDerivableFromHistory(t *testing.T) {
	db := setupServiceTestDB(t)
	ledger := NewWalletLedger(db)

	amounts := []int64{200, 150, 75}
	for _, amount := range amounts {
		_, err := ledger.Credit(7, decimal.NewFromInt(amount), "Cash payment for order", models.ActorSystem)
		require.NoError(t, err)
	}

	wallet, err := ledger.WalletOf(7)
	require.NoError(t, err)
	entries, err := ledger.HistoryOf(7)
	require.NoError(t, err)

	sum := decimal.Zero
	for _, entry := range entries {
		if entry.Type == models.WalletEntryCredit {
			sum = sum.Add(entry.Amount)
		} else {
			sum = sum.Sub(entry.Amount)
		}
	}
	assert.True(t, wallet.Balance.Equal(sum), "balance %s != history sum %s", wallet.Balance, sum)
}

func TestWalletLedgerRejectsNegativeAmounts(t *testing.T) {
	db := setupServiceTestDB(t)
	ledger := NewWalletLedger(db)

	_, err := ledger.Credit(7, decimal.NewFromInt(-5), "bad", models.ActorSystem)
	assert.Error(t, err)

	var count int64
	db.Model(&models.WalletHistory{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestWalletLedgerWalletOfUnknownNurse(t *testing.T) {
	db := setupServiceTestDB(t)
	ledger := NewWalletLedger(db)

	wallet, err := ledger.WalletOf(99)
	require.NoError(t, err)
	assert.True(t, wallet.Balance.Equal(decimal.Zero))

	entries, err := ledger.HistoryOf(99)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
