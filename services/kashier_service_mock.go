package services

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

// MockKashierService is a mock implementation of the gateway adapter for testing
type MockKashierService struct {
	initialized     []PaymentInitResult
	validSignatures map[string]bool
	mu              sync.RWMutex
}

// NewMockKashierService creates a new mock gateway adapter
func NewMockKashierService() *MockKashierService {
	return &MockKashierService{
		validSignatures: make(map[string]bool),
	}
}

// SetAsMockForTesting sets this mock as the global gateway adapter instance for testing
func (m *MockKashierService) SetAsMockForTesting() {
	SetKashierService(m)
}

// InitializePayment simulates building a hosted-checkout redirect
func (m *MockKashierService) InitializePayment(amount decimal.Decimal, currency string, orderID uint) (*PaymentInitResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := PaymentInitResult{
		PaymentURL:     fmt.Sprintf("https://checkout.test/pay?orderId=%d&amount=%s&currency=%s", orderID, amount.String(), currency),
		KashierOrderID: fmt.Sprintf("SUB-mock-%d", orderID),
		Params: map[string]string{
			"amount":   amount.String(),
			"currency": currency,
		},
	}
	m.initialized = append(m.initialized, result)
	return &result, nil
}

// AllowSignature marks a signature as valid for subsequent verifications
func (m *MockKashierService) AllowSignature(signature string) {
	m.mu.Lock()
	m.validSignatures[signature] = true
	m.mu.Unlock()
}

// VerifyWebhookSignature accepts only signatures registered via AllowSignature
func (m *MockKashierService) VerifyWebhookSignature(signature, rawQuery string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.validSignatures[signature]
}

// InitializedPayments returns all initialized payments (for testing assertions)
func (m *MockKashierService) InitializedPayments() []PaymentInitResult {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]PaymentInitResult, len(m.initialized))
	copy(out, m.initialized)
	return out
}

// Clear resets the mock state
func (m *MockKashierService) Clear() {
	m.mu.Lock()
	m.initialized = nil
	m.validSignatures = make(map[string]bool)
	m.mu.Unlock()
}
