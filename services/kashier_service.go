package services

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"

	appConfig "github.com/CoreVine/nursy-backend/config"
	"github.com/shopspring/decimal"
)

// PaymentInitResult is the outcome of initializing a hosted-checkout payment.
type PaymentInitResult struct {
	PaymentURL     string            `json:"payment_url"`
	KashierOrderID string            `json:"kashier_order_id"`
	Params         map[string]string `json:"params"`
}

// KashierInterface defines the interface for payment gateway operations
type KashierInterface interface {
	InitializePayment(amount decimal.Decimal, currency string, orderID uint) (*PaymentInitResult, error)
	VerifyWebhookSignature(signature, rawQuery string) bool
}

// KashierService signs and verifies Kashier hosted-checkout requests
type KashierService struct {
	baseURL    string
	merchantID string
	apiKey     string
	testMode   bool
	appURL     string
}

var kashierServiceInstance KashierInterface

// InitKashierService initializes the gateway adapter from configuration
func InitKashierService() KashierInterface {
	cfg := appConfig.GetConfig()

	kashierServiceInstance = &KashierService{
		baseURL:    cfg.KashierBaseURL,
		merchantID: cfg.KashierMerchantID,
		apiKey:     cfg.KashierAPIKey,
		testMode:   cfg.KashierTestMode,
		appURL:     cfg.AppURL,
	}
	return kashierServiceInstance
}

// GetKashierService returns the initialized gateway adapter instance
func GetKashierService() KashierInterface {
	return kashierServiceInstance
}

// SetKashierService sets the gateway adapter instance (primarily for testing)
func SetKashierService(service KashierInterface) {
	kashierServiceInstance = service
}

// generateOrderID creates a merchant-side correlation id for the gateway.
func (s *KashierService) generateOrderID() string {
	buf := make([]byte, 5)
	_, _ = rand.Read(buf)
	return "SUB-" + hex.EncodeToString(buf)
}

// generateHash signs the payment path with the shared secret.
// The path layout is fixed by the gateway: /?payment={mid}.{oid}.{amount}.{currency}
func (s *KashierService) generateHash(merchantID, orderID, amount, currency string) string {
	path := fmt.Sprintf("/?payment=%s.%s.%s.%s", merchantID, orderID, amount, currency)
	mac := hmac.New(sha256.New, []byte(s.apiKey))
	mac.Write([]byte(path))
	return hex.EncodeToString(mac.Sum(nil))
}

// InitializePayment builds the hosted-checkout redirect URL bound to the order.
func (s *KashierService) InitializePayment(amount decimal.Decimal, currency string, orderID uint) (*PaymentInitResult, error) {
	kashierOrderID := s.generateOrderID()
	hash := s.generateHash(s.merchantID, kashierOrderID, amount.String(), currency)

	mode := "live"
	if s.testMode {
		mode = "test"
	}

	params := map[string]string{
		"merchantId":       s.merchantID,
		"orderId":          kashierOrderID,
		"mode":             mode,
		"amount":           amount.String(),
		"currency":         currency,
		"hash":             hash,
		"merchantRedirect": fmt.Sprintf("%s/api/v1/payments/%d/verify", s.appURL, orderID),
		"allowedMethods":   "card,wallet,bank_installments",
		"display":          "en",
	}

	values := url.Values{}
	for key, value := range params {
		values.Set(key, value)
	}

	return &PaymentInitResult{
		PaymentURL:     s.baseURL + "?" + values.Encode(),
		KashierOrderID: kashierOrderID,
		Params:         params,
	}, nil
}

// VerifyWebhookSignature recomputes the HMAC over the callback query string,
// excluding the signature itself and the mode flag, and compares it in
// constant time. Malformed input yields false, never an error.
func (s *KashierService) VerifyWebhookSignature(signature, rawQuery string) bool {
	if signature == "" {
		return false
	}

	var pairs []string
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		key := pair
		value := ""
		if idx := strings.Index(pair, "="); idx >= 0 {
			key = pair[:idx]
			value = pair[idx+1:]
		}
		if key == "signature" || key == "mode" {
			continue
		}
		decodedKey, err := url.QueryUnescape(key)
		if err != nil {
			decodedKey = key
		}
		decodedValue, err := url.QueryUnescape(value)
		if err != nil {
			decodedValue = value
		}
		pairs = append(pairs, decodedKey+"="+decodedValue)
	}

	mac := hmac.New(sha256.New, []byte(s.apiKey))
	mac.Write([]byte(strings.Join(pairs, "&")))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
