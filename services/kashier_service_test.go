package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestKashier() *KashierService {
	return &KashierService{
		baseURL:    "https://checkout.kashier.io",
		merchantID: "MID-12345",
		apiKey:     "test-api-key",
		testMode:   true,
		appURL:     "https://app.example.com",
	}
}

// signQuery computes the signature the gateway would attach to a callback:
// an HMAC over the query pairs minus signature and mode, in order.
func signQuery(apiKey, rawQuery string) string {
	var pairs []string
	for _, pair := range strings.Split(rawQuery, "&") {
		key := pair
		if idx := strings.Index(pair, "="); idx >= 0 {
			key = pair[:idx]
		}
		if key == "signature" || key == "mode" {
			continue
		}
		pairs = append(pairs, pair)
	}
	mac := hmac.New(sha256.New, []byte(apiKey))
	mac.Write([]byte(strings.Join(pairs, "&")))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestGenerateHash(t *testing.T) {
	svc := newTestKashier()

	mac := hmac.New(sha256.New, []byte("test-api-key"))
	mac.Write([]byte("/?payment=MID-12345.SUB-abcde.200.EGP"))
	expected := hex.EncodeToString(mac.Sum(nil))

	assert.Equal(t, expected, svc.generateHash("MID-12345", "SUB-abcde", "200", "EGP"))
}

func TestInitializePayment(t *testing.T) {
	svc := newTestKashier()

	result, err := svc.InitializePayment(decimal.NewFromInt(200), "EGP", 42)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(result.KashierOrderID, "SUB-"))
	assert.Len(t, result.KashierOrderID, len("SUB-")+10)

	parsed, err := url.Parse(result.PaymentURL)
	require.NoError(t, err)
	assert.Equal(t, "checkout.kashier.io", parsed.Host)

	query := parsed.Query()
	assert.Equal(t, "MID-12345", query.Get("merchantId"))
	assert.Equal(t, result.KashierOrderID, query.Get("orderId"))
	assert.Equal(t, "200", query.Get("amount"))
	assert.Equal(t, "EGP", query.Get("currency"))
	assert.Equal(t, "test", query.Get("mode"))
	assert.Equal(t, "https://app.example.com/api/v1/payments/42/verify", query.Get("merchantRedirect"))

	expectedHash := svc.generateHash("MID-12345", result.KashierOrderID, "200", "EGP")
	assert.Equal(t, expectedHash, query.Get("hash"))
}

func TestInitializePaymentLiveMode(t *testing.T) {
	svc := newTestKashier()
	svc.testMode = false

	result, err := svc.InitializePayment(decimal.NewFromInt(150), "EGP", 7)
	require.NoError(t, err)

	parsed, err := url.Parse(result.PaymentURL)
	require.NoError(t, err)
	assert.Equal(t, "live", parsed.Query().Get("mode"))
}

func TestVerifyWebhookSignature(t *testing.T) {
	svc := newTestKashier()

	base := "paymentStatus=SUCCESS&cardDataToken=tok&amount=200&currency=EGP&orderId=SUB-abcde&transactionId=TX-1"
	good := signQuery("test-api-key", base)

	tests := []struct {
		name      string
		signature string
		rawQuery  string
		want      bool
	}{
		{
			name:      "valid signature",
			signature: good,
			rawQuery:  base + "&signature=" + good,
			want:      true,
		},
		{
			name:      "mode excluded from signed payload",
			signature: good,
			rawQuery:  base + "&mode=test&signature=" + good,
			want:      true,
		},
		{
			name:      "tampered amount",
			signature: good,
			rawQuery:  strings.Replace(base, "amount=200", "amount=1", 1) + "&signature=" + good,
			want:      false,
		},
		{
			name:      "forged signature",
			signature: "deadbeef",
			rawQuery:  base + "&signature=deadbeef",
			want:      false,
		},
		{
			name:      "empty signature",
			signature: "",
			rawQuery:  base,
			want:      false,
		},
		{
			name:      "empty query",
			signature: good,
			rawQuery:  "",
			want:      false,
		},
		{
			name:      "malformed query",
			signature: good,
			rawQuery:  "&&&=&%%zz=%%yy",
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, svc.VerifyWebhookSignature(tt.signature, tt.rawQuery))
		})
	}
}

func TestVerifyWebhookSignatureWrongKey(t *testing.T) {
	svc := newTestKashier()

	base := "paymentStatus=SUCCESS&amount=200"
	foreign := signQuery("another-key", base)

	assert.False(t, svc.VerifyWebhookSignature(foreign, base+"&signature="+foreign))
}

func TestMockKashierRecordsCalls(t *testing.T) {
	mock := NewMockKashierService()
	mock.SetAsMockForTesting()
	t.Cleanup(func() { SetKashierService(nil) })

	assert.Same(t, mock, GetKashierService())

	_, err := mock.InitializePayment(decimal.NewFromInt(100), "EGP", 1)
	require.NoError(t, err)
	assert.Len(t, mock.InitializedPayments(), 1)

	mock.Clear()
	assert.Empty(t, mock.InitializedPayments())
}
