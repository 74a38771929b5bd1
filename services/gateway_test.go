package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func signCheckout(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestRazorpaySignatureVerification(t *testing.T) {
	gateway := NewRazorpayGateway("rzp_test_key", "test_secret")

	sig := signCheckout("test_secret", "order_123", "pay_456")
	assert.True(t, gateway.VerifyPaymentSignature("order_123", "pay_456", sig))

	// Wrong secret, tampered ids or garbage all fail
	assert.False(t, gateway.VerifyPaymentSignature("order_123", "pay_456",
		signCheckout("other_secret", "order_123", "pay_456")))
	assert.False(t, gateway.VerifyPaymentSignature("order_999", "pay_456", sig))
	assert.False(t, gateway.VerifyPaymentSignature("order_123", "pay_456", "not-a-signature"))
	assert.False(t, gateway.VerifyPaymentSignature("order_123", "pay_456", ""))
}
