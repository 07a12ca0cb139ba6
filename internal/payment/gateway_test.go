package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func signFor(secret, orderRef, paymentRef string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderRef + "|" + paymentRef))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestHMACVerifierAcceptsValidSignature(t *testing.T) {
	v := NewHMACVerifier("topsecret")

	ok, err := v.Verify(context.Background(), "order_123", "pay_456", signFor("topsecret", "order_123", "pay_456"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHMACVerifierRejectsTamperedSignature(t *testing.T) {
	v := NewHMACVerifier("topsecret")

	sig := signFor("topsecret", "order_123", "pay_456")

	ok, err := v.Verify(context.Background(), "order_123", "pay_999", sig)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = v.Verify(context.Background(), "order_123", "pay_456", sig[:len(sig)-1]+"0")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHMACVerifierRejectsWrongSecret(t *testing.T) {
	v := NewHMACVerifier("topsecret")

	ok, err := v.Verify(context.Background(), "order_123", "pay_456", signFor("othersecret", "order_123", "pay_456"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHMACVerifierHonorsCancelledContext(t *testing.T) {
	v := NewHMACVerifier("topsecret")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ok, err := v.Verify(ctx, "order_123", "pay_456", signFor("topsecret", "order_123", "pay_456"))
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMockVerifierContract(t *testing.T) {
	ctrl := gomock.NewController(t)

	m := NewMockVerifier(ctrl)
	m.EXPECT().
		Verify(gomock.Any(), "order_123", "pay_456", "sig").
		Return(true, nil)

	ok, err := m.Verify(context.Background(), "order_123", "pay_456", "sig")
	require.NoError(t, err)
	assert.True(t, ok)
}
