package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Verifier checks a payment gateway signature for a captured payment.
// Implementations must honor ctx; checkout runs the call under a bounded
// timeout and treats expiry as verification failure.
type Verifier interface {
	Verify(ctx context.Context, orderRef, paymentRef, signature string) (bool, error)
}

// HMACVerifier verifies gateway callbacks the Razorpay way: the expected
// signature is HMAC-SHA256 of "orderRef|paymentRef" under the shared secret,
// hex encoded.
type HMACVerifier struct {
	secret []byte
}

func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret)}
}

func (v *HMACVerifier) Verify(ctx context.Context, orderRef, paymentRef, signature string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(orderRef + "|" + paymentRef))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature)), nil
}
