package handlers

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"storefront/internal/payment"
)

func TestVerifyOnlinePaymentAcceptsValidSignature(t *testing.T) {
	ctrl := gomock.NewController(t)

	verifier := payment.NewMockVerifier(ctrl)
	verifier.EXPECT().
		Verify(gomock.Any(), "order_123", "pay_456", "sig").
		Return(true, nil)

	err := verifyOnlinePayment(context.Background(), verifier, time.Second, "order_123", "pay_456", "sig")
	if err != nil {
		t.Fatalf("expected valid signature to pass, got %v", err)
	}
}

func TestVerifyOnlinePaymentRejectsSignatureMismatch(t *testing.T) {
	ctrl := gomock.NewController(t)

	verifier := payment.NewMockVerifier(ctrl)
	verifier.EXPECT().
		Verify(gomock.Any(), "order_123", "pay_456", "bad-sig").
		Return(false, nil)

	err := verifyOnlinePayment(context.Background(), verifier, time.Second, "order_123", "pay_456", "bad-sig")
	var badPayment paymentVerificationError
	if !errors.As(err, &badPayment) {
		t.Fatalf("expected paymentVerificationError, got %v", err)
	}
}

func TestVerifyOnlinePaymentWrapsGatewayError(t *testing.T) {
	ctrl := gomock.NewController(t)

	verifier := payment.NewMockVerifier(ctrl)
	verifier.EXPECT().
		Verify(gomock.Any(), "order_123", "pay_456", "sig").
		Return(false, errors.New("gateway unreachable"))

	err := verifyOnlinePayment(context.Background(), verifier, time.Second, "order_123", "pay_456", "sig")
	var badPayment paymentVerificationError
	if !errors.As(err, &badPayment) {
		t.Fatalf("expected paymentVerificationError, got %v", err)
	}
}

func TestVerifyOnlinePaymentRejectsMissingReferences(t *testing.T) {
	ctrl := gomock.NewController(t)

	// The gateway must never be consulted when references are absent, so no
	// expectations are registered on the mock.
	verifier := payment.NewMockVerifier(ctrl)

	cases := []struct {
		name       string
		orderRef   string
		paymentRef string
		signature  string
	}{
		{"empty order ref", "", "pay_456", "sig"},
		{"empty payment ref", "order_123", "", "sig"},
		{"empty signature", "order_123", "pay_456", ""},
		{"whitespace order ref", "   ", "pay_456", "sig"},
	}
	for _, tc := range cases {
		err := verifyOnlinePayment(context.Background(), verifier, time.Second, tc.orderRef, tc.paymentRef, tc.signature)
		var badPayment paymentVerificationError
		if !errors.As(err, &badPayment) {
			t.Fatalf("%s: expected paymentVerificationError, got %v", tc.name, err)
		}
	}
}

func TestVerifyOnlinePaymentBoundsGatewayCall(t *testing.T) {
	ctrl := gomock.NewController(t)

	verifier := payment.NewMockVerifier(ctrl)
	verifier.EXPECT().
		Verify(gomock.Any(), "order_123", "pay_456", "sig").
		DoAndReturn(func(ctx context.Context, _, _, _ string) (bool, error) {
			<-ctx.Done()
			return false, ctx.Err()
		})

	err := verifyOnlinePayment(context.Background(), verifier, 5*time.Millisecond, "order_123", "pay_456", "sig")
	var badPayment paymentVerificationError
	if !errors.As(err, &badPayment) {
		t.Fatalf("expected slow gateway to surface as paymentVerificationError, got %v", err)
	}
}
