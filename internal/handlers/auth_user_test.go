package handlers

import (
	"strconv"
	"testing"
)

func TestGenerateOTPIsSixDigits(t *testing.T) {
	for i := 0; i < 20; i++ {
		code, err := generateOTP()
		if err != nil {
			t.Fatalf("generateOTP returned error: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("expected 6 digit code, got %q", code)
		}
		if _, err := strconv.Atoi(code); err != nil {
			t.Fatalf("expected numeric code, got %q", code)
		}
	}
}

func TestHashTokenIsDeterministic(t *testing.T) {
	a := hashToken("123456")
	b := hashToken("123456")
	if a != b {
		t.Fatal("expected identical hashes for identical input")
	}
	if a == hashToken("654321") {
		t.Fatal("expected different hashes for different input")
	}
	if len(a) != 64 {
		t.Fatalf("expected hex sha256 of length 64, got %d", len(a))
	}
}

func TestGenerateRefreshStringLengthAndUniqueness(t *testing.T) {
	first := generateRefreshString()
	second := generateRefreshString()
	if len(first) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(first))
	}
	if first == second {
		t.Fatal("expected unique refresh strings")
	}
}

func TestLowerCamel(t *testing.T) {
	if got := lowerCamel("FirstName"); got != "firstName" {
		t.Fatalf("expected firstName, got %q", got)
	}
	if got := lowerCamel(""); got != "" {
		t.Fatalf("expected empty string unchanged, got %q", got)
	}
}
