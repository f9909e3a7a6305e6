package token

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hsinyuliao/salonbook/internal/model"
)

func TestIssueVerifyRoundTrip(t *testing.T) {
	c := NewCodec("test-secret")
	raw, err := c.Issue("m-1", model.RoleAdmin)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	id, err := c.Verify(raw)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if id.SubjectID != "m-1" || id.Role != model.RoleAdmin {
		t.Fatalf("identity mismatch: %+v", id)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	raw, err := NewCodec("secret-a").Issue("m-1", model.RoleUser)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	_, err = NewCodec("secret-b").Verify(raw)
	if !errors.Is(err, ErrBadSignature) {
		t.Fatalf("expected ErrBadSignature, got %v", err)
	}
}

func TestVerifyExpired(t *testing.T) {
	c := NewCodec("test-secret")
	cl := claims{
		Role: string(model.RoleUser),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "m-1",
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, cl).SignedString(c.secret)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if _, err := c.Verify(raw); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestVerifyMalformed(t *testing.T) {
	c := NewCodec("test-secret")
	for _, raw := range []string{"", "not-a-token", "a.b"} {
		if _, err := c.Verify(raw); !errors.Is(err, ErrMalformed) {
			t.Fatalf("token %q: expected ErrMalformed, got %v", raw, err)
		}
	}
}

func TestVerifyRejectsNonHMAC(t *testing.T) {
	// An unsigned token must not slip past the HMAC method check.
	cl := claims{
		Role: string(model.RoleAdmin),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "m-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, cl).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if _, err := NewCodec("test-secret").Verify(raw); err == nil {
		t.Fatal("expected verification to fail for alg=none")
	}
}
