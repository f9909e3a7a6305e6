// Package token issues and verifies the signed identity tokens that gate
// every authenticated call. Tokens are stateless HS256 JWTs carrying only
// the subject id and role; logout is a client-side discard.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hsinyuliao/salonbook/internal/model"
)

const TTL = time.Hour

// Verification failures are distinguishable for logging only; callers must
// surface all of them as the same unauthorized outcome.
var (
	ErrMalformed    = errors.New("malformed token")
	ErrExpired      = errors.New("expired token")
	ErrBadSignature = errors.New("bad token signature")
)

// Identity is the verified (subject, role) pair carried through a request.
type Identity struct {
	SubjectID string
	Role      model.Role
}

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type Codec struct {
	secret []byte
}

func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

func (c *Codec) Issue(subjectID string, role model.Role) (string, error) {
	now := time.Now()
	cl := claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, cl).SignedString(c.secret)
}

func (c *Codec) Verify(raw string) (*Identity, error) {
	tok, err := jwt.ParseWithClaims(raw, &claims{}, func(t *jwt.Token) (any, error) {
		// block alg confusion
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrBadSignature
		}
		return c.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, ErrBadSignature):
			return nil, ErrBadSignature
		default:
			return nil, ErrMalformed
		}
	}
	cl, ok := tok.Claims.(*claims)
	if !ok || !tok.Valid {
		return nil, ErrMalformed
	}
	return &Identity{SubjectID: cl.Subject, Role: model.Role(cl.Role)}, nil
}
