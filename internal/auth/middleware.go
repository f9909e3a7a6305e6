// Package auth is the single gate every authenticated request passes
// through: bearer token in, verified identity in the request context out.
package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hsinyuliao/salonbook/internal/httpx"
	"github.com/hsinyuliao/salonbook/internal/token"
)

type ctxKey int

const ctxKeyIdentity ctxKey = iota

// Verifier is the token-side contract the gate needs.
type Verifier interface {
	Verify(raw string) (*token.Identity, error)
}

func IdentityFromContext(ctx context.Context) (*token.Identity, bool) {
	id, ok := ctx.Value(ctxKeyIdentity).(*token.Identity)
	return id, ok
}

// RequireAuth verifies the bearer token on every call; nothing is cached
// across requests. A missing token is 401, a token that fails verification
// is 403. The failure cause is logged but never sent to the client.
func RequireAuth(verifier Verifier, logger *slog.Logger) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				http.Error(w, "missing authentication token", http.StatusUnauthorized)
				return
			}

			id, err := verifier.Verify(raw)
			if err != nil {
				logger.Warn("token rejected",
					"reason", err,
					"request_id", httpx.RequestIDFromContext(r.Context()),
					"path", r.URL.Path,
				)
				http.Error(w, "invalid or expired authentication token", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyIdentity, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
