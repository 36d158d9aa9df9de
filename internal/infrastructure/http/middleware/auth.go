package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/pantrysense/v2/internal/infrastructure/http/response"
	"github.com/pantrysense/v2/internal/ports/inbound"
	"github.com/pantrysense/v2/pkg/errors"
	"go.uber.org/zap"
)

type claimsKey struct{}

// WithClaims stores verified session claims on ctx
func WithClaims(ctx context.Context, claims *inbound.SessionClaims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFromContext returns the claims Authenticate stored
func ClaimsFromContext(ctx context.Context) (*inbound.SessionClaims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*inbound.SessionClaims)
	return claims, ok && claims != nil
}

// Authenticate requires a valid session token. Browsers cannot set headers on
// a WebSocket handshake, so an access_token query parameter is accepted when
// the Authorization header is absent.
func Authenticate(auth inbound.AuthService, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r)
			if err != nil {
				response.Error(w, r, logger, err)
				return
			}

			claims, err := auth.Verify(r.Context(), token)
			if err != nil {
				response.Error(w, r, logger, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		if token := r.URL.Query().Get("access_token"); token != "" {
			return token, nil
		}
		return "", errors.NewUnauthorizedError("Authorization header required")
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", errors.NewUnauthorizedError("Invalid authorization header format")
	}
	return strings.TrimSpace(token), nil
}
