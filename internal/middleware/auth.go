package middleware

import (
	"context"
	"net/http"
	"strings"

	"marketplace/internal/model"

	"github.com/rs/zerolog"
)

type principalKey struct{}

// TokenParser turns a bearer token into the principal it was issued for.
type TokenParser interface {
	Parse(token string) (model.Principal, error)
}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p model.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the caller stored by Authenticate, or Anonymous.
func PrincipalFrom(ctx context.Context) model.Principal {
	if p, ok := ctx.Value(principalKey{}).(model.Principal); ok {
		return p
	}
	return model.Anonymous
}

// Authenticate resolves the Authorization bearer token into a principal.
// Requests without credentials continue anonymously; a token that does not
// verify is rejected with 401.
func Authenticate(parser TokenParser, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				logger.Warn().Str("path", r.URL.Path).Msg("malformed authorization header")
				unauthorised(w)
				return
			}

			principal, err := parser.Parse(strings.TrimSpace(token))
			if err != nil {
				logger.Warn().Err(err).Str("path", r.URL.Path).Msg("invalid bearer token")
				unauthorised(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

func unauthorised(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="marketplace"`)
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"UNAUTHORIZED","message":"invalid bearer token"}`))
}
