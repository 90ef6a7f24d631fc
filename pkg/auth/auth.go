// Package auth resolves the optional bearer token of a request into the caller's
// identity.
package auth

import (
	"context"
	"net/http"
	apperrors "slotter/pkg/errors"
	httputil "slotter/pkg/http"
	"slotter/pkg/logger"
	"slotter/pkg/middleware"
	"slotter/pkg/model"
	"strings"
)

type contextKey struct{}

// Resolver maps a token to an identity. An error means the token is not valid.
type Resolver interface {
	Resolve(ctx context.Context, token string) (*model.Identity, error)
}

func WithIdentity(ctx context.Context, identity *model.Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, identity)
}

// IdentityFrom returns the authenticated caller, or nil for anonymous requests.
func IdentityFrom(ctx context.Context) *model.Identity {
	identity, _ := ctx.Value(contextKey{}).(*model.Identity)
	return identity
}

// RequireIdentity returns the caller or an Unauthorized error.
func RequireIdentity(ctx context.Context) (*model.Identity, error) {
	if identity := IdentityFrom(ctx); identity != nil {
		return identity, nil
	}
	return nil, apperrors.Unauthorized("Authentication credentials were not provided")
}

// BearerToken extracts the token of an "Authorization: Bearer <token>" header. The
// "Token" scheme is accepted as well. ok is false for any other shape.
func BearerToken(header string) (token string, ok bool) {
	scheme, value, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found {
		return "", false
	}
	if !strings.EqualFold(scheme, "Bearer") && !strings.EqualFold(scheme, "Token") {
		return "", false
	}
	value = strings.TrimSpace(value)
	if value == "" || strings.ContainsAny(value, " \t") {
		return "", false
	}
	return value, true
}

// Authenticate lets requests without an Authorization header through anonymously.
// A header that is malformed or carries an unknown token is rejected with 401.
func Authenticate(resolver Resolver, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := BearerToken(header)
			if !ok {
				_ = httputil.WriteError(w, apperrors.Unauthorized("Invalid authorization header"))
				return
			}

			identity, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				if !apperrors.HasCode(err, apperrors.CodeUnauthorized) {
					log.Error("Failed to resolve token",
						"request_id", middleware.RequestIDFrom(r.Context()),
						"error", err,
					)
				}
				_ = httputil.WriteError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}
