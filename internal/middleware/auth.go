// Package middleware provides the HTTP middlewares of the API: bearer token
// authentication, role checks, request logging, metrics, rate limiting and
// security headers.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/atinyakov/portfolio-api/internal/apperr"
	"github.com/atinyakov/portfolio-api/internal/models"
	"go.uber.org/zap"
)

type ctxKey string

const identityKey ctxKey = "identity"

// MsgForbidden is returned when the identity lacks the required role.
const MsgForbidden = "You do not have permission to access this resource."

// Authenticator resolves a bearer token to a verified identity.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (models.Identity, error)
}

// IdentityHandler is an HTTP handler that runs only with a verified identity.
type IdentityHandler func(w http.ResponseWriter, r *http.Request, id models.Identity)

// Guard admits requests that carry a valid, unrevoked bearer token.
type Guard struct {
	auth Authenticator
	log  *zap.Logger
}

// NewGuard creates a Guard backed by auth.
func NewGuard(auth Authenticator, log *zap.Logger) *Guard {
	if log == nil {
		log = zap.NewNop()
	}
	return &Guard{auth: auth, log: log}
}

// Authenticated extracts the token from "Authorization: Bearer <token>",
// authenticates it and calls next with the resolved identity. The identity
// is also stored in the request context. Any failure answers 401 before
// next runs.
func (g *Guard) Authenticated(next IdentityHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := BearerToken(r)
		if !ok {
			WriteError(w, g.log, apperr.New(apperr.ErrUnauthenticated, "Unauthorized"))
			return
		}
		id, err := g.auth.Authenticate(r.Context(), token)
		if err != nil {
			WriteError(w, g.log, err)
			return
		}
		ctx := context.WithValue(r.Context(), identityKey, id)
		next(w, r.WithContext(ctx), id)
	}
}

// Admin is Authenticated followed by RequireRole(models.RoleAdmin).
func (g *Guard) Admin(next IdentityHandler) http.HandlerFunc {
	return g.Authenticated(RequireRole(models.RoleAdmin, next))
}

// RequireRole calls next only when the verified identity has role. It never
// looks at the token; the identity must come from Guard.Authenticated.
func RequireRole(role models.Role, next IdentityHandler) IdentityHandler {
	return func(w http.ResponseWriter, r *http.Request, id models.Identity) {
		if id.Role != role {
			WriteError(w, nil, apperr.New(apperr.ErrForbidden, MsgForbidden))
			return
		}
		next(w, r, id)
	}
}

// BearerToken returns the token of a Bearer authorization header. The scheme
// is matched case-insensitively.
func BearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// IdentityFromContext returns the identity stored by Guard.Authenticated.
func IdentityFromContext(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(identityKey).(models.Identity)
	return id, ok
}
