package middleware

import (
	"net/http"

	"github.com/shashiranjanraj/stockpile/pkg/auth"
	"github.com/shashiranjanraj/stockpile/pkg/logger"
	"github.com/shashiranjanraj/stockpile/pkg/response"
)

// Authenticator turns a bearer token into the caller's identity.
type Authenticator interface {
	Authenticate(token string) (auth.Identity, error)
}

// Auth rejects requests without a valid token and stores the caller's
// Identity in the request context. The request logger gains subject_id.
//
// The Authorization header may carry "Bearer <jwt>" or the raw token.
func Auth(tokens Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := tokens.Authenticate(auth.FromHeader(r.Header.Get("Authorization")))
			if err != nil {
				logger.WithCtx(r.Context()).Debug("authentication failed", "error", err)
				response.Fail(w, err)
				return
			}

			ctx := auth.WithIdentity(r.Context(), id)
			ctx = logger.InjectLogger(ctx, logger.WithCtx(ctx).With("subject_id", id.SubjectID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
