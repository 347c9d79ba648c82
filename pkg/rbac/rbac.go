// Package rbac gates routes by the caller's role.
package rbac

import (
	"net/http"

	"github.com/shashiranjanraj/stockpile/pkg/apperr"
	"github.com/shashiranjanraj/stockpile/pkg/auth"
	"github.com/shashiranjanraj/stockpile/pkg/response"
)

// HasRole allows only callers holding one of roles. It must run after
// middleware.Auth; a request without an Identity is refused.
//
// Services repeat the same check, so this only saves a trip into them.
func HasRole(roles ...auth.Role) func(http.Handler) http.Handler {
	allowed := make(map[auth.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := auth.FromContext(r.Context())
			if !ok || !allowed[id.Role] {
				response.Fail(w, apperr.New(apperr.AccessDenied, "access denied"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
