package auth

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/quizdesk/quizdesk/internal/rbac"
)

// AttachRoleFromDB overrides the token's role claim with the authoritative
// one from the users table, so demoting an admin takes effect before their
// token expires. When the user row is gone the claim stands only if
// allowClaimFallback is set (dev tokens).
func AttachRoleFromDB(db *sql.DB, allowClaimFallback bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			sub := SubjectFromContext(ctx)
			claimRole := rbac.RoleFromContext(ctx)

			var typ int
			err := db.QueryRowContext(ctx, `SELECT type FROM users WHERE id=$1`, sub).Scan(&typ)
			switch {
			case err == nil:
				next.ServeHTTP(w, r.WithContext(rbac.WithRole(ctx, RoleForType(typ))))
			case errors.Is(err, sql.ErrNoRows):
				if allowClaimFallback && claimRole != "" {
					next.ServeHTTP(w, r)
					return
				}
				http.Error(w, "forbidden", http.StatusForbidden)
			default:
				if allowClaimFallback && claimRole != "" {
					next.ServeHTTP(w, r)
					return
				}
				http.Error(w, "forbidden", http.StatusForbidden)
			}
		})
	}
}

// RoleForType maps the users.type column to an RBAC role.
// 2 is an admin account; everything else is a customer.
func RoleForType(typ int) string {
	if typ == 2 {
		return rbac.RoleAdmin
	}
	return rbac.RoleCustomer
}
