package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"gitea.com/go-chi/session"

	"github.com/opsdeck/scenario-hub/security"
	"github.com/opsdeck/scenario-hub/userctx"
)

// unauthorized writes a JSON 401 so API clients get a parseable body instead
// of a login redirect
func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error": map[string]string{
			"code":    "UNAUTHORIZED",
			"message": message,
		},
	})
}

// RequireAuth ensures the caller is authenticated, either through the
// browser session established by the login flow or through a bearer token
// issued by the token endpoint. The resolved identity is placed on the
// request context for handlers and the activity log.
func RequireAuth(signer *security.JWTSigner) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				raw := strings.TrimPrefix(auth, "Bearer ")
				claims, err := signer.ParseAndValidate(raw)
				if err != nil {
					unauthorized(w, "invalid or expired token")
					return
				}

				ctx := userctx.SetUserEmail(r.Context(), claims.Email)
				ctx = userctx.SetUserName(ctx, claims.Name)
				ctx = userctx.SetUserRoles(ctx, claims.Roles)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			sess := session.GetSession(r)
			email, _ := sess.Get("user_email").(string)
			if email == "" {
				unauthorized(w, "authentication required")
				return
			}

			name, _ := sess.Get("user_name").(string)
			roles, _ := sess.Get("user_roles").([]string)

			ctx := userctx.SetUserEmail(r.Context(), email)
			ctx = userctx.SetUserName(ctx, name)
			ctx = userctx.SetUserRoles(ctx, roles)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a route subtree to users holding at least one of the
// named roles. It must run after RequireAuth.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed := false
			for _, role := range roles {
				if userctx.HasRole(r.Context(), role) {
					allowed = true
					break
				}
			}
			if !allowed {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				json.NewEncoder(w).Encode(map[string]interface{}{
					"success": false,
					"error": map[string]string{
						"code":    "FORBIDDEN",
						"message": "insufficient role",
					},
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
