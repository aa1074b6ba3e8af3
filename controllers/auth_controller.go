package controllers

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"time"

	"gitea.com/go-chi/session"
	"go.uber.org/zap"

	"github.com/opsdeck/scenario-hub/authenticator"
	"github.com/opsdeck/scenario-hub/models"
	"github.com/opsdeck/scenario-hub/security"
	"github.com/opsdeck/scenario-hub/services"
	"github.com/opsdeck/scenario-hub/userctx"
)

// AuthController handles the OIDC browser login flow and local token login
type AuthController struct {
	services *services.Services
	signer   *security.JWTSigner
	tokenTTL time.Duration
	logger   *zap.Logger
}

// NewAuthController creates a new auth controller
func NewAuthController(services *services.Services, signer *security.JWTSigner, logger *zap.Logger) *AuthController {
	return &AuthController{
		services: services,
		signer:   signer,
		tokenTTL: 12 * time.Hour,
		logger:   logger,
	}
}

// SetTokenTTL overrides the bearer token lifetime
func (ac *AuthController) SetTokenTTL(ttl time.Duration) {
	if ttl > 0 {
		ac.tokenTTL = ttl
	}
}

// Login initiates the OIDC authentication flow
func (ac *AuthController) Login(provider authenticator.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := generateRandomState()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		// Save the state in the session to validate in callback
		sess := session.GetSession(r)
		sess.Set("state", state)

		http.Redirect(w, r, provider.GetAuthURL(state), http.StatusTemporaryRedirect)
	}
}

// Callback handles the redirect back from the identity provider
func (ac *AuthController) Callback(provider authenticator.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := session.GetSession(r)

		storedState := sess.Get("state")
		if storedState == nil {
			http.Error(w, "State not found in session", http.StatusBadRequest)
			return
		}
		if r.URL.Query().Get("state") != storedState.(string) {
			http.Error(w, "Invalid state parameter", http.StatusBadRequest)
			return
		}

		token, err := provider.ExchangeCode(r.Context(), r.URL.Query().Get("code"))
		if err != nil {
			http.Error(w, "Failed to exchange authorization code for a token: "+err.Error(), http.StatusUnauthorized)
			return
		}

		claims, err := provider.GetClaims(r.Context(), token)
		if err != nil {
			http.Error(w, "Failed to verify ID Token: "+err.Error(), http.StatusInternalServerError)
			return
		}

		user, err := ac.services.User.EnsureUser(r.Context(), claims.Email(), claims.DisplayName())
		if err != nil {
			ac.logger.Error("failed to provision user from identity", zap.Error(err))
			http.Error(w, "Failed to provision user", http.StatusInternalServerError)
			return
		}
		if !user.Active {
			http.Error(w, "Account is inactive", http.StatusForbidden)
			return
		}

		sess.Set("user_email", user.Email)
		sess.Set("user_name", user.Name)
		sess.Set("user_roles", user.Roles)
		sess.Delete("state")

		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// Logout clears the session
func (ac *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	sess := session.GetSession(r)
	sess.Delete("user_email")
	sess.Delete("user_name")
	sess.Delete("user_roles")

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// TokenLogin exchanges a local email/password for a bearer token, used by
// scripted API clients that cannot drive the browser flow
func (ac *AuthController) TokenLogin(w http.ResponseWriter, r *http.Request) {
	var form models.LoginForm
	if err := decodeBody(r, &form); err != nil {
		writeError(w, err)
		return
	}

	user, err := ac.services.User.Authenticate(r.Context(), form.Email, form.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	now := time.Now()
	raw, err := ac.signer.Sign(security.APIClaims{
		Email:     user.Email,
		Name:      user.Name,
		Roles:     user.Roles,
		IssuedAt:  now,
		ExpiresAt: now.Add(ac.tokenTTL),
	})
	if err != nil {
		ac.logger.Error("failed to sign token", zap.Error(err))
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"token":      raw,
		"expires_at": now.Add(ac.tokenTTL).UTC(),
		"user":       user,
	})
}

// Me returns the authenticated identity as the middleware resolved it
func (ac *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"email": userctx.GetUserEmail(ctx),
		"name":  userctx.GetUserName(ctx),
		"roles": userctx.GetUserRoles(ctx),
	})
}

// generateRandomState generates a random state value for CSRF protection
func generateRandomState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}
