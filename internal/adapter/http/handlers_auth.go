package adapthttp

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"

	"bookstore/internal/app"
	"bookstore/internal/domain"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// SSOConfig carries the OIDC provider used for optional SSO login.
type SSOConfig struct {
	Provider *oidc.Provider
	OAuth2   oauth2.Config
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.auth.Codec().TTL().Seconds()),
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeFail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid request")
		return
	}

	token, err := s.auth.Login(r.Context(), req.Username, req.Password)
	if errors.Is(err, app.ErrInvalidCredentials) {
		writeFail(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		writeFail(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	s.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "username": req.Username})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeFail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}

	identity := identityFrom(r.Context())
	if err := s.auth.Logout(r.Context(), identity.Subject); err != nil {
		writeFail(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	s.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// handleRefresh issues a fresh token for the authenticated subject. The
// previous token is not revoked; it dies at its own expiry.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeFail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}

	identity := identityFrom(r.Context())
	token, err := s.auth.Refresh(r.Context(), identity.Subject)
	if err != nil {
		writeFail(w, http.StatusInternalServerError, "Failed to refresh session")
		return
	}

	s.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeFail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid request")
		return
	}

	err := s.auth.Register(r.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, app.ErrEmptyCredentials):
		writeFail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUserExists):
		writeFail(w, http.StatusConflict, err.Error())
	case err != nil:
		writeFail(w, http.StatusInternalServerError, "Internal Server Error")
	default:
		writeJSON(w, http.StatusCreated, map[string]any{"success": true})
	}
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeFail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}

	var req struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid request")
		return
	}

	identity := identityFrom(r.Context())
	err := s.auth.ChangePassword(r.Context(), identity.Subject, req.OldPassword, req.NewPassword)
	switch {
	case errors.Is(err, app.ErrEmptyCredentials), errors.Is(err, app.ErrSamePassword), errors.Is(err, app.ErrPasswordIncorrect):
		writeFail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUserNotFound):
		writeFail(w, http.StatusNotFound, "User not found")
	case err != nil:
		writeFail(w, http.StatusInternalServerError, "Internal Server Error")
	default:
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}

func (s *Server) handleRole(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeFail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}

	identity := identityFrom(r.Context())
	role, err := s.auth.Role(r.Context(), identity.Subject)
	if err != nil {
		writeFail(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "role": role})
}

func (s *Server) handleSSOLogin(w http.ResponseWriter, r *http.Request) {
	if s.sso == nil {
		writeFail(w, http.StatusNotFound, "sso disabled")
		return
	}

	state := generateState()
	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode, // Lax required for cross-site redirect returns
		MaxAge:   300,
	})
	http.Redirect(w, r, s.sso.OAuth2.AuthCodeURL(state), http.StatusFound)
}

func (s *Server) handleSSOCallback(w http.ResponseWriter, r *http.Request) {
	if s.sso == nil {
		writeFail(w, http.StatusNotFound, "sso disabled")
		return
	}

	state, err := r.Cookie("oauth_state")
	if err != nil || r.URL.Query().Get("state") != state.Value {
		writeFail(w, http.StatusBadRequest, "invalid state")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: "oauth_state", MaxAge: -1, Path: "/"})

	token, err := s.sso.OAuth2.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		writeFail(w, http.StatusInternalServerError, "failed to exchange token")
		return
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		writeFail(w, http.StatusInternalServerError, "no id_token")
		return
	}

	idToken, err := s.sso.Provider.Verifier(&oidc.Config{ClientID: s.sso.OAuth2.ClientID}).Verify(r.Context(), rawIDToken)
	if err != nil {
		writeFail(w, http.StatusInternalServerError, "failed to verify token")
		return
	}

	var claims struct {
		Email string `json:"email"`
		Sub   string `json:"sub"`
	}
	if err := idToken.Claims(&claims); err != nil {
		writeFail(w, http.StatusInternalServerError, "failed to parse claims")
		return
	}

	username := claims.Email
	if username == "" {
		username = claims.Sub
	}

	sessionToken, err := s.auth.LoginWithSubject(r.Context(), username)
	if err != nil {
		writeFail(w, http.StatusInternalServerError, "login failed")
		return
	}

	s.setSessionCookie(w, sessionToken)
	http.Redirect(w, r, "/", http.StatusFound)
}

func generateState() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}
