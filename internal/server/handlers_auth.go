package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/claude/drgym/internal/auth"
	"github.com/claude/drgym/internal/models"
	"github.com/claude/drgym/internal/schema"
	"github.com/claude/drgym/internal/storage"
)

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the session token for non-browser clients.
type LoginResponse struct {
	Username  string    `json:"username"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := schema.ValidateRegistration(req); errs != nil {
		writeValidation(w, errs)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.log.Error("hashing password", "error", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}
	u, err := s.store.CreateUser(r.Context(), models.User{
		Username: req.Username,
		Name:     req.Name,
		Surname:  req.Surname,
		Email:    req.Email,
		Weight:   req.Weight,
		Height:   req.Height,
	}, hash)
	if errors.Is(err, storage.ErrConflict) {
		writeError(w, http.StatusConflict, "username or email already taken")
		return
	}
	if err != nil {
		s.writeStoreError(w, err, "registration failed")
		return
	}
	s.log.Info("user registered", "username", u.Username)
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	hash, err := s.store.PasswordHash(r.Context(), req.Username)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.writeStoreError(w, err, "login failed")
		return
	}
	if err != nil || auth.CheckPassword(hash, req.Password) != nil {
		writeError(w, http.StatusUnauthorized, auth.ErrBadCredentials.Error())
		return
	}

	tok, exp, err := s.tokens.Issue(req.Username)
	if err != nil {
		s.log.Error("issuing token", "error", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    tok,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, LoginResponse{Username: req.Username, Token: tok, ExpiresAt: exp})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	me, _ := CurrentUser(r)
	u, err := s.store.GetUser(r.Context(), me)
	if err != nil {
		s.writeStoreError(w, err, "loading user")
		return
	}
	writeJSON(w, http.StatusOK, u)
}
