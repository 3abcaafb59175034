package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/NordCoder/Authly/internal/domain/user"
	"github.com/NordCoder/Authly/internal/obs"
	"github.com/NordCoder/Authly/internal/services/auth-api/httpx"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type CookieConfig struct {
	Name   string
	Path   string
	Domain string
	Secure bool
	MaxAge time.Duration
}

type Handler struct {
	log    *zap.Logger
	uc     *Usecase
	cookie CookieConfig
}

func NewHandler(uc *Usecase, cookie CookieConfig, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	if cookie.Name == "" {
		cookie.Name = "refreshToken"
	}
	if cookie.Path == "" {
		cookie.Path = "/"
	}
	return &Handler{log: log, uc: uc, cookie: cookie}
}

func (h *Handler) Mount(r *mux.Router) {
	r.HandleFunc("/auth/register", h.Register).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)
	r.HandleFunc("/auth/refresh", h.Refresh).Methods(http.MethodPost)
	r.HandleFunc("/auth/logout", h.Logout).Methods(http.MethodPost)
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type authResponse struct {
	User        userPayload `json:"user"`
	AccessToken string      `json:"accessToken"`
}

type accessTokenResponse struct {
	AccessToken string `json:"accessToken"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	u, pair, err := h.uc.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		h.mapErr(r.Context(), w, err)
		return
	}

	h.log.Info("user registered", zap.Int64("user_id", u.ID), zap.String("username", u.Username))

	h.setRefreshCookie(w, pair.Refresh)
	httpx.JSON(w, http.StatusCreated, authResponse{
		User:        userPayload{Username: u.Username, Email: u.Email},
		AccessToken: pair.Access,
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	u, pair, err := h.uc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.mapErr(r.Context(), w, err)
		return
	}

	h.log.Info("user logged in", zap.Int64("user_id", u.ID))

	h.setRefreshCookie(w, pair.Refresh)
	httpx.JSON(w, http.StatusOK, authResponse{
		User:        userPayload{Username: u.Username, Email: u.Email},
		AccessToken: pair.Access,
	})
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	access, err := h.uc.Refresh(r.Context(), h.refreshFromCookie(r))
	if err != nil {
		h.mapErr(r.Context(), w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, accessTokenResponse{AccessToken: access})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.Revoke(r.Context(), h.refreshFromCookie(r)); err != nil {
		h.mapErr(r.Context(), w, err)
		return
	}

	h.clearRefreshCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (credentialsRequest, bool) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeValidation, "Invalid request body")
		return req, false
	}
	if req.Email == "" || req.Password == "" {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeValidation, "Email and password are required")
		return req, false
	}
	return req, true
}

func (h *Handler) mapErr(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, user.ErrNotFound):
		httpx.Error(w, http.StatusNotFound, httpx.CodeNotFound, "User not found")
	case errors.Is(err, user.ErrEmailTaken):
		httpx.Error(w, http.StatusConflict, httpx.CodeConflict, "Email already in use")
	case errors.Is(err, ErrWeakPassword):
		httpx.Error(w, http.StatusBadRequest, httpx.CodeValidation, "Password must be at least 8 characters")
	case errors.Is(err, ErrInvalidCredentials):
		httpx.Error(w, http.StatusUnauthorized, httpx.CodeAuthentication, "Invalid email or password")
	case errors.Is(err, ErrInvalidRefresh):
		httpx.Error(w, http.StatusUnauthorized, httpx.CodeAuthentication, "Invalid refresh token")
	case errors.Is(err, ErrRefreshExpired):
		httpx.Error(w, http.StatusUnauthorized, httpx.CodeAuthentication, "Refresh token expired, please login again")
	default:
		obs.WithTrace(ctx, h.log).Error("auth request failed", zap.Error(err))
		httpx.Error(w, http.StatusInternalServerError, httpx.CodeServerError, "Internal server error")
	}
}

func (h *Handler) setRefreshCookie(w http.ResponseWriter, raw string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    raw,
		Path:     h.cookie.Path,
		Domain:   h.cookie.Domain,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(h.cookie.MaxAge.Seconds()),
		Expires:  time.Now().Add(h.cookie.MaxAge).UTC(),
	})
}

func (h *Handler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     h.cookie.Path,
		Domain:   h.cookie.Domain,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
	})
}

func (h *Handler) refreshFromCookie(r *http.Request) string {
	c, err := r.Cookie(h.cookie.Name)
	if err != nil {
		return ""
	}
	return c.Value
}
