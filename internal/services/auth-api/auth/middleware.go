package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/NordCoder/Authly/internal/obs"
	"github.com/NordCoder/Authly/internal/services/auth-api/httpx"
	"github.com/NordCoder/Authly/internal/token"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type ctxKey int

const userIDKey ctxKey = 1

func UserIDFromCtx(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

// Authenticate gates protected routes on a Bearer access token. Header shape
// is checked before any cryptographic work; on success the subject id is
// attached to the request context.
func Authenticate(verify func(string) (int64, error), log *zap.Logger) mux.MiddlewareFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				httpx.Error(w, http.StatusUnauthorized, httpx.CodeAuthentication,
					"Access denied, no token provided.")
				return
			}

			userID, err := verify(raw)
			switch {
			case errors.Is(err, token.ErrExpired):
				httpx.Error(w, http.StatusUnauthorized, httpx.CodeAuthentication,
					"Access token expired, request a new one with refresh token.")
				return
			case errors.Is(err, token.ErrMalformed):
				httpx.Error(w, http.StatusUnauthorized, httpx.CodeAuthentication,
					"Access token invalid.")
				return
			case err != nil:
				obs.WithTrace(r.Context(), log).Error("access token verification", zap.Error(err))
				httpx.Error(w, http.StatusInternalServerError, httpx.CodeServerError,
					"Internal server error")
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}
