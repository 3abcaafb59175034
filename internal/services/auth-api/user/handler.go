package user

import (
	"errors"
	"net/http"

	domainuser "github.com/NordCoder/Authly/internal/domain/user"
	"github.com/NordCoder/Authly/internal/services/auth-api/auth"
	"github.com/NordCoder/Authly/internal/services/auth-api/httpx"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type Handler struct {
	log   *zap.Logger
	users domainuser.Repo
}

func NewHandler(users domainuser.Repo, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{log: log, users: users}
}

// Mount registers routes relative to a /users subrouter; the caller is
// expected to have attached the authenticate middleware to it.
func (h *Handler) Mount(r *mux.Router) {
	r.HandleFunc("/current", h.Current).Methods(http.MethodGet)
}

type userPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type userResponse struct {
	User userPayload `json:"user"`
}

func (h *Handler) Current(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromCtx(r.Context())
	if !ok {
		httpx.Error(w, http.StatusInternalServerError, httpx.CodeServerError, "Internal server error")
		return
	}

	u, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domainuser.ErrNotFound) {
			httpx.Error(w, http.StatusNotFound, httpx.CodeNotFound, "User not found")
			return
		}
		h.log.Error("load current user", zap.Int64("user_id", userID), zap.Error(err))
		httpx.Error(w, http.StatusInternalServerError, httpx.CodeServerError, "Internal server error")
		return
	}

	httpx.JSON(w, http.StatusOK, userResponse{
		User: userPayload{Username: u.Username, Email: u.Email},
	})
}
