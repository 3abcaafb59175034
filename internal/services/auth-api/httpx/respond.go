package httpx

import (
	"encoding/json"
	"net/http"
)

// Error codes surfaced in response bodies. Fixed strings; handlers never leak
// internal error detail beyond these plus a static message.
const (
	CodeNotFound       = "NotFound"
	CodeAuthentication = "AuthenticationError"
	CodeValidation     = "ValidationError"
	CodeConflict       = "Conflict"
	CodeServerError    = "ServerError"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func Error(w http.ResponseWriter, status int, code, message string) {
	JSON(w, status, errorBody{Code: code, Message: message})
}
