package helpers

import (
	"encoding/json"
	"net/http"

	"github.com/UmangSachdeva/fintrack/i18n"
)

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Page is the envelope of every list response.
type Page[T any] struct {
	Data  []T   `json:"data"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

type MessageResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError writes the error envelope with the message localized for r.
func WriteError(w http.ResponseWriter, r *http.Request, status int, code string, args ...any) {
	WriteJSON(w, status, ErrorResponse{Error: ErrorBody{Code: code, Message: i18n.T(r.Context(), code, args...)}})
}

// WriteMessage writes a localized success message.
func WriteMessage(w http.ResponseWriter, r *http.Request, status int, key string) {
	WriteJSON(w, status, MessageResponse{Status: "success", Message: i18n.T(r.Context(), key)})
}
