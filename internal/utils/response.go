package utils

import (
	"encoding/json"
	"net/http"
)

// APIResponse is the envelope of POST replies and JSON errors.
type APIResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func SuccessResponse(message string) APIResponse {
	return APIResponse{OK: true, Message: message}
}

func ErrorResponse(message, err string) APIResponse {
	return APIResponse{OK: false, Message: message, Error: err}
}

// WriteJSON encodes data as the response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError sends an ErrorResponse.
func WriteError(w http.ResponseWriter, status int, message, err string) {
	WriteJSON(w, status, ErrorResponse(message, err))
}
