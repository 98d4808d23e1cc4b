package api

import (
	"encoding/json"
	"log"
	"net/http"
)

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func WriteError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(ErrorEnvelope{
		Error: APIError{Code: code, Message: message},
	})
}

// WriteInternal logs the real error for operator diagnostics and returns a
// sanitized envelope. Store/connection detail never reaches the caller.
func WriteInternal(w http.ResponseWriter, op string, err error) {
	log.Printf("[api] %s: %v", op, err)
	WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
}

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
