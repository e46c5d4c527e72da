package http

import (
	"encoding/json"
	"net/http"
)

// Envelope is the standard JSON response wrapper. Every endpoint responds
// with a success flag; message, data and count are filled in as relevant.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Count   *int   `json:"count,omitempty"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// The header has already been sent, nothing more to do
	}
}

// WriteSuccess writes a 200 response with the given data
func WriteSuccess(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

// WriteSuccessMessage writes a 200 response with a message and optional data
func WriteSuccessMessage(w http.ResponseWriter, message string, data any) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

// WriteCreated writes a 201 response with a message and the created resource
func WriteCreated(w http.ResponseWriter, message string, data any) {
	WriteJSON(w, http.StatusCreated, Envelope{Success: true, Message: message, Data: data})
}

// WriteList writes a 200 response with a list payload and its count
func WriteList[T any](w http.ResponseWriter, data []T) {
	count := len(data)
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Data: data, Count: &count})
}

// WriteError writes an error response with the given status and message
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Envelope{Success: false, Message: message})
}
