// Package response writes the JSON envelope every endpoint answers with:
//
//	{success, message?, count?, data?, error?}
package response

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"jsoncrud/pkg/apperror"
	"jsoncrud/pkg/logger"
)

type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func JSON(w http.ResponseWriter, status int, env Envelope) {
	WriteJSON(w, status, env)
}

// WriteJSON writes v as a JSON body with status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Sugar.Errorf("Failed to write response: %v", err)
	}
}

// OK writes a successful single-record response.
func OK(w http.ResponseWriter, status int, message string, data any) {
	JSON(w, status, Envelope{Success: true, Message: message, Data: data})
}

// List writes a successful collection response with its count.
func List(w http.ResponseWriter, count int, data any) {
	JSON(w, http.StatusOK, Envelope{Success: true, Count: &count, Data: data})
}

func Fail(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Envelope{Success: false, Message: message})
}

// Error maps err onto a status and envelope. Classified client errors carry
// their own message; anything answered with a 500 gets fallback as the
// message and the error text in the error field.
func Error(w http.ResponseWriter, err error, fallback string) {
	status := apperror.Status(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		logger.Sugar.Errorf("%s: %v", fallback, err)
		JSON(w, status, Envelope{Success: false, Message: fallback, Error: err.Error()})
		return
	}
	Fail(w, status, apperror.MessageOf(err, fallback))
}

// Decode reads a JSON request body into v. An empty body leaves v untouched
// and is not an error.
func Decode(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
