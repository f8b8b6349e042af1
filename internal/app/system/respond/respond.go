// Package respond writes the JSON bodies shared by every API handler.
package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// MaxBodyBytes bounds request bodies. Profile images arrive as data URLs,
// so this is larger than a plain form would need.
const MaxBodyBytes = 8 << 20

// Body is the error/message envelope.
type Body struct {
	Message string   `json:"message"`
	Code    string   `json:"code,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Message writes {"message": msg}.
func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, Body{Message: msg})
}

// Coded writes {"message": msg, "code": code}.
func Coded(w http.ResponseWriter, status int, msg, code string) {
	JSON(w, status, Body{Message: msg, Code: code})
}

// Invalid writes a 400 with the individual validation problems.
func Invalid(w http.ResponseWriter, msg string, problems []string) {
	JSON(w, http.StatusBadRequest, Body{Message: msg, Errors: problems})
}

// ServerError writes the generic 500 body. The cause is logged by the caller.
func ServerError(w http.ResponseWriter) {
	Message(w, http.StatusInternalServerError, "Server error")
}

// Decode reads a JSON request body into v, rejecting oversized bodies and
// trailing data.
func Decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("request body is empty")
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if dec.More() {
		return fmt.Errorf("invalid JSON body: trailing data")
	}
	return nil
}
