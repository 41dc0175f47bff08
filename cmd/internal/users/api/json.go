package usersapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"
)

// errorResponse is the structured failure body: a short title, a
// human-readable message, the HTTP status, a timestamp, and an optional
// per-field error map. It never carries plaintexts or hashes.
type errorResponse struct {
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Status    int               `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Errors    map[string]string `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, title, msg string) {
	writeJSON(w, status, errorResponse{
		Title:     title,
		Message:   msg,
		Status:    status,
		Timestamp: time.Now().UTC(),
	})
}

func writeFieldErrors(w http.ResponseWriter, status int, title, msg string, fields map[string]string) {
	writeJSON(w, status, errorResponse{
		Title:     title,
		Message:   msg,
		Status:    status,
		Timestamp: time.Now().UTC(),
		Errors:    fields,
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, dst any) error {
	if r.Body == nil {
		return errors.New("empty body")
	}
	defer func() { _ = r.Body.Close() }()

	body := http.MaxBytesReader(w, r.Body, maxBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	// Ensure there is no extra data after the first JSON value.
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("extra data after JSON object")
	}
	return nil
}
