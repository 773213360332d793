package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

var (
	errEmptyBody     = errors.New("request body is required")
	errMalformedJSON = errors.New("malformed JSON")
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// decodeJSON reads a single JSON value from the body into dst.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return maxErr
		}
		return fmt.Errorf("%w: %v", errMalformedJSON, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: unexpected data after the request object", errMalformedJSON)
	}
	return nil
}

type messageResponse struct {
	Message string `json:"message"`
}
