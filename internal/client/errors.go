package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized means the server rejected the credentials or token. The
	// stored session has already been cleared when this is returned.
	ErrUnauthorized = errors.New("not authorized")
	ErrNotLoggedIn  = errors.New("not logged in")
	ErrNotFound     = errors.New("not found")
)

// APIError is a non-2xx response decoded from the server's problem body.
type APIError struct {
	Status int
	Type   string
	Title  string
	Detail string
	Fields map[string]string
}

func (e *APIError) Error() string {
	msg := e.Detail
	if msg == "" {
		msg = e.Title
	}
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}
