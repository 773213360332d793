package middleware

import (
	"fmt"
	"net/http"

	"github.com/Togather-Foundation/planner/internal/api/problem"
)

// DefaultMaxBodySize caps API request bodies at 1MB.
const DefaultMaxBodySize int64 = 1 << 20

// RequestSize wraps the body in http.MaxBytesReader. Requests that declare a
// Content-Length above the limit are refused with 413 before reaching the
// handler; streamed bodies fail on read and the JSON decoder reports 413.
func RequestSize(maxBytes int64, env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				writeTooLarge(w, r, maxBytes, env)
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeTooLarge(w http.ResponseWriter, r *http.Request, maxBytes int64, env string) {
	problem.Write(w, r, http.StatusRequestEntityTooLarge, problem.TypeTooLarge, "Request body too large", nil, env,
		problem.WithDetail(fmt.Sprintf("request body exceeds %d bytes", maxBytes)))
}
