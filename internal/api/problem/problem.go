package problem

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
)

const contentType = "application/problem+json"

// Problem type URIs used by the planner API.
const (
	TypeValidation   = "https://planner.togather.foundation/problems/validation-error"
	TypeConflict     = "https://planner.togather.foundation/problems/conflict"
	TypeUnauthorized = "https://planner.togather.foundation/problems/unauthorized"
	TypeNotFound     = "https://planner.togather.foundation/problems/not-found"
	TypeRateLimited  = "https://planner.togather.foundation/problems/rate-limited"
	TypeTooLarge     = "https://planner.togather.foundation/problems/payload-too-large"
	TypeServerError  = "https://planner.togather.foundation/problems/server-error"
)

// ProblemDetails is an RFC 7807 error body.
type ProblemDetails struct {
	Type     string         `json:"type"`
	Title    string         `json:"title"`
	Status   int            `json:"status"`
	Detail   string         `json:"detail,omitempty"`
	Instance string         `json:"instance,omitempty"`
	Errors   map[string]any `json:"errors,omitempty"`
}

type Option func(*ProblemDetails)

func WithDetail(detail string) Option {
	return func(p *ProblemDetails) {
		p.Detail = detail
	}
}

func WithErrors(errs map[string]any) Option {
	return func(p *ProblemDetails) {
		p.Errors = errs
	}
}

// Write logs err with the request logger and writes the problem body. Without
// WithDetail, the detail is err's text outside production and the status text
// in production.
func Write(w http.ResponseWriter, r *http.Request, status int, typ, title string, err error, env string, opts ...Option) {
	p := ProblemDetails{
		Type:   typ,
		Title:  title,
		Status: status,
	}
	for _, opt := range opts {
		opt(&p)
	}

	if p.Detail == "" && err != nil {
		if env != "production" {
			p.Detail = err.Error()
		} else {
			p.Detail = http.StatusText(status)
		}
	}
	if r != nil {
		p.Instance = r.URL.Path
		logProblem(r, p, err)
	}

	WriteProblem(w, p)
}

func logProblem(r *http.Request, p ProblemDetails, err error) {
	if err == nil || p.Status < 400 {
		return
	}
	logger := zerolog.Ctx(r.Context())
	event := logger.Warn()
	if p.Status >= 500 {
		event = logger.Error()
	}
	event.Err(err).
		Int("status", p.Status).
		Str("type", p.Type).
		Str("path", r.URL.Path).
		Str("method", r.Method).
		Msg(p.Title)
}

func WriteProblem(w http.ResponseWriter, p ProblemDetails) {
	payload, err := json.Marshal(p)
	if err != nil {
		fallback := fmt.Sprintf(`{"type":"about:blank","title":%q,"status":500}`, http.StatusText(http.StatusInternalServerError))
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(fallback))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(p.Status)
	_, _ = w.Write(payload)
}
