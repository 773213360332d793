// Package loadtest drives synthetic traffic at a running planner server.
// Reads walk the calendar, the feed and event details; writes sign made-up
// volunteers on and off events, and create events when an admin token is
// supplied.
package loadtest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Profile names a predefined traffic shape.
type Profile string

const (
	ProfileLight  Profile = "light"  // 5 req/s, 1 minute
	ProfileMedium Profile = "medium" // 20 req/s, 2 minutes
	ProfileHeavy  Profile = "heavy"  // 50 req/s, 5 minutes
	ProfileBurst  Profile = "burst"  // 100 req/s for 30 seconds, no ramp
)

// ProfileConfig defines the parameters for a load test.
type ProfileConfig struct {
	RequestsPerSecond int
	Duration          time.Duration
	RampUpTime        time.Duration
	RampDownTime      time.Duration
	// ReadRatio is the share of reads; 0.8 means 80% reads, 20% writes.
	ReadRatio float64
}

var Profiles = map[Profile]ProfileConfig{
	ProfileLight: {
		RequestsPerSecond: 5,
		Duration:          time.Minute,
		RampUpTime:        10 * time.Second,
		RampDownTime:      10 * time.Second,
		ReadRatio:         0.8,
	},
	ProfileMedium: {
		RequestsPerSecond: 20,
		Duration:          2 * time.Minute,
		RampUpTime:        20 * time.Second,
		RampDownTime:      20 * time.Second,
		ReadRatio:         0.8,
	},
	ProfileHeavy: {
		RequestsPerSecond: 50,
		Duration:          5 * time.Minute,
		RampUpTime:        30 * time.Second,
		RampDownTime:      30 * time.Second,
		ReadRatio:         0.7,
	},
	ProfileBurst: {
		RequestsPerSecond: 100,
		Duration:          30 * time.Second,
		ReadRatio:         0.9,
	},
}

type Tester struct {
	baseURL string
	http    *http.Client
	token   string
	logger  zerolog.Logger

	rngMu sync.Mutex
	rng   *rand.Rand

	idsMu    sync.RWMutex
	eventIDs []string

	seq   atomic.Int64
	stats *Statistics
}

type Option func(*Tester)

func WithHTTPClient(hc *http.Client) Option {
	return func(t *Tester) { t.http = hc }
}

// WithToken adds event creation to the write mix using this admin token.
func WithToken(token string) Option {
	return func(t *Tester) { t.token = token }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(t *Tester) { t.logger = logger }
}

func WithSeed(seed int64) Option {
	return func(t *Tester) { t.rng = rand.New(rand.NewSource(seed)) }
}

func New(baseURL string, opts ...Option) *Tester {
	t := &Tester{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  zerolog.Nop(),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Run executes a predefined profile.
func (t *Tester) Run(ctx context.Context, profile Profile) (*Statistics, error) {
	cfg, ok := Profiles[profile]
	if !ok {
		return nil, fmt.Errorf("unknown profile: %s", profile)
	}
	return t.RunCustom(ctx, cfg)
}

// RunCustom executes cfg until it completes or ctx is cancelled.
func (t *Tester) RunCustom(ctx context.Context, cfg ProfileConfig) (*Statistics, error) {
	if cfg.RequestsPerSecond <= 0 {
		return nil, fmt.Errorf("requests per second must be positive")
	}
	if err := t.discoverEvents(ctx); err != nil {
		return nil, err
	}

	t.stats = newStatistics()
	t.logger.Info().
		Str("target", t.baseURL).
		Int("rps", cfg.RequestsPerSecond).
		Dur("duration", cfg.Duration).
		Float64("read_ratio", cfg.ReadRatio).
		Int("events", len(t.eventIDs)).
		Msg("starting load test")

	workers := max(cfg.RequestsPerSecond*2, 10)
	work := make(chan request, workers*2)

	g, gctx := errgroup.WithContext(ctx)
	for range workers {
		g.Go(func() error {
			for req := range work {
				t.execute(gctx, req)
			}
			return nil
		})
	}
	g.Go(func() error {
		defer close(work)
		t.generate(gctx, cfg, work)
		return nil
	})
	_ = g.Wait()

	t.stats.finish()
	return t.stats, nil
}

type request struct {
	method   string
	path     string
	body     any
	endpoint string
	auth     bool
}

func (t *Tester) generate(ctx context.Context, cfg ProfileConfig, work chan<- request) {
	start := time.Now()
	total := cfg.RampUpTime + cfg.Duration + cfg.RampDownTime
	limiter := rate.NewLimiter(rate.Limit(RateAt(0, cfg)), 1)

	for {
		elapsed := time.Since(start)
		if elapsed > total {
			return
		}
		limiter.SetLimit(rate.Limit(RateAt(elapsed, cfg)))
		if err := limiter.Wait(ctx); err != nil {
			return
		}

		var req request
		if t.float() < cfg.ReadRatio {
			req = t.readRequest()
		} else {
			req = t.writeRequest()
		}
		select {
		case work <- req:
		case <-ctx.Done():
			return
		}
	}
}

// RateAt is the target request rate at elapsed, ramping linearly in and out
// of the steady phase. It never drops below one request per second.
func RateAt(elapsed time.Duration, cfg ProfileConfig) float64 {
	target := float64(cfg.RequestsPerSecond)
	rps := target

	switch steadyEnd := cfg.RampUpTime + cfg.Duration; {
	case elapsed < cfg.RampUpTime:
		rps = target * float64(elapsed) / float64(cfg.RampUpTime)
	case elapsed < steadyEnd:
	case elapsed-steadyEnd < cfg.RampDownTime:
		rps = target * (1 - float64(elapsed-steadyEnd)/float64(cfg.RampDownTime))
	default:
		rps = 1
	}
	return max(rps, 1)
}

func (t *Tester) float() float64 {
	t.rngMu.Lock()
	defer t.rngMu.Unlock()
	return t.rng.Float64()
}

func (t *Tester) intn(n int) int {
	t.rngMu.Lock()
	defer t.rngMu.Unlock()
	return t.rng.Intn(n)
}

func (t *Tester) randomEvent() (string, bool) {
	t.idsMu.RLock()
	defer t.idsMu.RUnlock()
	if len(t.eventIDs) == 0 {
		return "", false
	}
	return t.eventIDs[t.intn(len(t.eventIDs))], true
}

func (t *Tester) readRequest() request {
	reads := []request{
		{method: http.MethodGet, path: "/api/events", endpoint: "list_events"},
		{method: http.MethodGet, path: "/api/events.ics", endpoint: "calendar_feed"},
		{method: http.MethodGet, path: "/api/auth/status", endpoint: "auth_status"},
		{method: http.MethodGet, path: "/healthz", endpoint: "healthz"},
	}
	if id, ok := t.randomEvent(); ok {
		reads = append(reads, request{method: http.MethodGet, path: "/api/events/" + id, endpoint: "get_event"})
	}
	return reads[t.intn(len(reads))]
}

func (t *Tester) writeRequest() request {
	id, ok := t.randomEvent()
	if t.token != "" && (!ok || t.intn(4) == 0) {
		n := t.seq.Add(1)
		return request{
			method: http.MethodPost,
			path:   "/api/events",
			body: map[string]string{
				"title": fmt.Sprintf("Load test event %d", n),
				"date":  time.Now().AddDate(0, 0, int(n%30)).Format(time.DateOnly),
			},
			endpoint: "create_event",
			auth:     true,
		}
	}
	if !ok {
		return request{method: http.MethodGet, path: "/api/events", endpoint: "list_events"}
	}

	// Names cycle through a small pool so adds and removes keep rosters short.
	name := fmt.Sprintf("Load Tester %02d", t.intn(20))
	method, endpoint := http.MethodPost, "add_volunteer"
	if t.intn(2) == 0 {
		method, endpoint = http.MethodDelete, "remove_volunteer"
	}
	return request{method: method, path: "/api/events/" + id + "/volunteer", body: map[string]string{"name": name}, endpoint: endpoint}
}

// discoverEvents remembers the ids currently on the calendar.
func (t *Tester) discoverEvents(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"/api/events", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := t.http.Do(req)
	if err != nil {
		return fmt.Errorf("list events: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("list events: HTTP %d", resp.StatusCode)
	}

	var list []struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return fmt.Errorf("decode events: %w", err)
	}
	ids := make([]string, 0, len(list))
	for _, e := range list {
		ids = append(ids, e.ID)
	}

	t.idsMu.Lock()
	t.eventIDs = ids
	t.idsMu.Unlock()
	return nil
}

func (t *Tester) execute(ctx context.Context, work request) {
	var body io.Reader
	if work.body != nil {
		data, err := json.Marshal(work.body)
		if err != nil {
			t.stats.record(work.endpoint, 0, 0)
			return
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, work.method, t.baseURL+work.path, body)
	if err != nil {
		t.stats.record(work.endpoint, 0, 0)
		return
	}
	if work.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if work.auth {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}

	start := time.Now()
	resp, err := t.http.Do(req)
	if err != nil {
		if ctx.Err() == nil {
			t.logger.Debug().Err(err).Str("endpoint", work.endpoint).Msg("request failed")
			t.stats.record(work.endpoint, 0, time.Since(start))
		}
		return
	}
	defer func() { _ = resp.Body.Close() }()

	if work.endpoint == "create_event" && resp.StatusCode == http.StatusCreated {
		var created struct {
			ID string `json:"id"`
		}
		if json.NewDecoder(resp.Body).Decode(&created) == nil && created.ID != "" {
			t.idsMu.Lock()
			t.eventIDs = append(t.eventIDs, created.ID)
			t.idsMu.Unlock()
		}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	t.stats.record(work.endpoint, resp.StatusCode, time.Since(start))
}

// Statistics aggregates outcomes of a run. Status 0 means the request never
// got a response.
type Statistics struct {
	mu        sync.Mutex
	total     int64
	success   int64
	failed    int64
	statuses  map[int]int64
	endpoints map[string]*endpointStats
	start     time.Time
	end       time.Time
}

type endpointStats struct {
	count  int64
	errors int64
	times  []time.Duration
}

func newStatistics() *Statistics {
	return &Statistics{
		statuses:  map[int]int64{},
		endpoints: map[string]*endpointStats{},
		start:     time.Now(),
	}
}

func (s *Statistics) record(endpoint string, status int, took time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total++
	ep := s.endpoints[endpoint]
	if ep == nil {
		ep = &endpointStats{}
		s.endpoints[endpoint] = ep
	}
	ep.count++
	if status >= 200 && status < 300 {
		s.success++
	} else {
		s.failed++
		s.statuses[status]++
		ep.errors++
	}
	if status != 0 {
		ep.times = append(ep.times, took)
	}
}

func (s *Statistics) finish() {
	s.mu.Lock()
	s.end = time.Now()
	s.mu.Unlock()
}

func (s *Statistics) Total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *Statistics) Succeeded() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.success
}

// Endpoints returns request counts keyed by endpoint name.
func (s *Statistics) Endpoints() map[string]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int64, len(s.endpoints))
	for name, ep := range s.endpoints {
		out[name] = ep.count
	}
	return out
}

// Report renders a plain-text summary.
func (s *Statistics) Report() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b strings.Builder
	elapsed := s.end.Sub(s.start)
	fmt.Fprintf(&b, "Duration:        %s\n", elapsed.Round(time.Second))
	fmt.Fprintf(&b, "Total requests:  %d\n", s.total)
	if s.total > 0 {
		fmt.Fprintf(&b, "Successful:      %d (%.1f%%)\n", s.success, percent(s.success, s.total))
		fmt.Fprintf(&b, "Failed:          %d (%.1f%%)\n", s.failed, percent(s.failed, s.total))
	}
	if elapsed > 0 {
		fmt.Fprintf(&b, "Requests/sec:    %.2f\n", float64(s.total)/elapsed.Seconds())
	}

	if len(s.statuses) > 0 {
		b.WriteString("\nFailures by status:\n")
		for _, code := range sortedKeys(s.statuses) {
			label := fmt.Sprint(code)
			if code == 0 {
				label = "no response"
			}
			fmt.Fprintf(&b, "  %-12s %d\n", label, s.statuses[code])
		}
	}

	b.WriteString("\nEndpoint             Count   Errors  p50(ms)  p95(ms)  max(ms)\n")
	names := make([]string, 0, len(s.endpoints))
	for name := range s.endpoints {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		ep := s.endpoints[name]
		fmt.Fprintf(&b, "%-20s %6d %8d %8d %8d %8d\n", name, ep.count, ep.errors,
			percentile(ep.times, 0.50).Milliseconds(),
			percentile(ep.times, 0.95).Milliseconds(),
			percentile(ep.times, 1).Milliseconds())
	}
	return b.String()
}

func percent(part, whole int64) float64 {
	return float64(part) / float64(whole) * 100
}

func sortedKeys(m map[int]int64) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func percentile(times []time.Duration, p float64) time.Duration {
	if len(times) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), times...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := int(float64(len(sorted)) * p)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
