package events

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"
)

// memoryRepo is an in-process Repository used by the service tests.
type memoryRepo struct {
	mu     sync.Mutex
	events map[string]Event
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{events: map[string]Event{}}
}

func (m *memoryRepo) List(_ context.Context, r DateRange) ([]Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Event, 0, len(m.events))
	for _, e := range m.events {
		if r.From != "" && e.Date < r.From {
			continue
		}
		if r.To != "" && e.Date > r.To {
			continue
		}
		out = append(out, clone(e))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *memoryRepo) GetByID(_ context.Context, id string) (*Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := clone(e)
	return &c, nil
}

func (m *memoryRepo) Create(_ context.Context, p CreateParams) (*Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	e := Event{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Date:        p.Date,
		StartTime:   p.StartTime,
		EndTime:     p.EndTime,
		Volunteers:  []string{},
		CreatedBy:   p.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.events[e.ID] = e
	c := clone(e)
	return &c, nil
}

func (m *memoryRepo) Update(_ context.Context, id string, p UpdateParams) (*Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	e.Title = p.Title
	e.Description = p.Description
	e.Date = p.Date
	e.StartTime = p.StartTime
	e.EndTime = p.EndTime
	e.UpdatedAt = time.Now()
	m.events[id] = e
	c := clone(e)
	return &c, nil
}

func (m *memoryRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[id]; !ok {
		return ErrNotFound
	}
	delete(m.events, id)
	return nil
}

func (m *memoryRepo) UpdateVolunteers(_ context.Context, id string, fn RosterFunc) (*Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	e.Volunteers = fn(slices.Clone(e.Volunteers))
	m.events[id] = e
	c := clone(e)
	return &c, nil
}

func clone(e Event) Event {
	e.Volunteers = slices.Clone(e.Volunteers)
	if e.Volunteers == nil {
		e.Volunteers = []string{}
	}
	return e
}
