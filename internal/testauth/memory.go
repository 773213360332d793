package testauth

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/Togather-Foundation/planner/internal/domain/events"
	"github.com/Togather-Foundation/planner/internal/domain/users"
)

// MemoryUsers implements users.Repository with the same unique rules as
// the Postgres schema.
type MemoryUsers struct {
	mu    sync.Mutex
	users map[string]users.User
}

func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{users: map[string]users.User{}}
}

func (m *MemoryUsers) AdminExists(context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.IsAdmin {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryUsers) GetByUsername(_ context.Context, username string) (*users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[username]
	if !ok {
		return nil, users.ErrUserNotFound
	}
	return &u, nil
}

func (m *MemoryUsers) Create(_ context.Context, user users.User) (*users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.Username]; ok {
		return nil, users.ErrUsernameTaken
	}
	if user.IsAdmin {
		for _, u := range m.users {
			if u.IsAdmin {
				return nil, users.ErrAdminExists
			}
		}
	}
	user.CreatedAt = time.Now()
	m.users[user.Username] = user
	return &user, nil
}

// Count reports how many users are stored.
func (m *MemoryUsers) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

// MemoryEvents implements events.Repository, ordering like the SQL store.
type MemoryEvents struct {
	mu     sync.Mutex
	events map[string]events.Event
}

func NewMemoryEvents() *MemoryEvents {
	return &MemoryEvents{events: map[string]events.Event{}}
}

func (m *MemoryEvents) List(_ context.Context, r events.DateRange) ([]events.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]events.Event, 0, len(m.events))
	for _, e := range m.events {
		if r.From != "" && e.Date < r.From {
			continue
		}
		if r.To != "" && e.Date > r.To {
			continue
		}
		out = append(out, cloneEvent(e))
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

func (m *MemoryEvents) GetByID(_ context.Context, id string) (*events.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok {
		return nil, events.ErrNotFound
	}
	c := cloneEvent(e)
	return &c, nil
}

func (m *MemoryEvents) Create(_ context.Context, p events.CreateParams) (*events.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	e := events.Event{
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
	c := cloneEvent(e)
	return &c, nil
}

func (m *MemoryEvents) Update(_ context.Context, id string, p events.UpdateParams) (*events.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok {
		return nil, events.ErrNotFound
	}
	e.Title = p.Title
	e.Description = p.Description
	e.Date = p.Date
	e.StartTime = p.StartTime
	e.EndTime = p.EndTime
	e.UpdatedAt = time.Now().UTC()
	m.events[id] = e
	c := cloneEvent(e)
	return &c, nil
}

func (m *MemoryEvents) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[id]; !ok {
		return events.ErrNotFound
	}
	delete(m.events, id)
	return nil
}

func (m *MemoryEvents) UpdateVolunteers(_ context.Context, id string, fn events.RosterFunc) (*events.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok {
		return nil, events.ErrNotFound
	}
	e.Volunteers = fn(slices.Clone(e.Volunteers))
	e.UpdatedAt = time.Now().UTC()
	m.events[id] = e
	c := cloneEvent(e)
	return &c, nil
}

// Len reports how many events are stored.
func (m *MemoryEvents) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

func cloneEvent(e events.Event) events.Event {
	e.Volunteers = slices.Clone(e.Volunteers)
	if e.Volunteers == nil {
		e.Volunteers = []string{}
	}
	return e
}
