package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/Togather-Foundation/planner/internal/audit"
	"github.com/Togather-Foundation/planner/internal/domain/ids"
	"github.com/Togather-Foundation/planner/internal/domain/users"
	"github.com/rs/zerolog"
)

// Service owns the event lifecycle and the volunteer roster. Mutations of
// the event itself require an administrator; roster changes are anonymous.
type Service struct {
	repo        Repository
	auditLogger *audit.Logger
	logger      zerolog.Logger
}

// NewService builds the event service. A nil audit logger disables auditing.
func NewService(repo Repository, auditLogger *audit.Logger, logger zerolog.Logger) *Service {
	return &Service{
		repo:        repo,
		auditLogger: auditLogger,
		logger:      logger.With().Str("component", "events").Logger(),
	}
}

// List returns events ordered by date, then start time, then ID.
func (s *Service) List(ctx context.Context, filter RangeFilter) ([]Event, error) {
	r, err := NormalizeRange(filter)
	if err != nil {
		return nil, err
	}
	list, err := s.repo.List(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return list, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Event, error) {
	id, err := normalizeID(id)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, principal *users.Principal, input EventInput) (*Event, error) {
	if principal == nil {
		return nil, ErrUnauthenticated
	}
	input, err := NormalizeEventInput(input)
	if err != nil {
		return nil, err
	}
	id, err := ids.NewULID()
	if err != nil {
		return nil, fmt.Errorf("generate event id: %w", err)
	}

	created, err := s.repo.Create(ctx, CreateParams{
		ID:          id,
		Title:       input.Title,
		Description: input.Description,
		Date:        input.Date,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
		CreatedBy:   principal.UserID,
	})
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	s.logger.Info().Str("event_id", created.ID).Str("date", created.Date).Msg("event created")
	s.auditLogger.LogSuccess(ctx, audit.ActionEventCreated, principal.Username, "event", created.ID, map[string]string{"title": created.Title})
	return created, nil
}

// Update replaces the editable fields of an event. The roster is untouched.
func (s *Service) Update(ctx context.Context, principal *users.Principal, id string, input EventInput) (*Event, error) {
	if principal == nil {
		return nil, ErrUnauthenticated
	}
	id, err := normalizeID(id)
	if err != nil {
		return nil, err
	}
	input, err = NormalizeEventInput(input)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, id, UpdateParams{
		Title:       input.Title,
		Description: input.Description,
		Date:        input.Date,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update event: %w", err)
	}

	s.auditLogger.LogSuccess(ctx, audit.ActionEventUpdated, principal.Username, "event", updated.ID, nil)
	return updated, nil
}

func (s *Service) Remove(ctx context.Context, principal *users.Principal, id string) error {
	if principal == nil {
		return ErrUnauthenticated
	}
	id, err := normalizeID(id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete event: %w", err)
	}

	s.logger.Info().Str("event_id", id).Msg("event deleted")
	s.auditLogger.LogSuccess(ctx, audit.ActionEventDeleted, principal.Username, "event", id, nil)
	return nil
}

// AddVolunteer signs name up for the event. Signing up twice is a no-op.
func (s *Service) AddVolunteer(ctx context.Context, id, name string) (*Event, error) {
	return s.changeRoster(ctx, id, name, audit.ActionVolunteerAdded, AddName)
}

// RemoveVolunteer drops every occurrence of name. Unknown names are a no-op.
func (s *Service) RemoveVolunteer(ctx context.Context, id, name string) (*Event, error) {
	return s.changeRoster(ctx, id, name, audit.ActionVolunteerRemoved, RemoveName)
}

func (s *Service) changeRoster(ctx context.Context, id, name, action string, apply func([]string, string) []string) (*Event, error) {
	id, err := normalizeID(id)
	if err != nil {
		return nil, err
	}
	name, err = NormalizeVolunteerName(name)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateVolunteers(ctx, id, func(current []string) []string {
		return apply(current, name)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update volunteers: %w", err)
	}

	s.auditLogger.LogSuccess(ctx, action, "", "event", updated.ID, map[string]string{"name": name})
	return updated, nil
}

// normalizeID maps malformed identifiers to ErrNotFound; they can never
// name a stored event.
func normalizeID(id string) (string, error) {
	normalized, err := ids.NormalizeULID(id)
	if err != nil {
		return "", ErrNotFound
	}
	return normalized, nil
}
