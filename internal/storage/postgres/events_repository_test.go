package postgres

import (
	"context"
	"sync"
	"testing"

	"github.com/Togather-Foundation/planner/internal/domain/events"
	"github.com/stretchr/testify/require"
)

func TestEventRepository_CRUD(t *testing.T) {
	pool, _ := setupPostgres(t)
	repo := &EventRepository{pool: pool}
	ctx := context.Background()
	adminID := insertAdmin(t, pool, "admin")

	id := newEventID(t)
	created, err := repo.Create(ctx, events.CreateParams{
		ID:        id,
		Title:     "Picnic",
		Date:      "2024-06-01",
		StartTime: "11:00",
		CreatedBy: adminID,
	})
	require.NoError(t, err)
	require.Equal(t, id, created.ID)
	require.Equal(t, "2024-06-01", created.Date)
	require.Equal(t, "11:00", created.StartTime)
	require.Equal(t, "", created.EndTime)
	require.Equal(t, []string{}, created.Volunteers)
	require.Equal(t, adminID, created.CreatedBy)

	updated, err := repo.Update(ctx, id, events.UpdateParams{Title: "Picnic II", Description: "Park", Date: "2024-06-02", EndTime: "15:30"})
	require.NoError(t, err)
	require.Equal(t, "Picnic II", updated.Title)
	require.Equal(t, "Park", updated.Description)
	require.Equal(t, "", updated.StartTime)
	require.Equal(t, "15:30", updated.EndTime)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, updated.Title, got.Title)

	require.NoError(t, repo.Delete(ctx, id))
	_, err = repo.GetByID(ctx, id)
	require.ErrorIs(t, err, events.ErrNotFound)
	require.ErrorIs(t, repo.Delete(ctx, id), events.ErrNotFound)

	_, err = repo.Update(ctx, id, events.UpdateParams{Title: "x", Date: "2024-06-02"})
	require.ErrorIs(t, err, events.ErrNotFound)
}

func TestEventRepository_ListRangeAndOrder(t *testing.T) {
	pool, _ := setupPostgres(t)
	repo := &EventRepository{pool: pool}
	ctx := context.Background()
	adminID := insertAdmin(t, pool, "admin")

	create := func(date, start string) string {
		id := newEventID(t)
		_, err := repo.Create(ctx, events.CreateParams{ID: id, Title: date + start, Date: date, StartTime: start, CreatedBy: adminID})
		require.NoError(t, err)
		return id
	}
	late := create("2024-06-01", "15:00")
	allDay := create("2024-06-01", "")
	early := create("2024-06-01", "09:00")
	before := create("2024-05-31", "")
	after := create("2024-06-03", "")

	all, err := repo.List(ctx, events.DateRange{})
	require.NoError(t, err)
	require.Equal(t, []string{before, allDay, early, late, after}, eventIDs(all))

	june1, err := repo.List(ctx, events.DateRange{From: "2024-06-01", To: "2024-06-01"})
	require.NoError(t, err)
	require.Equal(t, []string{allDay, early, late}, eventIDs(june1))

	fromOnly, err := repo.List(ctx, events.DateRange{From: "2024-06-02"})
	require.NoError(t, err)
	require.Equal(t, []string{after}, eventIDs(fromOnly))

	toOnly, err := repo.List(ctx, events.DateRange{To: "2024-05-31"})
	require.NoError(t, err)
	require.Equal(t, []string{before}, eventIDs(toOnly))
}

func TestEventRepository_UpdateVolunteers(t *testing.T) {
	pool, _ := setupPostgres(t)
	repo := &EventRepository{pool: pool}
	ctx := context.Background()
	adminID := insertAdmin(t, pool, "admin")

	id := newEventID(t)
	_, err := repo.Create(ctx, events.CreateParams{ID: id, Title: "Picnic", Date: "2024-06-01", CreatedBy: adminID})
	require.NoError(t, err)

	got, err := repo.UpdateVolunteers(ctx, id, func(current []string) []string {
		return events.AddName(current, "Ann")
	})
	require.NoError(t, err)
	require.Equal(t, []string{"Ann"}, got.Volunteers)

	got, err = repo.UpdateVolunteers(ctx, id, func(current []string) []string {
		return events.RemoveName(current, "Ann")
	})
	require.NoError(t, err)
	require.Equal(t, []string{}, got.Volunteers)

	_, err = repo.UpdateVolunteers(ctx, newEventID(t), func(current []string) []string { return current })
	require.ErrorIs(t, err, events.ErrNotFound)
}

func TestEventRepository_ConcurrentSignupsNotLost(t *testing.T) {
	pool, _ := setupPostgres(t)
	repo := &EventRepository{pool: pool}
	ctx := context.Background()
	adminID := insertAdmin(t, pool, "admin")

	id := newEventID(t)
	_, err := repo.Create(ctx, events.CreateParams{ID: id, Title: "Picnic", Date: "2024-06-01", CreatedBy: adminID})
	require.NoError(t, err)

	names := []string{"Ann", "Bob", "Cid", "Dee", "Eve", "Fay"}
	errs := make(chan error, len(names))
	var wg sync.WaitGroup
	for _, name := range names {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			_, err := repo.UpdateVolunteers(ctx, id, func(current []string) []string {
				return events.AddName(current, name)
			})
			errs <- err
		}(name)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.ElementsMatch(t, names, got.Volunteers)
}

func TestEventRepository_CreatorCannotBeDeleted(t *testing.T) {
	pool, _ := setupPostgres(t)
	repo := &EventRepository{pool: pool}
	ctx := context.Background()
	adminID := insertAdmin(t, pool, "admin")

	_, err := repo.Create(ctx, events.CreateParams{ID: newEventID(t), Title: "Picnic", Date: "2024-06-01", CreatedBy: adminID})
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `DELETE FROM users WHERE id = $1::text::uuid`, adminID)
	require.Error(t, err)
}

func eventIDs(list []events.Event) []string {
	out := make([]string, 0, len(list))
	for _, e := range list {
		out = append(out, e.ID)
	}
	return out
}
