package postgres

import (
	"context"
	"testing"

	"github.com/Togather-Foundation/planner/internal/domain/ids"
	"github.com/Togather-Foundation/planner/internal/domain/users"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	pool, _ := setupPostgres(t)
	repo := &UserRepository{pool: pool}
	ctx := context.Background()

	exists, err := repo.AdminExists(ctx)
	require.NoError(t, err)
	require.False(t, exists)

	id := ids.NewUUID()
	created, err := repo.Create(ctx, users.User{ID: id, Username: "admin", PasswordHash: "hash", IsAdmin: true})
	require.NoError(t, err)
	require.Equal(t, id, created.ID)
	require.False(t, created.CreatedAt.IsZero())

	got, err := repo.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	require.Equal(t, "hash", got.PasswordHash)
	require.True(t, got.IsAdmin)

	exists, err = repo.AdminExists(ctx)
	require.NoError(t, err)
	require.True(t, exists)
}

func TestUserRepository_GetMissing(t *testing.T) {
	pool, _ := setupPostgres(t)
	repo := &UserRepository{pool: pool}

	_, err := repo.GetByUsername(context.Background(), "ghost")
	require.ErrorIs(t, err, users.ErrUserNotFound)
}

func TestUserRepository_UniqueConstraints(t *testing.T) {
	pool, _ := setupPostgres(t)
	repo := &UserRepository{pool: pool}
	ctx := context.Background()

	_, err := repo.Create(ctx, users.User{ID: ids.NewUUID(), Username: "admin", PasswordHash: "h", IsAdmin: true})
	require.NoError(t, err)

	_, err = repo.Create(ctx, users.User{ID: ids.NewUUID(), Username: "admin", PasswordHash: "h", IsAdmin: false})
	require.ErrorIs(t, err, users.ErrUsernameTaken)

	_, err = repo.Create(ctx, users.User{ID: ids.NewUUID(), Username: "second", PasswordHash: "h", IsAdmin: true})
	require.ErrorIs(t, err, users.ErrAdminExists)
}
