package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/booktime/backend/internal/domain/identity"
	"github.com/booktime/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUser(t *testing.T, email string) *identity.User {
	t.Helper()
	u, err := identity.NewUser(email, "John", "Smith", "s3cret-pass")
	require.NoError(t, err)
	return u
}

func TestGormUserRepository_SaveAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewGormUserRepository(setupTestDB(t))

	u := newTestUser(t, "john@bestemails.com")
	require.NoError(t, repo.Save(ctx, u))

	found, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "john@bestemails.com", found.Email)
	assert.Equal(t, "John Smith", found.DisplayName())
	assert.True(t, found.CheckPassword("s3cret-pass"))
}

func TestGormUserRepository_FindByEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewGormUserRepository(setupTestDB(t))

	u := newTestUser(t, "john@bestemails.com")
	require.NoError(t, repo.Save(ctx, u))

	found, err := repo.FindByEmail(ctx, "John@BestEmails.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	_, err = repo.FindByEmail(ctx, "nobody@bestemails.com")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormUserRepository_SaveUpdates(t *testing.T) {
	ctx := context.Background()
	repo := NewGormUserRepository(setupTestDB(t))

	u := newTestUser(t, "john@bestemails.com")
	require.NoError(t, repo.Save(ctx, u))

	at := time.Now().Truncate(time.Second)
	u.RecordLogin(at)
	require.NoError(t, repo.Save(ctx, u))

	found, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, found.LastLoginAt)
	assert.WithinDuration(t, at, *found.LastLoginAt, time.Second)
}

func TestGormUserRepository_ExistsByEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewGormUserRepository(setupTestDB(t))

	require.NoError(t, repo.Save(ctx, newTestUser(t, "john@bestemails.com")))

	exists, err := repo.ExistsByEmail(ctx, "JOHN@bestemails.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByEmail(ctx, "other@bestemails.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGormUserRepository_FindByID_NotFound(t *testing.T) {
	repo := NewGormUserRepository(setupTestDB(t))

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
