package persistence

import (
	"context"
	"testing"

	"github.com/booktime/backend/internal/domain/order"
	"github.com/booktime/backend/internal/domain/shared"
	"github.com/booktime/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.UserModel{},
		&models.OrderModel{},
		&models.OrderLineModel{},
		&models.ProductModel{},
		&models.ProductTagModel{},
	)
	require.NoError(t, err)

	return db
}

func newTestOrder(t *testing.T, userID uuid.UUID, number string) *order.Order {
	t.Helper()
	o, err := order.NewOrder(userID, number)
	require.NoError(t, err)
	_, err = o.AddLine(uuid.New(), "Practical Go", 2, decimal.NewFromFloat(24.50))
	require.NoError(t, err)
	return o
}

func TestGormOrderRepository_SaveAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewGormOrderRepository(setupTestDB(t))

	userID := uuid.New()
	o := newTestOrder(t, userID, "BT-2026-0001")
	require.NoError(t, repo.Save(ctx, o))

	found, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.Number, found.Number)
	assert.Equal(t, userID, found.UserID)
	assert.Equal(t, order.StatusNew, found.Status)
	require.Len(t, found.Lines, 1)
	assert.Equal(t, "Practical Go", found.Lines[0].ProductName)
	assert.True(t, found.Lines[0].UnitPrice.Equal(decimal.NewFromFloat(24.50)))
}

func TestGormOrderRepository_FindByID_NotFound(t *testing.T) {
	repo := NewGormOrderRepository(setupTestDB(t))

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrOrderNotFound)
}

func TestGormOrderRepository_SaveReplacesLines(t *testing.T) {
	ctx := context.Background()
	repo := NewGormOrderRepository(setupTestDB(t))

	o := newTestOrder(t, uuid.New(), "BT-2026-0002")
	require.NoError(t, repo.Save(ctx, o))

	o.Lines = nil
	_, err := o.AddLine(uuid.New(), "Site Reliability Workbook", 1, decimal.NewFromFloat(31.00))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, o))

	found, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, found.Lines, 1)
	assert.Equal(t, "Site Reliability Workbook", found.Lines[0].ProductName)
}

func TestGormOrderRepository_FindByUser(t *testing.T) {
	ctx := context.Background()
	repo := NewGormOrderRepository(setupTestDB(t))

	userID := uuid.New()
	require.NoError(t, repo.Save(ctx, newTestOrder(t, userID, "BT-2026-0003")))
	require.NoError(t, repo.Save(ctx, newTestOrder(t, userID, "BT-2026-0004")))
	require.NoError(t, repo.Save(ctx, newTestOrder(t, uuid.New(), "BT-2026-0005")))

	orders, err := repo.FindByUser(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, orders, 2)

	count, err := repo.CountByUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestGormOrderRepository_OwnerOf(t *testing.T) {
	ctx := context.Background()
	repo := NewGormOrderRepository(setupTestDB(t))

	userID := uuid.New()
	o := newTestOrder(t, userID, "BT-2026-0006")
	require.NoError(t, repo.Save(ctx, o))

	owner, err := repo.OwnerOf(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, userID, owner)

	_, err = repo.OwnerOf(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrOrderNotFound)
}

func TestGormOrderRepository_RecordResponder(t *testing.T) {
	ctx := context.Background()
	repo := NewGormOrderRepository(setupTestDB(t))

	o := newTestOrder(t, uuid.New(), "BT-2026-0007")
	require.NoError(t, repo.Save(ctx, o))

	first := uuid.New()
	second := uuid.New()
	require.NoError(t, repo.RecordResponder(ctx, o.ID, first))
	require.NoError(t, repo.RecordResponder(ctx, o.ID, second))

	found, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	require.NotNil(t, found.LastSpokenToID)
	assert.Equal(t, second, *found.LastSpokenToID)

	err = repo.RecordResponder(ctx, uuid.New(), first)
	assert.ErrorIs(t, err, shared.ErrOrderNotFound)
}
