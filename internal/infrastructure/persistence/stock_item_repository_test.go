package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/inventory"
	"github.com/hms/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormStockItemRepository_SaveWithLock(t *testing.T) {
	ctx := context.Background()

	t.Run("persists a version bump", func(t *testing.T) {
		db := newTestDB(t)
		repo := NewGormStockItemRepository(db)

		item, err := inventory.NewStockItem(uuid.New(), uuid.New(), 5, 100)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, item))

		require.NoError(t, item.Increase(10))
		require.NoError(t, repo.SaveWithLock(ctx, item))

		loaded, err := repo.FindByID(ctx, item.ID)
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, 10, loaded.QuantityOnHand)
		assert.Equal(t, item.Version, loaded.Version)
	})

	t.Run("stale version is rejected", func(t *testing.T) {
		db := newTestDB(t)
		repo := NewGormStockItemRepository(db)

		item, err := inventory.NewStockItem(uuid.New(), uuid.New(), 0, 0)
		require.NoError(t, err)
		require.NoError(t, item.Increase(20))
		require.NoError(t, repo.Save(ctx, item))

		// two readers load the same row
		first, err := repo.FindByID(ctx, item.ID)
		require.NoError(t, err)
		second, err := repo.FindByID(ctx, item.ID)
		require.NoError(t, err)

		require.NoError(t, first.Decrease(5))
		require.NoError(t, repo.SaveWithLock(ctx, first))

		require.NoError(t, second.Decrease(5))
		err = repo.SaveWithLock(ctx, second)
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "OPTIMISTIC_LOCK_FAILED", domainErr.Code)
	})
}

func TestGormStockItemRepository_FindByProductAndCenter(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormStockItemRepository(db)

	productID, centerID := uuid.New(), uuid.New()
	item, err := inventory.NewStockItem(productID, centerID, 0, 0)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, item))

	found, err := repo.FindByProductAndCenter(ctx, productID, centerID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, item.ID, found.ID)

	missing, err := repo.FindByProductAndCenter(ctx, productID, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestGormStockItemRepository_FindBelowMin(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormStockItemRepository(db)

	centerID := uuid.New()

	low, err := inventory.NewStockItem(uuid.New(), centerID, 10, 100)
	require.NoError(t, err)
	require.NoError(t, low.Increase(3))
	require.NoError(t, repo.Save(ctx, low))

	healthy, err := inventory.NewStockItem(uuid.New(), centerID, 10, 100)
	require.NoError(t, err)
	require.NoError(t, healthy.Increase(50))
	require.NoError(t, repo.Save(ctx, healthy))

	noThreshold, err := inventory.NewStockItem(uuid.New(), centerID, 0, 0)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, noThreshold))

	items, err := repo.FindBelowMin(ctx, centerID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, low.ID, items[0].ID)
}
