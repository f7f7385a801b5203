package inventory

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStockItem(t *testing.T, quantity int) *StockItem {
	t.Helper()
	item, err := NewStockItem(uuid.New(), uuid.New(), 5, 100)
	require.NoError(t, err)
	if quantity > 0 {
		require.NoError(t, item.Increase(quantity))
	}
	return item
}

func TestNewStockItem(t *testing.T) {
	t.Run("starts empty", func(t *testing.T) {
		item := newTestStockItem(t, 0)
		assert.Equal(t, 0, item.QuantityOnHand)
		assert.True(t, item.IsBelowMin())
	})

	t.Run("rejects max below min", func(t *testing.T) {
		_, err := NewStockItem(uuid.New(), uuid.New(), 10, 5)
		assert.Error(t, err)
	})
}

func TestStockItem_Decrease(t *testing.T) {
	item := newTestStockItem(t, 10)

	require.NoError(t, item.Decrease(4))
	assert.Equal(t, 6, item.QuantityOnHand)

	t.Run("refuses to go negative", func(t *testing.T) {
		err := item.Decrease(7)
		assert.Error(t, err)
		assert.Equal(t, 6, item.QuantityOnHand)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		assert.Error(t, item.Decrease(0))
		assert.Error(t, item.Increase(-1))
	})
}

func TestStockItem_IsBelowMin(t *testing.T) {
	item := newTestStockItem(t, 10)
	assert.False(t, item.IsBelowMin())

	require.NoError(t, item.Decrease(6))
	assert.True(t, item.IsBelowMin())
}

func TestNewStockMovement(t *testing.T) {
	actor := uuid.New()

	t.Run("decrease snapshots balances", func(t *testing.T) {
		item := newTestStockItem(t, 10)
		refID := uuid.New()

		m, err := NewStockMovement(item, MovementTypeSale, 3, MovementRefSale, &refID, actor, time.Now())
		require.NoError(t, err)

		assert.Equal(t, 10, m.BalanceBefore)
		assert.Equal(t, 7, m.BalanceAfter)
		assert.Equal(t, -3, m.SignedQuantity())
	})

	t.Run("increase snapshots balances", func(t *testing.T) {
		item := newTestStockItem(t, 10)

		m, err := NewStockMovement(item, MovementTypeTransferIn, 5, MovementRefTransfer, nil, actor, time.Now())
		require.NoError(t, err)

		assert.Equal(t, 10, m.BalanceBefore)
		assert.Equal(t, 15, m.BalanceAfter)
		assert.Equal(t, 5, m.SignedQuantity())
	})

	t.Run("decrease beyond stock fails", func(t *testing.T) {
		item := newTestStockItem(t, 2)
		_, err := NewStockMovement(item, MovementTypeSale, 3, MovementRefSale, nil, actor, time.Now())
		assert.Error(t, err)
	})

	t.Run("paired transfer movements cancel out", func(t *testing.T) {
		source := newTestStockItem(t, 20)
		dest := newTestStockItem(t, 0)

		out, err := NewStockMovement(source, MovementTypeTransferOut, 8, MovementRefTransfer, nil, actor, time.Now())
		require.NoError(t, err)
		in, err := NewStockMovement(dest, MovementTypeTransferIn, 8, MovementRefTransfer, nil, actor, time.Now())
		require.NoError(t, err)

		assert.Equal(t, 0, out.SignedQuantity()+in.SignedQuantity())
	})
}
