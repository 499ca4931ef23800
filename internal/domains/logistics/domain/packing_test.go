package domain

import (
	"testing"

	"github.com/stretchr/testify/require"

	ordersdomain "github.com/Apurer/pharmacy-dispatch/internal/domains/orders/domain"
)

func orderWithItems(id int64, itemIDs ...int64) *ordersdomain.Order {
	order := &ordersdomain.Order{ID: id}
	for _, itemID := range itemIDs {
		order.Items = append(order.Items, ordersdomain.Item{ID: itemID, MedicationName: "Acetaminofén", Quantity: 1})
	}
	return order
}

func TestChecklist_CompleteOnlyWhenEveryItemVerified(t *testing.T) {
	c := NewChecklist(orderWithItems(1, 10, 11, 12))
	require.Equal(t, 3, c.Total())
	require.False(t, c.Complete())

	require.NoError(t, c.Verify(10))
	require.NoError(t, c.Verify(11))
	require.False(t, c.Complete())
	require.NoError(t, c.Verify(12))
	require.True(t, c.Complete())

	marked, err := c.Toggle(12)
	require.NoError(t, err)
	require.False(t, marked)
	require.False(t, c.Complete())
}

func TestChecklist_RejectsForeignItems(t *testing.T) {
	c := NewChecklist(orderWithItems(1, 10))
	require.ErrorIs(t, c.Verify(99), ErrUnknownItem)
	_, err := c.Toggle(99)
	require.ErrorIs(t, err, ErrUnknownItem)
}

func TestChecklist_ResetsWhenOrderChanges(t *testing.T) {
	c := NewChecklist(orderWithItems(1, 10))
	require.NoError(t, c.Verify(10))

	require.False(t, c.Reset(orderWithItems(1, 10)))
	require.True(t, c.IsVerified(10))

	require.True(t, c.Reset(orderWithItems(2, 20, 21)))
	require.Equal(t, int64(2), c.OrderID())
	require.Zero(t, c.Verified())
	require.False(t, c.Complete())

	require.True(t, c.Reset(nil))
	require.False(t, c.Complete())
}

func TestChecklist_EmptyOrderIsComplete(t *testing.T) {
	c := NewChecklist(orderWithItems(5))
	require.True(t, c.Complete())

	require.False(t, NewChecklist(nil).Complete())
}
