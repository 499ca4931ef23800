package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/pharmacy-dispatch/internal/domains/logistics/domain"
	ordersdomain "github.com/Apurer/pharmacy-dispatch/internal/domains/orders/domain"
	"github.com/Apurer/pharmacy-dispatch/internal/query"
)

func queuedOrder(id int64, itemIDs ...int64) ordersdomain.Order {
	order := ordersdomain.Order{ID: id, Status: ordersdomain.StatusPicking}
	for _, itemID := range itemIDs {
		order.Items = append(order.Items, ordersdomain.Item{ID: itemID, MedicationName: "Metformina", Quantity: 2})
	}
	return order
}

func TestStation_FinalizeGatedByChecklist(t *testing.T) {
	api := newFakeLogisticsAPI()
	api.queue = []ordersdomain.Order{queuedOrder(1, 10, 11, 12)}
	station := NewStation(api, query.New())
	ctx := context.Background()

	task, err := station.Current(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), task.Next.ID)
	require.False(t, station.CanFinalize())

	_, err = station.Finalize(ctx)
	require.ErrorIs(t, err, domain.ErrPackingIncomplete)
	require.Zero(t, api.count("FinalizePacking"))

	for _, id := range []int64{10, 11} {
		marked, err := station.Toggle(id)
		require.NoError(t, err)
		require.True(t, marked)
		require.False(t, station.CanFinalize())
	}
	require.NoError(t, station.Verify(12))
	require.True(t, station.CanFinalize())

	order, err := station.Finalize(ctx)
	require.NoError(t, err)
	require.Equal(t, ordersdomain.StatusReadyForDispatch, order.Status)
	require.Equal(t, []int64{1}, api.finalized)
}

func TestStation_ChecklistResetsOnNextOrder(t *testing.T) {
	api := newFakeLogisticsAPI()
	api.queue = []ordersdomain.Order{queuedOrder(1, 10), queuedOrder(2, 20, 21)}
	station := NewStation(api, query.New())
	ctx := context.Background()

	_, err := station.Current(ctx)
	require.NoError(t, err)
	require.NoError(t, station.Verify(10))
	_, err = station.Finalize(ctx)
	require.NoError(t, err)

	task, err := station.Current(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), task.Next.ID)
	verified, total := station.Progress()
	require.Zero(t, verified)
	require.Equal(t, 2, total)
	require.False(t, station.IsVerified(10))
	require.Equal(t, 2, api.count("NextPackingTask"))
}

func TestStation_CachedTaskIsNotRefetched(t *testing.T) {
	api := newFakeLogisticsAPI()
	api.queue = []ordersdomain.Order{queuedOrder(1, 10), queuedOrder(2, 20)}
	station := NewStation(api, query.New())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		task, err := station.Current(ctx)
		require.NoError(t, err)
		require.Equal(t, int64(1), task.Next.ID)
	}
	require.Equal(t, 1, api.count("NextPackingTask"))
}

func TestStation_FailedFinalizeKeepsTask(t *testing.T) {
	api := newFakeLogisticsAPI()
	api.queue = []ordersdomain.Order{queuedOrder(1, 10)}
	api.finalizeErr = errors.New("El pedido no está en estado 'en_empaque'")
	station := NewStation(api, query.New())
	ctx := context.Background()

	_, err := station.Current(ctx)
	require.NoError(t, err)
	require.NoError(t, station.Verify(10))
	_, err = station.Finalize(ctx)
	require.Error(t, err)
	require.True(t, station.CanFinalize())

	task, err := station.Current(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), task.Next.ID)
	require.Equal(t, 1, api.count("NextPackingTask"))
}

func TestStation_EmptyQueue(t *testing.T) {
	station := NewStation(newFakeLogisticsAPI(), query.New())
	task, err := station.Current(context.Background())
	require.NoError(t, err)
	require.True(t, task.Empty())
	require.False(t, station.CanFinalize())
	_, err = station.Finalize(context.Background())
	require.ErrorIs(t, err, domain.ErrNothingToPack)
}
