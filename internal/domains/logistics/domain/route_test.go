package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func stop(n int) *int { return &n }

func TestRouteSheet_StopsOrderedByStopNumber(t *testing.T) {
	route := RouteSheet{Packages: []Package{
		{ID: 3, StopNumber: stop(3)},
		{ID: 9},
		{ID: 1, StopNumber: stop(1)},
		{ID: 2, StopNumber: stop(2)},
	}}
	var ids []int64
	for _, p := range route.Stops() {
		ids = append(ids, p.ID)
	}
	require.Equal(t, []int64{1, 2, 3, 9}, ids)
	require.Equal(t, int64(3), route.Packages[0].ID)
}

func TestRouteSheet_Progress(t *testing.T) {
	route := RouteSheet{Packages: []Package{
		{ID: 1, Status: PackageDelivered},
		{ID: 2, Status: PackageFailed},
		{ID: 3, Status: PackageOnRoute},
		{ID: 4, Status: PackageDelivered},
	}}
	delivered, failed, pending := route.Progress()
	require.Equal(t, 2, delivered)
	require.Equal(t, 1, failed)
	require.Equal(t, 1, pending)

	p, ok := route.Package(3)
	require.True(t, ok)
	require.True(t, p.Status.Pending())
	_, ok = route.Package(42)
	require.False(t, ok)
}

func TestNewRouteSheet_Normalize(t *testing.T) {
	n := NewRouteSheet{AgentID: 1, Zone: "  NORTE "}.Normalize()
	require.Equal(t, "NORTE", n.Zone)
	require.Equal(t, RouteTypeFinalDelivery, n.Type)
	require.True(t, RoutePlanned.Active())
	require.False(t, RouteFinished.Active())
}

func TestPickingTask_Shortfall(t *testing.T) {
	task := PickingTask{TotalQuantity: 10, AvailableBatches: []Batch{{CurrentQuantity: 4}, {CurrentQuantity: 3}}}
	require.Equal(t, 7, task.AvailableUnits())
	require.Equal(t, 3, task.Shortfall())
	task.TotalQuantity = 5
	require.Zero(t, task.Shortfall())
}
