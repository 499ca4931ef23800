package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/pharmacy-dispatch/internal/domains/logistics/domain"
	"github.com/Apurer/pharmacy-dispatch/internal/query"
)

func TestDispatch_EmptyZoneSkipsNetwork(t *testing.T) {
	api := newFakeLogisticsAPI()
	dispatch := NewDispatch(api, api, query.New())

	packages, err := dispatch.ReadyPackages(context.Background(), "  ")
	require.NoError(t, err)
	require.NotNil(t, packages)
	require.Empty(t, packages)
	require.Zero(t, api.count("ReadyPackages"))
}

func TestDispatch_ZoneIsPassedThrough(t *testing.T) {
	api := newFakeLogisticsAPI()
	api.ready[domain.ZoneNorth] = []domain.Package{{ID: 1, Status: domain.PackageInWarehouse}}
	dispatch := NewDispatch(api, api, query.New())

	packages, err := dispatch.ReadyPackages(context.Background(), domain.ZoneNorth)
	require.NoError(t, err)
	require.Len(t, packages, 1)
	require.Equal(t, []string{domain.ZoneNorth}, api.zones)
}

func TestDispatch_AssignRouteInvalidatesZoneAndMonitor(t *testing.T) {
	api := newFakeLogisticsAPI()
	api.ready[domain.ZoneNorth] = []domain.Package{{ID: 1}, {ID: 2}}
	api.ready[domain.ZoneSouth] = []domain.Package{{ID: 3}}
	cache := query.New()
	dispatch := NewDispatch(api, api, cache)
	routes := NewRoutes(api, cache, time.Hour)
	ctx := context.Background()

	_, err := dispatch.ReadyPackages(ctx, domain.ZoneNorth)
	require.NoError(t, err)
	_, err = dispatch.ReadyPackages(ctx, domain.ZoneSouth)
	require.NoError(t, err)
	active, err := routes.Active(ctx)
	require.NoError(t, err)
	require.Empty(t, active)

	_, err = dispatch.AssignRoute(ctx, domain.NewRouteSheet{AgentID: 1, Zone: " NORTE "})
	require.NoError(t, err)

	north, err := dispatch.ReadyPackages(ctx, domain.ZoneNorth)
	require.NoError(t, err)
	require.Empty(t, north)
	south, err := dispatch.ReadyPackages(ctx, domain.ZoneSouth)
	require.NoError(t, err)
	require.Len(t, south, 1)
	require.Equal(t, 3, api.count("ReadyPackages"))

	active, err = routes.Active(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, domain.RouteTypeFinalDelivery, active[0].Type)
}

func TestDispatch_AssignRouteNeedsZone(t *testing.T) {
	api := newFakeLogisticsAPI()
	_, err := NewDispatch(api, api, nil).AssignRoute(context.Background(), domain.NewRouteSheet{AgentID: 1})
	require.ErrorIs(t, err, domain.ErrZoneRequired)
	require.Zero(t, api.count("CreateRouteSheet"))
}

func TestRoutes_WatchPolls(t *testing.T) {
	api := newFakeLogisticsAPI()
	routes := NewRoutes(api, query.New(), 20*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := routes.Watch(ctx)
	require.Eventually(t, func() bool { return api.count("ActiveRoutes") >= 3 }, 2*time.Second, 10*time.Millisecond)
	cancel()
	select {
	case <-sub.Done():
	case <-time.After(time.Second):
		t.Fatal("subscription did not close")
	}
}

func TestRoutes_Detail(t *testing.T) {
	api := newFakeLogisticsAPI()
	api.routes = []domain.RouteSheet{{ID: 4, Status: domain.RouteInProgress}}
	routes := NewRoutes(api, nil, 0)
	require.Equal(t, query.DefaultPollInterval, routes.Interval())

	route, err := routes.Detail(context.Background(), 4)
	require.NoError(t, err)
	require.Equal(t, domain.RouteInProgress, route.Status)
	_, err = routes.Detail(context.Background(), 5)
	require.Error(t, err)
}
