package application

import (
	"context"
	"strings"

	"github.com/Apurer/pharmacy-dispatch/internal/domains/logistics/domain"
	"github.com/Apurer/pharmacy-dispatch/internal/domains/logistics/ports"
	"github.com/Apurer/pharmacy-dispatch/internal/query"
)

// Dispatch groups ready packages of a zone into route sheets.
type Dispatch struct {
	api     ports.DispatchAPI
	catalog ports.CatalogAPI
	cache   *query.Cache
}

func NewDispatch(api ports.DispatchAPI, catalog ports.CatalogAPI, cache *query.Cache) *Dispatch {
	return &Dispatch{api: api, catalog: catalog, cache: ensureCache(cache)}
}

// ReadyPackages lists packages waiting in the warehouse for zone. Without a
// zone there is nothing to show and nothing is fetched.
func (d *Dispatch) ReadyPackages(ctx context.Context, zone string) ([]domain.Package, error) {
	zone = strings.TrimSpace(zone)
	if zone == "" {
		return []domain.Package{}, nil
	}
	return query.Fetch(ctx, d.cache, query.ReadyPackages(zone), func(ctx context.Context) ([]domain.Package, error) {
		return d.api.ReadyPackages(ctx, zone)
	})
}

func (d *Dispatch) DeliveryAgents(ctx context.Context) ([]domain.DeliveryAgent, error) {
	return query.Fetch(ctx, d.cache, query.DeliveryAgents(), d.catalog.DeliveryAgents)
}

// AssignRoute hands every ready package of the zone to an agent.
func (d *Dispatch) AssignRoute(ctx context.Context, sheet domain.NewRouteSheet) (domain.RouteSheet, error) {
	sheet = sheet.Normalize()
	if sheet.Zone == "" {
		return domain.RouteSheet{}, domain.ErrZoneRequired
	}
	return query.Mutate(ctx, d.cache, func(ctx context.Context) (domain.RouteSheet, error) {
		return d.api.CreateRouteSheet(ctx, sheet)
	}, query.ReadyPackages(sheet.Zone), query.ActiveRoutes())
}
