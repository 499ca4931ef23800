package application

import (
	"context"

	"github.com/Apurer/pharmacy-dispatch/internal/domains/logistics/domain"
	"github.com/Apurer/pharmacy-dispatch/internal/domains/logistics/ports"
	"github.com/Apurer/pharmacy-dispatch/internal/query"
)

// Catalog serves the reference lists shared by several desks.
type Catalog struct {
	api   ports.CatalogAPI
	cache *query.Cache
}

func NewCatalog(api ports.CatalogAPI, cache *query.Cache) *Catalog {
	return &Catalog{api: api, cache: ensureCache(cache)}
}

func (c *Catalog) Medications(ctx context.Context) ([]domain.Medication, error) {
	return query.Fetch(ctx, c.cache, query.Medications(), c.api.Medications)
}

func (c *Catalog) DeliveryAgents(ctx context.Context) ([]domain.DeliveryAgent, error) {
	return query.Fetch(ctx, c.cache, query.DeliveryAgents(), c.api.DeliveryAgents)
}

func (c *Catalog) OperationCenters(ctx context.Context) ([]domain.OperationCenter, error) {
	return query.Fetch(ctx, c.cache, query.OperationCenters(), c.api.OperationCenters)
}

func (c *Catalog) Zones(ctx context.Context) ([]domain.Zone, error) {
	return query.Fetch(ctx, c.cache, query.Zones(), c.api.Zones)
}

func ensureCache(cache *query.Cache) *query.Cache {
	if cache == nil {
		return query.New()
	}
	return cache
}
