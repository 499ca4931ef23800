package application

import (
	"context"

	"github.com/Apurer/pharmacy-dispatch/internal/domains/logistics/domain"
	"github.com/Apurer/pharmacy-dispatch/internal/domains/logistics/ports"
	"github.com/Apurer/pharmacy-dispatch/internal/query"
)

// Picking releases approved orders as waves and serves the picking guide.
type Picking struct {
	api   ports.PickingAPI
	cache *query.Cache
}

func NewPicking(api ports.PickingAPI, cache *query.Cache) *Picking {
	return &Picking{api: api, cache: ensureCache(cache)}
}

func (p *Picking) ApprovedSummary(ctx context.Context) (domain.ApprovedSummary, error) {
	return query.Fetch(ctx, p.cache, query.ApprovedOrdersSummary(), p.api.ApprovedOrdersSummary)
}

// CreateWave moves every approved order into picking.
func (p *Picking) CreateWave(ctx context.Context) (domain.Wave, error) {
	return query.Mutate(ctx, p.cache, p.api.CreatePickWave, query.ApprovedOrdersSummary(), query.PickingGuide())
}

func (p *Picking) Guide(ctx context.Context) (domain.PickingGuide, error) {
	return query.Fetch(ctx, p.cache, query.PickingGuide(), p.api.PickingGuide)
}
