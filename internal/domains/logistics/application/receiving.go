package application

import (
	"context"

	"github.com/Apurer/pharmacy-dispatch/internal/domains/logistics/domain"
	"github.com/Apurer/pharmacy-dispatch/internal/domains/logistics/ports"
	"github.com/Apurer/pharmacy-dispatch/internal/query"
)

// Receiving registers supplier lots into stock.
type Receiving struct {
	api   ports.ReceivingAPI
	cache *query.Cache
}

func NewReceiving(api ports.ReceivingAPI, cache *query.Cache) *Receiving {
	return &Receiving{api: api, cache: ensureCache(cache)}
}

func (r *Receiving) RecentBatches(ctx context.Context) ([]domain.Batch, error) {
	return query.Fetch(ctx, r.cache, query.RecentBatches(), r.api.RecentBatches)
}

// Receive records a lot; the recent batches list and the picking guide,
// which shows available lots, are refetched on their next read.
func (r *Receiving) Receive(ctx context.Context, batch domain.NewBatch) (domain.Batch, error) {
	batch = batch.Normalize()
	return query.Mutate(ctx, r.cache, func(ctx context.Context) (domain.Batch, error) {
		return r.api.ReceiveBatch(ctx, batch)
	}, query.RecentBatches(), query.PickingGuide())
}
