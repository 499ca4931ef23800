package application

import (
	"context"
	"time"

	"github.com/Apurer/pharmacy-dispatch/internal/domains/logistics/domain"
	"github.com/Apurer/pharmacy-dispatch/internal/domains/logistics/ports"
	"github.com/Apurer/pharmacy-dispatch/internal/query"
)

// Routes serves the live monitor and route detail views.
type Routes struct {
	api      ports.RoutesAPI
	cache    *query.Cache
	interval time.Duration
}

func NewRoutes(api ports.RoutesAPI, cache *query.Cache, interval time.Duration) *Routes {
	if interval <= 0 {
		interval = query.DefaultPollInterval
	}
	return &Routes{api: api, cache: ensureCache(cache), interval: interval}
}

func (r *Routes) Active(ctx context.Context) ([]domain.RouteSheet, error) {
	return query.Fetch(ctx, r.cache, query.ActiveRoutes(), r.api.ActiveRoutes)
}

// Watch follows active routes, refetching on every poll tick as well as
// after invalidations, until ctx ends.
func (r *Routes) Watch(ctx context.Context) *query.Subscription[[]domain.RouteSheet] {
	return query.Poll(ctx, r.cache, query.ActiveRoutes(), r.interval, r.api.ActiveRoutes)
}

func (r *Routes) Detail(ctx context.Context, routeID int64) (domain.RouteSheet, error) {
	return query.Fetch(ctx, r.cache, query.RouteDetail(routeID), func(ctx context.Context) (domain.RouteSheet, error) {
		return r.api.RouteSheet(ctx, routeID)
	})
}

// Interval is the live monitor refresh period.
func (r *Routes) Interval() time.Duration { return r.interval }
