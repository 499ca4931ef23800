package application

import (
	"context"
	"fmt"

	"github.com/Apurer/pharmacy-dispatch/internal/domains/closing/domain"
	"github.com/Apurer/pharmacy-dispatch/internal/domains/closing/ports"
	logisticsdomain "github.com/Apurer/pharmacy-dispatch/internal/domains/logistics/domain"
	"github.com/Apurer/pharmacy-dispatch/internal/query"
)

// Service backs route reconciliation.
type Service struct {
	api   ports.API
	cache *query.Cache
}

func NewService(api ports.API, cache *query.Cache) *Service {
	if cache == nil {
		cache = query.New()
	}
	return &Service{api: api, cache: cache}
}

func (s *Service) FinishedRoutes(ctx context.Context) ([]logisticsdomain.RouteSheet, error) {
	return query.Fetch(ctx, s.cache, query.FinishedRoutes(), s.api.FinishedRoutes)
}

// Summarize computes the reconciliation of a finished route from the cached
// list, without asking the backend for its summary.
func (s *Service) Summarize(ctx context.Context, routeID int64) (domain.Summary, error) {
	routes, err := s.FinishedRoutes(ctx)
	if err != nil {
		return domain.Summary{}, err
	}
	for _, route := range routes {
		if route.ID == routeID {
			return domain.Summarize(route), nil
		}
	}
	return domain.Summary{}, fmt.Errorf("route %d is not among the finished routes", routeID)
}

// RemoteSummary asks the backend for its reconciliation of a route.
func (s *Service) RemoteSummary(ctx context.Context, routeID int64) (domain.RouteSummary, error) {
	return query.Fetch(ctx, s.cache, query.RouteSummary(routeID), func(ctx context.Context) (domain.RouteSummary, error) {
		return s.api.RouteSummary(ctx, routeID)
	})
}

// RegisterPayment records the copay collected for a delivered package.
func (s *Service) RegisterPayment(ctx context.Context, routeID, packageID int64, amount float64, method string) (domain.PaymentReceipt, error) {
	payment, err := domain.NewPayment(amount, method)
	if err != nil {
		return domain.PaymentReceipt{}, err
	}
	return query.Mutate(ctx, s.cache, func(ctx context.Context) (domain.PaymentReceipt, error) {
		return s.api.RegisterPayment(ctx, packageID, payment)
	}, query.FinishedRoutes(), query.RouteSummary(routeID))
}
