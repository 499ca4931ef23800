package application

import (
	"context"
	"errors"

	"github.com/Apurer/pharmacy-dispatch/internal/domains/orders/domain"
	"github.com/Apurer/pharmacy-dispatch/internal/domains/orders/ports"
	"github.com/Apurer/pharmacy-dispatch/internal/query"
)

// Service backs the validation queue and the order intake form.
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

// PendingValidation lists orders waiting for a pharmacist.
func (s *Service) PendingValidation(ctx context.Context) ([]domain.Order, error) {
	return query.Fetch(ctx, s.cache, query.PendingValidationOrders(), s.api.PendingValidationOrders)
}

// WatchPendingValidation follows the validation queue until ctx ends.
func (s *Service) WatchPendingValidation(ctx context.Context) *query.Subscription[[]domain.Order] {
	return query.Subscribe(ctx, s.cache, query.PendingValidationOrders(), s.api.PendingValidationOrders)
}

// Approve moves an order out of validation. The queue and the approved
// summary are refetched on their next read.
func (s *Service) Approve(ctx context.Context, orderID int64) (domain.Notification, error) {
	if orderID <= 0 {
		return domain.Notification{}, errors.New("order id must be positive")
	}
	order, err := query.Mutate(ctx, s.cache, func(ctx context.Context) (domain.Order, error) {
		return s.api.ApproveOrder(ctx, orderID)
	}, query.PendingValidationOrders(), query.ApprovedOrdersSummary())
	if err != nil {
		return domain.Notification{}, err
	}
	return domain.ApprovedNotification(order), nil
}

// Create submits an intake with its prescription photo.
func (s *Service) Create(ctx context.Context, order domain.NewOrder, prescription domain.Prescription) (domain.Order, domain.Notification, error) {
	if err := prescription.Validate(); err != nil {
		return domain.Order{}, domain.Notification{}, err
	}
	created, err := query.Mutate(ctx, s.cache, func(ctx context.Context) (domain.Order, error) {
		return s.api.CreateOrder(ctx, order, prescription)
	}, query.PendingValidationOrders())
	if err != nil {
		return domain.Order{}, domain.Notification{}, err
	}
	return created, domain.CreatedNotification(created), nil
}
