package application

import (
	"context"
	"sync"

	"github.com/Apurer/pharmacy-dispatch/internal/domains/logistics/domain"
	"github.com/Apurer/pharmacy-dispatch/internal/domains/logistics/ports"
	ordersdomain "github.com/Apurer/pharmacy-dispatch/internal/domains/orders/domain"
	"github.com/Apurer/pharmacy-dispatch/internal/query"
)

// Station is one packing bench: the order handed out by the queue plus the
// local checklist of items verified on it.
type Station struct {
	api   ports.PackingAPI
	cache *query.Cache

	mu        sync.Mutex
	checklist *domain.Checklist
}

func NewStation(api ports.PackingAPI, cache *query.Cache) *Station {
	return &Station{api: api, cache: ensureCache(cache), checklist: domain.NewChecklist(nil)}
}

// Current returns the task on the bench, asking the queue for one when the
// cached task is stale. The checklist is reset whenever the order changes.
func (s *Station) Current(ctx context.Context) (domain.PackingTask, error) {
	task, err := query.Fetch(ctx, s.cache, query.NextPackingTask(), s.api.NextPackingTask)
	if err != nil {
		return domain.PackingTask{}, err
	}
	s.mu.Lock()
	s.checklist.Reset(task.Next)
	s.mu.Unlock()
	return task, nil
}

// Toggle flips the verification mark of one item of the current order.
func (s *Station) Toggle(itemID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checklist.Toggle(itemID)
}

// Verify marks one item of the current order as verified.
func (s *Station) Verify(itemID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checklist.Verify(itemID)
}

// Progress reports verified and total items for the current order.
func (s *Station) Progress() (verified, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checklist.Verified(), s.checklist.Total()
}

func (s *Station) IsVerified(itemID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checklist.IsVerified(itemID)
}

// CanFinalize reports whether every item of the current order is verified.
func (s *Station) CanFinalize() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checklist.Complete()
}

// Finalize closes the current order once every item is verified. The next
// read of Current asks the queue for a new order.
func (s *Station) Finalize(ctx context.Context) (ordersdomain.Order, error) {
	s.mu.Lock()
	orderID := s.checklist.OrderID()
	complete := s.checklist.Complete()
	s.mu.Unlock()
	if orderID == 0 {
		return ordersdomain.Order{}, domain.ErrNothingToPack
	}
	if !complete {
		return ordersdomain.Order{}, domain.ErrPackingIncomplete
	}
	order, err := query.Mutate(ctx, s.cache, func(ctx context.Context) (ordersdomain.Order, error) {
		return s.api.FinalizePacking(ctx, orderID)
	}, query.NextPackingTask())
	if err != nil {
		return ordersdomain.Order{}, err
	}
	s.cache.InvalidateResource(query.ResourceReadyPackages)
	return order, nil
}
