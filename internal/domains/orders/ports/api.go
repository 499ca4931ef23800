package ports

import (
	"context"

	"github.com/Apurer/pharmacy-dispatch/internal/domains/orders/domain"
)

// API is the slice of the backend the orders screens talk to.
type API interface {
	PendingValidationOrders(ctx context.Context) ([]domain.Order, error)
	ApproveOrder(ctx context.Context, orderID int64) (domain.Order, error)
	CreateOrder(ctx context.Context, order domain.NewOrder, prescription domain.Prescription) (domain.Order, error)
}
