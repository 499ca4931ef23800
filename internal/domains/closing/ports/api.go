package ports

import (
	"context"

	"github.com/Apurer/pharmacy-dispatch/internal/domains/closing/domain"
	logisticsdomain "github.com/Apurer/pharmacy-dispatch/internal/domains/logistics/domain"
)

// API is the reconciliation slice of the backend; admin only.
type API interface {
	FinishedRoutes(ctx context.Context) ([]logisticsdomain.RouteSheet, error)
	RouteSummary(ctx context.Context, routeID int64) (domain.RouteSummary, error)
	RegisterPayment(ctx context.Context, packageID int64, payment domain.Payment) (domain.PaymentReceipt, error)
}
