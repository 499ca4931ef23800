package ports

import (
	"context"

	"github.com/Apurer/pharmacy-dispatch/internal/domains/delivery/domain"
	logisticsdomain "github.com/Apurer/pharmacy-dispatch/internal/domains/logistics/domain"
)

// API is the courier's slice of the backend. MyActiveRoute answers 404 when
// the courier has no route.
type API interface {
	MyActiveRoute(ctx context.Context) (logisticsdomain.RouteSheet, error)
	PackageDetail(ctx context.Context, packageID int64) (logisticsdomain.Package, error)
	MarkDelivered(ctx context.Context, packageID int64) (logisticsdomain.Package, error)
	MarkFailed(ctx context.Context, packageID int64, report domain.FailureReport) (logisticsdomain.Package, error)
	FinishMyRoute(ctx context.Context) (logisticsdomain.RouteSheet, error)
}
