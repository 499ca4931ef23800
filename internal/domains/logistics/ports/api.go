package ports

import (
	"context"

	"github.com/Apurer/pharmacy-dispatch/internal/domains/logistics/domain"
	ordersdomain "github.com/Apurer/pharmacy-dispatch/internal/domains/orders/domain"
)

type CatalogAPI interface {
	Medications(ctx context.Context) ([]domain.Medication, error)
	DeliveryAgents(ctx context.Context) ([]domain.DeliveryAgent, error)
	OperationCenters(ctx context.Context) ([]domain.OperationCenter, error)
	Zones(ctx context.Context) ([]domain.Zone, error)
}

type ReceivingAPI interface {
	ReceiveBatch(ctx context.Context, batch domain.NewBatch) (domain.Batch, error)
	RecentBatches(ctx context.Context) ([]domain.Batch, error)
}

type PickingAPI interface {
	ApprovedOrdersSummary(ctx context.Context) (domain.ApprovedSummary, error)
	CreatePickWave(ctx context.Context) (domain.Wave, error)
	PickingGuide(ctx context.Context) (domain.PickingGuide, error)
}

// PackingAPI drives the packing queue. NextPackingTask is not idempotent:
// the backend hands the returned order to the caller.
type PackingAPI interface {
	NextPackingTask(ctx context.Context) (domain.PackingTask, error)
	FinalizePacking(ctx context.Context, orderID int64) (ordersdomain.Order, error)
}

type DispatchAPI interface {
	ReadyPackages(ctx context.Context, zone string) ([]domain.Package, error)
	CreateRouteSheet(ctx context.Context, sheet domain.NewRouteSheet) (domain.RouteSheet, error)
}

type RoutesAPI interface {
	ActiveRoutes(ctx context.Context) ([]domain.RouteSheet, error)
	RouteSheet(ctx context.Context, routeID int64) (domain.RouteSheet, error)
}

// API is everything the logistics desk needs from the backend.
type API interface {
	CatalogAPI
	ReceivingAPI
	PickingAPI
	PackingAPI
	DispatchAPI
	RoutesAPI
}
