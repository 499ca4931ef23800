package application

import (
	"context"
	"errors"
	"sync"

	"github.com/Apurer/pharmacy-dispatch/internal/domains/logistics/domain"
	ordersdomain "github.com/Apurer/pharmacy-dispatch/internal/domains/orders/domain"
)

type fakeLogisticsAPI struct {
	mu    sync.Mutex
	calls map[string]int
	zones []string

	batches  []domain.Batch
	approved []ordersdomain.Order
	queue    []ordersdomain.Order
	ready    map[string][]domain.Package
	routes   []domain.RouteSheet

	finalizeErr error
	finalized   []int64
}

func newFakeLogisticsAPI() *fakeLogisticsAPI {
	return &fakeLogisticsAPI{calls: map[string]int{}, ready: map[string][]domain.Package{}}
}

func (f *fakeLogisticsAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeLogisticsAPI) hit(name string) {
	f.calls[name]++
}

func (f *fakeLogisticsAPI) Medications(context.Context) ([]domain.Medication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("Medications")
	return []domain.Medication{{ID: 1, GenericName: "Losartán"}}, nil
}

func (f *fakeLogisticsAPI) DeliveryAgents(context.Context) ([]domain.DeliveryAgent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("DeliveryAgents")
	return []domain.DeliveryAgent{{ID: 1, Name: "Carlos", Type: "MENSAJERO_PROPIO"}}, nil
}

func (f *fakeLogisticsAPI) OperationCenters(context.Context) ([]domain.OperationCenter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("OperationCenters")
	return []domain.OperationCenter{{ID: 1, Name: "Bodega Central"}}, nil
}

func (f *fakeLogisticsAPI) Zones(context.Context) ([]domain.Zone, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("Zones")
	return []domain.Zone{{ID: 1, Name: domain.ZoneNorth}}, nil
}

func (f *fakeLogisticsAPI) ReceiveBatch(_ context.Context, batch domain.NewBatch) (domain.Batch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("ReceiveBatch")
	created := domain.Batch{ID: int64(len(f.batches) + 1), SupplierLot: batch.SupplierLot, CurrentQuantity: batch.ReceivedQuantity}
	f.batches = append(f.batches, created)
	return created, nil
}

func (f *fakeLogisticsAPI) RecentBatches(context.Context) ([]domain.Batch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("RecentBatches")
	return append([]domain.Batch(nil), f.batches...), nil
}

func (f *fakeLogisticsAPI) ApprovedOrdersSummary(context.Context) (domain.ApprovedSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("ApprovedOrdersSummary")
	return domain.ApprovedSummary{Total: len(f.approved), Orders: append([]ordersdomain.Order(nil), f.approved...)}, nil
}

func (f *fakeLogisticsAPI) CreatePickWave(context.Context) (domain.Wave, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("CreatePickWave")
	if len(f.approved) == 0 {
		return domain.Wave{}, errors.New("No hay pedidos aprobados para procesar.")
	}
	wave := domain.Wave{ID: 1, OrderCount: len(f.approved)}
	for _, order := range f.approved {
		wave.OrderIDs = append(wave.OrderIDs, order.ID)
		f.queue = append(f.queue, order)
	}
	f.approved = nil
	return wave, nil
}

func (f *fakeLogisticsAPI) PickingGuide(context.Context) (domain.PickingGuide, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("PickingGuide")
	return domain.PickingGuide{Pending: len(f.queue)}, nil
}

func (f *fakeLogisticsAPI) NextPackingTask(context.Context) (domain.PackingTask, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("NextPackingTask")
	if len(f.queue) == 0 {
		return domain.PackingTask{}, nil
	}
	next := f.queue[0]
	f.queue = f.queue[1:]
	return domain.PackingTask{Next: &next, Queued: len(f.queue)}, nil
}

func (f *fakeLogisticsAPI) FinalizePacking(_ context.Context, orderID int64) (ordersdomain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("FinalizePacking")
	if f.finalizeErr != nil {
		return ordersdomain.Order{}, f.finalizeErr
	}
	f.finalized = append(f.finalized, orderID)
	return ordersdomain.Order{ID: orderID, Status: ordersdomain.StatusReadyForDispatch}, nil
}

func (f *fakeLogisticsAPI) ReadyPackages(_ context.Context, zone string) ([]domain.Package, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("ReadyPackages")
	f.zones = append(f.zones, zone)
	return append([]domain.Package(nil), f.ready[zone]...), nil
}

func (f *fakeLogisticsAPI) CreateRouteSheet(_ context.Context, sheet domain.NewRouteSheet) (domain.RouteSheet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("CreateRouteSheet")
	packages := f.ready[sheet.Zone]
	if len(packages) == 0 {
		return domain.RouteSheet{}, errors.New("no packages ready")
	}
	delete(f.ready, sheet.Zone)
	route := domain.RouteSheet{ID: int64(len(f.routes) + 1), Status: domain.RoutePlanned, Type: sheet.Type, Agent: domain.DeliveryAgent{ID: sheet.AgentID}, Packages: packages}
	f.routes = append(f.routes, route)
	return route, nil
}

func (f *fakeLogisticsAPI) ActiveRoutes(context.Context) ([]domain.RouteSheet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("ActiveRoutes")
	return append([]domain.RouteSheet(nil), f.routes...), nil
}

func (f *fakeLogisticsAPI) RouteSheet(_ context.Context, routeID int64) (domain.RouteSheet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("RouteSheet")
	for _, route := range f.routes {
		if route.ID == routeID {
			return route, nil
		}
	}
	return domain.RouteSheet{}, errors.New("Hoja de ruta no encontrada.")
}
