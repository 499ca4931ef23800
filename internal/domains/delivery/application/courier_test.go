package application

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/pharmacy-dispatch/internal/domains/delivery/domain"
	logisticsdomain "github.com/Apurer/pharmacy-dispatch/internal/domains/logistics/domain"
	"github.com/Apurer/pharmacy-dispatch/internal/query"
	"github.com/Apurer/pharmacy-dispatch/internal/scanner"
	apperrors "github.com/Apurer/pharmacy-dispatch/internal/shared/errors"
)

type fakeCourierAPI struct {
	mu       sync.Mutex
	route    *logisticsdomain.RouteSheet
	calls    map[string]int
	reasons  []string
	finished bool
}

func newFakeCourierAPI(route *logisticsdomain.RouteSheet) *fakeCourierAPI {
	return &fakeCourierAPI{route: route, calls: map[string]int{}}
}

func (f *fakeCourierAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func notFound(detail string) error {
	return apperrors.NewAPIError(http.StatusNotFound, detail, nil)
}

func (f *fakeCourierAPI) MyActiveRoute(context.Context) (logisticsdomain.RouteSheet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["MyActiveRoute"]++
	if f.route == nil || f.finished {
		return logisticsdomain.RouteSheet{}, notFound("No tienes una ruta activa asignada.")
	}
	route := *f.route
	route.Packages = append([]logisticsdomain.Package(nil), f.route.Packages...)
	return route, nil
}

func (f *fakeCourierAPI) PackageDetail(_ context.Context, packageID int64) (logisticsdomain.Package, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["PackageDetail"]++
	if f.route != nil {
		if p, ok := f.route.Package(packageID); ok {
			return p, nil
		}
	}
	return logisticsdomain.Package{}, notFound("Paquete no encontrado.")
}

func (f *fakeCourierAPI) setStatus(packageID int64, status logisticsdomain.PackageStatus) (logisticsdomain.Package, error) {
	for i := range f.route.Packages {
		if f.route.Packages[i].ID == packageID {
			f.route.Packages[i].Status = status
			return f.route.Packages[i], nil
		}
	}
	return logisticsdomain.Package{}, notFound("Paquete no encontrado.")
}

func (f *fakeCourierAPI) MarkDelivered(_ context.Context, packageID int64) (logisticsdomain.Package, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["MarkDelivered"]++
	return f.setStatus(packageID, logisticsdomain.PackageDelivered)
}

func (f *fakeCourierAPI) MarkFailed(_ context.Context, packageID int64, report domain.FailureReport) (logisticsdomain.Package, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["MarkFailed"]++
	f.reasons = append(f.reasons, report.Reason)
	return f.setStatus(packageID, logisticsdomain.PackageFailed)
}

func (f *fakeCourierAPI) FinishMyRoute(context.Context) (logisticsdomain.RouteSheet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["FinishMyRoute"]++
	if f.route == nil || f.finished {
		return logisticsdomain.RouteSheet{}, notFound("No tienes una ruta en curso para finalizar.")
	}
	f.finished = true
	route := *f.route
	route.Status = logisticsdomain.RouteFinished
	return route, nil
}

func stopAt(n int) *int { return &n }

func sampleRoute() *logisticsdomain.RouteSheet {
	return &logisticsdomain.RouteSheet{ID: 3, Status: logisticsdomain.RouteInProgress, Packages: []logisticsdomain.Package{
		{ID: 12, Status: logisticsdomain.PackageOnRoute, StopNumber: stopAt(2)},
		{ID: 11, Status: logisticsdomain.PackageOnRoute, StopNumber: stopAt(1)},
	}}
}

func TestMyRoute_NotFoundIsEmptyState(t *testing.T) {
	courier := NewCourier(newFakeCourierAPI(nil), query.New())
	_, err := courier.MyRoute(context.Background())
	require.ErrorIs(t, err, domain.ErrNoActiveRoute)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestStops_InStopOrder(t *testing.T) {
	courier := NewCourier(newFakeCourierAPI(sampleRoute()), query.New())
	stops, err := courier.Stops(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(11), stops[0].ID)
	require.Equal(t, int64(12), stops[1].ID)
}

func TestMarkDelivered_RequiresVerification(t *testing.T) {
	api := newFakeCourierAPI(sampleRoute())
	courier := NewCourier(api, query.New())
	ctx := context.Background()

	_, err := courier.MarkDelivered(ctx, 11)
	require.ErrorIs(t, err, domain.ErrNotVerified)

	var mismatch *domain.MismatchError
	require.ErrorAs(t, courier.Verify(11, "12"), &mismatch)
	require.False(t, courier.IsVerified(11))

	require.NoError(t, courier.Verify(11, "11"))
	pkg, err := courier.MarkDelivered(ctx, 11)
	require.NoError(t, err)
	require.Equal(t, logisticsdomain.PackageDelivered, pkg.Status)
	require.False(t, courier.IsVerified(11))
	require.Equal(t, 1, api.count("MarkDelivered"))
}

func TestMarkDelivered_RefreshesRouteAndDetail(t *testing.T) {
	api := newFakeCourierAPI(sampleRoute())
	courier := NewCourier(api, query.New())
	ctx := context.Background()

	_, err := courier.MyRoute(ctx)
	require.NoError(t, err)
	before, err := courier.Stop(ctx, 11)
	require.NoError(t, err)
	require.True(t, before.Status.Pending())

	require.NoError(t, courier.Verify(11, "11"))
	_, err = courier.MarkDelivered(ctx, 11)
	require.NoError(t, err)

	after, err := courier.Stop(ctx, 11)
	require.NoError(t, err)
	require.Equal(t, logisticsdomain.PackageDelivered, after.Status)
	route, err := courier.MyRoute(ctx)
	require.NoError(t, err)
	delivered, _, _ := route.Progress()
	require.Equal(t, 1, delivered)
	require.Equal(t, 2, api.count("MyActiveRoute"))
	require.Equal(t, 2, api.count("PackageDetail"))
}

func TestMarkFailed_NeedsReason(t *testing.T) {
	api := newFakeCourierAPI(sampleRoute())
	courier := NewCourier(api, query.New())
	ctx := context.Background()
	require.NoError(t, courier.Verify(12, "12"))

	_, err := courier.MarkFailed(ctx, 12, "  ")
	require.ErrorIs(t, err, domain.ErrReasonRequired)
	require.Zero(t, api.count("MarkFailed"))

	pkg, err := courier.MarkFailed(ctx, 12, domain.DefaultFailureReason)
	require.NoError(t, err)
	require.Equal(t, logisticsdomain.PackageFailed, pkg.Status)
	require.Equal(t, []string{"Cliente ausente"}, api.reasons)
}

func TestScan_VerifiesWithDevice(t *testing.T) {
	courier := NewCourier(newFakeCourierAPI(sampleRoute()), query.New())
	decoded, err := courier.Scan(context.Background(), 11, scanner.NewLineDevice(strings.NewReader("11\n")))
	require.NoError(t, err)
	require.Equal(t, "11", decoded)
	require.True(t, courier.IsVerified(11))
}

func TestFinishRoute(t *testing.T) {
	api := newFakeCourierAPI(sampleRoute())
	courier := NewCourier(api, query.New())
	ctx := context.Background()

	_, err := courier.MyRoute(ctx)
	require.NoError(t, err)
	route, err := courier.FinishRoute(ctx)
	require.NoError(t, err)
	require.Equal(t, logisticsdomain.RouteFinished, route.Status)

	_, err = courier.MyRoute(ctx)
	require.ErrorIs(t, err, domain.ErrNoActiveRoute)
	_, err = courier.FinishRoute(ctx)
	require.ErrorIs(t, err, domain.ErrNoActiveRoute)
}
