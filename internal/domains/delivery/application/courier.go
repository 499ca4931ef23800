package application

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Apurer/pharmacy-dispatch/internal/domains/delivery/domain"
	"github.com/Apurer/pharmacy-dispatch/internal/domains/delivery/ports"
	logisticsdomain "github.com/Apurer/pharmacy-dispatch/internal/domains/logistics/domain"
	"github.com/Apurer/pharmacy-dispatch/internal/query"
	"github.com/Apurer/pharmacy-dispatch/internal/scanner"
	apperrors "github.com/Apurer/pharmacy-dispatch/internal/shared/errors"
)

// ErrOutcomeInFlight is returned while a delivered/failed transition for the
// same stop is still being recorded.
var ErrOutcomeInFlight = errors.New("an outcome for this stop is already being recorded")

// Courier backs the courier app: the active route, per-stop verification
// and the delivery outcome transitions.
type Courier struct {
	api   ports.API
	cache *query.Cache

	mu       sync.Mutex
	verified map[int64]bool
	busy     map[int64]bool
}

func NewCourier(api ports.API, cache *query.Cache) *Courier {
	if cache == nil {
		cache = query.New()
	}
	return &Courier{api: api, cache: cache, verified: map[int64]bool{}, busy: map[int64]bool{}}
}

// MyRoute returns the courier's active route. A courier without a route
// gets domain.ErrNoActiveRoute.
func (c *Courier) MyRoute(ctx context.Context) (logisticsdomain.RouteSheet, error) {
	route, err := query.Fetch(ctx, c.cache, query.MyActiveRoute(), c.api.MyActiveRoute)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return logisticsdomain.RouteSheet{}, fmt.Errorf("%w: %w", domain.ErrNoActiveRoute, err)
		}
		return logisticsdomain.RouteSheet{}, err
	}
	return route, nil
}

// Stops lists the route's packages in stop order.
func (c *Courier) Stops(ctx context.Context) ([]logisticsdomain.Package, error) {
	route, err := c.MyRoute(ctx)
	if err != nil {
		return nil, err
	}
	return route.Stops(), nil
}

// Stop returns the detail of one package of the route.
func (c *Courier) Stop(ctx context.Context, packageID int64) (logisticsdomain.Package, error) {
	return query.Fetch(ctx, c.cache, query.PackageDetail(packageID), func(ctx context.Context) (logisticsdomain.Package, error) {
		return c.api.PackageDetail(ctx, packageID)
	})
}

// Verify checks a decoded barcode against the stop's package and unlocks
// the outcome transitions when it matches.
func (c *Courier) Verify(packageID int64, decoded string) error {
	if !domain.Matches(decoded, packageID) {
		return &domain.MismatchError{Scanned: decoded, Expected: packageID}
	}
	c.mu.Lock()
	c.verified[packageID] = true
	c.mu.Unlock()
	return nil
}

// Scan reads one code from device and verifies it against packageID. The
// device is stopped before Scan returns.
func (c *Courier) Scan(ctx context.Context, packageID int64, device scanner.Device) (string, error) {
	decoded, err := scanner.ScanOnce(ctx, device)
	if err != nil {
		return "", err
	}
	return decoded, c.Verify(packageID, decoded)
}

func (c *Courier) IsVerified(packageID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.verified[packageID]
}

// MarkDelivered records a successful delivery of a verified stop.
func (c *Courier) MarkDelivered(ctx context.Context, packageID int64) (logisticsdomain.Package, error) {
	return c.record(ctx, packageID, func(ctx context.Context) (logisticsdomain.Package, error) {
		return c.api.MarkDelivered(ctx, packageID)
	})
}

// MarkFailed records a failed delivery of a verified stop with its reason.
func (c *Courier) MarkFailed(ctx context.Context, packageID int64, reason string) (logisticsdomain.Package, error) {
	report, err := domain.NewFailureReport(reason)
	if err != nil {
		return logisticsdomain.Package{}, err
	}
	return c.record(ctx, packageID, func(ctx context.Context) (logisticsdomain.Package, error) {
		return c.api.MarkFailed(ctx, packageID, report)
	})
}

func (c *Courier) record(ctx context.Context, packageID int64, fn func(context.Context) (logisticsdomain.Package, error)) (logisticsdomain.Package, error) {
	c.mu.Lock()
	if !c.verified[packageID] {
		c.mu.Unlock()
		return logisticsdomain.Package{}, domain.ErrNotVerified
	}
	if c.busy[packageID] {
		c.mu.Unlock()
		return logisticsdomain.Package{}, ErrOutcomeInFlight
	}
	c.busy[packageID] = true
	c.mu.Unlock()

	pkg, err := query.Mutate(ctx, c.cache, fn, query.MyActiveRoute(), query.PackageDetail(packageID))

	c.mu.Lock()
	delete(c.busy, packageID)
	if err == nil {
		delete(c.verified, packageID)
	}
	c.mu.Unlock()
	return pkg, err
}

// FinishRoute closes the courier's route once the run is over.
func (c *Courier) FinishRoute(ctx context.Context) (logisticsdomain.RouteSheet, error) {
	route, err := query.Mutate(ctx, c.cache, c.api.FinishMyRoute, query.MyActiveRoute(), query.ActiveRoutes(), query.FinishedRoutes())
	if err != nil {
		if apperrors.IsNotFound(err) {
			return logisticsdomain.RouteSheet{}, fmt.Errorf("%w: %w", domain.ErrNoActiveRoute, err)
		}
		return logisticsdomain.RouteSheet{}, err
	}
	return route, nil
}
