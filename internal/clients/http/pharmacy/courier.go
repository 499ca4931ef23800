package pharmacy

import (
	"context"
	"net/http"

	deliverydomain "github.com/Apurer/pharmacy-dispatch/internal/domains/delivery/domain"
	deliveryports "github.com/Apurer/pharmacy-dispatch/internal/domains/delivery/ports"
	"github.com/Apurer/pharmacy-dispatch/internal/domains/logistics/domain"
)

// MyActiveRoute returns the courier's current route. The first read of a
// planned route starts it on the server. A courier without a route gets a 404.
func (c *Client) MyActiveRoute(ctx context.Context) (domain.RouteSheet, error) {
	return get[domain.RouteSheet](ctx, c, "MyActiveRoute", "/logistica/mi_ruta_activa", nil)
}

func (c *Client) PackageDetail(ctx context.Context, packageID int64) (domain.Package, error) {
	id, err := pathID("paquete_id", packageID)
	if err != nil {
		return domain.Package{}, err
	}
	return get[domain.Package](ctx, c, "PackageDetail", "/logistica/paquetes/"+id, nil)
}

func (c *Client) MarkDelivered(ctx context.Context, packageID int64) (domain.Package, error) {
	id, err := pathID("paquete_id", packageID)
	if err != nil {
		return domain.Package{}, err
	}
	return send[domain.Package](ctx, c, "MarkDelivered", http.MethodPatch, "/logistica/paquetes/"+id+"/entregado", nil)
}

func (c *Client) MarkFailed(ctx context.Context, packageID int64, report deliverydomain.FailureReport) (domain.Package, error) {
	id, err := pathID("paquete_id", packageID)
	if err != nil {
		return domain.Package{}, err
	}
	if err := c.check(report); err != nil {
		return domain.Package{}, err
	}
	return send[domain.Package](ctx, c, "MarkFailed", http.MethodPatch, "/logistica/paquetes/"+id+"/fallido", report)
}

func (c *Client) FinishMyRoute(ctx context.Context) (domain.RouteSheet, error) {
	return send[domain.RouteSheet](ctx, c, "FinishMyRoute", http.MethodPatch, "/logistica/mi_ruta_activa/finalizar", nil)
}

var _ deliveryports.API = (*Client)(nil)
