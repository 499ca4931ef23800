package pharmacy

import (
	"context"
	"net/http"

	closingdomain "github.com/Apurer/pharmacy-dispatch/internal/domains/closing/domain"
	closingports "github.com/Apurer/pharmacy-dispatch/internal/domains/closing/ports"
	"github.com/Apurer/pharmacy-dispatch/internal/domains/logistics/domain"
)

func (c *Client) FinishedRoutes(ctx context.Context) ([]domain.RouteSheet, error) {
	return get[[]domain.RouteSheet](ctx, c, "FinishedRoutes", "/cierre/rutas_finalizadas", nil)
}

func (c *Client) RouteSummary(ctx context.Context, routeID int64) (closingdomain.RouteSummary, error) {
	id, err := pathID("ruta_id", routeID)
	if err != nil {
		return closingdomain.RouteSummary{}, err
	}
	return get[closingdomain.RouteSummary](ctx, c, "RouteSummary", "/cierre/hoja_de_ruta/"+id+"/resumen", nil)
}

func (c *Client) RegisterPayment(ctx context.Context, packageID int64, payment closingdomain.Payment) (closingdomain.PaymentReceipt, error) {
	id, err := pathID("paquete_id", packageID)
	if err != nil {
		return closingdomain.PaymentReceipt{}, err
	}
	if err := c.check(payment); err != nil {
		return closingdomain.PaymentReceipt{}, err
	}
	return send[closingdomain.PaymentReceipt](ctx, c, "RegisterPayment", http.MethodPost, "/cierre/paquetes/"+id+"/registrar_pago", payment)
}

var _ closingports.API = (*Client)(nil)
