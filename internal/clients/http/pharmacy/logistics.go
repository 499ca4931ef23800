package pharmacy

import (
	"context"
	"net/http"
	"strings"

	"github.com/Apurer/pharmacy-dispatch/internal/domains/logistics/domain"
	logisticsports "github.com/Apurer/pharmacy-dispatch/internal/domains/logistics/ports"
	ordersdomain "github.com/Apurer/pharmacy-dispatch/internal/domains/orders/domain"
)

func (c *Client) Medications(ctx context.Context) ([]domain.Medication, error) {
	return get[[]domain.Medication](ctx, c, "Medications", "/catalogo/medicamentos", nil)
}

func (c *Client) DeliveryAgents(ctx context.Context) ([]domain.DeliveryAgent, error) {
	return get[[]domain.DeliveryAgent](ctx, c, "DeliveryAgents", "/catalogo/agentes_entrega", nil)
}

func (c *Client) OperationCenters(ctx context.Context) ([]domain.OperationCenter, error) {
	return get[[]domain.OperationCenter](ctx, c, "OperationCenters", "/catalogo/centros_operacion", nil)
}

func (c *Client) Zones(ctx context.Context) ([]domain.Zone, error) {
	return get[[]domain.Zone](ctx, c, "Zones", "/zonas/", nil)
}

func (c *Client) ReceiveBatch(ctx context.Context, batch domain.NewBatch) (domain.Batch, error) {
	batch = batch.Normalize()
	if err := c.check(batch); err != nil {
		return domain.Batch{}, err
	}
	return send[domain.Batch](ctx, c, "ReceiveBatch", http.MethodPost, "/logistica/recepcion_lote/", batch)
}

func (c *Client) RecentBatches(ctx context.Context) ([]domain.Batch, error) {
	return get[[]domain.Batch](ctx, c, "RecentBatches", "/logistica/lotes/", nil)
}

func (c *Client) ApprovedOrdersSummary(ctx context.Context) (domain.ApprovedSummary, error) {
	return get[domain.ApprovedSummary](ctx, c, "ApprovedOrdersSummary", "/logistica/pedidos_aprobados_resumen", nil)
}

func (c *Client) CreatePickWave(ctx context.Context) (domain.Wave, error) {
	return send[domain.Wave](ctx, c, "CreatePickWave", http.MethodPost, "/logistica/crear_ola_picking", nil)
}

func (c *Client) PickingGuide(ctx context.Context) (domain.PickingGuide, error) {
	return get[domain.PickingGuide](ctx, c, "PickingGuide", "/logistica/guia_alistamiento_ola", nil)
}

// NextPackingTask claims the next order of the packing queue. The call moves
// that order to en_empaque on the server.
func (c *Client) NextPackingTask(ctx context.Context) (domain.PackingTask, error) {
	return get[domain.PackingTask](ctx, c, "NextPackingTask", "/logistica/siguiente_pedido_para_empacar", nil)
}

func (c *Client) FinalizePacking(ctx context.Context, orderID int64) (ordersdomain.Order, error) {
	id, err := pathID("pedido_id", orderID)
	if err != nil {
		return ordersdomain.Order{}, err
	}
	return send[ordersdomain.Order](ctx, c, "FinalizePacking", http.MethodPost, "/logistica/finalizar_empaque/"+id, nil)
}

// ReadyPackages lists the packages of zone awaiting a route. A blank zone
// yields an empty list without calling the API.
func (c *Client) ReadyPackages(ctx context.Context, zone string) ([]domain.Package, error) {
	zone = strings.TrimSpace(zone)
	if zone == "" {
		return []domain.Package{}, nil
	}
	query, err := formQuery("zona", zone)
	if err != nil {
		return nil, err
	}
	return get[[]domain.Package](ctx, c, "ReadyPackages", "/logistica/paquetes/listos", query)
}

func (c *Client) CreateRouteSheet(ctx context.Context, sheet domain.NewRouteSheet) (domain.RouteSheet, error) {
	sheet = sheet.Normalize()
	if err := c.check(sheet); err != nil {
		return domain.RouteSheet{}, err
	}
	return send[domain.RouteSheet](ctx, c, "CreateRouteSheet", http.MethodPost, "/logistica/crear_hoja_de_ruta", sheet)
}

func (c *Client) ActiveRoutes(ctx context.Context) ([]domain.RouteSheet, error) {
	return get[[]domain.RouteSheet](ctx, c, "ActiveRoutes", "/logistica/rutas_activas", nil)
}

func (c *Client) RouteSheet(ctx context.Context, routeID int64) (domain.RouteSheet, error) {
	id, err := pathID("ruta_id", routeID)
	if err != nil {
		return domain.RouteSheet{}, err
	}
	return get[domain.RouteSheet](ctx, c, "RouteSheet", "/logistica/hojas_de_ruta/"+id, nil)
}

var _ logisticsports.API = (*Client)(nil)
