package domain

import (
	"errors"
	"sort"
	"strings"

	ordersdomain "github.com/Apurer/pharmacy-dispatch/internal/domains/orders/domain"
	"github.com/Apurer/pharmacy-dispatch/internal/shared/wire"
)

// PackageStatus is the delivery state of a package.
type PackageStatus string

const (
	PackageInWarehouse PackageStatus = "en_bodega"
	PackageOnRoute     PackageStatus = "asignado_a_ruta"
	PackageDelivered   PackageStatus = "entregado"
	PackageFailed      PackageStatus = "no_entregado"
)

// Pending reports whether the package still awaits a delivery outcome.
func (s PackageStatus) Pending() bool {
	return s != PackageDelivered && s != PackageFailed
}

func (s PackageStatus) Label() string {
	return strings.ReplaceAll(string(s), "_", " ")
}

// Package mirrors PaqueteRead.
type Package struct {
	ID         int64              `json:"id"`
	Status     PackageStatus      `json:"estado_entrega"`
	StopNumber *int               `json:"numero_parada"`
	Order      ordersdomain.Order `json:"pedido"`
}

// Stop returns the stop number, or 0 when the package is not routed yet.
func (p Package) Stop() int {
	if p.StopNumber == nil {
		return 0
	}
	return *p.StopNumber
}

type RouteStatus string

const (
	RoutePlanned    RouteStatus = "planificada"
	RouteInProgress RouteStatus = "en_curso"
	RouteFinished   RouteStatus = "finalizada"
)

// Active reports whether the route still shows up on the live monitor.
func (s RouteStatus) Active() bool {
	return s == RoutePlanned || s == RouteInProgress
}

const RouteTypeFinalDelivery = "ENTREGA_FINAL"

// RouteSheet mirrors HojaDeRutaRead.
type RouteSheet struct {
	ID         int64         `json:"id"`
	Status     RouteStatus   `json:"estado"`
	Type       string        `json:"tipo_ruta"`
	AssignedAt wire.Time     `json:"fecha_asignacion"`
	Agent      DeliveryAgent `json:"agente_entrega"`
	Packages   []Package     `json:"paquetes"`
}

// Stops returns the packages ordered by stop number; unrouted packages keep
// their list position after the routed ones.
func (r RouteSheet) Stops() []Package {
	stops := append([]Package(nil), r.Packages...)
	sort.SliceStable(stops, func(i, j int) bool {
		a, b := stops[i].Stop(), stops[j].Stop()
		if a == 0 || b == 0 {
			return a != 0 && b == 0
		}
		return a < b
	})
	return stops
}

// Progress counts delivered, failed and pending packages.
func (r RouteSheet) Progress() (delivered, failed, pending int) {
	for _, p := range r.Packages {
		switch p.Status {
		case PackageDelivered:
			delivered++
		case PackageFailed:
			failed++
		default:
			pending++
		}
	}
	return delivered, failed, pending
}

// Package looks up one package of the route.
func (r RouteSheet) Package(id int64) (Package, bool) {
	for _, p := range r.Packages {
		if p.ID == id {
			return p, true
		}
	}
	return Package{}, false
}

var ErrZoneRequired = errors.New("a delivery zone must be selected")

// NewRouteSheet assigns every ready package of Zone to an agent.
type NewRouteSheet struct {
	AgentID int64  `json:"agente_entrega_id" validate:"gte=1"`
	Zone    string `json:"zona" validate:"required"`
	Type    string `json:"tipo_ruta,omitempty"`
}

// Normalize trims the zone and fills the default route type.
func (n NewRouteSheet) Normalize() NewRouteSheet {
	n.Zone = strings.TrimSpace(n.Zone)
	if strings.TrimSpace(n.Type) == "" {
		n.Type = RouteTypeFinalDelivery
	}
	return n
}
