package query

import (
	"strconv"
	"strings"
)

// Resource names a family of cached reads. Every resource the client caches
// is declared here; invalidation targets are picked from this list, never
// spelled ad hoc at call sites.
type Resource string

const (
	ResourceAuthUser                Resource = "authUser"
	ResourceCurrentUser             Resource = "usuarioActual"
	ResourcePendingValidationOrders Resource = "pedidosEnValidacion"
	ResourceRecentBatches           Resource = "lotesRecientes"
	ResourceMedications             Resource = "catalogoMedicamentos"
	ResourceOperationCenters        Resource = "centrosOperacion"
	ResourceZones                   Resource = "zonas"
	ResourceApprovedOrdersSummary   Resource = "resumenPedidosAprobados"
	ResourcePickingGuide            Resource = "guiaAlistamientoOla"
	ResourceNextPackingTask         Resource = "siguientePedidoParaEmpacar"
	ResourceReadyPackages           Resource = "paquetesListos"
	ResourceDeliveryAgents          Resource = "agentesEntrega"
	ResourceActiveRoutes            Resource = "rutasActivas"
	ResourceRouteDetail             Resource = "detalleRuta"
	ResourceFinishedRoutes          Resource = "rutasFinalizadas"
	ResourceRouteSummary            Resource = "resumenRuta"
	ResourceMyActiveRoute           Resource = "mi_ruta_activa"
	ResourcePackageDetail           Resource = "detallePaquete"
)

// Key identifies one cached read: a resource plus its parameters. Keys can
// only be built through the constructors below.
type Key struct {
	resource Resource
	param    string
}

func (k Key) Resource() Resource { return k.resource }

func (k Key) String() string {
	if k.param == "" {
		return string(k.resource)
	}
	return string(k.resource) + "/" + k.param
}

// IsZero reports whether k was never built by a constructor.
func (k Key) IsZero() bool { return k.resource == "" }

func simple(r Resource) Key { return Key{resource: r} }

func withString(r Resource, p string) Key {
	return Key{resource: r, param: strings.TrimSpace(p)}
}

func withID(r Resource, id int64) Key {
	return Key{resource: r, param: strconv.FormatInt(id, 10)}
}

func AuthUser() Key { return simple(ResourceAuthUser) }
func CurrentUser() Key { return simple(ResourceCurrentUser) }
func PendingValidationOrders() Key { return simple(ResourcePendingValidationOrders) }
func RecentBatches() Key { return simple(ResourceRecentBatches) }
func Medications() Key { return simple(ResourceMedications) }
func OperationCenters() Key { return simple(ResourceOperationCenters) }
func Zones() Key { return simple(ResourceZones) }
func ApprovedOrdersSummary() Key { return simple(ResourceApprovedOrdersSummary) }
func PickingGuide() Key { return simple(ResourcePickingGuide) }
func NextPackingTask() Key { return simple(ResourceNextPackingTask) }
func DeliveryAgents() Key { return simple(ResourceDeliveryAgents) }
func ActiveRoutes() Key { return simple(ResourceActiveRoutes) }
func FinishedRoutes() Key { return simple(ResourceFinishedRoutes) }
func MyActiveRoute() Key { return simple(ResourceMyActiveRoute) }

// ReadyPackages is parameterized by delivery zone.
func ReadyPackages(zone string) Key { return withString(ResourceReadyPackages, zone) }

func RouteDetail(routeID int64) Key { return withID(ResourceRouteDetail, routeID) }
func RouteSummary(routeID int64) Key { return withID(ResourceRouteSummary, routeID) }
func PackageDetail(packageID int64) Key { return withID(ResourcePackageDetail, packageID) }
