// Package devserver is an in-memory implementation of the pharmacy REST API
// used to exercise the client end to end.
package devserver

import (
	"context"
	"io"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	authdomain "github.com/Apurer/pharmacy-dispatch/internal/domains/auth/domain"
	apperrors "github.com/Apurer/pharmacy-dispatch/internal/shared/errors"
	"github.com/Apurer/pharmacy-dispatch/internal/shared/validation"
)

const ServiceName = "pharmacy-devserver"

// Notifier delivers customer messages. The default one only logs them.
type Notifier func(ctx context.Context, notice Notice)

// Server holds the handlers of the development backend.
type Server struct {
	store     *Store
	issuer    *Issuer
	responder *apperrors.Responder
	validate  *validator.Validate
	logger    *slog.Logger
	notify    Notifier
}

type Option func(*Server)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

func WithNotifier(n Notifier) Option {
	return func(s *Server) { s.notify = n }
}

func NewServer(store *Store, issuer *Issuer, opts ...Option) *Server {
	s := &Server{
		store:     store,
		issuer:    issuer,
		responder: apperrors.NewResponder(),
		validate:  validation.New(),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.notify == nil {
		s.notify = s.logNotice
	}
	return s
}

func (s *Server) logNotice(ctx context.Context, n Notice) {
	s.logger.LogAttrs(ctx, slog.LevelInfo, "whatsapp notification simulated", slog.String("to", n.To), slog.String("body", n.Body))
}

// Router mounts every endpoint of the API.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), otelgin.Middleware(ServiceName))

	r.GET("/", s.root)
	r.POST("/token", s.login)
	r.POST("/pedidos/", s.createOrder)
	r.GET("/zonas/", s.zones)

	authed := r.Group("/", authenticate(s.store, s.issuer, s.responder))
	staff := requireRole(s.responder, "Acceso denegado.", authdomain.RoleOperator, authdomain.RoleAdmin)
	admin := requireRole(s.responder, "Acceso denegado.", authdomain.RoleAdmin)

	authed.GET("/users/me", s.me)

	authed.GET("/pedidos/en_validacion", staff, s.pendingValidation)
	authed.PATCH("/pedidos/:pedido_id/aprobar", staff, s.approveOrder)

	authed.GET("/catalogo/medicamentos", s.medications)
	authed.GET("/catalogo/agentes_entrega", s.deliveryAgents)
	authed.GET("/catalogo/centros_operacion", s.operationCenters)

	authed.POST("/logistica/recepcion_lote/", staff, s.receiveBatch)
	authed.GET("/logistica/lotes/", s.batches)
	authed.GET("/logistica/pedidos_aprobados_resumen", staff, s.approvedSummary)
	authed.POST("/logistica/crear_ola_picking", staff, s.createWave)
	authed.GET("/logistica/guia_alistamiento_ola", staff, s.pickingGuide)
	authed.GET("/logistica/siguiente_pedido_para_empacar", staff, s.nextPackingTask)
	authed.POST("/logistica/finalizar_empaque/:pedido_id", staff, s.finalizePacking)
	authed.GET("/logistica/paquetes/listos", s.readyPackages)
	authed.POST("/logistica/crear_hoja_de_ruta", staff, s.createRouteSheet)
	authed.GET("/logistica/rutas_activas", staff, s.activeRoutes)
	authed.GET("/logistica/hojas_de_ruta/:ruta_id", staff, s.routeSheet)

	authed.GET("/logistica/mi_ruta_activa", s.myActiveRoute)
	authed.PATCH("/logistica/mi_ruta_activa/finalizar", s.finishMyRoute)
	authed.GET("/logistica/paquetes/:paquete_id", s.packageDetail)
	authed.PATCH("/logistica/paquetes/:paquete_id/entregado", s.markDelivered)
	authed.PATCH("/logistica/paquetes/:paquete_id/fallido", s.markFailed)

	authed.GET("/cierre/rutas_finalizadas", requireRole(s.responder, "Acceso denegado. Se requiere rol de administrador.", authdomain.RoleAdmin), s.finishedRoutes)
	authed.GET("/cierre/hoja_de_ruta/:ruta_id/resumen", admin, s.routeSummary)
	authed.POST("/cierre/paquetes/:paquete_id/registrar_pago", admin, s.registerPayment)
	return r
}
