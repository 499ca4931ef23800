package devserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	closingdomain "github.com/Apurer/pharmacy-dispatch/internal/domains/closing/domain"
	deliverydomain "github.com/Apurer/pharmacy-dispatch/internal/domains/delivery/domain"
	logisticsdomain "github.com/Apurer/pharmacy-dispatch/internal/domains/logistics/domain"
	ordersdomain "github.com/Apurer/pharmacy-dispatch/internal/domains/orders/domain"
	apperrors "github.com/Apurer/pharmacy-dispatch/internal/shared/errors"
	"github.com/Apurer/pharmacy-dispatch/internal/shared/validation"
)

func missing(loc ...any) apperrors.FieldError {
	return apperrors.FieldError{Loc: loc, Msg: "field required", Type: "value_error.missing"}
}

// bind decodes the JSON body into dst and validates it, answering 422 on failure.
func (s *Server) bind(c *gin.Context, dst any) bool {
	if err := json.NewDecoder(c.Request.Body).Decode(dst); err != nil {
		s.responder.Unprocessable(c, []apperrors.FieldError{{Loc: []any{"body"}, Msg: err.Error(), Type: "value_error.jsondecode"}})
		return false
	}
	return s.valid(c, dst)
}

func (s *Server) valid(c *gin.Context, v any) bool {
	err := s.validate.Struct(v)
	if err == nil {
		return true
	}
	if fields, ok := validation.FieldErrors(err); ok {
		s.responder.Unprocessable(c, fields)
		return false
	}
	s.responder.RespondError(c, err)
	return false
}

func (s *Server) pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		s.responder.Unprocessable(c, []apperrors.FieldError{{Loc: []any{"path", name}, Msg: "value is not a valid integer", Type: "type_error.integer"}})
		return 0, false
	}
	return id, true
}

func (s *Server) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "API de Logística Farmacéutica"})
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (s *Server) login(c *gin.Context) {
	username, hasUser := c.GetPostForm("username")
	password, hasPass := c.GetPostForm("password")
	var fields []apperrors.FieldError
	if !hasUser {
		fields = append(fields, missing("body", "username"))
	}
	if !hasPass {
		fields = append(fields, missing("body", "password"))
	}
	if len(fields) > 0 {
		s.responder.Unprocessable(c, fields)
		return
	}
	user, err := s.store.Authenticate(username, password)
	if err != nil {
		s.responder.RespondError(c, err)
		return
	}
	token, err := s.issuer.Issue(user)
	if err != nil {
		s.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (s *Server) me(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

func (s *Server) createOrder(c *gin.Context) {
	parts := []string{"cliente_data", "pedido_data", "items_data"}
	raw := make(map[string]string, len(parts))
	var fields []apperrors.FieldError
	for _, name := range parts {
		v, ok := c.GetPostForm(name)
		if !ok {
			fields = append(fields, missing("body", name))
			continue
		}
		raw[name] = v
	}
	file, err := c.FormFile("foto_receta")
	if err != nil {
		fields = append(fields, missing("body", "foto_receta"))
	}
	if len(fields) > 0 {
		s.responder.Unprocessable(c, fields)
		return
	}

	var order ordersdomain.NewOrder
	if json.Unmarshal([]byte(raw["cliente_data"]), &order.Customer) != nil ||
		json.Unmarshal([]byte(raw["pedido_data"]), &order.Details) != nil ||
		json.Unmarshal([]byte(raw["items_data"]), &order.Items) != nil {
		s.responder.Respond(c, apperrors.ProblemBadRequest.WithDetail("Formato JSON inválido en los datos del formulario."))
		return
	}
	if !s.valid(c, order) {
		return
	}
	created, err := s.store.CreateOrder(order.Customer, order.Details, order.Items, file.Filename)
	if err != nil {
		s.responder.RespondError(c, err)
		return
	}
	s.logger.InfoContext(c.Request.Context(), "order created", "order_id", created.ID, "zone", created.ZoneLabel())
	c.JSON(http.StatusCreated, created)
}

func (s *Server) pendingValidation(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.PendingValidation())
}

func (s *Server) approveOrder(c *gin.Context) {
	id, ok := s.pathID(c, "pedido_id")
	if !ok {
		return
	}
	order, err := s.store.ApproveOrder(id)
	if err != nil {
		s.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) medications(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Medications())
}

func (s *Server) deliveryAgents(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.DeliveryAgents())
}

func (s *Server) operationCenters(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.OperationCenters())
}

func (s *Server) zones(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Zones())
}

func (s *Server) receiveBatch(c *gin.Context) {
	var in logisticsdomain.NewBatch
	if !s.bind(c, &in) {
		return
	}
	batch, err := s.store.ReceiveBatch(in.Normalize())
	if err != nil {
		s.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, batch)
}

func (s *Server) batches(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Batches())
}

func (s *Server) approvedSummary(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.ApprovedSummary())
}

func (s *Server) createWave(c *gin.Context) {
	wave, err := s.store.CreateWave()
	if err != nil {
		s.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, wave)
}

func (s *Server) pickingGuide(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.PickingGuide())
}

func (s *Server) nextPackingTask(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.NextPackingTask())
}

func (s *Server) finalizePacking(c *gin.Context) {
	id, ok := s.pathID(c, "pedido_id")
	if !ok {
		return
	}
	order, err := s.store.FinalizePacking(id)
	if err != nil {
		s.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) readyPackages(c *gin.Context) {
	zone, ok := c.GetQuery("zona")
	if !ok {
		s.responder.Unprocessable(c, []apperrors.FieldError{missing("query", "zona")})
		return
	}
	c.JSON(http.StatusOK, s.store.ReadyPackages(zone))
}

func (s *Server) createRouteSheet(c *gin.Context) {
	var in logisticsdomain.NewRouteSheet
	if !s.bind(c, &in) {
		return
	}
	sheet, err := s.store.CreateRouteSheet(in.Normalize())
	if err != nil {
		s.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sheet)
}

func (s *Server) activeRoutes(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.ActiveRoutes())
}

func (s *Server) routeSheet(c *gin.Context) {
	id, ok := s.pathID(c, "ruta_id")
	if !ok {
		return
	}
	sheet, err := s.store.RouteSheet(id)
	if err != nil {
		s.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sheet)
}

func (s *Server) myActiveRoute(c *gin.Context) {
	sheet, err := s.store.MyActiveRoute(currentUser(c).Email)
	if err != nil {
		s.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sheet)
}

func (s *Server) finishMyRoute(c *gin.Context) {
	sheet, err := s.store.FinishMyRoute(currentUser(c).Email)
	if err != nil {
		s.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sheet)
}

func (s *Server) packageDetail(c *gin.Context) {
	id, ok := s.pathID(c, "paquete_id")
	if !ok {
		return
	}
	pkg, err := s.store.Package(id)
	if err != nil {
		s.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pkg)
}

func (s *Server) markDelivered(c *gin.Context) {
	id, ok := s.pathID(c, "paquete_id")
	if !ok {
		return
	}
	pkg, err := s.store.MarkDelivered(currentUser(c).Email, id)
	if err != nil {
		s.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pkg)
}

func (s *Server) markFailed(c *gin.Context) {
	id, ok := s.pathID(c, "paquete_id")
	if !ok {
		return
	}
	var report deliverydomain.FailureReport
	if !s.bind(c, &report) {
		return
	}
	pkg, notice, err := s.store.MarkFailed(currentUser(c).Email, id, report.Reason)
	if err != nil {
		s.responder.RespondError(c, err)
		return
	}
	s.notify(c.Request.Context(), notice)
	c.JSON(http.StatusOK, pkg)
}

func (s *Server) finishedRoutes(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.FinishedRoutes())
}

func (s *Server) routeSummary(c *gin.Context) {
	id, ok := s.pathID(c, "ruta_id")
	if !ok {
		return
	}
	summary, err := s.store.RouteSummary(id)
	if err != nil {
		s.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) registerPayment(c *gin.Context) {
	id, ok := s.pathID(c, "paquete_id")
	if !ok {
		return
	}
	var in closingdomain.Payment
	if !s.bind(c, &in) {
		return
	}
	receipt, err := s.store.RegisterPayment(id, in)
	if err != nil {
		s.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, receipt)
}

