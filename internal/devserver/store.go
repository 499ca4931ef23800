package devserver

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	authdomain "github.com/Apurer/pharmacy-dispatch/internal/domains/auth/domain"
	closingdomain "github.com/Apurer/pharmacy-dispatch/internal/domains/closing/domain"
	logisticsdomain "github.com/Apurer/pharmacy-dispatch/internal/domains/logistics/domain"
	ordersdomain "github.com/Apurer/pharmacy-dispatch/internal/domains/orders/domain"
	apperrors "github.com/Apurer/pharmacy-dispatch/internal/shared/errors"
	"github.com/Apurer/pharmacy-dispatch/internal/shared/wire"
)

type account struct {
	user    authdomain.User
	hash    []byte
	agentID int64
}

type agent struct {
	logisticsdomain.DeliveryAgent
	userID int64
}

type parcel struct {
	id      int64
	status  logisticsdomain.PackageStatus
	stop    *int
	orderID int64
	routeID int64
	reason  *string
}

type route struct {
	id         int64
	agentID    int64
	zone       string
	kind       string
	status     logisticsdomain.RouteStatus
	assignedAt time.Time
}

type payment struct {
	packageID int64
	payment   closingdomain.Payment
	at        time.Time
}

// Store is the in-memory state of the development backend. Every exported
// method is one backend operation and returns problem details on refusal.
type Store struct {
	mu           sync.Mutex
	now          func() time.Time
	nextID       int64
	accounts     map[string]*account
	agents       map[int64]*agent
	medications  map[int64]logisticsdomain.Medication
	batches      []logisticsdomain.Batch
	centers      []logisticsdomain.OperationCenter
	zones        []logisticsdomain.Zone
	customers    map[string]ordersdomain.Customer
	orders       map[int64]*ordersdomain.Order
	orderSeq     []int64
	prescription map[int64]string
	parcels      map[int64]*parcel
	routes       map[int64]*route
	payments     []payment
}

type StoreOption func(*Store)

// WithStoreClock overrides the time source for created timestamps.
func WithStoreClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		now:          time.Now,
		accounts:     make(map[string]*account),
		agents:       make(map[int64]*agent),
		medications:  make(map[int64]logisticsdomain.Medication),
		customers:    make(map[string]ordersdomain.Customer),
		orders:       make(map[int64]*ordersdomain.Order),
		prescription: make(map[int64]string),
		parcels:      make(map[int64]*parcel),
		routes:       make(map[int64]*route),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func notFound(detail string) error {
	return apperrors.ProblemNotFound.WithDetail(detail)
}

func badRequest(detail string) error {
	return apperrors.ProblemBadRequest.WithDetail(detail)
}

func forbidden(detail string) error {
	return apperrors.ProblemForbidden.WithDetail(detail)
}

// AddAccount registers a user with a bcrypt hash of password.
func (s *Store) AddAccount(email, password string, role *authdomain.RoleInfo) (authdomain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return authdomain.User{}, fmt.Errorf("hash password: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	acc := &account{user: authdomain.User{ID: s.id(), Email: email, IsActive: true, Role: role}, hash: hash}
	s.accounts[email] = acc
	return acc.user, nil
}

// AddAgent links a delivery agent to the user with email, if any.
func (s *Store) AddAgent(name, kind, email string) logisticsdomain.DeliveryAgent {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := &agent{DeliveryAgent: logisticsdomain.DeliveryAgent{ID: s.id(), Name: name, Type: kind}}
	if acc, ok := s.accounts[email]; ok {
		a.userID = acc.user.ID
		acc.agentID = a.ID
	}
	s.agents[a.ID] = a
	return a.DeliveryAgent
}

func (s *Store) AddMedication(name string, refrigerated bool) logisticsdomain.Medication {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := logisticsdomain.Medication{ID: s.id(), GenericName: name, RequiresRefrigeration: refrigerated}
	s.medications[m.ID] = m
	return m
}

func (s *Store) AddOperationCenter(name, address string, cityID int64) logisticsdomain.OperationCenter {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := logisticsdomain.OperationCenter{ID: s.id(), Name: name, Address: address, CityID: cityID}
	s.centers = append(s.centers, c)
	return c
}

func (s *Store) AddZone(name string) logisticsdomain.Zone {
	s.mu.Lock()
	defer s.mu.Unlock()
	z := logisticsdomain.Zone{ID: s.id(), Name: name}
	s.zones = append(s.zones, z)
	return z
}

// Authenticate checks credentials; unknown users and wrong passwords are
// indistinguishable.
func (s *Store) Authenticate(email, password string) (authdomain.User, error) {
	s.mu.Lock()
	acc, ok := s.accounts[email]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(acc.hash, []byte(password)) != nil {
		return authdomain.User{}, apperrors.ProblemUnauthorized.WithDetail("Email o contraseña incorrectos")
	}
	return acc.user, nil
}

// User resolves the subject of a token.
func (s *Store) User(email string) (authdomain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[email]
	if !ok {
		return authdomain.User{}, false
	}
	return acc.user, true
}

func (s *Store) agentOf(email string) (*agent, bool) {
	acc, ok := s.accounts[email]
	if !ok || acc.agentID == 0 {
		return nil, false
	}
	a, ok := s.agents[acc.agentID]
	return a, ok
}

// CreateOrder registers an intake. Customers are matched by document number.
func (s *Store) CreateOrder(customer ordersdomain.NewCustomer, details ordersdomain.NewOrderDetails, items []ordersdomain.NewItem, prescription string) (ordersdomain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.centers) == 0 {
		return ordersdomain.Order{}, notFound("No hay Centros de Operación configurados en el sistema.")
	}
	known, ok := s.customers[customer.DocumentNumber]
	if !ok {
		known = ordersdomain.Customer{
			ID:             s.id(),
			FullName:       customer.FullName,
			DocumentNumber: customer.DocumentNumber,
			Phone:          customer.Phone,
			Address:        customer.Address,
		}
		if nb := strings.TrimSpace(customer.Neighborhood); nb != "" {
			known.Neighborhood = &nb
		}
		s.customers[customer.DocumentNumber] = known
	}
	zone := AssignZone(details.DeliveryAddress)
	order := &ordersdomain.Order{
		ID:              s.id(),
		Status:          ordersdomain.StatusPendingValidation,
		DeliveryAddress: details.DeliveryAddress,
		CreatedAt:       wire.NewTime(s.now()),
		Zone:            &zone,
		Customer:        known,
		Items:           make([]ordersdomain.Item, 0, len(items)),
	}
	for _, item := range items {
		order.Items = append(order.Items, ordersdomain.Item{ID: s.id(), MedicationName: item.MedicationName, Quantity: item.Quantity})
	}
	s.orders[order.ID] = order
	s.orderSeq = append(s.orderSeq, order.ID)
	s.prescription[order.ID] = prescription
	return *order, nil
}

func (s *Store) ordersIn(status ordersdomain.Status) []*ordersdomain.Order {
	out := make([]*ordersdomain.Order, 0)
	for _, id := range s.orderSeq {
		if o := s.orders[id]; o.Status == status {
			out = append(out, o)
		}
	}
	return out
}

func copyOrders(in []*ordersdomain.Order) []ordersdomain.Order {
	out := make([]ordersdomain.Order, 0, len(in))
	for _, o := range in {
		out = append(out, *o)
	}
	return out
}

func (s *Store) PendingValidation() []ordersdomain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyOrders(s.ordersIn(ordersdomain.StatusPendingValidation))
}

func (s *Store) ApproveOrder(id int64) (ordersdomain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok {
		return ordersdomain.Order{}, notFound("Pedido no encontrado")
	}
	order.Status = ordersdomain.StatusApproved
	return *order, nil
}

func (s *Store) ApprovedSummary() logisticsdomain.ApprovedSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	approved := s.ordersIn(ordersdomain.StatusApproved)
	return logisticsdomain.ApprovedSummary{Total: len(approved), Orders: copyOrders(approved)}
}

func (s *Store) medicationNamed(name string) (logisticsdomain.Medication, bool) {
	for _, m := range s.medications {
		if m.GenericName == name {
			return m, true
		}
	}
	return logisticsdomain.Medication{}, false
}

// requiredMedications totals item quantities by requested name, keeping
// first-seen order.
func requiredMedications(orders []*ordersdomain.Order) ([]string, map[string]int) {
	var names []string
	totals := make(map[string]int)
	for _, o := range orders {
		for _, item := range o.Items {
			if _, seen := totals[item.MedicationName]; !seen {
				names = append(names, item.MedicationName)
			}
			totals[item.MedicationName] += item.Quantity
		}
	}
	return names, totals
}

// CreateWave moves every approved order to picking.
func (s *Store) CreateWave() (logisticsdomain.Wave, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	approved := s.ordersIn(ordersdomain.StatusApproved)
	if len(approved) == 0 {
		return logisticsdomain.Wave{}, notFound("No hay pedidos aprobados para procesar.")
	}
	wave := logisticsdomain.Wave{ID: s.now().Unix(), OrderCount: len(approved), OrderIDs: make([]int64, 0, len(approved))}
	for _, o := range approved {
		wave.OrderIDs = append(wave.OrderIDs, o.ID)
		o.Status = ordersdomain.StatusPicking
	}
	names, totals := requiredMedications(approved)
	for _, name := range names {
		req := logisticsdomain.RequiredMedication{GenericName: name, TotalQuantity: totals[name]}
		if m, ok := s.medicationNamed(name); ok {
			req.MedicationID = m.ID
		}
		wave.RequiredMedications = append(wave.RequiredMedications, req)
	}
	return wave, nil
}

func (s *Store) PickingGuide() logisticsdomain.PickingGuide {
	s.mu.Lock()
	defer s.mu.Unlock()
	names, totals := requiredMedications(s.ordersIn(ordersdomain.StatusPicking))
	if len(names) == 0 {
		return logisticsdomain.PickingGuide{Tasks: []logisticsdomain.PickingTask{}, Message: "No hay tareas de alistamiento pendientes."}
	}
	guide := logisticsdomain.PickingGuide{Tasks: []logisticsdomain.PickingTask{}, Message: "Lista de tareas para la ola actual."}
	for _, name := range names {
		m, ok := s.medicationNamed(name)
		if !ok {
			continue
		}
		task := logisticsdomain.PickingTask{Medication: m, TotalQuantity: totals[name], AvailableBatches: []logisticsdomain.Batch{}}
		for _, b := range s.batches {
			if b.Medication.ID == m.ID {
				task.AvailableBatches = append(task.AvailableBatches, b)
			}
		}
		guide.Tasks = append(guide.Tasks, task)
	}
	guide.Pending = len(guide.Tasks)
	return guide
}

// NextPackingTask hands the oldest order in picking to the packer.
func (s *Store) NextPackingTask() logisticsdomain.PackingTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	queue := s.ordersIn(ordersdomain.StatusPicking)
	if len(queue) == 0 {
		return logisticsdomain.PackingTask{}
	}
	next := queue[0]
	next.Status = ordersdomain.StatusPacking
	order := *next
	return logisticsdomain.PackingTask{Next: &order, Queued: len(queue) - 1}
}

// FinalizePacking closes a packed order and puts its package in the warehouse.
func (s *Store) FinalizePacking(orderID int64) (ordersdomain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return ordersdomain.Order{}, notFound("Pedido no encontrado")
	}
	if order.Status != ordersdomain.StatusPacking {
		return ordersdomain.Order{}, badRequest(fmt.Sprintf("El pedido no está en estado 'en_empaque', está en '%s'", order.Status))
	}
	p := &parcel{id: s.id(), status: logisticsdomain.PackageInWarehouse, orderID: order.ID}
	s.parcels[p.id] = p
	order.Status = ordersdomain.StatusReadyForDispatch
	return *order, nil
}

func (s *Store) ReceiveBatch(in logisticsdomain.NewBatch) (logisticsdomain.Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.medications[in.MedicationID]
	if !ok {
		return logisticsdomain.Batch{}, notFound("Medicamento no encontrado")
	}
	b := logisticsdomain.Batch{
		ID:              s.id(),
		SupplierLot:     in.SupplierLot,
		CurrentQuantity: in.ReceivedQuantity,
		ReceivedAt:      wire.NewTime(s.now()),
		Medication:      m,
	}
	s.batches = append(s.batches, b)
	return b, nil
}

func (s *Store) Batches() []logisticsdomain.Batch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]logisticsdomain.Batch{}, s.batches...)
}

func (s *Store) Medications() []logisticsdomain.Medication {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]logisticsdomain.Medication, 0, len(s.medications))
	for _, m := range s.medications {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) DeliveryAgents() []logisticsdomain.DeliveryAgent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]logisticsdomain.DeliveryAgent, 0, len(s.agents))
	for _, a := range s.agents {
		out = append(out, a.DeliveryAgent)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) OperationCenters() []logisticsdomain.OperationCenter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]logisticsdomain.OperationCenter{}, s.centers...)
}

func (s *Store) Zones() []logisticsdomain.Zone {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]logisticsdomain.Zone{}, s.zones...)
}

func (s *Store) packageView(p *parcel) logisticsdomain.Package {
	view := logisticsdomain.Package{ID: p.id, Status: p.status, Order: *s.orders[p.orderID]}
	if p.stop != nil {
		stop := *p.stop
		view.StopNumber = &stop
	}
	return view
}

func (s *Store) routeView(r *route) logisticsdomain.RouteSheet {
	sheet := logisticsdomain.RouteSheet{
		ID:         r.id,
		Status:     r.status,
		Type:       r.kind,
		AssignedAt: wire.NewTime(r.assignedAt),
		Agent:      s.agents[r.agentID].DeliveryAgent,
		Packages:   []logisticsdomain.Package{},
	}
	for _, p := range s.sortedParcels() {
		if p.routeID == r.id {
			sheet.Packages = append(sheet.Packages, s.packageView(p))
		}
	}
	sheet.Packages = sheet.Stops()
	return sheet
}

func (s *Store) sortedParcels() []*parcel {
	out := make([]*parcel, 0, len(s.parcels))
	for _, p := range s.parcels {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

func (s *Store) readyIn(zone string) []*parcel {
	var out []*parcel
	for _, p := range s.sortedParcels() {
		if p.status != logisticsdomain.PackageInWarehouse {
			continue
		}
		if o := s.orders[p.orderID]; o.Zone != nil && *o.Zone == zone {
			out = append(out, p)
		}
	}
	return out
}

func (s *Store) ReadyPackages(zone string) []logisticsdomain.Package {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []logisticsdomain.Package{}
	for _, p := range s.readyIn(zone) {
		out = append(out, s.packageView(p))
	}
	return out
}

// CreateRouteSheet assigns every ready package of the zone to the agent,
// numbering stops in package order.
func (s *Store) CreateRouteSheet(in logisticsdomain.NewRouteSheet) (logisticsdomain.RouteSheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.agents[in.AgentID]; !ok {
		return logisticsdomain.RouteSheet{}, notFound("Agente de entrega no encontrado.")
	}
	ready := s.readyIn(in.Zone)
	if len(ready) == 0 {
		return logisticsdomain.RouteSheet{}, notFound(fmt.Sprintf("No hay paquetes listos para despachar en la zona '%s'.", in.Zone))
	}
	r := &route{id: s.id(), agentID: in.AgentID, zone: in.Zone, kind: in.Type, status: logisticsdomain.RoutePlanned, assignedAt: s.now()}
	s.routes[r.id] = r
	for i, p := range ready {
		stop := i + 1
		p.routeID = r.id
		p.status = logisticsdomain.PackageOnRoute
		p.stop = &stop
	}
	return s.routeView(r), nil
}

func (s *Store) sortedRoutes() []*route {
	out := make([]*route, 0, len(s.routes))
	for _, r := range s.routes {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

func (s *Store) routesWhere(keep func(*route) bool) []logisticsdomain.RouteSheet {
	out := []logisticsdomain.RouteSheet{}
	for _, r := range s.sortedRoutes() {
		if keep(r) {
			out = append(out, s.routeView(r))
		}
	}
	return out
}

func (s *Store) ActiveRoutes() []logisticsdomain.RouteSheet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.routesWhere(func(r *route) bool { return r.status.Active() })
}

func (s *Store) FinishedRoutes() []logisticsdomain.RouteSheet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.routesWhere(func(r *route) bool { return r.status == logisticsdomain.RouteFinished })
}

func (s *Store) RouteSheet(id int64) (logisticsdomain.RouteSheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.routes[id]
	if !ok {
		return logisticsdomain.RouteSheet{}, notFound("Hoja de ruta no encontrada.")
	}
	return s.routeView(r), nil
}

func (s *Store) Package(id int64) (logisticsdomain.Package, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.parcels[id]
	if !ok {
		return logisticsdomain.Package{}, notFound("Paquete no encontrado.")
	}
	return s.packageView(p), nil
}

// MyActiveRoute returns the courier's unfinished route, starting it on the
// first read.
func (s *Store) MyActiveRoute(email string) (logisticsdomain.RouteSheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.agentOf(email)
	if !ok {
		return logisticsdomain.RouteSheet{}, notFound("Este usuario no es un agente de entrega.")
	}
	for _, r := range s.sortedRoutes() {
		if r.agentID != a.ID || r.status == logisticsdomain.RouteFinished {
			continue
		}
		if r.status == logisticsdomain.RoutePlanned {
			r.status = logisticsdomain.RouteInProgress
		}
		return s.routeView(r), nil
	}
	return logisticsdomain.RouteSheet{}, notFound("No tienes una ruta activa asignada.")
}

// courierParcel loads a package the courier is allowed to settle.
func (s *Store) courierParcel(email string, id int64) (*parcel, error) {
	p, ok := s.parcels[id]
	if !ok {
		return nil, notFound("Paquete no encontrado.")
	}
	r, ok := s.routes[p.routeID]
	if !ok {
		return nil, badRequest("El paquete no está asignado a ninguna hoja de ruta.")
	}
	if a, ok := s.agentOf(email); !ok || r.agentID != a.ID {
		return nil, forbidden("No tienes permiso sobre este paquete.")
	}
	return p, nil
}

func (s *Store) MarkDelivered(email string, id int64) (logisticsdomain.Package, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.courierParcel(email, id)
	if err != nil {
		return logisticsdomain.Package{}, err
	}
	p.status = logisticsdomain.PackageDelivered
	return s.packageView(p), nil
}

// MarkFailed records a failed delivery and returns the customer notice.
func (s *Store) MarkFailed(email string, id int64, reason string) (logisticsdomain.Package, Notice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.courierParcel(email, id)
	if err != nil {
		return logisticsdomain.Package{}, Notice{}, err
	}
	p.status = logisticsdomain.PackageFailed
	p.reason = &reason
	order := s.orders[p.orderID]
	notice := Notice{
		To:   whatsappNumber(order.Customer.Phone),
		Body: fmt.Sprintf("Hola %s, intentamos entregar tu pedido #%d pero no fue posible. Motivo: %s.", order.Customer.FullName, order.ID, reason),
	}
	return s.packageView(p), notice, nil
}

// Notice is a customer message produced by a backend transition.
type Notice struct {
	To   string
	Body string
}

func whatsappNumber(phone string) string {
	if strings.HasPrefix(phone, "+") {
		return phone
	}
	return "+57" + phone
}

func (s *Store) FinishMyRoute(email string) (logisticsdomain.RouteSheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.agentOf(email)
	if !ok {
		return logisticsdomain.RouteSheet{}, notFound("Este usuario no es un agente de entrega.")
	}
	for _, r := range s.sortedRoutes() {
		if r.agentID == a.ID && r.status == logisticsdomain.RouteInProgress {
			r.status = logisticsdomain.RouteFinished
			return s.routeView(r), nil
		}
	}
	return logisticsdomain.RouteSheet{}, notFound("No tienes una ruta en curso para finalizar.")
}

func (s *Store) RegisterPayment(packageID int64, in closingdomain.Payment) (closingdomain.PaymentReceipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.parcels[packageID]
	if !ok {
		return closingdomain.PaymentReceipt{}, notFound("Paquete no encontrado.")
	}
	if p.status != logisticsdomain.PackageDelivered {
		return closingdomain.PaymentReceipt{}, badRequest("Solo se puede registrar pago para paquetes entregados.")
	}
	s.payments = append(s.payments, payment{packageID: packageID, payment: in, at: s.now()})
	amount := strconv.FormatFloat(in.Amount, 'f', -1, 64)
	return closingdomain.PaymentReceipt{
		Status:  "ok",
		Message: fmt.Sprintf("Pago de %s registrado para el paquete %d.", amount, packageID),
	}, nil
}

// Payments lists the copays recorded for a package.
func (s *Store) Payments(packageID int64) []closingdomain.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []closingdomain.Payment
	for _, p := range s.payments {
		if p.packageID == packageID {
			out = append(out, p.payment)
		}
	}
	return out
}

// Prescription returns the stored file name of an order's prescription.
func (s *Store) Prescription(orderID int64) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name, ok := s.prescription[orderID]
	return name, ok
}

func (s *Store) RouteSummary(id int64) (closingdomain.RouteSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.routes[id]
	if !ok {
		return closingdomain.RouteSummary{}, notFound("Hoja de ruta no encontrada.")
	}
	summary := closingdomain.RouteSummary{
		RouteID:     r.id,
		Agent:       s.agents[r.agentID].Name,
		RouteStatus: r.status,
		Undelivered: []closingdomain.UndeliveredPackage{},
	}
	for _, p := range s.sortedParcels() {
		if p.routeID != r.id {
			continue
		}
		summary.Packages.Total++
		switch p.status {
		case logisticsdomain.PackageDelivered:
			summary.Packages.Delivered++
		case logisticsdomain.PackageFailed:
			summary.Packages.NotDelivered++
			summary.Undelivered = append(summary.Undelivered, closingdomain.UndeliveredPackage{PackageID: p.id, Reason: p.reason})
		}
	}
	summary.Financials.ExpectedCollection = float64(summary.Packages.Delivered) * closingdomain.CopayPerDelivery
	return summary, nil
}
