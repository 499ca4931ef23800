package domain

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Apurer/pharmacy-dispatch/internal/shared/wire"
)

// Status is the lifecycle state of an order as reported by the backend.
type Status string

const (
	StatusPendingValidation Status = "en_validacion"
	StatusApproved          Status = "aprobado"
	StatusPicking           Status = "en_alistamiento"
	StatusPacking           Status = "en_empaque"
	StatusReadyForDispatch  Status = "listo_para_despacho"
)

// Label renders a status the way operators read it: "EN VALIDACION".
func (s Status) Label() string {
	return strings.ToUpper(strings.ReplaceAll(string(s), "_", " "))
}

type Customer struct {
	ID             int64   `json:"id"`
	FullName       string  `json:"nombre_completo"`
	DocumentNumber string  `json:"numero_documento"`
	Phone          string  `json:"celular"`
	Address        string  `json:"direccion"`
	Neighborhood   *string `json:"barrio"`
}

type Item struct {
	ID             int64  `json:"id"`
	MedicationName string `json:"nombre_medicamento_solicitado"`
	Quantity       int    `json:"cantidad_solicitada"`
}

// Order mirrors PedidoRead.
type Order struct {
	ID              int64     `json:"id"`
	Status          Status    `json:"estado"`
	DeliveryAddress string    `json:"direccion_entrega"`
	CreatedAt       wire.Time `json:"fecha_creacion"`
	Zone            *string   `json:"zona"`
	Items           []Item    `json:"items"`
	Customer        Customer  `json:"cliente"`
}

// ZoneLabel returns the assigned zone or "N/A".
func (o Order) ZoneLabel() string {
	if o.Zone == nil || strings.TrimSpace(*o.Zone) == "" {
		return "N/A"
	}
	return *o.Zone
}

// TotalUnits sums the requested quantity over every item.
func (o Order) TotalUnits() int {
	total := 0
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}

// NewCustomer is the patient block of an order intake.
type NewCustomer struct {
	FullName       string `json:"nombre_completo" validate:"required"`
	DocumentNumber string `json:"numero_documento" validate:"required"`
	Phone          string `json:"celular" validate:"required"`
	Address        string `json:"direccion" validate:"required"`
	Neighborhood   string `json:"barrio,omitempty"`
}

// NewOrderDetails is the prescription block of an order intake.
type NewOrderDetails struct {
	DeliveryAddress  string    `json:"direccion_entrega" validate:"required"`
	DoctorName       string    `json:"nombre_medico" validate:"required"`
	PrescriptionDate wire.Time `json:"fecha_receta" validate:"required"`
}

type NewItem struct {
	MedicationName string `json:"nombre_medicamento_solicitado" validate:"required"`
	Quantity       int    `json:"cantidad_solicitada" validate:"gte=1"`
}

// NewOrder is everything an intake form submits besides the prescription photo.
type NewOrder struct {
	Customer NewCustomer     `json:"cliente_data"`
	Details  NewOrderDetails `json:"pedido_data"`
	Items    []NewItem       `json:"items_data" validate:"required,min=1,dive"`
}

// Prescription is the photo attached to an order intake.
type Prescription struct {
	Filename    string
	ContentType string
	Content     io.Reader
}

var ErrPrescriptionRequired = errors.New("prescription photo is required")

// Validate checks the attachment before it is streamed.
func (p Prescription) Validate() error {
	if p.Content == nil || strings.TrimSpace(p.Filename) == "" {
		return ErrPrescriptionRequired
	}
	return nil
}

// Notification is the user-visible outcome of a successful mutation.
type Notification struct {
	Message string
}

func (n Notification) String() string { return n.Message }

// ApprovedNotification is shown after an order leaves the validation queue.
func ApprovedNotification(order Order) Notification {
	return Notification{Message: fmt.Sprintf("Order #%d approved", order.ID)}
}

// CreatedNotification is shown after an intake is accepted.
func CreatedNotification(order Order) Notification {
	return Notification{Message: fmt.Sprintf("Order #%d created in zone %s", order.ID, order.ZoneLabel())}
}
