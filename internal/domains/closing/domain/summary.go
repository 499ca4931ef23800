package domain

import (
	"errors"
	"math"
	"strings"

	logisticsdomain "github.com/Apurer/pharmacy-dispatch/internal/domains/logistics/domain"
)

// CopayPerDelivery is the flat copay collected for each delivered package.
const CopayPerDelivery = 5.00

// Summary is the reconciliation view of a finished route computed from the
// route sheet itself.
type Summary struct {
	RouteID            int64
	Agent              string
	Total              int
	Delivered          int
	NotDelivered       int
	ExpectedCollection float64
}

// Summarize counts delivered packages of route and the copay they owe.
func Summarize(route logisticsdomain.RouteSheet) Summary {
	delivered := 0
	for _, p := range route.Packages {
		if p.Status == logisticsdomain.PackageDelivered {
			delivered++
		}
	}
	return Summary{
		RouteID:            route.ID,
		Agent:              route.Agent.Name,
		Total:              len(route.Packages),
		Delivered:          delivered,
		NotDelivered:       len(route.Packages) - delivered,
		ExpectedCollection: float64(delivered) * CopayPerDelivery,
	}
}

type PackageTotals struct {
	Total        int `json:"total"`
	Delivered    int `json:"entregados"`
	NotDelivered int `json:"no_entregados"`
}

type Financials struct {
	ExpectedCollection float64 `json:"total_recaudado_esperado"`
}

type UndeliveredPackage struct {
	PackageID int64   `json:"paquete_id"`
	Reason    *string `json:"motivo"`
}

// RouteSummary is the backend's reconciliation summary of one route.
type RouteSummary struct {
	RouteID     int64                       `json:"ruta_id"`
	Agent       string                      `json:"agente"`
	RouteStatus logisticsdomain.RouteStatus `json:"estado_ruta"`
	Packages    PackageTotals               `json:"resumen_paquetes"`
	Financials  Financials                  `json:"resumen_financiero"`
	Undelivered []UndeliveredPackage        `json:"detalle_no_entregados"`
}

var ErrInvalidAmount = errors.New("amount must be zero or positive")

// Payment is a copay collected on delivery.
type Payment struct {
	Amount float64 `json:"monto_cobrado" validate:"gte=0"`
	Method string  `json:"metodo_pago" validate:"required"`
}

// Usual payment methods.
const (
	MethodCash     = "Efectivo"
	MethodTransfer = "Transferencia"
)

// NewPayment rounds amount to cents and trims the method.
func NewPayment(amount float64, method string) (Payment, error) {
	if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Payment{}, ErrInvalidAmount
	}
	return Payment{Amount: math.Round(amount*100) / 100, Method: strings.TrimSpace(method)}, nil
}

// PaymentReceipt is the backend's acknowledgement of a payment.
type PaymentReceipt struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
