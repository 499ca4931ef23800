package domain

import (
	"strings"

	"github.com/Apurer/pharmacy-dispatch/internal/shared/wire"
)

type Medication struct {
	ID                    int64  `json:"id"`
	GenericName           string `json:"nombre_generico"`
	RequiresRefrigeration bool   `json:"requiere_refrigeracion"`
}

// Batch mirrors LoteMedicamentoRead: one supplier lot received into stock.
type Batch struct {
	ID              int64      `json:"id"`
	SupplierLot     string     `json:"numero_lote_proveedor"`
	CurrentQuantity int        `json:"cantidad_actual"`
	ReceivedAt      wire.Time  `json:"fecha_recepcion"`
	Medication      Medication `json:"medicamento"`
}

// NewBatch is a receiving submission.
type NewBatch struct {
	SupplierLot      string `json:"numero_lote_proveedor" validate:"required"`
	ReceivedQuantity int    `json:"cantidad_recibida" validate:"gte=1"`
	MedicationID     int64  `json:"medicamento_id" validate:"gte=1"`
}

// Normalize trims the free-text lot number.
func (b NewBatch) Normalize() NewBatch {
	b.SupplierLot = strings.TrimSpace(b.SupplierLot)
	return b
}

type DeliveryAgent struct {
	ID   int64  `json:"id"`
	Name string `json:"nombre_agente"`
	Type string `json:"tipo_agente"`
}

type OperationCenter struct {
	ID      int64  `json:"id"`
	Name    string `json:"nombre"`
	Address string `json:"direccion"`
	CityID  int64  `json:"ciudad_id"`
}

type Zone struct {
	ID   int64  `json:"id"`
	Name string `json:"nombre"`
}

// Delivery zones the backend assigns orders to.
const (
	ZoneNorth     = "NORTE"
	ZoneSouth     = "SUR"
	ZoneChapinero = "CHAPINERO"
	ZoneWest      = "OCCIDENTE"
	ZoneCenter    = "CENTRO"
)

// KnownZones lists the zones in the order dispatchers pick them.
var KnownZones = []string{ZoneNorth, ZoneSouth, ZoneChapinero, ZoneWest, ZoneCenter}
