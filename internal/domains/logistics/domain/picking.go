package domain

import (
	ordersdomain "github.com/Apurer/pharmacy-dispatch/internal/domains/orders/domain"
)

// ApprovedSummary is the picking desk's view of approved orders.
type ApprovedSummary struct {
	Total  int                  `json:"total_pedidos_aprobados"`
	Orders []ordersdomain.Order `json:"pedidos"`
}

type RequiredMedication struct {
	MedicationID  int64  `json:"medicamento_id"`
	GenericName   string `json:"nombre_generico"`
	TotalQuantity int    `json:"cantidad_total_requerida"`
}

// Wave mirrors OlaPickingRead. MedicationID is 0 for names missing from the catalog.
type Wave struct {
	ID                  int64                `json:"id_ola"`
	OrderCount          int                  `json:"numero_pedidos"`
	RequiredMedications []RequiredMedication `json:"medicamentos_requeridos"`
	OrderIDs            []int64              `json:"pedidos_ids"`
}

// TotalUnits sums the quantities to pick over the whole wave.
func (w Wave) TotalUnits() int {
	total := 0
	for _, m := range w.RequiredMedications {
		total += m.TotalQuantity
	}
	return total
}

type PickingTask struct {
	Medication       Medication `json:"medicamento_a_recoger"`
	TotalQuantity    int        `json:"cantidad_total"`
	AvailableBatches []Batch    `json:"lotes_disponibles"`
}

// AvailableUnits is the stock on hand across the listed batches.
func (t PickingTask) AvailableUnits() int {
	total := 0
	for _, b := range t.AvailableBatches {
		total += b.CurrentQuantity
	}
	return total
}

// Shortfall is how many units cannot be picked from the listed batches.
func (t PickingTask) Shortfall() int {
	if missing := t.TotalQuantity - t.AvailableUnits(); missing > 0 {
		return missing
	}
	return 0
}

// PickingGuide mirrors GuiaAlistamiento.
type PickingGuide struct {
	Tasks   []PickingTask `json:"tareas"`
	Pending int           `json:"tareas_pendientes"`
	Message string        `json:"mensaje"`
}
