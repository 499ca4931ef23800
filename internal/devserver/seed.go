package devserver

import (
	"fmt"

	authdomain "github.com/Apurer/pharmacy-dispatch/internal/domains/auth/domain"
	logisticsdomain "github.com/Apurer/pharmacy-dispatch/internal/domains/logistics/domain"
)

// Seed accounts. Every seeded user shares SeedPassword.
const (
	SeedPassword  = "password123"
	AdminEmail    = "admin@farmacia.com"
	OperatorEmail = "operador@farmacia.com"
	CourierEmail  = "mensajero@farmacia.com"
)

func role(id int64, name, description string) *authdomain.RoleInfo {
	return &authdomain.RoleInfo{ID: id, Name: name, Description: &description}
}

// Seed loads the reference data the backend starts with: roles, users, one
// operation center, the delivery zones and a small medication catalog.
func Seed(store *Store) error {
	operator := role(1, string(authdomain.RoleOperator), "Operador de Ingreso de Pedidos")
	admin := role(2, string(authdomain.RoleAdmin), "Administrador del Sistema")
	accounts := []struct {
		email string
		role  *authdomain.RoleInfo
	}{
		{OperatorEmail, operator},
		{AdminEmail, admin},
		{CourierEmail, nil},
	}
	for _, acc := range accounts {
		if _, err := store.AddAccount(acc.email, SeedPassword, acc.role); err != nil {
			return fmt.Errorf("seed %s: %w", acc.email, err)
		}
	}
	store.AddAgent("Juan Pérez (Operador/Mensajero)", "INDIVIDUAL_INTERNO", OperatorEmail)
	store.AddAgent("Camila Rojas", "INDIVIDUAL_INTERNO", CourierEmail)
	store.AddOperationCenter("Bodega Principal Fontibón", "Calle 13 # 45-67", 1)
	for _, zone := range logisticsdomain.KnownZones {
		store.AddZone(zone)
	}
	store.AddMedication("Acetaminofén 500mg", false)
	store.AddMedication("Losartán 50mg", false)
	store.AddMedication("Insulina Glargina 100UI", true)
	return nil
}
