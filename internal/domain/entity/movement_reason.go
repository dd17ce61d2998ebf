package entity

import "time"

// MovementReason motivo de negocio que justifica un movimiento, acotado a un tipo.
// Un motivo inactivo no admite movimientos nuevos pero sigue siendo válido en el histórico.
type MovementReason struct {
	ID               string       `db:"id" json:"id"`
	MovementType     MovementType `db:"movement_type" json:"movementType"`
	Code             string       `db:"code" json:"code"`
	Label            string       `db:"label" json:"label"`
	Active           bool         `db:"active" json:"active"`
	RequiresDocument bool         `db:"requires_document" json:"requiresDocument"` // aceptado, aún no exigido
	CreatedAt        time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time    `db:"updated_at" json:"updatedAt"`
}
