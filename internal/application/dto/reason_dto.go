package dto

// CreateReasonRequest body para POST /api/inventory/reasons.
type CreateReasonRequest struct {
	MovementType     string `json:"movementType" validate:"required,oneof=ENTRADA SALIDA AJUSTE"`
	Code             string `json:"code" validate:"required,max=50"`
	Label            string `json:"label" validate:"required,max=120"`
	RequiresDocument bool   `json:"requiresDocument"`
	Active           *bool  `json:"active,omitempty"` // por defecto true
}
