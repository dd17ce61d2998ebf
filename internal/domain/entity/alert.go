package entity

// AlertState clasificación derivada del stock frente a su umbral mínimo.
type AlertState string

const (
	AlertNormal  AlertState = "NORMAL"
	AlertBajo    AlertState = "BAJO"
	AlertCritico AlertState = "CRITICO"
)

// Valid indica si el estado es conocido.
func (s AlertState) Valid() bool {
	switch s {
	case AlertNormal, AlertBajo, AlertCritico:
		return true
	}
	return false
}

// Rank ordena por severidad: CRITICO (0) < BAJO (1) < NORMAL (2).
func (s AlertState) Rank() int {
	switch s {
	case AlertCritico:
		return 0
	case AlertBajo:
		return 1
	default:
		return 2
	}
}
