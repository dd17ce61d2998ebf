package inventory

import (
	"fmt"

	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// DefaultLowStockMultiplier multiplicador por defecto de la banda BAJO (umbral × 2).
var DefaultLowStockMultiplier = decimal.NewFromInt(2)

// AlertPolicy implementa el evaluador de alertas (servicio de dominio, sin estado).
//
//	sin umbral                         -> NORMAL
//	cantidad <= umbral                 -> CRITICO
//	umbral < cantidad <= umbral × mult -> BAJO
//	resto                              -> NORMAL
type AlertPolicy struct {
	LowStockMultiplier decimal.Decimal
}

// DefaultAlertPolicy política con multiplicador 2.
func DefaultAlertPolicy() AlertPolicy {
	return AlertPolicy{LowStockMultiplier: DefaultLowStockMultiplier}
}

// NewAlertPolicy valida el multiplicador (debe ser >= 1 para que la banda BAJO no quede invertida).
func NewAlertPolicy(multiplier decimal.Decimal) (AlertPolicy, error) {
	if multiplier.LessThan(decimal.NewFromInt(1)) {
		return AlertPolicy{}, fmt.Errorf("multiplicador de stock bajo inválido: %s", multiplier)
	}
	return AlertPolicy{LowStockMultiplier: multiplier}, nil
}

// Classify clasifica una cantidad frente a su umbral mínimo.
func (p AlertPolicy) Classify(quantity int64, minimum *int64) entity.AlertState {
	if minimum == nil {
		return entity.AlertNormal
	}
	floor := *minimum
	if quantity <= floor {
		return entity.AlertCritico
	}
	mult := p.LowStockMultiplier
	if mult.IsZero() {
		mult = DefaultLowStockMultiplier
	}
	ceiling := decimal.NewFromInt(floor).Mul(mult)
	if decimal.NewFromInt(quantity).LessThanOrEqual(ceiling) {
		return entity.AlertBajo
	}
	return entity.AlertNormal
}

// Classify atajo con la política por defecto.
func Classify(quantity int64, minimum *int64) entity.AlertState {
	return DefaultAlertPolicy().Classify(quantity, minimum)
}
