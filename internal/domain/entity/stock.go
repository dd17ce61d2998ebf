package entity

import "time"

// StockKey identifica una fila de stock: un producto en una bodega.
type StockKey struct {
	ProductID   string
	WarehouseID string
}

// String devuelve la clave en forma "producto@bodega" (útil para logs, locks y métricas).
func (k StockKey) String() string {
	return k.ProductID + "@" + k.WarehouseID
}

// StockSnapshot representa el stock actual de un producto en una bodega (tabla materializada).
// Es una caché reconstruible del kardex: Quantity == suma de los deltas del kardex para la clave.
type StockSnapshot struct {
	ProductID        string    `db:"product_id" json:"productId"`
	WarehouseID      string    `db:"warehouse_id" json:"warehouseId"`
	Quantity         int64     `db:"quantity" json:"quantity"`
	MinimumThreshold *int64    `db:"minimum_threshold" json:"minimumThreshold"` // nil = sin umbral
	UpdatedAt        time.Time `db:"updated_at" json:"updatedAt"`
}

// Key devuelve la clave (producto, bodega) del snapshot.
func (s StockSnapshot) Key() StockKey {
	return StockKey{ProductID: s.ProductID, WarehouseID: s.WarehouseID}
}

// Clone copia el snapshot sin compartir el puntero del umbral.
func (s StockSnapshot) Clone() StockSnapshot {
	s.MinimumThreshold = cloneInt64(s.MinimumThreshold)
	return s
}

func cloneInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// StockRow es un snapshot con etiquetas de producto/bodega para listados.
// AlertState se calcula al leer; nunca se persiste.
type StockRow struct {
	StockSnapshot
	ProductLabel   string     `db:"product_label"`
	WarehouseLabel string     `db:"warehouse_label"`
	AlertState     AlertState `db:"-"`
}
