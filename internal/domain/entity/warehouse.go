package entity

// Warehouse datos de bodega que expone el directorio externo; el motor solo usa ID y Name
// para etiquetar listados.
type Warehouse struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}
