package entity

// Product datos de producto que expone el directorio externo (etiqueta y SKU para búsquedas).
type Product struct {
	ID   string `db:"id" json:"id"`
	SKU  string `db:"sku" json:"sku"`
	Name string `db:"name" json:"name"`
}
