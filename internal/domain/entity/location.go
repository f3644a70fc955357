package entity

import "time"

// LocationKind tipo de ubicación física.
type LocationKind string

const (
	LocationWarehouse  LocationKind = "WAREHOUSE"
	LocationProduction LocationKind = "PRODUCTION"
	LocationStore      LocationKind = "STORE"
	LocationRack       LocationKind = "RACK"
)

// Location representa una bodega, zona de producción, tienda o estantería donde se guarda stock.
type Location struct {
	ID        string
	Name      string
	Kind      LocationKind
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
