package model

import (
	"time"

	"github.com/google/uuid"
)

// Lote tracks a batch of a product with an optional expiry date. Its Cantidad
// is a subset of the product's total stock: whenever a sale or inventory
// operation names a lot, both counters move by the same delta inside one
// transaction.
type Lote struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID       uuid.UUID `gorm:"type:uuid;not null;index"`
	NumeroLote       string    `gorm:"not null"`
	Cantidad         int       `gorm:"not null;default:0"`
	FechaVencimiento *time.Time
	FechaIngreso     time.Time `gorm:"autoCreateTime"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (Lote) TableName() string { return "lotes" }
