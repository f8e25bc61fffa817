package model

import (
	"time"

	"github.com/google/uuid"
)

// Movement kinds. Cantidad always stores the positive magnitude; Tipo carries
// the direction (ajuste stores the absolute difference).
const (
	MovimientoEntrada = "entrada"
	MovimientoSalida  = "salida"
	MovimientoAjuste  = "ajuste"
)

// MovimientoInventario is the append-only stock audit ledger. Rows are never
// updated or deleted — corrections and reversals create new entries.
type MovimientoInventario struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	LoteID          *uuid.UUID `gorm:"type:uuid;index"`
	Tipo            string     `gorm:"type:varchar(20);not null"`
	Cantidad        int        `gorm:"not null"`
	Motivo          string     `gorm:"not null"`
	UsuarioID       uuid.UUID  `gorm:"type:uuid;not null"`
	FechaMovimiento time.Time  `gorm:"autoCreateTime"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
	Lote     *Lote     `gorm:"foreignKey:LoteID"`
	Usuario  *Usuario  `gorm:"foreignKey:UsuarioID"`
}

func (MovimientoInventario) TableName() string { return "movimientos_inventario" }
