package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Venta is a committed sale. Invariants: Total = Subtotal − Descuento,
// MontoRecibido ≥ Total at creation, Cambio = MontoRecibido − Total exactly.
// A venta is never deleted; reversal flips Anulada and creates compensating
// inventory movements.
type Venta struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NumeroFactura string     `gorm:"uniqueIndex;not null"`
	ClienteID     *uuid.UUID `gorm:"type:uuid;index"`
	FechaVenta    time.Time  `gorm:"autoCreateTime;index"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Descuento     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MontoRecibido decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Cambio        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MetodoPago    string          `gorm:"type:varchar(20);not null;default:'efectivo'"`
	Notas         *string
	UsuarioID     uuid.UUID `gorm:"type:uuid;not null"`

	Anulada          bool `gorm:"not null;default:false"`
	MotivoAnulacion  *string
	UsuarioAnulacion *uuid.UUID `gorm:"type:uuid"`
	FechaAnulacion   *time.Time

	Detalles []DetalleVenta `gorm:"foreignKey:VentaID"`
	Cliente  *Cliente       `gorm:"foreignKey:ClienteID"`
	Usuario  *Usuario       `gorm:"foreignKey:UsuarioID"`
}

func (Venta) TableName() string { return "ventas" }

// DetalleVenta is one line of a sale. Subtotal = Cantidad × PrecioUnitario.
type DetalleVenta struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	ProductoID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	LoteID         *uuid.UUID `gorm:"type:uuid"`
	Cantidad       int        `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (DetalleVenta) TableName() string { return "detalle_ventas" }
