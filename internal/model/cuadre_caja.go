package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Drawer states. At most one row may be 'abierta' at any time, system-wide;
// enforced by a partial unique index plus a check inside the opening
// transaction (never by in-process state).
const (
	CajaAbierta = "abierta"
	CajaCerrada = "cerrada"
)

// CuadreCaja is one cash-drawer session. TotalVentas and TotalGastos are
// running counters updated by every sale/expense committed while the drawer
// is open. Close computes esperado = MontoInicial + TotalVentas − TotalGastos
// and Diferencia = MontoFinal − esperado, then finalizes the row exactly once.
type CuadreCaja struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FechaApertura time.Time       `gorm:"autoCreateTime;index"`
	MontoInicial  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalVentas   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalGastos   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	FechaCierre   *time.Time
	MontoFinal    *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Diferencia    *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Estado        string           `gorm:"type:varchar(20);not null;default:'abierta';index"`
	UsuarioID     uuid.UUID        `gorm:"type:uuid;not null"`
	UsuarioCierre *uuid.UUID       `gorm:"type:uuid"`
	NotasApertura *string
	NotasCierre   *string

	Usuario *Usuario `gorm:"foreignKey:UsuarioID"`
}

func (CuadreCaja) TableName() string { return "cuadre_caja" }

// MontoEsperado returns the cash the drawer should hold right now.
func (c *CuadreCaja) MontoEsperado() decimal.Decimal {
	return c.MontoInicial.Add(c.TotalVentas).Sub(c.TotalGastos).Round(2)
}
