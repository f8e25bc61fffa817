package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Gasto is an operating expense. Recording one requires an open drawer; the
// insert and the drawer's TotalGastos increment share one transaction.
type Gasto struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Descripcion string          `gorm:"not null"`
	Categoria   string          `gorm:"type:varchar(50);not null"`
	Monto       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	FechaGasto  time.Time       `gorm:"autoCreateTime;index"`
	UsuarioID   uuid.UUID       `gorm:"type:uuid;not null"`

	Usuario *Usuario `gorm:"foreignKey:UsuarioID"`
}

func (Gasto) TableName() string { return "gastos" }
