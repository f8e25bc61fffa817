package model

import (
	"time"

	"github.com/google/uuid"
)

// ConsumidorFinal is the walk-in customer every sale defaults to when no
// client is specified. Seeded once; looked up by name.
const ConsumidorFinal = "Consumidor Final"

// Cliente is a registered customer.
type Cliente struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre    string    `gorm:"index;not null"`
	NIT       *string   `gorm:"column:nit"`
	Telefono  *string
	Direccion *string
	Activo    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Cliente) TableName() string { return "clientes" }
