package dto

import "github.com/shopspring/decimal"

type RegistrarGastoRequest struct {
	Descripcion string          `json:"descripcion" validate:"required,min=3,max=255"`
	Categoria   string          `json:"categoria"   validate:"required,oneof=servicios compras salarios mantenimiento transporte otros"`
	Monto       decimal.Decimal `json:"monto"       validate:"required"`
}

type GastoFilter struct {
	FechaInicio string `form:"fecha_inicio" validate:"omitempty,datetime=2006-01-02"`
	FechaFin    string `form:"fecha_fin"    validate:"omitempty,datetime=2006-01-02"`
	Categoria   string `form:"categoria"`
	Page        int    `form:"page,default=1"   validate:"min=1"`
	Limit       int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type GastoResponse struct {
	ID          string          `json:"id"`
	Descripcion string          `json:"descripcion"`
	Categoria   string          `json:"categoria"`
	Monto       decimal.Decimal `json:"monto"`
	FechaGasto  string          `json:"fecha_gasto"`
	Usuario     string          `json:"usuario,omitempty"`
}

type GastoListResponse struct {
	Data  []GastoResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
