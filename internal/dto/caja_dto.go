package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AbrirCajaRequest struct {
	MontoInicial decimal.Decimal `json:"monto_inicial" validate:"min=0"`
	Notas        *string         `json:"notas"`
}

type CerrarCajaRequest struct {
	MontoFinal decimal.Decimal `json:"monto_final" validate:"min=0"`
	Notas      *string         `json:"notas"`
}

// CuadreFilter is bound from query string of GET /v1/caja/historial.
type CuadreFilter struct {
	FechaInicio string `form:"fecha_inicio" validate:"omitempty,datetime=2006-01-02"`
	FechaFin    string `form:"fecha_fin"    validate:"omitempty,datetime=2006-01-02"`
	Estado      string `form:"estado"       validate:"omitempty,oneof=abierta cerrada"`
	Page        int    `form:"page,default=1"   validate:"min=1"`
	Limit       int    `form:"limit,default=30" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type AperturaResponse struct {
	CajaID        string          `json:"caja_id"`
	FechaApertura string          `json:"fecha_apertura"`
	MontoInicial  decimal.Decimal `json:"monto_inicial"`
	Usuario       string          `json:"usuario"`
}

// CuadreResponse describes one drawer session; closed-only fields are pointers.
type CuadreResponse struct {
	ID            string           `json:"id"`
	FechaApertura string           `json:"fecha_apertura"`
	FechaCierre   *string          `json:"fecha_cierre,omitempty"`
	MontoInicial  decimal.Decimal  `json:"monto_inicial"`
	TotalVentas   decimal.Decimal  `json:"total_ventas"`
	TotalGastos   decimal.Decimal  `json:"total_gastos"`
	MontoEsperado decimal.Decimal  `json:"monto_esperado"`
	MontoFinal    *decimal.Decimal `json:"monto_final,omitempty"`
	Diferencia    *decimal.Decimal `json:"diferencia,omitempty"`
	Estado        string           `json:"estado"`
	Usuario       string           `json:"usuario"`
	UsuarioCierre *string          `json:"usuario_cierre,omitempty"`
	NotasApertura *string          `json:"notas_apertura,omitempty"`
	NotasCierre   *string          `json:"notas_cierre,omitempty"`
}

// EstadoCajaResponse is returned by GET /v1/caja/estado. Caja is nil when
// no drawer is open.
type EstadoCajaResponse struct {
	Abierta bool            `json:"abierta"`
	Caja    *CuadreResponse `json:"caja,omitempty"`
}

type CuadreListResponse struct {
	Data  []CuadreResponse `json:"data"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}
