package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type EntradaStockRequest struct {
	ProductoID string  `json:"producto_id" validate:"required,uuid"`
	LoteID     *string `json:"lote_id"     validate:"omitempty,uuid"`
	Cantidad   int     `json:"cantidad"    validate:"required,min=1"`
	Motivo     string  `json:"motivo"      validate:"required,min=3,max=255"`
}

type SalidaStockRequest struct {
	ProductoID string  `json:"producto_id" validate:"required,uuid"`
	LoteID     *string `json:"lote_id"     validate:"omitempty,uuid"`
	Cantidad   int     `json:"cantidad"    validate:"required,min=1"`
	Motivo     string  `json:"motivo"      validate:"required,min=3,max=255"`
}

// AjusteStockRequest sets the absolute stock; the movement records the delta.
type AjusteStockRequest struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	StockNuevo int    `json:"stock_nuevo" validate:"min=0"`
	Motivo     string `json:"motivo"      validate:"required,min=3,max=255"`
}

// MovimientoFilter is bound from query string of GET /v1/inventario/movimientos.
type MovimientoFilter struct {
	ProductoID  string `form:"producto_id" validate:"omitempty,uuid"`
	Tipo        string `form:"tipo"        validate:"omitempty,oneof=entrada salida ajuste"`
	FechaInicio string `form:"fecha_inicio" validate:"omitempty,datetime=2006-01-02"`
	FechaFin    string `form:"fecha_fin"    validate:"omitempty,datetime=2006-01-02"`
	Page        int    `form:"page,default=1"   validate:"min=1"`
	Limit       int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// InventarioFilter is bound from query string of GET /v1/inventario.
type InventarioFilter struct {
	CategoriaID string `form:"categoria_id" validate:"omitempty,uuid"`
	BajoStock   bool   `form:"bajo_stock"`
	Page        int    `form:"page,default=1"   validate:"min=1"`
	Limit       int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type MovimientoResponse struct {
	ID              string  `json:"id"`
	ProductoID      string  `json:"producto_id"`
	Producto        string  `json:"producto,omitempty"`
	LoteID          *string `json:"lote_id,omitempty"`
	Tipo            string  `json:"tipo"`
	Cantidad        int     `json:"cantidad"`
	Motivo          string  `json:"motivo"`
	Usuario         string  `json:"usuario,omitempty"`
	FechaMovimiento string  `json:"fecha_movimiento"`
}

type MovimientoListResponse struct {
	Data  []MovimientoResponse `json:"data"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}

// InventarioItemResponse is one row of the stock overview. EstadoStock is
// normal | bajo | agotado.
type InventarioItemResponse struct {
	ProductoID  string          `json:"producto_id"`
	Codigo      string          `json:"codigo"`
	Nombre      string          `json:"nombre"`
	Categoria   string          `json:"categoria,omitempty"`
	StockActual int             `json:"stock_actual"`
	StockMinimo int             `json:"stock_minimo"`
	EstadoStock string          `json:"estado_stock"`
	ValorStock  decimal.Decimal `json:"valor_stock"`
}

type InventarioListResponse struct {
	Data  []InventarioItemResponse `json:"data"`
	Total int64                    `json:"total"`
	Page  int                      `json:"page"`
	Limit int                      `json:"limit"`
}
