package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type DetalleVentaRequest struct {
	ProductoID     string          `json:"producto_id"     validate:"required,uuid"`
	LoteID         *string         `json:"lote_id"         validate:"omitempty,uuid"`
	Cantidad       int             `json:"cantidad"        validate:"required,min=1"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario" validate:"min=0"`
	Subtotal       decimal.Decimal `json:"subtotal"        validate:"min=0"`
}

// CrearVentaRequest is the body of POST /v1/ventas. Emptiness of Productos and
// the payment/total invariants are checked by the service so each violation
// maps to its own error kind.
type CrearVentaRequest struct {
	ClienteID     *string               `json:"cliente_id" validate:"omitempty,uuid"`
	Productos     []DetalleVentaRequest `json:"productos"  validate:"dive"`
	Subtotal      decimal.Decimal       `json:"subtotal"       validate:"min=0"`
	Descuento     decimal.Decimal       `json:"descuento"      validate:"min=0"`
	Total         decimal.Decimal       `json:"total"`
	MontoRecibido decimal.Decimal       `json:"monto_recibido"`
	MetodoPago    string                `json:"metodo_pago" validate:"omitempty,oneof=efectivo tarjeta transferencia"`
	Notas         *string               `json:"notas"`
}

type AnularVentaRequest struct {
	Motivo string `json:"motivo" validate:"required,min=5"`
}

// VentaFilter is bound from the query string of GET /v1/ventas.
type VentaFilter struct {
	FechaInicio   string `form:"fecha_inicio"   validate:"omitempty,datetime=2006-01-02"`
	FechaFin      string `form:"fecha_fin"      validate:"omitempty,datetime=2006-01-02"`
	NumeroFactura string `form:"numero_factura"`
	// Estado: activas (default) | anuladas | all
	Estado string `form:"estado,default=activas" validate:"omitempty,oneof=activas anuladas all"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// VentaCreadaResponse is the payload returned by a successful sale.
type VentaCreadaResponse struct {
	VentaID       string          `json:"venta_id"`
	NumeroFactura string          `json:"numero_factura"`
	Total         decimal.Decimal `json:"total"`
	Cambio        decimal.Decimal `json:"cambio"`
	Fecha         string          `json:"fecha"`
}

type DetalleVentaResponse struct {
	ProductoID     string          `json:"producto_id"`
	Producto       string          `json:"producto"`
	Codigo         string          `json:"codigo"`
	LoteID         *string         `json:"lote_id,omitempty"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type VentaResponse struct {
	ID              string                 `json:"id"`
	NumeroFactura   string                 `json:"numero_factura"`
	Cliente         string                 `json:"cliente,omitempty"`
	Usuario         string                 `json:"usuario,omitempty"`
	FechaVenta      string                 `json:"fecha_venta"`
	Subtotal        decimal.Decimal        `json:"subtotal"`
	Descuento       decimal.Decimal        `json:"descuento"`
	Total           decimal.Decimal        `json:"total"`
	MontoRecibido   decimal.Decimal        `json:"monto_recibido"`
	Cambio          decimal.Decimal        `json:"cambio"`
	MetodoPago      string                 `json:"metodo_pago"`
	Anulada         bool                   `json:"anulada"`
	MotivoAnulacion *string                `json:"motivo_anulacion,omitempty"`
	Detalles        []DetalleVentaResponse `json:"detalles"`
}

type VentaListResponse struct {
	Data  []VentaResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// TotalesDia summarizes today's sales for the dashboard.
type TotalesDia struct {
	Cantidad int             `json:"cantidad"`
	Total    decimal.Decimal `json:"total"`
	Promedio decimal.Decimal `json:"promedio"`
}

type VentasHoyResponse struct {
	Ventas  []VentaResponse `json:"ventas"`
	Totales TotalesDia      `json:"totales"`
}
