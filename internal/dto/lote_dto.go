package dto

type CrearLoteRequest struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	NumeroLote string `json:"numero_lote" validate:"required,min=1,max=50"`
	Cantidad   int    `json:"cantidad"    validate:"required,min=1"`
	// FechaVencimiento in YYYY-MM-DD; nil for non-perishables
	FechaVencimiento *string `json:"fecha_vencimiento" validate:"omitempty,datetime=2006-01-02"`
}

type LoteFilter struct {
	ProductoID string `form:"producto_id" validate:"omitempty,uuid"`
	// Dias bounds the proximos-a-vencer window
	Dias  int `form:"dias,default=30"  validate:"min=1,max=365"`
	Page  int `form:"page,default=1"   validate:"min=1"`
	Limit int `form:"limit,default=50" validate:"min=1,max=200"`
}

type LoteResponse struct {
	ID               string  `json:"id"`
	ProductoID       string  `json:"producto_id"`
	Producto         string  `json:"producto,omitempty"`
	NumeroLote       string  `json:"numero_lote"`
	Cantidad         int     `json:"cantidad"`
	FechaVencimiento *string `json:"fecha_vencimiento,omitempty"`
	FechaIngreso     string  `json:"fecha_ingreso"`
	DiasParaVencer   *int    `json:"dias_para_vencer,omitempty"`
}

type LoteListResponse struct {
	Data  []LoteResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}
