package dto

// DTOs for the catalog entities: categorias, clientes y proveedores.

type CategoriaRequest struct {
	Nombre      string  `json:"nombre" validate:"required,min=2,max=100"`
	Descripcion *string `json:"descripcion"`
}

type CategoriaResponse struct {
	ID          string  `json:"id"`
	Nombre      string  `json:"nombre"`
	Descripcion *string `json:"descripcion"`
	Productos   int64   `json:"productos"`
}

type ClienteRequest struct {
	Nombre    string  `json:"nombre" validate:"required,min=2,max=150"`
	NIT       *string `json:"nit"    validate:"omitempty,min=4,max=20"`
	Telefono  *string `json:"telefono"`
	Direccion *string `json:"direccion"`
}

type ClienteResponse struct {
	ID        string  `json:"id"`
	Nombre    string  `json:"nombre"`
	NIT       *string `json:"nit"`
	Telefono  *string `json:"telefono"`
	Direccion *string `json:"direccion"`
	Activo    bool    `json:"activo"`
}

type ClienteFilter struct {
	Nombre string `form:"nombre"`
	NIT    string `form:"nit"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type ClienteListResponse struct {
	Data  []ClienteResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

type ProveedorRequest struct {
	Nombre    string  `json:"nombre" validate:"required,min=2,max=150"`
	NIT       *string `json:"nit"    validate:"omitempty,min=4,max=20"`
	Telefono  *string `json:"telefono"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Direccion *string `json:"direccion"`
}

type ProveedorResponse struct {
	ID        string  `json:"id"`
	Nombre    string  `json:"nombre"`
	NIT       *string `json:"nit"`
	Telefono  *string `json:"telefono"`
	Email     *string `json:"email"`
	Direccion *string `json:"direccion"`
	Activo    bool    `json:"activo"`
}
