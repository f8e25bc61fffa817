package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/oajacap/kissu/internal/apierror"
	"github.com/oajacap/kissu/internal/dto"
	"github.com/oajacap/kissu/internal/model"
	"github.com/oajacap/kissu/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	precioCachePrefix = "precio:"
	precioCacheTTL    = 60 * time.Second
)

type ProductoService interface {
	Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error)
	Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
	Reactivar(ctx context.Context, id uuid.UUID) error
	// ConsultarPrecio backs the public price-check endpoint; responses are
	// cached in redis for a minute.
	ConsultarPrecio(ctx context.Context, codigo string) (*dto.ConsultaPreciosResponse, error)
}

type productoService struct {
	repo repository.ProductoRepository
	rdb  *redis.Client
}

func NewProductoService(repo repository.ProductoRepository, rdb *redis.Client) ProductoService {
	return &productoService{repo: repo, rdb: rdb}
}

func (s *productoService) Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	precioVenta := req.PrecioVenta.Round(2)
	if !precioVenta.IsPositive() {
		return nil, apierror.New(apierror.KindValidation, "El precio de venta debe ser mayor a cero")
	}

	p := &model.Producto{
		Codigo:       req.Codigo,
		Nombre:       req.Nombre,
		Descripcion:  req.Descripcion,
		PrecioCompra: req.PrecioCompra.Round(2),
		PrecioVenta:  precioVenta,
		StockActual:  req.StockActual,
		StockMinimo:  req.StockMinimo,
		Activo:       true,
	}
	if req.CategoriaID != nil && *req.CategoriaID != "" {
		cid, err := uuid.Parse(*req.CategoriaID)
		if err != nil {
			return nil, apierror.New(apierror.KindValidation, "categoria_id inválido")
		}
		p.CategoriaID = &cid
	}
	if req.ProveedorID != nil && *req.ProveedorID != "" {
		pid, err := uuid.Parse(*req.ProveedorID)
		if err != nil {
			return nil, apierror.New(apierror.KindValidation, "proveedor_id inválido")
		}
		p.ProveedorID = &pid
	}

	if err := s.repo.Create(ctx, p); err != nil {
		if esDuplicado(err) {
			return nil, apierror.Newf(apierror.KindConflict, "Ya existe un producto con código %s", req.Codigo)
		}
		return nil, err
	}
	return productoToResponse(p), nil
}

func (s *productoService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Producto no encontrado")
	}

	if req.Nombre != nil {
		p.Nombre = *req.Nombre
	}
	if req.Descripcion != nil {
		p.Descripcion = req.Descripcion
	}
	if req.CategoriaID != nil {
		cid, err := uuid.Parse(*req.CategoriaID)
		if err != nil {
			return nil, apierror.New(apierror.KindValidation, "categoria_id inválido")
		}
		p.CategoriaID = &cid
	}
	if req.PrecioCompra != nil {
		p.PrecioCompra = req.PrecioCompra.Round(2)
	}
	if req.PrecioVenta != nil {
		if !req.PrecioVenta.IsPositive() {
			return nil, apierror.New(apierror.KindValidation, "El precio de venta debe ser mayor a cero")
		}
		p.PrecioVenta = req.PrecioVenta.Round(2)
	}
	if req.StockMinimo != nil {
		p.StockMinimo = *req.StockMinimo
	}
	if req.ProveedorID != nil {
		pid, err := uuid.Parse(*req.ProveedorID)
		if err != nil {
			return nil, apierror.New(apierror.KindValidation, "proveedor_id inválido")
		}
		p.ProveedorID = &pid
	}
	if req.Activo != nil {
		p.Activo = *req.Activo
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.invalidarCachePrecio(ctx, p.Codigo)
	return productoToResponse(p), nil
}

func (s *productoService) Obtener(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Producto no encontrado")
	}
	return productoToResponse(p), nil
}

func (s *productoService) Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error) {
	productos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apierror.Wrap(apierror.KindInternal, "Error interno del servidor", err)
	}
	items := make([]dto.ProductoResponse, 0, len(productos))
	for i := range productos {
		items = append(items, *productoToResponse(&productos[i]))
	}
	return &dto.ProductoListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *productoService) Desactivar(ctx context.Context, id uuid.UUID) error {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "Producto no encontrado")
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.invalidarCachePrecio(ctx, p.Codigo)
	return nil
}

func (s *productoService) Reactivar(ctx context.Context, id uuid.UUID) error {
	return s.repo.Reactivar(ctx, id)
}

func (s *productoService) ConsultarPrecio(ctx context.Context, codigo string) (*dto.ConsultaPreciosResponse, error) {
	cacheKey := precioCachePrefix + codigo

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var resp dto.ConsultaPreciosResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return &resp, nil
			}
		}
	}

	p, err := s.repo.FindByCodigo(ctx, codigo)
	if err != nil {
		return nil, notFoundOr(err, "Producto no encontrado")
	}

	resp := &dto.ConsultaPreciosResponse{
		Codigo:          p.Codigo,
		Nombre:          p.Nombre,
		PrecioVenta:     p.PrecioVenta,
		StockDisponible: p.StockActual,
	}
	if p.Categoria != nil {
		resp.Categoria = p.Categoria.Nombre
	}

	if s.rdb != nil {
		if data, err := json.Marshal(resp); err == nil {
			if err := s.rdb.Set(ctx, cacheKey, data, precioCacheTTL).Err(); err != nil {
				log.Debug().Err(err).Str("codigo", codigo).Msg("precio cache set failed")
			}
		}
	}
	return resp, nil
}

func (s *productoService) invalidarCachePrecio(ctx context.Context, codigo string) {
	if s.rdb == nil {
		return
	}
	_ = s.rdb.Del(ctx, precioCachePrefix+codigo).Err()
}

func productoToResponse(p *model.Producto) *dto.ProductoResponse {
	resp := &dto.ProductoResponse{
		ID:           p.ID.String(),
		Codigo:       p.Codigo,
		Nombre:       p.Nombre,
		Descripcion:  p.Descripcion,
		PrecioCompra: p.PrecioCompra,
		PrecioVenta:  p.PrecioVenta,
		StockActual:  p.StockActual,
		StockMinimo:  p.StockMinimo,
		Activo:       p.Activo,
	}
	if p.CategoriaID != nil {
		cid := p.CategoriaID.String()
		resp.CategoriaID = &cid
	}
	if p.Categoria != nil {
		resp.Categoria = p.Categoria.Nombre
	}
	if p.ProveedorID != nil {
		pid := p.ProveedorID.String()
		resp.ProveedorID = &pid
	}
	return resp
}
