package service

import (
	"context"

	"github.com/oajacap/kissu/internal/apierror"
	"github.com/oajacap/kissu/internal/dto"
	"github.com/oajacap/kissu/internal/model"
	"github.com/oajacap/kissu/internal/repository"

	"github.com/google/uuid"
)

type CategoriaService interface {
	Crear(ctx context.Context, req dto.CategoriaRequest) (*dto.CategoriaResponse, error)
	Listar(ctx context.Context) ([]dto.CategoriaResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.CategoriaResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.CategoriaRequest) (*dto.CategoriaResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
}

type categoriaService struct {
	repo repository.CategoriaRepository
}

func NewCategoriaService(repo repository.CategoriaRepository) CategoriaService {
	return &categoriaService{repo: repo}
}

func (s *categoriaService) Crear(ctx context.Context, req dto.CategoriaRequest) (*dto.CategoriaResponse, error) {
	if existente, err := s.repo.ObtenerPorNombre(ctx, req.Nombre); err == nil && existente != nil {
		return nil, apierror.Newf(apierror.KindConflict, "Ya existe una categoría llamada %s", existente.Nombre)
	}

	c := &model.Categoria{Nombre: req.Nombre, Descripcion: req.Descripcion, Activo: true}
	if err := s.repo.Crear(ctx, c); err != nil {
		if esDuplicado(err) {
			return nil, apierror.Newf(apierror.KindConflict, "Ya existe una categoría llamada %s", req.Nombre)
		}
		return nil, err
	}
	return s.toResponse(ctx, c), nil
}

func (s *categoriaService) Listar(ctx context.Context) ([]dto.CategoriaResponse, error) {
	categorias, err := s.repo.Listar(ctx)
	if err != nil {
		return nil, apierror.Wrap(apierror.KindInternal, "Error interno del servidor", err)
	}
	out := make([]dto.CategoriaResponse, 0, len(categorias))
	for i := range categorias {
		out = append(out, *s.toResponse(ctx, &categorias[i]))
	}
	return out, nil
}

func (s *categoriaService) Obtener(ctx context.Context, id uuid.UUID) (*dto.CategoriaResponse, error) {
	c, err := s.repo.ObtenerPorID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Categoría no encontrada")
	}
	return s.toResponse(ctx, c), nil
}

func (s *categoriaService) Actualizar(ctx context.Context, id uuid.UUID, req dto.CategoriaRequest) (*dto.CategoriaResponse, error) {
	c, err := s.repo.ObtenerPorID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Categoría no encontrada")
	}
	c.Nombre = req.Nombre
	c.Descripcion = req.Descripcion
	if err := s.repo.Actualizar(ctx, c); err != nil {
		if esDuplicado(err) {
			return nil, apierror.Newf(apierror.KindConflict, "Ya existe una categoría llamada %s", req.Nombre)
		}
		return nil, err
	}
	return s.toResponse(ctx, c), nil
}

// Desactivar rejects categories that still have active products.
func (s *categoriaService) Desactivar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.ObtenerPorID(ctx, id); err != nil {
		return notFoundOr(err, "Categoría no encontrada")
	}
	n, err := s.repo.ContarProductos(ctx, id)
	if err != nil {
		return apierror.Wrap(apierror.KindInternal, "Error interno del servidor", err)
	}
	if n > 0 {
		return apierror.Newf(apierror.KindConflict, "La categoría tiene %d productos activos", n)
	}
	return s.repo.Desactivar(ctx, id)
}

func (s *categoriaService) toResponse(ctx context.Context, c *model.Categoria) *dto.CategoriaResponse {
	n, _ := s.repo.ContarProductos(ctx, c.ID)
	return &dto.CategoriaResponse{
		ID:          c.ID.String(),
		Nombre:      c.Nombre,
		Descripcion: c.Descripcion,
		Productos:   n,
	}
}
