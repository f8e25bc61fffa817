package service

import (
	"context"
	"fmt"
	"time"

	"github.com/oajacap/kissu/internal/apierror"
	"github.com/oajacap/kissu/internal/dto"
	"github.com/oajacap/kissu/internal/model"
	"github.com/oajacap/kissu/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LoteService interface {
	Crear(ctx context.Context, usuarioID uuid.UUID, req dto.CrearLoteRequest) (*dto.LoteResponse, error)
	Listar(ctx context.Context, filter dto.LoteFilter) (*dto.LoteListResponse, error)
	PorProducto(ctx context.Context, productoID uuid.UUID) ([]dto.LoteResponse, error)
	ProximosVencer(ctx context.Context, dias int) ([]dto.LoteResponse, error)
}

type loteService struct {
	repo         repository.LoteRepository
	productoRepo repository.ProductoRepository
	inventario   InventarioService
}

func NewLoteService(repo repository.LoteRepository, productoRepo repository.ProductoRepository, inventario InventarioService) LoteService {
	return &loteService{repo: repo, productoRepo: productoRepo, inventario: inventario}
}

// Crear registers a batch: the lot row, the product stock increase, and the
// entrada movement commit atomically.
func (s *loteService) Crear(ctx context.Context, usuarioID uuid.UUID, req dto.CrearLoteRequest) (*dto.LoteResponse, error) {
	productoID, err := uuid.Parse(req.ProductoID)
	if err != nil {
		return nil, apierror.New(apierror.KindValidation, "producto_id inválido")
	}
	producto, err := s.productoRepo.FindByID(ctx, productoID)
	if err != nil {
		return nil, notFoundOr(err, "Producto no encontrado")
	}
	if !producto.Activo {
		return nil, apierror.Newf(apierror.KindNotFound, "Producto %s está inactivo", producto.Nombre)
	}

	var vencimiento *time.Time
	if req.FechaVencimiento != nil && *req.FechaVencimiento != "" {
		t, err := time.Parse("2006-01-02", *req.FechaVencimiento)
		if err != nil {
			return nil, apierror.New(apierror.KindValidation, "fecha_vencimiento inválida, use YYYY-MM-DD")
		}
		vencimiento = &t
	}

	lote := &model.Lote{
		ProductoID:       productoID,
		NumeroLote:       req.NumeroLote,
		Cantidad:         req.Cantidad,
		FechaVencimiento: vencimiento,
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, lote); err != nil {
			return err
		}
		if err := s.productoRepo.ReponerStockTx(tx, productoID, req.Cantidad); err != nil {
			return err
		}
		mov := &model.MovimientoInventario{
			ProductoID: productoID,
			LoteID:     &lote.ID,
			Tipo:       model.MovimientoEntrada,
			Cantidad:   req.Cantidad,
			Motivo:     fmt.Sprintf("Ingreso lote %s", req.NumeroLote),
			UsuarioID:  usuarioID,
		}
		return s.inventario.RegistrarMovimientoTx(tx, mov)
	})
	if txErr != nil {
		return nil, txErr
	}

	resp := loteToResponse(lote)
	resp.Producto = producto.Nombre
	return resp, nil
}

func (s *loteService) Listar(ctx context.Context, filter dto.LoteFilter) (*dto.LoteListResponse, error) {
	lotes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apierror.Wrap(apierror.KindInternal, "Error interno del servidor", err)
	}
	items := make([]dto.LoteResponse, 0, len(lotes))
	for i := range lotes {
		items = append(items, *loteToResponse(&lotes[i]))
	}
	return &dto.LoteListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *loteService) PorProducto(ctx context.Context, productoID uuid.UUID) ([]dto.LoteResponse, error) {
	if _, err := s.productoRepo.FindByID(ctx, productoID); err != nil {
		return nil, notFoundOr(err, "Producto no encontrado")
	}
	lotes, err := s.repo.FindByProducto(ctx, productoID)
	if err != nil {
		return nil, apierror.Wrap(apierror.KindInternal, "Error interno del servidor", err)
	}
	items := make([]dto.LoteResponse, 0, len(lotes))
	for i := range lotes {
		items = append(items, *loteToResponse(&lotes[i]))
	}
	return items, nil
}

func (s *loteService) ProximosVencer(ctx context.Context, dias int) ([]dto.LoteResponse, error) {
	if dias < 1 {
		dias = 30
	}
	lotes, err := s.repo.ListProximosVencer(ctx, dias)
	if err != nil {
		return nil, apierror.Wrap(apierror.KindInternal, "Error interno del servidor", err)
	}
	items := make([]dto.LoteResponse, 0, len(lotes))
	for i := range lotes {
		items = append(items, *loteToResponse(&lotes[i]))
	}
	return items, nil
}

func loteToResponse(l *model.Lote) *dto.LoteResponse {
	resp := &dto.LoteResponse{
		ID:           l.ID.String(),
		ProductoID:   l.ProductoID.String(),
		NumeroLote:   l.NumeroLote,
		Cantidad:     l.Cantidad,
		FechaIngreso: l.FechaIngreso.UTC().Format(time.RFC3339),
	}
	if l.Producto != nil {
		resp.Producto = l.Producto.Nombre
	}
	if l.FechaVencimiento != nil {
		f := l.FechaVencimiento.Format("2006-01-02")
		resp.FechaVencimiento = &f
		dias := int(time.Until(*l.FechaVencimiento).Hours() / 24)
		resp.DiasParaVencer = &dias
	}
	return resp
}
