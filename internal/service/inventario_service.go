package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oajacap/kissu/internal/apierror"
	"github.com/oajacap/kissu/internal/dto"
	"github.com/oajacap/kissu/internal/model"
	"github.com/oajacap/kissu/internal/repository"
	"github.com/oajacap/kissu/internal/worker"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InventarioService owns every stock mutation. All writes go through the
// guarded repository updates and leave a movement row behind; stock is never
// set directly by handlers.
type InventarioService interface {
	Entrada(ctx context.Context, usuarioID uuid.UUID, req dto.EntradaStockRequest) (*dto.MovimientoResponse, error)
	Salida(ctx context.Context, usuarioID uuid.UUID, req dto.SalidaStockRequest) (*dto.MovimientoResponse, error)
	Ajuste(ctx context.Context, usuarioID uuid.UUID, req dto.AjusteStockRequest) (*dto.MovimientoResponse, error)
	ListInventario(ctx context.Context, filter dto.InventarioFilter) (*dto.InventarioListResponse, error)
	ListMovimientos(ctx context.Context, filter dto.MovimientoFilter) (*dto.MovimientoListResponse, error)

	// Called inside a sale/void transaction — callers pass the live tx.
	// DescontarStockTx moves product stock and, when loteID is set, the lot's
	// quantity by the same delta; either guard failing aborts with
	// insufficient stock.
	DescontarStockTx(tx *gorm.DB, productoID uuid.UUID, loteID *uuid.UUID, cantidad int) error
	RestaurarStockTx(tx *gorm.DB, productoID uuid.UUID, loteID *uuid.UUID, cantidad int) error
	RegistrarMovimientoTx(tx *gorm.DB, m *model.MovimientoInventario) error
}

type inventarioService struct {
	productoRepo   repository.ProductoRepository
	loteRepo       repository.LoteRepository
	movimientoRepo repository.MovimientoRepository
	dispatcher     *worker.Dispatcher
}

func NewInventarioService(
	productoRepo repository.ProductoRepository,
	loteRepo repository.LoteRepository,
	movimientoRepo repository.MovimientoRepository,
	dispatcher *worker.Dispatcher,
) InventarioService {
	return &inventarioService{
		productoRepo:   productoRepo,
		loteRepo:       loteRepo,
		movimientoRepo: movimientoRepo,
		dispatcher:     dispatcher,
	}
}

// ── Entrada ───────────────────────────────────────────────────────────────────

func (s *inventarioService) Entrada(ctx context.Context, usuarioID uuid.UUID, req dto.EntradaStockRequest) (*dto.MovimientoResponse, error) {
	productoID, loteID, err := s.resolver(ctx, req.ProductoID, req.LoteID)
	if err != nil {
		return nil, err
	}

	mov := &model.MovimientoInventario{
		ProductoID: productoID,
		LoteID:     loteID,
		Tipo:       model.MovimientoEntrada,
		Cantidad:   req.Cantidad,
		Motivo:     req.Motivo,
		UsuarioID:  usuarioID,
	}

	txErr := runTx(ctx, s.productoRepo.DB(), func(tx *gorm.DB) error {
		if err := s.RestaurarStockTx(tx, productoID, loteID, req.Cantidad); err != nil {
			return err
		}
		return s.RegistrarMovimientoTx(tx, mov)
	})
	if txErr != nil {
		return nil, txErr
	}

	return movimientoToResponse(mov), nil
}

// ── Salida ────────────────────────────────────────────────────────────────────

func (s *inventarioService) Salida(ctx context.Context, usuarioID uuid.UUID, req dto.SalidaStockRequest) (*dto.MovimientoResponse, error) {
	productoID, loteID, err := s.resolver(ctx, req.ProductoID, req.LoteID)
	if err != nil {
		return nil, err
	}

	mov := &model.MovimientoInventario{
		ProductoID: productoID,
		LoteID:     loteID,
		Tipo:       model.MovimientoSalida,
		Cantidad:   req.Cantidad,
		Motivo:     req.Motivo,
		UsuarioID:  usuarioID,
	}

	txErr := runTx(ctx, s.productoRepo.DB(), func(tx *gorm.DB) error {
		if err := s.DescontarStockTx(tx, productoID, loteID, req.Cantidad); err != nil {
			return err
		}
		return s.RegistrarMovimientoTx(tx, mov)
	})
	if txErr != nil {
		return nil, txErr
	}

	s.encolarAlerta(ctx, productoID)
	return movimientoToResponse(mov), nil
}

// ── Ajuste ────────────────────────────────────────────────────────────────────
// Sets the absolute stock; the movement records the magnitude of the change.

func (s *inventarioService) Ajuste(ctx context.Context, usuarioID uuid.UUID, req dto.AjusteStockRequest) (*dto.MovimientoResponse, error) {
	productoID, err := uuid.Parse(req.ProductoID)
	if err != nil {
		return nil, apierror.New(apierror.KindValidation, "producto_id inválido")
	}
	producto, err := s.productoRepo.FindByID(ctx, productoID)
	if err != nil {
		return nil, notFoundOr(err, "Producto no encontrado")
	}

	delta := req.StockNuevo - producto.StockActual
	if delta == 0 {
		return nil, apierror.New(apierror.KindValidation, "El stock nuevo es igual al actual")
	}
	cantidad := delta
	if cantidad < 0 {
		cantidad = -cantidad
	}

	mov := &model.MovimientoInventario{
		ProductoID: productoID,
		Tipo:       model.MovimientoAjuste,
		Cantidad:   cantidad,
		Motivo:     fmt.Sprintf("%s (stock %d → %d)", req.Motivo, producto.StockActual, req.StockNuevo),
		UsuarioID:  usuarioID,
	}

	txErr := runTx(ctx, s.productoRepo.DB(), func(tx *gorm.DB) error {
		if err := s.productoRepo.FijarStockTx(tx, productoID, req.StockNuevo); err != nil {
			return err
		}
		return s.RegistrarMovimientoTx(tx, mov)
	})
	if txErr != nil {
		return nil, txErr
	}

	if delta < 0 {
		s.encolarAlerta(ctx, productoID)
	}
	return movimientoToResponse(mov), nil
}

// ── Listados ──────────────────────────────────────────────────────────────────

func (s *inventarioService) ListInventario(ctx context.Context, filter dto.InventarioFilter) (*dto.InventarioListResponse, error) {
	productos, total, err := s.productoRepo.ListInventario(ctx, filter)
	if err != nil {
		return nil, apierror.Wrap(apierror.KindInternal, "Error interno del servidor", err)
	}

	items := make([]dto.InventarioItemResponse, 0, len(productos))
	for _, p := range productos {
		categoria := ""
		if p.Categoria != nil {
			categoria = p.Categoria.Nombre
		}
		items = append(items, dto.InventarioItemResponse{
			ProductoID:  p.ID.String(),
			Codigo:      p.Codigo,
			Nombre:      p.Nombre,
			Categoria:   categoria,
			StockActual: p.StockActual,
			StockMinimo: p.StockMinimo,
			EstadoStock: estadoStock(p.StockActual, p.StockMinimo),
			ValorStock:  p.PrecioCompra.Mul(decimalFromInt(p.StockActual)).Round(2),
		})
	}
	return &dto.InventarioListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *inventarioService) ListMovimientos(ctx context.Context, filter dto.MovimientoFilter) (*dto.MovimientoListResponse, error) {
	movs, total, err := s.movimientoRepo.List(ctx, filter)
	if err != nil {
		return nil, apierror.Wrap(apierror.KindInternal, "Error interno del servidor", err)
	}

	items := make([]dto.MovimientoResponse, 0, len(movs))
	for i := range movs {
		items = append(items, *movimientoToResponse(&movs[i]))
	}
	return &dto.MovimientoListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// ── Tx helpers ────────────────────────────────────────────────────────────────

func (s *inventarioService) DescontarStockTx(tx *gorm.DB, productoID uuid.UUID, loteID *uuid.UUID, cantidad int) error {
	if err := s.productoRepo.DescontarStockTx(tx, productoID, cantidad); err != nil {
		if errors.Is(err, repository.ErrStockInsuficiente) {
			return apierror.New(apierror.KindInsufficientStock, "Stock insuficiente")
		}
		return err
	}
	if loteID != nil {
		if err := s.loteRepo.DescontarCantidadTx(tx, *loteID, cantidad); err != nil {
			if errors.Is(err, repository.ErrStockInsuficiente) {
				return apierror.New(apierror.KindInsufficientStock, "Cantidad insuficiente en el lote")
			}
			return err
		}
	}
	return nil
}

func (s *inventarioService) RestaurarStockTx(tx *gorm.DB, productoID uuid.UUID, loteID *uuid.UUID, cantidad int) error {
	if err := s.productoRepo.ReponerStockTx(tx, productoID, cantidad); err != nil {
		return err
	}
	if loteID != nil {
		return s.loteRepo.ReponerCantidadTx(tx, *loteID, cantidad)
	}
	return nil
}

func (s *inventarioService) RegistrarMovimientoTx(tx *gorm.DB, m *model.MovimientoInventario) error {
	return s.movimientoRepo.CreateTx(tx, m)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// resolver validates the product and optional lot, checking the lot belongs
// to the product.
func (s *inventarioService) resolver(ctx context.Context, productoIDStr string, loteIDStr *string) (uuid.UUID, *uuid.UUID, error) {
	productoID, err := uuid.Parse(productoIDStr)
	if err != nil {
		return uuid.Nil, nil, apierror.New(apierror.KindValidation, "producto_id inválido")
	}
	producto, err := s.productoRepo.FindByID(ctx, productoID)
	if err != nil {
		return uuid.Nil, nil, notFoundOr(err, "Producto no encontrado")
	}
	if !producto.Activo {
		return uuid.Nil, nil, apierror.Newf(apierror.KindNotFound, "Producto %s está inactivo", producto.Nombre)
	}

	var loteID *uuid.UUID
	if loteIDStr != nil && *loteIDStr != "" {
		lid, err := uuid.Parse(*loteIDStr)
		if err != nil {
			return uuid.Nil, nil, apierror.New(apierror.KindValidation, "lote_id inválido")
		}
		lote, err := s.loteRepo.FindByID(ctx, lid)
		if err != nil {
			return uuid.Nil, nil, notFoundOr(err, "Lote no encontrado")
		}
		if lote.ProductoID != productoID {
			return uuid.Nil, nil, apierror.New(apierror.KindValidation, "El lote no pertenece al producto indicado")
		}
		loteID = &lid
	}
	return productoID, loteID, nil
}

// encolarAlerta fires a low-stock check; best-effort, never blocks the caller.
func (s *inventarioService) encolarAlerta(ctx context.Context, productoIDs ...uuid.UUID) {
	if s.dispatcher == nil {
		return
	}
	ids := make([]string, 0, len(productoIDs))
	for _, id := range productoIDs {
		ids = append(ids, id.String())
	}
	_ = s.dispatcher.EnqueueAlertaStock(ctx, worker.AlertaJobPayload{ProductoIDs: ids})
}

func estadoStock(actual, minimo int) string {
	switch {
	case actual == 0:
		return "agotado"
	case actual <= minimo:
		return "bajo"
	default:
		return "normal"
	}
}

func movimientoToResponse(m *model.MovimientoInventario) *dto.MovimientoResponse {
	resp := &dto.MovimientoResponse{
		ID:              m.ID.String(),
		ProductoID:      m.ProductoID.String(),
		Tipo:            m.Tipo,
		Cantidad:        m.Cantidad,
		Motivo:          m.Motivo,
		FechaMovimiento: m.FechaMovimiento.UTC().Format(time.RFC3339),
	}
	if m.LoteID != nil {
		lid := m.LoteID.String()
		resp.LoteID = &lid
	}
	if m.Producto != nil {
		resp.Producto = m.Producto.Nombre
	}
	if m.Usuario != nil {
		resp.Usuario = m.Usuario.Nombre
	}
	return resp
}
