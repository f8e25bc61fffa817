package service

import (
	"context"
	"fmt"
	"time"

	"github.com/oajacap/kissu/internal/apierror"
	"github.com/oajacap/kissu/internal/dto"
	"github.com/oajacap/kissu/internal/model"
	"github.com/oajacap/kissu/internal/repository"
	"github.com/oajacap/kissu/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type VentaService interface {
	Crear(ctx context.Context, usuarioID uuid.UUID, req dto.CrearVentaRequest) (*dto.VentaCreadaResponse, error)
	Anular(ctx context.Context, usuarioID uuid.UUID, id uuid.UUID, motivo string) error
	Obtener(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error)
	Listar(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error)
	VentasHoy(ctx context.Context) (*dto.VentasHoyResponse, error)
}

type ventaService struct {
	repo         repository.VentaRepository
	productoRepo repository.ProductoRepository
	clienteRepo  repository.ClienteRepository
	inventario   InventarioService
	caja         CajaService
	dispatcher   *worker.Dispatcher
}

func NewVentaService(
	repo repository.VentaRepository,
	productoRepo repository.ProductoRepository,
	clienteRepo repository.ClienteRepository,
	inventario InventarioService,
	caja CajaService,
	dispatcher *worker.Dispatcher,
) VentaService {
	return &ventaService{
		repo:         repo,
		productoRepo: productoRepo,
		clienteRepo:  clienteRepo,
		inventario:   inventario,
		caja:         caja,
		dispatcher:   dispatcher,
	}
}

// ── Crear ─────────────────────────────────────────────────────────────────────
// Full ACID sale:
//   1. Validate totals and payment (each violation maps to its own kind)
//   2. Resolve client (walk-in default) and pre-flight every line outside the tx
//   3. BEGIN TX: nextval invoice number, create venta+detalles, guarded stock
//      decrements (re-checked under concurrency), movement rows, drawer bump
//   4. COMMIT
//   5. (async) low-stock alert job

func (s *ventaService) Crear(ctx context.Context, usuarioID uuid.UUID, req dto.CrearVentaRequest) (*dto.VentaCreadaResponse, error) {
	if len(req.Productos) == 0 {
		return nil, apierror.New(apierror.KindValidation, "La venta debe incluir al menos un producto")
	}

	subtotal := req.Subtotal.Round(2)
	descuento := req.Descuento.Round(2)
	total := req.Total.Round(2)
	recibido := req.MontoRecibido.Round(2)

	if !total.Equal(subtotal.Sub(descuento)) {
		return nil, apierror.New(apierror.KindValidation, "El total no coincide con subtotal menos descuento")
	}
	if !total.IsPositive() {
		return nil, apierror.New(apierror.KindValidation, "El total debe ser mayor a cero")
	}
	if recibido.LessThan(total) {
		return nil, apierror.New(apierror.KindInsufficientPayment, "El monto recibido es insuficiente")
	}
	cambio := recibido.Sub(total).Round(2)

	metodoPago := req.MetodoPago
	if metodoPago == "" {
		metodoPago = "efectivo"
	}

	// Walk-in default when no client was named; best-effort — an unseeded
	// walk-in row just leaves the sale without a client.
	clienteID, err := s.resolverCliente(ctx, req.ClienteID)
	if err != nil {
		return nil, err
	}

	// Pre-flight outside the tx: fail fast on missing products or obvious
	// stock shortage. The guarded decrement inside the tx re-checks, so a
	// concurrent sale between here and commit still cannot oversell.
	type lineaResuelta struct {
		productoID uuid.UUID
		loteID     *uuid.UUID
		nombre     string
		cantidad   int
		precio     decimal.Decimal
		subtotal   decimal.Decimal
	}
	lineas := make([]lineaResuelta, 0, len(req.Productos))

	for _, item := range req.Productos {
		pid, err := uuid.Parse(item.ProductoID)
		if err != nil {
			return nil, apierror.New(apierror.KindValidation, "producto_id inválido")
		}
		p, err := s.productoRepo.FindByID(ctx, pid)
		if err != nil {
			return nil, notFoundOr(err, fmt.Sprintf("Producto %s no encontrado", item.ProductoID))
		}
		if !p.Activo {
			return nil, apierror.Newf(apierror.KindNotFound, "Producto %s está inactivo y no puede venderse", p.Nombre)
		}
		if p.StockActual < item.Cantidad {
			return nil, apierror.Newf(apierror.KindInsufficientStock,
				"Stock insuficiente para %s: disponible %d, solicitado %d", p.Nombre, p.StockActual, item.Cantidad)
		}

		var loteID *uuid.UUID
		if item.LoteID != nil && *item.LoteID != "" {
			lid, err := uuid.Parse(*item.LoteID)
			if err != nil {
				return nil, apierror.New(apierror.KindValidation, "lote_id inválido")
			}
			loteID = &lid
		}

		lineas = append(lineas, lineaResuelta{
			productoID: pid,
			loteID:     loteID,
			nombre:     p.Nombre,
			cantidad:   item.Cantidad,
			precio:     item.PrecioUnitario.Round(2),
			subtotal:   item.Subtotal.Round(2),
		})
	}

	var venta model.Venta
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		numero, err := s.repo.NextNumeroFactura(tx)
		if err != nil {
			return err
		}

		venta = model.Venta{
			NumeroFactura: numero,
			ClienteID:     clienteID,
			Subtotal:      subtotal,
			Descuento:     descuento,
			Total:         total,
			MontoRecibido: recibido,
			Cambio:        cambio,
			MetodoPago:    metodoPago,
			Notas:         req.Notas,
			UsuarioID:     usuarioID,
		}
		for _, l := range lineas {
			venta.Detalles = append(venta.Detalles, model.DetalleVenta{
				ProductoID:     l.productoID,
				LoteID:         l.loteID,
				Cantidad:       l.cantidad,
				PrecioUnitario: l.precio,
				Subtotal:       l.subtotal,
			})
		}

		if err := s.repo.CreateTx(tx, &venta); err != nil {
			return err
		}

		for _, l := range lineas {
			if err := s.inventario.DescontarStockTx(tx, l.productoID, l.loteID, l.cantidad); err != nil {
				return err
			}
			mov := &model.MovimientoInventario{
				ProductoID: l.productoID,
				LoteID:     l.loteID,
				Tipo:       model.MovimientoSalida,
				Cantidad:   l.cantidad,
				Motivo:     fmt.Sprintf("Venta %s", numero),
				UsuarioID:  usuarioID,
			}
			if err := s.inventario.RegistrarMovimientoTx(tx, mov); err != nil {
				return err
			}
		}

		// Drawer bump; a sale without an open drawer still commits.
		if _, err := s.caja.SumarVentaTx(tx, total); err != nil {
			return err
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	// Async low-stock check — best-effort, fire & forget
	if s.dispatcher != nil {
		ids := make([]string, 0, len(lineas))
		for _, l := range lineas {
			ids = append(ids, l.productoID.String())
		}
		_ = s.dispatcher.EnqueueAlertaStock(ctx, worker.AlertaJobPayload{ProductoIDs: ids})
	}

	return &dto.VentaCreadaResponse{
		VentaID:       venta.ID.String(),
		NumeroFactura: venta.NumeroFactura,
		Total:         venta.Total,
		Cambio:        venta.Cambio,
		Fecha:         venta.FechaVenta.UTC().Format(time.RFC3339),
	}, nil
}

// ── Anular ────────────────────────────────────────────────────────────────────
// The sale row survives; stock comes back with compensating entrada movements
// and the drawer's sales counter reverses by the sale total.

func (s *ventaService) Anular(ctx context.Context, usuarioID uuid.UUID, id uuid.UUID, motivo string) error {
	venta, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "Venta no encontrada")
	}
	if venta.Anulada {
		return apierror.New(apierror.KindConflict, "La venta ya está anulada")
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// Claim the void before touching stock: a concurrent void of the same
		// sale matches zero rows here and rolls back without restoring twice.
		applied, err := s.repo.AnularTx(tx, id, motivo, usuarioID)
		if err != nil {
			return err
		}
		if !applied {
			return apierror.New(apierror.KindConflict, "La venta ya está anulada")
		}

		for _, det := range venta.Detalles {
			if err := s.inventario.RestaurarStockTx(tx, det.ProductoID, det.LoteID, det.Cantidad); err != nil {
				return err
			}
			mov := &model.MovimientoInventario{
				ProductoID: det.ProductoID,
				LoteID:     det.LoteID,
				Tipo:       model.MovimientoEntrada,
				Cantidad:   det.Cantidad,
				Motivo:     fmt.Sprintf("Anulación venta %s: %s", venta.NumeroFactura, motivo),
				UsuarioID:  usuarioID,
			}
			if err := s.inventario.RegistrarMovimientoTx(tx, mov); err != nil {
				return err
			}
		}

		_, err = s.caja.SumarVentaTx(tx, venta.Total.Neg())
		return err
	})
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *ventaService) Obtener(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error) {
	venta, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Venta no encontrada")
	}
	return ventaToResponse(venta), nil
}

func (s *ventaService) Listar(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	ventas, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apierror.Wrap(apierror.KindInternal, "Error interno del servidor", err)
	}
	items := make([]dto.VentaResponse, 0, len(ventas))
	for i := range ventas {
		items = append(items, *ventaToResponse(&ventas[i]))
	}
	return &dto.VentaListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *ventaService) VentasHoy(ctx context.Context) (*dto.VentasHoyResponse, error) {
	ventas, err := s.repo.ListHoy(ctx)
	if err != nil {
		return nil, apierror.Wrap(apierror.KindInternal, "Error interno del servidor", err)
	}

	items := make([]dto.VentaResponse, 0, len(ventas))
	suma := decimal.Zero
	for i := range ventas {
		items = append(items, *ventaToResponse(&ventas[i]))
		suma = suma.Add(ventas[i].Total)
	}

	totales := dto.TotalesDia{Cantidad: len(ventas), Total: suma.Round(2)}
	if len(ventas) > 0 {
		totales.Promedio = suma.Div(decimalFromInt(len(ventas))).Round(2)
	} else {
		totales.Promedio = decimal.Zero
	}

	return &dto.VentasHoyResponse{Ventas: items, Totales: totales}, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func (s *ventaService) resolverCliente(ctx context.Context, clienteIDStr *string) (*uuid.UUID, error) {
	if clienteIDStr != nil && *clienteIDStr != "" {
		cid, err := uuid.Parse(*clienteIDStr)
		if err != nil {
			return nil, apierror.New(apierror.KindValidation, "cliente_id inválido")
		}
		if _, err := s.clienteRepo.FindByID(ctx, cid); err != nil {
			return nil, notFoundOr(err, "Cliente no encontrado")
		}
		return &cid, nil
	}
	if s.clienteRepo == nil {
		return nil, nil
	}
	if cf, err := s.clienteRepo.FindByNombre(ctx, model.ConsumidorFinal); err == nil {
		return &cf.ID, nil
	}
	return nil, nil
}

func ventaToResponse(v *model.Venta) *dto.VentaResponse {
	detalles := make([]dto.DetalleVentaResponse, 0, len(v.Detalles))
	for _, det := range v.Detalles {
		d := dto.DetalleVentaResponse{
			ProductoID:     det.ProductoID.String(),
			Cantidad:       det.Cantidad,
			PrecioUnitario: det.PrecioUnitario,
			Subtotal:       det.Subtotal,
		}
		if det.Producto != nil {
			d.Producto = det.Producto.Nombre
			d.Codigo = det.Producto.Codigo
		}
		if det.LoteID != nil {
			lid := det.LoteID.String()
			d.LoteID = &lid
		}
		detalles = append(detalles, d)
	}

	resp := &dto.VentaResponse{
		ID:              v.ID.String(),
		NumeroFactura:   v.NumeroFactura,
		FechaVenta:      v.FechaVenta.UTC().Format(time.RFC3339),
		Subtotal:        v.Subtotal,
		Descuento:       v.Descuento,
		Total:           v.Total,
		MontoRecibido:   v.MontoRecibido,
		Cambio:          v.Cambio,
		MetodoPago:      v.MetodoPago,
		Anulada:         v.Anulada,
		MotivoAnulacion: v.MotivoAnulacion,
		Detalles:        detalles,
	}
	if v.Cliente != nil {
		resp.Cliente = v.Cliente.Nombre
	}
	if v.Usuario != nil {
		resp.Usuario = v.Usuario.Nombre
	}
	return resp
}
