package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/oajacap/kissu/internal/apierror"
	"github.com/oajacap/kissu/internal/dto"
	"github.com/oajacap/kissu/internal/model"
	"github.com/oajacap/kissu/internal/repository"
	"github.com/oajacap/kissu/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CajaService interface {
	Abrir(ctx context.Context, usuarioID uuid.UUID, req dto.AbrirCajaRequest) (*dto.AperturaResponse, error)
	Cerrar(ctx context.Context, usuarioID uuid.UUID, req dto.CerrarCajaRequest) (*dto.CuadreResponse, error)
	Estado(ctx context.Context) (*dto.EstadoCajaResponse, error)
	Historial(ctx context.Context, filter dto.CuadreFilter) (*dto.CuadreListResponse, error)
	ObtenerCuadre(ctx context.Context, id uuid.UUID) (*dto.CuadreResponse, error)

	RegistrarGasto(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarGastoRequest) (*dto.GastoResponse, error)
	ListarGastos(ctx context.Context, filter dto.GastoFilter) (*dto.GastoListResponse, error)

	// SumarVentaTx bumps the open drawer's sales counter inside the caller's
	// transaction. Negative montos reverse a voided sale. When no drawer is
	// open the call is a no-op and returns applied=false — the sale itself
	// still commits.
	SumarVentaTx(tx *gorm.DB, monto decimal.Decimal) (applied bool, err error)
}

type cajaService struct {
	repo       repository.CajaRepository
	gastoRepo  repository.GastoRepository
	dispatcher *worker.Dispatcher
}

func NewCajaService(repo repository.CajaRepository, gastoRepo repository.GastoRepository, dispatcher *worker.Dispatcher) CajaService {
	return &cajaService{repo: repo, gastoRepo: gastoRepo, dispatcher: dispatcher}
}

// ── Abrir ─────────────────────────────────────────────────────────────────────
// The in-tx check catches the common case; the partial unique index on
// estado='abierta' settles concurrent opens — the loser's insert fails.

func (s *cajaService) Abrir(ctx context.Context, usuarioID uuid.UUID, req dto.AbrirCajaRequest) (*dto.AperturaResponse, error) {
	cuadre := &model.CuadreCaja{
		MontoInicial:  req.MontoInicial.Round(2),
		TotalVentas:   decimal.Zero,
		TotalGastos:   decimal.Zero,
		Estado:        model.CajaAbierta,
		UsuarioID:     usuarioID,
		NotasApertura: req.Notas,
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if _, err := s.repo.FindAbiertaTx(tx); err == nil {
			return apierror.New(apierror.KindConflict, "Ya existe una caja abierta")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return s.repo.CreateTx(tx, cuadre)
	})
	if txErr != nil {
		if esDuplicado(txErr) {
			return nil, apierror.New(apierror.KindConflict, "Ya existe una caja abierta")
		}
		return nil, txErr
	}

	return &dto.AperturaResponse{
		CajaID:        cuadre.ID.String(),
		FechaApertura: cuadre.FechaApertura.UTC().Format(time.RFC3339),
		MontoInicial:  cuadre.MontoInicial,
	}, nil
}

// ── Cerrar ────────────────────────────────────────────────────────────────────
// Reads the open drawer and finalizes it inside one transaction; the guarded
// UPDATE (estado='abierta') makes a double close lose cleanly.

func (s *cajaService) Cerrar(ctx context.Context, usuarioID uuid.UUID, req dto.CerrarCajaRequest) (*dto.CuadreResponse, error) {
	var cuadre *model.CuadreCaja

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		abierta, err := s.repo.FindAbiertaTx(tx)
		if err != nil {
			return notFoundOr(err, "No hay caja abierta")
		}

		ahora := time.Now()
		montoFinal := req.MontoFinal.Round(2)

		// Diferencia queda en manos del repo: se calcula en SQL contra los
		// contadores vivos, nunca contra esta lectura.
		abierta.FechaCierre = &ahora
		abierta.MontoFinal = &montoFinal
		abierta.UsuarioCierre = &usuarioID
		abierta.NotasCierre = req.Notas

		applied, err := s.repo.CerrarTx(tx, abierta)
		if err != nil {
			return err
		}
		if !applied {
			return apierror.New(apierror.KindConflict, "La caja ya fue cerrada")
		}
		cuadre = abierta
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	// Async close report — best-effort, fire & forget
	if s.dispatcher != nil {
		_ = s.dispatcher.EnqueueCierreCaja(ctx, worker.CierreJobPayload{CuadreID: cuadre.ID.String()})
	}

	return cuadreToResponse(cuadre), nil
}

// ── Estado ────────────────────────────────────────────────────────────────────

func (s *cajaService) Estado(ctx context.Context) (*dto.EstadoCajaResponse, error) {
	abierta, err := s.repo.FindAbierta(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &dto.EstadoCajaResponse{Abierta: false}, nil
		}
		return nil, apierror.Wrap(apierror.KindInternal, "Error interno del servidor", err)
	}
	return &dto.EstadoCajaResponse{Abierta: true, Caja: cuadreToResponse(abierta)}, nil
}

// ── Historial ─────────────────────────────────────────────────────────────────

func (s *cajaService) Historial(ctx context.Context, filter dto.CuadreFilter) (*dto.CuadreListResponse, error) {
	cuadres, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apierror.Wrap(apierror.KindInternal, "Error interno del servidor", err)
	}
	items := make([]dto.CuadreResponse, 0, len(cuadres))
	for i := range cuadres {
		items = append(items, *cuadreToResponse(&cuadres[i]))
	}
	return &dto.CuadreListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *cajaService) ObtenerCuadre(ctx context.Context, id uuid.UUID) (*dto.CuadreResponse, error) {
	cuadre, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Cuadre de caja no encontrado")
	}
	return cuadreToResponse(cuadre), nil
}

// ── Gastos ────────────────────────────────────────────────────────────────────
// An expense requires an open drawer: the insert and the TotalGastos bump
// commit together or not at all.

func (s *cajaService) RegistrarGasto(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarGastoRequest) (*dto.GastoResponse, error) {
	monto := req.Monto.Round(2)
	if !monto.IsPositive() {
		return nil, apierror.New(apierror.KindValidation, "El monto del gasto debe ser mayor a cero")
	}

	gasto := &model.Gasto{
		Descripcion: req.Descripcion,
		Categoria:   req.Categoria,
		Monto:       monto,
		UsuarioID:   usuarioID,
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		abierta, err := s.repo.FindAbiertaTx(tx)
		if err != nil {
			return notFoundOr(err, "Debe abrir caja antes de registrar gastos")
		}
		if err := s.gastoRepo.CreateTx(tx, gasto); err != nil {
			return err
		}
		applied, err := s.repo.SumarGastosTx(tx, abierta.ID, monto)
		if err != nil {
			return err
		}
		if !applied {
			return apierror.New(apierror.KindConflict, "La caja fue cerrada mientras se registraba el gasto")
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return &dto.GastoResponse{
		ID:          gasto.ID.String(),
		Descripcion: gasto.Descripcion,
		Categoria:   gasto.Categoria,
		Monto:       gasto.Monto,
		FechaGasto:  gasto.FechaGasto.UTC().Format(time.RFC3339),
	}, nil
}

func (s *cajaService) ListarGastos(ctx context.Context, filter dto.GastoFilter) (*dto.GastoListResponse, error) {
	gastos, total, err := s.gastoRepo.List(ctx, filter)
	if err != nil {
		return nil, apierror.Wrap(apierror.KindInternal, "Error interno del servidor", err)
	}
	items := make([]dto.GastoResponse, 0, len(gastos))
	for _, g := range gastos {
		item := dto.GastoResponse{
			ID:          g.ID.String(),
			Descripcion: g.Descripcion,
			Categoria:   g.Categoria,
			Monto:       g.Monto,
			FechaGasto:  g.FechaGasto.UTC().Format(time.RFC3339),
		}
		if g.Usuario != nil {
			item.Usuario = g.Usuario.Nombre
		}
		items = append(items, item)
	}
	return &dto.GastoListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// ── SumarVentaTx ──────────────────────────────────────────────────────────────

func (s *cajaService) SumarVentaTx(tx *gorm.DB, monto decimal.Decimal) (bool, error) {
	abierta, err := s.repo.FindAbiertaTx(tx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn().Str("monto", monto.StringFixed(2)).Msg("venta sin caja abierta — cuadre no actualizado")
			return false, nil
		}
		return false, err
	}
	return s.repo.SumarVentasTx(tx, abierta.ID, monto)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// esDuplicado detects a postgres unique violation without importing the driver.
func esDuplicado(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "SQLSTATE 23505")
}

func cuadreToResponse(c *model.CuadreCaja) *dto.CuadreResponse {
	resp := &dto.CuadreResponse{
		ID:            c.ID.String(),
		FechaApertura: c.FechaApertura.UTC().Format(time.RFC3339),
		MontoInicial:  c.MontoInicial,
		TotalVentas:   c.TotalVentas,
		TotalGastos:   c.TotalGastos,
		MontoEsperado: c.MontoEsperado(),
		Estado:        c.Estado,
		NotasApertura: c.NotasApertura,
		NotasCierre:   c.NotasCierre,
	}
	if c.Usuario != nil {
		resp.Usuario = c.Usuario.Nombre
	}
	if c.FechaCierre != nil {
		t := c.FechaCierre.UTC().Format(time.RFC3339)
		resp.FechaCierre = &t
	}
	resp.MontoFinal = c.MontoFinal
	resp.Diferencia = c.Diferencia
	if c.UsuarioCierre != nil {
		u := c.UsuarioCierre.String()
		resp.UsuarioCierre = &u
	}
	return resp
}
