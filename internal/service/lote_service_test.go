package service

import (
	"context"
	"testing"
	"time"

	"github.com/oajacap/kissu/internal/apierror"
	"github.com/oajacap/kissu/internal/dto"
	"github.com/oajacap/kissu/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loteFixture struct {
	lotes     *stubLoteRepo
	productos *stubProductoRepo
	movs      *stubMovimientoRepo
	svc       LoteService
}

func newLoteFixture() *loteFixture {
	f := &loteFixture{
		lotes:     newStubLoteRepo(),
		productos: newStubProductoRepo(),
		movs:      newStubMovimientoRepo(),
	}
	inventario := NewInventarioService(f.productos, f.lotes, f.movs, nil)
	f.svc = NewLoteService(f.lotes, f.productos, inventario)
	return f
}

func TestCrearLoteSumaStockYMovimiento(t *testing.T) {
	f := newLoteFixture()
	p := f.productos.add(&model.Producto{
		Codigo: "P-300", Nombre: "Leche 1L", PrecioVenta: dec("7.00"),
		StockActual: 10, StockMinimo: 5, Activo: true,
	})

	venc := time.Now().AddDate(0, 0, 15).Format("2006-01-02")
	resp, err := f.svc.Crear(context.Background(), uuid.New(), dto.CrearLoteRequest{
		ProductoID:       p.ID.String(),
		NumeroLote:       "L-2026-08",
		Cantidad:         24,
		FechaVencimiento: &venc,
	})
	require.NoError(t, err)

	assert.Equal(t, "L-2026-08", resp.NumeroLote)
	assert.Equal(t, 24, resp.Cantidad)
	assert.Equal(t, "Leche 1L", resp.Producto)
	require.NotNil(t, resp.DiasParaVencer)

	// Stock del producto incrementado y movimiento de entrada ligado al lote.
	assert.Equal(t, 34, f.productos.stock(p.ID))
	movs := f.movs.all()
	require.Len(t, movs, 1)
	assert.Equal(t, model.MovimientoEntrada, movs[0].Tipo)
	require.NotNil(t, movs[0].LoteID)
	assert.Equal(t, resp.ID, movs[0].LoteID.String())
	assert.Contains(t, movs[0].Motivo, "L-2026-08")
}

func TestCrearLoteProductoInactivo(t *testing.T) {
	f := newLoteFixture()
	p := f.productos.add(&model.Producto{
		Codigo: "P-300", Nombre: "Leche 1L", StockActual: 0, StockMinimo: 5, Activo: false,
	})

	_, err := f.svc.Crear(context.Background(), uuid.New(), dto.CrearLoteRequest{
		ProductoID: p.ID.String(),
		NumeroLote: "L-001",
		Cantidad:   10,
	})
	require.Error(t, err)
	assert.Equal(t, apierror.KindNotFound, apierror.KindOf(err))
}

func TestCrearLoteFechaInvalida(t *testing.T) {
	f := newLoteFixture()
	p := f.productos.add(&model.Producto{
		Codigo: "P-300", Nombre: "Leche 1L", StockActual: 0, StockMinimo: 5, Activo: true,
	})

	fecha := "15/08/2026"
	_, err := f.svc.Crear(context.Background(), uuid.New(), dto.CrearLoteRequest{
		ProductoID:       p.ID.String(),
		NumeroLote:       "L-001",
		Cantidad:         10,
		FechaVencimiento: &fecha,
	})
	require.Error(t, err)
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
}

func TestProximosVencerFiltraVentana(t *testing.T) {
	f := newLoteFixture()
	p := f.productos.add(&model.Producto{
		Codigo: "P-300", Nombre: "Leche 1L", StockActual: 0, StockMinimo: 5, Activo: true,
	})

	pronto := time.Now().AddDate(0, 0, 10)
	lejano := time.Now().AddDate(0, 6, 0)
	require.NoError(t, f.lotes.CreateTx(nil, &model.Lote{
		ProductoID: p.ID, NumeroLote: "L-PRONTO", Cantidad: 5, FechaVencimiento: &pronto,
	}))
	require.NoError(t, f.lotes.CreateTx(nil, &model.Lote{
		ProductoID: p.ID, NumeroLote: "L-LEJANO", Cantidad: 5, FechaVencimiento: &lejano,
	}))
	require.NoError(t, f.lotes.CreateTx(nil, &model.Lote{
		ProductoID: p.ID, NumeroLote: "L-AGOTADO", Cantidad: 0, FechaVencimiento: &pronto,
	}))

	items, err := f.svc.ProximosVencer(context.Background(), 30)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "L-PRONTO", items[0].NumeroLote)
	require.NotNil(t, items[0].DiasParaVencer)
	assert.LessOrEqual(t, *items[0].DiasParaVencer, 10)
}

func TestPorProductoNoExiste(t *testing.T) {
	f := newLoteFixture()

	_, err := f.svc.PorProducto(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, apierror.KindNotFound, apierror.KindOf(err))
}
