package service

import (
	"context"
	"sync"
	"testing"

	"github.com/oajacap/kissu/internal/apierror"
	"github.com/oajacap/kissu/internal/dto"
	"github.com/oajacap/kissu/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// stubCategoriaRepo mantiene las categorías en memoria; ContarProductos se
// fija a mano desde cada test.
type stubCategoriaRepo struct {
	mu         sync.Mutex
	categorias map[uuid.UUID]*model.Categoria
	productos  map[uuid.UUID]int64
}

func newStubCategoriaRepo() *stubCategoriaRepo {
	return &stubCategoriaRepo{
		categorias: make(map[uuid.UUID]*model.Categoria),
		productos:  make(map[uuid.UUID]int64),
	}
}

func (r *stubCategoriaRepo) Crear(_ context.Context, c *model.Categoria) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.categorias[c.ID] = c
	return nil
}

func (r *stubCategoriaRepo) Listar(_ context.Context) ([]model.Categoria, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Categoria, 0, len(r.categorias))
	for _, c := range r.categorias {
		if c.Activo {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *stubCategoriaRepo) ObtenerPorID(_ context.Context, id uuid.UUID) (*model.Categoria, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.categorias[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *stubCategoriaRepo) ObtenerPorNombre(_ context.Context, nombre string) (*model.Categoria, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.categorias {
		if c.Nombre == nombre {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCategoriaRepo) ContarProductos(_ context.Context, id uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.productos[id], nil
}

func (r *stubCategoriaRepo) Actualizar(_ context.Context, c *model.Categoria) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.categorias[c.ID] = c
	return nil
}

func (r *stubCategoriaRepo) Desactivar(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.categorias[id]; ok {
		c.Activo = false
	}
	return nil
}

// ── Productos ────────────────────────────────────────────────────────────────

func TestCrearProducto(t *testing.T) {
	repo := newStubProductoRepo()
	svc := NewProductoService(repo, nil)

	resp, err := svc.Crear(context.Background(), dto.CrearProductoRequest{
		Codigo:      "7501031311309",
		Nombre:      "Galletas María",
		PrecioVenta: dec("12.50"),
		StockActual: 30,
		StockMinimo: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, "7501031311309", resp.Codigo)
	assert.True(t, resp.PrecioVenta.Equal(dec("12.50")))
	assert.True(t, resp.Activo)
}

func TestCrearProductoPrecioNoPositivo(t *testing.T) {
	svc := NewProductoService(newStubProductoRepo(), nil)

	_, err := svc.Crear(context.Background(), dto.CrearProductoRequest{
		Codigo:      "ABC-1",
		Nombre:      "Sin precio",
		PrecioVenta: dec("0"),
	})
	require.Error(t, err)
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
}

func TestCrearProductoCodigoDuplicado(t *testing.T) {
	repo := newStubProductoRepo()
	svc := NewProductoService(repo, nil)

	_, err := svc.Crear(context.Background(), dto.CrearProductoRequest{
		Codigo: "ABC-1", Nombre: "Original", PrecioVenta: dec("5.00"),
	})
	require.NoError(t, err)

	_, err = svc.Crear(context.Background(), dto.CrearProductoRequest{
		Codigo: "ABC-1", Nombre: "Repetido", PrecioVenta: dec("6.00"),
	})
	require.Error(t, err)
	assert.Equal(t, apierror.KindConflict, apierror.KindOf(err))
}

func TestConsultarPrecioSinCache(t *testing.T) {
	repo := newStubProductoRepo()
	repo.add(&model.Producto{
		Codigo: "ABC-1", Nombre: "Galletas María", PrecioVenta: dec("12.50"),
		StockActual: 30, StockMinimo: 10, Activo: true,
	})
	svc := NewProductoService(repo, nil)

	resp, err := svc.ConsultarPrecio(context.Background(), "ABC-1")
	require.NoError(t, err)
	assert.Equal(t, "Galletas María", resp.Nombre)
	assert.True(t, resp.PrecioVenta.Equal(dec("12.50")))
}

func TestConsultarPrecioNoExiste(t *testing.T) {
	svc := NewProductoService(newStubProductoRepo(), nil)

	_, err := svc.ConsultarPrecio(context.Background(), "NO-EXISTE")
	require.Error(t, err)
	assert.Equal(t, apierror.KindNotFound, apierror.KindOf(err))
}

// ── Categorías ───────────────────────────────────────────────────────────────

func TestCrearCategoriaDuplicada(t *testing.T) {
	repo := newStubCategoriaRepo()
	svc := NewCategoriaService(repo)

	_, err := svc.Crear(context.Background(), dto.CategoriaRequest{Nombre: "Lácteos"})
	require.NoError(t, err)

	_, err = svc.Crear(context.Background(), dto.CategoriaRequest{Nombre: "Lácteos"})
	require.Error(t, err)
	assert.Equal(t, apierror.KindConflict, apierror.KindOf(err))
}

func TestDesactivarCategoriaConProductos(t *testing.T) {
	repo := newStubCategoriaRepo()
	svc := NewCategoriaService(repo)

	resp, err := svc.Crear(context.Background(), dto.CategoriaRequest{Nombre: "Lácteos"})
	require.NoError(t, err)
	id := uuid.MustParse(resp.ID)
	repo.productos[id] = 4

	err = svc.Desactivar(context.Background(), id)
	require.Error(t, err)
	assert.Equal(t, apierror.KindConflict, apierror.KindOf(err))

	// Sin productos activos sí se puede desactivar.
	repo.productos[id] = 0
	require.NoError(t, svc.Desactivar(context.Background(), id))
}

// ── Clientes ─────────────────────────────────────────────────────────────────

func TestDesactivarConsumidorFinal(t *testing.T) {
	repo := newStubClienteRepo()
	walkIn := repo.add(&model.Cliente{Nombre: model.ConsumidorFinal, Activo: true})
	svc := NewClienteService(repo)

	err := svc.Desactivar(context.Background(), walkIn.ID)
	require.Error(t, err)
	assert.Equal(t, apierror.KindConflict, apierror.KindOf(err))
}

func TestDesactivarClienteNormal(t *testing.T) {
	repo := newStubClienteRepo()
	c := repo.add(&model.Cliente{Nombre: "Tienda La Esquina", Activo: true})
	svc := NewClienteService(repo)

	require.NoError(t, svc.Desactivar(context.Background(), c.ID))

	actualizado, err := repo.FindByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.False(t, actualizado.Activo)
}
