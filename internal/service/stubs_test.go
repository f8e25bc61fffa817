package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/oajacap/kissu/internal/dto"
	"github.com/oajacap/kissu/internal/model"
	"github.com/oajacap/kissu/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// In-memory repository stubs. All Tx methods ignore the *gorm.DB argument —
// runTx calls fn(nil) when the repo reports a nil DB, so the services execute
// their full transactional logic against these maps. Every method copies on
// read and locks on write so the concurrency tests run clean under -race.

// ── Productos ────────────────────────────────────────────────────────────────

type stubProductoRepo struct {
	mu        sync.Mutex
	productos map[uuid.UUID]*model.Producto
}

func newStubProductoRepo() *stubProductoRepo {
	return &stubProductoRepo{productos: make(map[uuid.UUID]*model.Producto)}
}

func (r *stubProductoRepo) add(p *model.Producto) *model.Producto {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.productos[p.ID] = p
	return p
}

func (r *stubProductoRepo) stock(id uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.productos[id].StockActual
}

func (r *stubProductoRepo) Create(_ context.Context, p *model.Producto) error {
	r.mu.Lock()
	for _, existing := range r.productos {
		if existing.Codigo == p.Codigo {
			r.mu.Unlock()
			return fmt.Errorf(`ERROR: duplicate key value violates unique constraint "idx_productos_codigo" (SQLSTATE 23505)`)
		}
	}
	r.mu.Unlock()
	r.add(p)
	return nil
}

func (r *stubProductoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Producto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.productos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubProductoRepo) FindByCodigo(_ context.Context, codigo string) (*model.Producto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.productos {
		if p.Codigo == codigo && p.Activo {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductoRepo) List(_ context.Context, _ dto.ProductoFilter) ([]model.Producto, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Producto, 0, len(r.productos))
	for _, p := range r.productos {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubProductoRepo) ListInventario(_ context.Context, filter dto.InventarioFilter) ([]model.Producto, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Producto, 0, len(r.productos))
	for _, p := range r.productos {
		if !p.Activo {
			continue
		}
		if filter.BajoStock && p.StockActual > p.StockMinimo {
			continue
		}
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubProductoRepo) FindBajoStock(_ context.Context) ([]model.Producto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Producto, 0)
	for _, p := range r.productos {
		if p.Activo && p.StockActual <= p.StockMinimo {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductoRepo) Update(_ context.Context, p *model.Producto) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.productos[p.ID] = p
	return nil
}

func (r *stubProductoRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.productos[id]; ok {
		p.Activo = false
	}
	return nil
}

func (r *stubProductoRepo) Reactivar(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.productos[id]; ok {
		p.Activo = true
	}
	return nil
}

func (r *stubProductoRepo) DescontarStockTx(_ *gorm.DB, id uuid.UUID, cantidad int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.productos[id]
	if !ok || p.StockActual < cantidad {
		return repository.ErrStockInsuficiente
	}
	p.StockActual -= cantidad
	return nil
}

func (r *stubProductoRepo) ReponerStockTx(_ *gorm.DB, id uuid.UUID, cantidad int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.productos[id]; ok {
		p.StockActual += cantidad
	}
	return nil
}

func (r *stubProductoRepo) FijarStockTx(_ *gorm.DB, id uuid.UUID, stockNuevo int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.productos[id]; ok {
		p.StockActual = stockNuevo
	}
	return nil
}

func (r *stubProductoRepo) DB() *gorm.DB { return nil }

// ── Lotes ────────────────────────────────────────────────────────────────────

type stubLoteRepo struct {
	mu    sync.Mutex
	lotes map[uuid.UUID]*model.Lote
}

func newStubLoteRepo() *stubLoteRepo {
	return &stubLoteRepo{lotes: make(map[uuid.UUID]*model.Lote)}
}

func (r *stubLoteRepo) CreateTx(_ *gorm.DB, l *model.Lote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.FechaIngreso.IsZero() {
		l.FechaIngreso = time.Now()
	}
	r.lotes[l.ID] = l
	return nil
}

func (r *stubLoteRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Lote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.lotes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *stubLoteRepo) FindByProducto(_ context.Context, productoID uuid.UUID) ([]model.Lote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Lote, 0)
	for _, l := range r.lotes {
		if l.ProductoID == productoID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *stubLoteRepo) List(_ context.Context, _ dto.LoteFilter) ([]model.Lote, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Lote, 0, len(r.lotes))
	for _, l := range r.lotes {
		out = append(out, *l)
	}
	return out, int64(len(out)), nil
}

func (r *stubLoteRepo) ListProximosVencer(_ context.Context, dias int) ([]model.Lote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	limite := time.Now().AddDate(0, 0, dias)
	out := make([]model.Lote, 0)
	for _, l := range r.lotes {
		if l.Cantidad > 0 && l.FechaVencimiento != nil && !l.FechaVencimiento.After(limite) {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *stubLoteRepo) DescontarCantidadTx(_ *gorm.DB, id uuid.UUID, cantidad int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.lotes[id]
	if !ok || l.Cantidad < cantidad {
		return repository.ErrStockInsuficiente
	}
	l.Cantidad -= cantidad
	return nil
}

func (r *stubLoteRepo) ReponerCantidadTx(_ *gorm.DB, id uuid.UUID, cantidad int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.lotes[id]; ok {
		l.Cantidad += cantidad
	}
	return nil
}

func (r *stubLoteRepo) DB() *gorm.DB { return nil }

// ── Movimientos ──────────────────────────────────────────────────────────────

type stubMovimientoRepo struct {
	mu   sync.Mutex
	movs []model.MovimientoInventario
}

func newStubMovimientoRepo() *stubMovimientoRepo { return &stubMovimientoRepo{} }

func (r *stubMovimientoRepo) CreateTx(_ *gorm.DB, m *model.MovimientoInventario) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.FechaMovimiento.IsZero() {
		m.FechaMovimiento = time.Now()
	}
	r.movs = append(r.movs, *m)
	return nil
}

func (r *stubMovimientoRepo) List(_ context.Context, filter dto.MovimientoFilter) ([]model.MovimientoInventario, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.MovimientoInventario, 0, len(r.movs))
	for _, m := range r.movs {
		if filter.Tipo != "" && m.Tipo != filter.Tipo {
			continue
		}
		if filter.ProductoID != "" && m.ProductoID.String() != filter.ProductoID {
			continue
		}
		out = append(out, m)
	}
	return out, int64(len(out)), nil
}

func (r *stubMovimientoRepo) all() []model.MovimientoInventario {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.MovimientoInventario, len(r.movs))
	copy(out, r.movs)
	return out
}

func (r *stubMovimientoRepo) DB() *gorm.DB { return nil }

// ── Ventas ───────────────────────────────────────────────────────────────────

type stubVentaRepo struct {
	mu     sync.Mutex
	ventas map[uuid.UUID]*model.Venta
	seq    int64
}

func newStubVentaRepo() *stubVentaRepo {
	return &stubVentaRepo{ventas: make(map[uuid.UUID]*model.Venta)}
}

func (r *stubVentaRepo) CreateTx(_ *gorm.DB, v *model.Venta) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.FechaVenta.IsZero() {
		v.FechaVenta = time.Now()
	}
	r.ventas[v.ID] = v
	return nil
}

func (r *stubVentaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Venta, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.ventas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *stubVentaRepo) List(_ context.Context, filter dto.VentaFilter) ([]model.Venta, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Venta, 0, len(r.ventas))
	for _, v := range r.ventas {
		switch filter.Estado {
		case "anuladas":
			if !v.Anulada {
				continue
			}
		case "all":
		default:
			if v.Anulada {
				continue
			}
		}
		out = append(out, *v)
	}
	return out, int64(len(out)), nil
}

func (r *stubVentaRepo) ListHoy(_ context.Context) ([]model.Venta, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Venta, 0, len(r.ventas))
	for _, v := range r.ventas {
		if !v.Anulada {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (r *stubVentaRepo) NextNumeroFactura(_ *gorm.DB) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	return fmt.Sprintf("F-%08d", r.seq), nil
}

func (r *stubVentaRepo) AnularTx(_ *gorm.DB, id uuid.UUID, motivo string, usuarioID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.ventas[id]
	if !ok || v.Anulada {
		return false, nil
	}
	ahora := time.Now()
	v.Anulada = true
	v.MotivoAnulacion = &motivo
	v.UsuarioAnulacion = &usuarioID
	v.FechaAnulacion = &ahora
	return true, nil
}

func (r *stubVentaRepo) DB() *gorm.DB { return nil }

// ── Caja ─────────────────────────────────────────────────────────────────────

type stubCajaRepo struct {
	mu      sync.Mutex
	cuadres map[uuid.UUID]*model.CuadreCaja
}

func newStubCajaRepo() *stubCajaRepo {
	return &stubCajaRepo{cuadres: make(map[uuid.UUID]*model.CuadreCaja)}
}

func (r *stubCajaRepo) abierta() *model.CuadreCaja {
	for _, c := range r.cuadres {
		if c.Estado == model.CajaAbierta {
			return c
		}
	}
	return nil
}

func (r *stubCajaRepo) CreateTx(_ *gorm.DB, c *model.CuadreCaja) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.Estado == model.CajaAbierta && r.abierta() != nil {
		// Mirrors the partial unique index on estado='abierta'.
		return fmt.Errorf(`ERROR: duplicate key value violates unique constraint "uni_cuadre_caja_abierta" (SQLSTATE 23505)`)
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.FechaApertura.IsZero() {
		c.FechaApertura = time.Now()
	}
	r.cuadres[c.ID] = c
	return nil
}

func (r *stubCajaRepo) FindAbierta(_ context.Context) (*model.CuadreCaja, error) {
	return r.FindAbiertaTx(nil)
}

func (r *stubCajaRepo) FindAbiertaTx(_ *gorm.DB) (*model.CuadreCaja, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c := r.abierta(); c != nil {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCajaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.CuadreCaja, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cuadres[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *stubCajaRepo) List(_ context.Context, _ dto.CuadreFilter) ([]model.CuadreCaja, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.CuadreCaja, 0, len(r.cuadres))
	for _, c := range r.cuadres {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (r *stubCajaRepo) SumarVentasTx(_ *gorm.DB, id uuid.UUID, monto decimal.Decimal) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cuadres[id]
	if !ok || c.Estado != model.CajaAbierta {
		return false, nil
	}
	c.TotalVentas = c.TotalVentas.Add(monto)
	return true, nil
}

func (r *stubCajaRepo) SumarGastosTx(_ *gorm.DB, id uuid.UUID, monto decimal.Decimal) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cuadres[id]
	if !ok || c.Estado != model.CajaAbierta {
		return false, nil
	}
	c.TotalGastos = c.TotalGastos.Add(monto)
	return true, nil
}

func (r *stubCajaRepo) CerrarTx(_ *gorm.DB, c *model.CuadreCaja) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	actual, ok := r.cuadres[c.ID]
	if !ok || actual.Estado != model.CajaAbierta {
		return false, nil
	}
	// Como el repo real: los contadores no se sobreescriben y la diferencia
	// sale de los valores vivos de la fila.
	diferencia := c.MontoFinal.Sub(actual.MontoEsperado()).Round(2)
	actual.Estado = model.CajaCerrada
	actual.FechaCierre = c.FechaCierre
	actual.MontoFinal = c.MontoFinal
	actual.Diferencia = &diferencia
	actual.UsuarioCierre = c.UsuarioCierre
	actual.NotasCierre = c.NotasCierre
	*c = *actual
	return true, nil
}

func (r *stubCajaRepo) DB() *gorm.DB { return nil }

// ── Gastos ───────────────────────────────────────────────────────────────────

type stubGastoRepo struct {
	mu     sync.Mutex
	gastos []model.Gasto
}

func newStubGastoRepo() *stubGastoRepo { return &stubGastoRepo{} }

func (r *stubGastoRepo) CreateTx(_ *gorm.DB, g *model.Gasto) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	if g.FechaGasto.IsZero() {
		g.FechaGasto = time.Now()
	}
	r.gastos = append(r.gastos, *g)
	return nil
}

func (r *stubGastoRepo) List(_ context.Context, _ dto.GastoFilter) ([]model.Gasto, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Gasto, len(r.gastos))
	copy(out, r.gastos)
	return out, int64(len(out)), nil
}

func (r *stubGastoRepo) ListEntre(_ context.Context, desde, hasta time.Time) ([]model.Gasto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Gasto, 0)
	for _, g := range r.gastos {
		if !g.FechaGasto.Before(desde) && !g.FechaGasto.After(hasta) {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *stubGastoRepo) DB() *gorm.DB { return nil }

// ── Clientes ─────────────────────────────────────────────────────────────────

type stubClienteRepo struct {
	mu       sync.Mutex
	clientes map[uuid.UUID]*model.Cliente
}

func newStubClienteRepo() *stubClienteRepo {
	return &stubClienteRepo{clientes: make(map[uuid.UUID]*model.Cliente)}
}

func (r *stubClienteRepo) add(c *model.Cliente) *model.Cliente {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.clientes[c.ID] = c
	return c
}

func (r *stubClienteRepo) Create(_ context.Context, c *model.Cliente) error {
	r.add(c)
	return nil
}

func (r *stubClienteRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Cliente, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clientes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *stubClienteRepo) FindByNombre(_ context.Context, nombre string) (*model.Cliente, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.clientes {
		if c.Nombre == nombre && c.Activo {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubClienteRepo) List(_ context.Context, _ dto.ClienteFilter) ([]model.Cliente, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Cliente, 0, len(r.clientes))
	for _, c := range r.clientes {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (r *stubClienteRepo) Update(_ context.Context, c *model.Cliente) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clientes[c.ID] = c
	return nil
}

func (r *stubClienteRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.clientes[id]; ok {
		c.Activo = false
	}
	return nil
}

// ── Usuarios ─────────────────────────────────────────────────────────────────

type stubUsuarioRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*model.Usuario
}

func newStubUsuarioRepo() *stubUsuarioRepo {
	return &stubUsuarioRepo{users: make(map[uuid.UUID]*model.Usuario)}
}

func (r *stubUsuarioRepo) Create(_ context.Context, u *model.Usuario) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == u.Username {
			return fmt.Errorf(`ERROR: duplicate key value violates unique constraint "idx_usuarios_username" (SQLSTATE 23505)`)
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.ID] = u
	return nil
}

func (r *stubUsuarioRepo) FindByUsername(_ context.Context, username string) (*model.Usuario, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if !u.Activo {
			continue
		}
		if u.Username == username || (u.Email != nil && *u.Email == username) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUsuarioRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Usuario, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *stubUsuarioRepo) List(_ context.Context) ([]model.Usuario, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Usuario, 0, len(r.users))
	for _, u := range r.users {
		if u.Activo {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *stubUsuarioRepo) ListAll(_ context.Context) ([]model.Usuario, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Usuario, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *stubUsuarioRepo) Update(_ context.Context, u *model.Usuario) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = u
	return nil
}

func (r *stubUsuarioRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Activo = false
	return nil
}

func (r *stubUsuarioRepo) Reactivar(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Activo = true
	return nil
}
