package router

import (
	"time"

	"github.com/oajacap/kissu/internal/config"
	"github.com/oajacap/kissu/internal/handler"
	"github.com/oajacap/kissu/internal/middleware"
	"github.com/oajacap/kissu/internal/repository"
	"github.com/oajacap/kissu/internal/service"
	"github.com/oajacap/kissu/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	productoRepo := repository.NewProductoRepository(db)
	loteRepo := repository.NewLoteRepository(db)
	movimientoRepo := repository.NewMovimientoRepository(db)
	ventaRepo := repository.NewVentaRepository(db)
	cajaRepo := repository.NewCajaRepository(db)
	gastoRepo := repository.NewGastoRepository(db)
	categoriaRepo := repository.NewCategoriaRepository(db)
	clienteRepo := repository.NewClienteRepository(db)
	proveedorRepo := repository.NewProveedorRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	productoSvc := service.NewProductoService(productoRepo, rdb)
	inventarioSvc := service.NewInventarioService(productoRepo, loteRepo, movimientoRepo, dispatcher)
	cajaSvc := service.NewCajaService(cajaRepo, gastoRepo, dispatcher)
	ventaSvc := service.NewVentaService(ventaRepo, productoRepo, clienteRepo, inventarioSvc, cajaSvc, dispatcher)
	loteSvc := service.NewLoteService(loteRepo, productoRepo, inventarioSvc)
	categoriaSvc := service.NewCategoriaService(categoriaRepo)
	clienteSvc := service.NewClienteService(clienteRepo)
	proveedorSvc := service.NewProveedorService(proveedorRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	productosH := handler.NewProductosHandler(productoSvc)
	inventarioH := handler.NewInventarioHandler(inventarioSvc)
	lotesH := handler.NewLotesHandler(loteSvc)
	ventasH := handler.NewVentasHandler(ventaSvc)
	cajaH := handler.NewCajaHandler(cajaSvc)
	categoriasH := handler.NewCategoriasHandler(categoriaSvc)
	clientesH := handler.NewClientesHandler(clienteSvc)
	proveedoresH := handler.NewProveedoresHandler(proveedorSvc)
	consultaH := handler.NewConsultaPreciosHandler(productoSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Price check — no auth required
	r.GET("/v1/precio/:codigo", consultaH.PorCodigo)

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: cajero, supervisor, administrador — declared per-endpoint
		v1.POST("/ventas", middleware.RequireRole("cajero", "supervisor", "administrador"), ventasH.Crear)
		v1.GET("/ventas", middleware.RequireRole("cajero", "supervisor", "administrador"), ventasH.Listar)
		v1.GET("/ventas/hoy", middleware.RequireRole("cajero", "supervisor", "administrador"), ventasH.Hoy)
		v1.GET("/ventas/:id", middleware.RequireRole("cajero", "supervisor", "administrador"), ventasH.Obtener)
		// Voiding needs supervisor or above
		v1.PUT("/ventas/:id/anular", middleware.RequireRole("supervisor", "administrador"), ventasH.Anular)

		// Productos — all authenticated can read, administrador writes
		v1.GET("/productos", middleware.RequireRole("cajero", "supervisor", "administrador"), productosH.Listar)
		v1.GET("/productos/:id", middleware.RequireRole("cajero", "supervisor", "administrador"), productosH.Obtener)
		v1.GET("/productos/:id/lotes", middleware.RequireRole("cajero", "supervisor", "administrador"), lotesH.PorProducto)
		prods := v1.Group("/productos", middleware.RequireRole("administrador"))
		{
			prods.POST("", productosH.Crear)
			prods.PUT("/:id", productosH.Actualizar)
			prods.DELETE("/:id", productosH.Desactivar)
			prods.PATCH("/:id/reactivar", productosH.Reactivar)
		}

		inv := v1.Group("/inventario", middleware.RequireRole("supervisor", "administrador"))
		{
			inv.POST("/entrada", inventarioH.Entrada)
			inv.POST("/salida", inventarioH.Salida)
			inv.POST("/ajuste", inventarioH.Ajuste)
			inv.GET("", inventarioH.Listar)
			inv.GET("/movimientos", inventarioH.Movimientos)
		}

		lotes := v1.Group("/lotes", middleware.RequireRole("supervisor", "administrador"))
		{
			lotes.POST("", lotesH.Crear)
			lotes.GET("", lotesH.Listar)
			lotes.GET("/proximos-vencer", lotesH.ProximosVencer)
		}

		caja := v1.Group("/caja")
		{
			caja.POST("/abrir", middleware.RequireRole("cajero", "supervisor", "administrador"), cajaH.Abrir)
			caja.POST("/cerrar", middleware.RequireRole("cajero", "supervisor", "administrador"), cajaH.Cerrar)
			caja.GET("/estado", middleware.RequireRole("cajero", "supervisor", "administrador"), cajaH.Estado)
			caja.GET("/historial", middleware.RequireRole("supervisor", "administrador"), cajaH.Historial)
			caja.GET("/:id", middleware.RequireRole("supervisor", "administrador"), cajaH.ObtenerCuadre)
		}

		gastos := v1.Group("/gastos", middleware.RequireRole("cajero", "supervisor", "administrador"))
		{
			gastos.POST("", cajaH.RegistrarGasto)
			gastos.GET("", cajaH.ListarGastos)
		}

		// Categorías — administrador writes, all authenticated read
		v1.GET("/categorias", middleware.RequireRole("cajero", "supervisor", "administrador"), categoriasH.Listar)
		v1.GET("/categorias/:id", middleware.RequireRole("cajero", "supervisor", "administrador"), categoriasH.Obtener)
		categorias := v1.Group("/categorias", middleware.RequireRole("administrador"))
		{
			categorias.POST("", categoriasH.Crear)
			categorias.PUT("/:id", categoriasH.Actualizar)
			categorias.DELETE("/:id", categoriasH.Desactivar)
		}

		clientes := v1.Group("/clientes", middleware.RequireRole("cajero", "supervisor", "administrador"))
		{
			clientes.POST("", clientesH.Crear)
			clientes.GET("", clientesH.Listar)
			clientes.GET("/:id", clientesH.Obtener)
			clientes.PUT("/:id", clientesH.Actualizar)
		}
		v1.DELETE("/clientes/:id", middleware.RequireRole("supervisor", "administrador"), clientesH.Desactivar)

		prov := v1.Group("/proveedores", middleware.RequireRole("administrador"))
		{
			prov.POST("", proveedoresH.Crear)
			prov.GET("", proveedoresH.Listar)
			prov.GET("/:id", proveedoresH.Obtener)
			prov.GET("/:id/productos", proveedoresH.Productos)
			prov.PUT("/:id", proveedoresH.Actualizar)
			prov.DELETE("/:id", proveedoresH.Desactivar)
		}

		usuarios := v1.Group("/usuarios", middleware.RequireRole("administrador"))
		{
			usuarios.POST("", authH.CrearUsuario)
			usuarios.GET("", authH.ListarUsuarios)
			usuarios.PUT("/:id", authH.ActualizarUsuario)
			usuarios.DELETE("/:id", authH.DesactivarUsuario)
			usuarios.PATCH("/:id/reactivar", authH.ReactivarUsuario)
		}
	}

	return r
}
