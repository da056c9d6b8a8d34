package router

import (
	"time"

	"tiendapos/internal/authz"
	"tiendapos/internal/config"
	"tiendapos/internal/handler"
	"tiendapos/internal/infra"
	"tiendapos/internal/middleware"
	"tiendapos/internal/repository"
	"tiendapos/internal/service"
	"tiendapos/internal/worker"
	"tiendapos/internal/ws"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps carries the shared infrastructure wired in main.
type Deps struct {
	Cfg   *config.Config
	DB    *gorm.DB
	RDB   *redis.Client
	Cache *infra.Cache
	Hub   *ws.Hub
	Disp  *worker.Dispatcher
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(d Deps) *gin.Engine {
	cfg := d.Cfg
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
	empleadoRepo := repository.NewEmpleadoRepository(d.DB)
	productoRepo := repository.NewProductoRepository(d.DB)
	clienteRepo := repository.NewClienteRepository(d.DB)
	ventaRepo := repository.NewVentaRepository(d.DB)
	turnoRepo := repository.NewTurnoRepository(d.DB)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(empleadoRepo, cfg)
	productoSvc := service.NewProductoService(productoRepo, d.Cache, d.Hub, d.Disp, cfg.AlertEmail)
	clienteSvc := service.NewClienteService(clienteRepo)
	ventaSvc := service.NewVentaService(ventaRepo, productoRepo, turnoRepo, clienteRepo, d.Disp, d.Hub, d.Cache)
	turnoSvc := service.NewTurnoService(turnoRepo, ventaRepo, d.Disp, d.Hub, cfg.AlertEmail)
	reporteSvc := service.NewReporteService(ventaRepo, turnoRepo, productoRepo, d.Cache)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	empleadosH := handler.NewEmpleadosHandler(authSvc)
	productosH := handler.NewProductosHandler(productoSvc)
	clientesH := handler.NewClientesHandler(clienteSvc)
	ventasH := handler.NewVentasHandler(ventaSvc)
	cajaH := handler.NewCajaHandler(turnoSvc, cfg.PDFStoragePath)
	reportesH := handler.NewReportesHandler(reporteSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(d.DB, d.RDB, d.Hub))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes. Module access goes through authz via RequireModule;
	// destructive operations add a verb check on top.
	jwtMW := middleware.JWTAuth(cfg.JWTSecret, empleadoRepo)
	v1 := r.Group("/v1", jwtMW)
	{
		// Realtime events for every terminal
		v1.GET("/ws", ws.ServeWS(d.Hub))

		empleados := v1.Group("/empleados", middleware.RequireModule(authz.ModuleEmpleados))
		{
			empleados.POST("", middleware.RequirePermission(authz.ModuleEmpleados, authz.VerbCreate), empleadosH.Crear)
			empleados.GET("", empleadosH.Listar)
			empleados.PUT("/:id", middleware.RequirePermission(authz.ModuleEmpleados, authz.VerbUpdate), empleadosH.Actualizar)
			empleados.DELETE("/:id", middleware.RequirePermission(authz.ModuleEmpleados, authz.VerbDelete), empleadosH.Desactivar)
			empleados.POST("/:id/reactivar", middleware.RequirePermission(authz.ModuleEmpleados, authz.VerbUpdate), empleadosH.Reactivar)
		}

		productos := v1.Group("/productos", middleware.RequireModule(authz.ModuleProductos))
		{
			productos.GET("", productosH.Listar)
			productos.GET("/stock-bajo", productosH.StockBajo)
			productos.GET("/precio/:barcode", productosH.ConsultarPrecio)
			productos.GET("/:id", productosH.Obtener)
			productos.GET("/:id/movimientos", productosH.Movimientos)
			productos.POST("", middleware.RequirePermission(authz.ModuleProductos, authz.VerbCreate), productosH.Crear)
			productos.PUT("/:id", middleware.RequirePermission(authz.ModuleProductos, authz.VerbUpdate), productosH.Actualizar)
			productos.POST("/:id/stock", middleware.RequirePermission(authz.ModuleProductos, authz.VerbUpdate), productosH.AjustarStock)
			productos.DELETE("/:id", middleware.RequirePermission(authz.ModuleProductos, authz.VerbDelete), productosH.Desactivar)
			productos.POST("/:id/reactivar", middleware.RequirePermission(authz.ModuleProductos, authz.VerbUpdate), productosH.Reactivar)
		}

		clientes := v1.Group("/clientes", middleware.RequireModule(authz.ModuleClientes))
		{
			clientes.GET("", clientesH.Listar)
			clientes.GET("/:id", clientesH.Obtener)
			clientes.POST("", middleware.RequirePermission(authz.ModuleClientes, authz.VerbCreate), clientesH.Crear)
			clientes.PUT("/:id", middleware.RequirePermission(authz.ModuleClientes, authz.VerbUpdate), clientesH.Actualizar)
			clientes.DELETE("/:id", middleware.RequirePermission(authz.ModuleClientes, authz.VerbDelete), clientesH.Desactivar)
			clientes.POST("/:id/pagos", middleware.RequirePermission(authz.ModuleClientes, authz.VerbUpdate), clientesH.RegistrarPago)
		}

		ventas := v1.Group("/ventas", middleware.RequireModule(authz.ModuleVentas))
		{
			ventas.GET("", ventasH.ListarVentas)
			ventas.GET("/:id", ventasH.ObtenerVenta)
			ventas.POST("", middleware.RequirePermission(authz.ModuleVentas, authz.VerbCreate), ventasH.RegistrarVenta)
			ventas.DELETE("/:id", middleware.RequirePermission(authz.ModuleVentas, authz.VerbDelete), ventasH.AnularVenta)
		}

		caja := v1.Group("/caja", middleware.RequireModule(authz.ModuleCaja))
		{
			caja.GET("/turnos", cajaH.Historial)
			caja.GET("/turnos/activo", cajaH.TurnoActivo)
			caja.GET("/turnos/:id/reporte", cajaH.ReporteTurno)
			caja.GET("/turnos/:id/reporte.pdf", cajaH.ReporteTurnoPDF)
			caja.POST("/turnos", middleware.RequirePermission(authz.ModuleCaja, authz.VerbCreate), cajaH.AbrirTurno)
			caja.POST("/movimientos", middleware.RequirePermission(authz.ModuleCaja, authz.VerbCreate), cajaH.RegistrarMovimiento)
			caja.DELETE("/movimientos/:id", middleware.RequirePermission(authz.ModuleCaja, authz.VerbManage), cajaH.EliminarMovimiento)
			caja.POST("/arqueo", middleware.RequirePermission(authz.ModuleCaja, authz.VerbUpdate), cajaH.RealizarArqueo)
		}

		reportes := v1.Group("/reportes", middleware.RequireModule(authz.ModuleReportes))
		{
			reportes.GET("/ventas", reportesH.ResumenVentas)
		}

		// The dashboard snapshot is its own module: every role reads it.
		v1.GET("/dashboard", middleware.RequireModule(authz.ModuleDashboard), reportesH.Dashboard)
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
