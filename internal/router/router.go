package router

import (
	"time"

	"tiendapos/internal/config"
	"tiendapos/internal/handler"
	"tiendapos/internal/infra"
	"tiendapos/internal/middleware"
	"tiendapos/internal/repository"
	"tiendapos/internal/service"
	"tiendapos/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, webhookCB *infra.CircuitBreaker, logger zerolog.Logger) *gin.Engine {
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
	existenciaRepo := repository.NewExistenciaRepository(db)
	cajaRepo := repository.NewCajaRepository(db)
	resumenRepo := repository.NewResumenRepository(db)
	transaccionRepo := repository.NewTransaccionRepository(db)
	descuentoRepo := repository.NewDescuentoRepository(db)
	creditoRepo := repository.NewCreditoRepository(db)
	entidadRepo := repository.NewEntidadRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	inventarioSvc := service.NewInventarioService(existenciaRepo)
	resumenSvc := service.NewResumenService(resumenRepo)
	cajaSvc := service.NewCajaService(cajaRepo, resumenSvc, cfg.PDFStoragePath)
	descuentoSvc := service.NewDescuentoService(descuentoRepo)
	creditoSvc := service.NewCreditoService(creditoRepo, entidadRepo, transaccionRepo)

	// Worker dispatcher — the orchestrator enqueues reorder alerts through it
	dispatcher := worker.NewDispatcher(rdb)

	transaccionSvc := service.NewTransaccionService(
		transaccionRepo, productoRepo,
		inventarioSvc, cajaSvc, resumenSvc, descuentoSvc, creditoSvc,
		dispatcher, logger,
	)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usuariosH := handler.NewUsuariosHandler(authSvc)
	inventarioH := handler.NewInventarioHandler(inventarioSvc)
	cajaH := handler.NewCajaHandler(cajaSvc)
	resumenH := handler.NewResumenHandler(resumenSvc)
	transaccionesH := handler.NewTransaccionesHandler(transaccionSvc)
	descuentosH := handler.NewDescuentosHandler(descuentoSvc)
	creditosH := handler.NewCreditosHandler(creditoSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, webhookCB))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: cajero, supervisor, administrador — declared per-endpoint
		operativos := middleware.RequireRole("cajero", "supervisor", "administrador")
		gestion := middleware.RequireRole("supervisor", "administrador")
		admin := middleware.RequireRole("administrador")

		trans := v1.Group("/transacciones")
		{
			trans.POST("", operativos, transaccionesH.Registrar)
			trans.GET("", operativos, transaccionesH.Listar)
			trans.GET("/:id", operativos, transaccionesH.Obtener)
			trans.POST("/devoluciones", operativos, transaccionesH.Devolucion)
			trans.POST("/movimientos", gestion, transaccionesH.MovimientoManual)
		}

		caja := v1.Group("/caja")
		{
			caja.POST("/abrir", operativos, cajaH.Abrir)
			caja.POST("/cerrar", operativos, cajaH.Cerrar)
			caja.GET("/:id", operativos, cajaH.Obtener)
			caja.GET("/:id/cierres", gestion, cajaH.Cierres)
			caja.GET("/:id/reporte", gestion, cajaH.ReporteCierre)
		}

		inv := v1.Group("/inventario")
		{
			inv.GET("/existencias", operativos, inventarioH.ListarExistencias)
			inv.GET("/existencias/:id/movimientos", gestion, inventarioH.Movimientos)
			inv.POST("/ajuste", gestion, inventarioH.AjustarStock)
		}

		v1.GET("/resumen/dia", gestion, resumenH.Dia)

		desc := v1.Group("/descuentos")
		{
			desc.GET("", operativos, descuentosH.Listar)
			desc.POST("", admin, descuentosH.Crear)
			desc.DELETE("/:id", admin, descuentosH.Desactivar)
		}

		cred := v1.Group("/creditos")
		{
			cred.GET("/:id", operativos, creditosH.Obtener)
			cred.POST("/:id/pagos", operativos, creditosH.Pagar)
			cred.GET("/entidad/:entidad_id", gestion, creditosH.PorEntidad)
		}

		usuarios := v1.Group("/usuarios", admin)
		{
			usuarios.POST("", usuariosH.Crear)
			usuarios.GET("", usuariosH.Listar)
			usuarios.PUT("/:id", usuariosH.Actualizar)
			usuarios.DELETE("/:id", usuariosH.Desactivar)
			usuarios.PATCH("/:id/reactivar", usuariosH.Reactivar)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
