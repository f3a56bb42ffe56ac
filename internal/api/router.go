package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/fleetops/rider-dispatch/docs"
	"github.com/fleetops/rider-dispatch/internal/api/handler"
	"github.com/fleetops/rider-dispatch/internal/api/middleware"
	"github.com/fleetops/rider-dispatch/internal/core/domain"
	"github.com/fleetops/rider-dispatch/internal/core/service"
	mongorepo "github.com/fleetops/rider-dispatch/internal/infrastructure/db/mongo"
	redisstore "github.com/fleetops/rider-dispatch/internal/infrastructure/db/redis"
	"github.com/fleetops/rider-dispatch/internal/pkg/config"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// dispatcher is the running location ping fan-out; the caller owns its
// lifecycle.
func NewRouter(
	client *mongo.Client,
	db *mongo.Database,
	rdb *redis.Client,
	cfg *config.Config,
	dispatcher handler.PingDispatcher,
	log zerolog.Logger,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("dispatch"))

	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Repositories ---
	users := mongorepo.NewUserRepository(db)
	presenceRepo := mongorepo.NewPresenceRepository(client, db)
	audit := mongorepo.NewAuditRepository(db)
	attendanceRepo := mongorepo.NewAttendanceRepository(db)
	shiftsRepo := mongorepo.NewShiftRepository(db)
	locations := redisstore.NewLocationStore(rdb)
	tx := mongorepo.NewTxRunner(client)

	// --- Services ---
	tokens := service.NewTokenService(users, cfg.JWTSecret, cfg.TokenTTL())
	directory := service.NewDirectoryService(users, presenceRepo, attendanceRepo, shiftsRepo, locations, tx, log)
	impersonation := service.NewImpersonationService(users, audit, tokens, tx, log)
	presence := service.NewPresenceService(presenceRepo, users, attendanceRepo, directory, log)
	attendance := service.NewAttendanceService(attendanceRepo, log)
	shifts := service.NewShiftService(shiftsRepo, directory, log)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(tokens, impersonation)
	adminHandler := handler.NewAdminHandler(directory, presence)
	riderHandler := handler.NewRiderHandler(presence, attendance)
	trackingHandler := handler.NewTrackingHandler(dispatcher, locations, directory)
	shiftHandler := handler.NewShiftHandler(shifts)
	healthHandler := handler.NewHealthHandler(db, rdb)

	authRequired := middleware.Auth(tokens)

	// --- Public routes ---
	e.POST("/auth/login", authHandler.Login)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	// --- Authenticated routes ---
	auth := e.Group("", authRequired)
	auth.POST("/auth/impersonate", authHandler.Impersonate)

	// --- Admin routes (prime and sub admins) ---
	admin := auth.Group("/admin", middleware.RequireRoles(domain.RolePrimeAdmin, domain.RoleSubAdmin))
	admin.POST("/riders", adminHandler.AddRider)
	admin.DELETE("/riders", adminHandler.DeleteUser)
	admin.GET("/riders", adminHandler.ListRiders)
	admin.GET("/rider-status", adminHandler.RiderStatus)
	admin.GET("/dashboard-stats", adminHandler.DashboardStats)

	// --- Prime-only routes ---
	prime := auth.Group("/admin", middleware.RequireRoles(domain.RolePrimeAdmin))
	prime.POST("/sub-admins", adminHandler.AddSubAdmin)
	prime.GET("/sub-admins", adminHandler.ListSubAdmins)
	prime.DELETE("/sub-admins", adminHandler.DeleteUser)
	prime.GET("/impersonation-logs", authHandler.ImpersonationLogs)
	prime.GET("/prime-overview", adminHandler.PrimeOverview)

	// --- Shift routes (prime and sub admins) ---
	shiftGroup := auth.Group("/shifts", middleware.RequireRoles(domain.RolePrimeAdmin, domain.RoleSubAdmin))
	shiftGroup.POST("", shiftHandler.Create)
	shiftGroup.GET("", shiftHandler.List)

	// --- Rider routes ---
	rider := auth.Group("/rider", middleware.RequireRoles(domain.RoleRider))
	rider.POST("/status", riderHandler.UpdateStatus)
	rider.GET("/queue", riderHandler.Queue)

	attendanceGroup := auth.Group("/attendance", middleware.RequireRoles(domain.RoleRider))
	attendanceGroup.POST("/mark", riderHandler.MarkAttendance)
	attendanceGroup.GET("/today", riderHandler.TodayAttendance)

	// --- Tracking routes ---
	tracking := auth.Group("/tracking")
	tracking.POST("/location", trackingHandler.UpdateLocation, middleware.RequireRoles(domain.RoleRider))
	tracking.GET("/live", trackingHandler.Live, middleware.RequireRoles(domain.RolePrimeAdmin, domain.RoleSubAdmin))

	return e
}
