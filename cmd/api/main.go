package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/materiales-portal/internal/application/auth"
	"github.com/jhoicas/materiales-portal/internal/application/dashboard"
	infrapdf "github.com/jhoicas/materiales-portal/internal/infrastructure/pdf"
	"github.com/jhoicas/materiales-portal/internal/infrastructure/postgres"
	"github.com/jhoicas/materiales-portal/internal/infrastructure/session"
	httpRouter "github.com/jhoicas/materiales-portal/internal/interfaces/http"
	"github.com/jhoicas/materiales-portal/pkg/config"
	"github.com/jhoicas/materiales-portal/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(cfg.DB.ConnectionString(), log.Component("migrate")); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Revocación de sesiones: Redis si está configurado; si no, memoria local (una sola instancia).
	var revoked auth.RevocationStore
	if cfg.Redis.Addr != "" {
		store, err := session.NewRedisStore(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer store.Close()
		revoked = store
	} else {
		log.Warn().Msg("REDIS_ADDR vacío: revocación de sesiones en memoria")
		revoked = session.NewMemoryStore()
	}

	txRunner := postgres.NewTxRunner(pool)
	userRepo := postgres.NewUserRepository(pool)
	profileRepo := postgres.NewProfileRepository(txRunner)
	recordsRepo := postgres.NewRecordsRepository(pool, txRunner)

	authUC := auth.NewAuthUseCase(userRepo, revoked, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	gate := auth.NewSessionGate(log.Component("auth"))

	dashLog := log.Component("dashboard")
	registry := dashboard.NewRegistry(cfg.Dashboard.ViewTTL, dashLog)
	aggregator := dashboard.NewStatsAggregator(recordsRepo, cfg.Dashboard.RecentLimit, dashLog)
	mounter := dashboard.NewMounter(gate, profileRepo, aggregator, registry, cfg.Dashboard.NotificationCapacity, dashLog)
	go registry.Run(ctx, time.Minute)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Materiales Portal API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "views": registry.Len()})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:       authUC,
		Gate:         gate,
		Mounter:      mounter,
		Registry:     registry,
		Statement:    infrapdf.NewStatementGenerator(),
		SignInPath:   cfg.Dashboard.SignInPath,
		RootPath:     cfg.Dashboard.RootPath,
		SecureCookie: cfg.HTTP.SecureCookie,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	stop()
	registry.CloseAll()

	log.Info().Msg("aplicación detenida")
}
