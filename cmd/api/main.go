package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/clinica-api/internal/application/auth"
	"github.com/jhoicas/clinica-api/internal/application/engine"
	"github.com/jhoicas/clinica-api/internal/application/ports"
	"github.com/jhoicas/clinica-api/internal/domain/repository"
	"github.com/jhoicas/clinica-api/internal/infrastructure/memory"
	"github.com/jhoicas/clinica-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/clinica-api/internal/interfaces/http"
	"github.com/jhoicas/clinica-api/pkg/clock"
	"github.com/jhoicas/clinica-api/pkg/config"
	"github.com/jhoicas/clinica-api/pkg/logger"
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
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}

	ctx := context.Background()
	var (
		tx    ports.TxRunner
		repos repository.Repos
	)
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		store := memory.New()
		tx, repos = store, store.Repos()
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if _, err := postgres.Migrate(ctx, pool, log.WithComponent("migrate")); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		tx, repos = postgres.NewTxRunner(pool), postgres.NewRepos(pool)
	}

	eng := engine.New(tx, repos, engine.Options{
		Clock:       clock.System{},
		Location:    cfg.App.Location(),
		StrictStock: cfg.Engine.StrictStock,
		BcryptCost:  cfg.Engine.BcryptCost,
		JWT: auth.JWTConfig{
			Secret:     cfg.JWT.Secret,
			ExpMinutes: cfg.JWT.Expiration,
			Issuer:     cfg.JWT.Issuer,
		},
	})

	if cfg.Storage.Driver == config.StorageMemory {
		rep, err := eng.Seed(ctx, engine.SeedOptions{AdminUsername: cfg.Seed.AdminUsername, AdminPassword: cfg.Seed.AdminPassword})
		if err != nil {
			log.Fatal().Err(err).Msg("datos iniciales")
		}
		log.Info().Int("item_types", rep.ItemTypes).Bool("admin", rep.Admin).Msg("datos iniciales cargados")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Engine:    eng,
		JWTSecret: cfg.JWT.Secret,
		Log:       log,
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

	log.Info().Msg("aplicación detenida")
}
