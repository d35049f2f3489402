// migrate aplica las migraciones pendientes y carga los datos iniciales.
//
// Uso: go run ./cmd/migrate [-geo ruta/Municipios.xml]
// Sin -geo no se carga el catálogo geográfico.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/jhoicas/clinica-api/internal/application/auth"
	"github.com/jhoicas/clinica-api/internal/application/engine"
	"github.com/jhoicas/clinica-api/internal/infrastructure/geoimport"
	"github.com/jhoicas/clinica-api/internal/infrastructure/postgres"
	"github.com/jhoicas/clinica-api/pkg/config"
	"github.com/jhoicas/clinica-api/pkg/logger"
)

func main() {
	geoPath := flag.String("geo", "", "Municipios.xml con departamentos y ciudades")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel}).WithComponent("migrate")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	applied, err := postgres.Migrate(ctx, pool, log)
	if err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}
	log.Info().Int("applied", applied).Msg("migraciones al día")

	opt := engine.SeedOptions{
		AdminUsername: cfg.Seed.AdminUsername,
		AdminPassword: cfg.Seed.AdminPassword,
	}
	if opt.AdminPassword == "" {
		log.Warn().Msg("SEED_ADMIN_PASSWORD vacío: no se crea el usuario admin")
	}
	if *geoPath != "" {
		f, err := os.Open(*geoPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", *geoPath).Msg("abrir catálogo geográfico")
		}
		deps, err := geoimport.Parse(f)
		f.Close()
		if err != nil {
			log.Fatal().Err(err).Msg("leer catálogo geográfico")
		}
		for _, d := range deps {
			opt.Geography = append(opt.Geography, engine.GeoDepartment{Name: d.Name, Cities: d.Cities})
		}
	}

	eng := engine.New(postgres.NewTxRunner(pool), postgres.NewRepos(pool), engine.Options{
		Location:   cfg.App.Location(),
		BcryptCost: cfg.Engine.BcryptCost,
		JWT:        auth.JWTConfig{Secret: cfg.JWT.Secret, ExpMinutes: cfg.JWT.Expiration, Issuer: cfg.JWT.Issuer},
	})
	rep, err := eng.Seed(ctx, opt)
	if err != nil {
		log.Fatal().Err(err).Msg("datos iniciales")
	}
	log.Info().
		Int("item_types", rep.ItemTypes).
		Bool("admin", rep.Admin).
		Int("departments", rep.Departments).
		Int("cities", rep.Cities).
		Msg("datos iniciales cargados")
}
