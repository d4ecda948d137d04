// Package bootstrap wires configuration, logging, storage and HTTP routing together.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	appAuth "github.com/curriculum/planner/internal/app/auth"
	appControllers "github.com/curriculum/planner/internal/app/controllers"
	appMigrations "github.com/curriculum/planner/internal/app/migrations"
	appRepos "github.com/curriculum/planner/internal/app/repositories"
	appRoutes "github.com/curriculum/planner/internal/app/routes"
	appServices "github.com/curriculum/planner/internal/app/services"
	"github.com/curriculum/planner/internal/config"
	"github.com/curriculum/planner/internal/db"
	"github.com/curriculum/planner/internal/importer"
	appMiddleware "github.com/curriculum/planner/internal/middleware"
	pkgAuth "github.com/curriculum/planner/internal/pkg/auth"
	"github.com/curriculum/planner/internal/pkg/filestorage"
	"github.com/curriculum/planner/internal/pkg/helpers"
	"github.com/curriculum/planner/internal/pkg/logger"
	"github.com/curriculum/planner/internal/seed"
)

// DefaultConfigPath is where the YAML configuration is looked up.
var DefaultConfigPath = filepath.Join("configs", "config.yaml")

// Dependencies holds all the application dependencies
type Dependencies struct {
	Services       *appServices.Services
	Controllers    *appControllers.Controllers
	AuthMiddleware *appMiddleware.AuthMiddleware
	JWTService     *pkgAuth.JWTService
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration (YAML, then .env, then the environment)
// and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(DefaultConfigPath, ".env")
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	lgr := SetupLogger(cfg)
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupLogger configures the package logger from cfg and returns it.
func SetupLogger(cfg *config.Config) zerolog.Logger {
	format := strings.ToLower(cfg.Logging.Format)
	return logger.Configure(logger.Config{
		Level:  logger.LogLevel(strings.ToLower(cfg.Logging.Level)),
		Pretty: format == "text" || format == "console",
	})
}

// ConnectDatabase opens the connection pool.
func ConnectDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")
	return database, nil
}

// SetupDatabase connects, applies pending migrations and seeds demo data when enabled.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	database, err := ConnectDatabase(ctx, cfg, lgr)
	if err != nil {
		return nil, err
	}

	lgr.Info().Msg("Running database migrations...")
	migrator, err := appMigrations.NewMigrator(database.Pool, lgr)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}
	if _, err := migrator.Up(ctx); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	if cfg.Seed.Enabled {
		if _, err := seed.CreateDefaultData(ctx, database, cfg, lgr); err != nil {
			// Seeding is a convenience; the API works without it.
			lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
		}
	}

	return database, nil
}

// NewJWTService builds the token service from the jwt section of cfg.
func NewJWTService(cfg *config.Config) *pkgAuth.JWTService {
	return pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 15*time.Minute),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 7*24*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})
}

// BuildDependencies initializes repositories, services and controllers over the database.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	repos := appRepos.NewRepositories(database.Pool)
	catalog := importer.TxImporter{DB: database, Logger: lgr}
	return BuildDependenciesFromStores(cfg, appServices.StoresFrom(repos), database.Pool, catalog, lgr)
}

// BuildDependenciesFromStores wires services and controllers over any store implementation.
// pinger backs the health check and may be nil.
func BuildDependenciesFromStores(cfg *config.Config, stores appServices.Stores, pinger appControllers.Pinger, catalog appControllers.CatalogImporter, lgr zerolog.Logger) (*Dependencies, error) {
	uploads, err := filestorage.NewLocalStorage(cfg.Import.UploadDir)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps := &Dependencies{Logger: lgr}
	deps.JWTService = NewJWTService(cfg)
	deps.Services = appServices.NewServices(stores, deps.JWTService, lgr)
	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.Services.AuthService, appAuth.NewAuthorizationService(stores.Users))
	deps.Controllers = appControllers.NewControllers(deps.Services, pinger, catalog, uploads, lgr)
	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	}

	if err := appMiddleware.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger(lgr))

	appRoutes.SetupSwagger(router)
	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)

	return router, nil
}

// WithCORS wraps handler with the CORS policy from cfg.
func WithCORS(cfg *config.Config, handler http.Handler) http.Handler {
	origins := cfg.Server.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", appMiddleware.RequestIDHeader},
		ExposedHeaders:   []string{appMiddleware.RequestIDHeader},
		AllowCredentials: true,
	})
	return c.Handler(handler)
}
