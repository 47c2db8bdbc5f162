package main

import (
	"fmt"
	"os"

	goredis "github.com/redis/go-redis/v9"

	"github.com/vocnet/skos-backend/internal/config"
	"github.com/vocnet/skos-backend/internal/db"
	"github.com/vocnet/skos-backend/internal/handlers"
	"github.com/vocnet/skos-backend/internal/oaipmh"
	"github.com/vocnet/skos-backend/internal/platform/envutil"
	"github.com/vocnet/skos-backend/internal/platform/logger"
	"github.com/vocnet/skos-backend/internal/platform/sparql"
	"github.com/vocnet/skos-backend/internal/repos"
	"github.com/vocnet/skos-backend/internal/server"
	"github.com/vocnet/skos-backend/internal/services"
)

func main() {
	// Config
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Logger
	log, err := logger.New(cfg.Mode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Postgres (tenant/collection registry)
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Triple store
	store, err := sparql.NewFromEnv(log)
	if err != nil {
		log.Error("Could not reach the triple store", "error", err)
		os.Exit(1)
	}

	// Redis (optional relation-vocabulary cache)
	var cache *goredis.Client
	if addr := envutil.String("REDIS_ADDR", ""); addr != "" {
		cache = goredis.NewClient(&goredis.Options{
			Addr:     addr,
			Password: envutil.String("REDIS_PASSWORD", ""),
		})
	}

	// Repos
	log.Info("Setting up repos...")
	tenantRepo := repos.NewTenantRepo(thePG, log)
	collectionRepo := repos.NewCollectionRepo(thePG, log)

	// Services
	log.Info("Setting up services...")
	conceptService := services.NewConceptService(store, log)
	relationService := services.NewRelationService(store, cache, log, cfg.Paging.MaxRows)
	personService := services.NewPersonService(store, log)
	schemeService := services.NewSchemeService(store, log)

	// Harvesting repository
	oaiRepository := oaipmh.NewRepository(conceptService, schemeService, collectionRepo, log, oaipmh.RepositoryConfig{
		Name:        cfg.Repository.Name,
		BaseURL:     cfg.Repository.BaseURL,
		Description: cfg.Repository.Description,
		AdminEmails: cfg.Repository.AdminEmails,
		PageSize:    cfg.Paging.PageSize,
	})

	// Handlers
	log.Info("Setting up handlers...")
	oaiHandler := handlers.NewOaiHandler(oaiRepository, cfg.Repository.BaseURL, log)
	conceptHandler := handlers.NewConceptHandler(conceptService, personService, tenantRepo, log)
	relationHandler := handlers.NewRelationHandler(relationService, log)

	// Router
	router := server.NewRouter(server.RouterConfig{
		Mode:            cfg.Mode,
		OaiHandler:      oaiHandler,
		ConceptHandler:  conceptHandler,
		RelationHandler: relationHandler,
	})

	log.Info("Listening", "port", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Server stopped", "error", err)
	}
}
