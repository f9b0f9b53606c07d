package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/aimd54/promotion-board/internal/api"
	"github.com/aimd54/promotion-board/internal/cache"
	"github.com/aimd54/promotion-board/internal/config"
	"github.com/aimd54/promotion-board/internal/models"
	"github.com/aimd54/promotion-board/internal/repository"
	"github.com/aimd54/promotion-board/internal/service/applications"
	"github.com/aimd54/promotion-board/internal/service/catalog"
	"github.com/aimd54/promotion-board/internal/service/promotions"
	"github.com/aimd54/promotion-board/internal/service/templates"
	"github.com/aimd54/promotion-board/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	log.Info().
		Str("environment", cfg.Server.Environment).
		Int("port", cfg.Server.Port).
		Msg("Starting promotion board")

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := repository.NewDB(&cfg.Database.Postgres, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}
	log.Info().Msg("Database migrations applied")

	var previewCache cache.Cache
	if cfg.Cache.Enabled {
		redisCache, err := cache.NewRedis(&cfg.Database.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisCache.Close()
		previewCache = redisCache
		log.Info().
			Str("host", cfg.Database.Redis.Host).
			Int("ttl_seconds", cfg.Cache.TTLSeconds).
			Msg("Validation preview cache enabled")
	}

	catalogRepo := repository.NewCatalogRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	applicationRepo := repository.NewApplicationRepository(db)
	promotionRepo := repository.NewPromotionRepository(db)
	reservationRepo := repository.NewReservationRepository(db)

	if cfg.Seed.Path != "" {
		if err := applySeed(cfg.Seed.Path, catalogRepo, templateRepo, log); err != nil {
			log.Fatal().Err(err).Str("path", cfg.Seed.Path).Msg("Failed to apply seed file")
		}
	}

	catalogSvc := catalog.NewService(catalogRepo, log)
	templateSvc := templates.NewService(templateRepo, promotionRepo, log)
	applicationSvc := applications.NewService(applicationRepo, catalogRepo, reservationRepo, log)
	promotionSvc := promotions.NewService(
		promotionRepo,
		templateRepo,
		applicationRepo,
		reservationRepo,
		previewCache,
		time.Duration(cfg.Cache.TTLSeconds)*time.Second,
		log,
	)

	handler := api.NewHandler(catalogSvc, templateSvc, applicationSvc, promotionSvc, log)
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	router := api.NewRouter(handler, db, metricsPath, log)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("address", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Shutdown complete")
}

// applySeed creates any catalog badges and templates from the seed file that
// do not exist yet. Badges match by name, templates by path and step.
func applySeed(path string, catalogRepo *repository.CatalogRepository, templateRepo *repository.TemplateRepository, log *logger.Logger) error {
	seed, err := config.LoadSeed(path)
	if err != nil {
		return err
	}

	created := 0
	for _, sb := range seed.CatalogBadges {
		_, err := catalogRepo.GetByName(sb.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up catalog badge %q: %w", sb.Name, err)
		}
		badge := &models.CatalogBadge{
			Name:        sb.Name,
			Description: sb.Description,
			Category:    models.BadgeCategory(sb.Category),
			Level:       models.BadgeLevel(sb.Level),
			Version:     1,
			Status:      models.CatalogBadgeActive,
		}
		if !models.ValidCategory(badge.Category) || !models.ValidLevel(badge.Level) {
			return fmt.Errorf("seed catalog badge %q has invalid category or level", sb.Name)
		}
		if err := catalogRepo.Create(badge); err != nil {
			return fmt.Errorf("failed to seed catalog badge %q: %w", sb.Name, err)
		}
		created++
	}

	for _, st := range seed.Templates {
		pathName := models.PromotionPath(st.Path)
		toLevel, ok := models.NextLevel(pathName, st.FromLevel)
		if !ok {
			return fmt.Errorf("seed template %s/%s has no next level", st.Path, st.FromLevel)
		}
		_, err := templateRepo.GetByStep(pathName, st.FromLevel, toLevel)
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up template %s/%s: %w", st.Path, st.FromLevel, err)
		}

		rules := make([]models.TemplateRule, 0, len(st.Rules))
		for _, r := range st.Rules {
			rules = append(rules, models.TemplateRule{
				Category: r.Category,
				Level:    models.BadgeLevel(r.Level),
				Count:    r.Count,
			})
		}
		raw, err := json.Marshal(rules)
		if err != nil {
			return fmt.Errorf("failed to encode rules for template %s/%s: %w", st.Path, st.FromLevel, err)
		}
		tpl := &models.PromotionTemplate{
			Path:      pathName,
			FromLevel: st.FromLevel,
			ToLevel:   toLevel,
			Rules:     raw,
			IsActive:  true,
		}
		if err := templateRepo.Create(tpl); err != nil {
			return fmt.Errorf("failed to seed template %s/%s: %w", st.Path, st.FromLevel, err)
		}
		created++
	}

	if created > 0 {
		log.Info().Int("created", created).Str("path", path).Msg("Seed data applied")
	}
	return nil
}
