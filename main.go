package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ontohin26/ontohin/internal/auth"
	"github.com/ontohin26/ontohin/internal/config"
	"github.com/ontohin26/ontohin/internal/db"
	"github.com/ontohin26/ontohin/internal/export"
	"github.com/ontohin26/ontohin/internal/handler"
	"github.com/ontohin26/ontohin/internal/logging"
	"github.com/ontohin26/ontohin/internal/metrics"
	"github.com/ontohin26/ontohin/internal/middleware"
	"github.com/ontohin26/ontohin/internal/models"
	"github.com/ontohin26/ontohin/internal/publicform"
	"github.com/ontohin26/ontohin/internal/repository"
	"github.com/ontohin26/ontohin/internal/router"
	"github.com/ontohin26/ontohin/internal/service"
	"github.com/ontohin26/ontohin/internal/store"
	"github.com/ontohin26/ontohin/internal/store/memstore"
	"github.com/ontohin26/ontohin/internal/store/mongostore"
	"github.com/ontohin26/ontohin/internal/store/oxistore"
	"github.com/ontohin26/ontohin/internal/task"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger, closeLog, err := logging.New(cfg.Env, cfg.LogLevel, cfg.GelfAddr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()
	cfg.Log(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Document store
	st, err := openStore(ctx, cfg, cfg.PoolSize, logger)
	if err != nil {
		logger.Fatal("Failed to open document store", zap.String("backend", cfg.StoreBackend), zap.Error(err))
	}
	logger.Info("Document store ready", zap.String("backend", cfg.StoreBackend))

	// Repositories
	userRepo := repository.NewUserRepo(st)
	formRepo := repository.NewFormRepo(st)
	subRepo := repository.NewSubmissionRepo(st)
	eventRepo := repository.NewEventRepo(st)
	regRepo := repository.NewRegistrationRepo(st)
	announcementRepo := repository.NewAnnouncementRepo(st)
	galleryRepo := repository.NewGalleryRepo(st)
	linkRepo := repository.NewLinkRepo(st)

	// Services
	mc := metrics.NewCollector()
	runner := task.NewRunner(logger, cfg.ExportTimeout)
	runner.OnError(func(name string, err error) {
		var se *export.StatusError
		if errors.As(err, &se) {
			logger.Warn("Webhook rejected export", zap.String("url", se.URL), zap.Int("status", se.Status))
		}
	})
	exporter := export.NewClient(cfg.ExportTimeout, logger)

	tokens := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
	authSvc := service.NewAuthService(userRepo, tokens, logger)
	formSvc := service.NewFormService(formRepo, cfg.PublicOrigin, logger)
	pipeline := service.NewSubmissionService(subRepo, exporter, runner, mc, logger)
	inboxSvc := service.NewInboxService(subRepo, formRepo, logger)
	eventSvc := service.NewEventService(eventRepo, logger)
	regSvc := service.NewRegistrationService(regRepo, eventRepo, mc, logger)
	announcementSvc := service.NewAnnouncementService(announcementRepo, logger)
	gallerySvc := service.NewGalleryService(galleryRepo, linkRepo, logger)
	siteSvc := service.NewSiteService(st, logger)
	dashSvc := service.NewDashboardService(formRepo, subRepo, eventRepo, regRepo, mc)
	runtime := publicform.NewRuntime(formSvc, pipeline, func(err error) bool {
		return errors.Is(err, service.ErrFormNotFound)
	}, logger)

	// Router
	drain := middleware.NewDrain()
	r := router.New(tokens, cfg.CORSOrigin, drain, logger, router.Handlers{
		Auth:      handler.NewAuthHandler(authSvc, logger),
		Forms:     handler.NewFormHandler(formSvc, logger),
		Public:    handler.NewPublicHandler(runtime, logger),
		Inbox:     handler.NewInboxHandler(inboxSvc, logger),
		Events:    handler.NewEventHandler(eventSvc, regSvc, logger),
		Dashboard: handler.NewDashboardHandler(dashSvc, logger),
		Content:   handler.NewContentHandler(announcementSvc, gallerySvc, siteSvc, logger),
	})

	// Start serving at once; indexes and the admin account are set up in
	// the background on a dedicated connection so slow index builds never
	// hold up the request pool.
	go backgroundInit(ctx, cfg, st, logger.Named("init"))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv.RegisterOnShutdown(drain.Start)
	go func() {
		logger.Info("ontohin server starting", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown incomplete", zap.Error(err))
	}
	// Exports get their own budget; a slow HTTP drain must not eat it.
	exportCtx, cancelExports := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelExports()
	if err := runner.Wait(exportCtx); err != nil {
		logger.Warn("Exports still running at exit", zap.Error(err))
	}
	if err := st.Close(shutdownCtx); err != nil {
		logger.Warn("Store close failed", zap.Error(err))
	}
}

// openStore connects the backend named by STORE_BACKEND. poolSize only
// applies to oxidb.
func openStore(ctx context.Context, cfg *config.Config, poolSize int, log *zap.Logger) (store.DocumentStore, error) {
	switch cfg.StoreBackend {
	case "memory":
		return memstore.New(), nil
	case "oxidb":
		pool, err := db.NewPool(cfg.OxiDBHost, cfg.OxiDBPort, poolSize, log)
		if err != nil {
			return nil, err
		}
		return oxistore.New(pool, cfg.PollInterval, log), nil
	case "mongo":
		connectCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
		defer cancel()
		return mongostore.Connect(connectCtx, cfg.MongoURI, cfg.MongoDB, cfg.PollInterval, log)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func backgroundInit(ctx context.Context, cfg *config.Config, main store.DocumentStore, log *zap.Logger) {
	log.Info("Background init: starting")
	st := main
	if cfg.StoreBackend == "oxidb" {
		dedicated, err := openStore(ctx, cfg, 1, log)
		if err != nil {
			log.Warn("Init connection failed, using main pool", zap.Error(err))
		} else {
			st = dedicated
			defer dedicated.Close(context.Background())
		}
	}

	for name, ensure := range map[string]func(context.Context) error{
		"users":         repository.NewUserRepo(st).EnsureIndexes,
		"forms":         repository.NewFormRepo(st).EnsureIndexes,
		"submissions":   repository.NewSubmissionRepo(st).EnsureIndexes,
		"events":        repository.NewEventRepo(st).EnsureIndexes,
		"registrations": repository.NewRegistrationRepo(st).EnsureIndexes,
		"announcements": repository.NewAnnouncementRepo(st).EnsureIndexes,
		"gallery":       repository.NewGalleryRepo(st).EnsureIndexes,
		"metadata":      repository.NewSectionRepo[models.About](st, models.SectionAbout).EnsureIndexes,
	} {
		start := time.Now()
		if err := ensure(ctx); err != nil {
			log.Warn("Index creation failed", zap.String("collection", name), zap.Error(err))
			continue
		}
		log.Info("Indexes ready", zap.String("collection", name), zap.Duration("took", time.Since(start)))
	}

	authSvc := service.NewAuthService(repository.NewUserRepo(st), auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL), log)
	if err := authSvc.SeedAdmin(ctx, cfg.AdminEmail, cfg.AdminPass); err != nil {
		log.Warn("Failed to seed admin", zap.Error(err))
		return
	}
	log.Info("Background init: all done")
}
