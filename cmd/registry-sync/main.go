package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/limkokwing/registry-sync/internal/cms"
	"github.com/limkokwing/registry-sync/internal/cms/browser"
	"github.com/limkokwing/registry-sync/internal/cms/fetcher"
	"github.com/limkokwing/registry-sync/internal/cms/session"
	"github.com/limkokwing/registry-sync/internal/handler"
	"github.com/limkokwing/registry-sync/internal/repository"
	"github.com/limkokwing/registry-sync/internal/scraper"
	"github.com/limkokwing/registry-sync/internal/service"
	"github.com/limkokwing/registry-sync/pkg/config"
	"github.com/limkokwing/registry-sync/pkg/database"
	"github.com/limkokwing/registry-sync/pkg/jobs"
	"github.com/limkokwing/registry-sync/pkg/logger"
	"github.com/limkokwing/registry-sync/pkg/metrics"
	corsmiddleware "github.com/limkokwing/registry-sync/pkg/middleware/cors"
	reqidmiddleware "github.com/limkokwing/registry-sync/pkg/middleware/requestid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewSQLite(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to open database", "error", err)
	}
	defer db.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	sess, err := session.New(cfg.CMS, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to init CMS session", "error", err)
	}
	login := browser.New(cfg.Browser, sess, logr)
	fetch := fetcher.New(sess, login, cfg.CMS.MaxRetries, cfg.CMS.RetryBaseDelay, logr, m)
	pusher := cms.NewPusher(fetch, logr, m)
	urls := cms.NewURLs(cfg.CMS.BaseURL)

	scrape := scraper.New(fetch, urls, logr)
	reconcile := repository.NewReconciler(db, logr)
	requests := repository.NewRequestRepository(db)
	assessments := repository.NewAssessmentRepository(db)
	validate := validator.New()

	pullSvc := service.NewPullService(scrape, reconcile, reconcile.Programs, cfg.Sync.ModuleWorkers, validate, logr)
	pushSvc := service.NewPushService(fetch, pusher, urls, scrape, reconcile,
		reconcile.Modules, reconcile.Semesters, reconcile.Programs, validate, logr)
	semesterSvc := service.NewSemesterService(fetch, pusher, urls, scrape, reconcile,
		reconcile.Programs, reconcile.Semesters, cfg.Sync.CampusCode, validate, logr)
	moduleSvc := service.NewModuleService(fetch, pusher, urls, scrape, reconcile,
		reconcile.Curriculum, reconcile.Semesters, reconcile.Programs, cfg.Sync.DefaultModuleAmount, validate, logr)
	structureSvc := service.NewStructureService(fetch, pusher, urls, reconcile.Programs, validate, logr)
	enrollSvc := service.NewEnrollmentService(requests, reconcile.Programs, semesterSvc, moduleSvc,
		scrape, reconcile, reconcile.Curriculum, validate, logr)
	gradeSvc := service.NewGradeService(reconcile.Modules, reconcile.Semesters, reconcile.Programs,
		reconcile.Curriculum, assessments, validate, logr)

	runner := jobs.NewRunner(cfg.Sync.JobHistory, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(metrics.GinMiddleware(m))
	r.Use(corsmiddleware.New(cfg.Server.AllowedOrigins))

	handler.RegisterRoutes(r, cfg.Server.APIToken, handler.Handlers{
		Sync:        handler.NewSyncHandler(pullSvc, pushSvc, structureSvc, runner),
		Semesters:   handler.NewSemesterHandler(semesterSvc, moduleSvc),
		Enrollments: handler.NewEnrollmentHandler(enrollSvc, runner),
		Grades:      handler.NewGradeHandler(gradeSvc),
		Jobs:        handler.NewJobHandler(runner),
		Health:      handler.NewHealthHandler(db, sess),
	}, registry)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "cms", cfg.CMS.BaseURL)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
