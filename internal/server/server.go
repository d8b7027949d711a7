package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/forthandvale/backoffice/internal/config"
	"github.com/forthandvale/backoffice/internal/fxrate"
	fxratedomain "github.com/forthandvale/backoffice/internal/fxrate/domain"
	"github.com/forthandvale/backoffice/internal/imports"
	importsdomain "github.com/forthandvale/backoffice/internal/imports/domain"
	"github.com/forthandvale/backoffice/internal/metrics"
	"github.com/forthandvale/backoffice/internal/pricing"
	pricingdomain "github.com/forthandvale/backoffice/internal/pricing/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	metrics.Module,
	fxrate.Module,
	imports.Module,
	pricing.Module,
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, log *zap.Logger, m *metrics.Metrics) *gin.Engine {
	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))

	return r
}

func registerGin(cfg config.Config, log *zap.Logger, m *metrics.Metrics) *gin.Engine {
	return NewEngine(cfg, log, m)
}

func run(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine     *gin.Engine
	cfg        config.Config
	db         *gorm.DB
	genID      *snowflake.Node
	fxRateSvc  fxratedomain.Service
	importsSvc importsdomain.Service
	pricingSvc pricingdomain.Service
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	DB         *gorm.DB
	GenID      *snowflake.Node
	FxRateSvc  fxratedomain.Service
	ImportsSvc importsdomain.Service
	PricingSvc pricingdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:     p.Gin,
		cfg:        p.Cfg,
		db:         p.DB,
		genID:      p.GenID,
		fxRateSvc:  p.FxRateSvc,
		importsSvc: p.ImportsSvc,
		pricingSvc: p.PricingSvc,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	fxRates := api.Group("/fx-rates")
	{
		fxRates.GET("", s.GetFxRate)
		fxRates.GET("/latest", s.GetLatestFxRate)
	}

	imports := api.Group("/pricing/imports")
	{
		imports.POST("", s.CreateImport)
		imports.GET("/:id", s.GetImport)
		imports.GET("/:id/items", s.ListImportItems)
	}

	runs := api.Group("/pricing/runs")
	{
		runs.POST("", s.CreateRun)
		runs.GET("", s.ListRuns)
		runs.GET("/:id", s.GetRun)
		runs.PATCH("/:id", s.RenameRun)
		runs.POST("/:id/calculate", s.CalculateRun)
		runs.POST("/:id/duplicate", s.DuplicateRun)
		runs.GET("/:id/results", s.ListRunResults)
		runs.GET("/:id/export", s.ExportRun)
	}
}
