package api

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"ec-simulator/internal/analysis"
	"ec-simulator/internal/api/handlers"
	"ec-simulator/internal/api/middleware"
	"ec-simulator/internal/api/models"
	"ec-simulator/internal/insight"
	"ec-simulator/internal/logger"
	"ec-simulator/internal/metrics"
	"ec-simulator/internal/simulation"
)

// Deps wires the router. Zero values fall back to uncached, unobserved defaults.
type Deps struct {
	Log       *logger.Logger
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer
	Runner    *simulation.Memoized
	Policy    *analysis.Policy
	Source    insight.Source
	Completer insight.Completer

	CompletionTimeout time.Duration
	PresetDir         string
	StaticDir         string
	CORSOrigins       []string
}

func NewRouter(d Deps) *gin.Engine {
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	policy := analysis.DefaultPolicy()
	if d.Policy != nil {
		policy = *d.Policy
	}
	if d.Source == nil {
		d.Source = insight.NewMockSource(time.Now().UnixNano())
	}
	if d.Completer == nil {
		d.Completer = insight.NewGeminiClient("", d.CompletionTimeout, d.Log)
	}

	router := gin.New()
	router.Use(middleware.RequestID(d.Log))
	router.Use(middleware.CORS(d.CORSOrigins))
	router.Use(middleware.Logger(d.Log))
	router.Use(middleware.Metrics(d.Metrics))
	router.Use(middleware.ErrorHandler(d.Log))

	simulationHandler := handlers.NewSimulationHandler(d.Runner, d.PresetDir, policy, d.Log, d.Metrics)
	catalogHandler := handlers.NewCatalogHandler(d.PresetDir, policy, d.Log)
	insightHandler := handlers.NewInsightHandler(d.Source, d.Completer, d.CompletionTimeout, d.Log, d.Metrics)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if d.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler(d.Gatherer)))
	}

	api := router.Group("/api/v1")
	{
		api.POST("/simulations", simulationHandler.RunSimulation)
		api.POST("/simulations/export", simulationHandler.ExportSimulation)

		api.GET("/plans", catalogHandler.ListPlans)
		api.GET("/marketplaces", catalogHandler.ListMarketplaces)
		api.GET("/presets", catalogHandler.ListPresets)

		api.GET("/insight/snapshot", insightHandler.GetSnapshot)
		api.POST("/insight/analyze", insightHandler.Analyze)
	}

	serveStatic(router, d.StaticDir, d.Log)
	return router
}

// serveStatic serves a pre-built SPA when staticDir exists. Unknown /api paths stay JSON 404s.
func serveStatic(router *gin.Engine, staticDir string, log *logger.Logger) {
	hasStatic := false
	if staticDir != "" {
		if info, err := os.Stat(staticDir); err == nil && info.IsDir() {
			hasStatic = true
			router.Static("/assets", filepath.Join(staticDir, "assets"))
			router.StaticFile("/favicon.ico", filepath.Join(staticDir, "favicon.ico"))
			log.Info(log.WithField(context.Background(), "static_dir", staticDir), "static.enabled")
		}
	}

	router.NoRoute(func(c *gin.Context) {
		if !hasStatic || strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error: models.ErrorDetail{Code: models.CodeNotFound, Message: "Not found"},
			})
			return
		}
		c.File(filepath.Join(staticDir, "index.html"))
	})
}
