package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ec-simulator/internal/api/models"
	"ec-simulator/internal/insight"
	"ec-simulator/internal/logger"
	"ec-simulator/internal/metrics"
)

// InsightHandler serves the analytics dashboard and its AI commentary.
type InsightHandler struct {
	source   insight.Source
	analyzer *insight.Analyzer
	timeout  time.Duration
	log      *logger.Logger
	metrics  *metrics.Metrics
}

// NewInsightHandler creates an insight handler. A zero timeout leaves the request context as is.
func NewInsightHandler(source insight.Source, completer insight.Completer, timeout time.Duration, log *logger.Logger, m *metrics.Metrics) *InsightHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &InsightHandler{
		source:   source,
		analyzer: insight.NewAnalyzer(completer),
		timeout:  timeout,
		log:      log,
		metrics:  m,
	}
}

// GetSnapshot handles GET /api/v1/insight/snapshot?period=daily|weekly|monthly
func (h *InsightHandler) GetSnapshot(c *gin.Context) {
	period, err := insight.ParsePeriod(c.Query("period"))
	if err != nil {
		respondError(c, http.StatusBadRequest, models.CodeInvalidRequest, err.Error(), nil)
		return
	}

	snap, err := h.source.Snapshot(c.Request.Context())
	if err != nil {
		h.log.Error(c.Request.Context(), "insight.snapshot_failed", err)
		respondError(c, http.StatusInternalServerError, models.CodeSourceFailed, err.Error(), nil)
		return
	}
	c.JSON(http.StatusOK, insight.BuildDashboard(snap, period, insight.DefaultTopPages))
}

// Analyze handles POST /api/v1/insight/analyze
func (h *InsightHandler) Analyze(c *gin.Context) {
	var req models.InsightAnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, models.CodeInvalidRequest, err.Error(), nil)
		return
	}
	period, err := insight.ParsePeriod(req.Period)
	if err != nil {
		respondError(c, http.StatusBadRequest, models.CodeInvalidRequest, err.Error(), nil)
		return
	}
	modelName, err := insight.ResolveModel(req.Model)
	if err != nil {
		respondError(c, http.StatusBadRequest, models.CodeInvalidRequest, err.Error(),
			map[string]interface{}{"supported_models": insight.SupportedModels})
		return
	}

	ctx := c.Request.Context()
	snap, err := h.source.Snapshot(ctx)
	if err != nil {
		h.log.Error(ctx, "insight.snapshot_failed", err)
		respondError(c, http.StatusInternalServerError, models.CodeSourceFailed, err.Error(), nil)
		return
	}

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	commentary, err := h.analyzer.Analyze(ctx, req.APIKey, modelName, insight.Rollup(snap.Series, period))
	if errors.Is(err, insight.ErrMissingAPIKey) {
		respondError(c, http.StatusBadRequest, models.CodeMissingAPIKey, "an API key is required for AI commentary", nil)
		return
	}
	h.metrics.ObserveCompletion(modelName, err)
	if err != nil {
		h.log.Warn(h.log.WithFields(ctx, map[string]any{"model": modelName, "error": err.Error()}), "insight.completion_failed")
		var cerr *insight.CompletionError
		if errors.As(err, &cerr) {
			respondError(c, http.StatusBadGateway, models.CodeCompletionFailed, cerr.Message,
				map[string]interface{}{"status_code": cerr.StatusCode, "status": cerr.Status})
			return
		}
		respondError(c, http.StatusBadGateway, models.CodeCompletionFailed, err.Error(), nil)
		return
	}

	c.JSON(http.StatusOK, models.InsightAnalyzeResponse{
		Model:      modelName,
		Period:     period,
		Commentary: commentary,
	})
}
