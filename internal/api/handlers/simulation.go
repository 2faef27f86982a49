package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ec-simulator/internal/analysis"
	"ec-simulator/internal/api/models"
	"ec-simulator/internal/config"
	"ec-simulator/internal/logger"
	"ec-simulator/internal/metrics"
	"ec-simulator/internal/model"
	"ec-simulator/internal/simulation"
)

const exportFilename = "ec_simulation_result.csv"

// SimulationHandler runs scenarios through the memoized engine.
type SimulationHandler struct {
	runner    *simulation.Memoized
	presetDir string
	policy    analysis.Policy
	log       *logger.Logger
	metrics   *metrics.Metrics
}

// NewSimulationHandler creates a simulation handler. A nil runner runs uncached.
func NewSimulationHandler(runner *simulation.Memoized, presetDir string, policy analysis.Policy, log *logger.Logger, m *metrics.Metrics) *SimulationHandler {
	if runner == nil {
		runner = simulation.NewMemoized(nil, nil)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &SimulationHandler{
		runner:    runner,
		presetDir: presetDir,
		policy:    policy,
		log:       log,
		metrics:   m,
	}
}

// RunSimulation handles POST /api/v1/simulations
func (h *SimulationHandler) RunSimulation(c *gin.Context) {
	var req models.SimulationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, models.CodeInvalidRequest, err.Error(), nil)
		return
	}

	runID := uuid.NewString()
	ctx := h.log.WithRunID(c.Request.Context(), runID)

	name, res, cached, ok := h.simulate(c, req)
	if !ok {
		return
	}

	report := analysis.Analyze(res, h.policy)
	h.log.Info(h.log.WithFields(ctx, map[string]any{
		"mode":        string(res.Config.Mode),
		"rows":        len(res.Rows),
		"cached":      cached,
		"recommended": string(report.Recommendation.Plan),
	}), "simulation.complete")

	resp := models.SimulationResponse{
		RunID:    runID,
		Name:     name,
		Cached:   cached,
		RowCount: len(res.Rows),
		Report:   report,
	}
	if req.IncludeRows {
		resp.Rows = models.NewRowViews(res.Rows)
	}
	c.JSON(http.StatusOK, resp)
}

// ExportSimulation handles POST /api/v1/simulations/export
func (h *SimulationHandler) ExportSimulation(c *gin.Context) {
	var req models.SimulationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, models.CodeInvalidRequest, err.Error(), nil)
		return
	}

	_, res, _, ok := h.simulate(c, req)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, exportFilename))
	c.Status(http.StatusOK)
	if err := simulation.WriteRowsCSV(c.Writer, res.Rows, simulation.CSVOptions{BOM: req.WithBOM()}); err != nil {
		// Headers are already sent; all that is left is to record the failure.
		_ = c.Error(err)
		h.log.Error(c.Request.Context(), "simulation.export_failed", err)
	}
}

// simulate resolves the scenario and runs it, writing the error response itself on failure.
func (h *SimulationHandler) simulate(c *gin.Context, req models.SimulationRequest) (string, *simulation.Result, bool, bool) {
	scenario, err := h.resolveScenario(req)
	if err != nil {
		if errors.Is(err, config.ErrPresetNotFound) {
			respondError(c, http.StatusNotFound, models.CodePresetNotFound, err.Error(), map[string]interface{}{"preset": req.Preset})
			return "", nil, false, false
		}
		respondError(c, http.StatusInternalServerError, models.CodeInternal, err.Error(), nil)
		return "", nil, false, false
	}

	cfg, err := h.buildConfig(scenario)
	if err != nil {
		respondError(c, http.StatusBadRequest, models.CodeInvalidConfig, err.Error(), validationDetails(err))
		return "", nil, false, false
	}

	start := time.Now()
	res, cached, err := h.runner.Run(c.Request.Context(), cfg)
	if err != nil {
		respondError(c, http.StatusBadRequest, models.CodeInvalidConfig, err.Error(), nil)
		return "", nil, false, false
	}
	h.metrics.ObserveSimulation(string(res.Config.Mode), cached, len(res.Rows), time.Since(start))
	return scenario.Name, res, cached, true
}

// resolveScenario overlays the request scenario on the named preset, if any.
// A preset_file inside a request body is never followed.
func (h *SimulationHandler) resolveScenario(req models.SimulationRequest) (config.Scenario, error) {
	scenario := req.Scenario
	scenario.PresetFile = ""
	if req.Preset == "" {
		return scenario, nil
	}
	preset, err := config.LoadPreset(h.presetDir, req.Preset)
	if err != nil {
		return config.Scenario{}, err
	}
	return config.MergeScenario(*preset, scenario), nil
}

func (h *SimulationHandler) buildConfig(s config.Scenario) (model.SimulationConfig, error) {
	if err := config.ValidateStruct(&s); err != nil {
		return model.SimulationConfig{}, err
	}
	return s.ToModel()
}
