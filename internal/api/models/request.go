package models

import "ec-simulator/internal/config"

// SimulationRequest is the body of POST /simulations and /simulations/export.
// Scenario fields override the named preset when both are given.
type SimulationRequest struct {
	Preset      string          `json:"preset,omitempty"`
	Scenario    config.Scenario `json:"scenario"`
	IncludeRows bool            `json:"include_rows,omitempty"`
	// BOM controls the UTF-8 byte order mark on CSV exports; defaults to true.
	BOM *bool `json:"bom,omitempty"`
}

// WithBOM reports whether the CSV export should start with a byte order mark.
func (r SimulationRequest) WithBOM() bool {
	return r.BOM == nil || *r.BOM
}

// InsightAnalyzeRequest asks for AI commentary on the current snapshot.
type InsightAnalyzeRequest struct {
	APIKey string `json:"api_key"`
	Model  string `json:"model,omitempty"`
	Period string `json:"period,omitempty"` // daily, weekly, monthly
}
