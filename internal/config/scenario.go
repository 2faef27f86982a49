package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"ec-simulator/internal/model"
)

// Scenario is the on-disk (YAML) and on-wire (JSON) shape of a simulation
// input. Every field is optional: unset fields keep the value of the preset
// or of model.DefaultConfig. Numbers are pointers so an explicit 0 (e.g. a
// CPC of 0) is distinguishable from "not set".
type Scenario struct {
	// Optional: load a base scenario from a separate YAML (e.g. examples/scenarios/*.yaml).
	// Fields set here override the preset.
	PresetFile  string `yaml:"preset_file" json:"preset_file,omitempty"`
	Name        string `yaml:"name" json:"name,omitempty"`
	Description string `yaml:"description" json:"description,omitempty"`

	Mode         string   `yaml:"mode" json:"mode,omitempty" validate:"omitempty,oneof=single multi"`
	Marketplaces []string `yaml:"marketplaces" json:"marketplaces,omitempty" validate:"omitempty,dive,oneof=amazon rakuten yahoo"`

	General   GeneralConfig   `yaml:"general" json:"general"`
	Marketing MarketingConfig `yaml:"marketing" json:"marketing"`
	Amazon    AmazonConfig    `yaml:"amazon" json:"amazon"`
	Rakuten   RakutenConfig   `yaml:"rakuten" json:"rakuten"`
	Yahoo     YahooConfig     `yaml:"yahoo" json:"yahoo"`

	Seasonality []float64             `yaml:"seasonality" json:"seasonality,omitempty" validate:"omitempty,len=12,dive,gt=0"`
	Plans       map[string]PlanConfig `yaml:"plans" json:"plans,omitempty" validate:"omitempty,dive,keys,oneof=conservative balanced aggressive,endkeys"`
}

type GeneralConfig struct {
	CurrentMonthlySales *float64 `yaml:"current_monthly_sales" json:"current_monthly_sales,omitempty" validate:"omitempty,gte=0"`
	AverageOrderValue   *float64 `yaml:"average_order_value" json:"average_order_value,omitempty" validate:"omitempty,gt=0"`
	COGSRate            *float64 `yaml:"cogs_rate" json:"cogs_rate,omitempty" validate:"omitempty,gte=0,lte=1"`
	OrganicVisits       *float64 `yaml:"organic_visits" json:"organic_visits,omitempty" validate:"omitempty,gte=0"`
	BaseCVR             *float64 `yaml:"base_cvr" json:"base_cvr,omitempty" validate:"omitempty,gte=0,lte=1"`
}

type MarketingConfig struct {
	AdBudget   *float64 `yaml:"ad_budget" json:"ad_budget,omitempty" validate:"omitempty,gte=0"`
	TargetCPC  *float64 `yaml:"target_cpc" json:"target_cpc,omitempty" validate:"omitempty,gte=0"`
	TargetROAS *float64 `yaml:"target_roas" json:"target_roas,omitempty" validate:"omitempty,gte=0"`
}

type AmazonConfig struct {
	BuyBoxRate    *float64 `yaml:"buy_box_rate" json:"buy_box_rate,omitempty" validate:"omitempty,gte=0,lte=1"`
	FBAUsage      *float64 `yaml:"fba_usage" json:"fba_usage,omitempty" validate:"omitempty,gte=0,lte=1"`
	PrimeDayBoost *float64 `yaml:"prime_day_boost" json:"prime_day_boost,omitempty" validate:"omitempty,gte=1"`
}

type RakutenConfig struct {
	SuperSaleBoost  *float64 `yaml:"super_sale_boost" json:"super_sale_boost,omitempty" validate:"omitempty,gte=1"`
	PointMultiplier *float64 `yaml:"point_multiplier" json:"point_multiplier,omitempty" validate:"omitempty,gte=1"`
}

type YahooConfig struct {
	FiveDayBoost *float64 `yaml:"five_day_boost" json:"five_day_boost,omitempty" validate:"omitempty,gte=1"`
	PROptionRate *float64 `yaml:"pr_option_rate" json:"pr_option_rate,omitempty" validate:"omitempty,gte=0,lte=1"`
}

type PlanConfig struct {
	AdBudget *float64 `yaml:"ad_budget" json:"ad_budget,omitempty" validate:"omitempty,gte=0"`
	CVR      *float64 `yaml:"cvr" json:"cvr,omitempty" validate:"omitempty,gte=0"`
	Traffic  *float64 `yaml:"traffic" json:"traffic,omitempty" validate:"omitempty,gte=0"`
}

// Load reads, merges and validates a scenario file.
func Load(path string) (*Scenario, error) {
	s, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// LoadUnchecked loads and merges a scenario, but does not validate it.
// Useful for debugging/printing partial scenarios.
func LoadUnchecked(path string) (*Scenario, error) {
	s, err := readScenario(path)
	if err != nil {
		return nil, err
	}
	if s.PresetFile != "" {
		presetPath := s.PresetFile
		if !filepath.IsAbs(presetPath) {
			// Prefer paths relative to the scenario file, then fall back to the cwd.
			cand := filepath.Join(filepath.Dir(path), presetPath)
			if _, err := os.Stat(cand); err == nil {
				presetPath = cand
			}
		}
		preset, err := readScenario(presetPath)
		if err != nil {
			return nil, fmt.Errorf("preset_file: %w", err)
		}
		merged := MergeScenario(*preset, *s)
		merged.PresetFile = s.PresetFile
		s = &merged
	}
	return s, nil
}

func readScenario(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Scenario
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &s, nil
}

// Validate checks field ranges, then the assembled model config.
func (s *Scenario) Validate() error {
	if err := ValidateStruct(s); err != nil {
		return err
	}
	_, err := s.ToModel()
	return err
}

// ToModel overlays the scenario on model.DefaultConfig and validates the result.
func (s *Scenario) ToModel() (model.SimulationConfig, error) {
	cfg := s.Apply(model.DefaultConfig()).Normalize()
	if err := cfg.Validate(); err != nil {
		return model.SimulationConfig{}, err
	}
	return cfg, nil
}

// Apply overlays every set field of s onto base.
func (s *Scenario) Apply(base model.SimulationConfig) model.SimulationConfig {
	out := base

	if s.Mode != "" {
		out.Mode = model.Mode(s.Mode)
	}
	if s.Marketplaces != nil {
		out.Marketplaces = make([]model.Marketplace, 0, len(s.Marketplaces))
		for _, m := range s.Marketplaces {
			out.Marketplaces = append(out.Marketplaces, model.Marketplace(m))
		}
	}

	set(&out.General.CurrentMonthlySales, s.General.CurrentMonthlySales)
	set(&out.General.AverageOrderValue, s.General.AverageOrderValue)
	set(&out.General.COGSRate, s.General.COGSRate)
	set(&out.General.OrganicVisits, s.General.OrganicVisits)
	set(&out.General.BaseCVR, s.General.BaseCVR)

	set(&out.Marketing.AdBudget, s.Marketing.AdBudget)
	set(&out.Marketing.TargetCPC, s.Marketing.TargetCPC)
	set(&out.Marketing.TargetROAS, s.Marketing.TargetROAS)

	set(&out.Amazon.BuyBoxRate, s.Amazon.BuyBoxRate)
	set(&out.Amazon.FBAUsage, s.Amazon.FBAUsage)
	set(&out.Amazon.PrimeDayBoost, s.Amazon.PrimeDayBoost)

	set(&out.Rakuten.SuperSaleBoost, s.Rakuten.SuperSaleBoost)
	set(&out.Rakuten.PointMultiplier, s.Rakuten.PointMultiplier)

	set(&out.Yahoo.FiveDayBoost, s.Yahoo.FiveDayBoost)
	set(&out.Yahoo.PROptionRate, s.Yahoo.PROptionRate)

	if len(s.Seasonality) > 0 {
		out.Seasonality = append([]float64(nil), s.Seasonality...)
	}

	if len(s.Plans) > 0 {
		plans := make(map[model.PlanTier]model.PlanMultipliers, len(base.Plans)+len(s.Plans))
		for tier, m := range base.Plans {
			plans[tier] = m
		}
		defaults := model.DefaultPlanMultipliers()
		for name, pc := range s.Plans {
			tier := model.PlanTier(name)
			m, ok := plans[tier]
			if !ok {
				m = defaults[tier]
			}
			set(&m.AdBudget, pc.AdBudget)
			set(&m.CVR, pc.CVR)
			set(&m.Traffic, pc.Traffic)
			plans[tier] = m
		}
		out.Plans = plans
	}
	return out
}

// MergeScenario overlays the set fields of override onto base.
// This is used when loading a preset and then applying overrides from a file or request.
func MergeScenario(base, override Scenario) Scenario {
	out := base
	out.PresetFile = ""

	if override.Name != "" {
		out.Name = override.Name
	}
	if override.Description != "" {
		out.Description = override.Description
	}
	if override.Mode != "" {
		out.Mode = override.Mode
	}
	if override.Marketplaces != nil {
		out.Marketplaces = append([]string{}, override.Marketplaces...)
	}

	merge(&out.General.CurrentMonthlySales, override.General.CurrentMonthlySales)
	merge(&out.General.AverageOrderValue, override.General.AverageOrderValue)
	merge(&out.General.COGSRate, override.General.COGSRate)
	merge(&out.General.OrganicVisits, override.General.OrganicVisits)
	merge(&out.General.BaseCVR, override.General.BaseCVR)

	merge(&out.Marketing.AdBudget, override.Marketing.AdBudget)
	merge(&out.Marketing.TargetCPC, override.Marketing.TargetCPC)
	merge(&out.Marketing.TargetROAS, override.Marketing.TargetROAS)

	merge(&out.Amazon.BuyBoxRate, override.Amazon.BuyBoxRate)
	merge(&out.Amazon.FBAUsage, override.Amazon.FBAUsage)
	merge(&out.Amazon.PrimeDayBoost, override.Amazon.PrimeDayBoost)

	merge(&out.Rakuten.SuperSaleBoost, override.Rakuten.SuperSaleBoost)
	merge(&out.Rakuten.PointMultiplier, override.Rakuten.PointMultiplier)

	merge(&out.Yahoo.FiveDayBoost, override.Yahoo.FiveDayBoost)
	merge(&out.Yahoo.PROptionRate, override.Yahoo.PROptionRate)

	if len(override.Seasonality) > 0 {
		out.Seasonality = append([]float64(nil), override.Seasonality...)
	}

	if len(base.Plans) > 0 || len(override.Plans) > 0 {
		plans := make(map[string]PlanConfig, len(base.Plans)+len(override.Plans))
		for name, pc := range base.Plans {
			plans[name] = pc
		}
		for name, pc := range override.Plans {
			cur := plans[name]
			merge(&cur.AdBudget, pc.AdBudget)
			merge(&cur.CVR, pc.CVR)
			merge(&cur.Traffic, pc.Traffic)
			plans[name] = cur
		}
		out.Plans = plans
	}
	return out
}

func set(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func merge(dst **float64, v *float64) {
	if v != nil {
		x := *v
		*dst = &x
	}
}

// Float is a convenience for building scenarios in code.
func Float(v float64) *float64 { return &v }
