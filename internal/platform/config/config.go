package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Engine holds the tunable parameters of the fulfillment recommendation
// engine: ranking weights, the fixed logistics profile of each fulfillment
// source, and the production throughput assumption. Values ship with defaults
// and can be overridden from a YAML file so that dispatch planners can adjust
// scoring without a code change.
type Engine struct {
	Scoring Scoring `yaml:"scoring"`

	NearWell    SourceProfile `yaml:"near_well"`
	Quarry      SourceProfile `yaml:"quarry"`
	Redirect    SourceProfile `yaml:"redirect"`
	Replacement SourceProfile `yaml:"replacement"`
	Production  struct {
		TonsPerHour       float64 `yaml:"tons_per_hour"`
		OnTimeProbability float64 `yaml:"on_time_probability"`
	} `yaml:"production"`

	DeliveryLeadHours int `yaml:"delivery_lead_hours"`
}

// Scoring holds the option-ranking weights.
type Scoring struct {
	ProbabilityWeight float64 `yaml:"probability_weight"`
	CostWeight        float64 `yaml:"cost_weight"`
	RuleBonus         float64 `yaml:"rule_bonus"`
}

// SourceProfile is the fixed logistics estimate for one fulfillment source.
type SourceProfile struct {
	ETAMinutes        int     `yaml:"eta_minutes"`
	DistanceKm        float64 `yaml:"distance_km"`
	Cost              float64 `yaml:"cost"`
	OnTimeProbability float64 `yaml:"on_time_probability"`
}

// DefaultEngine returns the engine parameters used when no override file is
// configured.
func DefaultEngine() Engine {
	var e Engine
	e.Scoring.ProbabilityWeight = 0.7
	e.Scoring.CostWeight = 0.3
	e.Scoring.RuleBonus = 0.05
	e.NearWell = SourceProfile{ETAMinutes: 45, DistanceKm: 25, Cost: 180, OnTimeProbability: 0.92}
	e.Quarry = SourceProfile{ETAMinutes: 210, DistanceKm: 140, Cost: 320, OnTimeProbability: 0.85}
	e.Redirect = SourceProfile{ETAMinutes: 50, DistanceKm: 15, Cost: 120, OnTimeProbability: 0.78}
	e.Replacement = SourceProfile{ETAMinutes: 60, DistanceKm: 30, Cost: 150, OnTimeProbability: 0.9}
	e.Production.TonsPerHour = 150
	e.Production.OnTimeProbability = 0.95
	e.DeliveryLeadHours = 2
	return e
}

// LoadEngine reads engine parameters from the YAML file at path, layered on
// top of the defaults. An empty path returns the defaults unchanged.
func LoadEngine(path string) (Engine, error) {
	e := DefaultEngine()
	if path == "" {
		return e, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return e, fmt.Errorf("read engine config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &e); err != nil {
		return e, fmt.Errorf("parse engine config: %w", err)
	}
	if err := e.validate(); err != nil {
		return e, err
	}
	return e, nil
}

func (e Engine) validate() error {
	if e.Scoring.ProbabilityWeight < 0 || e.Scoring.CostWeight < 0 {
		return fmt.Errorf("scoring weights must be non-negative")
	}
	if e.Production.TonsPerHour <= 0 {
		return fmt.Errorf("production tons_per_hour must be positive")
	}
	if e.DeliveryLeadHours <= 0 {
		return fmt.Errorf("delivery_lead_hours must be positive")
	}
	return nil
}
