// Package config holds the static tuning knobs for the coordination layer.
// Values are validated once at startup; out-of-range values are reported and
// replaced by their defaults rather than aborting the run.
package config

import "fmt"

// Config carries every threshold the coordination layer consults. All tick
// quantities are simulation ticks. Valid ranges are noted per field and
// enforced by Sanitized.
type Config struct {
	// Safety assessment.
	SafetyCacheTicks     uint64 `yaml:"safety_cache_ticks"`     // Safety verdict TTL. [1, 100000]
	SafetySweepTicks     uint64 `yaml:"safety_sweep_ticks"`     // Min ticks between proactive sweeps. [1, 100000]
	MaxHostileAgents     int    `yaml:"max_hostile_agents"`     // Hostile agents above this mark a zone unsafe. [0, 100]
	MaxHostileStructures int    `yaml:"max_hostile_structures"` // Hostile structures above this mark a zone unsafe. [0, 100]
	MinControllerLevel   int    `yaml:"min_controller_level"`   // Owned/reserved zones below this are unsafe; 0 disables. [0, 8]

	// Accessibility assessment.
	AccessCacheTicks uint64 `yaml:"access_cache_ticks"` // Route verdict TTL. [1, 100000]

	// Resource discovery.
	SurveyDepth        int     `yaml:"survey_depth"`         // Max zone-hops explored from home. [0, 10]
	SurveyMaxNodes     int     `yaml:"survey_max_nodes"`     // Hard node-count ceiling per discovery run. [1, 500]
	SurveyCacheTicks   uint64  `yaml:"survey_cache_ticks"`   // Discovery result TTL per home zone. [1, 100000]
	SurveyRefreshTicks uint64  `yaml:"survey_refresh_ticks"` // Staleness at which the refresh job re-runs discovery. [1, 100000]
	MinDepositAmount   float64 `yaml:"min_deposit_amount"`   // Deposits below this are not worth a trip. [0, 1e9]
	RichZoneValue      float64 `yaml:"rich_zone_value"`      // Zone resource value granting the rich-zone priority bonus. [0, 1e9]

	// Profitability and migration.
	ProfitCacheTicks   uint64  `yaml:"profit_cache_ticks"`   // Score TTL per (node, agent). [1, 100000]
	ProfitMaxAgeTicks  uint64  `yaml:"profit_max_age_ticks"` // Scores older than this are purged. [1, 1000000]
	MigrationFloor     float64 `yaml:"migration_floor"`      // No migration while remaining amount exceeds this. [0, 1e9]
	MigrationMargin    float64 `yaml:"migration_margin"`     // Alternative must beat current by this many points. [0, 1000]
	ReplenishSoonTicks uint64  `yaml:"replenish_soon_ticks"` // Regen within this window earns the replenish bonus. [0, 10000]

	// Crowd-avoidance assignment.
	MaxAgentsPerNode int `yaml:"max_agents_per_node"` // Assignment capacity per deposit. [1, 50]

	// Zone transitions.
	TransitTimeoutTicks uint64 `yaml:"transit_timeout_ticks"` // Outbound travel older than this aborts. [1, 100000]
	MaxTransitFailures  int    `yaml:"max_transit_failures"`  // Failures before multi-zone mode is disabled. [1, 100]
	RetryCooldownTicks  uint64 `yaml:"retry_cooldown_ticks"`  // Idle ticks before a disabled agent may retry. [1, 10000000]

	// Step loop.
	StepBudget       float64 `yaml:"step_budget"`        // Compute budget per simulation step. [1, 1e6]
	ReportEveryTicks uint64  `yaml:"report_every_ticks"` // Coordination report log cadence. [1, 1e6]
}

// Default returns the tuning used by the stock simulation.
func Default() Config {
	return Config{
		SafetyCacheTicks:     100,
		SafetySweepTicks:     25,
		MaxHostileAgents:     0,
		MaxHostileStructures: 0,
		MinControllerLevel:   0,

		AccessCacheTicks: 200,

		SurveyDepth:        2,
		SurveyMaxNodes:     50,
		SurveyCacheTicks:   150,
		SurveyRefreshTicks: 50,
		MinDepositAmount:   100,
		RichZoneValue:      3000,

		ProfitCacheTicks:   20,
		ProfitMaxAgeTicks:  500,
		MigrationFloor:     200,
		MigrationMargin:    20,
		ReplenishSoonTicks: 30,

		MaxAgentsPerNode: 3,

		TransitTimeoutTicks: 150,
		MaxTransitFailures:  3,
		RetryCooldownTicks:  1000,

		StepBudget:       20,
		ReportEveryTicks: 100,
	}
}

// Problem describes one out-of-range configuration value.
type Problem struct {
	Field string // YAML field name
	Value string // The rejected value
	Valid string // Documented valid range
}

// String renders the problem the way the run command logs it.
func (p Problem) String() string {
	return fmt.Sprintf("%s=%s outside %s", p.Field, p.Value, p.Valid)
}

// Validate reports every value outside its documented range. An empty slice
// means the config is usable as-is.
func (c Config) Validate() []Problem {
	_, problems := c.Sanitized()
	return problems
}

// Sanitized returns a copy with every out-of-range value replaced by its
// default, plus one Problem per replacement. Invalid configuration is
// reported, never fatal.
func (c Config) Sanitized() (Config, []Problem) {
	def := Default()
	var problems []Problem

	reject := func(field, value, valid string) {
		problems = append(problems, Problem{Field: field, Value: value, Valid: valid})
	}
	ticks := func(field string, v *uint64, lo, hi uint64, dv uint64) {
		if *v < lo || *v > hi {
			reject(field, fmt.Sprintf("%d", *v), fmt.Sprintf("[%d, %d]", lo, hi))
			*v = dv
		}
	}
	count := func(field string, v *int, lo, hi int, dv int) {
		if *v < lo || *v > hi {
			reject(field, fmt.Sprintf("%d", *v), fmt.Sprintf("[%d, %d]", lo, hi))
			*v = dv
		}
	}
	amount := func(field string, v *float64, lo, hi float64, dv float64) {
		if *v < lo || *v > hi {
			reject(field, fmt.Sprintf("%g", *v), fmt.Sprintf("[%g, %g]", lo, hi))
			*v = dv
		}
	}

	ticks("safety_cache_ticks", &c.SafetyCacheTicks, 1, 100000, def.SafetyCacheTicks)
	ticks("safety_sweep_ticks", &c.SafetySweepTicks, 1, 100000, def.SafetySweepTicks)
	count("max_hostile_agents", &c.MaxHostileAgents, 0, 100, def.MaxHostileAgents)
	count("max_hostile_structures", &c.MaxHostileStructures, 0, 100, def.MaxHostileStructures)
	count("min_controller_level", &c.MinControllerLevel, 0, 8, def.MinControllerLevel)

	ticks("access_cache_ticks", &c.AccessCacheTicks, 1, 100000, def.AccessCacheTicks)

	count("survey_depth", &c.SurveyDepth, 0, 10, def.SurveyDepth)
	count("survey_max_nodes", &c.SurveyMaxNodes, 1, 500, def.SurveyMaxNodes)
	ticks("survey_cache_ticks", &c.SurveyCacheTicks, 1, 100000, def.SurveyCacheTicks)
	ticks("survey_refresh_ticks", &c.SurveyRefreshTicks, 1, 100000, def.SurveyRefreshTicks)
	amount("min_deposit_amount", &c.MinDepositAmount, 0, 1e9, def.MinDepositAmount)
	amount("rich_zone_value", &c.RichZoneValue, 0, 1e9, def.RichZoneValue)

	ticks("profit_cache_ticks", &c.ProfitCacheTicks, 1, 100000, def.ProfitCacheTicks)
	ticks("profit_max_age_ticks", &c.ProfitMaxAgeTicks, 1, 1000000, def.ProfitMaxAgeTicks)
	amount("migration_floor", &c.MigrationFloor, 0, 1e9, def.MigrationFloor)
	amount("migration_margin", &c.MigrationMargin, 0, 1000, def.MigrationMargin)
	ticks("replenish_soon_ticks", &c.ReplenishSoonTicks, 0, 10000, def.ReplenishSoonTicks)

	count("max_agents_per_node", &c.MaxAgentsPerNode, 1, 50, def.MaxAgentsPerNode)

	ticks("transit_timeout_ticks", &c.TransitTimeoutTicks, 1, 100000, def.TransitTimeoutTicks)
	count("max_transit_failures", &c.MaxTransitFailures, 1, 100, def.MaxTransitFailures)
	ticks("retry_cooldown_ticks", &c.RetryCooldownTicks, 1, 10000000, def.RetryCooldownTicks)

	amount("step_budget", &c.StepBudget, 1, 1e6, def.StepBudget)
	ticks("report_every_ticks", &c.ReportEveryTicks, 1, 1000000, def.ReportEveryTicks)

	return c, problems
}
