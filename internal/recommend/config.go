package recommend

import "time"

// RuleConfig carries the window boundaries and thresholds of the pattern
// rules. Windows are configuration inputs, never constants in the rules.
type RuleConfig struct {
	// Window is the rolling lookback over incident history.
	Window time.Duration
	// RefreshWindow re-admits a decided dedup key once its newest
	// recommendation is older than this. Zero means never.
	RefreshWindow time.Duration
	// MinCategoryCount is the incident count per category that triggers
	// the training-gap rule.
	MinCategoryCount int
}

func (c RuleConfig) withDefaults() RuleConfig {
	if c.Window <= 0 {
		c.Window = 90 * 24 * time.Hour
	}
	if c.MinCategoryCount <= 0 {
		c.MinCategoryCount = 2
	}
	return c
}
