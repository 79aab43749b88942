package config

import "time"

// Config holds abuse detection configuration.
type Config struct {
	// Detector thresholds for the classifier
	Detector DetectorConfig

	// Escalation maps abuse magnitude to ban duration
	Escalation EscalationConfig

	// Sweeper schedules for the background reconciliation task
	Sweeper SweeperConfig
}

// DetectorConfig defines the classifier's base thresholds. Each base
// threshold is scaled linearly by the identity's window length; the total
// threshold is the sum of the two scaled thresholds.
type DetectorConfig struct {
	SessionThreshold      int // max session events per window minute
	ConversationThreshold int // max conversation events per window minute
}

// Tier is one row of the escalation duration table: totals strictly above
// MinTotalEvents earn Duration.
type Tier struct {
	MinTotalEvents int
	Duration       time.Duration
}

// EscalationConfig defines the tiered ban duration policy.
type EscalationConfig struct {
	// Tiers may appear in any order; the policy consults the highest
	// matching floor first.
	Tiers []Tier

	// DefaultDuration applies when no tier matches.
	DefaultDuration time.Duration
}

// SweeperConfig defines the background task's two schedules.
type SweeperConfig struct {
	StatsResetInterval time.Duration // zero all counters
	UnbanInterval      time.Duration // deactivate expired bans
}

// DefaultConfig returns the compatibility defaults: thresholds of 10
// events per window minute per kind, 1-day bans escalating to 3/7/14 days
// at totals of 50/100/200, hourly counter resets, and a 10 minute
// expired-ban scan.
func DefaultConfig() *Config {
	return &Config{
		Detector: DetectorConfig{
			SessionThreshold:      10,
			ConversationThreshold: 10,
		},
		Escalation: EscalationConfig{
			Tiers: []Tier{
				{MinTotalEvents: 200, Duration: 14 * 24 * time.Hour},
				{MinTotalEvents: 100, Duration: 7 * 24 * time.Hour},
				{MinTotalEvents: 50, Duration: 3 * 24 * time.Hour},
			},
			DefaultDuration: 24 * time.Hour,
		},
		Sweeper: SweeperConfig{
			StatsResetInterval: time.Hour,
			UnbanInterval:      10 * time.Minute,
		},
	}
}
