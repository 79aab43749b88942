// Package escalation maps observed abuse magnitude to a ban duration.
// The tier table is configuration, not law: callers may tune it, but the
// defaults are preserved for compatibility with existing deployments.
package escalation

import (
	"sort"
	"time"

	"aegis/internal/abuse/config"
)

// Policy selects a ban duration for a total event count.
type Policy struct {
	tiers           []config.Tier
	defaultDuration time.Duration
}

func New(cfg config.EscalationConfig) *Policy {
	tiers := make([]config.Tier, len(cfg.Tiers))
	copy(tiers, cfg.Tiers)
	// Normalize ordering so the highest tier is consulted first regardless
	// of how the config was written.
	sort.Slice(tiers, func(i, j int) bool {
		return tiers[i].MinTotalEvents > tiers[j].MinTotalEvents
	})
	return &Policy{
		tiers:           tiers,
		defaultDuration: cfg.DefaultDuration,
	}
}

// Duration returns the ban duration for the given total event count.
// Totals strictly above a tier's floor earn that tier; the result is
// non-decreasing in totalEvents.
func (p *Policy) Duration(totalEvents int) time.Duration {
	for _, tier := range p.tiers {
		if totalEvents > tier.MinTotalEvents {
			return tier.Duration
		}
	}
	return p.defaultDuration
}

// DurationMinutes is Duration rounded down to whole minutes, the unit the
// ban registry persists.
func (p *Policy) DurationMinutes(totalEvents int) int {
	return int(p.Duration(totalEvents) / time.Minute)
}
