// Package detector implements the abuse classifier: a pure decision
// function over an identity's current counters and the configured base
// thresholds. It holds no state and performs no I/O; the service layer
// owns persistence and side effects.
package detector

import (
	"aegis/internal/abuse/config"
	"aegis/internal/abuse/models"
)

// Verdict is the classifier's determination for one evaluation.
type Verdict struct {
	Abusive     bool
	TotalEvents int

	// Which condition tripped, for audit logging. Empty when not abusive.
	Trigger string
}

const (
	TriggerSession      = "session_threshold"
	TriggerConversation = "conversation_threshold"
	TriggerTotal        = "total_threshold"
)

// Detector classifies attack stats against configured thresholds.
type Detector struct {
	cfg config.DetectorConfig
}

func New(cfg config.DetectorConfig) *Detector {
	return &Detector{cfg: cfg}
}

// Evaluate applies the three-way OR check. Base thresholds scale linearly
// with the identity's window length; the total threshold is the sum of the
// two scaled thresholds and is checked last.
func (d *Detector) Evaluate(stats *models.AttackStats) Verdict {
	if stats == nil {
		return Verdict{}
	}

	window := stats.WindowMinutes
	if window <= 0 {
		window = models.DefaultWindowMinutes
	}

	sessionLimit := d.cfg.SessionThreshold * window
	conversationLimit := d.cfg.ConversationThreshold * window
	totalLimit := sessionLimit + conversationLimit
	total := stats.TotalEvents()

	verdict := Verdict{TotalEvents: total}
	switch {
	case stats.SessionEvents > sessionLimit:
		verdict.Abusive = true
		verdict.Trigger = TriggerSession
	case stats.ConversationEvents > conversationLimit:
		verdict.Abusive = true
		verdict.Trigger = TriggerConversation
	case total > totalLimit:
		verdict.Abusive = true
		verdict.Trigger = TriggerTotal
	}
	return verdict
}
