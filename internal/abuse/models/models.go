package models

import (
	"fmt"
	"time"

	dErrors "aegis/pkg/domain-errors"

	"github.com/google/uuid"
)

// DefaultWindowMinutes is the rolling window length assigned to newly
// tracked identities. Stored per row so individual identities can be
// tuned without redeploying.
const DefaultWindowMinutes = 1

// ActionKind classifies a tracked request-path event.
type ActionKind string

const (
	ActionSession      ActionKind = "session"
	ActionConversation ActionKind = "conversation"
)

func (k ActionKind) IsValid() bool {
	return k == ActionSession || k == ActionConversation
}

func (k ActionKind) String() string {
	return string(k)
}

// ParseActionKind creates an ActionKind from a string, validating it.
func ParseActionKind(s string) (ActionKind, error) {
	k := ActionKind(s)
	if !k.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid action kind: must be 'session' or 'conversation'")
	}
	return k, nil
}

// BanReason records why a ban was imposed.
type BanReason string

const (
	BanReasonManual        BanReason = "manual"
	BanReasonAbuseDetected BanReason = "abuse_detected"
)

func (r BanReason) IsValid() bool {
	return r == BanReasonManual || r == BanReasonAbuseDetected
}

// AttackStats holds per-identity event counters for the current window.
// Counters only grow between resets; the sweeper zeroes them on its long
// interval without deleting the row.
type AttackStats struct {
	IdentityID         string    `json:"identity_id"`
	SessionEvents      int       `json:"session_events"`
	ConversationEvents int       `json:"conversation_events"`
	WindowMinutes      int       `json:"window_minutes"`
	Flagged            bool      `json:"flagged"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// NewAttackStats creates a zeroed stats row with the default window.
func NewAttackStats(identityID string) (*AttackStats, error) {
	if identityID == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "identity_id cannot be empty")
	}
	return &AttackStats{
		IdentityID:    identityID,
		WindowMinutes: DefaultWindowMinutes,
	}, nil
}

// TotalEvents is the aggregate count the escalation policy keys off.
func (s *AttackStats) TotalEvents() int {
	return s.SessionEvents + s.ConversationEvents
}

// BanRecord is an identity's ban row. At most one record per identity is
// active at a time; deactivation is logical (Active=false), never a delete.
type BanRecord struct {
	ID              string     `json:"id"`
	IdentityID      string     `json:"identity_id"`
	Reason          BanReason  `json:"reason"`
	Description     string     `json:"description,omitempty"`
	DurationMinutes *int       `json:"duration_minutes,omitempty"` // nil means permanent
	ImposedAt       time.Time  `json:"imposed_at"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"` // nil when permanent
	Active          bool       `json:"active"`
}

// NewBanRecord creates an active ban starting at now. A nil duration
// produces a permanent ban with no expiry.
func NewBanRecord(identityID string, reason BanReason, description string, durationMinutes *int, now time.Time) (*BanRecord, error) {
	if identityID == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "identity_id cannot be empty")
	}
	if !reason.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "invalid ban reason")
	}
	if durationMinutes != nil && *durationMinutes <= 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "duration_minutes must be positive")
	}

	record := &BanRecord{
		ID:              uuid.NewString(),
		IdentityID:      identityID,
		Reason:          reason,
		Description:     description,
		DurationMinutes: durationMinutes,
		ImposedAt:       now,
		Active:          true,
	}
	if durationMinutes != nil {
		expiresAt := now.Add(time.Duration(*durationMinutes) * time.Minute)
		record.ExpiresAt = &expiresAt
	}
	return record, nil
}

// IsPermanent reports whether the ban has no expiry.
func (b *BanRecord) IsPermanent() bool {
	return b.ExpiresAt == nil
}

// IsExpired reports whether a temporary ban's expiry has passed.
// Permanent bans never expire.
func (b *BanRecord) IsExpired(now time.Time) bool {
	if b.ExpiresAt == nil {
		return false
	}
	return now.After(*b.ExpiresAt)
}

// StatusText renders a human-readable ban status for callers.
func (b *BanRecord) StatusText() string {
	if b.IsPermanent() {
		return "permanently banned"
	}
	return fmt.Sprintf("banned until %s", b.ExpiresAt.UTC().Format(time.RFC3339))
}

// TrackResult is the request-path guard's verdict for one tracked event.
type TrackResult struct {
	Blocked      bool       `json:"blocked"`
	BanExpiresAt *time.Time `json:"ban_expires_at,omitempty"` // nil when not blocked or ban is permanent
	Status       string     `json:"status,omitempty"`
}

// AbuseSummary combines counters and active ban detail for admin display.
type AbuseSummary struct {
	Stats *AttackStats `json:"stats"`
	Ban   *BanRecord   `json:"ban,omitempty"`
}
