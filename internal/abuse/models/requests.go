package models

import (
	"strings"

	dErrors "aegis/pkg/domain-errors"
)

// DefaultBanMinutes is the admin ban duration applied when the request
// names none.
const DefaultBanMinutes = 1440

type BanIdentityRequest struct {
	IdentityID      string `json:"identity_id"`
	Reason          string `json:"reason,omitempty"` // defaults to "manual"
	Description     string `json:"description,omitempty"`
	DurationMinutes *int   `json:"duration_minutes,omitempty"` // defaults to DefaultBanMinutes
	Permanent       bool   `json:"permanent,omitempty"`
}

func (r *BanIdentityRequest) Normalize() {
	if r == nil {
		return
	}
	r.IdentityID = strings.TrimSpace(r.IdentityID)
	r.Reason = strings.TrimSpace(strings.ToLower(r.Reason))
	r.Description = strings.TrimSpace(r.Description)
	if r.Reason == "" {
		r.Reason = string(BanReasonManual)
	}
	if !r.Permanent && r.DurationMinutes == nil {
		minutes := DefaultBanMinutes
		r.DurationMinutes = &minutes
	}
}

// Follows validation order: Size -> Required -> Syntax -> Semantic.
func (r *BanIdentityRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}

	// Phase 1: Size checks
	if len(r.IdentityID) > 255 {
		return dErrors.New(dErrors.CodeValidation, "identity_id must be 255 characters or less")
	}
	if len(r.Description) > 500 {
		return dErrors.New(dErrors.CodeValidation, "description must be 500 characters or less")
	}

	// Phase 2: Required fields
	if r.IdentityID == "" {
		return dErrors.New(dErrors.CodeValidation, "identity_id is required")
	}

	// Phase 3: Syntax validation
	if !BanReason(r.Reason).IsValid() {
		return dErrors.New(dErrors.CodeValidation, "reason must be 'manual' or 'abuse_detected'")
	}

	// Phase 4: Semantic validation
	if r.Permanent && r.DurationMinutes != nil {
		return dErrors.New(dErrors.CodeValidation, "duration_minutes cannot be combined with permanent")
	}
	if r.DurationMinutes != nil && *r.DurationMinutes <= 0 {
		return dErrors.New(dErrors.CodeValidation, "duration_minutes must be positive")
	}

	return nil
}

type UnbanIdentityRequest struct {
	IdentityID string `json:"identity_id"`
}

func (r *UnbanIdentityRequest) Normalize() {
	if r == nil {
		return
	}
	r.IdentityID = strings.TrimSpace(r.IdentityID)
}

func (r *UnbanIdentityRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if len(r.IdentityID) > 255 {
		return dErrors.New(dErrors.CodeValidation, "identity_id must be 255 characters or less")
	}
	if r.IdentityID == "" {
		return dErrors.New(dErrors.CodeValidation, "identity_id is required")
	}
	return nil
}

type SetWindowRequest struct {
	WindowMinutes int `json:"window_minutes"`
}

func (r *SetWindowRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.WindowMinutes <= 0 {
		return dErrors.New(dErrors.CodeValidation, "window_minutes must be positive")
	}
	if r.WindowMinutes > 1440 {
		return dErrors.New(dErrors.CodeValidation, "window_minutes must be 1440 or less")
	}
	return nil
}
