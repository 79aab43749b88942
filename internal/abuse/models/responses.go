package models

import "time"

// AbuseBanResponse is the guard's rejection payload. RetryAt is omitted
// for permanent bans.
type AbuseBanResponse struct {
	Error   string     `json:"error"`
	Message string     `json:"message"`
	RetryAt *time.Time `json:"retry_at,omitempty"`
}

type BanListResponse struct {
	Bans  []*BanRecord `json:"bans"`
	Count int          `json:"count"`
}

type UnbanResponse struct {
	IdentityID string `json:"identity_id"`
	Status     string `json:"status"`
}

type ResetStatsResponse struct {
	RowsReset int `json:"rows_reset"`
}

type SetWindowResponse struct {
	IdentityID    string `json:"identity_id"`
	WindowMinutes int    `json:"window_minutes"`
}
