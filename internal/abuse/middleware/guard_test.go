package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"aegis/internal/abuse/models"
	platformMW "aegis/internal/platform/middleware"
)

type fakeTracker struct {
	result *models.TrackResult
	err    error

	lastIdentityID string
	lastKind       models.ActionKind
	calls          int
}

func (f *fakeTracker) Track(ctx context.Context, identityID string, kind models.ActionKind) (*models.TrackResult, error) {
	f.calls++
	f.lastIdentityID = identityID
	f.lastKind = kind
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type GuardTestSuite struct {
	suite.Suite
}

func TestGuardTestSuite(t *testing.T) {
	suite.Run(t, new(GuardTestSuite))
}

func (s *GuardTestSuite) serve(tracker *fakeTracker, kind models.ActionKind, identityID string) *httptest.ResponseRecorder {
	m := New(tracker, slog.Default())
	handler := m.Guard(kind)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodPost, "/sessions", nil)
	if identityID != "" {
		req = req.WithContext(platformMW.WithIdentity(req.Context(), identityID, "session-1"))
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func (s *GuardTestSuite) TestGuard() {
	s.Run("passes an allowed request through", func() {
		tracker := &fakeTracker{result: &models.TrackResult{Blocked: false}}

		rec := s.serve(tracker, models.ActionSession, "user-1")

		s.Equal(http.StatusCreated, rec.Code)
		s.Equal(1, tracker.calls)
		s.Equal("user-1", tracker.lastIdentityID)
		s.Equal(models.ActionSession, tracker.lastKind)
	})

	s.Run("rejects a blocked request with the ban payload", func() {
		expiresAt := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
		tracker := &fakeTracker{result: &models.TrackResult{
			Blocked:      true,
			BanExpiresAt: &expiresAt,
			Status:       "banned until " + expiresAt.Format(time.RFC3339),
		}}

		rec := s.serve(tracker, models.ActionConversation, "user-2")

		s.Equal(http.StatusForbidden, rec.Code)
		s.NotEmpty(rec.Header().Get("Retry-After"))

		var body models.AbuseBanResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
		s.Equal("abuse_ban", body.Error)
		s.Contains(body.Message, "banned until")
		s.Require().NotNil(body.RetryAt)
		s.True(body.RetryAt.Equal(expiresAt))
	})

	s.Run("a permanent block carries no retry hint", func() {
		tracker := &fakeTracker{result: &models.TrackResult{
			Blocked: true,
			Status:  "permanently banned",
		}}

		rec := s.serve(tracker, models.ActionSession, "user-3")

		s.Equal(http.StatusForbidden, rec.Code)
		s.Empty(rec.Header().Get("Retry-After"))

		var body models.AbuseBanResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
		s.Nil(body.RetryAt)
	})

	s.Run("allows the request when tracking errors", func() {
		tracker := &fakeTracker{err: errors.New("tracker down")}

		rec := s.serve(tracker, models.ActionSession, "user-4")

		s.Equal(http.StatusCreated, rec.Code)
	})

	s.Run("skips tracking without an identity on the context", func() {
		tracker := &fakeTracker{result: &models.TrackResult{Blocked: true}}

		rec := s.serve(tracker, models.ActionSession, "")

		s.Equal(http.StatusCreated, rec.Code)
		s.Equal(0, tracker.calls)
	})
}
