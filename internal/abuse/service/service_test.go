package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"aegis/internal/abuse/config"
	"aegis/internal/abuse/models"
	banstore "aegis/internal/abuse/store/ban"
	statsstore "aegis/internal/abuse/store/stats"
	dErrors "aegis/pkg/domain-errors"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakePermissionStore struct {
	mu      sync.Mutex
	blocked map[string]bool
}

func newFakePermissionStore() *fakePermissionStore {
	return &fakePermissionStore{blocked: make(map[string]bool)}
}

func (p *fakePermissionStore) Block(ctx context.Context, identityID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.blocked[identityID] = true
	return nil
}

func (p *fakePermissionStore) Restore(ctx context.Context, identityID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.blocked[identityID] = false
	return nil
}

func (p *fakePermissionStore) isBlocked(identityID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.blocked[identityID]
}

type fakeSessionInvalidator struct {
	mu          sync.Mutex
	invalidated []string
}

func (f *fakeSessionInvalidator) InvalidateAll(ctx context.Context, identityID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, identityID)
	return nil
}

type fakeDirectory struct {
	known map[string]bool
}

func (f *fakeDirectory) Exists(ctx context.Context, identityID string) (bool, error) {
	return f.known[identityID], nil
}

type failingStatsStore struct {
	StatsStore
}

func (f *failingStatsStore) Increment(ctx context.Context, identityID string, kind models.ActionKind) (*models.AttackStats, error) {
	return nil, errors.New("store unavailable")
}

type ServiceTestSuite struct {
	suite.Suite
	ctx         context.Context
	clock       *fakeClock
	stats       *statsstore.InMemoryStatsStore
	bans        *banstore.InMemoryBanStore
	permissions *fakePermissionStore
	sessions    *fakeSessionInvalidator
	service     *Service
}

func TestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}

func (s *ServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	s.stats = statsstore.New()
	s.bans = banstore.New()
	s.permissions = newFakePermissionStore()
	s.sessions = &fakeSessionInvalidator{}

	svc, err := New(s.stats, s.bans, s.permissions, config.DefaultConfig(),
		WithClock(s.clock.Now),
		WithSessionInvalidator(s.sessions),
	)
	s.Require().NoError(err)
	s.service = svc
}

func (s *ServiceTestSuite) trackN(identityID string, kind models.ActionKind, n int) *models.TrackResult {
	var result *models.TrackResult
	for i := 0; i < n; i++ {
		var err error
		result, err = s.service.Track(s.ctx, identityID, kind)
		s.Require().NoError(err)
	}
	return result
}

func (s *ServiceTestSuite) TestNew() {
	s.Run("requires a stats store", func() {
		_, err := New(nil, s.bans, s.permissions, nil)
		s.Error(err)
	})

	s.Run("requires a ban store", func() {
		_, err := New(s.stats, nil, s.permissions, nil)
		s.Error(err)
	})

	s.Run("requires a permission store", func() {
		_, err := New(s.stats, s.bans, nil, nil)
		s.Error(err)
	})

	s.Run("defaults config when nil", func() {
		svc, err := New(s.stats, s.bans, s.permissions, nil)
		s.NoError(err)
		s.NotNil(svc)
	})
}

func (s *ServiceTestSuite) TestTrack() {
	s.Run("allows events at the session threshold", func() {
		result := s.trackN("user-at-limit", models.ActionSession, 10)
		s.False(result.Blocked)
	})

	s.Run("blocks the event past the session threshold", func() {
		result := s.trackN("user-over-limit", models.ActionSession, 11)
		s.True(result.Blocked)
		s.Require().NotNil(result.BanExpiresAt)
		s.Equal(s.clock.Now().Add(24*time.Hour), *result.BanExpiresAt)

		banned, status, err := s.service.IsBanned(s.ctx, "user-over-limit")
		s.NoError(err)
		s.True(banned)
		s.Contains(status, "banned until")
	})

	s.Run("blocks the event past the conversation threshold", func() {
		result := s.trackN("chat-flood", models.ActionConversation, 11)
		s.True(result.Blocked)
	})

	s.Run("blocks the identity permission and invalidates sessions", func() {
		s.trackN("user-banned", models.ActionSession, 11)
		s.True(s.permissions.isBlocked("user-banned"))
		s.Contains(s.sessions.invalidated, "user-banned")
	})

	s.Run("flags the identity on detection", func() {
		s.trackN("flagged-user", models.ActionSession, 11)
		stats, err := s.stats.Get(s.ctx, "flagged-user")
		s.Require().NoError(err)
		s.True(stats.Flagged)
	})

	s.Run("wider window raises the effective threshold", func() {
		s.Require().NoError(s.service.SetWindow(s.ctx, "tuned-user", 5))
		result := s.trackN("tuned-user", models.ActionSession, 11)
		s.False(result.Blocked)
	})

	s.Run("high totals escalate the ban duration", func() {
		// Seed counters directly so a single tracked event sees the
		// aggregate already deep in the top tier.
		for i := 0; i < 120; i++ {
			_, err := s.stats.Increment(s.ctx, "heavy-abuser", models.ActionSession)
			s.Require().NoError(err)
		}
		for i := 0; i < 89; i++ {
			_, err := s.stats.Increment(s.ctx, "heavy-abuser", models.ActionConversation)
			s.Require().NoError(err)
		}

		result, err := s.service.Track(s.ctx, "heavy-abuser", models.ActionSession)
		s.Require().NoError(err)
		s.True(result.Blocked)
		s.Require().NotNil(result.BanExpiresAt)
		s.Equal(s.clock.Now().Add(14*24*time.Hour), *result.BanExpiresAt)
	})

	s.Run("re-imposition overwrites the existing ban", func() {
		s.trackN("repeat-offender", models.ActionSession, 11)
		first, err := s.bans.GetActive(s.ctx, "repeat-offender")
		s.Require().NoError(err)
		s.Require().NotNil(first)

		s.trackN("repeat-offender", models.ActionSession, 1)
		second, err := s.bans.GetActive(s.ctx, "repeat-offender")
		s.Require().NoError(err)
		s.Require().NotNil(second)
		s.NotEqual(first.ID, second.ID)

		active, err := s.bans.ListActive(s.ctx)
		s.Require().NoError(err)
		count := 0
		for _, record := range active {
			if record.IdentityID == "repeat-offender" {
				count++
			}
		}
		s.Equal(1, count)
	})

	s.Run("allows the request when the counter write fails", func() {
		svc, err := New(&failingStatsStore{StatsStore: s.stats}, s.bans, s.permissions, config.DefaultConfig())
		s.Require().NoError(err)

		result, err := svc.Track(s.ctx, "unlucky-user", models.ActionSession)
		s.NoError(err)
		s.False(result.Blocked)
	})
}

func (s *ServiceTestSuite) TestBan() {
	s.Run("imposes a temporary ban", func() {
		minutes := 60
		record, err := s.service.Ban(s.ctx, "user-1", models.BanReasonManual, "policy violation", &minutes)
		s.Require().NoError(err)
		s.True(record.Active)
		s.Require().NotNil(record.ExpiresAt)
		s.Equal(s.clock.Now().Add(time.Hour), *record.ExpiresAt)
		s.True(s.permissions.isBlocked("user-1"))
		s.Contains(s.sessions.invalidated, "user-1")
	})

	s.Run("imposes a permanent ban", func() {
		record, err := s.service.Ban(s.ctx, "user-2", models.BanReasonManual, "severe violation", nil)
		s.Require().NoError(err)
		s.True(record.IsPermanent())

		banned, status, err := s.service.IsBanned(s.ctx, "user-2")
		s.NoError(err)
		s.True(banned)
		s.Equal("permanently banned", status)
	})

	s.Run("rejects an empty identity", func() {
		_, err := s.service.Ban(s.ctx, "", models.BanReasonManual, "", nil)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("rejects an unknown identity when a directory is wired", func() {
		svc, err := New(s.stats, s.bans, s.permissions, config.DefaultConfig(),
			WithIdentityDirectory(&fakeDirectory{known: map[string]bool{"known-user": true}}),
		)
		s.Require().NoError(err)

		_, err = svc.Ban(s.ctx, "ghost-user", models.BanReasonManual, "", nil)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

		_, err = svc.Ban(s.ctx, "known-user", models.BanReasonManual, "", nil)
		s.NoError(err)
	})
}

func (s *ServiceTestSuite) TestUnban() {
	s.Run("lifts an active ban and restores the permission", func() {
		_, err := s.service.Ban(s.ctx, "user-1", models.BanReasonManual, "", nil)
		s.Require().NoError(err)
		s.True(s.permissions.isBlocked("user-1"))

		s.Require().NoError(s.service.Unban(s.ctx, "user-1"))
		s.False(s.permissions.isBlocked("user-1"))

		banned, _, err := s.service.IsBanned(s.ctx, "user-1")
		s.NoError(err)
		s.False(banned)
	})

	s.Run("reports not found for an unbanned identity", func() {
		err := s.service.Unban(s.ctx, "never-banned")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("a lifted identity can be banned again", func() {
		_, err := s.service.Ban(s.ctx, "user-2", models.BanReasonManual, "", nil)
		s.Require().NoError(err)
		s.Require().NoError(s.service.Unban(s.ctx, "user-2"))

		_, err = s.service.Ban(s.ctx, "user-2", models.BanReasonManual, "", nil)
		s.Require().NoError(err)
		banned, _, err := s.service.IsBanned(s.ctx, "user-2")
		s.NoError(err)
		s.True(banned)
	})
}

func (s *ServiceTestSuite) TestIsBanned() {
	s.Run("not banned without a record", func() {
		banned, status, err := s.service.IsBanned(s.ctx, "clean-user")
		s.NoError(err)
		s.False(banned)
		s.Empty(status)
	})

	s.Run("deactivates an expired ban on lookup", func() {
		minutes := 30
		_, err := s.service.Ban(s.ctx, "user-1", models.BanReasonManual, "", &minutes)
		s.Require().NoError(err)

		s.clock.Advance(31 * time.Minute)

		banned, _, err := s.service.IsBanned(s.ctx, "user-1")
		s.NoError(err)
		s.False(banned)
		s.False(s.permissions.isBlocked("user-1"))

		record, err := s.bans.GetActive(s.ctx, "user-1")
		s.NoError(err)
		s.Nil(record)
	})

	s.Run("a ban at its exact expiry instant still holds", func() {
		minutes := 30
		_, err := s.service.Ban(s.ctx, "user-2", models.BanReasonManual, "", &minutes)
		s.Require().NoError(err)

		s.clock.Advance(30 * time.Minute)

		banned, _, err := s.service.IsBanned(s.ctx, "user-2")
		s.NoError(err)
		s.True(banned)
	})

	s.Run("a permanent ban never expires", func() {
		_, err := s.service.Ban(s.ctx, "user-3", models.BanReasonManual, "", nil)
		s.Require().NoError(err)

		s.clock.Advance(365 * 24 * time.Hour)

		banned, _, err := s.service.IsBanned(s.ctx, "user-3")
		s.NoError(err)
		s.True(banned)
	})
}

func (s *ServiceTestSuite) TestSummary() {
	s.Run("reports not found without any activity", func() {
		_, err := s.service.Summary(s.ctx, "unknown-user")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("returns counters without a ban", func() {
		s.trackN("user-1", models.ActionSession, 3)
		summary, err := s.service.Summary(s.ctx, "user-1")
		s.Require().NoError(err)
		s.Equal(3, summary.Stats.SessionEvents)
		s.Nil(summary.Ban)
	})

	s.Run("returns zeroed counters for a manual ban with no activity", func() {
		_, err := s.service.Ban(s.ctx, "user-2", models.BanReasonManual, "", nil)
		s.Require().NoError(err)

		summary, err := s.service.Summary(s.ctx, "user-2")
		s.Require().NoError(err)
		s.Equal(0, summary.Stats.TotalEvents())
		s.Require().NotNil(summary.Ban)
		s.True(summary.Ban.Active)
	})
}

func (s *ServiceTestSuite) TestResetAllStats() {
	s.Run("zeroes every identity's counters", func() {
		s.trackN("user-1", models.ActionSession, 5)
		s.trackN("user-2", models.ActionConversation, 7)

		touched, err := s.service.ResetAllStats(s.ctx)
		s.Require().NoError(err)
		s.Equal(2, touched)

		stats, err := s.stats.Get(s.ctx, "user-1")
		s.Require().NoError(err)
		s.Equal(0, stats.TotalEvents())
	})

	s.Run("reset lets a near-threshold identity continue", func() {
		s.trackN("user-3", models.ActionSession, 10)
		_, err := s.service.ResetAllStats(s.ctx)
		s.Require().NoError(err)

		result := s.trackN("user-3", models.ActionSession, 10)
		s.False(result.Blocked)
	})
}

func (s *ServiceTestSuite) TestSetWindow() {
	s.Run("rejects a non-positive window", func() {
		err := s.service.SetWindow(s.ctx, "user-1", 0)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("rejects an empty identity", func() {
		err := s.service.SetWindow(s.ctx, "", 5)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *ServiceTestSuite) TestSweepExpiredBans() {
	s.Run("lifts only bans past their expiry", func() {
		short := 10
		long := 120
		_, err := s.service.Ban(s.ctx, "expired-user", models.BanReasonManual, "", &short)
		s.Require().NoError(err)
		_, err = s.service.Ban(s.ctx, "valid-user", models.BanReasonManual, "", &long)
		s.Require().NoError(err)
		_, err = s.service.Ban(s.ctx, "forever-user", models.BanReasonManual, "", nil)
		s.Require().NoError(err)

		s.clock.Advance(11 * time.Minute)

		lifted, err := s.service.SweepExpiredBans(s.ctx)
		s.Require().NoError(err)
		s.Equal(1, lifted)

		banned, _, err := s.service.IsBanned(s.ctx, "expired-user")
		s.NoError(err)
		s.False(banned)
		s.False(s.permissions.isBlocked("expired-user"))

		banned, _, err = s.service.IsBanned(s.ctx, "valid-user")
		s.NoError(err)
		s.True(banned)

		banned, _, err = s.service.IsBanned(s.ctx, "forever-user")
		s.NoError(err)
		s.True(banned)
	})

	s.Run("is a no-op with nothing expired", func() {
		lifted, err := s.service.SweepExpiredBans(s.ctx)
		s.NoError(err)
		s.Equal(0, lifted)
	})
}
