package ban

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"aegis/internal/abuse/models"
)

type InMemoryBanStoreSuite struct {
	suite.Suite
	store *InMemoryBanStore
}

func TestInMemoryBanStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryBanStoreSuite))
}

func (s *InMemoryBanStoreSuite) SetupTest() {
	s.store = New()
}

func (s *InMemoryBanStoreSuite) ban(identityID string, minutes int, now time.Time) *models.BanRecord {
	record, err := models.NewBanRecord(identityID, models.BanReasonManual, "test", &minutes, now)
	s.Require().NoError(err)
	return record
}

func (s *InMemoryBanStoreSuite) TestGetActive() {
	ctx := context.Background()

	s.Run("unknown identity returns nil without error", func() {
		record, err := s.store.GetActive(ctx, "unknown")
		s.NoError(err)
		s.Nil(record)
	})

	s.Run("deactivated record is not returned", func() {
		now := time.Now()
		s.NoError(s.store.Upsert(ctx, s.ban("id-1", 60, now)))

		changed, err := s.store.Deactivate(ctx, "id-1")
		s.NoError(err)
		s.True(changed)

		record, err := s.store.GetActive(ctx, "id-1")
		s.NoError(err)
		s.Nil(record)
	})
}

func (s *InMemoryBanStoreSuite) TestUpsert() {
	ctx := context.Background()

	s.Run("repeated impositions keep exactly one active record", func() {
		now := time.Now()
		for i := 0; i < 3; i++ {
			s.NoError(s.store.Upsert(ctx, s.ban("id-1", 60*(i+1), now.Add(time.Duration(i)*time.Minute))))
		}

		active, err := s.store.ListActive(ctx)
		s.NoError(err)
		s.Len(active, 1)
		s.Equal(180, *active[0].DurationMinutes, "last write wins")
	})

	s.Run("upsert reactivates a previously lifted identity", func() {
		now := time.Now()
		s.NoError(s.store.Upsert(ctx, s.ban("id-2", 60, now)))
		_, err := s.store.Deactivate(ctx, "id-2")
		s.NoError(err)

		s.NoError(s.store.Upsert(ctx, s.ban("id-2", 30, now.Add(time.Hour))))
		record, err := s.store.GetActive(ctx, "id-2")
		s.NoError(err)
		s.NotNil(record)
		s.Equal(30, *record.DurationMinutes)
	})
}

func (s *InMemoryBanStoreSuite) TestDeactivate() {
	ctx := context.Background()

	s.Run("idempotent under repeated calls", func() {
		now := time.Now()
		s.NoError(s.store.Upsert(ctx, s.ban("id-1", 60, now)))

		changed, err := s.store.Deactivate(ctx, "id-1")
		s.NoError(err)
		s.True(changed)

		changed, err = s.store.Deactivate(ctx, "id-1")
		s.NoError(err)
		s.False(changed, "second deactivation reports no change")
	})

	s.Run("no-op for unknown identity", func() {
		changed, err := s.store.Deactivate(ctx, "unknown")
		s.NoError(err)
		s.False(changed)
	})
}

func (s *InMemoryBanStoreSuite) TestListActive() {
	ctx := context.Background()

	s.Run("most recently imposed first", func() {
		base := time.Now()
		s.NoError(s.store.Upsert(ctx, s.ban("old", 60, base.Add(-2*time.Hour))))
		s.NoError(s.store.Upsert(ctx, s.ban("newer", 60, base.Add(-time.Hour))))
		s.NoError(s.store.Upsert(ctx, s.ban("newest", 60, base)))

		active, err := s.store.ListActive(ctx)
		s.NoError(err)
		s.Require().Len(active, 3)
		s.Equal("newest", active[0].IdentityID)
		s.Equal("newer", active[1].IdentityID)
		s.Equal("old", active[2].IdentityID)
	})
}

func (s *InMemoryBanStoreSuite) TestListExpired() {
	ctx := context.Background()
	now := time.Now()

	s.Run("returns only active records past expiry", func() {
		s.NoError(s.store.Upsert(ctx, s.ban("expired", 30, now.Add(-time.Hour))))
		s.NoError(s.store.Upsert(ctx, s.ban("valid", 120, now.Add(-time.Hour))))

		expired, err := s.store.ListExpired(ctx, now)
		s.NoError(err)
		s.Require().Len(expired, 1)
		s.Equal("expired", expired[0].IdentityID)
	})

	s.Run("permanent bans never expire", func() {
		record, err := models.NewBanRecord("forever", models.BanReasonManual, "", nil, now.Add(-24*time.Hour))
		s.Require().NoError(err)
		s.NoError(s.store.Upsert(ctx, record))

		expired, err := s.store.ListExpired(ctx, now.Add(1000*time.Hour))
		s.NoError(err)
		for _, r := range expired {
			s.NotEqual("forever", r.IdentityID)
		}
	})
}
