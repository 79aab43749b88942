package escalation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"aegis/internal/abuse/config"
)

type EscalationSuite struct {
	suite.Suite
	policy *Policy
}

func TestEscalationSuite(t *testing.T) {
	suite.Run(t, new(EscalationSuite))
}

func (s *EscalationSuite) SetupTest() {
	s.policy = New(config.DefaultConfig().Escalation)
}

func (s *EscalationSuite) TestTierBoundaries() {
	day := 24 * time.Hour
	cases := []struct {
		total int
		want  time.Duration
	}{
		{0, day},
		{11, day},
		{50, day}, // at the floor, not above it
		{51, 3 * day},
		{100, 3 * day},
		{101, 7 * day},
		{200, 7 * day},
		{201, 14 * day},
		{10000, 14 * day},
	}
	for _, tc := range cases {
		s.Equal(tc.want, s.policy.Duration(tc.total), "total=%d", tc.total)
	}
}

func (s *EscalationSuite) TestMonotonicNonDecreasing() {
	prev := time.Duration(0)
	for total := 0; total <= 300; total++ {
		d := s.policy.Duration(total)
		s.GreaterOrEqual(d, prev, "duration decreased at total=%d", total)
		prev = d
	}
}

func (s *EscalationSuite) TestUnsortedTiersAreNormalized() {
	policy := New(config.EscalationConfig{
		Tiers: []config.Tier{
			{MinTotalEvents: 50, Duration: 3 * 24 * time.Hour},
			{MinTotalEvents: 200, Duration: 14 * 24 * time.Hour},
			{MinTotalEvents: 100, Duration: 7 * 24 * time.Hour},
		},
		DefaultDuration: 24 * time.Hour,
	})
	s.Equal(14*24*time.Hour, policy.Duration(500))
	s.Equal(7*24*time.Hour, policy.Duration(150))
}

func (s *EscalationSuite) TestDurationMinutes() {
	s.Equal(1440, s.policy.DurationMinutes(11))
	s.Equal(20160, s.policy.DurationMinutes(201))
}
