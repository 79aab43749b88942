package sweeper

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"aegis/internal/abuse/config"
)

type fakeService struct {
	mu          sync.Mutex
	resetCalls  int
	sweepCalls  int
	resetErr    error
	sweepErr    error
	liftedCount int
}

func (f *fakeService) ResetAllStats(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetCalls++
	if f.resetErr != nil {
		return 0, f.resetErr
	}
	return 3, nil
}

func (f *fakeService) SweepExpiredBans(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sweepCalls++
	if f.sweepErr != nil {
		return 0, f.sweepErr
	}
	return f.liftedCount, nil
}

func (f *fakeService) calls() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resetCalls, f.sweepCalls
}

type SweeperTestSuite struct {
	suite.Suite
}

func TestSweeperTestSuite(t *testing.T) {
	suite.Run(t, new(SweeperTestSuite))
}

func (s *SweeperTestSuite) TestRunStatsReset() {
	s.Run("invokes the reset pass once", func() {
		svc := &fakeService{}
		sw := New(svc, config.SweeperConfig{})

		sw.RunStatsReset(context.Background())

		resets, sweeps := svc.calls()
		s.Equal(1, resets)
		s.Equal(0, sweeps)
	})

	s.Run("tolerates a failing pass", func() {
		svc := &fakeService{resetErr: errors.New("store unavailable")}
		sw := New(svc, config.SweeperConfig{})

		sw.RunStatsReset(context.Background())

		resets, _ := svc.calls()
		s.Equal(1, resets)
	})
}

func (s *SweeperTestSuite) TestRunExpirySweep() {
	s.Run("invokes the expiry pass once", func() {
		svc := &fakeService{liftedCount: 2}
		sw := New(svc, config.SweeperConfig{})

		sw.RunExpirySweep(context.Background())

		resets, sweeps := svc.calls()
		s.Equal(0, resets)
		s.Equal(1, sweeps)
	})

	s.Run("tolerates a failing pass", func() {
		svc := &fakeService{sweepErr: errors.New("store unavailable")}
		sw := New(svc, config.SweeperConfig{})

		sw.RunExpirySweep(context.Background())

		_, sweeps := svc.calls()
		s.Equal(1, sweeps)
	})
}

func (s *SweeperTestSuite) TestLifecycle() {
	s.Run("fires both schedules while running", func() {
		svc := &fakeService{}
		sw := New(svc, config.SweeperConfig{
			StatsResetInterval: 10 * time.Millisecond,
			UnbanInterval:      10 * time.Millisecond,
		})

		sw.Start(context.Background())
		s.Eventually(func() bool {
			resets, sweeps := svc.calls()
			return resets >= 1 && sweeps >= 1
		}, 2*time.Second, 5*time.Millisecond)
		sw.Stop()
	})

	s.Run("start is idempotent", func() {
		svc := &fakeService{}
		sw := New(svc, config.SweeperConfig{
			StatsResetInterval: time.Hour,
			UnbanInterval:      time.Hour,
		})

		sw.Start(context.Background())
		sw.Start(context.Background())
		sw.Stop()
	})

	s.Run("stop without start is a no-op", func() {
		sw := New(&fakeService{}, config.SweeperConfig{})
		sw.Stop()
	})

	s.Run("no ticks after stop", func() {
		svc := &fakeService{}
		sw := New(svc, config.SweeperConfig{
			StatsResetInterval: 5 * time.Millisecond,
			UnbanInterval:      5 * time.Millisecond,
		})

		sw.Start(context.Background())
		s.Eventually(func() bool {
			resets, _ := svc.calls()
			return resets >= 1
		}, 2*time.Second, time.Millisecond)
		sw.Stop()

		resetsAfter, sweepsAfter := svc.calls()
		time.Sleep(30 * time.Millisecond)
		resetsLater, sweepsLater := svc.calls()
		s.Equal(resetsAfter, resetsLater)
		s.Equal(sweepsAfter, sweepsLater)
	})

	s.Run("can be restarted after stop", func() {
		svc := &fakeService{}
		sw := New(svc, config.SweeperConfig{
			StatsResetInterval: 5 * time.Millisecond,
			UnbanInterval:      time.Hour,
		})

		sw.Start(context.Background())
		s.Eventually(func() bool {
			resets, _ := svc.calls()
			return resets >= 1
		}, 2*time.Second, time.Millisecond)
		sw.Stop()

		before, _ := svc.calls()
		sw.Start(context.Background())
		s.Eventually(func() bool {
			resets, _ := svc.calls()
			return resets > before
		}, 2*time.Second, time.Millisecond)
		sw.Stop()
	})
}
