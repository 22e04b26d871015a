package mcts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a TimeSource a test can advance deterministically,
// standing in for the wall clock Scheduler otherwise reads from.
type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }
func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

type fakeProbe struct {
	visits int
	stats  []ChildStat
}

func (p fakeProbe) Visits() int           { return p.visits }
func (p fakeProbe) ChildStats() []ChildStat { return p.stats }

func TestScheduleSingleMoveLeftUsesWholeBudget(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	s := NewSchedulerWithClock(clock)

	s.Schedule(1, 5*time.Second)
	clock.advance(4 * time.Second)
	assert.False(t, s.Finish(fakeProbe{visits: 0}))
	clock.advance(2 * time.Second)
	assert.True(t, s.Finish(fakeProbe{visits: 0}))
}

func TestScheduleZeroTimeLeftFloorsAtOneMillisecond(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	s := NewSchedulerWithClock(clock)

	s.Schedule(1, 0)
	assert.GreaterOrEqual(t, s.budget, time.Millisecond)
}

func TestFinishStopsWhenClockRunsOut(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	s := NewSchedulerWithClock(clock)
	s.Schedule(10, 10*time.Second)

	clock.advance(s.budget + time.Millisecond)
	assert.True(t, s.Finish(fakeProbe{visits: 0}))
}

func TestFinishStopsOnDecidedPosition(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	s := NewSchedulerWithClock(clock)
	s.Schedule(10, 10*time.Second)
	for i := 0; i < minVisitsForEarlyStop; i++ {
		s.Tick()
	}

	probe := fakeProbe{
		visits: minVisitsForEarlyStop,
		stats: []ChildStat{
			{MoveIdx: 0, Visits: minVisitsForEarlyStop, Value: 0.99},
			{MoveIdx: 1, Visits: 1, Value: 0.2},
		},
	}
	assert.True(t, s.Finish(probe))
}

func TestFinishContinuesOnCloseUndecidedPosition(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	s := NewSchedulerWithClock(clock)
	s.Schedule(10, 10*time.Second)
	for i := 0; i < minVisitsForEarlyStop; i++ {
		s.Tick()
	}
	clock.advance(time.Millisecond)

	probe := fakeProbe{
		visits: minVisitsForEarlyStop,
		stats: []ChildStat{
			{MoveIdx: 0, Visits: minVisitsForEarlyStop/2 + 1, Value: 0.55},
			{MoveIdx: 1, Visits: minVisitsForEarlyStop / 2, Value: 0.5},
		},
	}
	assert.False(t, s.Finish(probe))
}

func TestValidateBudgetRejectsInconsistentValues(t *testing.T) {
	require.NoError(t, ValidateBudget(time.Second, 0))

	err := ValidateBudget(0, 0)
	require.Error(t, err)

	err = ValidateBudget(time.Second, 2*time.Second)
	require.Error(t, err)
}
