package mcts

import (
	"sort"
	"time"

	"github.com/hashicorp/go-multierror"
)

// TimeSource abstracts the wall clock so tests can drive Scheduler
// with a fake one instead of real elapsed time.
type TimeSource interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// RootProbe is the read-only view of a search root a Scheduler needs:
// its total visit count and each legal move's own visit count and
// value, the latter already phrased in the mover's own favour.
type RootProbe interface {
	Visits() int
	ChildStats() []ChildStat
}

const (
	// winningValue/hopelessValue bound the best root child's value
	// outside of which further search is very unlikely to change the
	// move actually played.
	winningValue  = 0.95
	hopelessValue = 0.05

	// minVisitsForEarlyStop keeps the heuristics below from firing on
	// the first handful of noisy iterations.
	minVisitsForEarlyStop = 200

	// firstMoveShare is how much of the *remaining* time budget the
	// parabola assigns to the first of the expected-moves-remaining;
	// lastMoveShare is the fraction of an even per-move share it assigns
	// to the last one; the middle control point asks for an even
	// per-move share. A single move rarely finishes the whole remaining
	// budget, and the very last one is asked to leave slack rather than
	// spend every remaining tick.
	firstMoveShare = 0.5
	lastMoveShare  = 0.5
)

// Scheduler fits a parabola through three (movesRemaining, msecs)
// control points every time it is asked for a budget, then hands the
// value at movesRemaining=1 back as this move's allocation. Since
// movesRemaining=1 is itself the first control point, that value is
// always firstMoveShare of the remaining clock: the number of moves
// still expected does not change it, except that the last expected
// move (n<=1) is given the whole remaining clock.
type Scheduler struct {
	clock      TimeSource
	started    time.Time
	budget     time.Duration
	iterations int
}

// NewScheduler builds a Scheduler using the real wall clock. Pass a
// fake TimeSource in tests via NewSchedulerWithClock.
func NewScheduler() *Scheduler { return NewSchedulerWithClock(realClock{}) }

// NewSchedulerWithClock builds a Scheduler over an explicit TimeSource.
func NewSchedulerWithClock(clock TimeSource) *Scheduler {
	return &Scheduler{clock: clock}
}

// Schedule computes this move's time budget from n, the number of
// moves the position is still expected to need (game.State's
// NumExpectedMoves), and remaining, the total time left on the game
// clock. It starts the per-move stopwatch Finish checks against.
//
// n<=1 is a degenerate case the Lagrange fit cannot handle (it divides
// by products of (xi-xj), which a repeated x=1 control point would
// zero out): the position is down to its last expected move, so the
// whole remaining budget - or a 1ms floor, if the clock has already
// run out - is allotted to it directly.
func (s *Scheduler) Schedule(n int, remaining time.Duration) {
	s.started = s.clock.Now()
	s.iterations = 0

	if n <= 1 {
		s.budget = remaining
		if s.budget < time.Millisecond {
			s.budget = time.Millisecond
		}
		return
	}

	rmsecs := float64(remaining.Milliseconds())
	xs := []float64{1, float64(1+n) / 2, float64(n)}
	ys := []float64{
		rmsecs * firstMoveShare,
		rmsecs / float64(n),
		rmsecs / float64(n) * lastMoveShare,
	}
	w := lagrangeAt(xs, ys, 1)
	if w < 1 {
		w = 1
	}
	if w > rmsecs && rmsecs > 0 {
		w = rmsecs
	}
	s.budget = time.Duration(w) * time.Millisecond
}

func durationFromMillis(ms int64) time.Duration { return time.Duration(ms) * time.Millisecond }

// lagrangeAt evaluates, at x, the unique polynomial through the points
// (xs[i], ys[i]) - a parabola when exactly three points are given.
func lagrangeAt(xs, ys []float64, x float64) float64 {
	var total float64
	for i := range xs {
		term := ys[i]
		for j := range xs {
			if j == i {
				continue
			}
			term *= (x - xs[j]) / (xs[i] - xs[j])
		}
		total += term
	}
	return total
}

// Tick records that one more search iteration completed, for the
// gap-based early stop below to estimate remaining iteration capacity.
func (s *Scheduler) Tick() { s.iterations++ }

// Finish reports whether the current move's search should stop: the
// per-move clock ran out, the position already looks decided, or no
// realistic number of further iterations could let the runner-up
// catch the current best move's visit count before the clock does run
// out.
func (s *Scheduler) Finish(probe RootProbe) bool {
	elapsed := s.clock.Now().Sub(s.started)
	if elapsed >= s.budget {
		return true
	}
	if probe.Visits() < minVisitsForEarlyStop {
		return false
	}

	stats := probe.ChildStats()
	if len(stats) == 0 {
		return true
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Visits > stats[j].Visits })
	best := stats[0]

	if best.Value >= winningValue || best.Value <= hopelessValue {
		return true
	}
	if len(stats) == 1 {
		return false
	}
	runnerUp := stats[1]

	remaining := s.budget - elapsed
	rate := float64(s.iterations) / elapsed.Seconds()
	if rate <= 0 {
		return false
	}
	projectedIters := rate * remaining.Seconds()
	gap := float64(best.Visits - runnerUp.Visits)
	return projectedIters < gap
}

// ValidateBudget checks that a requested total-game-time and per-move
// minimum are internally consistent, collecting every violation with
// multierror.Append rather than failing at the first one.
func ValidateBudget(totalBudget time.Duration, perMoveFloor time.Duration) error {
	var result *multierror.Error
	if totalBudget <= 0 {
		result = multierror.Append(result, errTotalBudgetNotPositive)
	}
	if perMoveFloor < 0 {
		result = multierror.Append(result, errFloorNegative)
	}
	if perMoveFloor > totalBudget {
		result = multierror.Append(result, errFloorExceedsBudget)
	}
	return result.ErrorOrNil()
}
