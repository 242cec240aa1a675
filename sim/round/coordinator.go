// Package round drives the nodes of a simulation through lock-step
// communication rounds.
package round

import (
	"context"
	"sort"
	"sync"

	"github.com/sarchlab/dasim/network"
	"github.com/sarchlab/dasim/sim"
	"github.com/sarchlab/dasim/sim/deadlock"
	"github.com/sarchlab/dasim/sim/hooking"
)

// A Unit is an execution unit that the coordinator drives. Node runtimes are
// units.
type Unit interface {
	ID() network.NodeID
	Run(ctx context.Context)
}

// Outcome is how a run ended.
type Outcome struct {
	// Rounds is the number of rounds that all active nodes completed.
	Rounds     int
	Messages   int
	Terminated bool
	Err        error
}

// Progress is a point-in-time view of a run.
type Progress struct {
	Round     int  `json:"round"`
	MaxRounds int  `json:"max_rounds"`
	Decided   int  `json:"decided"`
	Halted    int  `json:"halted"`
	Total     int  `json:"total"`
	Messages  int  `json:"messages"`
	Paused    bool `json:"paused"`
}

type unitState struct {
	decided bool
	exited  bool
}

// Coordinator is the round barrier of a simulation. Only the coordinator
// advances the round counter. Nodes wait for it in AwaitRound and report to
// it through SignalDone.
type Coordinator struct {
	hooking.HookableBase

	limiter  *deadlock.Limiter
	detector *deadlock.Detector

	mu            sync.Mutex
	cond          *sync.Cond
	units         []Unit
	states        map[network.NodeID]*unitState
	released      int
	stopped       bool
	paused        bool
	reports       []sim.NodeReport
	closed        map[int]chan struct{}
	closedUntil   int
	alreadyClosed chan struct{}
	messages      int
}

// NewCoordinator creates a coordinator that allows at most maxRounds rounds.
func NewCoordinator(maxRounds int) *Coordinator {
	c := &Coordinator{
		limiter:       deadlock.NewLimiter(maxRounds),
		detector:      deadlock.NewDetector(),
		states:        make(map[network.NodeID]*unitState),
		released:      -1,
		closed:        make(map[int]chan struct{}),
		closedUntil:   -1,
		alreadyClosed: make(chan struct{}),
	}
	c.cond = sync.NewCond(&c.mu)
	close(c.alreadyClosed)

	return c
}

// Register adds a unit to the coordinator. All units must be registered
// before Run.
func (c *Coordinator) Register(u Unit) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, dup := c.states[u.ID()]; dup {
		panic("unit registered twice")
	}

	c.units = append(c.units, u)
	c.states[u.ID()] = &unitState{}

	sort.Slice(c.units, func(i, j int) bool {
		return c.units[i].ID() < c.units[j].ID()
	})
}

// AwaitRound blocks a node until the round is released. It returns false when
// the run is over.
func (c *Coordinator) AwaitRound(ctx context.Context, round int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for !c.stopped && c.released < round && ctx.Err() == nil {
		c.cond.Wait()
	}

	return !c.stopped && ctx.Err() == nil
}

// SignalDone collects the report of a node.
func (c *Coordinator) SignalDone(report sim.NodeReport) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.reports = append(c.reports, report)
	c.cond.Broadcast()
}

// RoundClosed returns a channel that is closed once every node has finished
// the round.
func (c *Coordinator) RoundClosed(round int) <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()

	if round <= c.closedUntil || c.stopped {
		return c.alreadyClosed
	}

	ch, ok := c.closed[round]
	if !ok {
		ch = make(chan struct{})
		c.closed[round] = ch
	}

	return ch
}

// Pause holds the coordinator before it releases the next round.
func (c *Coordinator) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.paused = true
}

// Continue resumes a paused coordinator.
func (c *Coordinator) Continue() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.paused = false
	c.cond.Broadcast()
}

// CurrentRound returns the last released round, or -1 before round 0.
func (c *Coordinator) CurrentRound() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.released
}

// Progress returns the progress of the run.
func (c *Coordinator) Progress() Progress {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := Progress{
		Round:     c.released,
		MaxRounds: c.limiter.MaxRounds(),
		Total:     len(c.units),
		Messages:  c.messages,
		Paused:    c.paused,
	}

	for _, s := range c.states {
		if s.decided {
			p.Decided++
		}

		if s.exited {
			p.Halted++
		}
	}

	return p
}

// Run starts every unit in its own goroutine and drives the rounds until the
// nodes terminate or the run is aborted. It returns after every unit has
// exited.
func (c *Coordinator) Run(ctx context.Context) Outcome {
	if len(c.units) == 0 {
		panic("no unit registered")
	}

	stop := context.AfterFunc(ctx, func() {
		c.mu.Lock()
		c.cond.Broadcast()
		c.mu.Unlock()
	})
	defer stop()

	var wg sync.WaitGroup
	for _, u := range c.units {
		wg.Add(1)
		go func(u Unit) {
			defer wg.Done()
			u.Run(ctx)
		}(u)
	}

	outcome := c.drive(ctx)

	c.shutdown()
	wg.Wait()

	if outcome.Err != nil {
		c.Invoke(c, outcome.Rounds, sim.HookPosAbort, outcome.Err)
	}

	return outcome
}

func (c *Coordinator) drive(ctx context.Context) Outcome {
	reports, err := c.collect(ctx, c.activeCount())
	if err != nil {
		return Outcome{Err: err}
	}

	_, err = c.process(-1, reports)
	if err != nil {
		return Outcome{Err: err}
	}

	if c.terminated() {
		return Outcome{Terminated: true}
	}

	for round := 0; ; round++ {
		err = c.limiter.Check(round)
		if err != nil {
			return c.abort(round, err)
		}

		err = c.waitWhilePaused(ctx)
		if err != nil {
			return c.abort(round, err)
		}

		expected := c.activeCount()

		c.Invoke(c, round, sim.HookPosRoundStart, round)
		c.release(round)

		reports, err = c.collect(ctx, expected)
		if err != nil {
			return c.abort(round, err)
		}

		c.closeRound(round)

		summary, err := c.process(round, reports)
		if err != nil {
			return c.abort(round, err)
		}

		c.Invoke(c, round, sim.HookPosRoundEnd, summary)

		if c.terminated() {
			return c.outcome(round+1, true, nil)
		}

		dl := c.detector.Observe(c.observe(round, reports))
		if dl != nil {
			return c.abort(round+1, dl)
		}
	}
}

func (c *Coordinator) abort(round int, err error) Outcome {
	return c.outcome(round, false, err)
}

func (c *Coordinator) outcome(rounds int, terminated bool, err error) Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Outcome{
		Rounds:     rounds,
		Messages:   c.messages,
		Terminated: terminated,
		Err:        err,
	}
}

func (c *Coordinator) activeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for _, s := range c.states {
		if !s.exited {
			count++
		}
	}

	return count
}

func (c *Coordinator) release(round int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.released = round
	c.cond.Broadcast()
}

func (c *Coordinator) waitWhilePaused(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for c.paused && ctx.Err() == nil {
		c.cond.Wait()
	}

	return ctx.Err()
}

// collect waits until the expected number of reports has arrived.
func (c *Coordinator) collect(
	ctx context.Context,
	expected int,
) ([]sim.NodeReport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for len(c.reports) < expected && ctx.Err() == nil {
		c.cond.Wait()
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	reports := c.reports
	c.reports = nil

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].Node < reports[j].Node
	})

	return reports, nil
}

func (c *Coordinator) closeRound(round int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for r, ch := range c.closed {
		if r <= round {
			close(ch)
			delete(c.closed, r)
		}
	}

	c.closedUntil = round
}

func (c *Coordinator) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopped = true

	for r, ch := range c.closed {
		close(ch)
		delete(c.closed, r)
	}

	c.cond.Broadcast()
}

// process applies the reports of a round in node order, invokes the hooks,
// and returns the first error reported by a node.
func (c *Coordinator) process(
	round int,
	reports []sim.NodeReport,
) (sim.RoundSummary, error) {
	summary := sim.RoundSummary{Round: round, Total: len(c.units)}

	var firstErr error

	for _, rep := range reports {
		c.applyReport(rep, &summary)

		for _, msg := range rep.Sent {
			c.Invoke(c, round, sim.HookPosMsgSend, msg)
		}

		if rep.NewlyDecided {
			c.Invoke(c, round, sim.HookPosNodeDecided, rep)
		}

		if rep.Err != nil && firstErr == nil {
			firstErr = rep.Err
		}
	}

	c.mu.Lock()
	for _, s := range c.states {
		if s.decided {
			summary.Decided++
		}

		if s.exited {
			summary.Halted++
		}
	}
	c.mu.Unlock()

	return summary, firstErr
}

func (c *Coordinator) applyReport(rep sim.NodeReport, summary *sim.RoundSummary) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.states[rep.Node]
	if !ok {
		panic("report from an unknown unit")
	}

	s.decided = rep.Decided
	s.exited = rep.Halted || rep.Err != nil

	c.messages += len(rep.Sent)
	summary.Messages += len(rep.Sent)

	if rep.Stepped {
		summary.Stepped++
	}

	if rep.Blocked {
		summary.Blocked++
	}
}

func (c *Coordinator) terminated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, s := range c.states {
		if !s.decided {
			return false
		}
	}

	return true
}

func (c *Coordinator) observe(
	round int,
	reports []sim.NodeReport,
) deadlock.Observation {
	obs := deadlock.Observation{Round: round}

	reported := make(map[network.NodeID]sim.NodeReport, len(reports))
	for _, rep := range reports {
		reported[rep.Node] = rep
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, u := range c.units {
		s := c.states[u.ID()]
		status := deadlock.UnitStatus{
			Node:   u.ID(),
			Exited: s.exited,
		}

		if rep, ok := reported[u.ID()]; ok && !s.exited {
			status.Blocked = rep.Blocked
			status.WaitingOn = rep.WaitingOn
		}

		obs.Units = append(obs.Units, status)
	}

	return obs
}
