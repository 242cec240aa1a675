package monitoring

import (
	"sync"
	"time"

	"github.com/sarchlab/dasim/sim"
	"github.com/sarchlab/dasim/sim/hooking"
)

// A ProgressBar is a tracker of the progress
type ProgressBar struct {
	sync.Mutex
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StartTime  time.Time `json:"start_time"`
	Total      uint64    `json:"total"`
	Finished   uint64    `json:"finished"`
	InProgress uint64    `json:"in_progress"`
}

// IncrementInProgress adds the number of in-progress element.
func (b *ProgressBar) IncrementInProgress(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.InProgress += amount
}

// IncrementFinished add a certain amount to finished element.
func (b *ProgressBar) IncrementFinished(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.Finished += amount
}

// MoveInProgressToFinished reduces the number of in progress item by a certain
// amount and increase the finished item by the same amount.
func (b *ProgressBar) MoveInProgressToFinished(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.InProgress -= amount
	b.Finished += amount
}

type progressBarRsp struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StartTime  time.Time `json:"start_time"`
	Total      uint64    `json:"total"`
	Finished   uint64    `json:"finished"`
	InProgress uint64    `json:"in_progress"`
}

func (b *ProgressBar) snapshot() progressBarRsp {
	b.Lock()
	defer b.Unlock()

	return progressBarRsp{
		ID:         b.ID,
		Name:       b.Name,
		StartTime:  b.StartTime,
		Total:      b.Total,
		Finished:   b.Finished,
		InProgress: b.InProgress,
	}
}

// RoundProgress is a hook that moves a round bar and a decided-node bar as the
// simulation goes.
type RoundProgress struct {
	Rounds  *ProgressBar
	Decided *ProgressBar
}

// TrackRounds creates the progress bars of a simulation and attaches the hook
// that updates them.
func (m *Monitor) TrackRounds(
	domain hooking.Hookable,
	maxRounds, nodes int,
) *RoundProgress {
	p := &RoundProgress{
		Rounds:  m.CreateProgressBar("Rounds", uint64(maxRounds)),
		Decided: m.CreateProgressBar("Decided nodes", uint64(nodes)),
	}

	domain.AcceptHook(p)

	return p
}

// Func updates the bars.
func (p *RoundProgress) Func(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case sim.HookPosRoundStart:
		p.Rounds.IncrementInProgress(1)
	case sim.HookPosRoundEnd:
		p.Rounds.MoveInProgressToFinished(1)
	case sim.HookPosNodeDecided:
		p.Decided.IncrementFinished(1)
	}
}
