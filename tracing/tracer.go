// Package tracing provides hooks that observe a simulation round by round.
package tracing

import "github.com/sarchlab/dasim/sim"

// A Tracer is told what happens in every round of a simulation.
type Tracer interface {
	StartRound(round int)
	RecordMsg(msg *sim.Msg)
	RecordDecision(report sim.NodeReport)
	EndRound(summary sim.RoundSummary)
	Abort(round int, err error)
}
