package tracing

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/sarchlab/dasim/sim"
)

// RoundLogger writes the events of a run as structured log records. Round
// summaries are logged at debug level, messages at trace level, decisions at
// info level, and aborts at error level.
type RoundLogger struct {
	logger zerolog.Logger
}

// NewRoundLogger creates a RoundLogger that writes to the given logger.
func NewRoundLogger(logger zerolog.Logger) *RoundLogger {
	return &RoundLogger{logger: logger}
}

// StartRound logs the start of a round.
func (l *RoundLogger) StartRound(round int) {
	l.logger.Trace().Int("round", round).Msg("round started")
}

// RecordMsg logs a message.
func (l *RoundLogger) RecordMsg(msg *sim.Msg) {
	l.logger.Trace().
		Int("round", msg.Round).
		Str("id", msg.ID).
		Int("src", int(msg.Src)).
		Int("src_port", msg.SrcPort.Display()).
		Int("dst", int(msg.Dst)).
		Int("dst_port", msg.DstPort.Display()).
		Interface("payload", msg.Payload).
		Msg("message sent")
}

// RecordDecision logs a decision.
func (l *RoundLogger) RecordDecision(report sim.NodeReport) {
	l.logger.Info().
		Int("round", report.Round+1).
		Int("node", int(report.Node)).
		Interface("output", report.Output).
		Msg("node decided")
}

// EndRound logs the summary of a round.
func (l *RoundLogger) EndRound(summary sim.RoundSummary) {
	l.logger.Debug().
		Int("round", summary.Round).
		Int("messages", summary.Messages).
		Int("stepped", summary.Stepped).
		Int("blocked", summary.Blocked).
		Int("decided", summary.Decided).
		Int("halted", summary.Halted).
		Int("total", summary.Total).
		Msg("round finished")
}

// Abort logs the reason of an abort.
func (l *RoundLogger) Abort(round int, err error) {
	event := l.logger.Error().Int("round", round).Err(err)

	var dl *sim.DeadlockError
	if errors.As(err, &dl) {
		witness := make([]int, len(dl.Witness))
		for i, n := range dl.Witness {
			witness[i] = int(n)
		}

		event = event.Ints("witness", witness)
	}

	event.Msg("simulation aborted")
}
