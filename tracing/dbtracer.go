package tracing

import (
	"fmt"
	"sync"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/dasim/datarecording"
	"github.com/sarchlab/dasim/network"
	"github.com/sarchlab/dasim/sim"
)

// RunRow is the outcome of one run.
type RunRow struct {
	RunID      string
	Algorithm  string
	Model      string
	Nodes      int
	Edges      int
	Rounds     int
	Messages   int
	Terminated bool
	Error      string
}

// RoundRow summarizes one round.
type RoundRow struct {
	RunID    string
	Round    int
	Messages int
	Stepped  int
	Blocked  int
	Decided  int
	Halted   int
}

// MsgRow is one delivered message. Ports are 1-based.
type MsgRow struct {
	RunID   string
	ID      string
	Round   int
	Src     int
	SrcPort int
	Dst     int
	DstPort int
	Payload string
}

// DecisionRow records the round in which a node decided.
type DecisionRow struct {
	RunID  string
	Node   int
	Round  int
	Output string
}

// NodeRow is the final view of one node.
type NodeRow struct {
	RunID        string
	Node         int
	Decided      bool
	DecidedRound int
	Halted       bool
	Output       string
	Error        string
}

// Table names used by the DBTracer.
const (
	RunTable      = "runs"
	RoundTable    = "rounds"
	MsgTable      = "messages"
	DecisionTable = "decisions"
	NodeTable     = "nodes"
)

// DBTracer is a tracer that stores the rounds, the messages and the decisions
// of a run into a database.
type DBTracer struct {
	mu         sync.Mutex
	runID      string
	backend    datarecording.DataRecorder
	traceMsgs  bool
	terminated bool
}

// NewDBTracer creates a new DBTracer. The tables are created in the recorder
// at construction.
func NewDBTracer(
	runID string,
	dataRecorder datarecording.DataRecorder,
) *DBTracer {
	dataRecorder.CreateTable(RunTable, RunRow{})
	dataRecorder.CreateTable(RoundTable, RoundRow{})
	dataRecorder.CreateTable(MsgTable, MsgRow{})
	dataRecorder.CreateTable(DecisionTable, DecisionRow{})
	dataRecorder.CreateTable(NodeTable, NodeRow{})

	t := &DBTracer{
		runID:     runID,
		backend:   dataRecorder,
		traceMsgs: true,
	}

	atexit.Register(func() {
		t.Terminate()
	})

	return t
}

// SkipMessages stops the tracer from recording individual messages. Round
// summaries still count them.
func (t *DBTracer) SkipMessages() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.traceMsgs = false
}

// StartRound does nothing. Rounds are recorded when they end.
func (t *DBTracer) StartRound(_ int) {}

// RecordMsg records a message.
func (t *DBTracer) RecordMsg(msg *sim.Msg) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.traceMsgs || t.terminated {
		return
	}

	t.backend.InsertData(MsgTable, MsgRow{
		RunID:   t.runID,
		ID:      msg.ID,
		Round:   msg.Round,
		Src:     int(msg.Src),
		SrcPort: msg.SrcPort.Display(),
		Dst:     int(msg.Dst),
		DstPort: msg.DstPort.Display(),
		Payload: fmt.Sprint(msg.Payload),
	})
}

// RecordDecision records the round in which a node decided. A decision taken
// in Init is recorded at round 0.
func (t *DBTracer) RecordDecision(report sim.NodeReport) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.terminated {
		return
	}

	t.backend.InsertData(DecisionTable, DecisionRow{
		RunID:  t.runID,
		Node:   int(report.Node),
		Round:  report.Round + 1,
		Output: fmt.Sprint(report.Output),
	})
}

// EndRound records the summary of a round.
func (t *DBTracer) EndRound(summary sim.RoundSummary) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.terminated {
		return
	}

	t.backend.InsertData(RoundTable, RoundRow{
		RunID:    t.runID,
		Round:    summary.Round,
		Messages: summary.Messages,
		Stepped:  summary.Stepped,
		Blocked:  summary.Blocked,
		Decided:  summary.Decided,
		Halted:   summary.Halted,
	})
}

// Abort flushes what has been recorded so far.
func (t *DBTracer) Abort(_ int, _ error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.terminated {
		return
	}

	t.backend.Flush()
}

// RecordResult records the outcome of the run and the final view of every
// node.
func (t *DBTracer) RecordResult(net *network.Network, result *sim.Result) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.terminated {
		return
	}

	t.backend.InsertData(RunTable, RunRow{
		RunID:      t.runID,
		Algorithm:  result.Algorithm,
		Model:      result.Model,
		Nodes:      net.NodeCount(),
		Edges:      net.EdgeCount(),
		Rounds:     result.Rounds,
		Messages:   result.Messages,
		Terminated: result.Terminated,
		Error:      errString(result.Err),
	})

	for _, n := range result.Nodes {
		t.backend.InsertData(NodeTable, NodeRow{
			RunID:        t.runID,
			Node:         int(n.Node),
			Decided:      n.Decided,
			DecidedRound: n.DecidedRound,
			Halted:       n.Halted,
			Output:       fmt.Sprint(n.Output),
			Error:        errString(n.Err),
		})
	}

	t.backend.Flush()
}

// Terminate flushes the recorder. The tracer ignores later events.
func (t *DBTracer) Terminate() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.terminated {
		return
	}

	t.terminated = true
	t.backend.Flush()
}

func errString(err error) string {
	if err == nil {
		return ""
	}

	return err.Error()
}
