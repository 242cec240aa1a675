// Package node runs the state machine of a single network node. Every node
// runs in its own goroutine and only synchronizes with the others through the
// round barrier and its message channels.
package node

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync/atomic"

	"github.com/sarchlab/dasim/network"
	"github.com/sarchlab/dasim/sim"
	"github.com/sarchlab/dasim/sim/channel"
	"github.com/sarchlab/dasim/sim/id"
	"github.com/sarchlab/dasim/sim/model"
)

// Barrier is the round barrier that nodes synchronize with.
type Barrier interface {
	// AwaitRound blocks until the round may start. It returns false if the
	// simulation is over and the node should exit.
	AwaitRound(ctx context.Context, round int) bool

	// SignalDone reports that the node has finished a round.
	SignalDone(report sim.NodeReport)
}

// Status is the life-cycle status of a node.
type Status int

// Node statuses.
const (
	Running Status = iota
	Blocked
	Decided
	Halted
	Failed
)

func (s Status) String() string {
	switch s {
	case Running:
		return "running"
	case Blocked:
		return "blocked"
	case Decided:
		return "decided"
	case Halted:
		return "halted"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Snapshot is a consistent view of a node at the end of a round.
type Snapshot struct {
	Node         network.NodeID `json:"node"`
	Round        int            `json:"round"`
	Status       Status         `json:"status"`
	State        sim.State      `json:"state"`
	Decided      bool           `json:"decided"`
	Output       any            `json:"output"`
	DecidedRound int            `json:"decided_round"`
	Err          error          `json:"-"`
}

// Runtime is the execution unit of one node.
type Runtime struct {
	id          network.NodeID
	net         *network.Network
	ports       []network.PortInfo
	adapter     *model.Adapter
	barrier     Barrier
	policy      sim.DecidedPolicy
	idGenerator id.IDGenerator

	out     []*channel.Channel
	in      []*channel.Channel
	pending [][]*sim.Msg

	state        sim.State
	decision     sim.Decision
	decidedRound int
	err          error

	snapshot atomic.Pointer[Snapshot]
}

// ID returns the ID of the node.
func (r *Runtime) ID() network.NodeID {
	return r.id
}

// Name returns the name of the node.
func (r *Runtime) Name() string {
	return fmt.Sprintf("Node[%d]", r.id)
}

// Connect attaches the channels of a port. Out carries the messages this node
// sends and in carries the messages it receives. Either can be nil if the port
// only works in one direction.
func (r *Runtime) Connect(port network.Port, out, in *channel.Channel) {
	if port < 0 || int(port) >= len(r.ports) {
		panic(fmt.Sprintf("node %d has no port %d", r.id, port.Display()))
	}

	info := r.ports[port]
	if out != nil && !info.Direction.CanSend() {
		panic(fmt.Sprintf("port %d of node %d cannot send",
			port.Display(), r.id))
	}

	if in != nil && !info.Direction.CanReceive() {
		panic(fmt.Sprintf("port %d of node %d cannot receive",
			port.Display(), r.id))
	}

	r.out[port] = out
	r.in[port] = in
}

func (r *Runtime) mustBeConnected() {
	for p, info := range r.ports {
		if info.Direction.CanSend() && r.out[p] == nil {
			panic(fmt.Sprintf("port %d of node %d is not connected",
				network.Port(p).Display(), r.id))
		}

		if info.Direction.CanReceive() && r.in[p] == nil {
			panic(fmt.Sprintf("port %d of node %d is not connected",
				network.Port(p).Display(), r.id))
		}
	}
}

// Snapshot returns the view of the node published at the end of the last
// round. It is safe to call from any goroutine.
func (r *Runtime) Snapshot() Snapshot {
	return *r.snapshot.Load()
}

// Inspect returns the snapshot for monitoring.
func (r *Runtime) Inspect() any {
	s := r.Snapshot()
	return &s
}

// Run executes the node until the simulation finishes, the node fails, or the
// node halts after deciding.
func (r *Runtime) Run(ctx context.Context) {
	r.mustBeConnected()

	report := r.init()
	r.barrier.SignalDone(report)

	if r.exits(report) {
		return
	}

	for round := 0; ; round++ {
		if !r.barrier.AwaitRound(ctx, round) {
			return
		}

		report := r.runRound(ctx, round)
		r.barrier.SignalDone(report)

		if r.exits(report) {
			return
		}
	}
}

func (r *Runtime) exits(report sim.NodeReport) bool {
	return report.Err != nil || report.Halted
}

func (r *Runtime) init() (report sim.NodeReport) {
	report = sim.NodeReport{Node: r.id, Round: -1, Stepped: true}

	defer func() {
		if v := recover(); v != nil {
			report.Err = &sim.AlgorithmPanicError{Node: r.id, Round: -1, Value: v}
			r.fail(-1, report.Err)
		}
	}()

	info := r.adapter.NodeInfo(r.net, r.id)
	r.state, r.decision = r.adapter.Init(info)

	if r.decision.Decided {
		r.decidedRound = 0
		report.NewlyDecided = true
	}

	r.fillDecision(&report)
	r.publish(-1, r.statusAfter(report))

	return report
}

func (r *Runtime) runRound(ctx context.Context, round int) sim.NodeReport {
	report := sim.NodeReport{Node: r.id, Round: round}

	err := r.collect(ctx, round-1)
	if err != nil {
		return r.failReport(report, err)
	}

	waitingOn, err := r.missingSenders(round)
	if err != nil {
		return r.failReport(report, err)
	}

	if len(waitingOn) > 0 {
		report.Blocked = true
		report.WaitingOn = waitingOn
		r.fillDecision(&report)
		r.publish(round, Blocked)

		return report
	}

	state, outbox, decision, err := r.step(round, r.popInbox())
	if err != nil {
		return r.failReport(report, err)
	}

	report.Stepped = true

	err = r.applyStep(round, state, decision, &report)
	if err != nil {
		return r.failReport(report, err)
	}

	report.Sent, err = r.send(round, outbox)
	if err != nil {
		return r.failReport(report, err)
	}

	r.publish(round, r.statusAfter(report))

	return report
}

func (r *Runtime) failReport(report sim.NodeReport, err error) sim.NodeReport {
	report.Err = err
	r.fillDecision(&report)
	r.fail(report.Round, err)

	return report
}

func (r *Runtime) fail(round int, err error) {
	r.err = err
	r.publish(round, Failed)
}

func (r *Runtime) fillDecision(report *sim.NodeReport) {
	report.Decided = r.decision.Decided
	report.Output = r.decision.Output
	report.Halted = r.decision.Decided && r.policy == sim.Halt
}

func (r *Runtime) statusAfter(report sim.NodeReport) Status {
	switch {
	case report.Halted:
		return Halted
	case report.Decided:
		return Decided
	default:
		return Running
	}
}

// collect moves the messages of a finished round into the per-port queues.
func (r *Runtime) collect(ctx context.Context, round int) error {
	if round < 0 {
		return nil
	}

	for p, ch := range r.in {
		if ch == nil {
			continue
		}

		msg, err := ch.Receive(ctx, round)
		if err != nil {
			return err
		}

		if msg == nil {
			continue
		}

		if msg.Round != round {
			panic(fmt.Sprintf("node %d received a message of round %d in round %d",
				r.id, msg.Round, round))
		}

		r.pending[p] = append(r.pending[p], msg)
	}

	return nil
}

// missingSenders returns the neighbors that the node waits for.
func (r *Runtime) missingSenders(
	round int,
) (waitingOn []network.NodeID, err error) {
	defer r.recoverAlgorithm(round, &err)

	awaited := r.adapter.Await(r.state)
	if len(awaited) == 0 {
		return nil, nil
	}

	seen := make(map[network.NodeID]bool)
	waitingOn = []network.NodeID{}

	for _, p := range awaited {
		if p < 0 || int(p) >= len(r.ports) || !r.ports[p].Direction.CanReceive() {
			return nil, &sim.PortOutOfRangeError{
				Node:      r.id,
				Round:     round,
				Port:      p,
				PortCount: len(r.ports),
				Reason:    "awaited port cannot receive",
			}
		}

		if len(r.pending[p]) > 0 {
			continue
		}

		neighbor := r.ports[p].Neighbor
		if !seen[neighbor] {
			seen[neighbor] = true
			waitingOn = append(waitingOn, neighbor)
		}
	}

	sort.Slice(waitingOn, func(i, j int) bool {
		return waitingOn[i] < waitingOn[j]
	})

	return waitingOn, nil
}

func (r *Runtime) popInbox() sim.Inbox {
	inbox := make(sim.Inbox, len(r.ports))

	for p, queue := range r.pending {
		if len(queue) == 0 {
			continue
		}

		inbox[p] = queue[0]
		queue[0] = nil
		r.pending[p] = queue[1:]
	}

	return inbox
}

func (r *Runtime) step(
	round int,
	inbox sim.Inbox,
) (state sim.State, outbox sim.Outbox, decision sim.Decision, err error) {
	defer r.recoverAlgorithm(round, &err)

	state, outbox, decision = r.adapter.Step(r.state, round, inbox)

	return state, outbox, decision, nil
}

// recoverAlgorithm turns a panic in algorithm code into an error of the node.
// It must be deferred directly.
func (r *Runtime) recoverAlgorithm(round int, err *error) {
	if v := recover(); v != nil {
		*err = &sim.AlgorithmPanicError{Node: r.id, Round: round, Value: v}
	}
}

func (r *Runtime) applyStep(
	round int,
	state sim.State,
	decision sim.Decision,
	report *sim.NodeReport,
) error {
	if r.decision.Decided {
		err := r.decisionMustBeFrozen(round, state, decision)
		if err != nil {
			return err
		}
	} else if decision.Decided {
		r.decision = decision
		r.decidedRound = round + 1
		report.NewlyDecided = true
	}

	r.state = state
	r.fillDecision(report)

	return nil
}

func (r *Runtime) decisionMustBeFrozen(
	round int,
	state sim.State,
	decision sim.Decision,
) error {
	reason := ""

	switch {
	case !decision.Decided:
		reason = "decision withdrawn"
	case !reflect.DeepEqual(decision.Output, r.decision.Output):
		reason = fmt.Sprintf("output changed from %v to %v",
			r.decision.Output, decision.Output)
	case !reflect.DeepEqual(state, r.state):
		reason = "state changed after deciding"
	default:
		return nil
	}

	return &sim.PostDecisionTransitionError{
		Node:   r.id,
		Round:  round,
		Reason: reason,
	}
}

// send measures and sends the outgoing messages. Measuring calls SizeInBits or
// MarshalJSON of the payloads, which may panic.
func (r *Runtime) send(
	round int,
	outbox sim.Outbox,
) (sent []*sim.Msg, err error) {
	defer r.recoverAlgorithm(round, &err)

	for _, o := range outbox {
		if o.Payload == nil {
			continue
		}

		msg, sendErr := r.sendOne(round, o)
		if sendErr != nil {
			return sent, sendErr
		}

		sent = append(sent, msg)
	}

	return sent, nil
}

func (r *Runtime) sendOne(round int, o sim.Outgoing) (*sim.Msg, error) {
	if o.Port < 0 || int(o.Port) >= len(r.ports) {
		return nil, &sim.PortOutOfRangeError{
			Node:      r.id,
			Round:     round,
			Port:      o.Port,
			PortCount: len(r.ports),
			Reason:    "no such port",
		}
	}

	info := r.ports[o.Port]
	if !info.Direction.CanSend() {
		return nil, &sim.PortOutOfRangeError{
			Node:      r.id,
			Round:     round,
			Port:      o.Port,
			PortCount: len(r.ports),
			Reason:    "port is receive-only",
		}
	}

	err := r.adapter.Admit(r.id, round, o.Port, o.Payload)
	if err != nil {
		return nil, err
	}

	msg := &sim.Msg{
		ID:      r.idGenerator.Generate(),
		Round:   round,
		Src:     r.id,
		SrcPort: o.Port,
		Dst:     info.Neighbor,
		DstPort: info.RemotePort,
		Payload: o.Payload,
	}

	err = r.out[o.Port].Send(round, msg)
	if err != nil {
		return nil, err
	}

	return msg, nil
}

func (r *Runtime) publish(round int, status Status) {
	r.snapshot.Store(&Snapshot{
		Node:         r.id,
		Round:        round,
		Status:       status,
		State:        r.state,
		Decided:      r.decision.Decided,
		Output:       r.decision.Output,
		DecidedRound: r.decidedRound,
		Err:          r.err,
	})
}
