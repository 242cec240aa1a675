package tracing

import (
	"sync"

	"github.com/sarchlab/dasim/network"
	"github.com/sarchlab/dasim/sim"
)

// CountTracer counts the messages and decisions of a run.
type CountTracer struct {
	lock             sync.Mutex
	sentBy           map[network.NodeID]uint64
	receivedBy       map[network.NodeID]uint64
	messagesInRound  []uint64
	decisionsInRound map[int]uint64
}

// NewCountTracer creates a new CountTracer.
func NewCountTracer() *CountTracer {
	return &CountTracer{
		sentBy:           make(map[network.NodeID]uint64),
		receivedBy:       make(map[network.NodeID]uint64),
		decisionsInRound: make(map[int]uint64),
	}
}

// Sent returns the number of messages a node has sent.
func (t *CountTracer) Sent(node network.NodeID) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.sentBy[node]
}

// Received returns the number of messages addressed to a node.
func (t *CountTracer) Received(node network.NodeID) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.receivedBy[node]
}

// MessagesInRound returns the number of messages sent in every round.
func (t *CountTracer) MessagesInRound() []uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	counts := make([]uint64, len(t.messagesInRound))
	copy(counts, t.messagesInRound)

	return counts
}

// PeakRound returns the round with the most messages and its message count.
// It returns -1 if no round has run.
func (t *CountTracer) PeakRound() (int, uint64) {
	t.lock.Lock()
	defer t.lock.Unlock()

	peak, count := -1, uint64(0)
	for r, c := range t.messagesInRound {
		if peak < 0 || c > count {
			peak, count = r, c
		}
	}

	return peak, count
}

// DecisionsInRound returns the number of nodes that decided in a round. The
// decisions taken in Init count for round 0.
func (t *CountTracer) DecisionsInRound(round int) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.decisionsInRound[round]
}

// StartRound opens the counter of a round.
func (t *CountTracer) StartRound(round int) {
	t.lock.Lock()
	defer t.lock.Unlock()

	for len(t.messagesInRound) <= round {
		t.messagesInRound = append(t.messagesInRound, 0)
	}
}

// RecordMsg counts a message.
func (t *CountTracer) RecordMsg(msg *sim.Msg) {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.sentBy[msg.Src]++
	t.receivedBy[msg.Dst]++

	for len(t.messagesInRound) <= msg.Round {
		t.messagesInRound = append(t.messagesInRound, 0)
	}

	t.messagesInRound[msg.Round]++
}

// RecordDecision counts a decision.
func (t *CountTracer) RecordDecision(report sim.NodeReport) {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.decisionsInRound[report.Round+1]++
}

// EndRound does nothing.
func (t *CountTracer) EndRound(sim.RoundSummary) {}

// Abort does nothing.
func (t *CountTracer) Abort(int, error) {}
