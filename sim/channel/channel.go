// Package channel provides the conduit that carries the messages of one port
// pair, one message per round.
package channel

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sarchlab/dasim/network"
	"github.com/sarchlab/dasim/sim"
)

// ErrRoundEvicted is returned when a round is read after its slot has been
// reused by a later round.
var ErrRoundEvicted = errors.New("round evicted from channel")

// RoundCloser tells when no more messages can be sent in a round.
type RoundCloser interface {
	// RoundClosed returns a channel that is closed once every node has
	// finished the round.
	RoundClosed(round int) <-chan struct{}
}

type slot struct {
	mu    sync.Mutex
	round int
	sent  bool
	msg   *sim.Msg
	ready chan struct{}
}

// reset moves the slot to a new round. It must be called with the lock held.
func (s *slot) reset(round int) {
	s.round = round
	s.sent = false
	s.msg = nil
	s.ready = make(chan struct{})
}

// A Channel connects the sending port of one node to the receiving port of
// another node. It keeps two round slots: the round being sent and the round
// being received. A channel has exactly one sender and one receiver.
type Channel struct {
	from     network.NodeID
	fromPort network.Port
	to       network.NodeID
	toPort   network.Port
	closer   RoundCloser
	slots    [2]slot
}

// New creates a channel from a port of one node to a port of another node.
func New(
	from network.NodeID,
	fromPort network.Port,
	to network.NodeID,
	toPort network.Port,
	closer RoundCloser,
) *Channel {
	if closer == nil {
		panic("round closer is nil")
	}

	c := &Channel{
		from:     from,
		fromPort: fromPort,
		to:       to,
		toPort:   toPort,
		closer:   closer,
	}

	c.slots[0].reset(-2)
	c.slots[1].reset(-1)

	return c
}

// Name returns a readable name of the channel.
func (c *Channel) Name() string {
	return fmt.Sprintf("Node[%d].Port[%d]->Node[%d].Port[%d]",
		c.from, c.fromPort.Display(), c.to, c.toPort.Display())
}

// From returns the sending end of the channel.
func (c *Channel) From() (network.NodeID, network.Port) {
	return c.from, c.fromPort
}

// To returns the receiving end of the channel.
func (c *Channel) To() (network.NodeID, network.Port) {
	return c.to, c.toPort
}

// slotOf returns the slot of a round, moving it to the round if it still
// holds an older one. The slot lock must be held.
func (c *Channel) slotOf(round int) (*slot, error) {
	s := &c.slots[round%2]
	if s.round > round {
		return nil, fmt.Errorf("channel %s, round %d: %w",
			c.Name(), round, ErrRoundEvicted)
	}

	if s.round < round {
		s.reset(round)
	}

	return s, nil
}

// Send posts the message of a round. Only one message can be sent per round.
func (c *Channel) Send(round int, msg *sim.Msg) error {
	if round < 0 {
		return fmt.Errorf("channel %s: invalid round %d", c.Name(), round)
	}

	s := &c.slots[round%2]

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := c.slotOf(round)
	if err != nil {
		return err
	}

	if s.sent {
		return &sim.DuplicateSendError{
			Node:  c.from,
			Round: round,
			Port:  c.fromPort,
		}
	}

	s.msg = msg
	s.sent = true
	close(s.ready)

	return nil
}

// Receive returns the message of a round. It blocks until the message is
// posted or the round is closed. A nil message means nothing was sent.
// Receiving takes the message out of the channel.
func (c *Channel) Receive(ctx context.Context, round int) (*sim.Msg, error) {
	if round < 0 {
		return nil, fmt.Errorf("channel %s: invalid round %d", c.Name(), round)
	}

	s := &c.slots[round%2]

	s.mu.Lock()
	_, err := c.slotOf(round)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	ready := s.ready
	s.mu.Unlock()

	select {
	case <-ready:
	case <-c.closer.RoundClosed(round):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.round != round {
		return nil, fmt.Errorf("channel %s, round %d: %w",
			c.Name(), round, ErrRoundEvicted)
	}

	msg := s.msg
	s.msg = nil

	return msg, nil
}
