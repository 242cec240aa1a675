package sim

import "github.com/sarchlab/dasim/network"

// Msg is a message that travels along one edge in one round. A message is
// immutable once it is sent.
type Msg struct {
	ID      string
	Round   int
	Src     network.NodeID
	SrcPort network.Port
	Dst     network.NodeID
	DstPort network.Port
	Payload any
}

// Inbox holds the messages delivered to a node, indexed by the receiving
// port. A nil entry means that nothing arrived on that port.
type Inbox []*Msg

// Payload returns the payload received on a port, or nil.
func (in Inbox) Payload(port network.Port) any {
	if port < 0 || int(port) >= len(in) || in[port] == nil {
		return nil
	}

	return in[port].Payload
}

// Count returns the number of ports that received a message.
func (in Inbox) Count() int {
	count := 0
	for _, m := range in {
		if m != nil {
			count++
		}
	}

	return count
}

// Outgoing is a payload that a node wants to send through a port. A nil
// payload means the node stays silent on that port.
type Outgoing struct {
	Port    network.Port
	Payload any
}

// Outbox is the list of messages a node sends in a round.
type Outbox []Outgoing

// SendTo appends a message to the outbox.
func (out Outbox) SendTo(port network.Port, payload any) Outbox {
	return append(out, Outgoing{Port: port, Payload: payload})
}

// Broadcast returns an outbox that sends the same payload through every port.
func Broadcast(degree int, payload any) Outbox {
	out := make(Outbox, 0, degree)
	for p := 0; p < degree; p++ {
		out = append(out, Outgoing{Port: network.Port(p), Payload: payload})
	}

	return out
}
