// Package sim defines the contract between the simulation engine and the
// distributed algorithms it runs.
//
// An algorithm is a per-node state machine. The engine calls Init once per
// node and then Step once per node per communication round. Step for round r
// sees the messages that the neighbors sent in round r-1 and returns the
// messages to send in round r.
package sim

import (
	"fmt"
	"strings"

	"github.com/sarchlab/dasim/network"
)

// State is the algorithm-defined state of a single node. The engine never
// looks inside a state, but it treats states as values: Step must return a new
// state instead of mutating the one it receives.
type State = any

// PortView is what a node knows about one of its ports.
type PortView struct {
	Port      network.Port
	Neighbor  network.NodeID
	Direction network.Direction
}

// NodeInfo is the local knowledge of a node before round 0. ID and the
// neighbor IDs are network.NoNode when identities are not visible.
type NodeInfo struct {
	ID        network.NodeID
	NodeCount int
	Degree    int
	Ports     []PortView
	Input     any
}

// Decision tells if a node has produced its final output.
type Decision struct {
	Decided bool
	Output  any
}

// Undecided returns a decision that says the node is still running.
func Undecided() Decision {
	return Decision{}
}

// Decide returns a decision that carries the final output of a node.
func Decide(output any) Decision {
	return Decision{Decided: true, Output: output}
}

// Algorithm is a distributed algorithm, described as a per-node state machine.
type Algorithm interface {
	// Name returns a human readable name.
	Name() string

	// Init creates the initial state of a node.
	Init(info NodeInfo) (State, Decision)

	// Step consumes the messages received in the previous round and produces
	// the next state and the messages to send in this round.
	Step(state State, round int, inbox Inbox) (State, Outbox, Decision)
}

// Awaiter is implemented by algorithms with blocking receives. Await returns
// the ports that must carry a message before the node can take its next step.
// A node that is waiting does not step and does not send.
type Awaiter interface {
	Await(state State) []network.Port
}

// Sizer is implemented by payloads that know their encoded size.
type Sizer interface {
	SizeInBits() int
}

// DecidedPolicy determines what a node does after it has decided.
type DecidedPolicy int

const (
	// Participate keeps decided nodes in every round until global termination.
	// Their state and output must not change anymore.
	Participate DecidedPolicy = iota

	// Halt removes a node from the round barrier after the round it decided
	// in. The node does not send anything after that round.
	Halt
)

func (p DecidedPolicy) String() string {
	switch p {
	case Participate:
		return "participate"
	case Halt:
		return "halt"
	default:
		return "unknown"
	}
}

// ParseDecidedPolicy converts a policy name into a DecidedPolicy.
func ParseDecidedPolicy(s string) (DecidedPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "participate":
		return Participate, nil
	case "halt":
		return Halt, nil
	default:
		return Participate, fmt.Errorf("unknown decided policy %q", s)
	}
}

// MarshalYAML encodes the policy by name.
func (p DecidedPolicy) MarshalYAML() (interface{}, error) {
	return p.String(), nil
}

// UnmarshalYAML decodes the policy from its name.
func (p *DecidedPolicy) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string

	err := unmarshal(&s)
	if err != nil {
		return err
	}

	*p, err = ParseDecidedPolicy(s)

	return err
}
