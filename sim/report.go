package sim

import "github.com/sarchlab/dasim/network"

// NodeReport is what a node tells the round barrier when it finishes a round.
// Round -1 is the report of the Init step.
type NodeReport struct {
	Node         network.NodeID
	Round        int
	Sent         []*Msg
	Stepped      bool
	Blocked      bool
	WaitingOn    []network.NodeID
	Decided      bool
	NewlyDecided bool
	Output       any
	Halted       bool
	Err          error
}

// RoundSummary aggregates the reports of all the nodes in one round.
type RoundSummary struct {
	Round    int
	Messages int
	Stepped  int
	Blocked  int
	Decided  int
	Halted   int
	Total    int
}

// NodeResult is the final view of one node.
type NodeResult struct {
	Node         network.NodeID
	State        State
	Decided      bool
	Output       any
	DecidedRound int
	Halted       bool
	Err          error
}

// Result is the outcome of a simulation run.
type Result struct {
	RunID      string
	Algorithm  string
	Model      string
	Rounds     int
	Messages   int
	Terminated bool
	Nodes      []NodeResult
	Err        error
}

// Outputs returns the outputs of the decided nodes.
func (r *Result) Outputs() map[network.NodeID]any {
	outputs := make(map[network.NodeID]any, len(r.Nodes))
	for _, n := range r.Nodes {
		if n.Decided {
			outputs[n.Node] = n.Output
		}
	}

	return outputs
}

// Node returns the result of a node.
func (r *Result) Node(id network.NodeID) (NodeResult, bool) {
	for _, n := range r.Nodes {
		if n.Node == id {
			return n, true
		}
	}

	return NodeResult{}, false
}
