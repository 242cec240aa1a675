package model

import (
	"github.com/sarchlab/dasim/network"
	"github.com/sarchlab/dasim/sim"
)

// An Adapter runs an algorithm under the rules of a model. Nodes talk to the
// algorithm only through the adapter.
type Adapter struct {
	alg   sim.Algorithm
	model *Model
}

// NewAdapter wraps an algorithm with a model.
func NewAdapter(alg sim.Algorithm, m *Model) *Adapter {
	if alg == nil {
		panic("algorithm is nil")
	}

	if m == nil {
		panic("model is nil")
	}

	return &Adapter{alg: alg, model: m}
}

// Name returns the name of the algorithm.
func (a *Adapter) Name() string {
	return a.alg.Name()
}

// Model returns the model the algorithm runs under.
func (a *Adapter) Model() *Model {
	return a.model
}

// NodeInfo returns the local knowledge of a node.
func (a *Adapter) NodeInfo(net *network.Network, id network.NodeID) sim.NodeInfo {
	return a.model.NodeInfo(net, id)
}

// Init creates the initial state of a node.
func (a *Adapter) Init(info sim.NodeInfo) (sim.State, sim.Decision) {
	return a.alg.Init(info)
}

// Step runs one round of the algorithm with the identities in the inbox
// hidden as the model requires.
func (a *Adapter) Step(
	state sim.State,
	round int,
	inbox sim.Inbox,
) (sim.State, sim.Outbox, sim.Decision) {
	masked := make(sim.Inbox, len(inbox))
	for i, msg := range inbox {
		masked[i] = a.model.Mask(msg)
	}

	return a.alg.Step(state, round, masked)
}

// Await returns the ports the node must hear from before its next step.
func (a *Adapter) Await(state sim.State) []network.Port {
	awaiter, ok := a.alg.(sim.Awaiter)
	if !ok {
		return nil
	}

	return awaiter.Await(state)
}

// Admit checks an outgoing payload against the message size limit.
func (a *Adapter) Admit(
	node network.NodeID,
	round int,
	port network.Port,
	payload any,
) error {
	return a.model.Admit(node, round, port, payload)
}
