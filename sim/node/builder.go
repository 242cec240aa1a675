package node

import (
	"strconv"

	"github.com/sarchlab/dasim/network"
	"github.com/sarchlab/dasim/sim"
	"github.com/sarchlab/dasim/sim/channel"
	"github.com/sarchlab/dasim/sim/id"
	"github.com/sarchlab/dasim/sim/model"
)

// Builder can build node runtimes.
type Builder struct {
	net         *network.Network
	adapter     *model.Adapter
	barrier     Barrier
	policy      sim.DecidedPolicy
	idGenerator id.IDGenerator
}

// MakeBuilder creates a new builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		policy: sim.Participate,
	}
}

// WithNetwork sets the network the node lives in.
func (b Builder) WithNetwork(net *network.Network) Builder {
	b.net = net
	return b
}

// WithAdapter sets the algorithm, wrapped by its model.
func (b Builder) WithAdapter(adapter *model.Adapter) Builder {
	b.adapter = adapter
	return b
}

// WithBarrier sets the round barrier the node synchronizes with.
func (b Builder) WithBarrier(barrier Barrier) Builder {
	b.barrier = barrier
	return b
}

// WithPolicy sets what the node does after it decides.
func (b Builder) WithPolicy(policy sim.DecidedPolicy) Builder {
	b.policy = policy
	return b
}

// WithIDGenerator sets the generator of message IDs. By default, every node
// numbers its own messages, prefixed with its ID.
func (b Builder) WithIDGenerator(g id.IDGenerator) Builder {
	b.idGenerator = g
	return b
}

func (b Builder) parametersMustBeValid(nodeID network.NodeID) {
	if b.net == nil {
		panic("network is not set")
	}

	if b.adapter == nil {
		panic("adapter is not set")
	}

	if b.barrier == nil {
		panic("barrier is not set")
	}

	if !b.net.HasNode(nodeID) {
		panic("node is not in the network")
	}
}

// Build creates the runtime of a node.
func (b Builder) Build(nodeID network.NodeID) *Runtime {
	b.parametersMustBeValid(nodeID)

	degree := b.net.PortCount(nodeID)

	idGenerator := b.idGenerator
	if idGenerator == nil {
		idGenerator = id.NewPrefixedIDGenerator(strconv.Itoa(int(nodeID)))
	}

	r := &Runtime{
		id:           nodeID,
		net:          b.net,
		ports:        b.net.Neighbors(nodeID),
		adapter:      b.adapter,
		barrier:      b.barrier,
		policy:       b.policy,
		idGenerator:  idGenerator,
		out:          make([]*channel.Channel, degree),
		in:           make([]*channel.Channel, degree),
		pending:      make([][]*sim.Msg, degree),
		decidedRound: -1,
	}

	r.publish(-1, Running)

	return r
}
