// Package network describes the immutable topology a simulation runs on.
//
// A Network is a set of nodes connected by edges. Every edge end is attached to
// a port of its node. Ports are numbered 0..degree-1 per node and never change
// once the network is built, so they can be used as the only addressing scheme
// in port-numbering algorithms.
package network

import (
	"fmt"
	"sort"
)

// NodeID identifies a node in the network.
type NodeID int

// NoNode is the NodeID reported when an identity is not visible.
const NoNode NodeID = -1

// Port is a node-local port index, starting from 0.
type Port int

// NoPort is the Port reported when the port of a remote node is not visible.
const NoPort Port = -1

// Display returns the 1-based port number used in textual output.
func (p Port) Display() int {
	return int(p) + 1
}

// Direction tells which way messages can travel through a port.
type Direction int

// Port directions.
const (
	Bidirectional Direction = iota
	Outbound
	Inbound
)

func (d Direction) String() string {
	switch d {
	case Bidirectional:
		return "bidirectional"
	case Outbound:
		return "outbound"
	case Inbound:
		return "inbound"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// CanSend returns true if messages can leave through a port of this direction.
func (d Direction) CanSend() bool {
	return d == Bidirectional || d == Outbound
}

// CanReceive returns true if messages can arrive at a port of this direction.
func (d Direction) CanReceive() bool {
	return d == Bidirectional || d == Inbound
}

// PortInfo describes one port of a node.
type PortInfo struct {
	Port       Port
	Neighbor   NodeID
	RemotePort Port
	Direction  Direction
}

// Edge connects a port of one node to a port of another node.
type Edge struct {
	From     NodeID
	FromPort Port
	To       NodeID
	ToPort   Port
	Directed bool
}

// A Network is the read-only topology shared by every node of a simulation.
type Network struct {
	directed bool
	nodes    []NodeID
	index    map[NodeID]int
	ports    [][]PortInfo
	inputs   []any
	edges    []Edge
}

// Directed returns true if the edges of the network are one-way.
func (n *Network) Directed() bool {
	return n.directed
}

// Nodes returns all node IDs in ascending order.
func (n *Network) Nodes() []NodeID {
	nodes := make([]NodeID, len(n.nodes))
	copy(nodes, n.nodes)

	return nodes
}

// NodeCount returns the number of nodes.
func (n *Network) NodeCount() int {
	return len(n.nodes)
}

// HasNode checks if the node exists.
func (n *Network) HasNode(id NodeID) bool {
	_, ok := n.index[id]
	return ok
}

// Neighbors returns the ports of a node ordered by port number.
func (n *Network) Neighbors(id NodeID) []PortInfo {
	ports := n.mustGetPorts(id)

	neighbors := make([]PortInfo, len(ports))
	copy(neighbors, ports)

	return neighbors
}

// PortCount returns the number of ports of a node.
func (n *Network) PortCount(id NodeID) int {
	return len(n.mustGetPorts(id))
}

// PortInfo returns the description of a single port.
func (n *Network) PortInfo(id NodeID, port Port) (PortInfo, bool) {
	ports := n.mustGetPorts(id)
	if port < 0 || int(port) >= len(ports) {
		return PortInfo{}, false
	}

	return ports[port], true
}

// Input returns the local input that was assigned to a node.
func (n *Network) Input(id NodeID) any {
	i, ok := n.index[id]
	if !ok {
		panic(fmt.Sprintf("node %d is not in the network", id))
	}

	return n.inputs[i]
}

// Edges returns the edges in the order they were declared.
func (n *Network) Edges() []Edge {
	edges := make([]Edge, len(n.edges))
	copy(edges, n.edges)

	return edges
}

// EdgeCount returns the number of edges.
func (n *Network) EdgeCount() int {
	return len(n.edges)
}

// MaxDegree returns the largest port count of any node.
func (n *Network) MaxDegree() int {
	max := 0
	for _, ports := range n.ports {
		if len(ports) > max {
			max = len(ports)
		}
	}

	return max
}

func (n *Network) mustGetPorts(id NodeID) []PortInfo {
	i, ok := n.index[id]
	if !ok {
		panic(fmt.Sprintf("node %d is not in the network", id))
	}

	return n.ports[i]
}

// New validates a description and builds the network from it.
func New(desc Description) (*Network, error) {
	if len(desc.Nodes) == 0 {
		return nil, invalid(NoNode, "network has no nodes")
	}

	n := &Network{
		directed: desc.Directed,
		index:    make(map[NodeID]int, len(desc.Nodes)),
	}

	err := n.addNodes(desc.Nodes)
	if err != nil {
		return nil, err
	}

	a := newPortAssigner(len(n.nodes))
	for _, e := range desc.Edges {
		err = n.addEdge(a, e)
		if err != nil {
			return nil, err
		}
	}

	err = n.finalizePorts(a)
	if err != nil {
		return nil, err
	}

	return n, nil
}

// FromEdgeList builds an undirected network from a list of node pairs. The
// nodes are 0..max, and the order of the edges determines the port numbers.
func FromEdgeList(edges [][2]NodeID) (*Network, error) {
	if len(edges) == 0 {
		return nil, invalid(NoNode, "no edges given")
	}

	desc := Description{}
	for _, e := range edges {
		desc.Edges = append(desc.Edges, EdgeSpec{From: e[0], To: e[1]})
	}

	var err error
	desc.Nodes, err = impliedNodes(desc.Edges)
	if err != nil {
		return nil, err
	}

	return New(desc)
}

func (n *Network) addNodes(specs []NodeSpec) error {
	sorted := make([]NodeSpec, len(specs))
	copy(sorted, specs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ID < sorted[j].ID
	})

	for _, s := range sorted {
		if s.ID < 0 {
			return invalid(s.ID, "node ID must not be negative")
		}

		if _, dup := n.index[s.ID]; dup {
			return invalid(s.ID, "duplicate node ID")
		}

		n.index[s.ID] = len(n.nodes)
		n.nodes = append(n.nodes, s.ID)
		n.inputs = append(n.inputs, s.Input)
	}

	n.ports = make([][]PortInfo, len(n.nodes))

	return nil
}

func (n *Network) addEdge(a *portAssigner, e EdgeSpec) error {
	from, ok := n.index[e.From]
	if !ok {
		return invalid(e.From, fmt.Sprintf(
			"edge %d-%d references unknown node %d", e.From, e.To, e.From))
	}

	to, ok := n.index[e.To]
	if !ok {
		return invalid(e.To, fmt.Sprintf(
			"edge %d-%d references unknown node %d", e.From, e.To, e.To))
	}

	if from == to {
		return invalid(e.From, "self loops are not allowed")
	}

	if a.connected(from, to, n.directed) {
		return invalid(e.From, fmt.Sprintf(
			"parallel edge %d-%d, the graph must be simple", e.From, e.To))
	}

	fromPort, err := a.take(e.From, from, e.FromPort)
	if err != nil {
		return err
	}

	toPort, err := a.take(e.To, to, e.ToPort)
	if err != nil {
		return err
	}

	fromDir, toDir := Bidirectional, Bidirectional
	if n.directed {
		fromDir, toDir = Outbound, Inbound
	}

	a.connect(from, to)
	a.pending[from] = append(a.pending[from], PortInfo{
		Port: fromPort, Neighbor: e.To, RemotePort: toPort, Direction: fromDir,
	})
	a.pending[to] = append(a.pending[to], PortInfo{
		Port: toPort, Neighbor: e.From, RemotePort: fromPort, Direction: toDir,
	})

	n.edges = append(n.edges, Edge{
		From:     e.From,
		FromPort: fromPort,
		To:       e.To,
		ToPort:   toPort,
		Directed: n.directed,
	})

	return nil
}

func (n *Network) finalizePorts(a *portAssigner) error {
	for i, pending := range a.pending {
		ports := make([]PortInfo, len(pending))
		for _, p := range pending {
			if int(p.Port) >= len(pending) {
				return invalid(n.nodes[i], fmt.Sprintf(
					"port numbers must be contiguous from %d to %d, got %d",
					Port(0).Display(), len(pending), p.Port.Display()))
			}

			ports[p.Port] = p
		}

		n.ports[i] = ports
	}

	return nil
}

type nodePair struct {
	a, b int
}

type portAssigner struct {
	next      []Port
	used      []map[Port]bool
	pending   [][]PortInfo
	neighbors map[nodePair]bool
}

func newPortAssigner(numNodes int) *portAssigner {
	a := &portAssigner{
		next:      make([]Port, numNodes),
		used:      make([]map[Port]bool, numNodes),
		pending:   make([][]PortInfo, numNodes),
		neighbors: make(map[nodePair]bool),
	}

	for i := range a.used {
		a.used[i] = make(map[Port]bool)
	}

	return a
}

func (a *portAssigner) take(id NodeID, i int, explicit *Port) (Port, error) {
	if explicit == nil {
		for a.used[i][a.next[i]] {
			a.next[i]++
		}

		p := a.next[i]
		a.used[i][p] = true

		return p, nil
	}

	p := *explicit
	if p < 0 {
		return 0, invalid(id, fmt.Sprintf("port %d is negative", int(p)))
	}

	if a.used[i][p] {
		return 0, invalid(id, fmt.Sprintf("duplicate port %d", p.Display()))
	}

	a.used[i][p] = true

	return p, nil
}

func (a *portAssigner) connected(from, to int, directed bool) bool {
	if a.neighbors[nodePair{from, to}] {
		return true
	}

	return !directed && a.neighbors[nodePair{to, from}]
}

func (a *portAssigner) connect(from, to int) {
	a.neighbors[nodePair{from, to}] = true
}
