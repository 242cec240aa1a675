package network

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// A Description is the caller-supplied form of a network, before validation.
type Description struct {
	Directed bool       `yaml:"directed"`
	Nodes    []NodeSpec `yaml:"nodes"`
	Edges    []EdgeSpec `yaml:"edges"`
}

// NodeSpec declares a node and its optional local input.
type NodeSpec struct {
	ID    NodeID `yaml:"id"`
	Input any    `yaml:"input,omitempty"`
}

// EdgeSpec declares an edge. A nil port is assigned the next free port of the
// endpoint, in the order the edges are declared.
type EdgeSpec struct {
	From     NodeID `yaml:"from"`
	To       NodeID `yaml:"to"`
	FromPort *Port  `yaml:"from_port,omitempty"`
	ToPort   *Port  `yaml:"to_port,omitempty"`
}

// WithPorts returns a copy of the edge with explicit port numbers.
func (e EdgeSpec) WithPorts(fromPort, toPort Port) EdgeSpec {
	e.FromPort = &fromPort
	e.ToPort = &toPort

	return e
}

// Describe converts a network back into a description with explicit ports.
func (n *Network) Describe() Description {
	desc := Description{Directed: n.directed}

	for i, id := range n.nodes {
		desc.Nodes = append(desc.Nodes, NodeSpec{ID: id, Input: n.inputs[i]})
	}

	for _, e := range n.edges {
		desc.Edges = append(desc.Edges,
			EdgeSpec{From: e.From, To: e.To}.WithPorts(e.FromPort, e.ToPort))
	}

	return desc
}

// LoadDescription parses a YAML network description. When the node list is
// omitted, the nodes are inferred as 0..max over the edge endpoints.
func LoadDescription(r io.Reader) (Description, error) {
	desc := Description{}

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	err := decoder.Decode(&desc)
	if err != nil {
		return Description{}, fmt.Errorf("decoding network description: %w", err)
	}

	if len(desc.Nodes) == 0 {
		desc.Nodes, err = impliedNodes(desc.Edges)
		if err != nil {
			return Description{}, err
		}
	}

	return desc, nil
}

// Load parses a YAML network description and builds the network.
func Load(r io.Reader) (*Network, error) {
	desc, err := LoadDescription(r)
	if err != nil {
		return nil, err
	}

	return New(desc)
}

// MaxImpliedNodes caps the node count of a network whose nodes are implied by
// its edges.
const MaxImpliedNodes = 1 << 20

// impliedNodes returns the nodes 0..max, where max is the largest ID that an
// edge uses.
func impliedNodes(edges []EdgeSpec) ([]NodeSpec, error) {
	if len(edges) == 0 {
		return nil, nil
	}

	max := NodeID(0)
	for _, e := range edges {
		for _, id := range [2]NodeID{e.From, e.To} {
			if id >= MaxImpliedNodes {
				return nil, invalid(id, fmt.Sprintf(
					"node ID exceeds the limit of %d implied nodes",
					MaxImpliedNodes))
			}

			if id > max {
				max = id
			}
		}
	}

	nodes := make([]NodeSpec, 0, int(max)+1)
	for id := NodeID(0); id <= max; id++ {
		nodes = append(nodes, NodeSpec{ID: id})
	}

	return nodes, nil
}
