// Package model encodes the differences between the PN, LOCAL and CONGEST
// models of distributed computing.
package model

import (
	"encoding/json"
	"fmt"
	"math/bits"
	"strings"

	"github.com/sarchlab/dasim/network"
	"github.com/sarchlab/dasim/sim"
)

// Kind is a model of computation.
type Kind int

// Models of computation.
const (
	PN Kind = iota
	LOCAL
	CONGEST
)

func (k Kind) String() string {
	switch k {
	case PN:
		return "PN"
	case LOCAL:
		return "LOCAL"
	case CONGEST:
		return "CONGEST"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind converts a model name into a Kind. The name is case-insensitive.
func ParseKind(s string) (Kind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PN":
		return PN, nil
	case "LOCAL":
		return LOCAL, nil
	case "CONGEST":
		return CONGEST, nil
	default:
		return PN, fmt.Errorf("unknown model %q", s)
	}
}

// MarshalYAML encodes the kind by name.
func (k Kind) MarshalYAML() (interface{}, error) {
	return k.String(), nil
}

// UnmarshalYAML decodes the kind from its name.
func (k *Kind) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string

	err := unmarshal(&s)
	if err != nil {
		return err
	}

	*k, err = ParseKind(s)

	return err
}

// Visibility tells what a node can know about node identities.
type Visibility int

// Identity visibilities. DefaultVisibility picks the natural visibility of
// the model.
const (
	DefaultVisibility Visibility = iota
	PortOnly
	FullID
)

func (v Visibility) String() string {
	switch v {
	case DefaultVisibility:
		return "default"
	case PortOnly:
		return "port-only"
	case FullID:
		return "full-id"
	default:
		return fmt.Sprintf("Visibility(%d)", int(v))
	}
}

// ParseVisibility converts a visibility name into a Visibility.
func ParseVisibility(s string) (Visibility, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.NewReplacer("-", "", "_", "").Replace(normalized)

	switch normalized {
	case "", "default":
		return DefaultVisibility, nil
	case "portonly", "port":
		return PortOnly, nil
	case "fullid", "full", "id":
		return FullID, nil
	default:
		return DefaultVisibility, fmt.Errorf("unknown identity visibility %q", s)
	}
}

// MarshalYAML encodes the visibility by name.
func (v Visibility) MarshalYAML() (interface{}, error) {
	return v.String(), nil
}

// UnmarshalYAML decodes the visibility from its name.
func (v *Visibility) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string

	err := unmarshal(&s)
	if err != nil {
		return err
	}

	*v, err = ParseVisibility(s)

	return err
}

// DefaultCongestFactor is the number of O(log n) words that fit in a CONGEST
// message when no explicit limit is configured.
const DefaultCongestFactor = 32

// Config selects a model and its parameters.
type Config struct {
	Kind       Kind
	Visibility Visibility

	// MessageSizeLimit is the CONGEST message budget in bits. Zero selects
	// DefaultCongestFactor * ceil(log2 n).
	MessageSizeLimit int
}

// Model answers what the nodes of one simulation may know and send.
type Model struct {
	kind       Kind
	visibility Visibility
	limit      int
	bounded    bool
}

// New validates the configuration and creates the model for a network of
// nodeCount nodes.
func New(c Config, nodeCount int) (*Model, error) {
	if nodeCount <= 0 {
		return nil, fmt.Errorf("model needs at least one node, got %d", nodeCount)
	}

	m := &Model{kind: c.Kind}

	err := m.resolveVisibility(c.Visibility)
	if err != nil {
		return nil, err
	}

	err = m.resolveLimit(c.MessageSizeLimit, nodeCount)
	if err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Model) resolveVisibility(v Visibility) error {
	switch m.kind {
	case PN:
		if v == FullID {
			return fmt.Errorf("the PN model cannot expose node identities")
		}

		m.visibility = PortOnly
	case LOCAL:
		if v == PortOnly {
			return fmt.Errorf("the LOCAL model always exposes node identities")
		}

		m.visibility = FullID
	case CONGEST:
		m.visibility = v
		if v == DefaultVisibility {
			m.visibility = FullID
		}
	default:
		return fmt.Errorf("unknown model %s", m.kind)
	}

	return nil
}

func (m *Model) resolveLimit(limit, nodeCount int) error {
	if limit < 0 {
		return fmt.Errorf("message size limit must be positive, got %d", limit)
	}

	if m.kind != CONGEST {
		if limit > 0 {
			return fmt.Errorf(
				"message size limit only applies to CONGEST, not %s", m.kind)
		}

		return nil
	}

	m.bounded = true
	m.limit = limit

	if m.limit == 0 {
		m.limit = DefaultCongestFactor * log2Ceil(nodeCount)
	}

	return nil
}

func log2Ceil(n int) int {
	if n <= 2 {
		return 1
	}

	return bits.Len(uint(n - 1))
}

// Kind returns the model of computation.
func (m *Model) Kind() Kind {
	return m.kind
}

// Visibility returns the resolved identity visibility.
func (m *Model) Visibility() Visibility {
	return m.visibility
}

// String describes the model.
func (m *Model) String() string {
	if m.bounded {
		return fmt.Sprintf("%s(%s, %d bits)", m.kind, m.visibility, m.limit)
	}

	return fmt.Sprintf("%s(%s)", m.kind, m.visibility)
}

// VisibleIdentity returns the identity of a node as other nodes may see it.
func (m *Model) VisibleIdentity(id network.NodeID) network.NodeID {
	if m.visibility == FullID {
		return id
	}

	return network.NoNode
}

// MaxMessageSize returns the message budget in bits. The second return value
// is false if messages are unbounded.
func (m *Model) MaxMessageSize() (int, bool) {
	return m.limit, m.bounded
}

// NodeInfo returns what a node may know before round 0.
func (m *Model) NodeInfo(net *network.Network, id network.NodeID) sim.NodeInfo {
	ports := net.Neighbors(id)

	info := sim.NodeInfo{
		ID:        m.VisibleIdentity(id),
		NodeCount: net.NodeCount(),
		Degree:    len(ports),
		Ports:     make([]sim.PortView, len(ports)),
		Input:     net.Input(id),
	}

	for i, p := range ports {
		info.Ports[i] = sim.PortView{
			Port:      p.Port,
			Neighbor:  m.VisibleIdentity(p.Neighbor),
			Direction: p.Direction,
		}
	}

	return info
}

// Mask returns the message as the receiver is allowed to see it. Without
// identities, a receiver only knows the port the message arrived on, so the
// port of the sender is hidden too.
func (m *Model) Mask(msg *sim.Msg) *sim.Msg {
	if msg == nil || m.visibility == FullID {
		return msg
	}

	masked := *msg
	masked.Src = network.NoNode
	masked.SrcPort = network.NoPort
	masked.Dst = network.NoNode

	return &masked
}

// MessageSize returns the size of a payload in bits. Payloads that do not
// implement sim.Sizer are measured by their JSON encoding.
func (m *Model) MessageSize(payload any) (int, error) {
	if s, ok := payload.(sim.Sizer); ok {
		return s.SizeInBits(), nil
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("measuring message of type %T: %w", payload, err)
	}

	return len(encoded) * 8, nil
}

// Admit checks if a payload may be sent under this model. Oversized messages
// are rejected, never truncated.
func (m *Model) Admit(
	node network.NodeID,
	round int,
	port network.Port,
	payload any,
) error {
	if !m.bounded {
		return nil
	}

	size, err := m.MessageSize(payload)
	if err != nil {
		return err
	}

	if size > m.limit {
		return &sim.MessageTooLargeError{
			Node:  node,
			Round: round,
			Port:  port,
			Size:  size,
			Limit: m.limit,
		}
	}

	return nil
}
