package network

import (
	"errors"
	"fmt"
)

// ErrInvalidTopology is matched by every error that rejects a network
// description.
var ErrInvalidTopology = errors.New("invalid topology")

// InvalidTopologyError reports why a network description was rejected.
type InvalidTopologyError struct {
	Node   NodeID
	Reason string
}

func (e *InvalidTopologyError) Error() string {
	if e.Node == NoNode {
		return fmt.Sprintf("invalid topology: %s", e.Reason)
	}

	return fmt.Sprintf("invalid topology at node %d: %s", e.Node, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidTopology) work.
func (e *InvalidTopologyError) Is(target error) bool {
	return target == ErrInvalidTopology
}

func invalid(node NodeID, reason string) error {
	return &InvalidTopologyError{Node: node, Reason: reason}
}
