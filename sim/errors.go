package sim

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sarchlab/dasim/network"
)

// Sentinels that the typed errors of this package match with errors.Is.
var (
	ErrMessageTooLarge        = errors.New("message too large")
	ErrPortOutOfRange         = errors.New("port out of range")
	ErrDuplicateSend          = errors.New("duplicate send")
	ErrDeadlock               = errors.New("deadlock")
	ErrRoundLimitExceeded     = errors.New("round limit exceeded")
	ErrPostDecisionTransition = errors.New("post-decision state transition")
	ErrAlgorithmPanic         = errors.New("algorithm panicked")
)

// MessageTooLargeError is reported when a payload exceeds the message size
// limit of the model.
type MessageTooLargeError struct {
	Node  network.NodeID
	Round int
	Port  network.Port
	Size  int
	Limit int
}

func (e *MessageTooLargeError) Error() string {
	return fmt.Sprintf(
		"node %d, round %d, port %d: message of %d bits exceeds the limit of %d bits",
		e.Node, e.Round, e.Port.Display(), e.Size, e.Limit)
}

// Is makes the error match ErrMessageTooLarge.
func (e *MessageTooLargeError) Is(target error) bool {
	return target == ErrMessageTooLarge
}

// PortOutOfRangeError is reported when a node sends through a port that it
// does not have or cannot send through.
type PortOutOfRangeError struct {
	Node      network.NodeID
	Round     int
	Port      network.Port
	PortCount int
	Reason    string
}

func (e *PortOutOfRangeError) Error() string {
	return fmt.Sprintf(
		"node %d, round %d: port %d is not usable (node has %d ports): %s",
		e.Node, e.Round, e.Port.Display(), e.PortCount, e.Reason)
}

// Is makes the error match ErrPortOutOfRange.
func (e *PortOutOfRangeError) Is(target error) bool {
	return target == ErrPortOutOfRange
}

// DuplicateSendError is reported when a node sends twice through the same
// port in one round.
type DuplicateSendError struct {
	Node  network.NodeID
	Round int
	Port  network.Port
}

func (e *DuplicateSendError) Error() string {
	return fmt.Sprintf("node %d, round %d: second message on port %d",
		e.Node, e.Round, e.Port.Display())
}

// Is makes the error match ErrDuplicateSend.
func (e *DuplicateSendError) Is(target error) bool {
	return target == ErrDuplicateSend
}

// DeadlockError is reported when a set of nodes can never make progress.
type DeadlockError struct {
	Round   int
	Witness []network.NodeID
}

func (e *DeadlockError) Error() string {
	ids := make([]string, len(e.Witness))
	for i, id := range e.Witness {
		ids[i] = fmt.Sprint(id)
	}

	return fmt.Sprintf("deadlock detected in round %d, witness {%s}",
		e.Round, strings.Join(ids, ", "))
}

// Is makes the error match ErrDeadlock.
func (e *DeadlockError) Is(target error) bool {
	return target == ErrDeadlock
}

// RoundLimitExceededError is reported when the simulation runs out of rounds.
// Round is the number of rounds that were completed.
type RoundLimitExceededError struct {
	Round int
	Max   int
}

func (e *RoundLimitExceededError) Error() string {
	return fmt.Sprintf("round limit of %d exceeded at round %d", e.Max, e.Round)
}

// Is makes the error match ErrRoundLimitExceeded.
func (e *RoundLimitExceededError) Is(target error) bool {
	return target == ErrRoundLimitExceeded
}

// PostDecisionTransitionError is reported when a decided node changes its
// state or its output.
type PostDecisionTransitionError struct {
	Node   network.NodeID
	Round  int
	Reason string
}

func (e *PostDecisionTransitionError) Error() string {
	return fmt.Sprintf("node %d, round %d: detected post-decision transition: %s",
		e.Node, e.Round, e.Reason)
}

// Is makes the error match ErrPostDecisionTransition.
func (e *PostDecisionTransitionError) Is(target error) bool {
	return target == ErrPostDecisionTransition
}

// AlgorithmPanicError wraps a panic raised by the algorithm code.
type AlgorithmPanicError struct {
	Node  network.NodeID
	Round int
	Value any
}

func (e *AlgorithmPanicError) Error() string {
	if e.Round < 0 {
		return fmt.Sprintf("node %d: algorithm panicked in init: %v",
			e.Node, e.Value)
	}

	return fmt.Sprintf("node %d, round %d: algorithm panicked: %v",
		e.Node, e.Round, e.Value)
}

// Is makes the error match ErrAlgorithmPanic.
func (e *AlgorithmPanicError) Is(target error) bool {
	return target == ErrAlgorithmPanic
}
