// Package deadlock supervises the progress of a simulation. The Detector finds
// nodes that can never make progress again and the Limiter caps the number of
// rounds.
package deadlock

import (
	"sort"

	"github.com/sarchlab/dasim/network"
	"github.com/sarchlab/dasim/sim"
)

// UnitStatus is the status of one node at the end of a round.
type UnitStatus struct {
	Node      network.NodeID
	Blocked   bool
	Exited    bool
	WaitingOn []network.NodeID
}

// Observation is what the coordinator saw in one round.
type Observation struct {
	Round int
	Units []UnitStatus
}

// A Detector maintains the wait-for relation among the nodes round by round.
//
// A blocked node is stuck for good if one of the nodes it waits for is stuck
// for good or has exited. The stuck nodes are the greatest set that satisfies
// this rule, which catches wait cycles as well as waits on exited nodes.
//
// A node that waits on a running node is never reported, even if the running
// node has decided. Step sees the round number, so a decided node may still
// send in a later round. Such runs end at the round limit instead.
type Detector struct{}

// NewDetector creates a new Detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Observe checks the status of the nodes after a round. It returns nil if the
// simulation can still make progress.
func (d *Detector) Observe(obs Observation) *sim.DeadlockError {
	byNode := make(map[network.NodeID]UnitStatus, len(obs.Units))
	for _, u := range obs.Units {
		byNode[u.Node] = u
	}

	stuck := d.stuckSet(byNode)
	if len(stuck) > 0 {
		return &sim.DeadlockError{
			Round:   obs.Round,
			Witness: d.witness(byNode, stuck),
		}
	}

	return nil
}

func (d *Detector) stuckSet(
	byNode map[network.NodeID]UnitStatus,
) map[network.NodeID]bool {
	stuck := make(map[network.NodeID]bool)
	for id, u := range byNode {
		if u.Blocked && !u.Exited {
			stuck[id] = true
		}
	}

	for changed := true; changed; {
		changed = false

		for id := range stuck {
			if !d.waitsOnStuckOrExited(byNode[id], byNode, stuck) {
				delete(stuck, id)
				changed = true
			}
		}
	}

	return stuck
}

func (d *Detector) waitsOnStuckOrExited(
	u UnitStatus,
	byNode map[network.NodeID]UnitStatus,
	stuck map[network.NodeID]bool,
) bool {
	for _, other := range u.WaitingOn {
		if stuck[other] || byNode[other].Exited {
			return true
		}
	}

	return false
}

// witness returns the stuck nodes plus the exited nodes they wait for.
func (d *Detector) witness(
	byNode map[network.NodeID]UnitStatus,
	stuck map[network.NodeID]bool,
) []network.NodeID {
	set := make(map[network.NodeID]bool)

	for id := range stuck {
		set[id] = true

		for _, other := range byNode[id].WaitingOn {
			if byNode[other].Exited {
				set[other] = true
			}
		}
	}

	witness := make([]network.NodeID, 0, len(set))
	for id := range set {
		witness = append(witness, id)
	}

	sort.Slice(witness, func(i, j int) bool { return witness[i] < witness[j] })

	return witness
}
