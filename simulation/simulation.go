// Package simulation wires an algorithm, a network and a model of computation
// into a runnable simulation.
package simulation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sarchlab/dasim/datarecording"
	"github.com/sarchlab/dasim/monitoring"
	"github.com/sarchlab/dasim/network"
	"github.com/sarchlab/dasim/sim"
	"github.com/sarchlab/dasim/sim/channel"
	"github.com/sarchlab/dasim/sim/model"
	"github.com/sarchlab/dasim/sim/node"
	"github.com/sarchlab/dasim/sim/round"
	"github.com/sarchlab/dasim/tracing"
)

// ErrAlreadyRun is returned when a simulation is run a second time.
var ErrAlreadyRun = errors.New("simulation has already run")

// A Simulation runs one algorithm once on one network.
type Simulation struct {
	id     string
	net    *network.Network
	alg    sim.Algorithm
	model  *model.Model
	config Config

	coordinator *round.Coordinator
	nodes       map[network.NodeID]*node.Runtime
	channels    []*channel.Channel

	dataRecorder datarecording.DataRecorder
	dbTracer     *tracing.DBTracer
	monitor      *monitoring.Monitor
	monitorURL   string

	runOnce    sync.Once
	terminated bool
}

// ID returns the run ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// Network returns the network the simulation runs on.
func (s *Simulation) Network() *network.Network {
	return s.net
}

// Model returns the model of computation.
func (s *Simulation) Model() *model.Model {
	return s.model
}

// Config returns the parameters of the run.
func (s *Simulation) Config() Config {
	return s.config
}

// Coordinator returns the round coordinator. Hooks attached to it observe
// the run.
func (s *Simulation) Coordinator() *round.Coordinator {
	return s.coordinator
}

// Node returns the runtime of a node.
func (s *Simulation) Node(id network.NodeID) *node.Runtime {
	return s.nodes[id]
}

// Channels returns the channels between the nodes.
func (s *Simulation) Channels() []*channel.Channel {
	return s.channels
}

// GetDataRecorder returns the data recorder, or nil if recording is off.
func (s *Simulation) GetDataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// GetMonitor returns the monitor, or nil if monitoring is off.
func (s *Simulation) GetMonitor() *monitoring.Monitor {
	return s.monitor
}

// MonitorURL returns the address of the monitoring server.
func (s *Simulation) MonitorURL() string {
	return s.monitorURL
}

// Run executes the algorithm until every node decides or the run is aborted.
// The result is always returned; the error is the reason of an abort.
func (s *Simulation) Run(ctx context.Context) (*sim.Result, error) {
	err := ErrAlreadyRun
	result := &sim.Result{}

	s.runOnce.Do(func() {
		outcome := s.coordinator.Run(ctx)
		result = s.collectResult(outcome)
		err = outcome.Err

		if s.dbTracer != nil {
			s.dbTracer.RecordResult(s.net, result)
		}
	})

	return result, err
}

func (s *Simulation) collectResult(outcome round.Outcome) *sim.Result {
	result := &sim.Result{
		RunID:      s.id,
		Algorithm:  s.alg.Name(),
		Model:      s.model.String(),
		Rounds:     outcome.Rounds,
		Messages:   outcome.Messages,
		Terminated: outcome.Terminated,
		Err:        outcome.Err,
	}

	for _, nodeID := range s.net.Nodes() {
		snapshot := s.nodes[nodeID].Snapshot()

		result.Nodes = append(result.Nodes, sim.NodeResult{
			Node:         nodeID,
			State:        snapshot.State,
			Decided:      snapshot.Decided,
			Output:       snapshot.Output,
			DecidedRound: snapshot.DecidedRound,
			Halted:       snapshot.Status == node.Halted,
			Err:          snapshot.Err,
		})
	}

	return result
}

// Terminate flushes the recorded data and stops the monitor.
func (s *Simulation) Terminate() {
	if s.terminated {
		return
	}

	s.terminated = true

	if s.dbTracer != nil {
		s.dbTracer.Terminate()
	}

	if s.dataRecorder != nil {
		s.dataRecorder.Close()
	}

	if s.monitor != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		s.monitor.StopServer(ctx)
	}
}
