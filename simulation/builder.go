package simulation

import (
	"github.com/rs/zerolog"

	"github.com/sarchlab/dasim/datarecording"
	"github.com/sarchlab/dasim/monitoring"
	"github.com/sarchlab/dasim/network"
	"github.com/sarchlab/dasim/sim"
	"github.com/sarchlab/dasim/sim/channel"
	"github.com/sarchlab/dasim/sim/id"
	"github.com/sarchlab/dasim/sim/model"
	"github.com/sarchlab/dasim/sim/node"
	"github.com/sarchlab/dasim/sim/round"
	"github.com/sarchlab/dasim/tracing"
)

// Builder can be used to build a simulation.
type Builder struct {
	config         Config
	recording      bool
	skipMessages   bool
	outputFileName string
	monitorOn      bool
	monitorPort    int
	openBrowser    bool
	logger         *zerolog.Logger
	parallelIDs    bool
	tracers        []tracing.Tracer
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces all the run parameters.
func (b Builder) WithConfig(c Config) Builder {
	b.config = c
	return b
}

// WithModel sets the model of computation.
func (b Builder) WithModel(k model.Kind) Builder {
	b.config.Model = k
	return b
}

// WithMaxRounds sets the round cap.
func (b Builder) WithMaxRounds(n int) Builder {
	b.config.MaxRounds = n
	return b
}

// WithMessageSizeLimit sets the CONGEST message budget in bits.
func (b Builder) WithMessageSizeLimit(bits int) Builder {
	b.config.MessageSizeLimit = bits
	return b
}

// WithIdentityVisibility sets whether the nodes see identities.
func (b Builder) WithIdentityVisibility(v model.Visibility) Builder {
	b.config.IdentityVisibility = v
	return b
}

// WithDecidedPolicy sets what decided nodes do.
func (b Builder) WithDecidedPolicy(p sim.DecidedPolicy) Builder {
	b.config.DecidedPolicy = p
	return b
}

// WithDataRecording records the run into a SQLite database.
func (b Builder) WithDataRecording() Builder {
	b.recording = true
	return b
}

// WithoutMessageRecording keeps the individual messages out of the database.
func (b Builder) WithoutMessageRecording() Builder {
	b.skipMessages = true
	return b
}

// WithOutputFileName sets the custom output file name for the data recorder.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.outputFileName = filename
	return b
}

// WithMonitor starts the monitoring server with the simulation.
func (b Builder) WithMonitor() Builder {
	b.monitorOn = true
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

// WithBrowser opens the monitoring page once the server starts.
func (b Builder) WithBrowser() Builder {
	b.openBrowser = true
	return b
}

// WithLogger logs the rounds of the run.
func (b Builder) WithLogger(logger zerolog.Logger) Builder {
	b.logger = &logger
	return b
}

// WithParallelIDGenerator uses globally unique message IDs.
func (b Builder) WithParallelIDGenerator() Builder {
	b.parallelIDs = true
	return b
}

// WithTracer attaches an additional tracer.
func (b Builder) WithTracer(t tracing.Tracer) Builder {
	b.tracers = append(b.tracers[:len(b.tracers):len(b.tracers)], t)
	return b
}

func (b Builder) parametersMustBeValid() {
	if !b.monitorOn && b.monitorPort != 0 {
		panic("monitor port cannot be set when monitoring is disabled")
	}

	if !b.monitorOn && b.openBrowser {
		panic("browser cannot be opened when monitoring is disabled")
	}

	if !b.recording && b.outputFileName != "" {
		panic("output file cannot be set when recording is disabled")
	}
}

// Build wires an algorithm onto a network. It fails if the configuration is
// invalid for the network.
func (b Builder) Build(
	net *network.Network,
	alg sim.Algorithm,
) (*Simulation, error) {
	b.parametersMustBeValid()

	if net == nil || alg == nil {
		panic("network and algorithm are required")
	}

	err := b.config.Validate()
	if err != nil {
		return nil, err
	}

	m, err := model.New(b.config.modelConfig(), net.NodeCount())
	if err != nil {
		return nil, err
	}

	s := &Simulation{
		id:          id.NewRunID(),
		net:         net,
		alg:         alg,
		model:       m,
		config:      b.config,
		coordinator: round.NewCoordinator(b.config.MaxRounds),
		nodes:       make(map[network.NodeID]*node.Runtime),
	}

	b.buildNodes(s)
	b.connect(s)
	b.attachTracers(s)

	if b.monitorOn {
		b.startMonitor(s)
	}

	return s, nil
}

func (b Builder) buildNodes(s *Simulation) {
	nodeBuilder := node.MakeBuilder().
		WithNetwork(s.net).
		WithAdapter(model.NewAdapter(s.alg, s.model)).
		WithBarrier(s.coordinator).
		WithPolicy(b.config.DecidedPolicy)

	if b.parallelIDs {
		nodeBuilder = nodeBuilder.WithIDGenerator(id.NewParallelIDGenerator())
	}

	for _, nodeID := range s.net.Nodes() {
		r := nodeBuilder.Build(nodeID)
		s.nodes[nodeID] = r
		s.coordinator.Register(r)
	}
}

// connect creates one channel per direction of every edge.
func (b Builder) connect(s *Simulation) {
	for _, e := range s.net.Edges() {
		forward := channel.New(e.From, e.FromPort, e.To, e.ToPort, s.coordinator)
		s.channels = append(s.channels, forward)

		var backward *channel.Channel
		if !e.Directed {
			backward = channel.New(e.To, e.ToPort, e.From, e.FromPort,
				s.coordinator)
			s.channels = append(s.channels, backward)
		}

		s.nodes[e.From].Connect(e.FromPort, forward, backward)
		s.nodes[e.To].Connect(e.ToPort, backward, forward)
	}
}

func (b Builder) attachTracers(s *Simulation) {
	if b.recording {
		outputPath := b.outputFileName
		if outputPath == "" {
			outputPath = "dasim_run_" + s.id
		}

		s.dataRecorder = datarecording.New(outputPath)
		s.dbTracer = tracing.NewDBTracer(s.id, s.dataRecorder)

		if b.skipMessages {
			s.dbTracer.SkipMessages()
		}

		tracing.CollectTrace(s.coordinator, s.dbTracer)
	}

	if b.logger != nil {
		logger := b.logger.With().
			Str("run", s.id).
			Str("algorithm", s.alg.Name()).
			Logger()
		tracing.CollectTrace(s.coordinator, tracing.NewRoundLogger(logger))
	}

	for _, t := range b.tracers {
		tracing.CollectTrace(s.coordinator, t)
	}
}

func (b Builder) startMonitor(s *Simulation) {
	s.monitor = monitoring.NewMonitor()
	if b.monitorPort > 0 {
		s.monitor.WithPortNumber(b.monitorPort)
	}

	s.monitor.RegisterController(s.coordinator)

	for _, nodeID := range s.net.Nodes() {
		s.monitor.RegisterNode(s.nodes[nodeID])
	}

	s.monitor.TrackRounds(s.coordinator, b.config.MaxRounds, s.net.NodeCount())

	url := s.monitor.StartServer()
	s.monitorURL = url

	if b.openBrowser {
		s.monitor.OpenBrowser(url)
	}
}
