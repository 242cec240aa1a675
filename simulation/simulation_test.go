package simulation

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"

	"github.com/sarchlab/dasim/datarecording"
	"github.com/sarchlab/dasim/examples/leader"
	"github.com/sarchlab/dasim/network"
	"github.com/sarchlab/dasim/sim"
	"github.com/sarchlab/dasim/sim/model"
	"github.com/sarchlab/dasim/tracing"
)

type runRow struct {
	Algorithm  string
	Rounds     int
	Messages   int
	Terminated bool
	Error      string
}

type msgRow struct {
	ID    string
	Round int
	Src   int
	Dst   int
}

var _ = Describe("Config", func() {
	It("should keep the defaults for an empty document", func() {
		c, err := LoadConfig(strings.NewReader(""))
		Expect(err).NotTo(HaveOccurred())
		Expect(c).To(Equal(DefaultConfig()))
	})

	It("should load a YAML document", func() {
		c, err := LoadConfig(strings.NewReader(
			"model: congest\nmax_rounds: 5\nmessage_size_limit: 64\n" +
				"identity_visibility: port-only\ndecided_policy: halt\n"))
		Expect(err).NotTo(HaveOccurred())
		Expect(c).To(Equal(Config{
			Model:              model.CONGEST,
			MaxRounds:          5,
			MessageSizeLimit:   64,
			IdentityVisibility: model.PortOnly,
			DecidedPolicy:      sim.Halt,
		}))
	})

	It("should reject unknown fields", func() {
		_, err := LoadConfig(strings.NewReader("rounds: 5\n"))
		Expect(err).To(HaveOccurred())
	})

	It("should reject invalid combinations", func() {
		_, err := LoadConfig(strings.NewReader("model: pn\nidentity_visibility: full-id\n"))
		Expect(err).To(HaveOccurred())

		_, err = LoadConfig(strings.NewReader("max_rounds: 0\n"))
		Expect(err).To(MatchError(ContainSubstring("max rounds")))

		Expect(Config{MaxRounds: 1, DecidedPolicy: 7}.Validate()).
			To(MatchError(ContainSubstring("decided policy")))
	})
})

var _ = Describe("Builder", func() {
	var path *network.Network

	BeforeEach(func() {
		var err error
		path, err = network.FromEdgeList([][2]network.NodeID{{0, 1}, {1, 2}})
		Expect(err).NotTo(HaveOccurred())
	})

	It("should panic on settings without their feature", func() {
		Expect(func() {
			MakeBuilder().WithMonitorPort(8080).Build(path, leader.Algorithm{})
		}).To(Panic())

		Expect(func() {
			MakeBuilder().WithBrowser().Build(path, leader.Algorithm{})
		}).To(Panic())

		Expect(func() {
			MakeBuilder().WithOutputFileName("x").Build(path, leader.Algorithm{})
		}).To(Panic())

		Expect(func() {
			MakeBuilder().Build(nil, leader.Algorithm{})
		}).To(Panic())
	})

	It("should fail on an invalid model", func() {
		_, err := MakeBuilder().
			WithModel(model.PN).
			WithIdentityVisibility(model.FullID).
			Build(path, leader.Algorithm{})
		Expect(err).To(HaveOccurred())

		_, err = MakeBuilder().
			WithModel(model.LOCAL).
			WithMessageSizeLimit(16).
			Build(path, leader.Algorithm{})
		Expect(err).To(HaveOccurred())

		_, err = MakeBuilder().WithMaxRounds(0).Build(path, leader.Algorithm{})
		Expect(err).To(HaveOccurred())
	})

	It("should create two channels per undirected edge", func() {
		s, err := MakeBuilder().Build(path, leader.Algorithm{})
		Expect(err).NotTo(HaveOccurred())
		defer s.Terminate()

		Expect(s.Channels()).To(HaveLen(4))
		Expect(s.Node(1).ID()).To(Equal(network.NodeID(1)))
		Expect(s.ID()).NotTo(BeEmpty())
		Expect(s.Model().String()).To(Equal("LOCAL(full-id)"))
		Expect(s.GetDataRecorder()).To(BeNil())
		Expect(s.GetMonitor()).To(BeNil())
	})
})

var _ = Describe("Simulation", func() {
	var path *network.Network

	BeforeEach(func() {
		var err error
		path, err = network.FromEdgeList([][2]network.NodeID{{0, 1}, {1, 2}})
		Expect(err).NotTo(HaveOccurred())
	})

	It("should run only once", func() {
		s, err := MakeBuilder().Build(path, leader.Algorithm{})
		Expect(err).NotTo(HaveOccurred())
		defer s.Terminate()

		result, err := s.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(result.RunID).To(Equal(s.ID()))
		Expect(result.Algorithm).To(Equal("Leader Election"))
		Expect(result.Rounds).To(Equal(3))
		Expect(result.Messages).To(Equal(8))

		_, err = s.Run(context.Background())
		Expect(err).To(MatchError(ErrAlreadyRun))
	})

	It("should terminate at round 0 on a single node", func() {
		net, err := network.New(network.Description{
			Nodes: []network.NodeSpec{{ID: 0}},
		})
		Expect(err).NotTo(HaveOccurred())

		s, err := MakeBuilder().Build(net, leader.Algorithm{})
		Expect(err).NotTo(HaveOccurred())
		defer s.Terminate()

		result, err := s.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Terminated).To(BeTrue())
		Expect(result.Rounds).To(BeZero())
		Expect(result.Messages).To(BeZero())
		Expect(result.Nodes[0].DecidedRound).To(BeZero())
	})

	It("should report the round limit", func() {
		s, err := MakeBuilder().WithMaxRounds(2).Build(path, leader.Algorithm{})
		Expect(err).NotTo(HaveOccurred())
		defer s.Terminate()

		result, err := s.Run(context.Background())
		Expect(err).To(MatchError(sim.ErrRoundLimitExceeded))
		Expect(result.Terminated).To(BeFalse())
		Expect(result.Outputs()).To(BeEmpty())
	})

	It("should feed the extra tracers", func() {
		counter := tracing.NewCountTracer()

		s, err := MakeBuilder().
			WithTracer(counter).
			WithParallelIDGenerator().
			Build(path, leader.Algorithm{})
		Expect(err).NotTo(HaveOccurred())
		defer s.Terminate()

		_, err = s.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(counter.MessagesInRound()).To(Equal([]uint64{4, 3, 1}))
		Expect(counter.Sent(1)).To(Equal(uint64(4)))
	})

	It("should log the rounds", func() {
		buf := &bytes.Buffer{}

		s, err := MakeBuilder().
			WithLogger(zerolog.New(buf)).
			Build(path, leader.Algorithm{})
		Expect(err).NotTo(HaveOccurred())
		defer s.Terminate()

		_, err = s.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(buf.String()).To(ContainSubstring(`"message":"node decided"`))
		Expect(buf.String()).To(ContainSubstring(`"algorithm":"Leader Election"`))
	})

	Context("with data recording", func() {
		var dir string

		BeforeEach(func() {
			var err error
			dir, err = os.MkdirTemp("", "simulation")
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			os.RemoveAll(dir)
		})

		readFile := func(name, table string, sample any) []any {
			reader, err := datarecording.NewReader(
				filepath.Join(dir, name+".sqlite3"))
			Expect(err).NotTo(HaveOccurred())
			defer reader.Close()

			results, err := reader.Scan(context.Background(), table, sample,
				datarecording.QueryParams{})
			Expect(err).NotTo(HaveOccurred())

			return results
		}

		read := func(table string, sample any) []any {
			return readFile("run", table, sample)
		}

		It("should record the run", func() {
			s, err := MakeBuilder().
				WithDataRecording().
				WithOutputFileName(filepath.Join(dir, "run")).
				Build(path, leader.Algorithm{})
			Expect(err).NotTo(HaveOccurred())
			Expect(s.GetDataRecorder()).NotTo(BeNil())

			_, err = s.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			s.Terminate()

			runs := read(tracing.RunTable, runRow{})
			Expect(runs).To(HaveLen(1))
			Expect(runs[0]).To(Equal(&runRow{
				Algorithm:  "Leader Election",
				Rounds:     3,
				Messages:   8,
				Terminated: true,
			}))

			msgs := read(tracing.MsgTable, msgRow{})
			Expect(msgs).To(HaveLen(8))
			Expect(msgs[0].(*msgRow).Round).To(BeZero())
		})

		It("should give the messages the same IDs on every run", func() {
			runs := []map[string]msgRow{}

			for _, name := range []string{"first", "second"} {
				s, err := MakeBuilder().
					WithDataRecording().
					WithOutputFileName(filepath.Join(dir, name)).
					Build(path, leader.Algorithm{})
				Expect(err).NotTo(HaveOccurred())

				_, err = s.Run(context.Background())
				Expect(err).NotTo(HaveOccurred())
				s.Terminate()

				byID := make(map[string]msgRow)
				for _, row := range readFile(name, tracing.MsgTable, msgRow{}) {
					m := *row.(*msgRow)
					Expect(m.ID).To(HavePrefix(fmt.Sprintf("%d-", m.Src)))
					byID[m.ID] = m
				}

				Expect(byID).To(HaveLen(8))
				runs = append(runs, byID)
			}

			Expect(runs[1]).To(Equal(runs[0]))
		})

		It("should leave out the messages", func() {
			s, err := MakeBuilder().
				WithDataRecording().
				WithoutMessageRecording().
				WithOutputFileName(filepath.Join(dir, "run")).
				Build(path, leader.Algorithm{})
			Expect(err).NotTo(HaveOccurred())

			_, err = s.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			s.Terminate()

			Expect(read(tracing.MsgTable, msgRow{})).To(BeEmpty())
			Expect(read(tracing.RunTable, runRow{})).To(HaveLen(1))
		})
	})

	It("should serve the monitor", func() {
		s, err := MakeBuilder().WithMonitor().Build(path, leader.Algorithm{})
		Expect(err).NotTo(HaveOccurred())
		defer s.Terminate()

		Expect(s.GetMonitor()).NotTo(BeNil())
		Expect(s.MonitorURL()).To(HavePrefix("http://localhost:"))

		rsp, err := http.Get(s.MonitorURL() + "/api/nodes")
		Expect(err).NotTo(HaveOccurred())
		rsp.Body.Close()
		Expect(rsp.StatusCode).To(Equal(http.StatusOK))

		_, err = s.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
	})
})
