package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/sarchlab/dasim/dot"
	"github.com/sarchlab/dasim/examples/bmm"
	"github.com/sarchlab/dasim/network"
	"github.com/sarchlab/dasim/sim"
	"github.com/sarchlab/dasim/sim/model"
	"github.com/sarchlab/dasim/simulation"
	"github.com/sarchlab/dasim/tracing"
)

func newRunCommand() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run an algorithm on a network.",
		Long: `Run an algorithm on a network until every node decides. The ` +
			`parameters come from the defaults, then the --config file, then ` +
			`the DASIM_* environment variables, then the flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSimulation(cmd)
		},
	}

	addNetworkFlags(runCmd)

	f := runCmd.Flags()
	f.StringP("algorithm", "a", "bmm", "Algorithm to run, see `dasim algorithms`.")
	f.Int("depth", 1, "Depth of the neighborhood algorithm.")
	f.StringP("config", "c", "", "YAML file with the run parameters.")
	f.StringP("model", "m", "", "Model of computation: PN, LOCAL or CONGEST.")
	f.Int("max-rounds", simulation.DefaultMaxRounds, "Maximum number of rounds.")
	f.Int("message-size-limit", 0, "CONGEST message size limit in bits.")
	f.String("visibility", "", "Identity visibility: default, port-only or full-id.")
	f.String("policy", "", "What decided nodes do: participate or halt.")
	f.Bool("record", false, "Record the run into a SQLite database.")
	f.String("record-file", "", "Name of the database, without extension.")
	f.Bool("skip-messages", false, "Do not record individual messages.")
	f.Bool("monitor", false, "Serve the monitoring page during the run.")
	f.Int("monitor-port", 0, "Port of the monitoring server.")
	f.Bool("open-browser", false, "Open the monitoring page in a browser.")
	f.Bool("parallel-ids", false, "Use globally unique message IDs.")
	f.Bool("dot", false, "Print the network labeled with the outputs.")
	f.Duration("timeout", 0, "Cancel the run after this wall-clock duration.")

	return runCmd
}

func runSimulation(cmd *cobra.Command) error {
	name, _ := cmd.Flags().GetString("algorithm")

	entry, err := findAlgorithm(name)
	if err != nil {
		return err
	}

	net, err := loadNetwork(cmd)
	if err != nil {
		return err
	}

	c, err := resolveConfig(cmd, entry)
	if err != nil {
		return err
	}

	if entry.colored && !hasInputs(net) {
		net, err = bmm.ColoredByParity(net)
		if err != nil {
			return err
		}
	}

	depth, _ := cmd.Flags().GetInt("depth")
	counter := tracing.NewCountTracer()

	s, err := makeBuilder(cmd, c).
		WithTracer(counter).
		Build(net, entry.build(depth))
	if err != nil {
		return err
	}
	defer s.Terminate()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if timeout, _ := cmd.Flags().GetDuration("timeout"); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)

		defer cancel()
	}

	start := time.Now()
	result, runErr := s.Run(ctx)

	out := cmd.OutOrStdout()
	printResult(out, result, counter, time.Since(start))

	if printDot, _ := cmd.Flags().GetBool("dot"); printDot {
		fmt.Fprintln(out)

		err = dot.Write(out, net, dot.Labels(result.Outputs()))
		if err != nil {
			return err
		}
	}

	if runErr != nil {
		return fmt.Errorf("simulation failed after %d rounds: %w",
			result.Rounds, runErr)
	}

	fmt.Fprintln(out, "\nSimulation successful! All nodes decided.")

	return nil
}

func resolveConfig(
	cmd *cobra.Command,
	entry algorithmEntry,
) (simulation.Config, error) {
	c := simulation.DefaultConfig()
	modelSet := false

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		file, err := os.Open(path)
		if err != nil {
			return c, err
		}
		defer file.Close()

		c, err = simulation.LoadConfig(file)
		if err != nil {
			return c, fmt.Errorf("loading %s: %w", path, err)
		}

		modelSet = true
	}

	envModel, err := applyEnv(&c)
	if err != nil {
		return c, err
	}

	modelSet = modelSet || envModel

	flagModel, err := applyFlags(cmd, &c)
	if err != nil {
		return c, err
	}

	if !modelSet && !flagModel {
		c.Model = entry.model
	}

	return c, c.Validate()
}

func applyFlags(cmd *cobra.Command, c *simulation.Config) (bool, error) {
	f := cmd.Flags()

	if f.Changed("max-rounds") {
		c.MaxRounds, _ = f.GetInt("max-rounds")
	}

	if f.Changed("message-size-limit") {
		c.MessageSizeLimit, _ = f.GetInt("message-size-limit")
	}

	var err error

	if f.Changed("visibility") {
		v, _ := f.GetString("visibility")

		c.IdentityVisibility, err = model.ParseVisibility(v)
		if err != nil {
			return false, err
		}
	}

	if f.Changed("policy") {
		v, _ := f.GetString("policy")

		c.DecidedPolicy, err = sim.ParseDecidedPolicy(v)
		if err != nil {
			return false, err
		}
	}

	if !f.Changed("model") {
		return false, nil
	}

	v, _ := f.GetString("model")

	c.Model, err = model.ParseKind(v)
	if err != nil {
		return false, err
	}

	return true, nil
}

func makeBuilder(cmd *cobra.Command, c simulation.Config) simulation.Builder {
	f := cmd.Flags()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).
		With().Timestamp().Logger()

	b := simulation.MakeBuilder().
		WithConfig(c).
		WithLogger(logger)

	if record, _ := f.GetBool("record"); record {
		b = b.WithDataRecording()

		if name, _ := f.GetString("record-file"); name != "" {
			b = b.WithOutputFileName(name)
		}

		if skip, _ := f.GetBool("skip-messages"); skip {
			b = b.WithoutMessageRecording()
		}
	}

	if monitor, _ := f.GetBool("monitor"); monitor {
		b = b.WithMonitor()

		if port, _ := f.GetInt("monitor-port"); port > 0 {
			b = b.WithMonitorPort(port)
		}

		if open, _ := f.GetBool("open-browser"); open {
			b = b.WithBrowser()
		}
	}

	if parallel, _ := f.GetBool("parallel-ids"); parallel {
		b = b.WithParallelIDGenerator()
	}

	return b
}

func hasInputs(net *network.Network) bool {
	for _, id := range net.Nodes() {
		if net.Input(id) != nil {
			return true
		}
	}

	return false
}

func printResult(
	w io.Writer,
	result *sim.Result,
	counter *tracing.CountTracer,
	elapsed time.Duration,
) {
	fmt.Fprintf(w, "Run:        %s\n", result.RunID)
	fmt.Fprintf(w, "Algorithm:  %s\n", result.Algorithm)
	fmt.Fprintf(w, "Model:      %s\n", result.Model)
	fmt.Fprintf(w, "Rounds:     %d\n", result.Rounds)
	fmt.Fprintf(w, "Messages:   %d", result.Messages)

	if round, count := counter.PeakRound(); round >= 0 {
		fmt.Fprintf(w, " (peak of %d in round %d)", count, round)
	}

	fmt.Fprintf(w, "\nTerminated: %t\n", result.Terminated)
	fmt.Fprintf(w, "Elapsed:    %s\n\n", elapsed.Round(time.Millisecond))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NODE\tDECIDED\tROUND\tOUTPUT\tSTATE")

	for _, n := range result.Nodes {
		round, output := "-", "-"
		if n.Decided {
			round = fmt.Sprint(n.DecidedRound)
			output = fmt.Sprint(n.Output)
		}

		fmt.Fprintf(tw, "%d\t%t\t%s\t%s\t%v\n",
			n.Node, n.Decided, round, output, n.State)
	}

	tw.Flush()
}
