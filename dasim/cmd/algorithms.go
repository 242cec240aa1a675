package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sarchlab/dasim/examples/bmm"
	"github.com/sarchlab/dasim/examples/leader"
	"github.com/sarchlab/dasim/examples/mvc"
	"github.com/sarchlab/dasim/examples/neighborhood"
	"github.com/sarchlab/dasim/sim"
	"github.com/sarchlab/dasim/sim/model"
)

// algorithmEntry describes an algorithm that can be run from the command
// line. Colored algorithms need a 2-coloring in the node inputs.
type algorithmEntry struct {
	name        string
	description string
	model       model.Kind
	colored     bool
	build       func(depth int) sim.Algorithm
}

var algorithms = []algorithmEntry{
	{
		name:        "bmm",
		description: "bipartite maximal matching, nodes colored by ID parity",
		model:       model.PN,
		colored:     true,
		build:       func(int) sim.Algorithm { return bmm.Algorithm{} },
	},
	{
		name:        "neighborhood",
		description: "walk counts that tell apart non-isomorphic neighborhoods",
		model:       model.PN,
		build: func(depth int) sim.Algorithm {
			return neighborhood.Algorithm{Depth: depth}
		},
	},
	{
		name:        "mvc",
		description: "minimum vertex cover 3-approximation",
		model:       model.PN,
		build:       func(int) sim.Algorithm { return mvc.Algorithm{} },
	},
	{
		name:        "leader",
		description: "leader election by flooding the smallest ID",
		model:       model.LOCAL,
		build:       func(int) sim.Algorithm { return leader.Algorithm{} },
	},
}

func findAlgorithm(name string) (algorithmEntry, error) {
	for _, a := range algorithms {
		if a.name == strings.ToLower(name) {
			return a, nil
		}
	}

	return algorithmEntry{}, fmt.Errorf("unknown algorithm %q", name)
}

func newAlgorithmsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "algorithms",
		Short: "List the algorithms that can be run.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tMODEL\tDESCRIPTION")

			for _, a := range algorithms {
				fmt.Fprintf(w, "%s\t%s\t%s\n", a.name, a.model, a.description)
			}

			return w.Flush()
		},
	}
}
