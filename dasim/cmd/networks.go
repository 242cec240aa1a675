package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sarchlab/dasim/dot"
	"github.com/sarchlab/dasim/network"
)

func addNetworkFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("network", "n", "network1",
		"Name of a built-in network.")
	cmd.Flags().StringP("network-file", "f", "",
		"YAML file that describes the network. Overrides --network.")
}

func loadNetwork(cmd *cobra.Command) (*network.Network, error) {
	path, _ := cmd.Flags().GetString("network-file")
	if path == "" {
		name, _ := cmd.Flags().GetString("network")
		return network.Builtin(name)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	net, err := network.Load(file)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	return net, nil
}

func newNetworksCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "networks",
		Short: "List the built-in networks.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tNODES\tEDGES\tMAX DEGREE")

			for _, name := range network.BuiltinNames() {
				net, err := network.Builtin(name)
				if err != nil {
					return err
				}

				fmt.Fprintf(w, "%s\t%d\t%d\t%d\n",
					name, net.NodeCount(), net.EdgeCount(), net.MaxDegree())
			}

			return w.Flush()
		},
	}
}

func newDotCommand() *cobra.Command {
	dotCmd := &cobra.Command{
		Use:   "dot",
		Short: "Print a network in the Graphviz DOT language.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			net, err := loadNetwork(cmd)
			if err != nil {
				return err
			}

			return dot.Write(cmd.OutOrStdout(), net, nil)
		},
	}

	addNetworkFlags(dotCmd)

	return dotCmd
}
