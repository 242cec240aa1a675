// Package dot writes networks in the Graphviz DOT language. Every edge carries
// the 1-based port numbers of its endpoints as tail and head labels.
package dot

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/sarchlab/dasim/network"
)

var labelEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

// Write writes the network. Nodes are labeled with the given labels, or with
// their IDs if a node has no label.
func Write(
	w io.Writer,
	net *network.Network,
	labels map[network.NodeID]string,
) error {
	bw := bufio.NewWriter(w)

	kind, arrow := "graph", "--"
	if net.Directed() {
		kind, arrow = "digraph", "->"
	}

	fmt.Fprintf(bw, "%s {\n", kind)

	for _, id := range net.Nodes() {
		label, ok := labels[id]
		if !ok {
			label = fmt.Sprint(id)
		}

		fmt.Fprintf(bw, "    %d [ label = \"%s\" ]\n", id, labelEscaper.Replace(label))
	}

	for _, e := range net.Edges() {
		fmt.Fprintf(bw,
			"    %d %s %d [ taillabel = \"%d\" headlabel = \"%d\" ]\n",
			e.From, arrow, e.To, e.FromPort.Display(), e.ToPort.Display())
	}

	fmt.Fprintln(bw, "}")

	return bw.Flush()
}

// String returns the DOT text of the network.
func String(net *network.Network, labels map[network.NodeID]string) string {
	sb := &strings.Builder{}

	err := Write(sb, net, labels)
	if err != nil {
		panic(err)
	}

	return sb.String()
}

// Labels renders a value per node with fmt.Sprint, typically the outputs or the
// final states of a run.
func Labels[T any](values map[network.NodeID]T) map[network.NodeID]string {
	labels := make(map[network.NodeID]string, len(values))
	for id, v := range values {
		labels[id] = fmt.Sprint(v)
	}

	return labels
}
