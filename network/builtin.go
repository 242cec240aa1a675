package network

import (
	"fmt"
	"sort"
)

var builtinEdges = map[string][][2]NodeID{
	"network1": {
		{0, 2}, {0, 1}, {0, 3},
		{1, 2}, {1, 3}, {2, 3},
	},
	"network2": {
		{0, 1}, {0, 2}, {1, 3}, {2, 3}, {2, 4}, {3, 4},
		{1, 5}, {4, 5}, {4, 6}, {5, 6}, {6, 7}, {6, 8},
	},
	"network3": {
		{0, 1}, {0, 2}, {1, 3}, {2, 3}, {2, 4}, {3, 4},
		{1, 5}, {4, 5}, {4, 6}, {5, 7}, {6, 7},
	},
}

// BuiltinNames returns the names of the built-in networks.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtinEdges))
	for name := range builtinEdges {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Builtin builds one of the built-in networks. Ports follow the order of the
// edges.
func Builtin(name string) (*Network, error) {
	edges, ok := builtinEdges[name]
	if !ok {
		return nil, fmt.Errorf("unknown network %q", name)
	}

	return FromEdgeList(edges)
}
