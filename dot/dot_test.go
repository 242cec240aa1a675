package dot_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/dasim/dot"
	"github.com/sarchlab/dasim/network"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

var _ = Describe("Write", func() {
	It("should write an undirected network with port labels", func() {
		net, err := network.FromEdgeList([][2]network.NodeID{{1, 0}, {1, 2}})
		Expect(err).NotTo(HaveOccurred())

		Expect(dot.String(net, map[network.NodeID]string{1: "MS(2)"})).To(Equal(
			"graph {\n" +
				"    0 [ label = \"0\" ]\n" +
				"    1 [ label = \"MS(2)\" ]\n" +
				"    2 [ label = \"2\" ]\n" +
				"    1 -- 0 [ taillabel = \"1\" headlabel = \"1\" ]\n" +
				"    1 -- 2 [ taillabel = \"2\" headlabel = \"1\" ]\n" +
				"}\n"))
	})

	It("should write a directed network", func() {
		net, err := network.New(network.Description{
			Directed: true,
			Nodes:    []network.NodeSpec{{ID: 0}, {ID: 1}},
			Edges:    []network.EdgeSpec{{From: 0, To: 1}},
		})
		Expect(err).NotTo(HaveOccurred())

		Expect(dot.String(net, nil)).To(ContainSubstring(
			"0 -> 1 [ taillabel = \"1\" headlabel = \"1\" ]"))
		Expect(dot.String(net, nil)).To(HavePrefix("digraph {\n"))
	})

	It("should escape quotes in labels", func() {
		net, err := network.FromEdgeList([][2]network.NodeID{{0, 1}})
		Expect(err).NotTo(HaveOccurred())

		Expect(dot.String(net, map[network.NodeID]string{0: `say "hi"`})).
			To(ContainSubstring(`0 [ label = "say \"hi\"" ]`))
	})

	It("should build labels from values", func() {
		Expect(dot.Labels(map[network.NodeID]bool{0: true, 1: false})).
			To(Equal(map[network.NodeID]string{0: "true", 1: "false"}))
	})

	It("should report write errors", func() {
		net, err := network.FromEdgeList([][2]network.NodeID{{0, 1}})
		Expect(err).NotTo(HaveOccurred())

		Expect(dot.Write(failingWriter{}, net, nil)).To(MatchError("disk full"))
	})
})
