package network

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Builtin", func() {
	It("should list the built-in networks", func() {
		Expect(BuiltinNames()).To(Equal(
			[]string{"network1", "network2", "network3"}))
	})

	DescribeTable("building the networks",
		func(name string, nodes, edges, maxDegree int) {
			net, err := Builtin(name)

			Expect(err).NotTo(HaveOccurred())
			Expect(net.NodeCount()).To(Equal(nodes))
			Expect(net.EdgeCount()).To(Equal(edges))
			Expect(net.MaxDegree()).To(Equal(maxDegree))
		},
		Entry("complete graph on 4 nodes", "network1", 4, 6, 3),
		Entry("network2", "network2", 9, 12, 4),
		Entry("network3", "network3", 8, 11, 4),
	)

	It("should number the ports in edge order", func() {
		net, err := Builtin("network1")
		Expect(err).NotTo(HaveOccurred())

		neighbors := []NodeID{}
		for _, p := range net.Neighbors(0) {
			neighbors = append(neighbors, p.Neighbor)
		}

		Expect(neighbors).To(Equal([]NodeID{2, 1, 3}))
	})

	It("should reject unknown names", func() {
		_, err := Builtin("network9")

		Expect(err).To(HaveOccurred())
	})
})
