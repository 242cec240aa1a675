package model

import (
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/dasim/network"
	"github.com/sarchlab/dasim/sim"
)

type sizedPayload int

func (p sizedPayload) SizeInBits() int {
	return int(p)
}

var _ = Describe("Model", func() {
	It("should hide identities in PN", func() {
		m, err := New(Config{Kind: PN}, 4)

		Expect(err).NotTo(HaveOccurred())
		Expect(m.Visibility()).To(Equal(PortOnly))
		Expect(m.VisibleIdentity(3)).To(Equal(network.NoNode))

		_, bounded := m.MaxMessageSize()
		Expect(bounded).To(BeFalse())
	})

	It("should expose identities in LOCAL", func() {
		m, err := New(Config{Kind: LOCAL}, 4)

		Expect(err).NotTo(HaveOccurred())
		Expect(m.Visibility()).To(Equal(FullID))
		Expect(m.VisibleIdentity(3)).To(Equal(network.NodeID(3)))
	})

	DescribeTable("rejecting contradicting configurations",
		func(c Config) {
			_, err := New(c, 4)
			Expect(err).To(HaveOccurred())
		},
		Entry("PN with identities", Config{Kind: PN, Visibility: FullID}),
		Entry("LOCAL without identities", Config{Kind: LOCAL, Visibility: PortOnly}),
		Entry("limit outside CONGEST", Config{Kind: LOCAL, MessageSizeLimit: 8}),
		Entry("negative limit", Config{Kind: CONGEST, MessageSizeLimit: -1}),
		Entry("unknown kind", Config{Kind: Kind(9)}),
	)

	It("should derive the CONGEST limit from the network size", func() {
		m, err := New(Config{Kind: CONGEST}, 1000)

		Expect(err).NotTo(HaveOccurred())
		Expect(m.Visibility()).To(Equal(FullID))

		limit, bounded := m.MaxMessageSize()
		Expect(bounded).To(BeTrue())
		Expect(limit).To(Equal(DefaultCongestFactor * 10))
	})

	It("should allow port-only CONGEST", func() {
		m, err := New(Config{Kind: CONGEST, Visibility: PortOnly}, 4)

		Expect(err).NotTo(HaveOccurred())
		Expect(m.VisibleIdentity(1)).To(Equal(network.NoNode))
	})

	It("should reject oversized messages without truncating", func() {
		m, err := New(Config{Kind: CONGEST, MessageSizeLimit: 16}, 4)
		Expect(err).NotTo(HaveOccurred())

		Expect(m.Admit(1, 2, 0, sizedPayload(16))).To(Succeed())

		err = m.Admit(1, 2, 0, sizedPayload(17))
		Expect(errors.Is(err, sim.ErrMessageTooLarge)).To(BeTrue())

		var tooLarge *sim.MessageTooLargeError
		Expect(errors.As(err, &tooLarge)).To(BeTrue())
		Expect(*tooLarge).To(Equal(sim.MessageTooLargeError{
			Node: 1, Round: 2, Port: 0, Size: 17, Limit: 16,
		}))
	})

	It("should measure payloads without a size by their encoding", func() {
		m, err := New(Config{Kind: CONGEST, MessageSizeLimit: 32}, 4)
		Expect(err).NotTo(HaveOccurred())

		size, err := m.MessageSize("ab")
		Expect(err).NotTo(HaveOccurred())
		Expect(size).To(Equal(32))

		Expect(m.Admit(0, 0, 0, "ab")).To(Succeed())
		Expect(m.Admit(0, 0, 0, strings.Repeat("a", 10))).
			To(MatchError(sim.ErrMessageTooLarge))
	})

	It("should mask identities of messages", func() {
		m, err := New(Config{Kind: PN}, 2)
		Expect(err).NotTo(HaveOccurred())

		msg := &sim.Msg{Src: 0, SrcPort: 1, Dst: 1, DstPort: 0, Payload: "x"}
		masked := m.Mask(msg)

		Expect(masked.Src).To(Equal(network.NoNode))
		Expect(masked.Dst).To(Equal(network.NoNode))
		Expect(masked.SrcPort).To(Equal(network.NoPort))
		Expect(masked.DstPort).To(Equal(network.Port(0)))
		Expect(msg.Src).To(Equal(network.NodeID(0)))
		Expect(msg.SrcPort).To(Equal(network.Port(1)))
	})

	It("should build the local view of a node", func() {
		net, err := network.FromEdgeList([][2]network.NodeID{{0, 1}, {0, 2}})
		Expect(err).NotTo(HaveOccurred())

		pn, _ := New(Config{Kind: PN}, 3)
		info := pn.NodeInfo(net, 0)
		Expect(info.ID).To(Equal(network.NoNode))
		Expect(info.Degree).To(Equal(2))
		Expect(info.NodeCount).To(Equal(3))
		Expect(info.Ports[1]).To(Equal(sim.PortView{
			Port: 1, Neighbor: network.NoNode,
		}))

		local, _ := New(Config{Kind: LOCAL}, 3)
		info = local.NodeInfo(net, 0)
		Expect(info.ID).To(Equal(network.NodeID(0)))
		Expect(info.Ports[1].Neighbor).To(Equal(network.NodeID(2)))
	})

	It("should parse names", func() {
		k, err := ParseKind("congest")
		Expect(err).NotTo(HaveOccurred())
		Expect(k).To(Equal(CONGEST))

		_, err = ParseKind("async")
		Expect(err).To(HaveOccurred())

		v, err := ParseVisibility("port-only")
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(PortOnly))

		v, err = ParseVisibility("FullId")
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(FullID))
	})
})

var _ = Describe("Adapter", func() {
	var (
		mockCtrl *gomock.Controller
		alg      *MockAlgorithm
		adapter  *Adapter
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		alg = NewMockAlgorithm(mockCtrl)

		m, err := New(Config{Kind: PN}, 2)
		Expect(err).NotTo(HaveOccurred())

		adapter = NewAdapter(alg, m)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should hide sender identities from the algorithm", func() {
		inbox := sim.Inbox{{Src: 1, SrcPort: 0, Dst: 0, DstPort: 0, Payload: 7}, nil}

		alg.EXPECT().
			Step("s", 3, gomock.Any()).
			DoAndReturn(func(s any, r int, in sim.Inbox) (any, sim.Outbox, sim.Decision) {
				Expect(in).To(HaveLen(2))
				Expect(in[0].Src).To(Equal(network.NoNode))
				Expect(in[0].SrcPort).To(Equal(network.NoPort))
				Expect(in[0].Payload).To(Equal(7))
				Expect(in[1]).To(BeNil())

				return "t", nil, sim.Decide(1)
			})

		state, out, dec := adapter.Step("s", 3, inbox)

		Expect(state).To(Equal("t"))
		Expect(out).To(BeEmpty())
		Expect(dec).To(Equal(sim.Decide(1)))
		Expect(inbox[0].Src).To(Equal(network.NodeID(1)))
	})

	It("should not await anything for algorithms without blocking receives", func() {
		Expect(adapter.Await("s")).To(BeNil())
	})
})
