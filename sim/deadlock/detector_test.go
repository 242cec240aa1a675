package deadlock

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/dasim/network"
	"github.com/sarchlab/dasim/sim"
)

func blocked(id network.NodeID, on ...network.NodeID) UnitStatus {
	return UnitStatus{Node: id, Blocked: true, WaitingOn: on}
}

var _ = Describe("Detector", func() {
	var d *Detector

	BeforeEach(func() {
		d = NewDetector()
	})

	It("should not report progressing nodes", func() {
		obs := Observation{
			Round: 0,
			Units: []UnitStatus{
				{Node: 0}, {Node: 1}, blocked(2, 0),
			},
		}

		Expect(d.Observe(obs)).To(BeNil())
	})

	It("should report a wait cycle at once", func() {
		obs := Observation{
			Round: 4,
			Units: []UnitStatus{
				{Node: 0}, blocked(1, 2), blocked(2, 3), blocked(3, 1), blocked(4, 0),
			},
		}

		err := d.Observe(obs)

		Expect(err).NotTo(BeNil())
		Expect(err.Round).To(Equal(4))
		Expect(err.Witness).To(Equal([]network.NodeID{1, 2, 3}))
		Expect(errors.Is(err, sim.ErrDeadlock)).To(BeTrue())
	})

	It("should report nodes that wait for an exited node", func() {
		obs := Observation{
			Round: 2,
			Units: []UnitStatus{
				{Node: 0, Exited: true},
				blocked(1, 0),
				blocked(2, 1),
				{Node: 3},
			},
		}

		err := d.Observe(obs)

		Expect(err).NotTo(BeNil())
		Expect(err.Witness).To(Equal([]network.NodeID{0, 1, 2}))
	})

	It("should not report a wait on a running node", func() {
		obs := Observation{
			Units: []UnitStatus{
				{Node: 0},
				blocked(1, 0),
			},
		}

		for round := 0; round < 10; round++ {
			obs.Round = round
			Expect(d.Observe(obs)).To(BeNil())
		}
	})

	It("should report a wait on a node that exits later", func() {
		running := []UnitStatus{{Node: 0}, blocked(1, 0)}
		exited := []UnitStatus{{Node: 0, Exited: true}, blocked(1, 0)}

		Expect(d.Observe(Observation{Round: 0, Units: running})).To(BeNil())
		Expect(d.Observe(Observation{Round: 1, Units: running})).To(BeNil())

		err := d.Observe(Observation{Round: 2, Units: exited})

		Expect(err).NotTo(BeNil())
		Expect(err.Round).To(Equal(2))
		Expect(err.Witness).To(Equal([]network.NodeID{0, 1}))
	})
})

var _ = Describe("Limiter", func() {
	It("should allow rounds below the cap", func() {
		l := NewLimiter(10)

		for round := 0; round < 10; round++ {
			Expect(l.Check(round)).To(Succeed())
		}
	})

	It("should report the cap as the last round", func() {
		l := NewLimiter(10)

		err := l.Check(10)

		var limitErr *sim.RoundLimitExceededError
		Expect(errors.As(err, &limitErr)).To(BeTrue())
		Expect(limitErr.Round).To(Equal(10))
		Expect(limitErr.Max).To(Equal(10))
	})

	It("should reject a non-positive cap", func() {
		Expect(func() { NewLimiter(0) }).To(Panic())
	})
})
