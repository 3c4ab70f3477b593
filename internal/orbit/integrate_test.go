package orbit_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/kepler/internal/dynamo"
	"github.com/san-kum/kepler/internal/kepler"
	"github.com/san-kum/kepler/internal/orbit"
)

var _ = Describe("IntegrateOrbit", func() {
	var (
		z0     dynamo.State
		eps0   float64
		period float64
	)

	BeforeEach(func() {
		var err error
		z0, eps0, period, err = kepler.SetInitialConditions(1, 1, 0.5)
		Expect(err).NotTo(HaveOccurred())
	})

	DescribeTable("returns floor(tend/h)+1 index-aligned samples",
		func(tend, h float64, want int) {
			tr, err := orbit.IntegrateOrbit(z0, 1, tend, h, "RK4")
			Expect(err).NotTo(HaveOccurred())

			Expect(tr.Len()).To(Equal(want))
			ts, xs, ys, kes, pes, tes := tr.Columns()
			for _, col := range [][]float64{xs, ys, kes, pes, tes} {
				Expect(col).To(HaveLen(len(ts)))
			}
		},
		Entry("exact multiple", 1.0, 0.25, 5),
		Entry("remainder dropped", 1.0, 0.3, 4),
		Entry("end before first step", 0.05, 0.1, 1),
		Entry("many steps", 10.0, 0.125, 81),
	)

	It("stores the initial condition at index 0", func() {
		tr, err := orbit.IntegrateOrbit(z0, 1, 1, 0.1, "Euler")
		Expect(err).NotTo(HaveOccurred())

		Expect(tr.Times[0]).To(Equal(0.0))
		Expect(tr.X[0]).To(Equal(z0[0]))
		Expect(tr.Y[0]).To(Equal(z0[1]))
		Expect(tr.KE[0]).To(Equal(kepler.KineticEnergy(z0[2:4])))
		Expect(tr.PE[0]).To(Equal(kepler.PotentialEnergy(z0[0:2], 1)))
		Expect(tr.TE[0]).To(BeNumerically("~", eps0, 1e-12))
	})

	It("advances time by h on every step", func() {
		h := 0.01
		tr, err := orbit.IntegrateOrbit(z0, 1, 2, h, "RK2")
		Expect(err).NotTo(HaveOccurred())

		for i, t := range tr.Times {
			Expect(t).To(BeNumerically("~", float64(i)*h, 1e-12))
		}
	})

	It("records energies consistent with positions and velocities", func() {
		tr, err := orbit.IntegrateOrbit(z0, 1, period/4, period/400, "RK4")
		Expect(err).NotTo(HaveOccurred())

		for i := range tr.Times {
			Expect(tr.PE[i]).To(BeNumerically("~", -1/math.Hypot(tr.X[i], tr.Y[i]), 1e-12))
			Expect(tr.TE[i]).To(Equal(tr.KE[i] + tr.PE[i]))
		}
		last := tr.Len() - 1
		Expect(tr.Final[0]).To(Equal(tr.X[last]))
		Expect(tr.Final[1]).To(Equal(tr.Y[last]))
		Expect(tr.KE[last]).To(Equal(kepler.KineticEnergy(tr.Final[2:4])))
	})

	It("does not modify the initial state", func() {
		before := z0.Clone()
		_, err := orbit.IntegrateOrbit(z0, 1, 1, 0.1, "RK4")
		Expect(err).NotTo(HaveOccurred())
		Expect(z0).To(Equal(before))
	})

	It("is deterministic", func() {
		a, err := orbit.IntegrateOrbit(z0, 1, 3, 0.01, "RK4")
		Expect(err).NotTo(HaveOccurred())
		b, err := orbit.IntegrateOrbit(z0, 1, 3, 0.01, "RK4")
		Expect(err).NotTo(HaveOccurred())

		Expect(a.X).To(Equal(b.X))
		Expect(a.Y).To(Equal(b.Y))
		Expect(a.TE).To(Equal(b.TE))
	})

	Context("over one full period", func() {
		var h float64

		BeforeEach(func() {
			h = period / 10000
		})

		It("conserves energy with RK4", func() {
			tr, err := orbit.IntegrateOrbit(z0, 1, period, h, "RK4")
			Expect(err).NotTo(HaveOccurred())

			for _, e := range tr.TE {
				Expect(math.Abs((e - tr.TE[0]) / tr.TE[0])).To(BeNumerically("<", 1e-6))
			}
			Expect(tr.MaxEnergyError()).To(BeNumerically("<", 1e-6))
			Expect(tr.Metrics).To(HaveKeyWithValue("energy_drift", BeNumerically("<", 1e-6)))
			Expect(tr.Metrics).To(HaveKeyWithValue("momentum_drift", BeNumerically("<", 1e-6)))
		})

		It("drifts far more with Euler", func() {
			rk4, err := orbit.IntegrateOrbit(z0, 1, period, h, "RK4")
			Expect(err).NotTo(HaveOccurred())
			euler, err := orbit.IntegrateOrbit(z0, 1, period, h, "Euler")
			Expect(err).NotTo(HaveOccurred())
			rk2, err := orbit.IntegrateOrbit(z0, 1, period, h, "RK2")
			Expect(err).NotTo(HaveOccurred())

			Expect(euler.MaxEnergyError()).To(BeNumerically(">", 100*rk4.MaxEnergyError()))
			Expect(euler.MaxEnergyError()).To(BeNumerically(">", rk2.MaxEnergyError()))
			Expect(rk2.MaxEnergyError()).To(BeNumerically(">=", rk4.MaxEnergyError()))
		})

		It("closes the orbit", func() {
			// Half a step of slack keeps floor(tend/h) at exactly 10000.
			tr, err := orbit.IntegrateOrbit(z0, 1, period+h/2, h, "RK4")
			Expect(err).NotTo(HaveOccurred())
			Expect(tr.Len()).To(Equal(10001))

			for i := range z0 {
				Expect(tr.Final[i]).To(BeNumerically("~", z0[i], 1e-6))
			}
		})
	})

	It("keeps a circular orbit on the unit circle", func() {
		zc, _, pc, err := kepler.SetInitialConditions(1, 1, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(pc).To(BeNumerically("~", 2*math.Pi, 1e-12))

		tr, err := orbit.IntegrateOrbit(zc, 1, pc, pc/2000, "RK4")
		Expect(err).NotTo(HaveOccurred())
		for i := range tr.Times {
			Expect(math.Hypot(tr.X[i], tr.Y[i])).To(BeNumerically("~", 1, 1e-8))
		}
	})

	Describe("configuration errors", func() {
		DescribeTable("are rejected before integrating",
			func(z dynamo.State, m, tend, h float64, method string, want error) {
				tr, err := orbit.IntegrateOrbit(z, m, tend, h, method)
				Expect(err).To(MatchError(want))
				Expect(tr).To(BeNil())
			},
			Entry("unknown method", dynamo.State{1, 0, 0, 1}, 1.0, 1.0, 0.1, "Leapfrog", dynamo.ErrUnknownMethod),
			Entry("lowercase method", dynamo.State{1, 0, 0, 1}, 1.0, 1.0, 0.1, "rk4", dynamo.ErrUnknownMethod),
			Entry("zero mass", dynamo.State{1, 0, 0, 1}, 0.0, 1.0, 0.1, "RK4", dynamo.ErrParameterBounds),
			Entry("negative end time", dynamo.State{1, 0, 0, 1}, 1.0, -1.0, 0.1, "RK4", dynamo.ErrParameterBounds),
			Entry("zero step", dynamo.State{1, 0, 0, 1}, 1.0, 1.0, 0.0, "RK4", dynamo.ErrParameterBounds),
			Entry("short state", dynamo.State{1, 0, 0}, 1.0, 1.0, 0.1, "RK4", dynamo.ErrDimensionMismatch),
			Entry("infinite end time", dynamo.State{1, 0, 0, 1}, 1.0, math.Inf(1), 0.1, "RK4", dynamo.ErrParameterBounds),
			Entry("NaN end time", dynamo.State{1, 0, 0, 1}, 1.0, math.NaN(), 0.1, "RK4", dynamo.ErrParameterBounds),
			Entry("infinite step", dynamo.State{1, 0, 0, 1}, 1.0, 1.0, math.Inf(1), "RK4", dynamo.ErrParameterBounds),
			Entry("NaN step", dynamo.State{1, 0, 0, 1}, 1.0, 1.0, math.NaN(), "RK4", dynamo.ErrParameterBounds),
			Entry("infinite mass", dynamo.State{1, 0, 0, 1}, math.Inf(1), 1.0, 0.1, "RK4", dynamo.ErrParameterBounds),
			Entry("step count overflow", dynamo.State{1, 0, 0, 1}, 1.0, 1e20, 1e-3, "RK4", dynamo.ErrParameterBounds),
		)
	})

	It("lets a singular position propagate as non-finite values", func() {
		tr, err := orbit.IntegrateOrbit(dynamo.State{0, 0, 0, 0}, 1, 0.2, 0.1, "Euler")
		Expect(err).NotTo(HaveOccurred())
		Expect(tr.Len()).To(Equal(3))
		Expect(math.IsInf(tr.PE[0], -1)).To(BeTrue())
		Expect(math.IsNaN(tr.KE[1])).To(BeTrue())
		Expect(math.IsNaN(tr.X[2])).To(BeTrue())
		Expect(math.IsInf(tr.MaxEnergyError(), 1)).To(BeTrue())
	})

	It("stops when the context is canceled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := orbit.IntegrateOrbitContext(ctx, z0, 1, period, period/100, "RK4")
		Expect(err).To(MatchError(context.Canceled))
	})
})
