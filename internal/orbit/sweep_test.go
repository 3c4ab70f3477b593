package orbit_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/kepler/internal/dynamo"
	"github.com/san-kum/kepler/internal/kepler"
	"github.com/san-kum/kepler/internal/orbit"
)

var _ = Describe("Sweep", func() {
	It("matches sequential integration job by job", func() {
		var jobs []orbit.Job
		for _, e := range []float64{0, 0.3, 0.6, 0.9} {
			job, err := orbit.JobFromElements("", kepler.Elements{A: 1, M: 1, E: e}, 1, 500, "RK4")
			Expect(err).NotTo(HaveOccurred())
			jobs = append(jobs, job)
		}

		results, err := orbit.Sweep(context.Background(), jobs, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(len(jobs)))

		for i, job := range jobs {
			want, err := orbit.IntegrateOrbit(job.Z0, job.Mass, job.TEnd, job.Step, job.Method)
			Expect(err).NotTo(HaveOccurred())
			Expect(results[i].X).To(Equal(want.X))
			Expect(results[i].TE).To(Equal(want.TE))
		}
	})

	It("reports the failing job", func() {
		good, err := orbit.JobFromElements("good", kepler.Elements{A: 1, M: 1, E: 0.1}, 1, 100, "RK4")
		Expect(err).NotTo(HaveOccurred())
		bad := good
		bad.Name = "bad"
		bad.Method = "Midpoint"

		_, err = orbit.Sweep(context.Background(), []orbit.Job{good, bad}, 0)
		Expect(err).To(MatchError(dynamo.ErrUnknownMethod))
		Expect(err.Error()).To(ContainSubstring("job bad"))
	})

	It("rejects invalid elements when building jobs", func() {
		_, err := orbit.JobFromElements("x", kepler.Elements{A: 1, M: 1, E: 1}, 1, 100, "RK4")
		Expect(err).To(MatchError(dynamo.ErrParameterBounds))

		_, err = orbit.JobFromElements("x", kepler.Elements{A: 1, M: 1, E: 0}, 1, 0, "RK4")
		Expect(err).To(MatchError(dynamo.ErrParameterBounds))
	})
})
