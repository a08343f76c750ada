package sim_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/mrilab/internal/dynamo"
	"github.com/san-kum/mrilab/internal/models"
	"github.com/san-kum/mrilab/internal/sim"
)

func tickN(s *sim.Session, n int) {
	for i := 0; i < n; i++ {
		_, _, err := s.Tick()
		Expect(err).NotTo(HaveOccurred())
	}
}

var _ = Describe("Session", func() {
	var s *sim.Session

	Describe("play state", func() {
		BeforeEach(func() {
			s = sim.NewSession(models.NewPrecession())
		})

		It("starts paused", func() {
			Expect(s.State()).To(Equal(sim.Paused))
		})

		It("toggles between playing and paused", func() {
			Expect(s.Toggle()).To(Equal(sim.Playing))
			Expect(s.Toggle()).To(Equal(sim.Paused))
		})

		It("only advances while playing", func() {
			tickN(s, 3)
			Expect(s.Step()).To(Equal(0))

			s.Play()
			tickN(s, 3)
			Expect(s.Step()).To(Equal(3))

			s.Pause()
			tickN(s, 3)
			Expect(s.Step()).To(Equal(3))
		})

		It("keeps the clock when a plain demo pauses", func() {
			s.Play()
			tickN(s, 4)
			s.Pause()
			Expect(s.Step()).To(Equal(4))
			Expect(s.Series(dynamo.ChannelMx)).To(HaveLen(4))
		})
	})

	Describe("precession magnitude", func() {
		It("keeps |M| = M0 over a long run", func() {
			p := models.NewPrecession()
			p.Tilt = 15
			s = sim.NewSession(p)
			res, err := s.Run(context.Background(), 1000)
			Expect(err).NotTo(HaveOccurred())
			for _, m := range res.Trail {
				Expect(r3.Norm(m)).To(BeNumerically("~", 1, 1e-9))
			}
		})
	})

	DescribeTable("parameter changes",
		func(e dynamo.Evolver, param string, value float64, resets bool) {
			s = sim.NewSession(e)
			s.Play()
			tickN(s, 7)

			Expect(s.SetParam(param, value)).To(Succeed())
			if resets {
				Expect(s.Step()).To(BeZero())
				Expect(s.TrailLen()).To(BeZero())
			} else {
				Expect(s.Step()).To(Equal(7))
			}
			Expect(s.State()).To(Equal(sim.Playing))
		},
		Entry("precession B0 resets", models.NewPrecession(), "b0", 0.5, true),
		Entry("precession tilt resets", models.NewPrecession(), "tilt", 5.0, true),
		Entry("resonant phase resets", models.NewResonant(), "phase", 90.0, true),
		Entry("off-resonance offset resets", models.NewOffResonant(), "ppm", 1.0, true),
		Entry("rotating-frame B0 only retunes", models.NewRotatingFrameView(), "b0", 2.0, false),
	)

	DescribeTable("mode switches",
		func(e dynamo.Evolver, mode, caption string) {
			s = sim.NewSession(e)
			s.Play()
			tickN(s, 5)

			Expect(s.SetMode(mode)).To(Succeed())
			Expect(s.Step()).To(BeZero())
			Expect(s.Timing().Caption()).To(Equal(caption))
		},
		Entry("resonant to rotating", models.NewResonant(), models.RotatingFrame, "Time (ms)"),
		Entry("resonant to world", models.NewResonant(), models.WorldFrame, "Time (ns)"),
		Entry("off-resonant to rotating", models.NewOffResonant(), models.RotatingFrame, "Time (ms)"),
	)

	Describe("coil demo", func() {
		var coil *models.Coil

		BeforeEach(func() {
			coil = models.NewCoil()
			s = sim.NewSession(coil)
			Expect(s.Mutate(func(e dynamo.Evolver) error {
				_, err := e.(*models.Coil).AddDipole(r3.Vec{X: 8})
				return err
			})).To(Succeed())
		})

		It("freezes the dipoles while playing", func() {
			s.Play()
			err := s.Mutate(func(e dynamo.Evolver) error {
				return e.(*models.Coil).RemoveDipole(0)
			})
			Expect(err).To(MatchError(dynamo.ErrPlaying))
			Expect(coil.Dipoles()).To(HaveLen(1))
		})

		It("rewinds when paused", func() {
			s.Play()
			tickN(s, 10)
			s.Pause()
			Expect(s.Step()).To(BeZero())
			Expect(s.Series(dynamo.ChannelFlux)).To(BeEmpty())
			Expect(coil.Contributions()).To(BeEmpty())
		})

		It("records flux and EMF", func() {
			s.Play()
			tickN(s, 10)
			Expect(s.Series(dynamo.ChannelFlux)).To(HaveLen(10))
			Expect(s.Series(dynamo.ChannelEMF)).To(HaveLen(10))
		})
	})
})
