package smooth_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/numkit/smooth"
	"github.com/san-kum/numkit/timeseries"
)

var _ = Describe("RunningAverage", func() {
	var s *timeseries.Series

	BeforeEach(func() {
		var err error
		s, err = timeseries.New([]float64{1, 2, 3, 4, 5}, 1.0)
		Expect(err).NotTo(HaveOccurred())
	})

	Context("in valid mode", func() {
		It("averages each full window", func() {
			out, err := smooth.RunningAverage(s, 2, smooth.ModeValid)
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Values()).To(Equal([]float64{1.5, 2.5, 3.5, 4.5}))
		})

		It("shortens the series by window-1", func() {
			out, err := smooth.RunningAverage(s, 3, smooth.ModeValid)
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Len()).To(Equal(s.Len() - 2))
		})

		It("centers coordinates on each window", func() {
			out, err := smooth.RunningAverage(s, 3, smooth.ModeValid)
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Coords()).To(Equal([]float64{1, 2, 3}))
		})

		It("centers non-uniform coordinates on the window mean", func() {
			ns, err := timeseries.NewWithCoords([]float64{0, 1, 5}, []float64{2, 4, 6})
			Expect(err).NotTo(HaveOccurred())
			out, err := smooth.RunningAverage(ns, 3, smooth.ModeValid)
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Len()).To(Equal(1))
			Expect(out.At(0)).To(Equal(4.0))
			Expect(out.Coord(0)).To(Equal(2.0))
		})

		It("returns the input values for window 1", func() {
			out, err := smooth.RunningAverage(s, 1, smooth.ModeValid)
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Values()).To(Equal(s.Values()))
			Expect(out.Coords()).To(Equal(s.Coords()))
		})
	})

	Context("in same mode", func() {
		It("preserves the input length and coordinates", func() {
			out, err := smooth.RunningAverage(s, 3, smooth.ModeSame)
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Len()).To(Equal(s.Len()))
			Expect(out.Coords()).To(Equal(s.Coords()))
		})

		It("replicates boundary values into overhanging windows", func() {
			out, err := smooth.RunningAverage(s, 3, smooth.ModeSame)
			Expect(err).NotTo(HaveOccurred())
			Expect(out.At(0)).To(BeNumerically("~", 4.0/3.0, 1e-12))
			Expect(out.At(2)).To(Equal(3.0))
			Expect(out.At(4)).To(BeNumerically("~", 14.0/3.0, 1e-12))
		})

		It("matches valid mode away from the boundaries", func() {
			same, err := smooth.RunningAverage(s, 3, smooth.ModeSame)
			Expect(err).NotTo(HaveOccurred())
			valid, err := smooth.RunningAverage(s, 3, smooth.ModeValid)
			Expect(err).NotTo(HaveOccurred())
			for i := 0; i < valid.Len(); i++ {
				Expect(same.At(i + 1)).To(Equal(valid.At(i)))
			}
		})
	})

	Context("with invalid parameters", func() {
		It("rejects a window smaller than 1", func() {
			_, err := smooth.RunningAverage(s, 0, smooth.ModeValid)
			var perr *timeseries.InvalidParameterError
			Expect(errors.As(err, &perr)).To(BeTrue())
		})

		It("rejects a window longer than the series", func() {
			_, err := smooth.RunningAverage(s, 6, smooth.ModeValid)
			var perr *timeseries.InvalidParameterError
			Expect(errors.As(err, &perr)).To(BeTrue())
			Expect(perr.Name).To(Equal("window"))
		})
	})

	It("does not modify the input series", func() {
		before := s.Values()
		_, err := smooth.RunningAverage(s, 3, smooth.ModeSame)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Values()).To(Equal(before))
	})

	It("returns the same result on repeated calls", func() {
		first, err := smooth.RunningAverage(s, 2, smooth.ModeValid)
		Expect(err).NotTo(HaveOccurred())
		second, err := smooth.RunningAverage(s, 2, smooth.ModeValid)
		Expect(err).NotTo(HaveOccurred())
		Expect(second.Values()).To(Equal(first.Values()))
	})
})

var _ = Describe("Exponential", func() {
	var s *timeseries.Series

	BeforeEach(func() {
		var err error
		s, err = timeseries.New([]float64{1, 2, 3}, 1.0)
		Expect(err).NotTo(HaveOccurred())
	})

	It("seeds the filter with the first sample", func() {
		out, err := smooth.Exponential(s, 0.5)
		Expect(err).NotTo(HaveOccurred())
		Expect(out.At(0)).To(Equal(1.0))
	})

	It("applies the recurrence", func() {
		out, err := smooth.Exponential(s, 0.5)
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Values()).To(Equal([]float64{1, 1.5, 2.25}))
	})

	It("reproduces the input for alpha 1", func() {
		out, err := smooth.Exponential(s, 1.0)
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Values()).To(Equal(s.Values()))
	})

	It("preserves length and coordinates", func() {
		out, err := smooth.Exponential(s, 0.3)
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Len()).To(Equal(s.Len()))
		Expect(out.Coords()).To(Equal(s.Coords()))
	})

	It("rejects alpha outside (0, 1]", func() {
		for _, alpha := range []float64{0, -0.5, 1.5, math.NaN()} {
			_, err := smooth.Exponential(s, alpha)
			var perr *timeseries.InvalidParameterError
			Expect(errors.As(err, &perr)).To(BeTrue(), "alpha %v should be rejected", alpha)
		}
	})
})

var _ = Describe("ParseMode", func() {
	It("parses the known mode names", func() {
		m, err := smooth.ParseMode("valid")
		Expect(err).NotTo(HaveOccurred())
		Expect(m).To(Equal(smooth.ModeValid))

		m, err = smooth.ParseMode("same")
		Expect(err).NotTo(HaveOccurred())
		Expect(m).To(Equal(smooth.ModeSame))
	})

	It("round-trips through String", func() {
		for _, m := range []smooth.Mode{smooth.ModeValid, smooth.ModeSame} {
			parsed, err := smooth.ParseMode(m.String())
			Expect(err).NotTo(HaveOccurred())
			Expect(parsed).To(Equal(m))
		}
	})

	It("rejects unknown names", func() {
		_, err := smooth.ParseMode("gaussian")
		var perr *timeseries.InvalidParameterError
		Expect(errors.As(err, &perr)).To(BeTrue())
	})
})
