package timeseries

import (
	"errors"
	"math"
	"testing"
)

func TestNew(t *testing.T) {
	s, err := New([]float64{1, 2, 3}, 0.5)
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}

	if s.Len() != 3 {
		t.Errorf("expected length 3, got %d", s.Len())
	}
	if s.At(1) != 2 {
		t.Errorf("expected value 2 at index 1, got %f", s.At(1))
	}
	if s.Coord(2) != 1.0 {
		t.Errorf("expected coord 1.0 at index 2, got %f", s.Coord(2))
	}
	if !s.Uniform() {
		t.Error("expected uniform series")
	}
	if s.Step() != 0.5 {
		t.Errorf("expected step 0.5, got %f", s.Step())
	}
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		step   float64
	}{
		{"empty", []float64{}, 1.0},
		{"nan value", []float64{1, math.NaN()}, 1.0},
		{"inf value", []float64{1, math.Inf(1)}, 1.0},
		{"zero step", []float64{1, 2}, 0},
		{"negative step", []float64{1, 2}, -0.1},
		{"nan step", []float64{1, 2}, math.NaN()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.values, tt.step)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			var serr *InvalidSeriesError
			if !errors.As(err, &serr) {
				t.Errorf("expected InvalidSeriesError, got %T", err)
			}
		})
	}
}

func TestNewWithCoords(t *testing.T) {
	s, err := NewWithCoords([]float64{0, 0.4, 1.1}, []float64{5, 6, 7})
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}
	if s.Uniform() {
		t.Error("expected non-uniform series")
	}
	if s.Coord(1) != 0.4 {
		t.Errorf("expected coord 0.4, got %f", s.Coord(1))
	}

	tests := []struct {
		name   string
		coords []float64
		values []float64
	}{
		{"length mismatch", []float64{0, 1}, []float64{1, 2, 3}},
		{"decreasing", []float64{0, 2, 1}, []float64{1, 2, 3}},
		{"duplicate coord", []float64{0, 1, 1}, []float64{1, 2, 3}},
		{"nan coord", []float64{0, math.NaN(), 2}, []float64{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewWithCoords(tt.coords, tt.values)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			var serr *InvalidSeriesError
			if !errors.As(err, &serr) {
				t.Errorf("expected InvalidSeriesError, got %T", err)
			}
		})
	}
}

func TestMoments(t *testing.T) {
	s, err := New([]float64{2, 4, 4, 4, 5, 5, 7, 9}, 1.0)
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}

	if math.Abs(s.Mean()-5.0) > 1e-12 {
		t.Errorf("expected mean 5, got %f", s.Mean())
	}
	if math.Abs(s.Variance(false)-4.0) > 1e-12 {
		t.Errorf("expected population variance 4, got %f", s.Variance(false))
	}
	if math.Abs(s.Variance(true)-32.0/7.0) > 1e-12 {
		t.Errorf("expected sample variance %f, got %f", 32.0/7.0, s.Variance(true))
	}
	if math.Abs(s.Std(false)-2.0) > 1e-12 {
		t.Errorf("expected population std 2, got %f", s.Std(false))
	}
	if s.Min() != 2 || s.Max() != 9 {
		t.Errorf("expected min 2 max 9, got %f %f", s.Min(), s.Max())
	}
}

func TestWithWeights(t *testing.T) {
	s, err := New([]float64{1, 2, 3, 4}, 1.0)
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}

	w, err := s.WithWeights([]float64{0, 1, 1, 0})
	if err != nil {
		t.Fatalf("weights failed: %v", err)
	}
	if !w.Weighted() {
		t.Error("expected weighted series")
	}
	if s.Weighted() {
		t.Error("receiver should stay unweighted")
	}

	// Zero weights drop samples, so moments must match the sub-series {2, 3}.
	if math.Abs(w.Mean()-2.5) > 1e-12 {
		t.Errorf("expected weighted mean 2.5, got %f", w.Mean())
	}
	if math.Abs(w.Variance(false)-0.25) > 1e-12 {
		t.Errorf("expected weighted population variance 0.25, got %f", w.Variance(false))
	}
	if math.Abs(w.Variance(true)-0.5) > 1e-12 {
		t.Errorf("expected weighted sample variance 0.5, got %f", w.Variance(true))
	}
}

func TestWithWeightsValidation(t *testing.T) {
	s, _ := New([]float64{1, 2, 3}, 1.0)

	tests := []struct {
		name    string
		weights []float64
	}{
		{"length mismatch", []float64{1, 1}},
		{"negative", []float64{1, -1, 1}},
		{"nan", []float64{1, math.NaN(), 1}},
		{"all zero", []float64{0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.WithWeights(tt.weights)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			var serr *InvalidSeriesError
			if !errors.As(err, &serr) {
				t.Errorf("expected InvalidSeriesError, got %T", err)
			}
		})
	}
}

func TestSlice(t *testing.T) {
	s, _ := New([]float64{10, 20, 30, 40, 50}, 0.5)

	sub, err := s.Slice(1, 3)
	if err != nil {
		t.Fatalf("slice failed: %v", err)
	}
	if sub.Len() != 2 {
		t.Errorf("expected length 2, got %d", sub.Len())
	}
	if sub.At(0) != 20 || sub.At(1) != 30 {
		t.Errorf("unexpected values %f %f", sub.At(0), sub.At(1))
	}
	if math.Abs(sub.Coord(0)-0.5) > 1e-12 || math.Abs(sub.Coord(1)-1.0) > 1e-12 {
		t.Errorf("unexpected coords %f %f", sub.Coord(0), sub.Coord(1))
	}

	c, _ := NewWithCoords([]float64{0, 1, 4, 9}, []float64{1, 2, 3, 4})
	sub, err = c.Slice(2, 4)
	if err != nil {
		t.Fatalf("slice failed: %v", err)
	}
	if sub.Coord(0) != 4 || sub.Coord(1) != 9 {
		t.Errorf("explicit coords not preserved: %f %f", sub.Coord(0), sub.Coord(1))
	}

	for _, bounds := range [][2]int{{-1, 2}, {0, 6}, {3, 3}, {4, 2}} {
		_, err := s.Slice(bounds[0], bounds[1])
		if err == nil {
			t.Errorf("expected error for bounds %v", bounds)
			continue
		}
		var perr *InvalidParameterError
		if !errors.As(err, &perr) {
			t.Errorf("expected InvalidParameterError, got %T", err)
		}
	}
}

func TestImmutability(t *testing.T) {
	values := []float64{1, 2, 3}
	s, _ := New(values, 1.0)

	values[0] = 99
	if s.At(0) != 1 {
		t.Error("series shares storage with caller slice")
	}

	got := s.Values()
	got[1] = 99
	if s.At(1) != 2 {
		t.Error("Values() does not copy")
	}

	coords := s.Coords()
	coords[0] = 99
	if s.Coord(0) != 0 {
		t.Error("Coords() does not copy")
	}
}
