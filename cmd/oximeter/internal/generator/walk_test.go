package generator_test

import (
	"strconv"
	"strings"
	"testing"

	"github.com/shubham-shewale/oximeter-sim/cmd/oximeter/internal/generator"
	"github.com/shubham-shewale/oximeter-sim/cmd/oximeter/internal/testutils"
)

func TestStep_KnownValues(t *testing.T) {
	tests := []struct {
		previous, delta, want float64
	}{
		{100.0, 0.3, 100.0}, // clamped high
		{0.0, -0.2, 0.0},    // clamped low
		{50.0, 0.3, 50.3},
		{97.0, -0.5, 96.5},
		{99.8, 0.5, 100.0},
		{0.2, -0.5, 0.0},
		{97.2, 0.0, 97.2},
	}
	for _, tt := range tests {
		if got := generator.Step(tt.previous, tt.delta); got != tt.want {
			t.Errorf("Step(%v, %v) = %v, want %v", tt.previous, tt.delta, got, tt.want)
		}
	}
}

func TestStep_StaysInRangeWithOneDecimal(t *testing.T) {
	for tenths := 0; tenths <= 1000; tenths++ {
		previous := float64(tenths) / 10
		for k := -5; k <= 5; k++ {
			got := generator.Step(previous, float64(k)/10)
			if got < generator.MinSpO2 || got > generator.MaxSpO2 {
				t.Fatalf("Step(%v, %v) = %v out of range", previous, float64(k)/10, got)
			}
			if decimals(got) > 1 {
				t.Fatalf("Step(%v, %v) = %v has more than one decimal", previous, float64(k)/10, got)
			}
		}
	}
}

func TestPerturbation_DrawsTenthsFromClosedRange(t *testing.T) {
	tests := []struct {
		draw int
		want float64
	}{
		{0, -0.5},
		{5, 0.0},
		{7, 0.2},
		{10, 0.5},
	}
	for _, tt := range tests {
		rnd := &testutils.MockRand{ValInt: tt.draw}
		if got := generator.Perturbation(rnd); got != tt.want {
			t.Errorf("Perturbation(draw=%d) = %v, want %v", tt.draw, got, tt.want)
		}
		if rnd.Ns[0] != 11 {
			t.Errorf("Expected Intn(11), got Intn(%d)", rnd.Ns[0])
		}
	}
}

func TestNext_SaturatesAtBounds(t *testing.T) {
	up := &testutils.MockRand{ValInt: 10} // always +0.5
	v := 99.8
	for i := 0; i < 20; i++ {
		v = generator.Next(v, up)
		if v > generator.MaxSpO2 {
			t.Fatalf("iteration %d: %v exceeds max", i, v)
		}
	}
	if v != generator.MaxSpO2 {
		t.Errorf("Expected saturation at 100.0, got %v", v)
	}

	down := &testutils.MockRand{ValInt: 0} // always -0.5
	v = 0.2
	for i := 0; i < 20; i++ {
		v = generator.Next(v, down)
		if v < generator.MinSpO2 {
			t.Fatalf("iteration %d: %v below min", i, v)
		}
	}
	if v != generator.MinSpO2 {
		t.Errorf("Expected saturation at 0.0, got %v", v)
	}
}

func TestNext_RandomWalkStaysBounded(t *testing.T) {
	rnd := generator.NewRealRand()
	v := generator.InitialSpO2
	for i := 0; i < 100000; i++ {
		v = generator.Next(v, rnd)
		if v < generator.MinSpO2 || v > generator.MaxSpO2 || decimals(v) > 1 {
			t.Fatalf("iteration %d produced %v", i, v)
		}
	}
}

func decimals(v float64) int {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return len(s) - i - 1
	}
	return 0
}
