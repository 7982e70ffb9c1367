package checkout

import (
	"math"
	"testing"
)

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{in: 10.004, want: 10.00},
		{in: 10.005, want: 10.01},
		{in: 19.999, want: 20.00},
		{in: 0.1 + 0.2, want: 0.30},
		{in: -2.675, want: -2.68},
		{in: 100, want: 100},
	}

	for _, tt := range tests {
		if got := Round2(tt.in); got != tt.want {
			t.Fatalf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestIsValidAmount(t *testing.T) {
	valid := []float64{0.01, 1, 49.90, 99999.99}
	for _, v := range valid {
		if !IsValidAmount(v) {
			t.Fatalf("expected %v to be a valid amount", v)
		}
	}

	invalid := []float64{0, -0.01, -100, math.NaN(), math.Inf(1), math.Inf(-1)}
	for _, v := range invalid {
		if IsValidAmount(v) {
			t.Fatalf("expected %v to be rejected", v)
		}
	}
}

func TestDiscountExample(t *testing.T) {
	subtotal := 100.00
	shipping := 10.00
	pct := 20.0

	discount := Round2(subtotal * pct / 100)
	total := Round2(subtotal + shipping - discount)

	if discount != 20.00 {
		t.Fatalf("discount = %v, want 20.00", discount)
	}
	if total != 90.00 {
		t.Fatalf("total = %v, want 90.00", total)
	}
}
