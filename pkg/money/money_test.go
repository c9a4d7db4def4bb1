package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ---------------------------------------------------------------------------
// Parse
// ---------------------------------------------------------------------------

func TestParse_Valid(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"100", "100"},
		{"100.50", "100.5"},
		{"0.01", "0.01"},
		{"-3.25", "-3.25"},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if err != nil {
			t.Errorf("Parse(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if !got.Equal(d(tt.want)) {
			t.Errorf("Parse(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{"", "abc", "1.2.3", "12,50"} {
		if _, err := Parse(in); err == nil {
			t.Errorf("Parse(%q) expected error, got nil", in)
		}
	}
}

// ---------------------------------------------------------------------------
// Tolerance comparisons
// ---------------------------------------------------------------------------

func TestNearlyEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"identical", "100.00", "100.00", true},
		{"half cent apart", "100.000", "100.005", true},
		{"exactly one cent apart", "100.00", "99.99", false},
		{"one dollar apart", "100", "99", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NearlyEqual(d(tt.a), d(tt.b)); got != tt.want {
				t.Errorf("NearlyEqual(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestNearlyZero(t *testing.T) {
	if !NearlyZero(d("0.009")) {
		t.Error("expected 0.009 to be nearly zero")
	}
	if !NearlyZero(d("-0.009")) {
		t.Error("expected -0.009 to be nearly zero")
	}
	if NearlyZero(d("0.01")) {
		t.Error("expected 0.01 not to be nearly zero")
	}
}

func TestAtLeast(t *testing.T) {
	if !AtLeast(d("452.48"), d("452.49")) {
		t.Error("one cent short should count as reaching the target")
	}
	if AtLeast(d("452.47"), d("452.49")) {
		t.Error("two cents short should not count as reaching the target")
	}
	if !AtLeast(d("500"), d("452.49")) {
		t.Error("overpayment should count as reaching the target")
	}
}

// ---------------------------------------------------------------------------
// Clamping and arithmetic
// ---------------------------------------------------------------------------

func TestFloorZero(t *testing.T) {
	if !FloorZero(d("-5")).IsZero() {
		t.Error("negative should floor to zero")
	}
	if !FloorZero(d("5")).Equal(d("5")) {
		t.Error("positive should pass through")
	}
}

func TestClampScore(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"-1", "0"},
		{"0", "0"},
		{"5.5", "5.5"},
		{"10", "10"},
		{"12", "10"},
	}
	for _, tt := range tests {
		if got := ClampScore(d(tt.in)); !got.Equal(d(tt.want)) {
			t.Errorf("ClampScore(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestPercent(t *testing.T) {
	if got := Percent(d("1000"), d("10")); !got.Equal(d("100")) {
		t.Errorf("Percent(1000, 10) = %s, want 100", got)
	}
	if got := Percent(d("452.49"), d("2")); !got.Equal(d("9.0498")) {
		t.Errorf("Percent(452.49, 2) = %s, want 9.0498", got)
	}
}

func TestRateFraction(t *testing.T) {
	if got := RateFraction(d("8")); !got.Equal(d("0.08")) {
		t.Errorf("RateFraction(8) = %s, want 0.08", got)
	}
}

func TestRoundWorking(t *testing.T) {
	if got := RoundWorking(d("0.333333333333333333")); !got.Equal(d("0.3333333333")) {
		t.Errorf("RoundWorking(1/3) = %s, want 0.3333333333", got)
	}
	if got := RoundWorking(d("2.00000000005")); !got.Equal(d("2.0000000001")) {
		t.Errorf("RoundWorking(2.00000000005) = %s, want 2.0000000001", got)
	}
	if got := RoundWorking(d("465.64")); got.Exponent() < -WorkingScale {
		t.Errorf("RoundWorking(465.64) exponent = %d", got.Exponent())
	}
}
