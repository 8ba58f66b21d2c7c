package cone

import (
	"errors"
	"math"
	"testing"

	"github.com/iwvelando/cone-expert/pkg/mathutil"
	"github.com/iwvelando/cone-expert/pkg/units"
)

func TestSolveFromDimensionsReferenceCone(t *testing.T) {
	result, err := SolveFromDimensions(50, 30, 100, nil)
	if err != nil {
		t.Fatalf("SolveFromDimensions() error = %v", err)
	}

	if math.Abs(result.AngleDegrees-11.42) > 0.005 {
		t.Errorf("angle = %v, expected ≈ 11.42", result.AngleDegrees)
	}
	if math.Abs(result.TaperRatio-5.0) > 1e-9 {
		t.Errorf("taper ratio = %v, expected 5.0", result.TaperRatio)
	}
	if result.MeasurementErrorPercent != nil {
		t.Errorf("expected no measurement error without a reference, got %v", *result.MeasurementErrorPercent)
	}
	if result.MissingDimension != nil {
		t.Errorf("expected no missing dimension in angle mode, got %+v", result.MissingDimension)
	}
	want := Cone{LargeDiameter: 50, SmallDiameter: 30, Length: 100, AngleDegrees: result.AngleDegrees}
	if result.Cone != want {
		t.Errorf("cone = %+v, expected %+v", result.Cone, want)
	}
}

func TestSolveFromDimensionsMeasurementError(t *testing.T) {
	tests := []struct {
		name     string
		realD    *float64
		expected *float64
	}{
		{"Oversize reference", Value(52), Value(4.0)},
		{"Undersize reference", Value(49), Value(2.0)},
		{"Zero reference is ignored", Value(0), nil},
		{"Negative reference is ignored", Value(-3), nil},
		{"Nil reference", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := SolveFromDimensions(50, 30, 100, tt.realD)
			if err != nil {
				t.Fatalf("SolveFromDimensions() error = %v", err)
			}
			if tt.expected == nil {
				if result.MeasurementErrorPercent != nil {
					t.Fatalf("expected no error percent, got %v", *result.MeasurementErrorPercent)
				}
				return
			}
			if result.MeasurementErrorPercent == nil {
				t.Fatalf("expected error percent %v, got nil", *tt.expected)
			}
			if got := mathutil.Round(*result.MeasurementErrorPercent, 2); got != *tt.expected {
				t.Errorf("error percent = %v, expected %v", got, *tt.expected)
			}
		})
	}
}

func TestSolveFromDimensionsErrors(t *testing.T) {
	tests := []struct {
		name    string
		D, d, l float64
		realD   *float64
		kind    Kind
	}{
		{"Zero length", 50, 30, 0, nil, InvalidDimensions},
		{"Negative length", 50, 30, -5, nil, InvalidDimensions},
		{"Equal diameters", 30, 30, 100, nil, InvalidDimensions},
		{"Small larger than large", 30, 50, 100, nil, InvalidDimensions},
		{"Negative small diameter", 50, -1, 100, nil, InvalidDimensions},
		{"NaN length", 50, 30, math.NaN(), nil, InvalidDimensions},
		{"Infinite large diameter", math.Inf(1), 30, 100, nil, InvalidDimensions},
		{"Infinite reference", 50, 30, 100, Value(math.Inf(1)), InvalidDimensions},
		{"Underflowing taper", 50, 50 - 1e-10, 1e6, nil, DegenerateAngle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SolveFromDimensions(tt.D, tt.d, tt.l, tt.realD)
			if err == nil {
				t.Fatalf("expected %v, got nil", tt.kind)
			}
			if KindOf(err) != tt.kind {
				t.Errorf("kind = %v, expected %v (err: %v)", KindOf(err), tt.kind, err)
			}
		})
	}
}

func TestSolveFromDimensionsAngleRange(t *testing.T) {
	for _, D := range []float64{0.5, 1, 10, 50, 500, 1e5} {
		for _, frac := range []float64{0, 0.1, 0.5, 0.9, 0.999} {
			d := D * frac
			for _, l := range []float64{0.01, 1, 100, 1e4} {
				result, err := SolveFromDimensions(D, d, l, nil)
				if err != nil {
					t.Fatalf("SolveFromDimensions(%v, %v, %v) error = %v", D, d, l, err)
				}
				if result.AngleDegrees <= 0 || result.AngleDegrees >= 180 {
					t.Errorf("angle %v out of (0, 180) for D=%v d=%v l=%v", result.AngleDegrees, D, d, l)
				}
				if result.TaperRatio <= 0 {
					t.Errorf("taper ratio %v not positive for D=%v d=%v l=%v", result.TaperRatio, D, d, l)
				}
			}
		}
	}
}

func TestSolveFromDimensionsMonotonic(t *testing.T) {
	const d, l = 30.0, 100.0
	previous := 0.0
	for D := 30.5; D < 300; D += 2.5 {
		result, err := SolveFromDimensions(D, d, l, nil)
		if err != nil {
			t.Fatalf("SolveFromDimensions(%v) error = %v", D, err)
		}
		if result.AngleDegrees <= previous {
			t.Fatalf("angle not increasing at D=%v: %v <= %v", D, result.AngleDegrees, previous)
		}
		previous = result.AngleDegrees
	}

	previous = 180.0
	for length := 1.0; length < 1000; length *= 1.5 {
		result, err := SolveFromDimensions(50, d, length, nil)
		if err != nil {
			t.Fatalf("SolveFromDimensions(l=%v) error = %v", length, err)
		}
		if result.AngleDegrees >= previous {
			t.Fatalf("angle not decreasing at l=%v: %v >= %v", length, result.AngleDegrees, previous)
		}
		previous = result.AngleDegrees
	}
}

func TestSolveFromDimensionsUnitInvariance(t *testing.T) {
	inches := []struct{ D, d, l float64 }{
		{2, 1.5, 4},
		{1.9685, 1.1811, 3.937},
		{0.75, 0.5, 1},
	}

	for _, in := range inches {
		fromInches, err := SolveFromDimensions(
			units.ToCanonical(in.D, units.Inch),
			units.ToCanonical(in.d, units.Inch),
			units.ToCanonical(in.l, units.Inch),
			nil,
		)
		if err != nil {
			t.Fatalf("inch solve error = %v", err)
		}
		fromMillimeters, err := SolveFromDimensions(in.D*25.4, in.d*25.4, in.l*25.4, nil)
		if err != nil {
			t.Fatalf("mm solve error = %v", err)
		}
		if !mathutil.WithinRelativeTolerance(fromInches.AngleDegrees, fromMillimeters.AngleDegrees, 1e-9) {
			t.Errorf("angle differs between units: %v vs %v", fromInches.AngleDegrees, fromMillimeters.AngleDegrees)
		}
	}
}

func TestSolveMissingDimension(t *testing.T) {
	tests := []struct {
		name     string
		angle    float64
		pair     KnownPair
		known    Spec
		quantity Quantity
		expected float64
		delta    float64
	}{
		{
			name:     "Length from diameters",
			angle:    11.42,
			pair:     DiametersKnown,
			known:    Spec{LargeDiameter: Value(50), SmallDiameter: Value(30)},
			quantity: Length,
			expected: 100,
			delta:    0.05,
		},
		{
			name:     "Small diameter from large and length",
			angle:    2 * mathutil.Degrees(math.Atan(0.1)),
			pair:     LargeDiameterAndLength,
			known:    Spec{LargeDiameter: Value(50), Length: Value(100)},
			quantity: SmallDiameter,
			expected: 30,
			delta:    1e-9,
		},
		{
			name:     "Large diameter from small and length",
			angle:    2 * mathutil.Degrees(math.Atan(0.1)),
			pair:     SmallDiameterAndLength,
			known:    Spec{SmallDiameter: Value(30), Length: Value(100)},
			quantity: LargeDiameter,
			expected: 50,
			delta:    1e-9,
		},
		{
			name:     "Point cone closes exactly",
			angle:    90,
			pair:     LargeDiameterAndLength,
			known:    Spec{LargeDiameter: Value(20), Length: Value(10)},
			quantity: SmallDiameter,
			expected: 0,
			delta:    1e-9,
		},
		{
			name:     "Extra fields are ignored",
			angle:    60,
			pair:     SmallDiameterAndLength,
			known:    Spec{LargeDiameter: Value(999), SmallDiameter: Value(0), Length: Value(10)},
			quantity: LargeDiameter,
			expected: 20 * math.Tan(math.Pi/6),
			delta:    1e-9,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := SolveMissingDimension(tt.angle, tt.pair, tt.known)
			if err != nil {
				t.Fatalf("SolveMissingDimension() error = %v", err)
			}
			if result.MissingDimension == nil {
				t.Fatal("expected a missing dimension")
			}
			if result.MissingDimension.Quantity != tt.quantity {
				t.Errorf("quantity = %v, expected %v", result.MissingDimension.Quantity, tt.quantity)
			}
			if math.Abs(result.MissingDimension.Value-tt.expected) > tt.delta {
				t.Errorf("value = %v, expected %v ± %v", result.MissingDimension.Value, tt.expected, tt.delta)
			}
			if result.AngleDegrees != tt.angle {
				t.Errorf("angle = %v, expected %v", result.AngleDegrees, tt.angle)
			}
			if tt.pair.Unknown() != tt.quantity {
				t.Errorf("Unknown() = %v, expected %v", tt.pair.Unknown(), tt.quantity)
			}
		})
	}
}

func TestSolveMissingDimensionErrors(t *testing.T) {
	tests := []struct {
		name  string
		angle float64
		pair  KnownPair
		known Spec
		kind  Kind
	}{
		{"Zero angle", 0, DiametersKnown, Spec{LargeDiameter: Value(50), SmallDiameter: Value(30)}, DegenerateAngle},
		{"Negative angle", -10, DiametersKnown, Spec{LargeDiameter: Value(50), SmallDiameter: Value(30)}, DegenerateAngle},
		{"Straight angle", 180, LargeDiameterAndLength, Spec{LargeDiameter: Value(50), Length: Value(10)}, DegenerateAngle},
		{"Beyond straight", 200, SmallDiameterAndLength, Spec{SmallDiameter: Value(5), Length: Value(10)}, DegenerateAngle},
		{"Vanishing angle", 1e-15, DiametersKnown, Spec{LargeDiameter: Value(50), SmallDiameter: Value(30)}, DegenerateAngle},
		{"Near straight angle", 180 - 1e-12, SmallDiameterAndLength, Spec{SmallDiameter: Value(5), Length: Value(10)}, DegenerateAngle},
		{"NaN angle", math.NaN(), DiametersKnown, Spec{LargeDiameter: Value(50), SmallDiameter: Value(30)}, DegenerateAngle},
		{"Diameters reversed", 10, DiametersKnown, Spec{LargeDiameter: Value(30), SmallDiameter: Value(50)}, InvalidDimensions},
		{"Diameters equal", 10, DiametersKnown, Spec{LargeDiameter: Value(30), SmallDiameter: Value(30)}, InvalidDimensions},
		{"Missing small diameter", 10, DiametersKnown, Spec{LargeDiameter: Value(50)}, MissingInputs},
		{"Missing length", 10, LargeDiameterAndLength, Spec{LargeDiameter: Value(50)}, MissingInputs},
		{"Missing large diameter", 10, SmallDiameterAndLength, Spec{Length: Value(50)}, MissingInputs},
		{"No pair", 10, KnownPair(""), Spec{LargeDiameter: Value(50), SmallDiameter: Value(30)}, MissingInputs},
		{"Zero length", 10, LargeDiameterAndLength, Spec{LargeDiameter: Value(50), Length: Value(0)}, InvalidDimensions},
		{"Negative small diameter", 10, SmallDiameterAndLength, Spec{SmallDiameter: Value(-1), Length: Value(10)}, InvalidDimensions},
		{"Cone closes early", 60, LargeDiameterAndLength, Spec{LargeDiameter: Value(10), Length: Value(100)}, InvalidDimensions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SolveMissingDimension(tt.angle, tt.pair, tt.known)
			if err == nil {
				t.Fatalf("expected %v, got nil", tt.kind)
			}
			if KindOf(err) != tt.kind {
				t.Errorf("kind = %v, expected %v (err: %v)", KindOf(err), tt.kind, err)
			}
		})
	}
}

func TestRoundTripAngleToLength(t *testing.T) {
	for _, D := range []float64{10, 50, 120.5, 800} {
		for _, frac := range []float64{0, 0.3, 0.75, 0.99} {
			d := D * frac
			for _, l := range []float64{0.5, 20, 100, 2500} {
				modeA, err := SolveFromDimensions(D, d, l, nil)
				if err != nil {
					t.Fatalf("SolveFromDimensions(%v, %v, %v) error = %v", D, d, l, err)
				}
				modeB, err := SolveMissingDimension(modeA.AngleDegrees, DiametersKnown,
					Spec{LargeDiameter: Value(D), SmallDiameter: Value(d)})
				if err != nil {
					t.Fatalf("SolveMissingDimension(%v) error = %v", modeA.AngleDegrees, err)
				}
				if !mathutil.WithinRelativeTolerance(modeB.MissingDimension.Value, l, 1e-6) {
					t.Errorf("recovered l = %v, expected %v (D=%v d=%v)", modeB.MissingDimension.Value, l, D, d)
				}
				if !mathutil.WithinRelativeTolerance(modeB.TaperRatio, modeA.TaperRatio, 1e-6) {
					t.Errorf("taper ratio mismatch: %v vs %v", modeB.TaperRatio, modeA.TaperRatio)
				}
			}
		}
	}
}

func TestSolveDispatch(t *testing.T) {
	result, err := Solve(Spec{LargeDiameter: Value(50), SmallDiameter: Value(30), Length: Value(100)}, Value(52))
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	if result.MissingDimension != nil {
		t.Errorf("expected angle mode, got missing dimension %+v", result.MissingDimension)
	}
	if result.MeasurementErrorPercent == nil || math.Abs(*result.MeasurementErrorPercent-4) > 1e-9 {
		t.Errorf("expected 4%% measurement error, got %v", result.MeasurementErrorPercent)
	}

	result, err = Solve(Spec{AngleDegrees: Value(11.42), LargeDiameter: Value(50), SmallDiameter: Value(30)}, nil)
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	if result.MissingDimension == nil || result.MissingDimension.Quantity != Length {
		t.Fatalf("expected length to be solved, got %+v", result.MissingDimension)
	}

	result, err = Solve(Spec{AngleDegrees: Value(30), SmallDiameter: Value(10), Length: Value(40)}, nil)
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	if result.MissingDimension.Quantity != LargeDiameter {
		t.Errorf("expected large diameter to be solved, got %v", result.MissingDimension.Quantity)
	}

	if _, err := Solve(Spec{LargeDiameter: Value(50), SmallDiameter: Value(30)}, nil); !errors.Is(err, ErrMissingInputs) {
		t.Errorf("expected ErrMissingInputs without angle, got %v", err)
	}
	if _, err := Solve(Spec{AngleDegrees: Value(30), Length: Value(40)}, nil); !errors.Is(err, ErrMissingInputs) {
		t.Errorf("expected ErrMissingInputs with one dimension, got %v", err)
	}
}

func TestParseKnownPair(t *testing.T) {
	tests := []struct {
		input    string
		expected KnownPair
		wantErr  bool
	}{
		{"D&d", DiametersKnown, false},
		{"D & d", DiametersKnown, false},
		{"Dd", DiametersKnown, false},
		{"D & l", LargeDiameterAndLength, false},
		{"d & l", SmallDiameterAndLength, false},
		{"d,l", SmallDiameterAndLength, false},
		{"dd", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseKnownPair(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseKnownPair(%q) error = %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseKnownPair(%q) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestTaperRatio(t *testing.T) {
	k, err := TaperRatio(2 * mathutil.Degrees(math.Atan(0.1)))
	if err != nil {
		t.Fatalf("TaperRatio() error = %v", err)
	}
	if math.Abs(k-5) > 1e-9 {
		t.Errorf("TaperRatio = %v, expected 5", k)
	}
	if _, err := TaperRatio(0); !errors.Is(err, ErrDegenerateAngle) {
		t.Errorf("expected ErrDegenerateAngle for 0°, got %v", err)
	}
}

func TestErrorMatching(t *testing.T) {
	_, err := SolveFromDimensions(50, 30, 0, nil)
	if !errors.Is(err, ErrInvalidDimensions) {
		t.Fatalf("expected errors.Is(err, ErrInvalidDimensions), got %v", err)
	}
	if errors.Is(err, ErrDegenerateAngle) {
		t.Fatal("invalid dimensions should not match ErrDegenerateAngle")
	}

	var solverErr *Error
	if !errors.As(err, &solverErr) {
		t.Fatal("expected *Error")
	}
	if solverErr.Op != "cone.SolveFromDimensions" {
		t.Errorf("op = %q", solverErr.Op)
	}
	if KindOf(errors.New("plain")) != 0 {
		t.Error("KindOf on a foreign error should be 0")
	}
	if MissingInputs.String() != "MissingInputs" {
		t.Errorf("String() = %q", MissingInputs.String())
	}
}
