// Package calculator runs cone calculations for one session: it normalizes
// units, calls the solver, records successful angle solves in the session's
// history ledger, and converts results back to the display unit.
package calculator

import (
	"fmt"

	"github.com/iwvelando/cone-expert/internal/history"
	"github.com/iwvelando/cone-expert/pkg/cone"
	"github.com/iwvelando/cone-expert/pkg/units"
	"go.uber.org/zap"
)

// DimensionsInput holds the inputs for solving the angle from D, d and l.
type DimensionsInput struct {
	LargeDiameter     float64
	SmallDiameter     float64
	Length            float64
	RealLargeDiameter *float64
	Unit              units.Unit
}

// AngleInput holds the inputs for solving a missing dimension from the angle.
type AngleInput struct {
	AngleDegrees  float64
	Known         cone.KnownPair
	LargeDiameter *float64
	SmallDiameter *float64
	Length        *float64
	Unit          units.Unit
}

// SpecInput is a possibly partial cone description in one unit, as read from
// a batch file.
type SpecInput struct {
	Spec              cone.Spec  `yaml:",inline"`
	RealLargeDiameter *float64   `yaml:"realLarge,omitempty"`
	Unit              units.Unit `yaml:"unit,omitempty"`
}

// MachiningInput holds the optional lathe setup values. Any group left nil is skipped.
type MachiningInput struct {
	AngleDegrees *float64
	Diameter     *float64
	RPM          *float64
	FeedPerRev   *float64
	Unit         units.Unit
}

// Outcome is a solve result in both canonical and display units.
type Outcome struct {
	Unit units.Unit
	// Result is in millimeters.
	Result cone.Result
	// Display is Result.Cone converted to Unit.
	Display cone.Cone
	// Missing is the solved dimension converted to Unit, if any.
	Missing *cone.Dimension
	// Entry is the history entry recorded for this solve, if any.
	Entry *history.Entry
}

// MachiningOutcome holds whichever lathe setup values could be computed.
type MachiningOutcome struct {
	SupportAngle  *float64 `json:"supportAngle,omitempty"`
	CuttingSpeed  *float64 `json:"cuttingSpeed,omitempty"`
	FeedPerMinute *float64 `json:"feedPerMinute,omitempty"`
}

// Calculator is bound to one session's ledger. It is not safe for
// concurrent use.
type Calculator struct {
	logger *zap.Logger
	ledger *history.Ledger
	unit   units.Unit
}

// New creates a Calculator. A nil ledger gets a fresh one; an invalid unit
// falls back to millimeters.
func New(logger *zap.Logger, ledger *history.Ledger, defaultUnit units.Unit) *Calculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ledger == nil {
		ledger = history.New()
	}
	if !defaultUnit.Valid() {
		defaultUnit = units.Millimeter
	}
	return &Calculator{logger: logger, ledger: ledger, unit: defaultUnit}
}

// DefaultUnit returns the unit used when an input does not name one.
func (c *Calculator) DefaultUnit() units.Unit {
	return c.unit
}

// SolveFromDimensions solves the angle and taper ratio and records the
// calculation in the ledger on success.
func (c *Calculator) SolveFromDimensions(in DimensionsInput) (Outcome, error) {
	const op = "calculator.SolveFromDimensions"

	unit, err := c.resolveUnit(in.Unit)
	if err != nil {
		return Outcome{}, err
	}

	var realD *float64
	if in.RealLargeDiameter != nil {
		realD = cone.Value(units.ToCanonical(*in.RealLargeDiameter, unit))
	}

	result, err := cone.SolveFromDimensions(
		units.ToCanonical(in.LargeDiameter, unit),
		units.ToCanonical(in.SmallDiameter, unit),
		units.ToCanonical(in.Length, unit),
		realD,
	)
	if err != nil {
		c.logger.Info("rejected angle calculation",
			zap.String("op", op),
			zap.Stringer("kind", cone.KindOf(err)),
			zap.Error(err),
		)
		return Outcome{}, err
	}

	entry := c.ledger.Append(history.Entry{
		AngleDegrees:  result.AngleDegrees,
		LargeDiameter: result.Cone.LargeDiameter,
		SmallDiameter: result.Cone.SmallDiameter,
		Length:        result.Cone.Length,
		TaperRatio:    result.TaperRatio,
		Unit:          unit,
	})

	c.logger.Debug(fmt.Sprintf("solved angle %.4f° from D=%g d=%g l=%g %s",
		result.AngleDegrees, in.LargeDiameter, in.SmallDiameter, in.Length, unit),
		zap.String("op", op),
		zap.Int("sequence", entry.Sequence),
	)

	return Outcome{
		Unit:    unit,
		Result:  result,
		Display: toDisplay(result.Cone, unit),
		Entry:   &entry,
	}, nil
}

// SolveMissingDimension solves the dimension the known pair leaves out. It
// does not touch the ledger.
func (c *Calculator) SolveMissingDimension(in AngleInput) (Outcome, error) {
	const op = "calculator.SolveMissingDimension"

	unit, err := c.resolveUnit(in.Unit)
	if err != nil {
		return Outcome{}, err
	}

	known := cone.Spec{
		LargeDiameter: canonical(in.LargeDiameter, unit),
		SmallDiameter: canonical(in.SmallDiameter, unit),
		Length:        canonical(in.Length, unit),
	}

	result, err := cone.SolveMissingDimension(in.AngleDegrees, in.Known, known)
	if err != nil {
		c.logger.Info("rejected dimension calculation",
			zap.String("op", op),
			zap.String("known", string(in.Known)),
			zap.Stringer("kind", cone.KindOf(err)),
			zap.Error(err),
		)
		return Outcome{}, err
	}

	return c.dimensionOutcome(op, unit, result), nil
}

// Solve picks the mode from which fields of in.Spec are set. With D, d and l
// all present it behaves like SolveFromDimensions, otherwise the angle and two
// of the dimensions solve the third.
func (c *Calculator) Solve(in SpecInput) (Outcome, error) {
	const op = "calculator.Solve"

	spec := in.Spec
	if spec.LargeDiameter != nil && spec.SmallDiameter != nil && spec.Length != nil {
		return c.SolveFromDimensions(DimensionsInput{
			LargeDiameter:     *spec.LargeDiameter,
			SmallDiameter:     *spec.SmallDiameter,
			Length:            *spec.Length,
			RealLargeDiameter: in.RealLargeDiameter,
			Unit:              in.Unit,
		})
	}

	unit, err := c.resolveUnit(in.Unit)
	if err != nil {
		return Outcome{}, err
	}

	result, err := cone.Solve(cone.Spec{
		LargeDiameter: canonical(spec.LargeDiameter, unit),
		SmallDiameter: canonical(spec.SmallDiameter, unit),
		Length:        canonical(spec.Length, unit),
		AngleDegrees:  spec.AngleDegrees,
	}, canonical(in.RealLargeDiameter, unit))
	if err != nil {
		c.logger.Info("rejected calculation",
			zap.String("op", op),
			zap.Stringer("kind", cone.KindOf(err)),
			zap.Error(err),
		)
		return Outcome{}, err
	}

	return c.dimensionOutcome(op, unit, result), nil
}

func (c *Calculator) dimensionOutcome(op string, unit units.Unit, result cone.Result) Outcome {
	outcome := Outcome{
		Unit:    unit,
		Result:  result,
		Display: toDisplay(result.Cone, unit),
	}
	if result.MissingDimension != nil {
		outcome.Missing = &cone.Dimension{
			Quantity: result.MissingDimension.Quantity,
			Value:    units.FromCanonical(result.MissingDimension.Value, unit),
		}
		c.logger.Debug(fmt.Sprintf("solved %s=%g %s from angle %g°",
			outcome.Missing.Quantity, outcome.Missing.Value, unit, result.AngleDegrees),
			zap.String("op", op),
		)
	}
	return outcome
}

// Machining computes the support angle, cutting speed and feed for whichever
// inputs are present.
func (c *Calculator) Machining(in MachiningInput) (MachiningOutcome, error) {
	const op = "calculator.Machining"

	unit, err := c.resolveUnit(in.Unit)
	if err != nil {
		return MachiningOutcome{}, err
	}

	var out MachiningOutcome
	if in.AngleDegrees != nil {
		support, err := cone.SupportAngle(*in.AngleDegrees)
		if err != nil {
			return MachiningOutcome{}, err
		}
		out.SupportAngle = &support
	}
	if in.Diameter != nil && in.RPM != nil {
		speed, err := cone.CuttingSpeed(units.ToCanonical(*in.Diameter, unit), *in.RPM)
		if err != nil {
			return MachiningOutcome{}, err
		}
		out.CuttingSpeed = &speed
	}
	if in.FeedPerRev != nil && in.RPM != nil {
		feed, err := cone.FeedPerMinute(units.ToCanonical(*in.FeedPerRev, unit), *in.RPM)
		if err != nil {
			return MachiningOutcome{}, err
		}
		out.FeedPerMinute = &feed
	}

	if out.SupportAngle == nil && out.CuttingSpeed == nil && out.FeedPerMinute == nil {
		return MachiningOutcome{}, &cone.Error{Kind: cone.MissingInputs, Op: op,
			Msg: "need an angle, or an rpm with a diameter or feed"}
	}
	return out, nil
}

// History returns up to limit entries, newest first.
func (c *Calculator) History(limit int) []history.Entry {
	return c.ledger.RecentFirst(limit)
}

// ClearHistory empties the ledger.
func (c *Calculator) ClearHistory() {
	c.ledger.Clear()
	c.logger.Debug("history cleared", zap.String("op", "calculator.ClearHistory"))
}

func (c *Calculator) resolveUnit(u units.Unit) (units.Unit, error) {
	if u == "" {
		return c.unit, nil
	}
	if !u.Valid() {
		return "", fmt.Errorf("unsupported unit %q", string(u))
	}
	return u, nil
}

func canonical(v *float64, unit units.Unit) *float64 {
	if v == nil {
		return nil
	}
	return cone.Value(units.ToCanonical(*v, unit))
}

func toDisplay(c cone.Cone, unit units.Unit) cone.Cone {
	return cone.Cone{
		LargeDiameter: units.FromCanonical(c.LargeDiameter, unit),
		SmallDiameter: units.FromCanonical(c.SmallDiameter, unit),
		Length:        units.FromCanonical(c.Length, unit),
		AngleDegrees:  c.AngleDegrees,
	}
}
