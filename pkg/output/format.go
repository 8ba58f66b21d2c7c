// Package output provides utilities for formatting and displaying cone results.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/iwvelando/cone-expert/internal/calculator"
	"github.com/iwvelando/cone-expert/internal/history"
	"github.com/iwvelando/cone-expert/pkg/cone"
	"github.com/iwvelando/cone-expert/pkg/constants"
	"github.com/iwvelando/cone-expert/pkg/format"
	"github.com/iwvelando/cone-expert/pkg/i18n"
	"github.com/iwvelando/cone-expert/pkg/units"
)

// OutcomeView is the serialized form of a calculator outcome. Dimensions are
// in Unit; Canonical repeats them in millimeters.
type OutcomeView struct {
	Unit                    string          `json:"unit"`
	AngleDegrees            float64         `json:"angle"`
	TaperRatio              float64         `json:"taperRatio"`
	MeasurementErrorPercent *float64        `json:"measurementErrorPercent,omitempty"`
	MissingDimension        *cone.Dimension `json:"missingDimension,omitempty"`
	Cone                    cone.Cone       `json:"cone"`
	Canonical               cone.Cone       `json:"canonical"`
	Sequence                int             `json:"sequence,omitempty"`
}

// HistoryEntryView is a history entry with dimensions in the unit it was entered in.
type HistoryEntryView struct {
	ID            string    `json:"id" yaml:"id"`
	Sequence      int       `json:"sequence" yaml:"sequence"`
	Timestamp     time.Time `json:"timestamp" yaml:"timestamp"`
	Unit          string    `json:"unit" yaml:"unit"`
	AngleDegrees  float64   `json:"angle" yaml:"angle"`
	LargeDiameter float64   `json:"large" yaml:"large"`
	SmallDiameter float64   `json:"small" yaml:"small"`
	Length        float64   `json:"length" yaml:"length"`
	TaperRatio    float64   `json:"taperRatio" yaml:"taperRatio"`
	Summary       string    `json:"summary" yaml:"summary"`
}

// NewOutcomeView converts an outcome for serialization.
func NewOutcomeView(outcome calculator.Outcome) OutcomeView {
	view := OutcomeView{
		Unit:                    outcome.Unit.String(),
		AngleDegrees:            outcome.Result.AngleDegrees,
		TaperRatio:              outcome.Result.TaperRatio,
		MeasurementErrorPercent: outcome.Result.MeasurementErrorPercent,
		MissingDimension:        outcome.Missing,
		Cone:                    outcome.Display,
		Canonical:               outcome.Result.Cone,
	}
	if outcome.Entry != nil {
		view.Sequence = outcome.Entry.Sequence
	}
	return view
}

// NewHistoryView converts ledger entries for serialization, keeping their order.
func NewHistoryView(entries []history.Entry) []HistoryEntryView {
	views := make([]HistoryEntryView, 0, len(entries))
	for _, entry := range entries {
		unit := entry.Unit
		views = append(views, HistoryEntryView{
			ID:            entry.ID,
			Sequence:      entry.Sequence,
			Timestamp:     entry.Timestamp,
			Unit:          unit.String(),
			AngleDegrees:  entry.AngleDegrees,
			LargeDiameter: units.FromCanonical(entry.LargeDiameter, unit),
			SmallDiameter: units.FromCanonical(entry.SmallDiameter, unit),
			Length:        units.FromCanonical(entry.Length, unit),
			TaperRatio:    entry.TaperRatio,
			Summary:       Summary(entry),
		})
	}
	return views
}

// Summary renders an entry on one line, e.g. "α=11.42°, D=50.00 mm, d=30.00 mm, l=100.00 mm, k=1:5.000".
func Summary(entry history.Entry) string {
	unit := entry.Unit
	return fmt.Sprintf("α=%s, D=%s, d=%s, l=%s, k=%s",
		format.Angle(entry.AngleDegrees),
		format.Length(units.FromCanonical(entry.LargeDiameter, unit), unit),
		format.Length(units.FromCanonical(entry.SmallDiameter, unit), unit),
		format.Length(units.FromCanonical(entry.Length, unit), unit),
		format.Ratio(entry.TaperRatio),
	)
}

// WriteOutcome writes outcome in the named output format.
func WriteOutcome(w io.Writer, outputFormat string, loc *i18n.Localizer, outcome calculator.Outcome) error {
	switch outputFormat {
	case constants.OutputFormatCSV:
		return CsvFormat(w, outcome)
	case constants.OutputFormatJSON:
		return JSONFormat(w, NewOutcomeView(outcome))
	default:
		return PrettyFormat(w, loc, outcome)
	}
}

// WriteHistory writes entries in the named output format.
func WriteHistory(w io.Writer, outputFormat string, loc *i18n.Localizer, entries []history.Entry) error {
	switch outputFormat {
	case constants.OutputFormatCSV:
		return CsvHistory(w, entries)
	case constants.OutputFormatJSON:
		return JSONFormat(w, NewHistoryView(entries))
	default:
		return PrettyHistory(w, loc, entries)
	}
}

// PrettyFormat outputs a human-readable rather than machine-readable result.
func PrettyFormat(w io.Writer, loc *i18n.Localizer, outcome calculator.Outcome) error {
	if loc == nil {
		loc = i18n.Lookup(constants.DefaultLanguage)
	}
	unit := outcome.Unit
	result := outcome.Result

	var b strings.Builder
	if outcome.Missing != nil {
		fmt.Fprintf(&b, "%s: %s %s\n", loc.Label(quantityLabel(outcome.Missing.Quantity)),
			loc.Number(outcome.Missing.Value, constants.LengthPrecision), unit)
	}
	fmt.Fprintf(&b, "%s: %s°\n", loc.Label(i18n.ResultAngle), loc.Number(result.AngleDegrees, constants.LengthPrecision))
	fmt.Fprintf(&b, "%s: 1:%s\n", loc.Label(i18n.ResultTaper), loc.Number(result.TaperRatio, constants.RatioPrecision))
	if result.MeasurementErrorPercent != nil {
		fmt.Fprintf(&b, "%s: %s%%\n", loc.Label(i18n.ResultError), loc.Number(*result.MeasurementErrorPercent, constants.LengthPrecision))
	}
	fmt.Fprintf(&b, "D=%s  d=%s  l=%s\n",
		format.Length(outcome.Display.LargeDiameter, unit),
		format.Length(outcome.Display.SmallDiameter, unit),
		format.Length(outcome.Display.Length, unit),
	)

	_, err := io.WriteString(w, b.String())
	return err
}

// PrettyHistory outputs history entries one per line, in the order given.
func PrettyHistory(w io.Writer, loc *i18n.Localizer, entries []history.Entry) error {
	if loc == nil {
		loc = i18n.Lookup(constants.DefaultLanguage)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "--- %s ---\n", loc.Label(i18n.History))
	if len(entries) == 0 {
		fmt.Fprintf(&b, "%s\n", loc.Label(i18n.HistoryEmpty))
	}
	for _, entry := range entries {
		fmt.Fprintf(&b, "%d. %s\n", entry.Sequence, Summary(entry))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// CsvFormat outputs a header row and one result row.
func CsvFormat(w io.Writer, outcome calculator.Outcome) error {
	errorPercent := ""
	if p := outcome.Result.MeasurementErrorPercent; p != nil {
		errorPercent = format.Number(*p, constants.LengthPrecision)
	}
	missing := ""
	if outcome.Missing != nil {
		missing = string(outcome.Missing.Quantity)
	}

	return writeCSV(w,
		[]string{"unit", "large", "small", "length", "angle", "taperRatio", "errorPercent", "solved"},
		[][]string{{
			outcome.Unit.String(),
			format.Number(outcome.Display.LargeDiameter, constants.LengthPrecision),
			format.Number(outcome.Display.SmallDiameter, constants.LengthPrecision),
			format.Number(outcome.Display.Length, constants.LengthPrecision),
			format.Number(outcome.Result.AngleDegrees, constants.LengthPrecision),
			format.Number(outcome.Result.TaperRatio, constants.RatioPrecision),
			errorPercent,
			missing,
		}},
	)
}

// CsvHistory outputs history entries in comma-separated value format.
func CsvHistory(w io.Writer, entries []history.Entry) error {
	rows := make([][]string, 0, len(entries))
	for _, view := range NewHistoryView(entries) {
		rows = append(rows, []string{
			fmt.Sprintf("%d", view.Sequence),
			view.Timestamp.Format(time.RFC3339),
			view.Unit,
			format.Number(view.LargeDiameter, constants.LengthPrecision),
			format.Number(view.SmallDiameter, constants.LengthPrecision),
			format.Number(view.Length, constants.LengthPrecision),
			format.Number(view.AngleDegrees, constants.LengthPrecision),
			format.Number(view.TaperRatio, constants.RatioPrecision),
		})
	}
	return writeCSV(w, []string{"sequence", "timestamp", "unit", "large", "small", "length", "angle", "taperRatio"}, rows)
}

// JSONFormat outputs v as indented JSON.
func JSONFormat(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func writeCSV(w io.Writer, header []string, rows [][]string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return err
	}
	if err := writer.WriteAll(rows); err != nil {
		return err
	}
	return writer.Error()
}

func quantityLabel(q cone.Quantity) i18n.Key {
	switch q {
	case cone.LargeDiameter:
		return i18n.LargeDiameter
	case cone.SmallDiameter:
		return i18n.SmallDiameter
	default:
		return i18n.Length
	}
}
