package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/cone-expert/internal/calculator"
	"github.com/iwvelando/cone-expert/pkg/cone"
	"github.com/iwvelando/cone-expert/pkg/constants"
	"github.com/iwvelando/cone-expert/pkg/format"
	"github.com/iwvelando/cone-expert/pkg/i18n"
)

// BatchItem is the outcome of one batch input: either Outcome or Err is set.
type BatchItem struct {
	Index   int
	Outcome calculator.Outcome
	Err     error
}

// BatchItemView is the serialized form of a BatchItem.
type BatchItemView struct {
	Index  int          `json:"index"`
	Result *OutcomeView `json:"result,omitempty"`
	Error  string       `json:"error,omitempty"`
	Kind   string       `json:"kind,omitempty"`
}

// NewBatchView converts batch items for serialization. Error messages are
// localized with loc.
func NewBatchView(loc *i18n.Localizer, items []BatchItem) []BatchItemView {
	if loc == nil {
		loc = i18n.Lookup(constants.DefaultLanguage)
	}
	views := make([]BatchItemView, 0, len(items))
	for _, item := range items {
		view := BatchItemView{Index: item.Index}
		if item.Err != nil {
			view.Error = batchError(loc, item.Err)
			if kind := cone.KindOf(item.Err); kind != 0 {
				view.Kind = kind.String()
			}
		} else {
			result := NewOutcomeView(item.Outcome)
			view.Result = &result
		}
		views = append(views, view)
	}
	return views
}

// WriteBatch writes every batch item in the named output format.
func WriteBatch(w io.Writer, outputFormat string, loc *i18n.Localizer, items []BatchItem) error {
	if loc == nil {
		loc = i18n.Lookup(constants.DefaultLanguage)
	}

	switch outputFormat {
	case constants.OutputFormatJSON:
		return JSONFormat(w, NewBatchView(loc, items))
	case constants.OutputFormatCSV:
		rows := make([][]string, 0, len(items))
		for _, view := range NewBatchView(loc, items) {
			if view.Result == nil {
				rows = append(rows, []string{fmt.Sprintf("%d", view.Index), "", "", "", "", "", "", "", "", view.Error})
				continue
			}
			r := view.Result
			solved := ""
			if r.MissingDimension != nil {
				solved = string(r.MissingDimension.Quantity)
			}
			errorPercent := ""
			if r.MeasurementErrorPercent != nil {
				errorPercent = format.Number(*r.MeasurementErrorPercent, constants.LengthPrecision)
			}
			rows = append(rows, []string{
				fmt.Sprintf("%d", view.Index),
				r.Unit,
				format.Number(r.Cone.LargeDiameter, constants.LengthPrecision),
				format.Number(r.Cone.SmallDiameter, constants.LengthPrecision),
				format.Number(r.Cone.Length, constants.LengthPrecision),
				format.Number(r.AngleDegrees, constants.LengthPrecision),
				format.Number(r.TaperRatio, constants.RatioPrecision),
				errorPercent,
				solved,
				"",
			})
		}
		return writeCSV(w,
			[]string{"index", "unit", "large", "small", "length", "angle", "taperRatio", "errorPercent", "solved", "error"},
			rows,
		)
	}

	for i, item := range items {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "#%d\n", item.Index); err != nil {
			return err
		}
		if item.Err != nil {
			if _, err := fmt.Fprintf(w, "%s\n", batchError(loc, item.Err)); err != nil {
				return err
			}
			continue
		}
		if err := PrettyFormat(w, loc, item.Outcome); err != nil {
			return err
		}
	}
	return nil
}

func batchError(loc *i18n.Localizer, err error) string {
	if cone.KindOf(err) == 0 {
		return strings.TrimSpace(err.Error())
	}
	return loc.Error(err)
}
