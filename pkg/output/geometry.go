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
	"github.com/iwvelando/cone-expert/pkg/units"
)

// ProfileView is the serialized form of a cone profile.
type ProfileView struct {
	Unit    string        `json:"unit"`
	Outline []cone.Point  `json:"outline"`
	Rings   []cone.Point3 `json:"rings,omitempty"`
}

// WriteMachining writes lathe setup values in the named output format. Values
// that were not computed are left out.
func WriteMachining(w io.Writer, outputFormat string, loc *i18n.Localizer, m calculator.MachiningOutcome) error {
	switch outputFormat {
	case constants.OutputFormatJSON:
		return JSONFormat(w, m)
	case constants.OutputFormatCSV:
		return writeCSV(w,
			[]string{"supportAngle", "cuttingSpeed", "feedPerMinute"},
			[][]string{{optional(m.SupportAngle), optional(m.CuttingSpeed), optional(m.FeedPerMinute)}},
		)
	}

	if loc == nil {
		loc = i18n.Lookup(constants.DefaultLanguage)
	}
	var b strings.Builder
	if m.SupportAngle != nil {
		fmt.Fprintf(&b, "%s: %s°\n", loc.Label(i18n.SupportAngle), loc.Number(*m.SupportAngle, constants.LengthPrecision))
	}
	if m.CuttingSpeed != nil {
		fmt.Fprintf(&b, "%s: %s m/min\n", loc.Label(i18n.CuttingSpeed), loc.Number(*m.CuttingSpeed, constants.LengthPrecision))
	}
	if m.FeedPerMinute != nil {
		fmt.Fprintf(&b, "%s: %s mm/min\n", loc.Label(i18n.FeedRate), loc.Number(*m.FeedPerMinute, constants.LengthPrecision))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteProfile writes an outline and optional ring vertices in the named
// output format. Pretty and CSV output list one point per line.
func WriteProfile(w io.Writer, outputFormat string, unit units.Unit, outline []cone.Point, rings []cone.Point3) error {
	switch outputFormat {
	case constants.OutputFormatJSON:
		return JSONFormat(w, ProfileView{Unit: unit.String(), Outline: outline, Rings: rings})
	case constants.OutputFormatCSV:
		rows := make([][]string, 0, len(outline)+len(rings))
		for _, p := range outline {
			rows = append(rows, []string{"outline", coord(p.X), coord(p.Y), ""})
		}
		for _, p := range rings {
			rows = append(rows, []string{"ring", coord(p.X), coord(p.Y), coord(p.Z)})
		}
		return writeCSV(w, []string{"kind", "x", "y", "z"}, rows)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "--- Outline (%s) ---\n", unit)
	for _, p := range outline {
		fmt.Fprintf(&b, "(%s, %s)\n", coord(p.X), coord(p.Y))
	}
	if len(rings) > 0 {
		fmt.Fprintf(&b, "--- Rings (%d vertices) ---\n", len(rings))
		for _, p := range rings {
			fmt.Fprintf(&b, "(%s, %s, %s)\n", coord(p.X), coord(p.Y), coord(p.Z))
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func optional(v *float64) string {
	if v == nil {
		return ""
	}
	return format.Number(*v, constants.LengthPrecision)
}

func coord(v float64) string {
	return format.Number(v, constants.RatioPrecision)
}
