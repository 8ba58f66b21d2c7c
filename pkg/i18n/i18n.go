// Package i18n provides the user-facing labels and solver error messages in
// every supported language, keyed by a BCP 47 language tag.
package i18n

import (
	"fmt"

	"github.com/iwvelando/cone-expert/pkg/cone"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Key identifies a translatable string.
type Key string

// Label keys.
const (
	Title          Key = "title"
	ModeAngle      Key = "mode.angle"
	ModeDimension  Key = "mode.dimension"
	Unit           Key = "unit"
	Millimeters    Key = "unit.mm"
	Inches         Key = "unit.in"
	LargeDiameter  Key = "input.large"
	SmallDiameter  Key = "input.small"
	Length         Key = "input.length"
	Angle          Key = "input.angle"
	RealDiameter   Key = "input.realLarge"
	KnownValues    Key = "input.known"
	ResultAngle    Key = "result.angle"
	ResultTaper    Key = "result.taper"
	ResultError    Key = "result.error"
	SupportAngle   Key = "result.support"
	CuttingSpeed   Key = "result.cutting"
	FeedRate       Key = "result.feed"
	History        Key = "history"
	HistoryEmpty   Key = "history.empty"
	ClearHistory   Key = "history.clear"
	ErrInvalid     Key = "error.invalidDimensions"
	ErrDegenerate  Key = "error.degenerateAngle"
	ErrMissing     Key = "error.missingInputs"
	ErrUnspecified Key = "error.unknown"
)

var translations = map[language.Tag]map[Key]string{
	language.English: {
		Title:          "Cone Expert",
		ModeAngle:      "Angle from D, d, l",
		ModeDimension:  "D/d/l from angle",
		Unit:           "Unit",
		Millimeters:    "Millimeters (mm)",
		Inches:         "Inches (in)",
		LargeDiameter:  "Large diameter D",
		SmallDiameter:  "Small diameter d",
		Length:         "Cone length l",
		Angle:          "Cone angle α",
		RealDiameter:   "Real measured D",
		KnownValues:    "Known values",
		ResultAngle:    "Cone angle α",
		ResultTaper:    "Taper ratio k",
		ResultError:    "Measurement error",
		SupportAngle:   "Support angle",
		CuttingSpeed:   "Cutting speed",
		FeedRate:       "Feed",
		History:        "Calculation history",
		HistoryEmpty:   "No calculations yet",
		ClearHistory:   "Clear history",
		ErrInvalid:     "Invalid dimensions. D must be > d and l > 0.",
		ErrDegenerate:  "The angle must be strictly between 0° and 180°.",
		ErrMissing:     "Required values are missing for this mode.",
		ErrUnspecified: "The calculation failed.",
	},
	language.Persian: {
		Title:          "مخروط‌یار حرفه‌ای",
		ModeAngle:      "محاسبه زاویه از D، d، l",
		ModeDimension:  "محاسبه D یا d یا l از زاویه",
		Unit:           "واحد",
		Millimeters:    "میلی‌متر",
		Inches:         "اینچ",
		LargeDiameter:  "قطر بزرگ D",
		SmallDiameter:  "قطر کوچک d",
		Length:         "طول مخروط l",
		Angle:          "زاویه مخروط α",
		RealDiameter:   "قطر واقعی D",
		KnownValues:    "مقادیر معلوم",
		ResultAngle:    "زاویه مخروط α",
		ResultTaper:    "ضریب مخروطی بودن k",
		ResultError:    "خطای ساخت",
		SupportAngle:   "زاویه ساپورت",
		CuttingSpeed:   "سرعت برش",
		FeedRate:       "پیشروی",
		History:        "تاریخچه محاسبات",
		HistoryEmpty:   "هنوز محاسبه‌ای انجام نشده است",
		ClearHistory:   "پاک‌کردن تاریخچه",
		ErrInvalid:     "مقادیر نادرست هستند. D باید > d و l > ۰ باشد.",
		ErrDegenerate:  "زاویه باید بین ۰ و ۱۸۰ درجه باشد.",
		ErrMissing:     "مقادیر لازم برای این حالت وارد نشده است.",
		ErrUnspecified: "محاسبه انجام نشد.",
	},
}

var (
	supported = []language.Tag{language.English, language.Persian}
	matcher   = language.NewMatcher(supported)
	messages  = buildCatalog()
)

func buildCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, table := range translations {
		for key, msg := range table {
			if err := b.SetString(tag, string(key), msg); err != nil {
				panic(err)
			}
		}
	}
	return b
}

// Localizer renders labels, errors and numbers for one language.
type Localizer struct {
	tag     language.Tag
	printer *message.Printer
}

// Lookup returns the Localizer that best matches tag (for example "fa",
// "fa-IR", "en-US"). Unknown or malformed tags fall back to English.
func Lookup(tag string) *Localizer {
	_, index := language.MatchStrings(matcher, tag)
	base := supported[index]
	return &Localizer{
		tag:     base,
		printer: message.NewPrinter(base, message.Catalog(messages)),
	}
}

// Supported reports whether tag matches one of the bundled languages.
func Supported(tag string) bool {
	parsed, err := language.Parse(tag)
	if err != nil {
		return false
	}
	_, _, confidence := matcher.Match(parsed)
	return confidence != language.No
}

// Languages returns the bundled language tags.
func Languages() []string {
	out := make([]string, 0, len(supported))
	for _, tag := range supported {
		out = append(out, tag.String())
	}
	return out
}

// Tag returns the resolved language tag.
func (l *Localizer) Tag() string {
	return l.tag.String()
}

// Label returns the translation of key.
func (l *Localizer) Label(key Key) string {
	return l.printer.Sprintf(string(key))
}

// Labels returns every label for the language, keyed by Key.
func (l *Localizer) Labels() map[string]string {
	out := make(map[string]string, len(translations[language.English]))
	for key := range translations[language.English] {
		out[string(key)] = l.Label(key)
	}
	return out
}

// Error returns the user-facing message for a solver error.
func (l *Localizer) Error(err error) string {
	switch cone.KindOf(err) {
	case cone.InvalidDimensions:
		return l.Label(ErrInvalid)
	case cone.DegenerateAngle:
		return l.Label(ErrDegenerate)
	case cone.MissingInputs:
		return l.Label(ErrMissing)
	default:
		return l.Label(ErrUnspecified)
	}
}

// Number formats v with precision decimals using the language's digits and
// separators.
func (l *Localizer) Number(v float64, precision int) string {
	if precision < 0 {
		precision = 0
	}
	return l.printer.Sprintf(fmt.Sprintf("%%.%df", precision), v)
}
