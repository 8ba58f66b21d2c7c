// Package constants provides shared constants for the cone-expert application.
package constants

import "time"

// Unit constants
const (
	// MillimetersPerInch is the scale factor from inches to the canonical unit.
	MillimetersPerInch = 25.4

	// CanonicalUnit is the unit every calculation is carried out in.
	CanonicalUnit = "mm"
)

// Geometry constants
const (
	// DegenerateTangent is the smallest tan(α/2) the solver accepts. Anything
	// below it (or above its reciprocal) is reported as a degenerate angle.
	DegenerateTangent = 1e-12

	// MaxIncludedAngle is the exclusive upper bound of a cone's included angle in degrees.
	MaxIncludedAngle = 180.0

	// DefaultRingSteps is the number of vertices per circle in a 3D ring mesh.
	DefaultRingSteps = 50

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// MillimetersPerMeter converts cutting speeds from mm/min to m/min.
	MillimetersPerMeter = 1000.0
)

// Display precision constants
const (
	// LengthPrecision is the number of decimals shown for lengths and angles.
	LengthPrecision = 2

	// RatioPrecision is the number of decimals shown for taper ratios.
	RatioPrecision = 3

	// RelativeTolerance is the relative tolerance for floating point comparisons.
	RelativeTolerance = 1e-6
)

// History constants
const (
	// DefaultHistoryDisplayLimit is how many history entries are shown by default.
	DefaultHistoryDisplayLimit = 5
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix is the prefix for environment variable overrides.
	EnvPrefix = "CONE"

	// DefaultLanguage is the language tag used when none is configured.
	DefaultLanguage = "en"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (64 KB)
	DefaultMaxBodySizeBytes int64 = 64 * 1024

	// DefaultSessionTTL is how long an idle session's history is retained.
	DefaultSessionTTL = 30 * time.Minute

	// SessionCookieName is the cookie carrying the session identifier.
	SessionCookieName = "cone_session"
)
