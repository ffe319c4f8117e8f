package format

// ANSI color codes
const (
	Reset     = "\033[0m"
	Bold      = "\033[1m"
	Dim       = "\033[2m"
	Underline = "\033[4m"

	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	Gray    = "\033[37m"

	BrightBlue = "\033[94m"
)

// ColorizeIf applies color only if useColors is true
func ColorizeIf(text, color string, useColors bool) string {
	if !useColors || text == "" {
		return text
	}
	return color + text + Reset
}

// DimIf applies dim only if useColors is true
func DimIf(text string, useColors bool) string {
	return ColorizeIf(text, Dim, useColors)
}
