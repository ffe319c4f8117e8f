package format

import "github.com/berrythewa/longan/pkg/clipboard"

// Options controls formatting behavior
type Options struct {
	UseColors    bool
	UseIcons     bool
	MaxWidth     int  // Max content width (0 = no limit)
	MaxLines     int  // Max content lines (0 = no limit)
	ShowMetadata bool // Show label, timestamps and occurrence counts
	Compact      bool // Use compact single-line format
}

// DefaultOptions returns sensible defaults
func DefaultOptions() Options {
	return Options{
		UseColors:    true,
		UseIcons:     true,
		MaxWidth:     80,
		MaxLines:     10,
		ShowMetadata: true,
	}
}

// PlainOptions returns defaults without colors or icons, for pipes and tests
func PlainOptions() Options {
	opts := DefaultOptions()
	opts.UseColors = false
	opts.UseIcons = false
	return opts
}

// CompactOptions returns options for compact single-line display
func CompactOptions() Options {
	opts := DefaultOptions()
	opts.Compact = true
	opts.ShowMetadata = false
	opts.MaxLines = 1
	return opts
}

// ContentIcons maps content types to Unicode icons
var ContentIcons = map[clipboard.ContentType]string{
	clipboard.TypeText:   "📝",
	clipboard.TypeURI:    "🔗",
	clipboard.TypeIntent: "🚀",
}

// ContentColors maps content types to colors
var ContentColors = map[clipboard.ContentType]string{
	clipboard.TypeText:   Cyan,
	clipboard.TypeURI:    Blue,
	clipboard.TypeIntent: Magenta,
}
