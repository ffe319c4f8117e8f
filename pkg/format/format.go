// Package format renders clipboard items and history entries for terminals.
package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/berrythewa/longan/pkg/clipboard"
)

// Entry is a clipboard item together with its history metadata
type Entry struct {
	Item        *clipboard.Item
	Occurrences int
}

// Formatter renders entries according to its options
type Formatter struct {
	options Options
	now     func() time.Time
}

// New creates a new formatter with the given options
func New(opts Options) *Formatter {
	return &Formatter{options: opts, now: time.Now}
}

// NewDefault creates a new formatter with default options
func NewDefault() *Formatter {
	return New(DefaultOptions())
}

// FormatItem formats the current clipboard item
func (f *Formatter) FormatItem(item *clipboard.Item) string {
	return f.FormatEntry(Entry{Item: item})
}

// FormatEntry formats a single history entry
func (f *Formatter) FormatEntry(e Entry) string {
	if e.Item == nil {
		return ColorizeIf("Clipboard is empty", Gray, f.options.UseColors)
	}

	header := f.formatHeader(e.Item)
	if f.options.Compact {
		preview := TruncateText(SingleLine(e.Item.CoerceToText()), 50)
		return header + " " + DimIf(preview, f.options.UseColors)
	}

	parts := []string{header}
	if f.options.ShowMetadata {
		if meta := f.formatMetadata(e); meta != "" {
			parts = append(parts, meta)
		}
	}
	if body := f.formatBody(e.Item); body != "" {
		parts = append(parts, IndentText(body, "  "))
	}
	return strings.Join(parts, "\n")
}

// FormatEntryList formats multiple entries, newest first as given
func (f *Formatter) FormatEntryList(entries []Entry) string {
	if len(entries) == 0 {
		return ColorizeIf("No clipboard history", Gray, f.options.UseColors)
	}

	title := fmt.Sprintf("Clipboard History (%d entries)", len(entries))
	parts := []string{ColorizeIf(title, BrightBlue, f.options.UseColors), ""}

	for i, e := range entries {
		index := DimIf(fmt.Sprintf("[%d]", i+1), f.options.UseColors)
		if f.options.Compact {
			parts = append(parts, index+" "+f.FormatEntry(e))
			continue
		}
		parts = append(parts, index, f.FormatEntry(e))
		if i < len(entries)-1 {
			parts = append(parts, DimIf(strings.Repeat("─", 40), f.options.UseColors))
		}
	}
	return strings.Join(parts, "\n")
}

func (f *Formatter) formatHeader(item *clipboard.Item) string {
	var parts []string
	if f.options.UseIcons {
		if icon, ok := ContentIcons[item.Type]; ok {
			parts = append(parts, icon)
		}
	}
	parts = append(parts, ColorizeIf(string(item.Type), ContentColors[item.Type], f.options.UseColors))
	if item.Label != "" {
		parts = append(parts, fmt.Sprintf("%q", item.Label))
	}
	return strings.Join(parts, " ")
}

func (f *Formatter) formatMetadata(e Entry) string {
	var parts []string
	if !e.Item.Created.IsZero() {
		parts = append(parts, "Copied: "+FormatRelativeTime(e.Item.Created, f.now()))
	}
	parts = append(parts, "Size: "+FormatSize(int64(len(e.Item.CoerceToText()))))
	if e.Occurrences > 1 {
		parts = append(parts, fmt.Sprintf("Occurrences: %d", e.Occurrences))
	}
	return DimIf(strings.Join(parts, " • "), f.options.UseColors)
}

func (f *Formatter) formatBody(item *clipboard.Item) string {
	text := item.CoerceToText()
	switch item.Type {
	case clipboard.TypeURI:
		return ColorizeIf(TruncateText(text, f.options.MaxWidth), Underline+Blue, f.options.UseColors)
	case clipboard.TypeIntent:
		lines := []string{TruncateText(text, f.options.MaxWidth)}
		if in := item.Intent; in != nil {
			if in.Action != "" {
				lines = append(lines, "action: "+in.Action)
			}
			if in.Data != "" {
				lines = append(lines, "data: "+in.Data)
			}
		}
		return strings.Join(lines, "\n")
	default:
		text = TruncateLines(text, f.options.MaxLines)
		if f.options.MaxWidth > 0 {
			lines := strings.Split(text, "\n")
			for i, line := range lines {
				lines[i] = TruncateText(line, f.options.MaxWidth)
			}
			text = strings.Join(lines, "\n")
		}
		return text
	}
}
