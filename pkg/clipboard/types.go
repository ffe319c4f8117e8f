package clipboard

import (
	"errors"
	"net/url"
	"time"
)

// ContentType represents the kind of payload held by a clip item
type ContentType string

const (
	TypeText   ContentType = "text"
	TypeURI    ContentType = "uri"
	TypeIntent ContentType = "intent"
)

// ErrEmptyPayload is returned when a URI or intent clip carries nothing to copy.
var ErrEmptyPayload = errors.New("clipboard: empty payload")

// Item is the single current entry of the system clipboard
type Item struct {
	Type    ContentType `json:"type"`
	Label   string      `json:"label,omitempty"`
	Text    string      `json:"text,omitempty"`
	URI     *url.URL    `json:"-"`
	Intent  *Intent     `json:"intent,omitempty"`
	Created time.Time   `json:"created"`
}

// NewTextItem returns a plain text clip.
func NewTextItem(text, label string) *Item {
	return &Item{Type: TypeText, Label: label, Text: text}
}

// NewURIItem returns a clip holding u.
func NewURIItem(u *url.URL, label string) *Item {
	return &Item{Type: TypeURI, Label: label, URI: u}
}

// NewIntentItem returns a clip holding an application intent.
func NewIntentItem(intent *Intent, label string) *Item {
	return &Item{Type: TypeIntent, Label: label, Intent: intent}
}

// CoerceToText returns the textual representation written to the OS clipboard.
func (i *Item) CoerceToText() string {
	if i == nil {
		return ""
	}
	switch i.Type {
	case TypeURI:
		if i.URI == nil {
			return ""
		}
		return i.URI.String()
	case TypeIntent:
		if i.Intent == nil {
			return ""
		}
		return i.Intent.URI()
	default:
		return i.Text
	}
}

// Equal compares the payloads of two items, ignoring creation time
func (i *Item) Equal(other *Item) bool {
	if i == nil || other == nil {
		return i == other
	}
	return i.Type == other.Type && i.Label == other.Label && i.CoerceToText() == other.CoerceToText()
}

func (i *Item) validate() error {
	if i == nil {
		return ErrEmptyPayload
	}
	switch i.Type {
	case TypeURI:
		if i.URI == nil {
			return ErrEmptyPayload
		}
	case TypeIntent:
		if i.Intent == nil || i.Intent.isEmpty() {
			return ErrEmptyPayload
		}
	}
	return nil
}

func (i *Item) clone() *Item {
	c := *i
	if i.URI != nil {
		u := *i.URI
		c.URI = &u
	}
	if i.Intent != nil {
		c.Intent = i.Intent.Clone()
	}
	return &c
}
