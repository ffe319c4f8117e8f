package clipboard

import (
	"net/url"
	"sort"
	"strings"
)

// Intent is an application-intent payload: an action to perform on optional data.
type Intent struct {
	Action     string            `json:"action,omitempty"`
	Data       string            `json:"data,omitempty"`
	Type       string            `json:"type,omitempty"`
	Package    string            `json:"package,omitempty"`
	Categories []string          `json:"categories,omitempty"`
	Extras     map[string]string `json:"extras,omitempty"`
}

// URI renders the intent in the intent: scheme, e.g.
//
//	intent:https://example.com#Intent;action=view;S.ref=home;end
//
// Extras are emitted in key order so equal intents render identically.
func (in *Intent) URI() string {
	var b strings.Builder
	b.WriteString("intent:")
	b.WriteString(in.Data)
	b.WriteString("#Intent;")
	writeIntentField(&b, "action", in.Action)
	for _, c := range in.Categories {
		writeIntentField(&b, "category", c)
	}
	writeIntentField(&b, "type", in.Type)
	writeIntentField(&b, "package", in.Package)

	keys := make([]string, 0, len(in.Extras))
	for k := range in.Extras {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString("S.")
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(in.Extras[k]))
		b.WriteByte(';')
	}
	b.WriteString("end")
	return b.String()
}

// Clone returns a deep copy of the intent
func (in *Intent) Clone() *Intent {
	if in == nil {
		return nil
	}
	c := *in
	if in.Categories != nil {
		c.Categories = append([]string(nil), in.Categories...)
	}
	if in.Extras != nil {
		c.Extras = make(map[string]string, len(in.Extras))
		for k, v := range in.Extras {
			c.Extras[k] = v
		}
	}
	return &c
}

func (in *Intent) isEmpty() bool {
	return in.Action == "" && in.Data == ""
}

func writeIntentField(b *strings.Builder, key, value string) {
	if value == "" {
		return
	}
	b.WriteString(key)
	b.WriteByte('=')
	b.WriteString(url.QueryEscape(value))
	b.WriteByte(';')
}
