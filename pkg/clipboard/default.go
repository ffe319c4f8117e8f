// Package clipboard provides typed helpers over the system clipboard: copy text,
// URIs and intent payloads, read the current entry back, clear it, and listen
// for changes.
//
// The package-level functions use a lazily created Manager bound to the OS
// clipboard. Use SetDefault to swap it, for example for a MemoryBackend in
// headless environments.
package clipboard

import (
	"net/url"
	"sync"
)

var (
	defaultMu      sync.Mutex
	defaultManager *Manager
)

// Default returns the process-wide manager, creating it on first use.
func Default() *Manager {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultManager == nil {
		defaultManager = NewManager(NewSystemBackend())
	}
	return defaultManager
}

// SetDefault replaces the process-wide manager. The previous one is closed.
func SetDefault(m *Manager) {
	defaultMu.Lock()
	prev := defaultManager
	defaultManager = m
	defaultMu.Unlock()

	if prev != nil && prev != m {
		prev.Close()
	}
}

// CopyText sets text as the primary clip of the default manager.
func CopyText(text, label string) error { return Default().CopyText(text, label) }

// CopyURI sets u as the primary clip of the default manager.
func CopyURI(u *url.URL, label string) error { return Default().CopyURI(u, label) }

// CopyIntent sets an intent payload as the primary clip of the default manager.
func CopyIntent(intent *Intent, label string) error { return Default().CopyIntent(intent, label) }

// PrimaryClip returns the current entry, or nil when the clipboard is empty.
func PrimaryClip() (*Item, error) { return Default().PrimaryClip() }

// Text returns the current clipboard text; ok is false when the clipboard is empty.
func Text() (string, bool, error) { return Default().Text() }

// Clear empties the clipboard.
func Clear() error { return Default().Clear() }

// OnChanged registers listener with the default manager.
func OnChanged(listener Listener) *Subscription { return Default().OnChanged(listener) }
