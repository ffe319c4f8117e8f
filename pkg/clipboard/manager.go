package clipboard

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

const defaultPollInterval = 500 * time.Millisecond

// Listener is called with the new primary clip whenever the clipboard changes.
type Listener func(*Item)

// Option configures a Manager
type Option func(*Manager)

// WithLogger sets the logger used by the manager
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithPollInterval sets how often the backend is checked for external changes
func WithPollInterval(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithClock sets the clock driving timestamps and polling
func WithClock(clock clockwork.Clock) Option {
	return func(m *Manager) {
		if clock != nil {
			m.clock = clock
		}
	}
}

// Manager gives typed access to the system clipboard.
//
// The OS slot only stores text, so the manager remembers the last item it set.
// While the slot still holds that item's text, reads return the full item with
// its label, URI or intent.
type Manager struct {
	backend  Backend
	logger   *zap.Logger
	clock    clockwork.Clock
	interval time.Duration

	ioMu      sync.Mutex // serializes backend writes with polls
	mu        sync.Mutex
	primary   *Item
	lastText  string
	listeners map[uint64]Listener
	nextID    uint64
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewManager creates a manager over backend
func NewManager(backend Backend, opts ...Option) *Manager {
	m := &Manager{
		backend:   backend,
		logger:    zap.NewNop(),
		clock:     clockwork.NewRealClock(),
		interval:  defaultPollInterval,
		listeners: make(map[uint64]Listener),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CopyText sets text as the primary clip.
func (m *Manager) CopyText(text, label string) error {
	return m.SetPrimaryClip(NewTextItem(text, label))
}

// CopyURI sets u as the primary clip.
func (m *Manager) CopyURI(u *url.URL, label string) error {
	return m.SetPrimaryClip(NewURIItem(u, label))
}

// CopyIntent sets an intent payload as the primary clip.
func (m *Manager) CopyIntent(intent *Intent, label string) error {
	return m.SetPrimaryClip(NewIntentItem(intent, label))
}

// SetPrimaryClip replaces the clipboard's current entry and notifies listeners.
func (m *Manager) SetPrimaryClip(item *Item) error {
	if err := item.validate(); err != nil {
		return err
	}
	stored := item.clone()
	if stored.Created.IsZero() {
		stored.Created = m.clock.Now()
	}
	return m.write(stored, stored.CoerceToText())
}

// write stores text in the OS slot and item as its typed form. ioMu is held
// across the backend write and the state update so a poll never sees the new
// text before lastText does.
func (m *Manager) write(item *Item, text string) error {
	m.ioMu.Lock()
	if err := m.backend.WriteAll(text); err != nil {
		m.ioMu.Unlock()
		return fmt.Errorf("failed to write clipboard: %w", err)
	}
	m.mu.Lock()
	m.primary = item
	m.lastText = text
	listeners := m.snapshotLocked()
	m.mu.Unlock()
	m.ioMu.Unlock()

	if item == nil {
		m.logger.Debug("Clipboard cleared")
	} else {
		m.logger.Debug("Primary clip set",
			zap.String("type", string(item.Type)),
			zap.Int("size", len(text)))
	}

	m.notify(listeners, item)
	return nil
}

// PrimaryClip returns the clipboard's current entry, or nil when it is empty.
func (m *Manager) PrimaryClip() (*Item, error) {
	text, err := m.backend.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read clipboard: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	item := m.resolveLocked(text)
	if item == nil {
		return nil, nil
	}
	return item.clone(), nil
}

// Text returns the clipboard's current entry coerced to text.
// ok is false when the clipboard is empty.
func (m *Manager) Text() (text string, ok bool, err error) {
	item, err := m.PrimaryClip()
	if err != nil || item == nil {
		return "", false, err
	}
	return item.CoerceToText(), true, nil
}

// Clear empties the clipboard. Listeners receive nil, as they do when the
// clipboard is emptied externally.
func (m *Manager) Clear() error {
	return m.write(nil, "")
}

// resolveLocked maps the OS text back to a typed item. Callers hold m.mu.
func (m *Manager) resolveLocked(text string) *Item {
	if text == "" {
		return nil
	}
	if m.primary != nil && m.primary.CoerceToText() == text {
		return m.primary
	}
	return &Item{Type: TypeText, Text: text, Created: m.clock.Now()}
}

// Close stops change polling and drops every listener.
func (m *Manager) Close() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.listeners = make(map[uint64]Listener)
	m.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}
