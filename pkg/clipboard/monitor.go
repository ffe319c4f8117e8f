package clipboard

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Subscription is a registered change listener.
type Subscription struct {
	manager *Manager
	id      uint64
	once    sync.Once
}

// Cancel unregisters the listener. It is safe to call more than once.
func (s *Subscription) Cancel() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		s.manager.removeListener(s.id)
	})
}

// OnChanged registers listener to be called whenever the primary clip changes,
// either through this manager or externally. External changes are found by
// polling; the item passed is nil when the clipboard was emptied.
func (m *Manager) OnChanged(listener Listener) *Subscription {
	m.mu.Lock()
	m.nextID++
	id := m.nextID
	m.listeners[id] = listener

	var ctx context.Context
	start := m.cancel == nil
	if start {
		ctx, m.cancel = context.WithCancel(context.Background())
		m.done = make(chan struct{})
	}
	done := m.done
	m.mu.Unlock()

	if start {
		m.startWatching(ctx, done)
	}
	return &Subscription{manager: m, id: id}
}

// RemoveListener unregisters a subscription returned by OnChanged.
func (m *Manager) RemoveListener(sub *Subscription) {
	sub.Cancel()
}

func (m *Manager) removeListener(id uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.listeners, id)
	if len(m.listeners) == 0 && m.cancel != nil {
		m.cancel()
		m.cancel, m.done = nil, nil
		m.logger.Debug("Stopped clipboard polling")
	}
}

func (m *Manager) startWatching(ctx context.Context, done chan struct{}) {
	text, err := m.backend.ReadAll()
	if err != nil {
		m.logger.Warn("Failed to read initial clipboard state", zap.Error(err))
	} else {
		m.mu.Lock()
		m.lastText = text
		m.mu.Unlock()
	}

	m.logger.Debug("Started clipboard polling", zap.Duration("interval", m.interval))
	go m.watch(ctx, done)
}

func (m *Manager) watch(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := m.clock.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			m.poll()
		}
	}
}

func (m *Manager) poll() {
	m.ioMu.Lock()
	text, err := m.backend.ReadAll()
	if err != nil {
		m.ioMu.Unlock()
		m.logger.Warn("Failed to read clipboard", zap.Error(err))
		return
	}

	m.mu.Lock()
	if text == m.lastText {
		m.mu.Unlock()
		m.ioMu.Unlock()
		return
	}
	m.lastText = text
	item := m.resolveLocked(text)
	listeners := m.snapshotLocked()
	m.mu.Unlock()
	m.ioMu.Unlock()

	m.logger.Debug("External clipboard change detected", zap.Int("size", len(text)))
	m.notify(listeners, item)
}

func (m *Manager) snapshotLocked() []Listener {
	listeners := make([]Listener, 0, len(m.listeners))
	for _, l := range m.listeners {
		listeners = append(listeners, l)
	}
	return listeners
}

func (m *Manager) notify(listeners []Listener, item *Item) {
	for _, l := range listeners {
		if item == nil {
			l(nil)
			continue
		}
		l(item.clone())
	}
}
