package clipboard

import (
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingBackend struct {
	err error
}

func (b *failingBackend) ReadAll() (string, error) { return "", b.err }
func (b *failingBackend) WriteAll(string) error    { return b.err }

func newTestManager(t *testing.T) (*Manager, *MemoryBackend) {
	t.Helper()
	backend := NewMemoryBackend()
	m := NewManager(backend, WithPollInterval(5*time.Millisecond))
	t.Cleanup(m.Close)
	return m, backend
}

func TestManager_CopyTextRoundTrip(t *testing.T) {
	m, backend := newTestManager(t)

	require.NoError(t, m.CopyText("hello world", "greeting"))

	raw, err := backend.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "hello world", raw)

	item, err := m.PrimaryClip()
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, TypeText, item.Type)
	assert.Equal(t, "greeting", item.Label)
	assert.Equal(t, "hello world", item.Text)
	assert.False(t, item.Created.IsZero())

	text, ok, err := m.Text()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "hello world", text)
}

func TestManager_CopyURIRoundTrip(t *testing.T) {
	m, _ := newTestManager(t)
	u, err := url.Parse("content://media/external/images/42")
	require.NoError(t, err)

	require.NoError(t, m.CopyURI(u, "photo"))

	item, err := m.PrimaryClip()
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, TypeURI, item.Type)
	require.NotNil(t, item.URI)
	assert.Equal(t, u.String(), item.URI.String())

	text, ok, err := m.Text()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "content://media/external/images/42", text)
}

func TestManager_CopyIntentRoundTrip(t *testing.T) {
	m, _ := newTestManager(t)
	intent := &Intent{
		Action: "view",
		Data:   "https://example.com",
		Extras: map[string]string{"ref": "home"},
	}

	require.NoError(t, m.CopyIntent(intent, "link"))

	// mutating the caller's copy must not leak into the stored clip
	intent.Extras["ref"] = "changed"

	item, err := m.PrimaryClip()
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, TypeIntent, item.Type)
	require.NotNil(t, item.Intent)
	assert.Equal(t, "view", item.Intent.Action)
	assert.Equal(t, "home", item.Intent.Extras["ref"])
}

func TestManager_Clear(t *testing.T) {
	m, _ := newTestManager(t)
	require.NoError(t, m.CopyText("secret", ""))

	require.NoError(t, m.Clear())

	item, err := m.PrimaryClip()
	require.NoError(t, err)
	assert.Nil(t, item)

	text, ok, err := m.Text()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, text)
}

func TestManager_EmptyClipboardIsAbsent(t *testing.T) {
	m, _ := newTestManager(t)

	item, err := m.PrimaryClip()
	require.NoError(t, err)
	assert.Nil(t, item)
}

func TestManager_ExternalChangeReadsAsText(t *testing.T) {
	m, backend := newTestManager(t)
	u, _ := url.Parse("https://example.com/a")
	require.NoError(t, m.CopyURI(u, "link"))

	require.NoError(t, backend.WriteAll("typed elsewhere"))

	item, err := m.PrimaryClip()
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, TypeText, item.Type)
	assert.Equal(t, "typed elsewhere", item.Text)
	assert.Empty(t, item.Label)
}

func TestManager_RejectsEmptyPayloads(t *testing.T) {
	m, _ := newTestManager(t)

	assert.ErrorIs(t, m.CopyURI(nil, ""), ErrEmptyPayload)
	assert.ErrorIs(t, m.CopyIntent(&Intent{Package: "only.package"}, ""), ErrEmptyPayload)
	assert.ErrorIs(t, m.SetPrimaryClip(nil), ErrEmptyPayload)
}

func TestManager_BackendErrorsAreWrapped(t *testing.T) {
	backendErr := errors.New("display unavailable")
	m := NewManager(&failingBackend{err: backendErr})

	err := m.CopyText("x", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, backendErr)

	_, err = m.PrimaryClip()
	assert.ErrorIs(t, err, backendErr)

	_, ok, err := m.Text()
	assert.False(t, ok)
	assert.ErrorIs(t, err, backendErr)
}

func TestManager_UsesClockForTimestamps(t *testing.T) {
	at := time.Date(2021, time.January, 1, 9, 30, 0, 0, time.UTC)
	m := NewManager(NewMemoryBackend(), WithClock(clockwork.NewFakeClockAt(at)))

	require.NoError(t, m.CopyText("stamped", ""))

	item, err := m.PrimaryClip()
	require.NoError(t, err)
	assert.True(t, item.Created.Equal(at))
}

func TestItem_Equal(t *testing.T) {
	a := NewTextItem("x", "l")
	b := NewTextItem("x", "l")
	b.Created = time.Now()

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(NewTextItem("y", "l")))
	assert.False(t, a.Equal(nil))
	assert.True(t, (*Item)(nil).Equal(nil))
}
