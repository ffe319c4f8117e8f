package clipboard

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// useMemoryDefault installs a memory-backed default manager for the test.
func useMemoryDefault(t *testing.T) *MemoryBackend {
	t.Helper()
	backend := NewMemoryBackend()
	SetDefault(NewManager(backend, WithPollInterval(5*time.Millisecond)))
	t.Cleanup(func() { SetDefault(nil) })
	return backend
}

func TestDefault_CopyAndRead(t *testing.T) {
	backend := useMemoryDefault(t)

	require.NoError(t, CopyText("hello", "greeting"))

	raw, err := backend.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "hello", raw)

	text, ok, err := Text()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "hello", text)

	item, err := PrimaryClip()
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "greeting", item.Label)
}

func TestDefault_CopyURIAndIntent(t *testing.T) {
	useMemoryDefault(t)

	u, err := url.Parse("https://example.com/a")
	require.NoError(t, err)
	require.NoError(t, CopyURI(u, ""))
	item, err := PrimaryClip()
	require.NoError(t, err)
	assert.Equal(t, TypeURI, item.Type)

	intent := &Intent{Action: "view", Data: "geo:0,0"}
	require.NoError(t, CopyIntent(intent, ""))
	item, err = PrimaryClip()
	require.NoError(t, err)
	assert.Equal(t, TypeIntent, item.Type)
	assert.Equal(t, "geo:0,0", item.Intent.Data)
}

func TestDefault_ClearAndListen(t *testing.T) {
	useMemoryDefault(t)
	require.NoError(t, CopyText("secret", ""))

	changes := make(chan *Item, 4)
	sub := OnChanged(func(item *Item) { changes <- item })
	defer sub.Cancel()

	require.NoError(t, CopyText("next", ""))
	assert.Equal(t, "next", receive(t, changes).Text)

	require.NoError(t, Clear())
	assert.Nil(t, receive(t, changes))

	_, ok, err := Text()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSetDefault_ClosesPrevious(t *testing.T) {
	first := NewManager(NewMemoryBackend(), WithPollInterval(5*time.Millisecond))
	SetDefault(first)
	t.Cleanup(func() { SetDefault(nil) })
	first.OnChanged(func(*Item) {})

	second := NewManager(NewMemoryBackend())
	SetDefault(second)

	assert.Same(t, second, Default())
	first.mu.Lock()
	defer first.mu.Unlock()
	assert.Nil(t, first.cancel)
	assert.Empty(t, first.listeners)
}
