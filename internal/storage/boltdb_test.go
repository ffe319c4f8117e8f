package storage

import (
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/berrythewa/longan/pkg/clipboard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *BoltStorage {
	t.Helper()
	storage, err := NewBoltStorage(StorageConfig{
		DBPath:         filepath.Join(t.TempDir(), "nested", "history.db"),
		DeviceID:       "device-1",
		KeepItems:      3,
		MaxOccurrences: 2,
	})
	require.NoError(t, err)
	t.Cleanup(func() { storage.Close() })
	return storage
}

func textAt(text string, at time.Time) *clipboard.Item {
	item := clipboard.NewTextItem(text, "")
	item.Created = at
	return item
}

func TestBoltStorage(t *testing.T) {
	storage := newTestStorage(t)
	start := time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC)

	t.Run("SaveAndLatest", func(t *testing.T) {
		rec, err := storage.Save(textAt("first", start))
		require.NoError(t, err)
		assert.NotEmpty(t, rec.ID)
		assert.Equal(t, "device-1", rec.DeviceID)
		assert.Equal(t, HashItem(textAt("first", start)), rec.Hash)

		latest, err := storage.Latest()
		require.NoError(t, err)
		require.NotNil(t, latest)
		assert.Equal(t, "first", latest.Text)
		assert.True(t, start.Equal(latest.Created))
	})

	t.Run("DuplicateAddsOccurrence", func(t *testing.T) {
		_, err := storage.Save(textAt("second", start.Add(time.Minute)))
		require.NoError(t, err)
		rec, err := storage.Save(textAt("first", start.Add(2*time.Minute)))
		require.NoError(t, err)

		require.Len(t, rec.Occurrences, 2)
		assert.True(t, rec.Occurrences[0].After(rec.Occurrences[1]), "occurrences are newest first")

		n, err := storage.Count()
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		latest, err := storage.Latest()
		require.NoError(t, err)
		assert.Equal(t, "first", latest.Text)
	})

	t.Run("OccurrencesAreCapped", func(t *testing.T) {
		rec, err := storage.Save(textAt("first", start.Add(3*time.Minute)))
		require.NoError(t, err)
		assert.Len(t, rec.Occurrences, 2)
		assert.True(t, start.Add(3*time.Minute).Equal(rec.Created))
	})

	t.Run("ListNewestFirst", func(t *testing.T) {
		records, err := storage.List(0)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "first", records[0].Text)
		assert.Equal(t, "second", records[1].Text)

		records, err = storage.List(1)
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})
}

func TestBoltStorage_EmptyHistory(t *testing.T) {
	storage := newTestStorage(t)

	latest, err := storage.Latest()
	require.NoError(t, err)
	assert.Nil(t, latest)

	_, err = storage.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = storage.Save(nil)
	assert.Error(t, err)
}

func TestBoltStorage_Flush(t *testing.T) {
	storage := newTestStorage(t)
	start := time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC)

	for i, text := range []string{"a", "b", "c", "d", "e"} {
		_, err := storage.Save(textAt(text, start.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
	}

	removed, err := storage.Flush(2)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	records, err := storage.List(0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "e", records[0].Text)
	assert.Equal(t, "d", records[1].Text)

	removed, err = storage.Flush(-1)
	require.NoError(t, err)
	assert.Zero(t, removed, "default keep of 3 leaves two records alone")
}

func TestBoltStorage_CompressesLargeText(t *testing.T) {
	storage := newTestStorage(t)
	large := strings.Repeat("longan ", 500)

	rec, err := storage.Save(clipboard.NewTextItem(large, "big"))
	require.NoError(t, err)
	assert.Equal(t, large, rec.Text)
	assert.False(t, rec.Compressed)

	stored, err := storage.Get(rec.Hash)
	require.NoError(t, err)
	assert.Equal(t, large, stored.Text)
}

func TestRecord_ItemRebuildsTypedClips(t *testing.T) {
	storage := newTestStorage(t)

	u, err := url.Parse("https://example.com/a?b=c")
	require.NoError(t, err)
	uriRec, err := storage.Save(clipboard.NewURIItem(u, "link"))
	require.NoError(t, err)

	item := uriRec.Item()
	assert.Equal(t, clipboard.TypeURI, item.Type)
	assert.Equal(t, u.String(), item.URI.String())
	assert.Equal(t, "link", item.Label)

	intent := &clipboard.Intent{Action: "view", Data: "https://example.com", Extras: map[string]string{"ref": "home"}}
	intentRec, err := storage.Save(clipboard.NewIntentItem(intent, ""))
	require.NoError(t, err)

	rebuilt := intentRec.Item()
	assert.Equal(t, clipboard.TypeIntent, rebuilt.Type)
	assert.Equal(t, intent.URI(), rebuilt.CoerceToText())
}

func TestCompressText(t *testing.T) {
	short, compressed, err := compressText("tiny")
	require.NoError(t, err)
	assert.False(t, compressed)
	assert.Equal(t, "tiny", short)

	large := strings.Repeat("x", 4096)
	encoded, compressed, err := compressText(large)
	require.NoError(t, err)
	assert.True(t, compressed)
	assert.Less(t, len(encoded), len(large))

	decoded, err := decompressText(encoded)
	require.NoError(t, err)
	assert.Equal(t, large, decoded)
}
