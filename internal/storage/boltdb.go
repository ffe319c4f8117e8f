package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/berrythewa/longan/pkg/clipboard"
	"github.com/google/uuid"
	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

const (
	clipsBucket           = "clips"
	defaultKeepItems      = 50
	defaultMaxOccurrences = 20
)

// ErrNotFound is returned when no record has the requested hash
var ErrNotFound = errors.New("storage: record not found")

// Record is one distinct clip in the history. Copying the same clip again
// adds an occurrence instead of a new record.
type Record struct {
	ID          string                `json:"id"`
	Hash        string                `json:"hash"`
	DeviceID    string                `json:"device_id"`
	Type        clipboard.ContentType `json:"type"`
	Label       string                `json:"label,omitempty"`
	Text        string                `json:"text"`
	Intent      *clipboard.Intent     `json:"intent,omitempty"`
	Compressed  bool                  `json:"compressed,omitempty"`
	Created     time.Time             `json:"created"`     // most recent occurrence
	Occurrences []time.Time           `json:"occurrences"` // newest first
}

// Item rebuilds the clipboard item the record was saved from.
func (r *Record) Item() *clipboard.Item {
	item := &clipboard.Item{Type: r.Type, Label: r.Label, Created: r.Created}
	switch r.Type {
	case clipboard.TypeURI:
		if u, err := url.Parse(r.Text); err == nil {
			item.URI = u
			return item
		}
		item.Type = clipboard.TypeText
		item.Text = r.Text
	case clipboard.TypeIntent:
		if r.Intent != nil {
			item.Intent = r.Intent.Clone()
			return item
		}
		item.Type = clipboard.TypeText
		item.Text = r.Text
	default:
		item.Text = r.Text
	}
	return item
}

// StorageConfig holds configuration for BoltStorage initialization
type StorageConfig struct {
	DBPath         string
	DeviceID       string
	Logger         *zap.Logger
	KeepItems      int
	MaxOccurrences int
}

// BoltStorage keeps the clip history in a bbolt database keyed by content hash
type BoltStorage struct {
	db             *bbolt.DB
	logger         *zap.Logger
	deviceID       string
	keepItems      int
	maxOccurrences int
}

// NewBoltStorage opens or creates the history database
func NewBoltStorage(config StorageConfig) (*BoltStorage, error) {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	keepItems := config.KeepItems
	if keepItems <= 0 {
		keepItems = defaultKeepItems
	}
	maxOcc := config.MaxOccurrences
	if maxOcc <= 0 {
		maxOcc = defaultMaxOccurrences
	}

	if err := os.MkdirAll(filepath.Dir(config.DBPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := bbolt.Open(config.DBPath, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(clipsBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	logger.Debug("BoltStorage initialized",
		zap.String("db_path", config.DBPath),
		zap.Int("keep_items", keepItems))

	return &BoltStorage{
		db:             db,
		logger:         logger,
		deviceID:       config.DeviceID,
		keepItems:      keepItems,
		maxOccurrences: maxOcc,
	}, nil
}

// HashItem returns the history key of item: the SHA-256 of its type and text.
func HashItem(item *clipboard.Item) string {
	h := sha256.New()
	h.Write([]byte(item.Type))
	h.Write([]byte{0})
	h.Write([]byte(item.CoerceToText()))
	return hex.EncodeToString(h.Sum(nil))
}

// Save records item. An item already in the history gets a new occurrence at
// its creation time, or now when it has none.
func (s *BoltStorage) Save(item *clipboard.Item) (*Record, error) {
	if item == nil {
		return nil, fmt.Errorf("cannot save an empty clip")
	}
	seen := item.Created
	if seen.IsZero() {
		seen = time.Now()
	}
	hash := HashItem(item)

	var saved *Record
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(clipsBucket))

		if v := b.Get([]byte(hash)); v != nil {
			var existing Record
			if err := json.Unmarshal(v, &existing); err == nil {
				existing.Occurrences = append(existing.Occurrences, seen)
				sort.Slice(existing.Occurrences, func(i, j int) bool {
					return existing.Occurrences[i].After(existing.Occurrences[j])
				})
				if len(existing.Occurrences) > s.maxOccurrences {
					existing.Occurrences = existing.Occurrences[:s.maxOccurrences]
				}
				existing.Created = existing.Occurrences[0]
				if item.Label != "" {
					existing.Label = item.Label
				}

				s.logger.Debug("Updated clip occurrences",
					zap.String("hash", hash),
					zap.Int("occurrence_count", len(existing.Occurrences)))

				saved = &existing
				return s.put(b, &existing)
			}
			s.logger.Warn("Replacing unreadable history record", zap.String("hash", hash))
		}

		text, compressed, err := compressText(item.CoerceToText())
		if err != nil {
			return fmt.Errorf("failed to compress clip: %w", err)
		}
		rec := &Record{
			ID:          uuid.NewString(),
			Hash:        hash,
			DeviceID:    s.deviceID,
			Type:        item.Type,
			Label:       item.Label,
			Text:        text,
			Compressed:  compressed,
			Created:     seen,
			Occurrences: []time.Time{seen},
		}
		if item.Type == clipboard.TypeIntent && item.Intent != nil {
			rec.Intent = item.Intent.Clone()
		}

		s.logger.Debug("New clip recorded",
			zap.String("hash", hash),
			zap.String("type", string(rec.Type)),
			zap.Bool("compressed", compressed))

		saved = rec
		return s.put(b, rec)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save clip: %w", err)
	}

	if saved.Compressed {
		return s.inflate(saved), nil
	}
	return saved, nil
}

func (s *BoltStorage) put(b *bbolt.Bucket, rec *Record) error {
	encoded, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	return b.Put([]byte(rec.Hash), encoded)
}

// Get returns the record stored under hash
func (s *BoltStorage) Get(hash string) (*Record, error) {
	var rec *Record
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket([]byte(clipsBucket)).Get([]byte(hash))
		if v == nil {
			return ErrNotFound
		}
		rec = new(Record)
		return json.Unmarshal(v, rec)
	})
	if err != nil {
		return nil, err
	}
	return s.inflate(rec), nil
}

// Latest returns the most recently seen record, or nil when the history is empty
func (s *BoltStorage) Latest() (*Record, error) {
	records, err := s.List(1)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

// List returns up to limit records, most recently seen first. A limit of zero
// or less returns everything.
func (s *BoltStorage) List(limit int) ([]*Record, error) {
	records, err := s.all()
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	for i, rec := range records {
		records[i] = s.inflate(rec)
	}
	return records, nil
}

func (s *BoltStorage) all() ([]*Record, error) {
	var records []*Record
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(clipsBucket)).ForEach(func(k, v []byte) error {
			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil {
				s.logger.Warn("Failed to unmarshal record", zap.Error(err), zap.ByteString("hash", k))
				return nil // skip invalid entries
			}
			records = append(records, &rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Created.After(records[j].Created)
	})
	return records, nil
}

// Flush deletes all but the keep most recently seen records and returns how
// many were removed. A negative keep uses the configured default.
func (s *BoltStorage) Flush(keep int) (int, error) {
	if keep < 0 {
		keep = s.keepItems
	}

	removed := 0
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(clipsBucket))

		type entry struct {
			key     []byte
			created time.Time
		}
		var entries []entry
		err := b.ForEach(func(k, v []byte) error {
			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil {
				// unreadable records sort last and are flushed first
				entries = append(entries, entry{key: append([]byte(nil), k...)})
				return nil
			}
			entries = append(entries, entry{key: append([]byte(nil), k...), created: rec.Created})
			return nil
		})
		if err != nil {
			return err
		}
		if len(entries) <= keep {
			return nil
		}

		sort.Slice(entries, func(i, j int) bool {
			return entries[i].created.After(entries[j].created)
		})
		for _, e := range entries[keep:] {
			if err := b.Delete(e.key); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to flush history: %w", err)
	}

	if removed > 0 {
		s.logger.Info("History flushed", zap.Int("deleted_items", removed), zap.Int("kept_items", keep))
	}
	return removed, nil
}

// Count returns the number of distinct clips in the history
func (s *BoltStorage) Count() (int, error) {
	var n int
	err := s.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket([]byte(clipsBucket)).Stats().KeyN
		return nil
	})
	return n, err
}

// Close flushes the history down to the configured size and closes the database
func (s *BoltStorage) Close() error {
	if _, err := s.Flush(s.keepItems); err != nil {
		s.logger.Error("Failed to flush history on close", zap.Error(err))
	}
	return s.db.Close()
}

// inflate returns rec with its text decompressed when needed.
func (s *BoltStorage) inflate(rec *Record) *Record {
	if !rec.Compressed {
		return rec
	}
	text, err := decompressText(rec.Text)
	if err != nil {
		s.logger.Warn("Failed to decompress record, returning stored text",
			zap.String("hash", rec.Hash), zap.Error(err))
		return rec
	}
	out := *rec
	out.Text = text
	out.Compressed = false
	return &out
}
