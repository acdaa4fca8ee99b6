// Package cache is the build driver's render cache: page records keyed by
// output path, invalidated by a blake3 hash of the source bytes, with zstd
// compressed HTML bodies in bbolt.
//
// Only `folio build` touches this. The query services re-read the content
// store on every call and never consult the cache.
package cache

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/zeebo/blake3"
	bolt "go.etcd.io/bbolt"
)

const dbFile = "folio.db"

var pagesBucket = []byte("pages")

// PageRecord is one cached render.
type PageRecord struct {
	Path       string `msgpack:"path"`
	SourceHash string `msgpack:"source_hash"`
	RenderedAt int64  `msgpack:"rendered_at"`
	HTML       []byte `msgpack:"html"` // zstd-compressed
}

// Manager owns the bbolt handle and the shared zstd coders.
type Manager struct {
	db      *bolt.DB
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// Open creates or opens the cache database under dir.
func Open(dir string) (*Manager, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("cache dir: %w", err)
	}
	db, err := bolt.Open(filepath.Join(dir, dbFile), 0600, &bolt.Options{Timeout: 10 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("cache open: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(pagesBucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		_ = encoder.Close()
		_ = db.Close()
		return nil, err
	}

	return &Manager{db: db, encoder: encoder, decoder: decoder}, nil
}

// Close releases the database and codec resources.
func (m *Manager) Close() error {
	_ = m.encoder.Close()
	m.decoder.Close()
	return m.db.Close()
}

// HashSource returns the hex blake3 digest of source bytes.
func HashSource(b []byte) string {
	sum := blake3.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Get returns the cached HTML for path when the stored source hash still
// matches, along with a hit flag. Decode failures count as misses; the
// entry will be overwritten on the next Put.
func (m *Manager) Get(path, sourceHash string) (string, bool) {
	var record PageRecord
	err := m.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(pagesBucket).Get([]byte(path))
		if data == nil {
			return fmt.Errorf("not found")
		}
		return msgpack.Unmarshal(data, &record)
	})
	if err != nil || record.SourceHash != sourceHash {
		return "", false
	}
	html, err := m.decoder.DecodeAll(record.HTML, nil)
	if err != nil {
		return "", false
	}
	return string(html), true
}

// Put stores a rendered page.
func (m *Manager) Put(path, sourceHash, html string) error {
	record := PageRecord{
		Path:       path,
		SourceHash: sourceHash,
		RenderedAt: time.Now().Unix(),
		HTML:       m.encoder.EncodeAll([]byte(html), nil),
	}
	data, err := msgpack.Marshal(&record)
	if err != nil {
		return err
	}
	return m.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(pagesBucket).Put([]byte(path), data)
	})
}

// Clear drops every cached page.
func (m *Manager) Clear() error {
	return m.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(pagesBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucket(pagesBucket)
		return err
	})
}

// Len reports the number of cached pages.
func (m *Manager) Len() (int, error) {
	n := 0
	err := m.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(pagesBucket).Stats().KeyN
		return nil
	})
	return n, err
}
