package cache

import (
	"crypto/md5"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ricewatch/ricewatch-api/internal/properties"
)

type entry[T any] struct {
	Data      T         `json:"data"`
	CreatedAt time.Time `json:"created_at"`
	Checksum  string    `json:"checksum"`
}

// FileStore is a small JSON-on-disk cache living under data/<subDir>.
// Entries carry a content checksum; a corrupted or tampered file reads as
// a miss, never as bad data. A zero MaxAge keeps entries forever.
type FileStore[T any] struct {
	dir    string
	MaxAge time.Duration
}

func NewFileStore[T any](subDir string) *FileStore[T] {
	return &FileStore[T]{dir: filepath.Join(properties.RootPath(), "data", subDir)}
}

// Key derives a stable cache key from the given parts.
func (s *FileStore[T]) Key(parts ...interface{}) string {
	var raw string
	for _, p := range parts {
		raw += fmt.Sprintf("%v_", p)
	}
	sum := sha1.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func (s *FileStore[T]) Lookup(key string) (T, bool) {
	var zero T
	data, err := os.ReadFile(filepath.Join(s.dir, key+".json"))
	if err != nil {
		return zero, false
	}

	var e entry[T]
	if err := json.Unmarshal(data, &e); err != nil {
		return zero, false
	}
	if e.Checksum != checksum(e.Data) {
		return zero, false
	}
	if s.MaxAge > 0 && time.Since(e.CreatedAt) > s.MaxAge {
		return zero, false
	}
	return e.Data, true
}

func (s *FileStore[T]) Save(key string, data T) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	raw, err := json.Marshal(entry[T]{
		Data:      data,
		CreatedAt: time.Now(),
		Checksum:  checksum(data),
	})
	if err != nil {
		return fmt.Errorf("marshaling cache entry: %w", err)
	}

	// Write-then-rename so readers never observe a partial entry.
	final := filepath.Join(s.dir, key+".json")
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("committing cache entry: %w", err)
	}
	return nil
}

func checksum[T any](data T) string {
	raw, _ := json.Marshal(data)
	sum := md5.Sum(raw)
	return hex.EncodeToString(sum[:])
}
