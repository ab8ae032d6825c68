package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrCorruptSnapshot marks a snapshot file that exists but cannot be
// decoded. Unlike a missing file, this is a hard startup failure: silently
// dropping dedup history would resurface every previously rejected item.
var ErrCorruptSnapshot = errors.New("corrupt known-items snapshot")

// KnownItems is the bounded per-feed record of item identities already
// processed, accepted or not. It is an append log rather than a strict set:
// Record skips only the current tail, so an identity re-recorded long after
// its first appearance may occupy two slots. The capacity bound and FIFO
// eviction hold regardless, and IsKnown scans the whole log, so dedup
// answers are unaffected.
type KnownItems struct {
	mu       sync.RWMutex
	capacity int
	guids    map[string][]string
}

// NewKnownItems creates an empty cache retaining at most capacity
// identities per feed.
func NewKnownItems(capacity int) *KnownItems {
	return &KnownItems{
		capacity: capacity,
		guids:    make(map[string][]string),
	}
}

// IsKnown reports whether the identity is currently retained for the feed.
func (k *KnownItems) IsKnown(feedName, guid string) bool {
	k.mu.RLock()
	defer k.mu.RUnlock()

	for _, known := range k.guids[feedName] {
		if known == guid {
			return true
		}
	}
	return false
}

// Record appends the identity to the feed's log unless it already sits at
// the tail, evicting from the head once the capacity bound is exceeded.
func (k *KnownItems) Record(feedName, guid string) {
	k.mu.Lock()
	defer k.mu.Unlock()

	log := k.guids[feedName]
	if n := len(log); n > 0 && log[n-1] == guid {
		return
	}

	log = append(log, guid)
	for len(log) > k.capacity {
		log = log[1:]
	}
	k.guids[feedName] = log
}

// Count returns the number of identities retained for the feed.
func (k *KnownItems) Count(feedName string) int {
	k.mu.RLock()
	defer k.mu.RUnlock()

	return len(k.guids[feedName])
}

// Save writes the full per-feed mapping to path. The snapshot is written to
// a temporary file in the same directory and renamed into place, so a crash
// mid-write never truncates the previous snapshot.
func (k *KnownItems) Save(path string) error {
	k.mu.RLock()
	data, err := json.Marshal(k.guids)
	k.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to encode known items: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".known-items-*")
	if err != nil {
		return fmt.Errorf("failed to create snapshot temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close snapshot temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}

	return nil
}

// Load replaces the in-memory mapping with the snapshot at path. A missing
// or empty file is treated as an empty initial state. Entries beyond the
// configured capacity are trimmed from the oldest end.
func (k *KnownItems) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read snapshot: %w", err)
	}

	if len(data) == 0 {
		return nil
	}

	var loaded map[string][]string
	if err := json.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorruptSnapshot, path, err)
	}
	if loaded == nil {
		loaded = make(map[string][]string)
	}

	for name, log := range loaded {
		if len(log) > k.capacity {
			loaded[name] = log[len(log)-k.capacity:]
		}
	}

	k.mu.Lock()
	k.guids = loaded
	k.mu.Unlock()

	return nil
}
