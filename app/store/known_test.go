package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestKnownItems_RecordAndIsKnown(t *testing.T) {
	known := NewKnownItems(10)

	if known.IsKnown("tech", "g1") {
		t.Errorf("Empty cache should not know g1")
	}

	known.Record("tech", "g1")

	if !known.IsKnown("tech", "g1") {
		t.Errorf("Expected g1 to be known after Record")
	}
	if known.IsKnown("news", "g1") {
		t.Errorf("Identity must be scoped per feed")
	}
}

func TestKnownItems_TailDedup(t *testing.T) {
	known := NewKnownItems(10)

	known.Record("tech", "g1")
	known.Record("tech", "g1")
	known.Record("tech", "g1")

	if got := known.Count("tech"); got != 1 {
		t.Errorf("Expected repeated tail records to collapse, got %d entries", got)
	}
}

func TestKnownItems_FIFOEviction(t *testing.T) {
	known := NewKnownItems(3)

	for i := 1; i <= 5; i++ {
		known.Record("tech", fmt.Sprintf("g%d", i))
	}

	if got := known.Count("tech"); got != 3 {
		t.Fatalf("Expected capacity bound of 3, got %d", got)
	}

	// Oldest evicted first.
	if known.IsKnown("tech", "g1") || known.IsKnown("tech", "g2") {
		t.Errorf("Expected oldest identities to be evicted")
	}
	for i := 3; i <= 5; i++ {
		guid := fmt.Sprintf("g%d", i)
		if !known.IsKnown("tech", guid) {
			t.Errorf("Expected %s to survive eviction", guid)
		}
	}
}

func TestKnownItems_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "known_items.json")

	known := NewKnownItems(10)
	known.Record("a", "g1")
	known.Record("a", "g2")
	known.Record("b", "g9")

	if err := known.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	restored := NewKnownItems(10)
	if err := restored.Load(path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !restored.IsKnown("a", "g1") {
		t.Errorf("Expected g1 known for feed a after round trip")
	}
	if restored.IsKnown("a", "g3") {
		t.Errorf("Expected g3 unknown for feed a after round trip")
	}
	if !restored.IsKnown("b", "g9") {
		t.Errorf("Expected g9 known for feed b after round trip")
	}
}

func TestKnownItems_LoadMissingFileIsEmptyState(t *testing.T) {
	known := NewKnownItems(10)

	err := known.Load(filepath.Join(t.TempDir(), "does-not-exist.json"))
	if err != nil {
		t.Fatalf("Missing snapshot must not be an error, got: %v", err)
	}
	if known.IsKnown("tech", "g1") {
		t.Errorf("Expected empty state after loading missing file")
	}
}

func TestKnownItems_LoadEmptyFileIsEmptyState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "known_items.json")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	known := NewKnownItems(10)
	if err := known.Load(path); err != nil {
		t.Fatalf("Empty snapshot must not be an error, got: %v", err)
	}
}

func TestKnownItems_LoadCorruptSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "known_items.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	known := NewKnownItems(10)
	err := known.Load(path)
	if err == nil {
		t.Fatal("Expected error for corrupt snapshot")
	}
	if !errors.Is(err, ErrCorruptSnapshot) {
		t.Errorf("Expected ErrCorruptSnapshot, got: %v", err)
	}
}

func TestKnownItems_LoadTrimsBeyondCapacity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "known_items.json")

	big := NewKnownItems(100)
	for i := 1; i <= 10; i++ {
		big.Record("tech", fmt.Sprintf("g%d", i))
	}
	if err := big.Save(path); err != nil {
		t.Fatal(err)
	}

	small := NewKnownItems(4)
	if err := small.Load(path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got := small.Count("tech"); got != 4 {
		t.Fatalf("Expected load to trim to capacity 4, got %d", got)
	}
	if small.IsKnown("tech", "g6") {
		t.Errorf("Expected oldest entries trimmed on load")
	}
	if !small.IsKnown("tech", "g10") {
		t.Errorf("Expected newest entries retained on load")
	}
}

func TestKnownItems_SaveReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "known_items.json")

	known := NewKnownItems(10)
	known.Record("tech", "g1")
	if err := known.Save(path); err != nil {
		t.Fatal(err)
	}
	known.Record("tech", "g2")
	if err := known.Save(path); err != nil {
		t.Fatal(err)
	}

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected only the snapshot file in %s, found %d entries", dir, len(entries))
	}
}
