package planner

import (
	"bytes"
	"path/filepath"
	"testing"
)

func TestPlaceCacheGetPut(t *testing.T) {
	cache := NewPlaceCache()

	if _, ok := cache.Get("missing"); ok {
		t.Fatal("empty cache must miss")
	}

	detail := NewPlaceDetail(-7.7956, 110.3695, "Tugu Pal Putih, Yogyakarta")
	cache.Put("ref-1", detail)

	got, ok := cache.Get("ref-1")
	if !ok {
		t.Fatal("expected hit for ref-1")
	}
	if got != detail {
		t.Errorf("got %+v, want %+v", got, detail)
	}
	if cache.Len() != 1 {
		t.Errorf("Len() = %d, want 1", cache.Len())
	}

	// same key overwrites, never grows
	cache.Put("ref-1", detail)
	if cache.Len() != 1 {
		t.Errorf("Len() after re-put = %d, want 1", cache.Len())
	}
}

func TestPlaceCacheSnapshotRoundTrip(t *testing.T) {
	cache := NewPlaceCache()
	cache.Put("a", NewPlaceDetail(1.5, 2.5, "alpha"))
	cache.Put("b", NewPlaceDetail(-3.25, 103.0, "beta"))

	var buf bytes.Buffer
	if err := cache.WriteSnapshot(&buf); err != nil {
		t.Fatal(err)
	}

	restored := NewPlaceCache()
	if err := restored.ReadSnapshot(&buf); err != nil {
		t.Fatal(err)
	}

	if restored.Len() != 2 {
		t.Fatalf("restored Len() = %d, want 2", restored.Len())
	}
	got, ok := restored.Get("b")
	if !ok || got.Address != "beta" || got.Lon != 103.0 {
		t.Errorf("restored entry b = %+v (ok=%v)", got, ok)
	}
}

func TestPlaceCacheSnapshotFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "places.cache")

	cache := NewPlaceCache()
	cache.Put("x", NewPlaceDetail(52.0, 4.35, "Delft"))
	if err := cache.SaveFile(path); err != nil {
		t.Fatal(err)
	}

	restored := NewPlaceCache()
	if err := restored.LoadFile(path); err != nil {
		t.Fatal(err)
	}
	if _, ok := restored.Get("x"); !ok {
		t.Error("expected entry x after reload")
	}
}
