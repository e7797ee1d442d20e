package sdfs

import (
	"bytes"
	"testing"

	"sdfs/internal/blockdevice"
)

// TestCachedIteratorMatchesRawImage exercises the same sequence of
// operations through a CachedIterator and a bare RawIterator on two
// independent devices and checks the resulting device images are
// byte-identical (spec.md §8, Testable Property 7: the cache never
// diverges from ground truth).
func TestCachedIteratorMatchesRawImage(t *testing.T) {
	rawDev := blockdevice.NewMemDevice(64)
	raw := NewRawIterator(rawDev, nil, 20)
	raw.Init()
	writeEntry(t, raw, 0, "A.TXT", []byte("aaaa"), 2)
	raw.Init()
	writeEntry(t, raw, 2, "B.TXT", []byte("bb"), 1)
	raw.Init()
	writeEntry(t, raw, 3, "C.TXT", []byte("cccccc"), 2)
	raw.Init()
	if err := raw.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if raw.Header().Name != "B.TXT" {
		t.Fatalf("expected cursor at B.TXT")
	}
	if err := raw.Remove(); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	cachedDev := blockdevice.NewMemDevice(64)
	cached, err := NewCachedIterator(cachedDev, nil, 20)
	if err != nil {
		t.Fatalf("NewCachedIterator: %v", err)
	}
	if err := cached.OpenWrite(0, "A.TXT", 4, 2); err != nil {
		t.Fatalf("OpenWrite A: %v", err)
	}
	for _, b := range []byte("aaaa") {
		cached.Append(b)
	}
	cached.Close()

	if err := cached.OpenWrite(2, "B.TXT", 2, 1); err != nil {
		t.Fatalf("OpenWrite B: %v", err)
	}
	for _, b := range []byte("bb") {
		cached.Append(b)
	}
	cached.Close()

	if err := cached.OpenWrite(3, "C.TXT", 6, 2); err != nil {
		t.Fatalf("OpenWrite C: %v", err)
	}
	for _, b := range []byte("cccccc") {
		cached.Append(b)
	}
	cached.Close()

	cached.Init()
	if err := cached.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if cached.Header().Name != "B.TXT" {
		t.Fatalf("expected cached cursor at B.TXT, got %+v", cached.Header())
	}
	if err := cached.Remove(); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	if !bytes.Equal(rawDev.Image(), cachedDev.Image()) {
		t.Fatalf("raw and cached device images diverged")
	}
}

func TestCachedIteratorRebuildReflectsDevice(t *testing.T) {
	dev := blockdevice.NewMemDevice(64)
	raw := NewRawIterator(dev, nil, 20)
	raw.Init()
	writeEntry(t, raw, 0, "ONE", []byte("x"), 1)
	raw.Init()
	writeEntry(t, raw, 1, "TWO", []byte("yy"), 1)

	cached, err := NewCachedIterator(dev, nil, 20)
	if err != nil {
		t.Fatalf("NewCachedIterator: %v", err)
	}
	cached.Init()
	var names []string
	for cached.More() {
		names = append(names, cached.Header().Name)
		if err := cached.Next(); err != nil {
			t.Fatalf("Next: %v", err)
		}
	}
	if len(names) != 2 || names[0] != "ONE" || names[1] != "TWO" {
		t.Fatalf("unexpected cached scan: %v", names)
	}
}

func TestCachedIteratorOpenModifyHeaderUnknownSector(t *testing.T) {
	dev := blockdevice.NewMemDevice(64)
	cached, err := NewCachedIterator(dev, nil, 20)
	if err != nil {
		t.Fatalf("NewCachedIterator: %v", err)
	}
	if err := cached.OpenModifyHeader(5); err == nil {
		t.Fatalf("expected error modifying a header at an uncached sector")
	}
}
