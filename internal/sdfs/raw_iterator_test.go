package sdfs

import (
	"testing"

	"sdfs/internal/blockdevice"
)

func writeEntry(t *testing.T, it *RawIterator, sector uint32, name string, data []byte, allocated uint32) {
	t.Helper()
	if err := it.OpenWrite(sector, name, uint32(len(data)), allocated); err != nil {
		t.Fatalf("OpenWrite(%q): %v", name, err)
	}
	for _, b := range data {
		if err := it.Append(b); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	if err := it.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestRawIteratorEmptyDeviceTerminatesImmediately(t *testing.T) {
	dev := blockdevice.NewMemDevice(64)
	it := NewRawIterator(dev, nil, 20)
	if err := it.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if it.More() {
		t.Fatalf("expected empty device to report no entries")
	}
	if it.StartSector() != 0 {
		t.Fatalf("append zone on empty device should be sector 0, got %d", it.StartSector())
	}
}

func TestRawIteratorWriteAndReadBack(t *testing.T) {
	dev := blockdevice.NewMemDevice(64)
	it := NewRawIterator(dev, nil, 20)
	if err := it.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	writeEntry(t, it, 0, "A.TXT", []byte("hello"), 2)

	if err := it.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if !it.More() {
		t.Fatalf("expected one entry")
	}
	h := it.Header()
	if h.Name != "A.TXT" || h.Length != 5 || h.Allocated != 2 {
		t.Fatalf("unexpected header: %+v", h)
	}
	if err := it.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if it.More() {
		t.Fatalf("expected chain to terminate after the one entry")
	}
	if it.StartSector() != 2 {
		t.Fatalf("append zone should be sector 2, got %d", it.StartSector())
	}
}

func TestRawIteratorRemoveCoalescesIntoPredecessor(t *testing.T) {
	dev := blockdevice.NewMemDevice(64)
	it := NewRawIterator(dev, nil, 20)
	it.Init()
	writeEntry(t, it, 0, "A.TXT", []byte("aa"), 2)
	it.Init()
	writeEntry(t, it, 2, "B.TXT", []byte("bb"), 1)

	it.Init()
	if err := it.Next(); err != nil { // cursor now on B, with A as valid predecessor
		t.Fatalf("Next: %v", err)
	}
	if it.Header().Name != "B.TXT" {
		t.Fatalf("expected cursor at B.TXT, got %+v", it.Header())
	}
	if err := it.Remove(); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	it.Init()
	if !it.More() {
		t.Fatalf("expected coalesced entry to remain")
	}
	h := it.Header()
	if h.Name != "A.TXT" || h.Allocated != 3 {
		t.Fatalf("expected A.TXT with allocated=3 after coalesce, got %+v", h)
	}
	if err := it.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if it.More() {
		t.Fatalf("expected chain to terminate after the coalesced entry")
	}
}

func TestRawIteratorRemoveHeadClearsInPlace(t *testing.T) {
	dev := blockdevice.NewMemDevice(64)
	it := NewRawIterator(dev, nil, 20)
	it.Init()
	writeEntry(t, it, 0, "A.TXT", []byte("aa"), 3)

	it.Init()
	if err := it.Remove(); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	it.Init()
	if !it.More() {
		t.Fatalf("expected head entry to remain as an empty run")
	}
	h := it.Header()
	if !h.Empty() || h.Allocated != 3 {
		t.Fatalf("expected empty entry with allocated=3 preserved, got %+v", h)
	}
}

func TestRawIteratorOpenModifyHeaderSplitsRun(t *testing.T) {
	dev := blockdevice.NewMemDevice(64)
	it := NewRawIterator(dev, nil, 20)
	it.Init()
	writeEntry(t, it, 0, "A.TXT", []byte("aa"), 5)

	if err := it.OpenModifyHeader(0); err != nil {
		t.Fatalf("OpenModifyHeader: %v", err)
	}
	used := it.Header().Used(64)
	it.SetAllocated(used)
	if err := it.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	it.Init()
	h := it.Header()
	if h.Allocated != used {
		t.Fatalf("expected allocated shrunk to %d, got %d", used, h.Allocated)
	}
}
