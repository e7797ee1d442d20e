package sdfs

import (
	"bytes"
	"testing"

	"sdfs/internal/blockdevice"
)

func TestPayloadReaderReadsBackWrittenBytes(t *testing.T) {
	dev := blockdevice.NewMemDevice(64)
	it := NewRawIterator(dev, nil, 20)
	it.Init()
	payload := []byte("the quick brown fox jumps over the lazy dog")
	writeEntry(t, it, 0, "FOX.TXT", payload, 2)

	it.Init()
	if !it.More() {
		t.Fatalf("expected entry")
	}
	h := it.Header()
	buf := make([]byte, dev.SectorSize())
	if err := it.GetSector(buf); err != nil {
		t.Fatalf("GetSector: %v", err)
	}

	pr, err := OpenPayloadReader(dev, nil, buf, it.StartSector(), len(h.Name), h.Length, h.Used(dev.SectorSize()))
	if err != nil {
		t.Fatalf("OpenPayloadReader: %v", err)
	}
	got, err := ReadAll(pr)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("got %q, want %q", got, payload)
	}
}

func TestPayloadReaderSpansMultipleSectors(t *testing.T) {
	dev := blockdevice.NewMemDevice(16)
	it := NewRawIterator(dev, nil, 20)
	it.Init()
	payload := bytes.Repeat([]byte("0123456789"), 5) // 50 bytes, several 16-byte sectors
	writeEntry(t, it, 0, "BIG", payload, 8)

	it.Init()
	h := it.Header()
	buf := make([]byte, dev.SectorSize())
	if err := it.GetSector(buf); err != nil {
		t.Fatalf("GetSector: %v", err)
	}
	pr, err := OpenPayloadReader(dev, nil, buf, it.StartSector(), len(h.Name), h.Length, h.Used(dev.SectorSize()))
	if err != nil {
		t.Fatalf("OpenPayloadReader: %v", err)
	}
	got, err := ReadAll(pr)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("got %q, want %q", got, payload)
	}
}

func TestPayloadReaderEmptyFile(t *testing.T) {
	dev := blockdevice.NewMemDevice(64)
	it := NewRawIterator(dev, nil, 20)
	it.Init()
	writeEntry(t, it, 0, "EMPTY", nil, 1)

	it.Init()
	h := it.Header()
	buf := make([]byte, dev.SectorSize())
	it.GetSector(buf)
	pr, err := OpenPayloadReader(dev, nil, buf, it.StartSector(), len(h.Name), h.Length, h.Used(dev.SectorSize()))
	if err != nil {
		t.Fatalf("OpenPayloadReader: %v", err)
	}
	if pr.More() {
		t.Fatalf("expected empty payload to report no bytes")
	}
}
