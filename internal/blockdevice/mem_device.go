package blockdevice

import "github.com/pkg/errors"

// MemDevice is a byte-slice-backed Device for unit tests, grounded on
// cznic-exp/lldb's memfiler.go: a growable in-memory buffer standing in
// for a real Filer so allocation tests run without touching disk.
type MemDevice struct {
	sectorSize int
	sectors    [][]byte
}

// NewMemDevice creates an empty (zero-sector) in-memory device.
func NewMemDevice(sectorSize int) *MemDevice {
	return &MemDevice{sectorSize: sectorSize}
}

func (d *MemDevice) SectorSize() int { return d.sectorSize }

func (d *MemDevice) grow(n uint32) {
	for uint32(len(d.sectors)) <= n {
		sector := make([]byte, d.sectorSize)
		d.sectors = append(d.sectors, sector)
	}
}

func (d *MemDevice) ReadSector(n uint32, buf []byte) error {
	if len(buf) < d.sectorSize {
		return errors.New("sdfs: read buffer smaller than sector size")
	}
	for i := range buf[:d.sectorSize] {
		buf[i] = 0
	}
	if int(n) < len(d.sectors) {
		copy(buf[:d.sectorSize], d.sectors[n])
	}
	return nil
}

func (d *MemDevice) WriteSector(n uint32, buf []byte) error {
	if len(buf) < d.sectorSize {
		return errors.New("sdfs: write buffer smaller than sector size")
	}
	d.grow(n)
	copy(d.sectors[n], buf[:d.sectorSize])
	return nil
}

func (d *MemDevice) Sync() error { return nil }

// SectorCount reports how many sectors have been touched so far (writes
// grow the backing slice; reads of untouched sectors return zeros without
// growing it).
func (d *MemDevice) SectorCount() int { return len(d.sectors) }

// Image concatenates every touched sector into one byte slice, for
// byte-for-byte comparison between RawIterator and CachedIterator runs
// (Testable Property 7, spec.md §8).
func (d *MemDevice) Image() []byte {
	out := make([]byte, 0, len(d.sectors)*d.sectorSize)
	for _, s := range d.sectors {
		out = append(out, s...)
	}
	return out
}
