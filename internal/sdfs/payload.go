package sdfs

import (
	"sdfs/internal/blockdevice"
	"sdfs/internal/sdfslog"
)

// PayloadReader is C3: a finite lazy sequence of an entry's payload bytes,
// read sector-by-sector from the device. It is a direct port of
// original_source/software/SDfs.cpp's DirectoryEntry::ReadStream.
type PayloadReader struct {
	dev    blockdevice.Device
	log    sdfslog.Logger
	sector []byte

	curSector        uint32
	posInCurSector    int
	firstUnusedSector uint32
	length            uint32
	pos               uint32
	more              bool
}

// OpenPayloadReader positions a reader at the start of an entry's payload.
// headerSector is the already-buffered header sector, handed over the way
// the iterator's GetSector operation does (spec.md §4.3) so the payload
// reader doesn't need a redundant read of sector 0 of the run.
// nameLen/length/used describe the entry as decoded from that header.
func OpenPayloadReader(dev blockdevice.Device, log sdfslog.Logger, headerSector []byte, startSector uint32, nameLen int, length, used uint32) (*PayloadReader, error) {
	if log == nil {
		log = sdfslog.Noop{}
	}
	sector := make([]byte, dev.SectorSize())
	copy(sector, headerSector)
	r := &PayloadReader{
		dev:               dev,
		log:               log,
		sector:            sector,
		curSector:         startSector,
		posInCurSector:    DataOffset(nameLen),
		firstUnusedSector: startSector + used,
		length:            length,
		more:              length > 0,
	}
	// A name that fills the header sector exactly puts the first payload
	// byte at the start of the next sector.
	if r.more && r.posInCurSector >= len(r.sector) {
		r.curSector++
		if r.curSector >= r.firstUnusedSector {
			log.Warnf("sdfs: reading beyond used sectors at %d", r.curSector)
			r.more = false
			return r, nil
		}
		if err := dev.ReadSector(r.curSector, r.sector); err != nil {
			return nil, err
		}
		r.posInCurSector = 0
	}
	return r, nil
}

// More reports whether Value is valid.
func (r *PayloadReader) More() bool { return r.more }

// Value returns the current payload byte. Only valid while More() is true.
func (r *PayloadReader) Value() byte { return r.sector[r.posInCurSector] }

// Length returns the entry's total payload length.
func (r *PayloadReader) Length() uint32 { return r.length }

// Next advances the stream by one byte, loading the next sector when the
// current one is exhausted. Reading past the used-sector boundary before
// exhausting Length is the header/layout corruption case of spec.md §4.2:
// it is logged and the stream terminates early rather than erroring.
func (r *PayloadReader) Next() error {
	r.pos++
	if r.pos >= r.length {
		r.more = false
		return nil
	}
	r.posInCurSector++
	if r.posInCurSector >= len(r.sector) {
		r.curSector++
		if r.curSector >= r.firstUnusedSector {
			r.log.Warnf("sdfs: reading beyond used sectors at %d", r.curSector)
			r.more = false
			return nil
		}
		if err := r.dev.ReadSector(r.curSector, r.sector); err != nil {
			r.log.Warnf("sdfs: read_sector failed for sector %d: %v", r.curSector, err)
			r.more = false
			return err
		}
		r.posInCurSector = 0
	}
	return nil
}

// ReadAll drains the stream into a byte slice, for callers that want the
// whole payload at once rather than a byte-at-a-time cursor.
func ReadAll(r *PayloadReader) ([]byte, error) {
	out := make([]byte, 0, r.Length())
	for r.More() {
		out = append(out, r.Value())
		if err := r.Next(); err != nil {
			return out, err
		}
	}
	return out, nil
}
