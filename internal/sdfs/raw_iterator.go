package sdfs

import (
	"github.com/pkg/errors"

	"sdfs/internal/blockdevice"
	"sdfs/internal/sdfserr"
	"sdfs/internal/sdfslog"
)

// RawIterator is C4: the on-disk directory iterator of spec.md §4.4. It is
// a direct, field-for-field port of
// original_source/software/SDfs.cpp's RawDirectoryIterator.
type RawIterator struct {
	dev           blockdevice.Device
	log           sdfslog.Logger
	maxNameLength int

	sector []byte // single reusable header-sector buffer

	startSector    uint32
	nextSector     uint32
	previousSector uint32
	validPrevious  bool
	more           bool
	header         Header

	openForWrite      bool
	headerModified    bool
	writePos          int
	firstUnusedSector uint32
}

// NewRawIterator constructs a cursor over dev. log may be nil (a no-op
// sink is used).
func NewRawIterator(dev blockdevice.Device, log sdfslog.Logger, maxNameLength int) *RawIterator {
	if log == nil {
		log = sdfslog.Noop{}
	}
	return &RawIterator{
		dev:           dev,
		log:           log,
		maxNameLength: maxNameLength,
		sector:        make([]byte, dev.SectorSize()),
	}
}

func (r *RawIterator) Init() error {
	r.nextSector = 0
	r.validPrevious = false
	return r.advance()
}

func (r *RawIterator) Next() error {
	return r.advance()
}

// advance is the shared body of init()/next() in the original: read the
// sector at nextSector, decode its header, and extend nextSector by the
// run's allocated size on success.
func (r *RawIterator) advance() error {
	if r.nextSector > 0 {
		r.previousSector = r.startSector
		r.validPrevious = true
	}
	r.startSector = r.nextSector
	r.more = false

	if err := r.dev.ReadSector(r.startSector, r.sector); err != nil {
		return err
	}
	if h, ok := DecodeHeader(r.sector, r.maxNameLength); ok {
		r.header = h
		r.more = true
		r.nextSector += h.Allocated
	}
	return nil
}

func (r *RawIterator) More() bool          { return r.more }
func (r *RawIterator) Header() Header      { return r.header }
func (r *RawIterator) StartSector() uint32 { return r.startSector }

func (r *RawIterator) GetSector(buf []byte) error {
	if len(buf) < len(r.sector) {
		return errors.New("sdfs: GetSector buffer too small")
	}
	copy(buf, r.sector)
	return nil
}

// Remove implements spec.md §4.4: coalesce into the predecessor if one
// exists, otherwise empty the chain head in place.
func (r *RawIterator) Remove() error {
	if r.validPrevious {
		removedAllocated := r.header.Allocated
		r.startSector = r.previousSector
		if err := r.dev.ReadSector(r.startSector, r.sector); err != nil {
			return err
		}
		h, ok := DecodeHeader(r.sector, r.maxNameLength)
		if !ok {
			return errors.Wrap(sdfserr.ErrCorruptHeader, "predecessor header failed validation during coalesce")
		}
		h.Allocated += removedAllocated
		r.header = h
		if err := EncodeHeader(r.sector, r.header, r.maxNameLength); err != nil {
			return err
		}
		if err := r.dev.WriteSector(r.startSector, r.sector); err != nil {
			return err
		}
		r.validPrevious = false
		return nil
	}

	// Chain head with no predecessor: clear in place, allocated unchanged.
	r.header.Name = ""
	r.header.Length = 0
	if err := EncodeHeader(r.sector, r.header, r.maxNameLength); err != nil {
		return err
	}
	return r.dev.WriteSector(r.startSector, r.sector)
}

func (r *RawIterator) OpenModifyHeader(sector uint32) error {
	if sector != r.startSector {
		r.validPrevious = false
		r.startSector = sector
		if err := r.dev.ReadSector(sector, r.sector); err != nil {
			return err
		}
		h, ok := DecodeHeader(r.sector, r.maxNameLength)
		if !ok {
			return errors.Wrap(sdfserr.ErrCorruptHeader, "OpenModifyHeader on invalid header")
		}
		r.header = h
	}
	r.openForWrite = true
	r.headerModified = false
	r.writePos = 0
	return nil
}

func (r *RawIterator) ClearName() {
	if !r.openForWrite {
		return
	}
	r.header.Name = ""
	r.headerModified = true
}

func (r *RawIterator) SetLength(length uint32) {
	if !r.openForWrite {
		return
	}
	r.header.Length = length
	r.headerModified = true
}

func (r *RawIterator) SetAllocated(allocated uint32) {
	if !r.openForWrite {
		return
	}
	r.header.Allocated = allocated
	r.headerModified = true
}

// OpenWrite rewrites the header into the in-memory sector buffer (not yet
// flushed to the device — that happens lazily from Append/Close, matching
// the original's writeHeaderSector-into-buffer-only behavior) and
// prepares to receive payload bytes.
func (r *RawIterator) OpenWrite(sector uint32, name string, length, allocated uint32) error {
	r.validPrevious = false
	r.header = Header{Name: name, Length: length, Allocated: allocated}
	r.startSector = sector
	if err := EncodeHeader(r.sector, r.header, r.maxNameLength); err != nil {
		return err
	}
	r.headerModified = false
	r.writePos = DataOffset(len(name))
	r.firstUnusedSector = sector + SectorsNeeded(len(name), length, len(r.sector))
	r.openForWrite = true
	return nil
}

func (r *RawIterator) Append(b byte) error {
	if !r.openForWrite {
		return nil
	}
	if r.headerModified {
		if r.writePos > 0 {
			r.log.Errorf("sdfs: header modified after append at sector %d", r.startSector)
			return nil
		}
		if err := EncodeHeader(r.sector, r.header, r.maxNameLength); err != nil {
			return err
		}
		r.headerModified = false
		r.writePos = DataOffset(len(r.header.Name))
	}
	if r.writePos >= len(r.sector) {
		if r.startSector <= r.firstUnusedSector {
			if err := r.dev.WriteSector(r.startSector, r.sector); err != nil {
				return err
			}
		} else {
			r.log.Errorf("sdfs: writing past used sectors at %d", r.startSector)
		}
		r.startSector++
		r.writePos = 0
	}
	r.sector[r.writePos] = b
	r.writePos++
	return nil
}

func (r *RawIterator) Close() error {
	if !r.openForWrite {
		return nil
	}
	if r.headerModified {
		if err := EncodeHeader(r.sector, r.header, r.maxNameLength); err != nil {
			return err
		}
	}
	if r.writePos > 0 {
		for i := r.writePos; i < len(r.sector); i++ {
			r.sector[i] = 0
		}
	}
	if r.headerModified || r.writePos > 0 {
		if err := r.dev.WriteSector(r.startSector, r.sector); err != nil {
			return err
		}
		r.startSector++
	}
	r.openForWrite = false
	return nil
}
