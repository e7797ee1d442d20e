// Package sdfs implements the SDFS directory-and-allocation engine of
// spec.md: a self-describing chain of directory entries on a fixed-sector
// block device, a raw and a cached iterator over that chain, and a
// filesystem facade (WriteFile/RemoveFile/OpenReadStream) built on either.
package sdfs

import (
	"fmt"

	"github.com/pkg/errors"

	"sdfs/internal/blockdevice"
	"sdfs/internal/sdfserr"
	"sdfs/internal/sdfslog"
)

// maxFieldValue is the largest value the 24-bit allocated/length fields
// can hold (spec.md §3.2, §9 open question #4: reject explicitly instead
// of silently truncating).
const maxFieldValue = 0xFFFFFF

// FileSystem is C6: the filesystem facade of spec.md §4.6, built on an
// Iterator (either RawIterator or CachedIterator, behind the common
// interface) and the device it scans.
type FileSystem struct {
	dev           blockdevice.Device
	it            Iterator
	log           sdfslog.Logger
	maxNameLength int
}

// NewFileSystem builds a facade over a caller-provided iterator. Use
// NewRawFileSystem or NewCachedFileSystem for the two standard
// configurations.
func NewFileSystem(dev blockdevice.Device, it Iterator, log sdfslog.Logger, maxNameLength int) *FileSystem {
	if log == nil {
		log = sdfslog.Noop{}
	}
	return &FileSystem{dev: dev, it: it, log: log, maxNameLength: maxNameLength}
}

// NewRawFileSystem builds a facade that rescans the device on every scan
// (no cache). maxNameLength of 0 defaults to DefaultNameLength.
func NewRawFileSystem(dev blockdevice.Device, log sdfslog.Logger, maxNameLength int) *FileSystem {
	if maxNameLength <= 0 {
		maxNameLength = DefaultNameLength
	}
	return NewFileSystem(dev, NewRawIterator(dev, log, maxNameLength), log, maxNameLength)
}

// NewCachedFileSystem builds a facade backed by an in-memory mirror of
// the chain (C5), scanning the device once up front.
func NewCachedFileSystem(dev blockdevice.Device, log sdfslog.Logger, maxNameLength int) (*FileSystem, error) {
	if maxNameLength <= 0 {
		maxNameLength = DefaultNameLength
	}
	it, err := NewCachedIterator(dev, log, maxNameLength)
	if err != nil {
		return nil, err
	}
	return NewFileSystem(dev, it, log, maxNameLength), nil
}

func (fs *FileSystem) validateSizes(nameLen int, length uint32) error {
	if nameLen > fs.maxNameLength {
		return errors.Errorf("sdfs: name length %d exceeds max %d", nameLen, fs.maxNameLength)
	}
	if length > maxFieldValue {
		return sdfserr.WrapOversized(fmt.Sprintf("payload length %d exceeds 24-bit field capacity", length))
	}
	needed := SectorsNeeded(nameLen, length, fs.dev.SectorSize())
	if needed > maxFieldValue {
		return sdfserr.WrapOversized(fmt.Sprintf("run of %d sectors exceeds 24-bit field capacity", needed))
	}
	return nil
}

// WriteFile implements spec.md §4.6 "write_file": a single best-fit pass
// over the chain that reuses, splits, or appends a run, then streams data
// into it. It is a direct port of
// original_source/software/SDfs.cpp's SDFileSystem::writeFile.
func (fs *FileSystem) WriteFile(name string, data []byte) error {
	if err := fs.validateSizes(len(name), uint32(len(data))); err != nil {
		return err
	}
	sectorSize := fs.dev.SectorSize()
	sectorsNeeded := SectorsNeeded(len(name), uint32(len(data)), sectorSize)

	var (
		existing           bool
		selected           bool
		selectedSector     uint32
		selectedUsed       uint32
		selectedAllocated  uint32
	)

	if err := fs.it.Init(); err != nil {
		return err
	}
	for fs.it.More() {
		h := fs.it.Header()

		if !existing && h.Name == name {
			existing = true
			if sectorsNeeded <= h.Allocated {
				selected = true
				selectedSector = fs.it.StartSector()
				selectedUsed = 0
				selectedAllocated = h.Allocated
				break
			}
			if err := fs.it.Remove(); err != nil {
				return err
			}
			if selected && fs.it.StartSector() == selectedSector {
				selectedAllocated = fs.it.Header().Allocated
			}
			// Removal may have coalesced this run into its predecessor;
			// re-read the header so the unused-space check below sees
			// the post-removal state, exactly as the original evaluates
			// both checks against the same mutated cursor in one pass.
			h = fs.it.Header()
		}

		if unused := h.Unused(sectorSize); sectorsNeeded <= unused {
			if !selected || unused < selectedAllocated {
				selected = true
				selectedSector = fs.it.StartSector()
				selectedUsed = h.Used(sectorSize)
				selectedAllocated = h.Allocated
			}
		}

		if err := fs.it.Next(); err != nil {
			return err
		}
	}

	if !selected {
		selectedSector = fs.it.StartSector()
		selectedUsed = 0
		selectedAllocated = sectorsNeeded
	}

	if selectedUsed > 0 {
		if err := fs.it.OpenModifyHeader(selectedSector); err != nil {
			return err
		}
		totalAllocated := fs.it.Header().Allocated
		usedSectors := fs.it.Header().Used(sectorSize)
		fs.it.SetAllocated(usedSectors)
		if err := fs.it.Close(); err != nil {
			return err
		}
		selectedSector += usedSectors
		selectedAllocated = totalAllocated - usedSectors
		selectedUsed = 0
	}

	if err := fs.it.OpenWrite(selectedSector, name, uint32(len(data)), selectedAllocated); err != nil {
		return err
	}
	for _, b := range data {
		if err := fs.it.Append(b); err != nil {
			return err
		}
	}
	return fs.it.Close()
}

// RemoveFile implements spec.md §4.6 "remove_file". Absence of the named
// entry is not an error (the caller's journal is the source of truth).
func (fs *FileSystem) RemoveFile(name string) error {
	if err := fs.it.Init(); err != nil {
		return err
	}
	for fs.it.More() {
		if fs.it.Header().Name == name {
			return fs.it.Remove()
		}
		if err := fs.it.Next(); err != nil {
			return err
		}
	}
	return nil
}

// OpenReadStream scans for the first entry named name and, if found,
// opens a PayloadReader on it. found is a flag, not an error (spec.md
// §4.6): a caller checks found before trusting the returned reader.
func (fs *FileSystem) OpenReadStream(name string) (reader *PayloadReader, found bool, err error) {
	if err := fs.it.Init(); err != nil {
		return nil, false, err
	}
	sectorSize := fs.dev.SectorSize()
	for fs.it.More() {
		h := fs.it.Header()
		if h.Name == name {
			buf := make([]byte, sectorSize)
			if err := fs.it.GetSector(buf); err != nil {
				return nil, true, err
			}
			pr, err := OpenPayloadReader(fs.dev, fs.log, buf, fs.it.StartSector(), len(h.Name), h.Length, h.Used(sectorSize))
			if err != nil {
				return nil, true, err
			}
			return pr, true, nil
		}
		if err := fs.it.Next(); err != nil {
			return nil, false, err
		}
	}
	return nil, false, nil
}

// Entry is one directory entry as reported by List, for CLI/driver
// consumption (spec.md §6.4's "ls" operation).
type Entry struct {
	Name      string
	Length    uint32
	Allocated uint32
	Sector    uint32
}

// List returns every non-empty entry in chain order.
func (fs *FileSystem) List() ([]Entry, error) {
	var out []Entry
	if err := fs.it.Init(); err != nil {
		return nil, err
	}
	for fs.it.More() {
		h := fs.it.Header()
		if !h.Empty() {
			out = append(out, Entry{Name: h.Name, Length: h.Length, Allocated: h.Allocated, Sector: fs.it.StartSector()})
		}
		if err := fs.it.Next(); err != nil {
			return out, err
		}
	}
	return out, nil
}

// FsckIssue is one integrity violation reported by Fsck.
type FsckIssue struct {
	Sector  uint32
	Message string
}

// FsckReport summarizes a read-only consistency walk of the chain.
type FsckReport struct {
	Entries int
	Issues  []FsckIssue
}

// Fsck walks the chain with a fresh RawIterator (bypassing any cache, so
// it reports ground truth) and reports invariant violations spec.md §3.3
// names: used <= allocated and name uniqueness. Contiguity itself is
// definitional — RawIterator has no way to land anywhere but
// previous.start+previous.allocated — so there is nothing independent
// left to check for it here. It never repairs anything: spec.md's
// Non-goals exclude in-place compaction, and that extends to automated
// repair.
func (fs *FileSystem) Fsck() (*FsckReport, error) {
	raw := NewRawIterator(fs.dev, fs.log, fs.maxNameLength)
	report := &FsckReport{}
	sectorSize := fs.dev.SectorSize()
	seen := map[string]uint32{}

	if err := raw.Init(); err != nil {
		return nil, err
	}
	for raw.More() {
		h := raw.Header()
		start := raw.StartSector()
		if used := h.Used(sectorSize); used > h.Allocated {
			report.Issues = append(report.Issues, FsckIssue{
				Sector:  start,
				Message: fmt.Sprintf("used %d exceeds allocated %d", used, h.Allocated),
			})
		}
		if !h.Empty() {
			if firstSector, dup := seen[h.Name]; dup {
				report.Issues = append(report.Issues, FsckIssue{
					Sector:  start,
					Message: fmt.Sprintf("duplicate name %q, first seen at sector %d", h.Name, firstSector),
				})
			} else {
				seen[h.Name] = start
			}
		}
		report.Entries++
		if err := raw.Next(); err != nil {
			return report, err
		}
	}
	return report, nil
}
