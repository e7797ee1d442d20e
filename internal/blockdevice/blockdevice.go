// Package blockdevice is the SDFS block device abstraction (spec.md §6.1):
// two synchronous operations over fixed-size sectors, opaque to the
// directory-and-allocation engine that sits on top of it.
package blockdevice

import (
	"github.com/pkg/errors"

	"sdfs/internal/sdfserr"
)

// MinSectorSize is the smallest sector size the core supports (spec.md
// §3.1: "the core must be parametric over S ≥ 64").
const MinSectorSize = 64

// Device is the block device contract of spec.md §6.1.
type Device interface {
	// SectorSize returns S, the fixed sector size in bytes.
	SectorSize() int

	// ReadSector fills buf[0:SectorSize()] with the contents of sector n.
	// buf must be at least SectorSize() bytes.
	ReadSector(n uint32, buf []byte) error

	// WriteSector writes exactly SectorSize() bytes from buf to sector n.
	// Implementations must make a single WriteSector call atomic at the
	// sector granularity (spec.md §6.1) to the extent the underlying
	// storage allows.
	WriteSector(n uint32, buf []byte) error

	// Sync flushes any buffering to the underlying storage.
	Sync() error
}

func validateSectorSize(s int) error {
	if s < MinSectorSize {
		return errors.Wrapf(sdfserr.ErrDevice, "sector size %d below minimum %d", s, MinSectorSize)
	}
	return nil
}
