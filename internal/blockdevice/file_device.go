package blockdevice

import (
	"io"
	"os"

	"github.com/pkg/errors"

	"sdfs/internal/sdfserr"
)

// FileDevice backs Device with a regular file: sector n lives at byte
// offset n * SectorSize, exactly as original_source/software/SDfs.cpp's
// FileBlockDevice (lseek + read/write of SECTOR_SIZE bytes per call).
type FileDevice struct {
	f          *os.File
	sectorSize int
}

// OpenFileDevice opens an existing file for read/write sector access.
func OpenFileDevice(path string, sectorSize int) (*FileDevice, error) {
	if err := validateSectorSize(sectorSize); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, sdfserr.WrapDevice(err, "open device file")
	}
	return &FileDevice{f: f, sectorSize: sectorSize}, nil
}

// CreateFileDevice creates (or truncates) path to hold sectorCount sectors
// of sectorSize bytes each, zero-filled. This is the backing operation for
// `sdfsctl mkfs`.
func CreateFileDevice(path string, sectorSize int, sectorCount uint32) (*FileDevice, error) {
	if err := validateSectorSize(sectorSize); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, sdfserr.WrapDevice(err, "create device file")
	}
	size := int64(sectorSize) * int64(sectorCount)
	if err := f.Truncate(size); err != nil {
		f.Close()
		return nil, sdfserr.WrapDevice(err, "truncate device file")
	}
	return &FileDevice{f: f, sectorSize: sectorSize}, nil
}

func (d *FileDevice) SectorSize() int { return d.sectorSize }

// ReadSector zero-fills buf before reading, matching FileBlockDevice's
// readBlock, which clears the sector before the read call so a short read
// past EOF (the unwritten append zone) still decodes as an invalid,
// all-zero header rather than leftover buffer contents.
func (d *FileDevice) ReadSector(n uint32, buf []byte) error {
	if len(buf) < d.sectorSize {
		return errors.New("sdfs: read buffer smaller than sector size")
	}
	for i := range buf[:d.sectorSize] {
		buf[i] = 0
	}
	off := int64(n) * int64(d.sectorSize)
	_, err := d.f.ReadAt(buf[:d.sectorSize], off)
	if err != nil && !errors.Is(err, io.EOF) {
		return sdfserr.WrapDevice(err, "read sector")
	}
	return nil
}

func (d *FileDevice) WriteSector(n uint32, buf []byte) error {
	if len(buf) < d.sectorSize {
		return errors.New("sdfs: write buffer smaller than sector size")
	}
	off := int64(n) * int64(d.sectorSize)
	nw, err := d.f.WriteAt(buf[:d.sectorSize], off)
	if err != nil {
		return sdfserr.WrapDevice(err, "write sector")
	}
	if nw != d.sectorSize {
		return errors.Wrap(sdfserr.ErrDevice, "short sector write")
	}
	return nil
}

func (d *FileDevice) Sync() error {
	if err := d.f.Sync(); err != nil {
		return sdfserr.WrapDevice(err, "sync device file")
	}
	return nil
}

// Close releases the underlying file handle.
func (d *FileDevice) Close() error {
	return d.f.Close()
}
