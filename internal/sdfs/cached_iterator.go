package sdfs

import (
	"github.com/pkg/errors"

	"sdfs/internal/blockdevice"
	"sdfs/internal/sdfserr"
	"sdfs/internal/sdfslog"
)

// cacheNode is one entry of the singly-linked mirror of the on-disk chain,
// ordered by start sector. Per spec.md §9/§4.5: no back-pointers — a
// removal's predecessor is tracked by the scan cursor, not by the node.
type cacheNode struct {
	header      Header
	startSector uint32
	next        *cacheNode
}

// CachedIterator is C5: an in-memory mirror of the chain that performs the
// same operations as RawIterator, write-through to an embedded raw
// iterator so the device stays the source of truth (spec.md §4.5). It is
// a direct port of original_source/software/SDfs.cpp's
// CachingDirectoryIterator.
type CachedIterator struct {
	dev           blockdevice.Device
	raw           *RawIterator
	log           sdfslog.Logger
	maxNameLength int

	first        *cacheNode
	it           *cacheNode
	previous     *cacheNode
	appendSector uint32

	openForWrite bool
}

// NewCachedIterator performs one full scan of dev via an embedded raw
// iterator and snapshots every header into the cache.
func NewCachedIterator(dev blockdevice.Device, log sdfslog.Logger, maxNameLength int) (*CachedIterator, error) {
	if log == nil {
		log = sdfslog.Noop{}
	}
	c := &CachedIterator{
		dev:           dev,
		raw:           NewRawIterator(dev, log, maxNameLength),
		log:           log,
		maxNameLength: maxNameLength,
	}
	if err := c.rebuild(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *CachedIterator) rebuild() error {
	if err := c.raw.Init(); err != nil {
		return err
	}
	ref := &c.first
	for c.raw.More() {
		node := &cacheNode{header: c.raw.Header(), startSector: c.raw.StartSector()}
		*ref = node
		ref = &node.next
		if err := c.raw.Next(); err != nil {
			return err
		}
	}
	c.appendSector = c.raw.StartSector()
	return nil
}

func (c *CachedIterator) Init() error {
	c.previous = nil
	c.it = c.first
	return nil
}

func (c *CachedIterator) Next() error {
	c.previous = c.it
	if c.it != nil {
		c.it = c.it.next
	}
	return nil
}

func (c *CachedIterator) More() bool { return c.it != nil }

func (c *CachedIterator) Header() Header {
	if c.it == nil {
		return Header{}
	}
	return c.it.header
}

func (c *CachedIterator) StartSector() uint32 {
	if c.it != nil {
		return c.it.startSector
	}
	return c.appendSector
}

func (c *CachedIterator) GetSector(buf []byte) error {
	if c.it == nil {
		return errors.New("sdfs: GetSector with no current cached entry")
	}
	return c.dev.ReadSector(c.it.startSector, buf)
}

// Remove unlinks the current node: coalesced into the predecessor's
// cached entry when one exists, otherwise cleared in place, each time
// write-through via OpenModifyHeader/SetAllocated-or-Clear/Close on the
// embedded raw iterator (spec.md §4.5).
func (c *CachedIterator) Remove() error {
	if c.it == nil {
		return nil
	}
	if c.previous != nil {
		removed := c.it
		c.previous.next = removed.next
		c.previous.header.Allocated += removed.header.Allocated
		c.it = c.previous
		c.previous = nil

		if err := c.raw.OpenModifyHeader(c.it.startSector); err != nil {
			return err
		}
		c.raw.SetAllocated(c.it.header.Allocated)
		return c.raw.Close()
	}

	c.it.header.Name = ""
	c.it.header.Length = 0
	if err := c.raw.OpenModifyHeader(c.it.startSector); err != nil {
		return err
	}
	c.raw.ClearName()
	c.raw.SetLength(0)
	return c.raw.Close()
}

func (c *CachedIterator) OpenModifyHeader(sector uint32) error {
	c.previous = nil
	if c.it == nil || c.it.startSector > sector {
		c.it = c.first
	}
	for c.it != nil && c.it.startSector <= sector {
		if c.it.startSector == sector {
			if err := c.raw.OpenModifyHeader(sector); err != nil {
				return err
			}
			c.openForWrite = true
			return nil
		}
		c.it = c.it.next
	}
	c.log.Errorf("sdfs: OpenModifyHeader on non-existing cache header at %d", sector)
	return errors.Wrap(sdfserr.ErrCorruptHeader, "no cached entry at sector")
}

func (c *CachedIterator) ClearName() {
	if !c.openForWrite {
		return
	}
	c.raw.ClearName()
	c.it.header.Name = ""
}

func (c *CachedIterator) SetLength(length uint32) {
	if !c.openForWrite {
		return
	}
	c.raw.SetLength(length)
	c.it.header.Length = length
}

func (c *CachedIterator) SetAllocated(allocated uint32) {
	if !c.openForWrite {
		return
	}
	c.raw.SetAllocated(allocated)
	c.it.header.Allocated = allocated
}

// OpenWrite inserts a new cache node ordered by start sector, or updates
// the existing node in place when sector is already cached (spec.md
// §4.5).
func (c *CachedIterator) OpenWrite(sector uint32, name string, length, allocated uint32) error {
	c.previous = nil
	ref := &c.first
	for *ref != nil && (*ref).startSector <= sector {
		if (*ref).startSector == sector {
			node := *ref
			if err := c.raw.OpenWrite(sector, name, length, allocated); err != nil {
				return err
			}
			node.header = c.raw.Header()
			c.it = node
			c.openForWrite = true
			return nil
		}
		ref = &(*ref).next
	}

	if err := c.raw.OpenWrite(sector, name, length, allocated); err != nil {
		return err
	}
	node := &cacheNode{header: c.raw.Header(), startSector: sector, next: *ref}
	*ref = node
	c.it = node
	c.openForWrite = true
	return nil
}

func (c *CachedIterator) Append(b byte) error {
	if !c.openForWrite {
		return nil
	}
	return c.raw.Append(b)
}

func (c *CachedIterator) Close() error {
	if !c.openForWrite {
		return nil
	}
	if err := c.raw.Close(); err != nil {
		return err
	}
	c.openForWrite = false
	if c.raw.StartSector() > c.appendSector {
		c.appendSector = c.raw.StartSector()
	}
	return nil
}
