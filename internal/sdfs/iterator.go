package sdfs

// Iterator is C4: the abstract directory iterator of spec.md §4.3,
// implemented both by RawIterator (C4) and CachedIterator (C5). It is a
// single cursor over the chain that also owns a write mode; nested use is
// undefined (spec.md §5) and not guarded against here — callers borrow an
// iterator exclusively for the duration of one operation.
type Iterator interface {
	// Init positions the cursor at the chain start. If the chain is
	// empty, More() is false and StartSector reports the append-zone
	// sector.
	Init() error

	// More reports whether the cursor currently points at a valid entry.
	More() bool

	// Next advances by the current entry's Allocated sectors and
	// re-validates the header at the new position.
	Next() error

	// Header returns the current entry's decoded header. Only valid
	// while More() is true.
	Header() Header

	// StartSector returns the current cursor position: a valid entry's
	// header sector while More() is true, otherwise the append zone.
	StartSector() uint32

	// GetSector copies the current entry's header sector into buf, for
	// handing to a PayloadReader.
	GetSector(buf []byte) error

	// Remove removes the current entry per spec.md §4.4: coalesced into
	// its predecessor if one exists, otherwise emptied in place.
	Remove() error

	// OpenModifyHeader begins a header-only edit at sector. Subsequent
	// ClearName/SetLength/SetAllocated calls are staged and flushed on
	// Close.
	OpenModifyHeader(sector uint32) error

	// ClearName stages name_len=0 for the open header edit.
	ClearName()

	// SetLength stages a new length for the open header edit.
	SetLength(length uint32)

	// SetAllocated stages a new allocated for the open header edit.
	SetAllocated(allocated uint32)

	// OpenWrite begins a full write: rewrites the header at sector and
	// prepares to receive payload bytes via Append.
	OpenWrite(sector uint32, name string, length, allocated uint32) error

	// Append appends one payload byte. Illegal transitions (Append
	// without OpenWrite) are silently no-ops per spec.md §4.3.
	Append(b byte) error

	// Close flushes any staged header edit and any partial sector
	// (zero-padded), then advances the cursor to one past the last
	// written sector.
	Close() error
}
