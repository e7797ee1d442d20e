// Package sdfserr categorizes the failure modes described in spec.md §7:
// device failures, format corruption, caller misuse, and oversized writes.
package sdfserr

import "github.com/pkg/errors"

// Sentinel categories. Use errors.Is against these, not string matching.
var (
	// ErrDevice means read_sector/write_sector returned failure.
	ErrDevice = errors.New("sdfs: block device operation failed")

	// ErrCorruptHeader means no valid header (magic, name termination,
	// checksum) was found where one is expected. A scan treats an invalid
	// header as chain termination and never returns it; it comes from
	// OpenModifyHeader on either iterator and from RawIterator.Remove when
	// the predecessor header fails validation.
	ErrCorruptHeader = errors.New("sdfs: corrupt directory header")

	// ErrMisuse means the caller violated the iterator's write protocol
	// (append without open_write, set_* after append). Per spec.md §4.3 the
	// core swallows this as a no-op after logging; it is exported so higher
	// layers that want to escalate may do so explicitly.
	ErrMisuse = errors.New("sdfs: iterator protocol misuse")

	// ErrOversized means a write would overflow the 24-bit allocated/length
	// fields (spec.md §9 open question, resolved: reject explicitly).
	ErrOversized = errors.New("sdfs: write exceeds 24-bit field capacity")

	// ErrNotFound means a named entry does not exist. RemoveFile does not
	// treat this as an error (spec.md §4.6); OpenReadStream callers check its found result.
	ErrNotFound = errors.New("sdfs: entry not found")
)

// WrapDevice wraps an underlying I/O error as ErrDevice, preserving it for
// errors.As unwrapping while tagging the category for errors.Is(ErrDevice).
func WrapDevice(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(joinCategory(ErrDevice, err), msg)
}

// WrapOversized reports a write that would not fit the on-disk field width.
func WrapOversized(msg string) error {
	return errors.WithMessage(ErrOversized, msg)
}

// categoryErr lets errors.Is match the sentinel while errors.Unwrap still
// reaches the underlying cause.
type categoryErr struct {
	category error
	cause    error
}

func joinCategory(category, cause error) error {
	return &categoryErr{category: category, cause: cause}
}

func (e *categoryErr) Error() string { return e.category.Error() + ": " + e.cause.Error() }
func (e *categoryErr) Unwrap() error { return e.cause }
func (e *categoryErr) Is(target error) bool {
	return target == e.category
}
