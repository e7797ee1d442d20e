package journal

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"time"

	"sdfs/internal/sdfs"
	"sdfs/internal/sdfslog"
)

// Clock is injected so Process is deterministic under test; defaults to
// time.Now.
type Clock func() time.Time

// Rewriter replays a parsed sync log against a filesystem facade,
// grounded on SyncLog::process in
// original_source/software/SDfs.cpp.
type Rewriter struct {
	fs    *sdfs.FileSystem
	dir   string
	clock Clock
	log   sdfslog.Logger
}

// NewRewriter builds a Rewriter. dir is the staging directory holding
// the files named by add records. clock and log may be nil (time.Now
// and a no-op sink respectively).
func NewRewriter(fs *sdfs.FileSystem, dir string, clock Clock, log sdfslog.Logger) *Rewriter {
	if clock == nil {
		clock = time.Now
	}
	if log == nil {
		log = sdfslog.Noop{}
	}
	return &Rewriter{fs: fs, dir: dir, clock: clock, log: log}
}

// Process applies each record to the filesystem and writes its
// resolution to w:
//   - remove: always rewritten as "remove NAME" (removal is idempotent,
//     spec.md §4.6).
//   - add: on success, rewritten as a SyncedRecord stamped with the
//     current date/minute; on failure to read the staged file or write
//     it, rewritten unchanged so the next run retries it.
//   - already synced: passed through unchanged.
func (rw *Rewriter) Process(records []Record, w io.Writer) error {
	for _, rec := range records {
		switch r := rec.(type) {
		case RemoveRecord:
			if err := rw.fs.RemoveFile(r.Name); err != nil {
				return err
			}
			if err := WriteRecord(w, r); err != nil {
				return err
			}

		case AddRecord:
			data, err := os.ReadFile(filepath.Join(rw.dir, r.Name))
			if err != nil {
				rw.log.Warnf("journal: cannot read staged file %q: %v", r.Name, err)
				if werr := WriteRecord(w, r); werr != nil {
					return werr
				}
				continue
			}
			if err := rw.fs.WriteFile(r.Name, data); err != nil {
				rw.log.Warnf("journal: write %q failed: %v", r.Name, err)
				if werr := WriteRecord(w, r); werr != nil {
					return werr
				}
				continue
			}
			now := rw.clock()
			synced := SyncedRecord{
				Name:   r.Name,
				Date:   now.Year()*10000 + int(now.Month())*100 + now.Day(),
				Minute: now.Hour()*60 + now.Minute(),
			}
			if err := WriteRecord(w, synced); err != nil {
				return err
			}

		case SyncedRecord:
			if err := WriteRecord(w, r); err != nil {
				return err
			}
		}
	}
	return nil
}

// CompareResult is one outcome of Compare: a staged file checked against
// what's actually stored.
type CompareResult struct {
	Name         string
	Status       string // "ok", "missing", "length_mismatch", "content_mismatch", "local_read_error"
	StoredLength uint32
	LocalLength  int
}

// Compare checks every record's named file against the stored copy,
// grounded on SyncLog::compare. It never mutates the filesystem.
func (rw *Rewriter) Compare(records []Record) ([]CompareResult, error) {
	var out []CompareResult
	seen := map[string]bool{}
	for _, rec := range records {
		name := rec.recordName()
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		reader, found, err := rw.fs.OpenReadStream(name)
		if err != nil {
			return out, err
		}
		if !found {
			out = append(out, CompareResult{Name: name, Status: "missing"})
			continue
		}
		stored, err := sdfs.ReadAll(reader)
		if err != nil {
			return out, err
		}
		local, err := os.ReadFile(filepath.Join(rw.dir, name))
		if err != nil {
			out = append(out, CompareResult{Name: name, Status: "local_read_error", StoredLength: uint32(len(stored))})
			continue
		}
		if len(stored) != len(local) {
			out = append(out, CompareResult{Name: name, Status: "length_mismatch", StoredLength: uint32(len(stored)), LocalLength: len(local)})
			continue
		}
		if !bytes.Equal(stored, local) {
			out = append(out, CompareResult{Name: name, Status: "content_mismatch", StoredLength: uint32(len(stored)), LocalLength: len(local)})
			continue
		}
		out = append(out, CompareResult{Name: name, Status: "ok", StoredLength: uint32(len(stored)), LocalLength: len(local)})
	}
	return out, nil
}
