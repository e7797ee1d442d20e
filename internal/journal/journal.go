// Package journal implements C10: the host sync log driver described in
// spec.md §6.3 and grounded on
// original_source/software/SDfs.cpp's SyncLog/SDIterator classes. A
// staging directory accumulates "add NAME" / "remove NAME" lines (one per
// pending change) appended by an external tool; Process replays them
// against an sdfs.FileSystem and rewrites the log with each entry
// resolved to either a removal confirmation or a synced timestamp.
package journal

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Record is one line of a sync log: a pending add, a pending remove, or
// an already-synced entry stamped with the date/time it was written.
type Record interface {
	recordName() string
}

// AddRecord requests that a staged file be written into the filesystem.
type AddRecord struct{ Name string }

// RemoveRecord requests that a stored file be deleted.
type RemoveRecord struct{ Name string }

// SyncedRecord marks a file already written, carrying the sync
// timestamp as the original's "fd fm" fields: fd is a YYYYMMDD date, fm
// is minutes since midnight.
type SyncedRecord struct {
	Name   string
	Date   int
	Minute int
}

func (r AddRecord) recordName() string    { return r.Name }
func (r RemoveRecord) recordName() string { return r.Name }
func (r SyncedRecord) recordName() string { return r.Name }

// ParseLog reads a sync log in the original's line format, tolerant of
// LF, CR, and CRLF terminators. Malformed lines are skipped rather than
// aborting the whole parse — a damaged line shouldn't lose every record
// after it.
func ParseLog(r io.Reader) ([]Record, error) {
	var records []Record
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	text := strings.ReplaceAll(string(raw), "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 256), 4096)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "add "):
			records = append(records, AddRecord{Name: line[len("add "):]})
		case strings.HasPrefix(line, "remove "):
			records = append(records, RemoveRecord{Name: line[len("remove "):]})
		default:
			if rec, ok := parseSyncedLine(line); ok {
				records = append(records, rec)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return records, err
	}
	return records, nil
}

func parseSyncedLine(line string) (SyncedRecord, bool) {
	fields := strings.SplitN(line, " ", 3)
	if len(fields) != 3 {
		return SyncedRecord{}, false
	}
	date, err := strconv.Atoi(fields[0])
	if err != nil {
		return SyncedRecord{}, false
	}
	minute, err := strconv.Atoi(fields[1])
	if err != nil {
		return SyncedRecord{}, false
	}
	return SyncedRecord{Date: date, Minute: minute, Name: fields[2]}, true
}

// WriteRecord appends one record to w in the original's CRLF-terminated
// format.
func WriteRecord(w io.Writer, rec Record) error {
	switch r := rec.(type) {
	case AddRecord:
		_, err := fmt.Fprintf(w, "add %s\r\n", r.Name)
		return err
	case RemoveRecord:
		_, err := fmt.Fprintf(w, "remove %s\r\n", r.Name)
		return err
	case SyncedRecord:
		_, err := fmt.Fprintf(w, "%d %d %s\r\n", r.Date, r.Minute, r.Name)
		return err
	default:
		return fmt.Errorf("journal: unknown record type %T", rec)
	}
}
