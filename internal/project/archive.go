package project

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/piwi3910/lazor/internal/model"
)

// ArchiveEntry is one line of a run archive.
type ArchiveEntry struct {
	Puzzle     PuzzleRecord  `json:"puzzle"`
	Placements string        `json:"placements,omitempty"`
	Visited    []model.Point `json:"visited,omitempty"`
}

// archiveHeader is the first line of every archive.
type archiveHeader struct {
	Version int       `json:"version"`
	Run     RunRecord `json:"run"`
}

const archiveVersion = 1

// ArchivePath returns the archive file for a run inside dir.
func ArchivePath(dir, runID string) string {
	return filepath.Join(dir, runID+".jsonl.zst")
}

// ArchiveWriter streams a run's entries to a zstd-compressed JSONL file.
type ArchiveWriter struct {
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
}

// CreateArchive creates the archive for run in dir and writes its header.
func CreateArchive(dir string, run RunRecord) (*ArchiveWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}
	f, err := os.Create(ArchivePath(dir, run.ID))
	if err != nil {
		return nil, fmt.Errorf("failed to create archive: %w", err)
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to start compressor: %w", err)
	}
	a := &ArchiveWriter{f: f, enc: enc, w: bufio.NewWriterSize(enc, 128*1024)}
	if err := a.writeLine(archiveHeader{Version: archiveVersion, Run: run}); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

// Write appends one entry.
func (a *ArchiveWriter) Write(e ArchiveEntry) error {
	return a.writeLine(e)
}

func (a *ArchiveWriter) writeLine(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode archive entry: %w", err)
	}
	if _, err := a.w.Write(b); err != nil {
		return err
	}
	return a.w.WriteByte('\n')
}

// Close flushes and closes the archive.
func (a *ArchiveWriter) Close() error {
	var errs []error
	if a.w != nil {
		errs = append(errs, a.w.Flush())
		a.w = nil
	}
	if a.enc != nil {
		errs = append(errs, a.enc.Close())
		a.enc = nil
	}
	if a.f != nil {
		errs = append(errs, a.f.Close())
		a.f = nil
	}
	return errors.Join(errs...)
}

// ReadArchive loads a run archive written by ArchiveWriter.
func ReadArchive(path string) (RunRecord, []ArchiveEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return RunRecord{}, nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return RunRecord{}, nil, fmt.Errorf("failed to start decompressor: %w", err)
	}
	defer dec.Close()

	d := json.NewDecoder(bufio.NewReaderSize(dec, 128*1024))
	var h archiveHeader
	if err := d.Decode(&h); err != nil {
		return RunRecord{}, nil, fmt.Errorf("%s: bad header: %w", path, err)
	}
	if h.Version != archiveVersion {
		return RunRecord{}, nil, fmt.Errorf("%s: unsupported archive version %d", path, h.Version)
	}

	var entries []ArchiveEntry
	for {
		var e ArchiveEntry
		if err := d.Decode(&e); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return RunRecord{}, nil, fmt.Errorf("%s: entry %d: %w", path, len(entries)+1, err)
		}
		entries = append(entries, e)
	}
	return h.Run, entries, nil
}
