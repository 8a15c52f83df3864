package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/piwi3910/lazor/internal/model"
	"github.com/piwi3910/lazor/internal/project"
)

func TestPrintArchive(t *testing.T) {
	dir := t.TempDir()
	w, err := project.CreateArchive(dir, project.RunRecord{ID: "run-7", Source: "puzzles", Puzzles: 2, Solved: 1})
	if err != nil {
		t.Fatalf("CreateArchive failed: %v", err)
	}
	entries := []project.ArchiveEntry{
		{
			Puzzle:     project.PuzzleRecord{File: "a.bff", Status: "OK"},
			Placements: "1,1=C",
			Visited:    []model.Point{{X: 1, Y: 2}, {X: 2, Y: 3}, {X: 3, Y: 4}},
		},
		{Puzzle: project.PuzzleRecord{File: "b.bff", Status: "NO_SOLUTION"}},
	}
	for _, e := range entries {
		if err := w.Write(e); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	var buf bytes.Buffer
	if err := printArchive(&buf, project.ArchivePath(dir, "run-7")); err != nil {
		t.Fatalf("printArchive failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header, column row and 2 entries, got %q", buf.String())
	}
	if lines[0] != "run run-7 from puzzles: 1/2 solved" {
		t.Errorf("unexpected summary %q", lines[0])
	}
	if f := strings.Fields(lines[2]); len(f) != 4 || f[0] != "a.bff" || f[2] != "1,1=C" || f[3] != "3" {
		t.Errorf("unexpected solved row %q", lines[2])
	}
	if f := strings.Fields(lines[3]); len(f) != 4 || f[1] != "NO_SOLUTION" || f[2] != "-" || f[3] != "0" {
		t.Errorf("unexpected unsolved row %q", lines[3])
	}
}

func TestPrintArchiveMissing(t *testing.T) {
	var buf bytes.Buffer
	if err := printArchive(&buf, project.ArchivePath(t.TempDir(), "none")); err == nil {
		t.Fatal("expected error for missing archive")
	}
}
