package project

import (
	"os"
	"testing"

	"github.com/piwi3910/lazor/internal/model"
)

func TestArchiveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	run := RunRecord{ID: "run-1", Source: "puzzles", Puzzles: 2, Solved: 1}

	w, err := CreateArchive(dir, run)
	if err != nil {
		t.Fatalf("CreateArchive failed: %v", err)
	}
	entries := []ArchiveEntry{
		{
			Puzzle:     PuzzleRecord{RunID: "run-1", File: "a.bff", Status: "OK"},
			Placements: "1,1=C",
			Visited:    []model.Point{{X: 1, Y: 2}, {X: 4, Y: 3}},
		},
		{Puzzle: PuzzleRecord{RunID: "run-1", File: "b.bff", Status: "NO_SOLUTION", BestHits: 1}},
	}
	for _, e := range entries {
		if err := w.Write(e); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	gotRun, got, err := ReadArchive(ArchivePath(dir, "run-1"))
	if err != nil {
		t.Fatalf("ReadArchive failed: %v", err)
	}
	if gotRun.ID != "run-1" || gotRun.Solved != 1 {
		t.Errorf("unexpected run header %+v", gotRun)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].Placements != "1,1=C" || len(got[0].Visited) != 2 || got[0].Visited[1] != (model.Point{X: 4, Y: 3}) {
		t.Errorf("unexpected first entry %+v", got[0])
	}
	if got[1].Puzzle.Status != "NO_SOLUTION" || got[1].Puzzle.BestHits != 1 {
		t.Errorf("unexpected second entry %+v", got[1])
	}
}

func TestReadArchiveNotCompressed(t *testing.T) {
	path := ArchivePath(t.TempDir(), "plain")
	if err := os.WriteFile(path, []byte(`{"version":1}`+"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := ReadArchive(path); err == nil {
		t.Fatal("expected error for uncompressed archive")
	}
}

func TestReadArchiveMissing(t *testing.T) {
	if _, _, err := ReadArchive(ArchivePath(t.TempDir(), "none")); err == nil {
		t.Fatal("expected error for missing archive")
	}
}
