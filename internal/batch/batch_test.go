package batch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/piwi3910/lazor/internal/engine"
	"github.com/piwi3910/lazor/internal/model"
	"github.com/piwi3910/lazor/internal/project"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const solvableBFF = `GRID START
o B o
o o o
o o o
GRID STOP
A 3
C 1
L 4 5 -1 -1
P 1 2
P 6 3
`

const unsolvableBFF = `GRID START
o B o
o o o
o o o
GRID STOP
A 3
C 1
L 2 7 -1 -1
P 3 0
P 4 3
`

const brokenBFF = `A 2
L 1 1 1 1
`

func writePuzzles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0644))
	}
	return dir
}

func testOptions() Options {
	s := engine.DefaultSettings()
	s.ProgressEvery = 0
	return Options{Settings: s, Timeout: time.Minute, WriteSolutions: true}
}

func TestSolveFile_Statuses(t *testing.T) {
	dir := writePuzzles(t, map[string]string{
		"solvable.bff":   solvableBFF,
		"unsolvable.bff": unsolvableBFF,
		"broken.bff":     brokenBFF,
	})
	r := NewRunner(testOptions())
	ctx := context.Background()

	ok := r.SolveFile(ctx, filepath.Join(dir, "solvable.bff"))
	assert.Equal(t, StatusOK, ok.Status)
	assert.NoError(t, ok.Err)
	assert.True(t, ok.Solved())
	assert.Equal(t, filepath.Join(dir, "solvable.sol"), ok.Solution)
	assert.FileExists(t, ok.Solution)

	none := r.SolveFile(ctx, filepath.Join(dir, "unsolvable.bff"))
	assert.Equal(t, StatusNoSolution, none.Status)
	assert.ErrorIs(t, none.Err, engine.ErrNoSolution)
	assert.Empty(t, none.Solution)
	assert.NoFileExists(t, filepath.Join(dir, "unsolvable.sol"))

	broken := r.SolveFile(ctx, filepath.Join(dir, "broken.bff"))
	assert.Equal(t, StatusError, broken.Status)
	assert.Nil(t, broken.Board)
	assert.Error(t, broken.Err)
}

func TestSolveFile_Timeout(t *testing.T) {
	dir := writePuzzles(t, map[string]string{"solvable.bff": solvableBFF})
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	out := NewRunner(testOptions()).SolveFile(ctx, filepath.Join(dir, "solvable.bff"))

	assert.Equal(t, StatusTimeout, out.Status)
	assert.ErrorIs(t, out.Err, context.DeadlineExceeded)
}

func TestSolveFile_HitMiss(t *testing.T) {
	dir := writePuzzles(t, map[string]string{"solvable.bff": solvableBFF})
	r := NewRunner(testOptions())
	r.verify = func(*model.Board, *model.Candidate) bool { return false }

	out := r.SolveFile(context.Background(), filepath.Join(dir, "solvable.bff"))

	assert.Equal(t, StatusHitMiss, out.Status)
	assert.Error(t, out.Err)
	assert.Empty(t, out.Solution, "unconfirmed layouts are not written")
}

func TestSolveFile_OutputDir(t *testing.T) {
	dir := writePuzzles(t, map[string]string{"solvable.bff": solvableBFF})
	opts := testOptions()
	opts.OutputDir = filepath.Join(t.TempDir(), "solutions")

	out := NewRunner(opts).SolveFile(context.Background(), filepath.Join(dir, "solvable.bff"))

	require.Equal(t, StatusOK, out.Status)
	assert.Equal(t, filepath.Join(opts.OutputDir, "solvable.sol"), out.Solution)
	assert.FileExists(t, out.Solution)
}

func TestRun_RecordsHistoryAndArchive(t *testing.T) {
	dir := writePuzzles(t, map[string]string{
		"a.bff": solvableBFF,
		"b.bff": unsolvableBFF,
		"c.bff": brokenBFF,
		"notes": "not a puzzle",
	})
	h, err := project.OpenHistory(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer h.Close()
	archiveDir := t.TempDir()

	rep, err := NewRunner(testOptions()).WithHistory(h).WithArchive(archiveDir).Run(context.Background(), dir)
	require.NoError(t, err)

	require.Len(t, rep.Outcomes, 3)
	assert.Equal(t, []Status{StatusOK, StatusNoSolution, StatusError},
		[]Status{rep.Outcomes[0].Status, rep.Outcomes[1].Status, rep.Outcomes[2].Status})
	assert.Equal(t, 1, rep.Count(StatusOK))
	assert.NotEmpty(t, rep.RunID)

	runs, err := h.RecentRuns(0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, rep.RunID, runs[0].ID)
	assert.Equal(t, 3, runs[0].Puzzles)
	assert.Equal(t, 1, runs[0].Solved)

	puzzles, err := h.Puzzles(rep.RunID)
	require.NoError(t, err)
	require.Len(t, puzzles, 3)
	assert.Equal(t, "a.bff", puzzles[0].File)
	assert.Equal(t, "NO_SOLUTION", puzzles[1].Status)
	assert.NotEmpty(t, puzzles[2].Error)

	run, entries, err := project.ReadArchive(project.ArchivePath(archiveDir, rep.RunID))
	require.NoError(t, err)
	assert.Equal(t, rep.RunID, run.ID)
	require.Len(t, entries, 3)
	assert.Equal(t, rep.Outcomes[0].Result.Solution.Key(), entries[0].Placements)
	assert.NotEmpty(t, entries[0].Visited)
	assert.Empty(t, entries[1].Placements)
}

func TestRun_EmptyDirectory(t *testing.T) {
	_, err := NewRunner(testOptions()).Run(context.Background(), t.TempDir())
	assert.Error(t, err)
}

func TestRunFiles_CancelledStopsEarly(t *testing.T) {
	dir := writePuzzles(t, map[string]string{"a.bff": solvableBFF})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rep, err := NewRunner(testOptions()).RunFiles(ctx, dir, []string{filepath.Join(dir, "a.bff")})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rep.Outcomes)
}

func TestReport_Export(t *testing.T) {
	dir := writePuzzles(t, map[string]string{
		"a.bff": solvableBFF,
		"b.bff": unsolvableBFF,
	})
	rep, err := NewRunner(testOptions()).Run(context.Background(), dir)
	require.NoError(t, err)

	out := t.TempDir()
	written, err := rep.Export(out, []string{
		project.FormatSol, project.FormatXLSX, project.FormatPDF, project.FormatCards, project.FormatDXF,
	})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		filepath.Join(out, "report.xlsx"),
		filepath.Join(out, "solutions.pdf"),
		filepath.Join(out, "cards.pdf"),
		filepath.Join(out, "a.dxf"),
	}, written)
	for _, p := range written {
		assert.FileExists(t, p)
	}

	rows := rep.ReportRows()
	require.Len(t, rows, 2)
	assert.Equal(t, "a.bff", rows[0].File)
	assert.Equal(t, "A=3, B=0, C=1", rows[0].Inventory)
	assert.Equal(t, 8, rows[0].Slots)
	assert.NotEmpty(t, rows[1].Error)
}

func TestReport_ExportUnknownFormat(t *testing.T) {
	_, err := Report{}.Export(t.TempDir(), []string{"png"})
	assert.Error(t, err)
}
