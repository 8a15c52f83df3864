// Lazor: laser-reflection puzzle solver
//
// Reads .bff puzzle files, searches block placements until every target is
// on a beam, and writes the solved board with optional diagrams and reports.
//
// Build:
//   go build -o lazor ./cmd/lazor
//
// Usage:
//   lazor solve [flags] puzzle.bff
//   lazor batch [flags] dir
//   lazor simulate puzzle.bff
//   lazor compare [flags] puzzle.bff
//   lazor history [-n 10] [-run id] [-archive id]
//   lazor backup export|import file.json

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/piwi3910/lazor/internal/batch"
	"github.com/piwi3910/lazor/internal/engine"
	"github.com/piwi3910/lazor/internal/importer"
	"github.com/piwi3910/lazor/internal/logging"
	"github.com/piwi3910/lazor/internal/project"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	var code int
	switch os.Args[1] {
	case "solve":
		code = solveCmd(ctx, os.Args[2:])
	case "batch":
		code = batchCmd(ctx, os.Args[2:])
	case "simulate":
		code = simulateCmd(os.Args[2:])
	case "compare":
		code = compareCmd(ctx, os.Args[2:])
	case "history":
		code = historyCmd(os.Args[2:])
	case "backup":
		code = backupCmd(os.Args[2:])
	case "-h", "-help", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", os.Args[1])
		usage()
		code = 2
	}
	stop()
	os.Exit(code)
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: lazor <command> [flags] [args]

commands:
  solve     solve one puzzle file
  batch     solve every .bff file in a directory
  simulate  trace the lasers on a puzzle without placing blocks
  compare   solve one puzzle under several search settings
  history   list recent runs or one archived run
  backup    export or import config and history`)
}

// runFlags are shared by the commands that solve puzzles.
type runFlags struct {
	fs        *flag.FlagSet
	config    *string
	logLevel  *string
	workers   *int
	cache     *bool
	order     *bool
	timeout   *time.Duration
	out       *string
	formats   *string
	noHistory *bool
}

func newRunFlags(name string) *runFlags {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	return &runFlags{
		fs:        fs,
		config:    fs.String("config", project.DefaultConfigPath(), "config file"),
		logLevel:  fs.String("log", "", "log level (debug, info, warn, error)"),
		workers:   fs.Int("workers", 0, "parallel search workers"),
		cache:     fs.Bool("cache", false, "skip layouts already simulated"),
		order:     fs.Bool("order", true, "order slots by beam and target proximity"),
		timeout:   fs.Duration("timeout", 0, "per-puzzle time limit"),
		out:       fs.String("out", "", "output directory"),
		formats:   fs.String("formats", "", "comma-separated outputs: sol,pdf,cards,dxf,xlsx"),
		noHistory: fs.Bool("no-history", false, "do not record the run"),
	}
}

// load reads the config file and applies the flags the user set.
func (f *runFlags) load() (project.AppConfig, error) {
	cfg, err := project.LoadAppConfig(*f.config)
	if err != nil {
		return cfg, err
	}
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "log":
			cfg.LogLevel = *f.logLevel
		case "workers":
			cfg.Solver.Workers = *f.workers
		case "cache":
			cfg.Solver.StateCache = *f.cache
		case "order":
			cfg.Solver.OrderSlots = *f.order
		case "timeout":
			cfg.BatchTimeoutSeconds = int(f.timeout.Seconds())
		case "out":
			cfg.OutputDir = *f.out
		case "formats":
			cfg.Formats = splitList(*f.formats)
		}
	})
	if *f.noHistory {
		cfg.HistoryDB, cfg.ArchiveDir = "", ""
	}
	if err := logging.SetLevel(cfg.LogLevel); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func settingsFrom(cfg project.AppConfig) engine.Settings {
	s := engine.DefaultSettings()
	cfg.ApplyToSettings(&s)
	return s
}

// newRunner builds a batch runner with history and archive per the config.
// The returned close function releases the history database.
func newRunner(cfg project.AppConfig) (*batch.Runner, func(), error) {
	r := batch.NewRunner(batch.Options{
		Settings:       settingsFrom(cfg),
		Timeout:        cfg.BatchTimeout(),
		OutputDir:      cfg.OutputDir,
		WriteSolutions: cfg.HasFormat(project.FormatSol),
	})
	closeFn := func() {}
	if cfg.HistoryDB != "" {
		h, err := project.OpenHistory(cfg.HistoryDB)
		if err != nil {
			return nil, nil, err
		}
		r.WithHistory(h)
		closeFn = func() { _ = h.Close() }
	}
	if cfg.ArchiveDir != "" {
		r.WithArchive(cfg.ArchiveDir)
	}
	return r, closeFn, nil
}

func solveCmd(ctx context.Context, args []string) int {
	f := newRunFlags("solve")
	_ = f.fs.Parse(args)
	if f.fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: lazor solve [flags] puzzle.bff")
		return 2
	}
	path := f.fs.Arg(0)
	cfg, err := f.load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		return 1
	}

	r, closeFn, err := newRunner(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "history:", err)
		return 1
	}
	defer closeFn()

	rep, err := r.RunFiles(ctx, path, []string{path})
	if err != nil && len(rep.Outcomes) == 0 {
		fmt.Fprintln(os.Stderr, "solve:", err)
		return 1
	}
	o := rep.Outcomes[0]
	if o.Board != nil {
		fmt.Print(o.Board.Summary())
		fmt.Printf("Placeable cells: %d\n\n", o.Result.Stats.Slots)
	}
	fmt.Printf("Status: %s (%.3fs, %d candidates)\n", o.Status, o.Elapsed.Seconds(), o.Result.Stats.Candidates)
	switch {
	case o.Solved():
		fmt.Println(o.Result.Solution.String())
		if o.Solution != "" {
			fmt.Println("Wrote", o.Solution)
		}
	case o.Err != nil:
		fmt.Println("Reason:", o.Err)
		if o.Result.Stats.BestLayout != "" {
			fmt.Printf("Best layout (%d/%d targets):\n%s\n", o.Result.Stats.BestHits, o.Result.Stats.Targets, o.Result.Stats.BestLayout)
		}
	}

	if code := exportArtifacts(rep, cfg, filepath.Dir(path)); code != 0 {
		return code
	}
	if !o.Solved() {
		return 1
	}
	return 0
}

func batchCmd(ctx context.Context, args []string) int {
	f := newRunFlags("batch")
	_ = f.fs.Parse(args)
	if f.fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: lazor batch [flags] dir")
		return 2
	}
	dir := f.fs.Arg(0)
	cfg, err := f.load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		return 1
	}

	r, closeFn, err := newRunner(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "history:", err)
		return 1
	}
	defer closeFn()

	rep, err := r.Run(ctx, dir)
	if err != nil && len(rep.Outcomes) == 0 {
		fmt.Fprintln(os.Stderr, "batch:", err)
		return 1
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "batch stopped:", err)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tSTATUS\tTIME(S)\tINVENTORY\tSLOTS\tCANDIDATES")
	for _, row := range rep.ReportRows() {
		fmt.Fprintf(tw, "%s\t%s\t%.3f\t%s\t%d\t%d\n",
			row.File, row.Status, row.Elapsed.Seconds(), row.Inventory, row.Slots, row.Candidates)
	}
	_ = tw.Flush()
	fmt.Printf("\n%d/%d solved in %.2fs (run %s)\n",
		rep.Count(batch.StatusOK), len(rep.Outcomes), rep.Elapsed.Seconds(), rep.RunID)

	return exportArtifacts(rep, cfg, dir)
}

// exportArtifacts writes the run-level outputs next to the puzzles unless an
// output directory is configured.
func exportArtifacts(rep batch.Report, cfg project.AppConfig, fallback string) int {
	dir := cfg.OutputDir
	if dir == "" {
		dir = fallback
	}
	written, err := rep.Export(dir, cfg.Formats)
	for _, p := range written {
		fmt.Println("Wrote", p)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "export:", err)
		return 1
	}
	return 0
}

func simulateCmd(args []string) int {
	fs := flag.NewFlagSet("simulate", flag.ExitOnError)
	logLevel := fs.String("log", "info", "log level")
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: lazor simulate puzzle.bff")
		return 2
	}
	if err := logging.SetLevel(*logLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	b, err := importer.LoadBoard(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, "load:", err)
		return 1
	}
	visited := engine.Simulate(b)
	fmt.Print(b.Summary())

	points := visited.Sorted()
	parts := make([]string, len(points))
	for i, p := range points {
		parts[i] = p.String()
	}
	fmt.Printf("Visited (%d): %s\n", len(points), strings.Join(parts, " "))
	fmt.Printf("Targets hit: %d/%d\n", visited.CountOf(b.Targets), len(b.Targets))
	return 0
}

func compareCmd(ctx context.Context, args []string) int {
	f := newRunFlags("compare")
	_ = f.fs.Parse(args)
	if f.fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: lazor compare [flags] puzzle.bff")
		return 2
	}
	cfg, err := f.load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		return 1
	}
	b, err := importer.LoadBoard(f.fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, "load:", err)
		return 1
	}

	if t := cfg.BatchTimeout(); t > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t)
		defer cancel()
	}

	results := engine.CompareScenarios(ctx, engine.BuildDefaultScenarios(settingsFrom(cfg)), b)
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SCENARIO\tSOLVED\tCANDIDATES\tTIME(S)\tNOTE")
	for _, r := range results {
		note := ""
		if r.Err != nil {
			note = r.Err.Error()
		}
		fmt.Fprintf(tw, "%s\t%t\t%d\t%.3f\t%s\n", r.Scenario.Name, r.Solved, r.Candidates, r.Elapsed.Seconds(), note)
	}
	_ = tw.Flush()
	return 0
}

func historyCmd(args []string) int {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	configPath := fs.String("config", project.DefaultConfigPath(), "config file")
	limit := fs.Int("n", 10, "number of runs to list, 0 for all")
	runID := fs.String("run", "", "show the puzzles of one run")
	archiveID := fs.String("archive", "", "show the archived layouts of one run")
	_ = fs.Parse(args)

	cfg, err := project.LoadAppConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		return 1
	}
	if *archiveID != "" {
		if cfg.ArchiveDir == "" {
			fmt.Fprintln(os.Stderr, "archives are disabled in the config")
			return 1
		}
		if err := printArchive(os.Stdout, project.ArchivePath(cfg.ArchiveDir, *archiveID)); err != nil {
			fmt.Fprintln(os.Stderr, "archive:", err)
			return 1
		}
		return 0
	}
	if cfg.HistoryDB == "" {
		fmt.Fprintln(os.Stderr, "history is disabled in the config")
		return 1
	}
	h, err := project.OpenHistory(cfg.HistoryDB)
	if err != nil {
		fmt.Fprintln(os.Stderr, "history:", err)
		return 1
	}
	defer h.Close()

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	if *runID != "" {
		puzzles, err := h.Puzzles(*runID)
		if err != nil {
			fmt.Fprintln(os.Stderr, "history:", err)
			return 1
		}
		fmt.Fprintln(tw, "FILE\tSTATUS\tTIME(S)\tCANDIDATES\tBEST HITS\tERROR")
		for _, p := range puzzles {
			fmt.Fprintf(tw, "%s\t%s\t%.3f\t%d\t%d\t%s\n", p.File, p.Status, p.Elapsed, p.Candidates, p.BestHits, p.Error)
		}
		return 0
	}

	runs, err := h.RecentRuns(*limit)
	if err != nil {
		fmt.Fprintln(os.Stderr, "history:", err)
		return 1
	}
	fmt.Fprintln(tw, "RUN\tSTARTED\tSOURCE\tSOLVED\tTIME(S)")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\t%.2f\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime), r.Source, r.Solved, r.Puzzles, r.Elapsed)
	}
	return 0
}

// printArchive lists the puzzles stored in one run archive.
func printArchive(w io.Writer, path string) error {
	run, entries, err := project.ReadArchive(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "run %s from %s: %d/%d solved\n", run.ID, run.Source, run.Solved, run.Puzzles)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tSTATUS\tPLACEMENTS\tVISITED")
	for _, e := range entries {
		placements := e.Placements
		if placements == "" {
			placements = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", e.Puzzle.File, e.Puzzle.Status, placements, len(e.Visited))
	}
	return tw.Flush()
}

func backupCmd(args []string) int {
	fs := flag.NewFlagSet("backup", flag.ExitOnError)
	configPath := fs.String("config", project.DefaultConfigPath(), "config file")
	_ = fs.Parse(args)
	if fs.NArg() != 2 || (fs.Arg(0) != "export" && fs.Arg(0) != "import") {
		fmt.Fprintln(os.Stderr, "usage: lazor backup export|import file.json")
		return 2
	}
	path := fs.Arg(1)

	cfg, err := project.LoadAppConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		return 1
	}
	var h *project.History
	if cfg.HistoryDB != "" {
		if h, err = project.OpenHistory(cfg.HistoryDB); err != nil {
			fmt.Fprintln(os.Stderr, "history:", err)
			return 1
		}
		defer h.Close()
	}

	if fs.Arg(0) == "export" {
		if err := project.ExportAllData(path, cfg, h); err != nil {
			fmt.Fprintln(os.Stderr, "backup:", err)
			return 1
		}
		fmt.Println("Wrote", path)
		return 0
	}

	backup, err := project.ImportAllData(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "backup:", err)
		return 1
	}
	if err := project.SaveAppConfig(*configPath, backup.Config); err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		return 1
	}
	added := 0
	if h != nil {
		if added, err = project.RestoreHistory(h, backup); err != nil {
			fmt.Fprintln(os.Stderr, "history:", err)
			return 1
		}
	}
	fmt.Printf("Restored config and %d of %d runs\n", added, len(backup.Runs))
	return 0
}
