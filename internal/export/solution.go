package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// WriteSolution writes the solved grid in puzzle-file syntax followed by a
// commented verification block. Placed mirrors are written as A whatever
// their orientation; the placement line records the orientation.
func WriteSolution(w io.Writer, s Solved) error {
	if s.Solution == nil {
		return fmt.Errorf("puzzle %q has no solution to write", s.Board.Name)
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "# Solved Board Configuration")
	fmt.Fprintln(bw, "GRID START")
	fmt.Fprintln(bw, s.Solution.String())
	fmt.Fprintln(bw, "GRID STOP")

	targets := make([]string, len(s.Board.Targets))
	for i, p := range s.Board.Targets {
		targets[i] = p.String()
	}
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "# Verify")
	fmt.Fprintf(bw, "# Targets: %s\n", strings.Join(targets, " "))
	fmt.Fprintf(bw, "# Placements: %s\n", s.Solution.Key())
	fmt.Fprintf(bw, "# Hit OK: %t\n", s.Covered())
	fmt.Fprintf(bw, "# Time(s): %.3f\n", s.Elapsed.Seconds())
	return bw.Flush()
}

// SaveSolution writes the solution to path, creating parent directories.
func SaveSolution(path string, s Solved) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create solution directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create solution file: %w", err)
	}
	if err := WriteSolution(f, s); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
