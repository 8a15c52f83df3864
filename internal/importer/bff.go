// Package importer reads Lazor puzzle files (.bff). It tolerates comments,
// unicode dashes and the "=1" misprint of "-1", and reports malformed lines
// with their line number.
package importer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/piwi3910/lazor/internal/logging"
	"github.com/piwi3910/lazor/internal/model"
)

var (
	// ErrNestedGrid is returned for a GRID START inside an open grid.
	ErrNestedGrid = errors.New("nested GRID START")

	// ErrMissingGridStop is returned when a grid is never closed.
	ErrMissingGridStop = errors.New("GRID STOP not found")

	// ErrNoGrid is returned for a file without grid rows.
	ErrNoGrid = errors.New("GRID not found or empty")

	// ErrUnrecognizedLine is returned for a line that is no known directive.
	ErrUnrecognizedLine = errors.New("unrecognized line")
)

var (
	gridStartRe = regexp.MustCompile(`(?i)^GRID\s+START$`)
	gridStopRe  = regexp.MustCompile(`(?i)^GRID\s+STOP$`)
	countRe     = regexp.MustCompile(`^([ABCabc])\s+(\d+)$`)
	laserRe     = regexp.MustCompile(`^[Ll]\s+(-?\d+)\s+(-?\d+)\s+(-?\d+)\s+(-?\d+)$`)
	pointRe     = regexp.MustCompile(`^[Pp]\s+(-?\d+)\s+(-?\d+)$`)
	misprintRe  = regexp.MustCompile(`\s=\s*(-?\d+)`)
	commentRe   = regexp.MustCompile(`\s#`)
	spaceRe     = regexp.MustCompile(`\s+`)
)

var impLog = logging.Module("importer")

var dashReplacer = strings.NewReplacer("−", "-", "–", "-", "—", "-")

// ImportResult holds a parsed puzzle and any leniency fixes applied to it.
type ImportResult struct {
	Puzzle   model.Puzzle
	Warnings []string
}

// line is a normalised non-empty input line and its 1-based position.
type line struct {
	no   int
	text string
}

// normalize strips comments, maps unicode dashes to '-', repairs "=1"
// misprints and collapses whitespace. It reports whether a misprint was fixed.
func normalize(raw string) (string, bool) {
	if loc := commentRe.FindStringIndex(raw); loc != nil {
		raw = raw[:loc[0]]
	}
	if strings.HasPrefix(strings.TrimSpace(raw), "#") {
		return "", false
	}
	raw = dashReplacer.Replace(raw)
	fixed := misprintRe.ReplaceAllString(raw, " -$1")
	changed := fixed != raw
	return strings.TrimSpace(spaceRe.ReplaceAllString(fixed, " ")), changed
}

// ParseBFF reads a puzzle from r. name is used for the puzzle name and error
// messages. Grid shape and laser directions are checked by model.NewBoard.
func ParseBFF(r io.Reader, name string) (ImportResult, error) {
	result := ImportResult{Puzzle: model.Puzzle{Name: name}}

	var lines []line
	sc := bufio.NewScanner(r)
	for no := 1; sc.Scan(); no++ {
		text, fixed := normalize(sc.Text())
		if text == "" {
			continue
		}
		if fixed {
			result.Warnings = append(result.Warnings, fmt.Sprintf("line %d: read '=' as '-'", no))
		}
		lines = append(lines, line{no: no, text: text})
	}
	if err := sc.Err(); err != nil {
		return result, fmt.Errorf("failed to read %s: %w", name, err)
	}

	p := &result.Puzzle
	for i := 0; i < len(lines); i++ {
		ln := lines[i]

		if gridStartRe.MatchString(ln.text) {
			i++
			for ; i < len(lines) && !gridStopRe.MatchString(lines[i].text); i++ {
				if gridStartRe.MatchString(lines[i].text) {
					return result, fmt.Errorf("%s:%d: %w", name, lines[i].no, ErrNestedGrid)
				}
				p.Grid = append(p.Grid, strings.Fields(lines[i].text))
			}
			if i == len(lines) {
				return result, fmt.Errorf("%s:%d: %w", name, ln.no, ErrMissingGridStop)
			}
			continue
		}

		if m := countRe.FindStringSubmatch(ln.text); m != nil {
			kind, err := model.KindFromLetter(m[1][0])
			if err != nil {
				return result, fmt.Errorf("%s:%d: %w", name, ln.no, err)
			}
			p.Inventory.Set(kind, atoi(m[2]))
			continue
		}

		if m := laserRe.FindStringSubmatch(ln.text); m != nil {
			p.Lasers = append(p.Lasers, model.Laser{X: atoi(m[1]), Y: atoi(m[2]), VX: atoi(m[3]), VY: atoi(m[4])})
			continue
		}

		if m := pointRe.FindStringSubmatch(ln.text); m != nil {
			p.Targets = append(p.Targets, model.Point{X: atoi(m[1]), Y: atoi(m[2])})
			continue
		}

		return result, fmt.Errorf("%s:%d: %q: %w", name, ln.no, ln.text, ErrUnrecognizedLine)
	}

	if len(p.Grid) == 0 {
		return result, fmt.Errorf("%s: %w", name, ErrNoGrid)
	}
	return result, nil
}

// atoi converts a string already matched as -?\d+.
func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// ImportBFF parses the puzzle file at path. The puzzle is named after the
// file without its extension.
func ImportBFF(path string) (ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return ImportResult{}, fmt.Errorf("failed to open puzzle: %w", err)
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return ParseBFF(f, name)
}

// LoadBoard parses and validates the puzzle file at path.
func LoadBoard(path string) (*model.Board, error) {
	res, err := ImportBFF(path)
	if err != nil {
		return nil, err
	}
	for _, w := range res.Warnings {
		impLog.Warn().Str("file", path).Msg(w)
	}
	b, err := model.NewBoard(res.Puzzle)
	if err != nil {
		return nil, fmt.Errorf("invalid puzzle %s: %w", path, err)
	}
	return b, nil
}

// FindPuzzles returns the .bff files directly inside dir, sorted by name.
func FindPuzzles(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.bff"))
	if err != nil {
		return nil, fmt.Errorf("failed to list puzzles in %s: %w", dir, err)
	}
	return matches, nil
}
