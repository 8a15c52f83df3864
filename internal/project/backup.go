package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// BackupVersion is written into every backup file.
const BackupVersion = "1.0.0"

// BackupData is the top-level structure for import/export of all application data.
type BackupData struct {
	Version   string      `json:"version"`
	CreatedAt string      `json:"created_at"`
	Config    AppConfig   `json:"config"`
	Runs      []RunBackup `json:"runs"`
}

// RunBackup is a stored run together with its puzzle outcomes.
type RunBackup struct {
	Run     RunRecord      `json:"run"`
	Puzzles []PuzzleRecord `json:"puzzles"`
}

// ExportAllData exports the config and, when h is not nil, every recorded
// run to a single JSON file at the specified path.
func ExportAllData(exportPath string, config AppConfig, h *History) error {
	backup := BackupData{
		Version:   BackupVersion,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Config:    config,
		Runs:      []RunBackup{},
	}
	if h != nil {
		runs, err := h.RecentRuns(0)
		if err != nil {
			return fmt.Errorf("failed to read history: %w", err)
		}
		for _, r := range runs {
			puzzles, err := h.Puzzles(r.ID)
			if err != nil {
				return fmt.Errorf("failed to read run %s: %w", r.ID, err)
			}
			backup.Runs = append(backup.Runs, RunBackup{Run: r, Puzzles: puzzles})
		}
	}

	data, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal backup data: %w", err)
	}

	dir := filepath.Dir(exportPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	if err := os.WriteFile(exportPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}
	return nil
}

// ImportAllData reads a backup JSON file and returns the contained data.
// The caller is responsible for applying the imported config.
func ImportAllData(importPath string) (BackupData, error) {
	data, err := os.ReadFile(importPath)
	if err != nil {
		return BackupData{}, fmt.Errorf("failed to read backup file: %w", err)
	}
	backup := BackupData{Config: DefaultAppConfig()}
	if err := json.Unmarshal(data, &backup); err != nil {
		return BackupData{}, fmt.Errorf("failed to parse backup file: %w", err)
	}
	if backup.Version == "" {
		return BackupData{}, fmt.Errorf("invalid backup file: missing version field")
	}
	if backup.Config.Formats == nil {
		backup.Config.Formats = []string{}
	}
	if backup.Runs == nil {
		backup.Runs = []RunBackup{}
	}
	return backup, nil
}

// RestoreHistory records the backup's runs into h, skipping runs that are
// already stored. It returns the number of runs added.
func RestoreHistory(h *History, backup BackupData) (int, error) {
	added := 0
	for _, rb := range backup.Runs {
		exists, err := h.HasRun(rb.Run.ID)
		if err != nil {
			return added, err
		}
		if exists {
			continue
		}
		if _, err := h.Record(rb.Run, rb.Puzzles); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}
