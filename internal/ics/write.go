package ics

import (
	"fmt"
	"os"
	"path/filepath"

	appLog "roomcal/internal/log"
)

// WriteFile writes an already-serialized calendar document to
// dir/filename, all-or-nothing: data goes to a temp file in the same
// directory first and is renamed into place, so readers of the output
// directory never see a half-written calendar.
func WriteFile(dir, filename, data string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ics: create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".roomcal-*.tmp")
	if err != nil {
		return fmt.Errorf("ics: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.WriteString(data); err != nil {
		tmp.Close()
		return fmt.Errorf("ics: write %s: %w", filename, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("ics: sync %s: %w", filename, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("ics: close %s: %w", filename, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("ics: chmod %s: %w", filename, err)
	}

	target := filepath.Join(dir, filename)
	if err := os.Rename(tmpName, target); err != nil {
		return fmt.Errorf("ics: rename into %s: %w", filename, err)
	}

	appLog.Debug("calendar file written", "path", target, "bytes", len(data))
	return nil
}
