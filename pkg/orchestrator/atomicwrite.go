package orchestrator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// atomicWriteJSON marshals v with indentation and writes it to path via a
// temp file in the same directory, fsynced and renamed into place.
// Duplicated from pkg/eventlog/pkg/memory/pkg/docloop rather than shared —
// the helper is a dozen lines and orchestrator only needs it for a couple
// of artifacts (execution-handoff.json, leader-summary.md).
func atomicWriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	return atomicWriteMarkdown(path, string(data))
}

// atomicWriteMarkdown writes content to path via the same temp-file-then-
// rename sequence. Named for its one plain-text caller (leader-summary.md);
// atomicWriteJSON builds on it for its own atomicity.
func atomicWriteMarkdown(path string, content string) error {
	data := []byte(content)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmpFile, err := os.CreateTemp(dir, ".tmp-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("write content: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("sync file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename to final: %w", err)
	}

	success = true
	return nil
}
