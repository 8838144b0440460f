// Package writer persists a generated document to disk.
package writer

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Options controls how the document is written.
type Options struct {
	Force  bool // overwrite an existing file
	DryRun bool // don't write, only plan
}

// Result reports what was (or would be) written.
type Result struct {
	Path string // absolute destination path
	Size int
}

// Write stores data at path atomically via a temp file and rename. An
// existing destination is refused unless Force is set; DryRun resolves and
// reports the destination without touching it.
func Write(path string, data []byte, opts Options) (*Result, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("writer: resolve output path: %w", err)
	}
	res := &Result{Path: abs, Size: len(data)}

	if st, err := os.Stat(abs); err == nil {
		if st.IsDir() {
			return nil, fmt.Errorf("writer: output path %q is a directory", abs)
		}
		if !opts.Force {
			return nil, fmt.Errorf("writer: output file %q already exists (use --force to overwrite)", abs)
		}
	}

	if opts.DryRun {
		return res, nil
	}

	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return nil, fmt.Errorf("writer: mkdir: %w", err)
	}
	tmp := abs + ".tmp-" + time.Now().Format("20060102150405")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return nil, fmt.Errorf("writer: write temp file: %w", err)
	}
	if err := os.Rename(tmp, abs); err != nil {
		_ = os.Remove(tmp)
		return nil, fmt.Errorf("writer: rename into place: %w", err)
	}
	return res, nil
}
