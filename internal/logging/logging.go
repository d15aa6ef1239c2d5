// Package logging opens the repository diagnostics log. Console output
// stays human-facing; anything a user might need after the fact goes
// here.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"pypl2mp3/internal/config"
)

// Open appends to the repository log file and returns a logger plus a
// closer. With echo set, log lines are also written to stderr. When the
// repository does not exist yet the logger discards, so first-run
// commands still work.
func Open(repoDir string, echo bool) (*log.Logger, func() error, error) {
	path := filepath.Join(repoDir, config.LogFileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		if os.IsNotExist(err) {
			var w io.Writer = io.Discard
			if echo {
				w = os.Stderr
			}
			return log.New(w, "", log.LstdFlags), func() error { return nil }, nil
		}
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	var w io.Writer = f
	if echo {
		w = io.MultiWriter(f, os.Stderr)
	}
	logger := log.New(w, "", log.LstdFlags)
	return logger, f.Close, nil
}
