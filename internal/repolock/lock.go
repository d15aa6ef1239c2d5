// Package repolock serializes mutating commands on a repository.
// Commands that rename or rewrite files take the lock; read-only
// listings do not.
package repolock

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

const lockFileName = ".pypl2mp3.lock"

// Acquire takes an advisory lock on the repository and returns a
// release function. It fails fast instead of blocking when another
// process holds the lock.
func Acquire(repoDir string) (release func(), err error) {
	fl := flock.New(filepath.Join(repoDir, lockFileName))
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock repository: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("repository %s is locked by another process", repoDir)
	}
	return func() { fl.Unlock() }, nil
}
