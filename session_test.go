package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pypl2mp3/internal/config"
)

// setFlags points the package flag variables at a scratch repository and
// restores them when the test ends.
func setFlags(t *testing.T, repo string, match, shazam int) {
	t.Helper()
	oldRepo, oldMatch, oldShazam := repoFlag, matchLevel, shazamLevel
	repoFlag, matchLevel, shazamLevel = repo, match, shazam
	t.Cleanup(func() {
		repoFlag, matchLevel, shazamLevel = oldRepo, oldMatch, oldShazam
	})
}

func TestOpenSessionThresholdDefaults(t *testing.T) {
	setFlags(t, t.TempDir(), -1, -1)

	s, err := openSession()
	if err != nil {
		t.Fatalf("openSession failed: %v", err)
	}
	defer s.Close()
	if s.cfg.MatchThreshold != config.DefaultMatchThreshold {
		t.Errorf("match threshold = %d, want default %d", s.cfg.MatchThreshold, config.DefaultMatchThreshold)
	}
	if s.cfg.ShazamThreshold != config.DefaultShazamThreshold {
		t.Errorf("shazam threshold = %d, want default %d", s.cfg.ShazamThreshold, config.DefaultShazamThreshold)
	}
}

func TestOpenSessionExplicitZeroThresholds(t *testing.T) {
	// --match=0 and --thresh=0 are legitimate values, not "use the
	// default": everything matches, every recognition tags.
	setFlags(t, t.TempDir(), 0, 0)

	s, err := openSession()
	if err != nil {
		t.Fatalf("openSession failed: %v", err)
	}
	defer s.Close()
	if s.cfg.MatchThreshold != 0 {
		t.Errorf("match threshold = %d, want explicit 0", s.cfg.MatchThreshold)
	}
	if s.cfg.ShazamThreshold != 0 {
		t.Errorf("shazam threshold = %d, want explicit 0", s.cfg.ShazamThreshold)
	}
}

func TestSessionReopenLogAfterRepositoryCreation(t *testing.T) {
	repo := filepath.Join(t.TempDir(), "repo")
	setFlags(t, repo, -1, -1)

	s, err := openSession()
	if err != nil {
		t.Fatalf("openSession failed: %v", err)
	}
	defer s.Close()

	if err := os.MkdirAll(repo, 0755); err != nil {
		t.Fatal(err)
	}
	if err := s.reopenLog(); err != nil {
		t.Fatalf("reopenLog failed: %v", err)
	}
	s.logger.Print("first import line")
	if err := s.closeLog(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(repo, config.LogFileName))
	if err != nil {
		t.Fatalf("log file missing after reopen: %v", err)
	}
	if !strings.Contains(string(data), "first import line") {
		t.Errorf("reopened logger did not reach the repository log: %q", data)
	}
}
