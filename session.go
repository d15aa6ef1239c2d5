package main

import (
	"fmt"
	"log"
	"strconv"

	"pypl2mp3/internal/catalog"
	"pypl2mp3/internal/config"
	"pypl2mp3/internal/logging"
)

// session is the per-command plumbing: resolved configuration and the
// repository log.
type session struct {
	cfg      config.Config
	logger   *log.Logger
	closeLog func() error
}

// openSession resolves configuration (defaults, config file,
// environment, flags) and opens the repository log.
func openSession() (*session, error) {
	cfg, err := config.Load(repoFlag)
	if err != nil {
		return nil, err
	}
	// The flag default is -1 so an explicit 0 still overrides.
	if matchLevel >= 0 {
		cfg.MatchThreshold = matchLevel
	}
	if shazamLevel >= 0 {
		cfg.ShazamThreshold = shazamLevel
	}

	logger, closeLog, err := logging.Open(cfg.RepoDir, debug)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, logger: logger, closeLog: closeLog}, nil
}

func (s *session) Close() {
	s.closeLog()
}

// reopenLog reconnects the session logger to the repository log file.
// Commands that create the repository call this right after the mkdir,
// since a session opened against a missing repository logs nowhere.
func (s *session) reopenLog() error {
	if err := s.closeLog(); err != nil {
		return err
	}
	logger, closeLog, err := logging.Open(s.cfg.RepoDir, debug)
	if err != nil {
		return err
	}
	s.logger, s.closeLog = logger, closeLog
	return nil
}

// scan indexes the repository, printing scan issues as warnings.
// Issues never abort a command.
func (s *session) scan() (*catalog.Catalog, error) {
	cat, issues, err := catalog.Scan(s.cfg.RepoDir)
	if err != nil {
		return nil, err
	}
	for _, issue := range issues {
		colorWarning.Printf("⚠️  %s: %v\n", issue.Path, issue.Err)
		s.logger.Printf("scan issue at %s: %v", issue.Path, issue.Err)
	}
	return cat, nil
}

// scopeSongs resolves the --playlist flag (falling back to the
// configured default playlist) into the candidate song set and a label
// for display. An empty scope means the whole repository.
func (s *session) scopeSongs(cat *catalog.Catalog) ([]catalog.Song, string, error) {
	selector := playlistFlag
	if selector == "" {
		selector = s.cfg.DefaultPlaylist
	}
	if selector == "" {
		return cat.Songs(), "all playlists", nil
	}
	pl, err := cat.FindPlaylist(selector)
	if err != nil {
		return nil, "", err
	}
	return pl.Songs, pl.Name, nil
}

// selectSongs applies the filter, match threshold, state filter and an
// optional positional 1-based index argument (0 picks a random song).
func (s *session) selectSongs(cat *catalog.Catalog, junkOnly bool, indexArg string) (catalog.Selection, string, error) {
	songs, scope, err := s.scopeSongs(cat)
	if err != nil {
		return catalog.Selection{}, "", err
	}
	sel := catalog.Select(songs, filter, s.cfg.MatchThreshold, junkOnly)
	if indexArg != "" {
		index, err := strconv.Atoi(indexArg)
		if err != nil {
			return catalog.Selection{}, "", fmt.Errorf("invalid song index %q", indexArg)
		}
		if sel, err = sel.Pick(index); err != nil {
			return catalog.Selection{}, "", err
		}
	}
	return sel, scope, nil
}

// confirmAnswer asks a yes/no/abort question.
type confirmAnswer int

const (
	answerYes confirmAnswer = iota
	answerNo
	answerAbort
)

func askConfirm(prompt string) confirmAnswer {
	for {
		switch GetUserInput(prompt+" (y/n/a)", "y") {
		case "y", "Y", "yes":
			return answerYes
		case "n", "N", "no":
			return answerNo
		case "a", "A", "abort", "q":
			return answerAbort
		}
	}
}
