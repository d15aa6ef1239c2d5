package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/gosimple/slug"
)

// Playlist is one repository directory. The directory name carries the
// playlist id between its last brackets: "<owner> - <title> [<id>]".
type Playlist struct {
	ID    string
	Name  string
	Dir   string
	Songs []Song
}

// URL is the playlist's remote page.
func (p Playlist) URL() string {
	return "https://www.youtube.com/playlist?list=" + p.ID
}

// JunkCount reports how many of the playlist's songs are junk.
func (p Playlist) JunkCount() int {
	n := 0
	for _, s := range p.Songs {
		if s.State == StateJunk {
			n++
		}
	}
	return n
}

// Catalog is the in-memory index of a repository, rebuilt from a scan.
// It is a pure function of the filesystem at scan time; repositories may
// be mutated externally between invocations, so nothing is cached.
type Catalog struct {
	Root      string
	Playlists []Playlist
}

// Issue is a non-fatal problem found while scanning: a malformed name or
// a duplicate video id. Issues are reported, never raised.
type Issue struct {
	Path string
	Err  error
}

var playlistDirRe = regexp.MustCompile(`^(.*)\[([^\]]+)\][^\]]*$`)

// SortKey produces a deterministic case-insensitive ordering key. Slugs
// fold case and accents the same way on every platform; the raw string is
// appended to break slug collisions.
func SortKey(s string) string {
	return slug.Make(s) + "\x00" + s
}

// Scan walks the repository and indexes every playlist directory and song
// file. Hidden entries are skipped (in-flight imports live under dotted
// temporary names). Within one playlist, duplicate video ids resolve to
// the most recently modified file; the loser is reported as an issue.
func Scan(root string) (*Catalog, []Issue, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read repository %s: %w", root, err)
	}

	cat := &Catalog{Root: root}
	var issues []Issue

	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		m := playlistDirRe.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		pl := Playlist{
			ID:   m[2],
			Name: strings.TrimSpace(m[1]),
			Dir:  filepath.Join(root, entry.Name()),
		}
		songs, songIssues := scanPlaylistDir(pl.Dir)
		pl.Songs = songs
		issues = append(issues, songIssues...)
		cat.Playlists = append(cat.Playlists, pl)
	}

	sort.Slice(cat.Playlists, func(i, j int) bool {
		return SortKey(cat.Playlists[i].Name) < SortKey(cat.Playlists[j].Name)
	})
	return cat, issues, nil
}

func scanPlaylistDir(dir string) ([]Song, []Issue) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, []Issue{{Path: dir, Err: fmt.Errorf("failed to read playlist directory: %w", err)}}
	}

	var issues []Issue
	type candidate struct {
		song  Song
		mtime time.Time
	}
	byID := make(map[string]candidate)

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".mp3") {
			continue
		}
		song, err := ParseFilename(name)
		if err != nil {
			issues = append(issues, Issue{Path: filepath.Join(dir, name), Err: err})
			continue
		}
		song.Path = filepath.Join(dir, name)

		info, err := entry.Info()
		if err != nil {
			issues = append(issues, Issue{Path: song.Path, Err: fmt.Errorf("failed to stat song file: %w", err)})
			continue
		}

		prev, dup := byID[song.VideoID]
		if !dup {
			byID[song.VideoID] = candidate{song, info.ModTime()}
			continue
		}
		// Conflict: exactly one file per video id may win. Newest wins,
		// the other is reported and left untouched on disk.
		kept, lost := song, prev.song
		if info.ModTime().Before(prev.mtime) {
			kept, lost = prev.song, song
		} else {
			byID[song.VideoID] = candidate{song, info.ModTime()}
		}
		issues = append(issues, Issue{
			Path: lost.Path,
			Err:  fmt.Errorf("duplicate video id %s, keeping %s", song.VideoID, filepath.Base(kept.Path)),
		})
	}

	songs := make([]Song, 0, len(byID))
	for _, c := range byID {
		songs = append(songs, c.song)
	}
	sort.Slice(songs, func(i, j int) bool {
		return SortKey(songs[i].DisplayName()) < SortKey(songs[j].DisplayName())
	})
	return songs, issues
}

// Songs returns every song of the catalog in playlist order.
func (c *Catalog) Songs() []Song {
	var all []Song
	for _, pl := range c.Playlists {
		all = append(all, pl.Songs...)
	}
	return all
}

// VideoIDs returns the set of video ids present in the given songs.
func VideoIDs(songs []Song) map[string]bool {
	ids := make(map[string]bool, len(songs))
	for _, s := range songs {
		ids[s.VideoID] = true
	}
	return ids
}

var playlistURLRe = regexp.MustCompile(`[&?]list=([^&]+)`)

// FindPlaylist resolves a playlist selector, which may be a playlist id,
// a playlist URL, or a 1-based index into the sorted playlist listing.
func (c *Catalog) FindPlaylist(selector string) (*Playlist, error) {
	if selector == "" {
		return nil, fmt.Errorf("empty playlist selector")
	}

	if idx, ok := parseIndex(selector); ok {
		if idx < 1 || idx > len(c.Playlists) {
			return nil, fmt.Errorf("playlist index %d is out of range (1-%d)", idx, len(c.Playlists))
		}
		return &c.Playlists[idx-1], nil
	}

	id := selector
	if m := playlistURLRe.FindStringSubmatch(selector); m != nil {
		id = m[1]
	}

	var found *Playlist
	for i := range c.Playlists {
		if c.Playlists[i].ID == id {
			if found != nil {
				return nil, fmt.Errorf("multiple playlists match id %s", id)
			}
			found = &c.Playlists[i]
		}
	}
	if found == nil {
		return nil, fmt.Errorf("playlist %s does not exist in repository", id)
	}
	return found, nil
}

// PlaylistID extracts the playlist id from a selector without requiring
// the playlist to exist locally (used by import for first-time syncs).
func (c *Catalog) PlaylistID(selector string) (string, error) {
	if pl, err := c.FindPlaylist(selector); err == nil {
		return pl.ID, nil
	} else if _, isIndex := parseIndex(selector); isIndex {
		return "", err
	}
	if m := playlistURLRe.FindStringSubmatch(selector); m != nil {
		return m[1], nil
	}
	if selector == "" {
		return "", fmt.Errorf("empty playlist selector")
	}
	return selector, nil
}

func parseIndex(s string) (int, bool) {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	if s == "" {
		return 0, false
	}
	return n, true
}
