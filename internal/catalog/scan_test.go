package catalog

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeSongFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("\xff\xfbaudio"), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

func makePlaylistDir(t *testing.T, root, name string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create %s: %v", dir, err)
	}
	return dir
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	mix := makePlaylistDir(t, root, "My Mix [PL123]")
	writeSongFile(t, mix, "Dire Straits - Sultans Of Swing [abc123].mp3")
	writeSongFile(t, mix, "Unknown Rip [junk01] (JUNK).mp3")
	writeSongFile(t, mix, ".inflight.import.mp3")
	writeSongFile(t, mix, "not a song.mp3")

	other := makePlaylistDir(t, root, "Another List [PL456]")
	writeSongFile(t, other, "Jimi Hendrix - Voodoo Child [vd789].mp3")

	makePlaylistDir(t, root, "no id here")
	makePlaylistDir(t, root, ".hidden [PL999]")

	cat, issues, err := Scan(root)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(cat.Playlists) != 2 {
		t.Fatalf("got %d playlists, want 2", len(cat.Playlists))
	}
	// Sorted by name: "Another List" before "My Mix".
	if cat.Playlists[0].ID != "PL456" || cat.Playlists[1].ID != "PL123" {
		t.Errorf("playlist order = %s, %s", cat.Playlists[0].ID, cat.Playlists[1].ID)
	}
	if got := cat.Playlists[1].Name; got != "My Mix" {
		t.Errorf("playlist name = %q, want %q", got, "My Mix")
	}
	if n := len(cat.Playlists[1].Songs); n != 2 {
		t.Errorf("My Mix has %d songs, want 2", n)
	}
	if n := cat.Playlists[1].JunkCount(); n != 1 {
		t.Errorf("My Mix junk count = %d, want 1", n)
	}
	if len(issues) != 1 {
		t.Fatalf("got %d issues, want 1 (malformed name): %v", len(issues), issues)
	}
	if filepath.Base(issues[0].Path) != "not a song.mp3" {
		t.Errorf("issue path = %s", issues[0].Path)
	}
	if n := len(cat.Songs()); n != 3 {
		t.Errorf("catalog has %d songs, want 3", n)
	}
}

func TestScanDuplicateVideoID(t *testing.T) {
	root := t.TempDir()
	dir := makePlaylistDir(t, root, "Mix [PL1]")
	older := writeSongFile(t, dir, "Old Name [dup42].mp3")
	writeSongFile(t, dir, "New Name [dup42].mp3")

	past := time.Now().Add(-24 * time.Hour)
	if err := os.Chtimes(older, past, past); err != nil {
		t.Fatalf("Chtimes failed: %v", err)
	}

	cat, issues, err := Scan(root)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	songs := cat.Playlists[0].Songs
	if len(songs) != 1 {
		t.Fatalf("got %d songs, want 1", len(songs))
	}
	if songs[0].Title != "New Name" {
		t.Errorf("kept %q, want the newer file", songs[0].Title)
	}
	if len(issues) != 1 {
		t.Fatalf("got %d issues, want 1", len(issues))
	}
	// The losing file is reported but left on disk.
	if _, err := os.Stat(older); err != nil {
		t.Errorf("losing duplicate was removed: %v", err)
	}
}

func TestFindPlaylist(t *testing.T) {
	root := t.TempDir()
	makePlaylistDir(t, root, "Alpha [PL-A]")
	makePlaylistDir(t, root, "Beta [PL-B]")
	cat, _, err := Scan(root)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	byID, err := cat.FindPlaylist("PL-B")
	if err != nil || byID.Name != "Beta" {
		t.Errorf("by id: %v, %v", byID, err)
	}
	byURL, err := cat.FindPlaylist("https://www.youtube.com/playlist?list=PL-A")
	if err != nil || byURL.Name != "Alpha" {
		t.Errorf("by url: %v, %v", byURL, err)
	}
	byIndex, err := cat.FindPlaylist("2")
	if err != nil || byIndex.Name != "Beta" {
		t.Errorf("by index: %v, %v", byIndex, err)
	}
	if _, err := cat.FindPlaylist("3"); err == nil {
		t.Error("out-of-range index succeeded")
	}
	if _, err := cat.FindPlaylist("PL-MISSING"); err == nil {
		t.Error("missing id succeeded")
	}
	if _, err := cat.FindPlaylist(""); err == nil {
		t.Error("empty selector succeeded")
	}
}

func TestPlaylistID(t *testing.T) {
	root := t.TempDir()
	makePlaylistDir(t, root, "Alpha [PL-A]")
	cat, _, err := Scan(root)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	// Known playlist resolves through the catalog.
	id, err := cat.PlaylistID("1")
	if err != nil || id != "PL-A" {
		t.Errorf("by index: %q, %v", id, err)
	}
	// Unknown URL still yields an id for first-time imports.
	id, err = cat.PlaylistID("https://www.youtube.com/playlist?list=PL-NEW")
	if err != nil || id != "PL-NEW" {
		t.Errorf("by url: %q, %v", id, err)
	}
	id, err = cat.PlaylistID("PL-RAW")
	if err != nil || id != "PL-RAW" {
		t.Errorf("raw id: %q, %v", id, err)
	}
	// An index is never a remote id; out of range stays an error.
	if _, err := cat.PlaylistID("7"); err == nil {
		t.Error("out-of-range index succeeded")
	}
}

func TestSelect(t *testing.T) {
	songs := []Song{
		{Artist: "Dire Straits", Title: "Sultans Of Swing", VideoID: "a", State: StateTagged},
		{Artist: "Jimi Hendrix", Title: "Voodoo Child", VideoID: "b", State: StateJunk},
		{Artist: "Dire Straits", Title: "Money For Nothing", VideoID: "c", State: StateTagged},
	}

	all := Select(songs, "", 45, false)
	if len(all.Songs) != 3 {
		t.Fatalf("empty query selected %d songs, want 3", len(all.Songs))
	}
	for _, score := range all.Scores {
		if score != 0 {
			t.Errorf("empty query produced score %d, want 0", score)
		}
	}

	junk := Select(songs, "", 45, true)
	if len(junk.Songs) != 1 || junk.Songs[0].VideoID != "b" {
		t.Errorf("junk selection = %+v", junk.Songs)
	}

	filtered := Select(songs, "dire straits", 45, false)
	if len(filtered.Songs) != 2 {
		t.Fatalf("filter selected %d songs, want 2", len(filtered.Songs))
	}
	for _, s := range filtered.Songs {
		if s.Artist != "Dire Straits" {
			t.Errorf("filter selected %q", s.DisplayName())
		}
	}
}

func TestSelectionPick(t *testing.T) {
	songs := []Song{
		{Title: "One", VideoID: "a"},
		{Title: "Two", VideoID: "b"},
		{Title: "Three", VideoID: "c"},
	}
	sel := Select(songs, "", 45, false)

	picked, err := sel.Pick(2)
	if err != nil {
		t.Fatalf("Pick(2) failed: %v", err)
	}
	if len(picked.Songs) != 1 || picked.Songs[0].VideoID != "b" {
		t.Errorf("Pick(2) = %+v", picked.Songs)
	}

	random, err := sel.Pick(0)
	if err != nil {
		t.Fatalf("Pick(0) failed: %v", err)
	}
	if len(random.Songs) != 1 {
		t.Errorf("Pick(0) selected %d songs", len(random.Songs))
	}

	if _, err := sel.Pick(4); err == nil {
		t.Error("out-of-range pick succeeded")
	}
	if _, err := (Selection{}).Pick(1); err == nil {
		t.Error("pick from empty selection succeeded")
	}
}
