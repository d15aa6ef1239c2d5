package catalog

import (
	"errors"
	"testing"
)

func TestParseFilename(t *testing.T) {
	song, err := ParseFilename("Dire Straits - Sultans Of Swing [abc123].mp3")
	if err != nil {
		t.Fatalf("ParseFilename failed: %v", err)
	}
	if song.Artist != "Dire Straits" {
		t.Errorf("artist = %q, want %q", song.Artist, "Dire Straits")
	}
	if song.Title != "Sultans Of Swing" {
		t.Errorf("title = %q, want %q", song.Title, "Sultans Of Swing")
	}
	if song.VideoID != "abc123" {
		t.Errorf("video id = %q, want %q", song.VideoID, "abc123")
	}
	if song.State != StateTagged {
		t.Errorf("state = %v, want tagged", song.State)
	}
}

func TestParseFilenameJunk(t *testing.T) {
	song, err := ParseFilename("Unknown Artist - Some Rip [xyz789] (JUNK).mp3")
	if err != nil {
		t.Fatalf("ParseFilename failed: %v", err)
	}
	if song.State != StateJunk {
		t.Errorf("state = %v, want junk", song.State)
	}
	if song.Artist != "Unknown Artist" || song.Title != "Some Rip" {
		t.Errorf("identity = %q / %q", song.Artist, song.Title)
	}
}

func TestParseFilenameTitleOnly(t *testing.T) {
	song, err := ParseFilename("Sultans Of Swing [abc123].mp3")
	if err != nil {
		t.Fatalf("ParseFilename failed: %v", err)
	}
	if song.Artist != "" {
		t.Errorf("artist = %q, want empty", song.Artist)
	}
	if song.Title != "Sultans Of Swing" {
		t.Errorf("title = %q, want %q", song.Title, "Sultans Of Swing")
	}
}

func TestParseFilenameTitleWithDash(t *testing.T) {
	// The artist group is greedy, so the split happens at the last " - ".
	song, err := ParseFilename("AC - DC - Back In Black [id42].mp3")
	if err != nil {
		t.Fatalf("ParseFilename failed: %v", err)
	}
	if song.Artist != "AC - DC" {
		t.Errorf("artist = %q, want %q", song.Artist, "AC - DC")
	}
	if song.Title != "Back In Black" {
		t.Errorf("title = %q, want %q", song.Title, "Back In Black")
	}
}

func TestParseFilenameErrors(t *testing.T) {
	bad := []string{
		"nonsense.mp3",
		"Artist - Title.mp3",
		"Artist - Title [id].flac",
		"Title [ spaced ].mp3",
		"",
	}
	for _, name := range bad {
		_, err := ParseFilename(name)
		if err == nil {
			t.Errorf("ParseFilename(%q) succeeded, want error", name)
			continue
		}
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Errorf("ParseFilename(%q) error is %T, want *ParseError", name, err)
		}
	}
}

func TestFilenameRoundTrip(t *testing.T) {
	songs := []Song{
		{Artist: "Dire Straits", Title: "Sultans Of Swing", VideoID: "abc123", State: StateTagged},
		{Artist: "Dire Straits", Title: "Sultans Of Swing", VideoID: "abc123", State: StateJunk},
		{Title: "Unrecognized Rip", VideoID: "xyz789", State: StateJunk},
		{VideoID: "bare01", State: StateJunk},
	}
	for _, want := range songs {
		got, err := ParseFilename(want.Filename())
		if err != nil {
			t.Fatalf("round trip of %q failed: %v", want.Filename(), err)
		}
		if got.Artist != want.Artist || got.Title != want.Title ||
			got.VideoID != want.VideoID || got.State != want.State {
			t.Errorf("round trip of %q: got %+v, want %+v", want.Filename(), got, want)
		}
	}
}

func TestFilenameJunkSuffix(t *testing.T) {
	song := Song{Artist: "Dire Straits", Title: "Sultans Of Swing", VideoID: "abc123", State: StateJunk}
	want := "Dire Straits - Sultans Of Swing [abc123] (JUNK).mp3"
	if got := song.Filename(); got != want {
		t.Errorf("Filename() = %q, want %q", got, want)
	}
}

func TestSanitizeField(t *testing.T) {
	cases := []struct{ in, want string }{
		{"AC/DC", "ACDC"},
		{"Song [Live]", "Song Live"},
		{"What?  *Really*", "What Really"},
		{"  trailing dots... ", "trailing dots"},
		{"plain title", "plain title"},
		{"a\x00b", "ab"},
	}
	for _, c := range cases {
		if got := SanitizeField(c.in); got != c.want {
			t.Errorf("SanitizeField(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	s := Song{Artist: "Dire Straits", Title: "Sultans Of Swing"}
	if got := s.DisplayName(); got != "Dire Straits - Sultans Of Swing" {
		t.Errorf("DisplayName() = %q", got)
	}
	s.Artist = ""
	if got := s.DisplayName(); got != "Sultans Of Swing" {
		t.Errorf("DisplayName() without artist = %q", got)
	}
}

func TestDurationLabel(t *testing.T) {
	cases := []struct {
		seconds int
		want    string
	}{
		{0, "-:--"},
		{59, "0:59"},
		{351, "5:51"},
		{3661, "1:01:01"},
	}
	for _, c := range cases {
		s := Song{Duration: c.seconds}
		if got := s.DurationLabel(); got != c.want {
			t.Errorf("DurationLabel(%d) = %q, want %q", c.seconds, got, c.want)
		}
	}
}
