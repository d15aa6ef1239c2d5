package catalog

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// State is the lifecycle state of a song. It is encoded in the filename:
// the "(JUNK)" suffix marks a junk song, its absence marks a tagged one.
// Pending only exists for in-flight imports and is never written to disk.
type State uint8

const (
	StatePending State = iota
	StateTagged
	StateJunk
)

func (s State) String() string {
	switch s {
	case StateTagged:
		return "tagged"
	case StateJunk:
		return "junk"
	default:
		return "pending"
	}
}

// Song is a single catalog record. The filename is the sole durable
// representation of Artist, Title, VideoID and State; Duration and
// HasCoverArt live in the ID3 tags and are hydrated on demand.
type Song struct {
	VideoID     string
	Artist      string
	Title       string
	State       State
	Path        string
	Duration    int // seconds, 0 when not hydrated
	HasCoverArt bool
}

const junkSuffix = " (JUNK)"

// songNameRe captures "ARTIST - TITLE [VIDEO_ID].mp3" with both artist and
// title optional. The artist group is greedy so a title containing " - "
// splits at the last separator, matching how filenames are generated.
var songNameRe = regexp.MustCompile(`^(?:(.+) - )?(?:(.+?) )?\[([^\]]+)\](` + regexp.QuoteMeta(junkSuffix) + `)?\.mp3$`)

// ParseFilename decodes a song record from a filename (without directory).
// Malformed names yield a *ParseError.
func ParseFilename(name string) (Song, error) {
	m := songNameRe.FindStringSubmatch(name)
	if m == nil {
		return Song{}, &ParseError{Name: name, Reason: "filename does not match song grammar"}
	}
	song := Song{
		Artist:  m[1],
		Title:   m[2],
		VideoID: m[3],
		State:   StateTagged,
	}
	if m[4] != "" {
		song.State = StateJunk
	}
	if song.VideoID == "" || strings.TrimSpace(song.VideoID) != song.VideoID {
		return Song{}, &ParseError{Name: name, Reason: "invalid video id"}
	}
	return song, nil
}

// Filename encodes the song back into its canonical filename.
// ParseFilename(s.Filename()) always round-trips artist, title, video id
// and state.
func (s Song) Filename() string {
	var b strings.Builder
	switch {
	case s.Artist != "" && s.Title != "":
		b.WriteString(s.Artist + " - " + s.Title + " ")
	case s.Title != "":
		b.WriteString(s.Title + " ")
	case s.Artist != "":
		b.WriteString(s.Artist + " ")
	}
	b.WriteString("[" + s.VideoID + "]")
	if s.State == StateJunk {
		b.WriteString(junkSuffix)
	}
	b.WriteString(".mp3")
	return b.String()
}

// DisplayName is the human label used for listings and fuzzy matching.
func (s Song) DisplayName() string {
	if s.Artist == "" {
		return s.Title
	}
	return s.Artist + " - " + s.Title
}

// WatchURL is the song's video page.
func (s Song) WatchURL() string {
	return "https://youtu.be/" + s.VideoID
}

// Dir is the playlist directory containing the song file.
func (s Song) Dir() string {
	return filepath.Dir(s.Path)
}

// DurationLabel renders the hydrated duration as m:ss (or h:mm:ss).
func (s Song) DurationLabel() string {
	if s.Duration <= 0 {
		return "-:--"
	}
	h := s.Duration / 3600
	m := (s.Duration % 3600) / 60
	sec := s.Duration % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%d:%02d", m, sec)
}

// pathUnsafe maps characters that may not appear in artist or title fields
// to their replacement. Brackets are stripped because the video id is read
// from the last bracket pair of the name.
var pathUnsafe = strings.NewReplacer(
	"<", "", ">", "", ":", "", `"`, "", "/", "", `\`, "",
	"|", "", "?", "", "*", "", "+", "", "=", "", "`", "",
	"[", "", "]", "", "\x00", "",
)

var multiSpaceRe = regexp.MustCompile(`\s+`)

// SanitizeField makes a free-text artist or title safe for the filename
// grammar. The substitution table is fixed, not locale dependent, so the
// same input always yields the same name.
func SanitizeField(field string) string {
	out := pathUnsafe.Replace(field)
	out = multiSpaceRe.ReplaceAllString(out, " ")
	return strings.Trim(out, " .")
}
