// Package tagging owns the tagged/junk lifecycle of catalog songs: ID3
// frame reads and writes, and the state transitions that pair a tag
// rewrite with an atomic rename.
package tagging

import (
	"fmt"
	"strconv"

	"github.com/bogem/id3v2/v2"

	"pypl2mp3/internal/catalog"
)

// TXXX frame descriptions. The video id frame lets identity survive a
// hand-rename, though the filename stays authoritative when they differ.
const (
	frameVideoID    = "YouTube ID"
	frameMatchScore = "Shazam match level"
	frameDuration   = "Duration"
)

// Tags is the ID3 field set this system reads and writes. Files are
// saved as ID3v2.3 for maximum player compatibility.
type Tags struct {
	Artist      string
	Title       string
	VideoID     string
	MatchScore  int // -1 when absent
	Duration    int // seconds, 0 when absent
	CoverArt    []byte
	HasCoverArt bool
}

// WriteTags replaces the song-related frames of the file at path. The
// file itself is rewritten in place under its current name; renames are
// the state machine's job and happen only after this succeeds.
func WriteTags(path string, tags Tags) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("failed to open %s for tagging: %w", path, err)
	}
	defer tag.Close()

	tag.SetVersion(3)
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	tag.DeleteAllFrames()

	if tags.Artist != "" {
		tag.SetArtist(tags.Artist)
	}
	if tags.Title != "" {
		tag.SetTitle(tags.Title)
	}
	addUserFrame(tag, frameVideoID, tags.VideoID)
	if tags.MatchScore >= 0 {
		addUserFrame(tag, frameMatchScore, strconv.Itoa(tags.MatchScore))
	}
	if tags.Duration > 0 {
		addUserFrame(tag, frameDuration, strconv.Itoa(tags.Duration))
	}
	if len(tags.CoverArt) > 0 {
		tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    "image/jpeg",
			PictureType: id3v2.PTFrontCover,
			Description: "Cover art",
			Picture:     tags.CoverArt,
		})
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("failed to save tags to %s: %w", path, err)
	}
	return nil
}

// ReadTags parses the song-related frames of the file at path.
func ReadTags(path string) (Tags, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return Tags{}, fmt.Errorf("failed to read tags from %s: %w", path, err)
	}
	defer tag.Close()

	tags := Tags{
		Artist:     tag.Artist(),
		Title:      tag.Title(),
		MatchScore: -1,
	}
	for _, framer := range tag.GetFrames(tag.CommonID("User defined text information frame")) {
		udf, ok := framer.(id3v2.UserDefinedTextFrame)
		if !ok {
			continue
		}
		switch udf.Description {
		case frameVideoID:
			tags.VideoID = udf.Value
		case frameMatchScore:
			if n, err := strconv.Atoi(udf.Value); err == nil {
				tags.MatchScore = n
			}
		case frameDuration:
			if n, err := strconv.Atoi(udf.Value); err == nil {
				tags.Duration = n
			}
		}
	}
	tags.HasCoverArt = len(tag.GetFrames(tag.CommonID("Attached picture"))) > 0
	return tags, nil
}

// StripTags removes every frame except the video id marker, optionally
// keeping the filename-derived artist and title.
func StripTags(path, videoID, artist, title string) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("failed to open %s for tag removal: %w", path, err)
	}
	defer tag.Close()

	tag.SetVersion(3)
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	tag.DeleteAllFrames()
	addUserFrame(tag, frameVideoID, videoID)
	if artist != "" {
		tag.SetArtist(artist)
	}
	if title != "" {
		tag.SetTitle(title)
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("failed to strip tags from %s: %w", path, err)
	}
	return nil
}

func addUserFrame(tag *id3v2.Tag, description, value string) {
	if value == "" {
		return
	}
	tag.AddUserDefinedTextFrame(id3v2.UserDefinedTextFrame{
		Encoding:    id3v2.EncodingUTF8,
		Description: description,
		Value:       value,
	})
}

// Hydrate fills duration and cover-art presence on songs from their ID3
// tags. Unreadable tags leave the song as scanned; listings degrade to
// showing unknown duration rather than failing.
func Hydrate(songs []catalog.Song) []catalog.Song {
	for i := range songs {
		tags, err := ReadTags(songs[i].Path)
		if err != nil {
			continue
		}
		songs[i].Duration = tags.Duration
		songs[i].HasCoverArt = tags.HasCoverArt
	}
	return songs
}
