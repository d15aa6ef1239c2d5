// Package youtube is the thin client for the remote video service:
// playlist listing, audio stream retrieval and thumbnails.
package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/ytget/ytdlp/v2"
)

// Per-track fetch failures. A single track's failure never aborts a
// batch; the import pipeline records these and moves on.
var (
	ErrNotAvailable  = errors.New("video not available")
	ErrAgeRestricted = errors.New("video is age restricted")
	ErrRegionLocked  = errors.New("video is region locked")
	ErrRateLimited   = errors.New("rate limited by video service")
)

// Track is one entry of a remote playlist, in playlist order.
type Track struct {
	VideoID string
	Title   string
	Author  string
}

// SearchText is the "author title" string keyword filters match
// against, mirroring how imported songs are named.
func (t Track) SearchText() string {
	if t.Author == "" {
		return t.Title
	}
	return t.Author + " " + t.Title
}

// PlaylistInfo is the remote listing of a playlist.
type PlaylistInfo struct {
	ID     string
	Title  string
	Tracks []Track
}

const listTimeout = 60 * time.Second

// Client fetches playlist and audio data. The zero value is usable.
type Client struct {
	// HTTPClient serves thumbnail downloads; nil means http.DefaultClient.
	HTTPClient *http.Client
}

// New returns a ready client.
func New() *Client {
	return &Client{}
}

// ListPlaylistTracks fetches the ordered track list of a remote
// playlist. The library listing carries only video ids and titles; the
// playlist title and per-video authors come from a flat metadata dump,
// and a failed dump degrades to a listing without them.
func (c *Client) ListPlaylistTracks(ctx context.Context, playlistID string) (*PlaylistInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	items, err := ytdlp.New().GetPlaylistItemsAll(ctx, playlistID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list playlist %s: %w", playlistID, err)
	}

	info := &PlaylistInfo{ID: playlistID, Title: "Playlist"}
	title, authors, err := c.fetchPlaylistMeta(ctx, playlistID)
	if err == nil && title != "" {
		info.Title = title
	}
	for _, item := range items {
		info.Tracks = append(info.Tracks, Track{
			VideoID: item.VideoID,
			Title:   item.Title,
			Author:  authors[item.VideoID],
		})
	}
	return info, nil
}

// playlistMeta is the slice of yt-dlp's flat playlist dump we consume.
type playlistMeta struct {
	Title   string `json:"title"`
	Entries []struct {
		ID       string `json:"id"`
		Uploader string `json:"uploader"`
		Channel  string `json:"channel"`
	} `json:"entries"`
}

// fetchPlaylistMeta dumps the playlist's flat metadata through the
// yt-dlp binary and returns the playlist title plus a video id to
// author mapping.
func (c *Client) fetchPlaylistMeta(ctx context.Context, playlistID string) (string, map[string]string, error) {
	cmd := exec.CommandContext(ctx, "yt-dlp",
		"--flat-playlist", "-J",
		PlaylistURL(playlistID),
	)
	output, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return "", nil, ctx.Err()
		}
		return "", nil, fmt.Errorf("failed to fetch playlist metadata for %s: %w", playlistID, err)
	}
	return parsePlaylistMeta(output)
}

func parsePlaylistMeta(data []byte) (string, map[string]string, error) {
	var meta playlistMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return "", nil, fmt.Errorf("malformed playlist metadata: %w", err)
	}
	authors := make(map[string]string, len(meta.Entries))
	for _, entry := range meta.Entries {
		author := entry.Uploader
		if author == "" {
			author = entry.Channel
		}
		if author != "" {
			authors[entry.ID] = author
		}
	}
	return meta.Title, authors, nil
}

// FetchAudio downloads the best audio-only stream of a video into
// destDir and returns the file path. The yt-dlp binary does the heavy
// lifting, the same way the transcoder defers to ffmpeg.
func (c *Client) FetchAudio(ctx context.Context, videoID, destDir string) (string, error) {
	outPath := filepath.Join(destDir, videoID+".m4a")
	cmd := exec.CommandContext(ctx, "yt-dlp",
		"--no-playlist",
		"-f", "bestaudio[ext=m4a]/bestaudio",
		"-o", outPath,
		WatchURL(videoID),
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", classifyFetchError(videoID, string(output), err)
	}
	if _, err := os.Stat(outPath); err != nil {
		return "", fmt.Errorf("audio stream for %s not found after download: %w", videoID, err)
	}
	return outPath, nil
}

// classifyFetchError maps yt-dlp failure output onto the per-track error
// taxonomy so callers can report a cause instead of raw tool output.
func classifyFetchError(videoID, output string, err error) error {
	lower := strings.ToLower(output)
	switch {
	case strings.Contains(lower, "age"):
		return fmt.Errorf("video %s: %w", videoID, ErrAgeRestricted)
	case strings.Contains(lower, "not available in your country"),
		strings.Contains(lower, "region"):
		return fmt.Errorf("video %s: %w", videoID, ErrRegionLocked)
	case strings.Contains(lower, "429"), strings.Contains(lower, "too many requests"):
		return fmt.Errorf("video %s: %w", videoID, ErrRateLimited)
	case strings.Contains(lower, "unavailable"), strings.Contains(lower, "private"),
		strings.Contains(lower, "removed"):
		return fmt.Errorf("video %s: %w", videoID, ErrNotAvailable)
	default:
		return fmt.Errorf("failed to fetch audio for %s: %w", videoID, err)
	}
}

// FetchThumbnail downloads the video's default cover image.
func (c *Client) FetchThumbnail(ctx context.Context, videoID string) ([]byte, error) {
	url := fmt.Sprintf("https://i.ytimg.com/vi/%s/hqdefault.jpg", videoID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch thumbnail for %s: %w", videoID, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s fetching thumbnail for %s", resp.Status, videoID)
	}
	return io.ReadAll(resp.Body)
}

// WatchURL is the public video page for a video id.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// PlaylistURL is the public playlist page for a playlist id.
func PlaylistURL(playlistID string) string {
	return "https://www.youtube.com/playlist?list=" + playlistID
}
