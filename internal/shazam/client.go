// Package shazam implements the recognition collaborator over the
// Shazam-compatible HTTP API.
package shazam

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"pypl2mp3/internal/tagging"
)

const (
	// DefaultEndpoint is the recognition API base URL; override via
	// configuration for self-hosted gateways.
	DefaultEndpoint = "https://api.shazam.example.com"

	userAgent      = "pypl2mp3/1.0"
	maxRetries     = 3
	requestTimeout = 2 * time.Minute

	// sampleBytes bounds how much audio is submitted. The services only
	// fingerprint the first seconds of a track anyway.
	sampleBytes = 500 * 1024
)

// Client submits audio samples for recognition. It satisfies
// tagging.Recognizer.
type Client struct {
	endpoint string
	client   *http.Client
}

// New builds a recognition client against the given API endpoint.
func New(endpoint string, client *http.Client) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if client == nil {
		client = &http.Client{Timeout: requestTimeout}
	}
	return &Client{endpoint: strings.TrimSuffix(endpoint, "/"), client: client}
}

type recognizeResponse struct {
	Track *struct {
		Title    string `json:"title"`
		Subtitle string `json:"subtitle"`
		Images   struct {
			CoverArt string `json:"coverart"`
		} `json:"images"`
	} `json:"track"`
	Matches []struct {
		Score float64 `json:"score"`
	} `json:"matches"`
}

// Recognize submits a sample of the MP3 at path and maps the result to a
// recognition outcome. Service outages surface as ErrServiceUnavailable
// so the state machine can fall back to junk instead of aborting.
func (c *Client) Recognize(ctx context.Context, mp3Path string) (*tagging.Recognition, error) {
	sample, err := readSample(mp3Path)
	if err != nil {
		return nil, err
	}

	var body []byte
	err = retryWithBackoff(maxRetries, time.Second, 30*time.Second, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/v1/recognize", bytes.NewReader(sample))
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Content-Type", "application/octet-stream")

		resp, err := c.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			io.Copy(io.Discard, resp.Body)
			return &HTTPError{StatusCode: resp.StatusCode, Status: resp.Status}
		}
		body, err = io.ReadAll(resp.Body)
		return err
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", tagging.ErrServiceUnavailable, err)
	}

	var parsed recognizeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", tagging.ErrServiceUnavailable, err)
	}
	if parsed.Track == nil || parsed.Track.Title == "" {
		return nil, tagging.ErrNoMatch
	}

	confidence := 100
	if len(parsed.Matches) > 0 {
		confidence = int(parsed.Matches[0].Score)
		if confidence > 100 {
			confidence = 100
		} else if confidence < 0 {
			confidence = 0
		}
	}

	return &tagging.Recognition{
		Artist:      capitalize(parsed.Track.Subtitle),
		Title:       capitalize(parsed.Track.Title),
		Confidence:  confidence,
		CoverArtURL: parsed.Track.Images.CoverArt,
	}, nil
}

func readSample(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio sample %s: %w", path, err)
	}
	defer f.Close()

	sample := make([]byte, sampleBytes)
	n, err := io.ReadFull(f, sample)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("failed to read audio sample %s: %w", path, err)
	}
	return sample[:n], nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
