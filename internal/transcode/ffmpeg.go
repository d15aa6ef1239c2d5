// Package transcode wraps ffmpeg for audio-stream-to-MP3 conversion.
package transcode

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// CheckFFmpeg reports whether ffmpeg is installed and on PATH.
func CheckFFmpeg() bool {
	_, err := exec.LookPath("ffmpeg")
	return err == nil
}

// FFmpeg converts raw audio streams to MP3. It satisfies the import
// pipeline's Transcoder seam.
type FFmpeg struct {
	// Bitrate in kbit/s, e.g. "192".
	Bitrate string
}

// ToMP3 encodes inputFile into an MP3 at outputFile and returns the
// track duration in seconds. The output lands under whatever temporary
// name the caller chose; promotion to a final name is the caller's job.
func (f FFmpeg) ToMP3(ctx context.Context, inputFile, outputFile string) (int, error) {
	bitrate := f.Bitrate
	if bitrate == "" {
		bitrate = "192"
	}
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-y", "-i", inputFile,
		"-vn", "-b:a", bitrate+"k",
		"-id3v2_version", "3",
		outputFile,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, fmt.Errorf("failed to encode %s to mp3: %w\nffmpeg output: %s", inputFile, err, string(output))
	}
	if _, err := os.Stat(outputFile); err != nil {
		return 0, fmt.Errorf("encoded file not found after conversion: %w", err)
	}
	return probeDuration(ctx, outputFile)
}

// probeDuration asks ffprobe for the container duration. A probe
// failure is not fatal to the import; zero means unknown.
func probeDuration(ctx context.Context, path string) (int, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	output, err := cmd.Output()
	if err != nil {
		return 0, nil
	}
	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, nil
	}
	return int(seconds + 0.5), nil
}
