package media

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Converter wraps the external ffmpeg/ffprobe binaries.
type Converter struct {
	FFmpegPath  string
	FFprobePath string
}

// NewConverter creates a Converter using the given binary paths.
func NewConverter(ffmpegPath, ffprobePath string) *Converter {
	return &Converter{FFmpegPath: ffmpegPath, FFprobePath: ffprobePath}
}

// ProbeDuration returns the container duration of input in seconds.
func (c *Converter) ProbeDuration(ctx context.Context, input string) (float64, error) {
	cmd := exec.CommandContext(ctx, c.FFprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		input,
	)

	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}

	value := strings.TrimSpace(string(out))
	duration, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe returned unparseable duration %q: %w", value, err)
	}
	return duration, nil
}

// ConvertToMP3 transcodes input into an MP3 at output. ffmpeg's stderr is
// merged into stdout and each status line is decoded against durationSeconds
// and passed to onProgress; lines without a time= token are discarded. The
// returned error is an *exec.ExitError when ffmpeg itself rejected the input;
// anything else is infrastructural.
func (c *Converter) ConvertToMP3(ctx context.Context, input, output string, durationSeconds float64, onProgress func(Progress)) error {
	// -y: an upload reusing a previous name overwrites its old artifact.
	cmd := exec.CommandContext(ctx, c.FFmpegPath, "-y", "-i", input, output)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("ffmpeg stdout pipe: %w", err)
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("ffmpeg start: %w", err)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Split(scanStatusLines)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, "time=") {
			continue
		}
		if onProgress != nil {
			onProgress(ParseProgress(line, durationSeconds))
		}
	}
	if err := scanner.Err(); err != nil {
		_ = cmd.Wait()
		return fmt.Errorf("ffmpeg output read: %w", err)
	}

	return cmd.Wait()
}

// scanStatusLines splits like bufio.ScanLines but also on bare carriage
// returns, which is how ffmpeg redraws its status line on a terminal.
func scanStatusLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
