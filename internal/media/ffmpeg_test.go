package media

import (
	"bufio"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// writeScript drops an executable shell script into a temp dir so the
// Converter can be pointed at a fake ffmpeg/ffprobe.
func writeScript(t *testing.T, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell-script fakes require a POSIX shell")
	}

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestProbeDuration(t *testing.T) {
	probe := writeScript(t, "ffprobe", "echo '12.500000'\n")
	c := NewConverter("ffmpeg", probe)

	d, err := c.ProbeDuration(context.Background(), "input.wav")
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if d != 12.5 {
		t.Fatalf("duration = %v, want 12.5", d)
	}
}

func TestProbeDurationUnparseable(t *testing.T) {
	probe := writeScript(t, "ffprobe", "echo 'N/A'\n")
	c := NewConverter("ffmpeg", probe)

	if _, err := c.ProbeDuration(context.Background(), "input.wav"); err == nil {
		t.Fatal("expected error for unparseable output")
	}
}

func TestProbeDurationNonzeroExit(t *testing.T) {
	probe := writeScript(t, "ffprobe", "exit 1\n")
	c := NewConverter("ffmpeg", probe)

	if _, err := c.ProbeDuration(context.Background(), "input.wav"); err == nil {
		t.Fatal("expected error for nonzero exit")
	}
}

func TestConvertToMP3ReportsProgress(t *testing.T) {
	// Status lines on stderr separated by carriage returns, like real ffmpeg.
	ffmpeg := writeScript(t, "ffmpeg",
		"printf 'Stream mapping: noise\\n' >&2\n"+
			"printf 'size= 1kB time=00:00:05.00 speed=1.00x\\r' >&2\n"+
			"printf 'size= 2kB time=00:00:10.00 speed=2.00x\\r' >&2\n"+
			"exit 0\n")
	c := NewConverter(ffmpeg, "ffprobe")

	var got []Progress
	err := c.ConvertToMP3(context.Background(), "in.wav", "out.mp3", 10, func(p Progress) {
		got = append(got, p)
	})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("got %d progress events, want 2", len(got))
	}
	if got[0].Percent != 50 || got[0].Speed != "1.00" {
		t.Fatalf("first event = %+v", got[0])
	}
	if got[1].Percent != 100 || got[1].Elapsed != 10 {
		t.Fatalf("second event = %+v", got[1])
	}
}

func TestConvertToMP3NonzeroExit(t *testing.T) {
	ffmpeg := writeScript(t, "ffmpeg", "echo 'in.wav: Invalid data' >&2\nexit 1\n")
	c := NewConverter(ffmpeg, "ffprobe")

	err := c.ConvertToMP3(context.Background(), "in.wav", "out.mp3", 10, nil)
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("err = %v, want *exec.ExitError", err)
	}
}

func TestConvertToMP3SpawnFailure(t *testing.T) {
	c := NewConverter(filepath.Join(t.TempDir(), "missing-ffmpeg"), "ffprobe")

	err := c.ConvertToMP3(context.Background(), "in.wav", "out.mp3", 10, nil)
	if err == nil {
		t.Fatal("expected spawn error")
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		t.Fatalf("spawn failure should not be an exit error: %v", err)
	}
}

func TestScanStatusLines(t *testing.T) {
	in := "first line\nsecond\rthird\r\nlast"
	scanner := bufio.NewScanner(strings.NewReader(in))
	scanner.Split(scanStatusLines)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}

	want := []string{"first line", "second", "third", "", "last"}
	if len(lines) != len(want) {
		t.Fatalf("lines = %q, want %q", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}
