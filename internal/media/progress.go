package media

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/matda59/video-to-mp3-converter/internal/models"
)

var (
	timePattern  = regexp.MustCompile(`time=(\d+:\d+:\d+\.\d+)`)
	speedPattern = regexp.MustCompile(`speed=([\d\.]+)x`)
)

// Progress is one decoded ffmpeg status line.
type Progress struct {
	Percent float64
	Speed   string
	Elapsed float64
}

// ParseProgress decodes a single line of ffmpeg's status output against the
// known input duration in seconds. The format is human-oriented and
// version-dependent, so unknown shapes degrade instead of erroring: a line
// without time= yields elapsed 0, a missing speed token yields "N/A", a zero
// duration pins the percentage at 0, and the percentage is clamped at 100.
func ParseProgress(line string, durationSeconds float64) Progress {
	p := Progress{Speed: models.SpeedUnknown}

	if m := timePattern.FindStringSubmatch(line); m != nil {
		parts := strings.Split(m[1], ":")
		h, _ := strconv.ParseFloat(parts[0], 64)
		min, _ := strconv.ParseFloat(parts[1], 64)
		sec, _ := strconv.ParseFloat(parts[2], 64)
		p.Elapsed = h*3600 + min*60 + sec
	}

	if m := speedPattern.FindStringSubmatch(line); m != nil {
		p.Speed = m[1]
	}

	if durationSeconds > 0 {
		percent := p.Elapsed / durationSeconds * 100
		if percent > 100 {
			percent = 100
		}
		p.Percent = math.Round(percent*100) / 100
	}

	return p
}
