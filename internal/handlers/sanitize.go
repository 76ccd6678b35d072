package handlers

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	unsafeChars         = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)
	repeatedUnderscores = regexp.MustCompile(`_+`)
)

const maxFilenameLength = 100

// sanitizeFilename strips path components from an uploaded filename and
// collapses characters that are unsafe on common filesystems. Returns ""
// when nothing usable remains, which callers must treat as a rejected name.
func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	s := unsafeChars.ReplaceAllString(base, "_")
	s = repeatedUnderscores.ReplaceAllString(s, "_")
	s = strings.Trim(s, "._")

	if len(s) > maxFilenameLength {
		ext := filepath.Ext(s)
		stem := strings.TrimSuffix(s, ext)
		runes := []rune(stem)
		if len(runes) > maxFilenameLength-len(ext) {
			stem = string(runes[:maxFilenameLength-len(ext)])
		}
		s = stem + ext
	}
	return s
}
