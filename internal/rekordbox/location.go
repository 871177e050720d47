package rekordbox

import (
	"net/url"
	"path"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// LocationURI renders a filesystem path the way Rekordbox stores it:
// file://localhost followed by the percent-encoded NFC path. Windows paths
// keep their drive letter as the first segment.
func LocationURI(location string) string {
	if strings.HasPrefix(location, "file://") {
		return location
	}
	p := norm.NFC.String(strings.ReplaceAll(location, `\`, "/"))
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	u := url.URL{Scheme: "file", Host: "localhost", Path: p}
	return u.String()
}

var kindLabels = map[string]string{
	"m4a":  "M4A File",
	"aac":  "M4A File",
	"alac": "M4A File",
	"aif":  "AIFF File",
	"aiff": "AIFF File",
	"wav":  "WAV File",
	"mp3":  "MP3 File",
	"flac": "FLAC File",
}

var upper = cases.Upper(language.Und)

// KindLabel returns the Kind attribute for a file, derived from its
// extension.
func KindLabel(location string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(strings.ReplaceAll(location, `\`, "/")), "."))
	if ext == "" {
		return ""
	}
	if label, ok := kindLabels[ext]; ok {
		return label
	}
	return upper.String(ext) + " File"
}
