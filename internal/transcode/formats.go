package transcode

import "strings"

var bitrates = map[string]string{
	"mp3": "320k",
	"aac": "256k",
}

// Codecs ffmpeg would not pick from the file extension alone.
var codecs = map[string]string{
	"alac": "alac",
	"opus": "libopus",
}

var extensions = map[string]string{
	"alac": "m4a",
}

// Source suffixes whose demuxer name differs from the suffix.
var sourceFormatHints = map[string]string{
	"opus": "ogg",
}

// BitrateFor returns the target bitrate for format, or "" to keep the
// encoder default.
func BitrateFor(format string) string {
	return bitrates[strings.ToLower(format)]
}

// Extension returns the file extension written for format.
func Extension(format string) string {
	format = strings.ToLower(format)
	if ext, ok := extensions[format]; ok {
		return ext
	}
	return format
}

func codecFor(format string) string {
	return codecs[strings.ToLower(format)]
}

func sourceFormatHint(suffix string) string {
	return sourceFormatHints[strings.ToLower(strings.TrimPrefix(suffix, "."))]
}
