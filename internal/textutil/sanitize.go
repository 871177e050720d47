package textutil

import (
	"strings"
	"unicode"
)

// fileNameReplacer replaces characters FAT and NTFS reject.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"|", "-",
	"?", "",
	"\"", "'",
	"<", "",
	">", "",
)

// Reserved DOS device names, matched without extension.
var reservedNames = map[string]struct{}{
	"CON": {}, "PRN": {}, "AUX": {}, "NUL": {},
	"COM1": {}, "COM2": {}, "COM3": {}, "COM4": {}, "COM5": {}, "COM6": {}, "COM7": {}, "COM8": {}, "COM9": {},
	"LPT1": {}, "LPT2": {}, "LPT3": {}, "LPT4": {}, "LPT5": {}, "LPT6": {}, "LPT7": {}, "LPT8": {}, "LPT9": {},
}

// SanitizeFileName makes name safe on removable media. Path separators,
// colons, asterisks and pipes become dashes, other rejected characters are
// dropped, control characters are removed, and trailing dots and spaces are
// trimmed. A stem that is a reserved device name gets a leading underscore.
// An empty result becomes "track".
func SanitizeFileName(name string) string {
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(fileNameReplacer.Replace(name))
	name = strings.TrimRight(name, ". ")
	if name == "" {
		return "track"
	}

	stem := name
	if dot := strings.IndexByte(name, '.'); dot >= 0 {
		stem = name[:dot]
	}
	if _, reserved := reservedNames[strings.ToUpper(stem)]; reserved {
		name = "_" + name
	}
	return name
}
