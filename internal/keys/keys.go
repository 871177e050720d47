package keys

import (
	"fmt"
	"strings"

	"mixport/internal/services"
)

// Notation selects the textual representation of a key.
type Notation string

const (
	Lancelot Notation = "lancelot"
	Musical  Notation = "musical"
)

// ParseNotation converts a configuration value into a Notation.
func ParseNotation(value string) (Notation, error) {
	switch Notation(strings.ToLower(strings.TrimSpace(value))) {
	case Lancelot:
		return Lancelot, nil
	case Musical:
		return Musical, nil
	default:
		return "", services.Wrap(services.ErrConfiguration, "keys", "parse notation",
			fmt.Sprintf("unknown key notation %q", value), nil)
	}
}

var lancelot = map[int]string{
	0:  "",
	1:  "8B",
	2:  "3B",
	3:  "10B",
	4:  "5B",
	5:  "12B",
	6:  "7B",
	7:  "2B",
	8:  "9B",
	9:  "4B",
	10: "11B",
	11: "6B",
	12: "1B",
	13: "5A",
	14: "12A",
	15: "7A",
	16: "2A",
	17: "9A",
	18: "4A",
	19: "11A",
	20: "6A",
	21: "1A",
	22: "8A",
	23: "3A",
	24: "10A",
}

var musical = map[int]string{
	0:  "",
	1:  "C",
	2:  "Db",
	3:  "D",
	4:  "Eb",
	5:  "E",
	6:  "F",
	7:  "F#",
	8:  "G",
	9:  "Ab",
	10: "A",
	11: "Bb",
	12: "B",
	13: "Cm",
	14: "Dbm",
	15: "Dm",
	16: "Ebm",
	17: "Em",
	18: "Fm",
	19: "F#m",
	20: "Gm",
	21: "Abm",
	22: "Am",
	23: "Bbm",
	24: "Bm",
}

// Resolve returns the display string for a Mixxx key id. Id 0 resolves to the
// empty string; ids outside the tables carry services.ErrUnknownKey.
func Resolve(id int, n Notation) (string, error) {
	var table map[int]string
	switch n {
	case Lancelot:
		table = lancelot
	case Musical:
		table = musical
	default:
		return "", services.Wrap(services.ErrConfiguration, "keys", "resolve",
			fmt.Sprintf("unknown key notation %q", string(n)), nil)
	}
	value, ok := table[id]
	if !ok {
		return "", services.Wrap(services.ErrUnknownKey, "keys", "resolve",
			fmt.Sprintf("key id %d", id), nil)
	}
	return value, nil
}
