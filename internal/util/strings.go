package util

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// ToValidUTF8 returns s unchanged when it is valid UTF-8. Otherwise it is
// decoded as Windows-1252, the usual encoding of legacy freight exports,
// falling back to a byte-per-rune Latin-1 reading.
func ToValidUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}

	if decoded, err := charmap.Windows1252.NewDecoder().String(s); err == nil {
		return decoded
	}

	runes := make([]rune, len(s))
	for i := 0; i < len(s); i++ {
		runes[i] = rune(s[i])
	}
	return string(runes)
}
