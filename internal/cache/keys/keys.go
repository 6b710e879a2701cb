// Package keys builds the cache keys of words lookups.
//
// A key is "unl:v1:<kind>:<readable>:h=<xxhash64>". The readable part is the
// normalised input with unsafe characters replaced, truncated; the hash is
// over the normalised input so distinct inputs never share a key.
package keys

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
)

const (
	prefix = "unl:v1"

	KindLocationID  = "locationid"
	KindCoordinates = "coordinates"
	KindWords       = "words"
)

const maxReadableLen = 96

func Key(kind, input string) string {
	norm := normalize(kind, input)
	readable := sanitizeForKey(norm)
	if len(readable) > maxReadableLen {
		readable = readable[:maxReadableLen]
	}
	sum := xxhash.Sum64String(kind + "\x00" + norm)
	return fmt.Sprintf("%s:%s:%s:h=%016x", prefix, sanitizeForKey(kind), readable, sum)
}

// LocationID is the key of a locationId lookup. id is expected in the form
// accepted by the codec; letters are folded to lower case.
func LocationID(id string) string { return Key(KindLocationID, id) }

func Coordinates(input string) string { return Key(KindCoordinates, input) }

func Words(words string) string { return Key(KindWords, words) }

func normalize(kind, s string) string {
	s = strings.Join(strings.Fields(s), " ")
	switch kind {
	case KindLocationID, KindWords:
		return strings.ToLower(s)
	case KindCoordinates:
		// "57.6, 10.4" and "57.6,10.4" are the same point
		return strings.ReplaceAll(s, " ", "")
	}
	return s
}

func sanitizeForKey(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))

	var prev rune
	for _, r := range s {
		var out rune
		switch {
		case r == ' ':
			out = '_'
		case isAlphaNum(r) || r == '.' || r == ',' || r == '_' || r == '-':
			out = r
		default:
			// '@', '#', ':' and any non-ASCII rune
			out = '-'
		}
		if (out == '_' || out == '-') && out == prev {
			continue
		}
		b.WriteRune(out)
		prev = out
	}
	return b.String()
}

func isAlphaNum(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r < unicode.MaxASCII && unicode.IsDigit(r))
}
