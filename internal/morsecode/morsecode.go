// Package morsecode holds the character -> dot/dash representation
// table, covering the Latin alphabet, digits, and the punctuation and
// prosign characters a complete International Morse implementation
// supports.
package morsecode

import (
	"unicode"

	"github.com/kb9vor/cwgen/internal/cwerr"
)

// Table maps an uppercase ASCII character to its dot/dash
// representation. Lookup is case-insensitive (see Lookup).
var Table = map[rune]string{
	'A': ".-", 'B': "-...", 'C': "-.-.", 'D': "-..", 'E': ".",
	'F': "..-.", 'G': "--.", 'H': "....", 'I': "..", 'J': ".---",
	'K': "-.-", 'L': ".-..", 'M': "--", 'N': "-.", 'O': "---",
	'P': ".--.", 'Q': "--.-", 'R': ".-.", 'S': "...", 'T': "-",
	'U': "..-", 'V': "...-", 'W': ".--", 'X': "-..-", 'Y': "-.--",
	'Z': "--..",

	'0': "-----", '1': ".----", '2': "..---", '3': "...--", '4': "....-",
	'5': ".....", '6': "-....", '7': "--...", '8': "---..", '9': "----.",

	'.': ".-.-.-", ',': "--..--", '?': "..--..", '/': "-..-.",
	'=': "-...-", '-': "-....-", ':': "---...", ';': "-.-.-.",
	'"': ".-..-.", '\'': ".----.", '$': "...-..-", '!': "-.-.--",
	'(': "-.--.", ')': "-.--.-", '&': ".-...", '+': ".-.-.",
	'_': "..--.-", '@': ".--.-.",
}

// IsWhitespace reports whether c should be treated as a word space
// rather than looked up in Table.
func IsWhitespace(c rune) bool {
	return unicode.IsSpace(c)
}

// Lookup returns the representation for c (case-folded to upper),
// or cwerr ErrNotFound if c has no mapping.
func Lookup(c rune) (string, error) {
	if unicode.IsLower(c) {
		c = unicode.ToUpper(c)
	}
	rep, ok := Table[c]
	if !ok {
		return "", cwerr.New(cwerr.NotFound, "no Morse mapping for %q", c)
	}
	return rep, nil
}

// Validate checks that rep contains only '.' and '-' characters.
func Validate(rep string) error {
	if rep == "" {
		return cwerr.New(cwerr.Invalid, "empty representation")
	}
	for _, r := range rep {
		if r != '.' && r != '-' {
			return cwerr.New(cwerr.Invalid, "representation %q contains invalid symbol %q", rep, r)
		}
	}
	return nil
}
