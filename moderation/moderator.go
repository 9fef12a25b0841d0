// Package moderation censors forbidden words in outgoing messages before
// they reach storage, so history and live pushes agree on the content.
package moderation

import (
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

// Moderator matches a blacklist against lowercased, de-noised text with an
// Aho-Corasick automaton and masks every hit in the original string.
type Moderator struct {
	matcher     *goahocorasick.Machine
	maskChar    rune
	hasPatterns bool
}

// textIndex keeps, for every rune of the normalized form, the index of the
// rune it came from in the original string, so a match span can be mapped
// back onto the untouched input.
type textIndex struct {
	normalized []rune
	origin     []int
}

// NewModerator builds the automaton from the word list. An empty list
// yields a passthrough moderator.
func NewModerator(words []string, maskChar rune) (*Moderator, error) {
	m := &Moderator{maskChar: maskChar}
	if len(words) == 0 {
		return m, nil
	}

	patterns := make([][]rune, len(words))
	for i, w := range words {
		patterns[i] = foldRunes([]rune(w))
	}
	machine := new(goahocorasick.Machine)
	if err := machine.Build(patterns); err != nil {
		return nil, err
	}
	m.matcher = machine
	m.hasPatterns = true
	return m, nil
}

// Censor returns the input with every blacklisted span masked, plus the
// normalized form of each word that matched. Input without matches is
// returned unchanged.
func (m *Moderator) Censor(original string) (string, []string) {
	if !m.hasPatterns {
		return original, nil
	}

	idx := m.index(original)
	if len(idx.normalized) == 0 {
		return original, nil
	}

	spans := m.matcher.MultiPatternSearch(idx.normalized, false)
	if len(spans) == 0 {
		return original, nil
	}

	origRunes := []rune(original)
	found := make([]string, 0, len(spans))
	for _, span := range spans {
		start := span.Pos
		end := start + len(span.Word)
		if start < 0 || end > len(idx.origin) {
			continue
		}
		found = append(found, string(span.Word))

		// Mask the whole original span behind the normalized match,
		// separator characters inside it included.
		for i := idx.origin[start]; i <= idx.origin[end-1]; i++ {
			origRunes[i] = m.maskChar
		}
	}
	return string(origRunes), found
}

func (m *Moderator) index(input string) textIndex {
	origRunes := []rune(input)
	idx := textIndex{
		normalized: make([]rune, 0, len(origRunes)),
		origin:     make([]int, 0, len(origRunes)),
	}
	for i, r := range origRunes {
		folded := foldRune(r)
		if isNoise(folded) {
			continue
		}
		idx.normalized = append(idx.normalized, unicode.ToLower(folded))
		idx.origin = append(idx.origin, i)
	}
	return idx
}

func foldRunes(input []rune) []rune {
	out := make([]rune, 0, len(input))
	for _, r := range input {
		folded := foldRune(r)
		if isNoise(folded) {
			continue
		}
		out = append(out, unicode.ToLower(folded))
	}
	return out
}

// foldRune maps the usual leet-speak substitutions back to letters so
// "h4te" matches a blacklist entry "hate".
func foldRune(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}

func isNoise(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r)
}
