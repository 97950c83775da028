package markdown

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Slugify converts a heading title into a stable anchor slug: lowercase,
// accents folded away, punctuation stripped, spaces collapsed to hyphens.
//
//	"Market Size"            -> "market-size"
//	"What's the Problem?"    -> "whats-the-problem"
//
// Slugs are the join key between section headings and traceability links,
// so the transform must be deterministic across platforms. Input is NFD
// normalized first so accented characters fold to their base letter
// instead of disappearing entirely.
func Slugify(title string) string {
	decomposed := norm.NFD.String(title)

	var b strings.Builder
	b.Grow(len(decomposed))
	lastHyphen := true // suppress leading hyphens
	for _, r := range decomposed {
		switch {
		case unicode.Is(unicode.Mn, r):
			// combining mark left over from NFD, drop it
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			// underscores are word characters and stay put in anchors
			b.WriteRune(unicode.ToLower(r))
			lastHyphen = false
		case unicode.IsSpace(r) || r == '-':
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	return strings.TrimRight(b.String(), "-")
}
