package markdown

import (
	"regexp"
	"strings"
)

// specialChars is the set Telegram requires escaped under MarkdownV2.
const specialChars = "_*[]()~`>#+-=|{}.!"

var fenceRE = regexp.MustCompile("(?s)```.*?```")

// Escape makes text safe for MarkdownV2. Substrings delimited by triple
// backticks pass through byte-identical, fences included; everything else
// gets each special character prefixed with a backslash and invalid UTF-8
// dropped.
//
// Escape is not idempotent: a second application escapes the backslashes
// the first one added.
func Escape(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	last := 0
	for _, loc := range fenceRE.FindAllStringIndex(text, -1) {
		b.WriteString(escapeSpecial(text[last:loc[0]]))
		b.WriteString(text[loc[0]:loc[1]])
		last = loc[1]
	}
	b.WriteString(escapeSpecial(text[last:]))

	return b.String()
}

func escapeSpecial(text string) string {
	text = strings.ToValidUTF8(text, "")

	var b strings.Builder
	for _, r := range text {
		if strings.ContainsRune(specialChars, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
