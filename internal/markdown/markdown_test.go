package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscape(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain text untouched",
			input:    "hello world",
			expected: "hello world",
		},
		{
			name:     "special characters escaped",
			input:    "a.b!c(d)e",
			expected: `a\.b\!c\(d\)e`,
		},
		{
			name:     "every special character gets one backslash",
			input:    specialChars,
			expected: `\_\*\[\]\(\)\~` + "\\`" + `\>\#\+\-\=\|\{\}\.\!`,
		},
		{
			name:     "fenced block kept verbatim",
			input:    "before. ```code_with*specials.``` after!",
			expected: "before\\. ```code_with*specials.``` after\\!",
		},
		{
			name:     "multiple fenced blocks",
			input:    "```a.``` x. ```b!```",
			expected: "```a.``` x\\. ```b!```",
		},
		{
			name:     "multiline fence",
			input:    "say:\n```\nline.one\nline!two\n```\ndone.",
			expected: "say:\n```\nline.one\nline!two\n```\ndone\\.",
		},
		{
			name:     "unterminated fence is escaped as text",
			input:    "```not closed.",
			expected: "\\`\\`\\`not closed\\.",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Escape(tt.input))
		})
	}
}

func TestEscapePreservesFencedBytes(t *testing.T) {
	fenced := "```go\nfmt.Println(\"_*[]()~`>#+-=|{}.!\")\n```"
	out := Escape("intro. " + fenced + " outro!")

	assert.Contains(t, out, fenced, "fenced substring must stay byte-identical")
}

func TestEscapeNotIdempotent(t *testing.T) {
	once := Escape(".")
	twice := Escape(once)

	assert.Equal(t, `\.`, once)
	assert.Equal(t, `\\.`, twice, "second pass escapes nothing but re-escapes the dot")
	assert.NotEqual(t, once, twice)
}

func TestEscapeDropsInvalidUTF8(t *testing.T) {
	out := Escape("ok" + string([]byte{0xff}) + "fine")
	assert.True(t, strings.HasPrefix(out, "ok"))
	assert.True(t, strings.HasSuffix(out, "fine"))
}

func TestEscapeKeepsInvalidUTF8InsideFence(t *testing.T) {
	fenced := "```raw" + string([]byte{0xff, 0xfe}) + "bytes```"
	out := Escape("lead. " + fenced)

	assert.Contains(t, out, fenced, "fenced bytes must survive even when not valid UTF-8")
	assert.True(t, strings.HasPrefix(out, `lead\.`))
}
