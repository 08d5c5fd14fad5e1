package selector

import (
	"net/url"
	"strings"
	"unicode"
)

// SplitPayload splits pasted or dropped text into raw path strings.
//
// Terminals and file managers hand over dropped files in several shapes,
// all of which are accepted:
//   - paths separated by spaces or newlines
//   - Tcl-style lists: {/path with spaces/a.wav} /plain/b.wav
//   - quoted paths: '/a b.wav' "/c d.wav"
//   - shell-escaped paths: /a\ b.wav
//   - file:// URIs, percent-decoded
//
// SplitPayload does not touch the file system.
func SplitPayload(text string) []string {
	var (
		out     []string
		cur     strings.Builder
		inToken bool
		closeBy rune
	)

	flush := func() {
		if inToken {
			out = append(out, fromURI(cur.String()))
		}
		cur.Reset()
		inToken = false
		closeBy = 0
	}

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if closeBy != 0 {
			if r == closeBy {
				flush()
				continue
			}
			cur.WriteRune(r)
			continue
		}

		switch {
		case r == '\\' && i+1 < len(runes) && isEscapable(runes[i+1]):
			i++
			cur.WriteRune(runes[i])
			inToken = true
		case !inToken && (r == '{' || r == '"' || r == '\''):
			inToken = true
			closeBy = r
			if r == '{' {
				closeBy = '}'
			}
		case unicode.IsSpace(r):
			flush()
		default:
			cur.WriteRune(r)
			inToken = true
		}
	}
	flush()

	return out
}

func isEscapable(r rune) bool {
	return unicode.IsSpace(r) || strings.ContainsRune(`\'"(){}[]&;!$`+"`", r)
}

func fromURI(s string) string {
	if !strings.HasPrefix(s, "file://") {
		return s
	}
	u, err := url.Parse(s)
	if err != nil || u.Path == "" {
		return s
	}
	return u.Path
}
