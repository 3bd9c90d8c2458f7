package commands

import (
	"errors"
	"strings"
)

var (
	// ErrUnmatchedQuote is returned when a `"` is never closed.
	ErrUnmatchedQuote = errors.New("unmatched quotation marks")
	// ErrDanglingEscape is returned when the input ends with a lone backslash.
	ErrDanglingEscape = errors.New("no escaped character")
)

const (
	quoteChar  = '"'
	escapeChar = '\\'
)

func isArgSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

// SplitArgs splits raw into whitespace-separated arguments. Only `"` groups
// text, so apostrophes can be used naturally:
//
//	SplitArgs(`apostrophes aren't a problem`) -> [apostrophes aren't a problem]
//	SplitArgs(`"string grouping" is useful`)  -> [string grouping is useful]
//
// A backslash escapes the next character outside quotes, and only `"` or `\`
// inside them. On failure no partial result is returned.
func SplitArgs(raw string) ([]string, error) {
	args := make([]string, 0)
	var (
		cur     strings.Builder
		inToken bool
		quoted  bool
	)

	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case quoted:
			switch {
			case c == quoteChar:
				quoted = false
			case c == escapeChar && i+1 < len(raw) && (raw[i+1] == quoteChar || raw[i+1] == escapeChar):
				i++
				cur.WriteByte(raw[i])
			default:
				cur.WriteByte(c)
			}
		case c == quoteChar:
			quoted = true
			inToken = true
		case c == escapeChar:
			if i+1 >= len(raw) {
				return nil, ErrDanglingEscape
			}
			i++
			cur.WriteByte(raw[i])
			inToken = true
		case isArgSpace(c):
			if inToken {
				args = append(args, cur.String())
				cur.Reset()
				inToken = false
			}
		default:
			cur.WriteByte(c)
			inToken = true
		}
	}

	if quoted {
		return nil, ErrUnmatchedQuote
	}
	if inToken {
		args = append(args, cur.String())
	}
	return args, nil
}
