package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "empty", raw: "", want: []string{}},
		{name: "blank", raw: "   \t ", want: []string{}},
		{name: "plain words", raw: "a test string", want: []string{"a", "test", "string"}},
		{name: "apostrophes", raw: "apostrophes aren't a problem", want: []string{"apostrophes", "aren't", "a", "problem"}},
		{name: "grouping", raw: `"string grouping" is useful`, want: []string{"string grouping", "is", "useful"}},
		{
			name: "single quotes are literal",
			raw:  `foo "bar baz" 'qux quux'`,
			want: []string{"foo", "bar baz", "'qux", "quux'"},
		},
		{name: "quote joins adjacent text", raw: `pre"fix text"post end`, want: []string{"prefix textpost", "end"}},
		{name: "empty quotes", raw: `a "" b`, want: []string{"a", "", "b"}},
		{name: "escaped quote", raw: `say \"hi\"`, want: []string{"say", `"hi"`}},
		{name: "escape inside quotes", raw: `"a \"b\" \\ \c"`, want: []string{`a "b" \ \c`}},
		{name: "collapses whitespace", raw: "  lots   of\tspace  ", want: []string{"lots", "of", "space"}},
		{name: "hash is ordinary", raw: "join #cs-york", want: []string{"join", "#cs-york"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SplitArgs(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitArgsErrors(t *testing.T) {
	got, err := SplitArgs(`foo "unterminated`)
	assert.ErrorIs(t, err, ErrUnmatchedQuote)
	assert.Nil(t, got)

	_, err = SplitArgs(`just remember to "match your quotes`)
	assert.ErrorIs(t, err, ErrUnmatchedQuote)

	_, err = SplitArgs(`"ends in escape \`)
	assert.ErrorIs(t, err, ErrUnmatchedQuote)

	_, err = SplitArgs(`trailing \`)
	assert.ErrorIs(t, err, ErrDanglingEscape)
}
