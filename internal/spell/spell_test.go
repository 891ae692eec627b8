package spell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistance(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"cat", "cat", 0},
		{"cat", "cart", 1},
		{"teh", "the", 1},
		{"kitten", "sitting", 3},
		{"", "abc", 3},
		{"recieve", "receive", 1},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Distance([]rune(tc.a), []rune(tc.b)), "%q/%q", tc.a, tc.b)
	}
}

func TestCheckLine_FindsErrorsWithPositions(t *testing.T) {
	c := New(Options{})
	errs := c.CheckLine("I teh cat")
	require.Len(t, errs, 1)
	assert.Equal(t, "teh", errs[0].Word)
	assert.Equal(t, 2, errs[0].Position)
	require.NotEmpty(t, errs[0].Suggestions)
	assert.Equal(t, "the", errs[0].Suggestions[0])
	assert.LessOrEqual(t, len(errs[0].Suggestions), MaxSuggestions)
}

func TestCheckLine_SkipsKnownAndShortTokens(t *testing.T) {
	c := New(Options{})
	assert.Empty(t, c.CheckLine("The Quick brown fox, it's 42 x."))
	assert.Empty(t, c.CheckLine(""))
}

func TestCheckLine_RunePositions(t *testing.T) {
	c := New(Options{})
	errs := c.CheckLine("\u00e9t\u00e9 wrold")
	require.Len(t, errs, 2)
	assert.Equal(t, 0, errs[0].Position)
	assert.Equal(t, "wrold", errs[1].Word)
	assert.Equal(t, 4, errs[1].Position)
	assert.Contains(t, errs[1].Suggestions, "world")
}

func TestUserDictionaryInvalidatesCache(t *testing.T) {
	c := New(Options{})
	require.Len(t, c.CheckLine("quill rocks"), 2)

	c.AddWord("Quill")
	errs := c.CheckLine("quill rocks")
	require.Len(t, errs, 1)
	assert.Equal(t, "rocks", errs[0].Word)

	c.RemoveWord("quill")
	assert.Len(t, c.CheckLine("quill rocks"), 2)

	c.SetUserWords([]string{"quill", "rocks"})
	assert.Empty(t, c.CheckLine("quill rocks"))
}

func TestCheck_KeysByLine(t *testing.T) {
	c := New(Options{})
	got, err := c.Check([]string{"good line", "a bda one", "okay"}, "en")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Len(t, got[1], 1)
	assert.Equal(t, "bda", got[1][0].Word)

	_, err = c.Check([]string{"x"}, "fr")
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)
}

func TestSuggest_OrderAndBound(t *testing.T) {
	c := New(Options{Words: []string{"zzab"}})
	got := c.Suggest("zzaa")
	require.NotEmpty(t, got)
	assert.Equal(t, "zzab", got[0])
	assert.LessOrEqual(t, len(c.Suggest("ab")), MaxSuggestions)
}
