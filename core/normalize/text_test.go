package normalize

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollapse(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"a  b", "a b"},
		{"  a\n\tb  ", " a b "},
		{"a\u00a0 b", "a b"},
		{"a b\ufeffc", "a b c"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Collapse(tt.in), "Collapse(%q)", tt.in)
	}
}

func TestClean(t *testing.T) {
	assert.Equal(t, "a b", Clean("\n  a \n b "))
	assert.Equal(t, "", Clean(" \t\n"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "héll", Truncate("héllo", 4))
	assert.Equal(t, "héllo", Truncate("héllo", 10))
	assert.Equal(t, "", Truncate("héllo", 0))
	assert.Equal(t, 5, Len("héllo"))
}

func TestSpaceClassAgreesWithIsSpace(t *testing.T) {
	re := regexp.MustCompile("^" + SpaceClass + "$")
	for _, r := range []rune{' ', '\t', '\n', '\v', '\f', '\r', 0x85, 0xa0, 0x1680, 0x2000, 0x2028, 0x2029, 0x202f, 0x3000, 0xfeff, 'a', '_', '0'} {
		assert.Equal(t, IsSpace(r), re.MatchString(string(r)), "rune %U", r)
	}
}

func TestMarkdownNormalizer_ResolvesLinks(t *testing.T) {
	md, err := New().Normalize(`<h2>Refer</h2><p>See <a href="/topics/x">topic</a>.</p>`, "https://cks.example/guide")
	require.NoError(t, err)
	assert.Contains(t, md, "## Refer")
	assert.Contains(t, md, "(https://cks.example/topics/x)")
}

func TestMarkdownNormalizer_Tables(t *testing.T) {
	md, err := New().Normalize(`<table><tr><th>Drug</th><th>Dose</th></tr><tr><td>Paracetamol</td><td>1 g</td></tr></table>`, "")
	require.NoError(t, err)
	assert.Contains(t, md, "| Drug")
	assert.Contains(t, md, "Paracetamol")
}
