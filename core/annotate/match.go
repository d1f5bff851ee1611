package annotate

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gaurav-prasanna/pagemark/core/normalize"
)

// MinMatchLen is the shortest normalized passage that will be searched for.
const MinMatchLen = 10

// prefixLengths are the fallback candidate lengths, longest first.
var prefixLengths = []int{80, 50, 30}

// candidates returns the search strings for a normalized passage: the whole
// passage, then its leading prefixes.
func candidates(norm string) []string {
	n := normalize.Len(norm)
	if n < MinMatchLen {
		return nil
	}
	out := []string{norm}
	for _, l := range prefixLengths {
		if n <= l || l < MinMatchLen {
			continue
		}
		out = append(out, normalize.Truncate(norm, l))
	}
	return out
}

// firstCandidate returns the first candidate contained in collapsed text.
func firstCandidate(collapsed string, cands []string) (string, bool) {
	for _, c := range cands {
		if strings.Contains(collapsed, c) {
			return c, true
		}
	}
	return "", false
}

// spanFinder locates needle in raw text, returning byte offsets.
type spanFinder func(raw, needle string) (start, end int, ok bool)

// exactSpan is the plain substring stage.
func exactSpan(raw, needle string) (int, int, bool) {
	i := strings.Index(raw, needle)
	if i < 0 {
		return 0, 0, false
	}
	return i, i + len(needle), true
}

// tolerantSpan matches needle with every whitespace run widened to one or
// more whitespace characters, recovering offsets in uncollapsed text.
func tolerantSpan(raw, needle string) (int, int, bool) {
	re, err := regexp.Compile(tolerantPattern(needle))
	if err != nil {
		return 0, 0, false
	}
	loc := re.FindStringIndex(raw)
	if loc == nil {
		return 0, 0, false
	}
	return loc[0], loc[1], true
}

func tolerantPattern(needle string) string {
	var b strings.Builder
	var lit strings.Builder
	inSpace := false
	flush := func() {
		if lit.Len() > 0 {
			b.WriteString(regexp.QuoteMeta(lit.String()))
			lit.Reset()
		}
	}
	for len(needle) > 0 {
		r, size := utf8.DecodeRuneInString(needle)
		needle = needle[size:]
		if normalize.IsSpace(r) {
			if !inSpace {
				flush()
				b.WriteString(normalize.SpaceClass + "+")
				inSpace = true
			}
			continue
		}
		inSpace = false
		lit.WriteRune(r)
	}
	flush()
	return b.String()
}

// locateStages are tried in order; the first hit wins.
var locateStages = []spanFinder{exactSpan, tolerantSpan}

// locate finds needle in raw using each stage in turn.
func locate(raw, needle string) (int, int, bool) {
	for _, find := range locateStages {
		if start, end, ok := find(raw, needle); ok {
			return start, end, true
		}
	}
	return 0, 0, false
}
