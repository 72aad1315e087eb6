package search

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func matchSpans(t *testing.T, req *SearchRequest, term, line string) []Span {
	t.Helper()
	m, err := CompileMatcher(term, req)
	require.NoError(t, err)
	return m.Match(line)
}

func TestSubstringMatchIsCaseInsensitiveByDefault(t *testing.T) {
	req := NewSearchRequest("cat")
	assert.Equal(t, []Span{{3, 6}}, matchSpans(t, req, "cat", "ConCATenate"))
}

func TestCaseSensitiveMatch(t *testing.T) {
	req := NewSearchRequest("Cat")
	req.CaseSensitive = true
	assert.Equal(t, []Span{{4, 7}}, matchSpans(t, req, "Cat", "cat Cat"))
	assert.Empty(t, matchSpans(t, req, "Cat", "cat CAT"))
}

func TestWholeWordMatch(t *testing.T) {
	req := NewSearchRequest("cat")
	req.WholeWord = true

	assert.Empty(t, matchSpans(t, req, "cat", "concatenate"))
	assert.Equal(t, []Span{{16, 19}}, matchSpans(t, req, "cat", "concatenate the cat"))
	assert.Len(t, matchSpans(t, req, "cat", "Cat, cat; CAT"), 3)
}

func TestWholeWordUsesUnicodeBoundaries(t *testing.T) {
	req := NewSearchRequest("caf")
	req.WholeWord = true

	assert.Empty(t, matchSpans(t, req, "caf", "café au lait"))
	assert.Equal(t, []Span{{0, 5}}, matchSpans(t, req, "café", "café au lait"))
}

func TestWholeWordRetriesOverlappingCandidates(t *testing.T) {
	req := NewSearchRequest("aa")
	req.WholeWord = true
	// The first candidate "aa" inside "aaa" is rejected; the standalone one is kept.
	assert.Equal(t, []Span{{4, 6}}, matchSpans(t, req, "aa", "aaa aa"))
}

func TestLiteralTermsEscapeMetacharacters(t *testing.T) {
	req := NewSearchRequest("a.b")
	assert.Equal(t, []Span{{4, 7}}, matchSpans(t, req, "a.b", "axb a.b"))
}

func TestRegexMatch(t *testing.T) {
	req := NewSearchRequest(`\d{3}`)
	req.UseRegex = true
	assert.Equal(t, []Span{{5, 8}, {13, 16}}, matchSpans(t, req, `\d{3}`, "call 555 now 1234"))
}

func TestRegexIgnoresWholeWord(t *testing.T) {
	req := NewSearchRequest("cat")
	req.UseRegex = true
	req.WholeWord = true
	assert.Equal(t, []Span{{3, 6}}, matchSpans(t, req, "cat", "concatenate"))
}

func TestInvalidRegexReturnsPatternCompileError(t *testing.T) {
	req := NewSearchRequest("([")
	req.UseRegex = true

	_, err := CompileMatchers(req)
	require.Error(t, err)
	var pce *PatternCompileError
	require.True(t, errors.As(err, &pce))
	assert.Equal(t, "([", pce.Term)
}

func TestCompileMatchersDeduplicatesTerms(t *testing.T) {
	ms, err := CompileMatchers(NewSearchRequest("b", "a", "b"))
	require.NoError(t, err)
	require.Len(t, ms, 2)
	assert.Equal(t, "b", ms[0].Term())
	assert.Equal(t, "a", ms[1].Term())
}

func TestMergeSpans(t *testing.T) {
	in := []Span{{5, 8}, {0, 3}, {2, 4}, {8, 9}}
	assert.Equal(t, []Span{{0, 4}, {5, 9}}, mergeSpans(in))
	assert.Nil(t, mergeSpans(nil))
}
