package search

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchEngineExecute(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", lines("intro", "the budget was approved", "outro"))
	b := writeFile(t, dir, "b.txt", lines("nothing relevant here"))
	c := writeDOCX(t, dir, "c.docx", "Budget review", filler)
	s := writeFile(t, dir, "scan.txt", "p. 1")
	writeFile(t, dir, "skip.png", "budget")

	req := NewSearchRequest("budget")
	req.ContextWindow = 1
	eng, err := NewSearchEngine(req, NewFileWalker([]string{"pdf", "txt", "docx"}),
		WithWorkers(2), WithLogger(quietLogger()))
	require.NoError(t, err)
	assert.Equal(t, 2, eng.Workers())

	var mu sync.Mutex
	stages := map[string]int{}
	eng.OnProgress = func(stage string, processed, total int, path string) {
		mu.Lock()
		defer mu.Unlock()
		stages[stage]++
	}

	res, err := eng.Execute(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, []string{a, b, c, s}, res.Names())

	docA, _ := res.Get(a)
	require.Equal(t, KindMatches, docA.Kind)
	occ := docA.Occurrences("budget")
	require.Len(t, occ, 1)
	assert.Equal(t, 2, occ[0].Line)
	assert.Equal(t, []string{"intro", "the budget was approved", "outro"}, occ[0].Context)
	assert.Equal(t, 1, occ[0].Matched)

	docB, _ := res.Get(b)
	assert.Equal(t, KindNoMatches, docB.Kind)

	docC, _ := res.Get(c)
	require.Equal(t, KindMatches, docC.Kind)
	assert.Equal(t, "Budget review", docC.Occurrences("budget")[0].MatchedText())

	docS, _ := res.Get(s)
	assert.Equal(t, SkippedResult(ScannedReason), docS)

	assert.Equal(t, 2, stages[StageDiscover])
	assert.Equal(t, 4, stages[StageSearch])
}

func TestSearchEngineEmptyDirectory(t *testing.T) {
	eng, err := NewSearchEngine(NewSearchRequest("x"), NewFileWalker([]string{"txt"}), WithLogger(quietLogger()))
	require.NoError(t, err)

	res, err := eng.Execute(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Len())
}

func TestSearchEngineMissingRoot(t *testing.T) {
	eng, err := NewSearchEngine(NewSearchRequest("x"), NewFileWalker([]string{"txt"}), WithLogger(quietLogger()))
	require.NoError(t, err)

	_, err = eng.Execute(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, ErrPathNotFound)
}

func TestNewSearchEngineConfigurationErrors(t *testing.T) {
	walker := NewFileWalker([]string{"txt"})

	_, err := NewSearchEngine(NewSearchRequest(), walker)
	assert.ErrorIs(t, err, ErrNoTerms)

	_, err = NewSearchEngine(NewSearchRequest("x"), NewFileWalker([]string{"txt"}, WithExclude("[")))
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "exclude", cfgErr.Field)

	_, err = NewSearchEngine(NewSearchRequest("x"), walker, WithWorkers(0))
	assert.ErrorIs(t, err, ErrInvalidWorkerCount)
}

func TestSearchEngineCopiesRequest(t *testing.T) {
	req := NewSearchRequest("alpha")
	eng, err := NewSearchEngine(req, NewFileWalker([]string{"txt"}), WithLogger(quietLogger()))
	require.NoError(t, err)

	req.Terms[0] = "mutated"
	assert.Equal(t, []string{"alpha"}, eng.Request.Terms)
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "7", FormatNumber(7))
	assert.Equal(t, "999", FormatNumber(999))
	assert.Equal(t, "1,000", FormatNumber(1000))
	assert.Equal(t, "1,234,567", FormatNumber(1234567))
}
