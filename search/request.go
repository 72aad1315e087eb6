package search

import (
	"fmt"
	"strings"
)

const (
	// DefaultContextWindow is the number of lines shown before and after a match.
	DefaultContextWindow = 2

	// DefaultFuzzyThreshold is the minimum similarity score for a fuzzy match.
	DefaultFuzzyThreshold = 80
)

// SearchRequest is the immutable configuration for one search invocation.
// Terms keep their order (and duplicates) for display.
type SearchRequest struct {
	Terms          []string
	CaseSensitive  bool
	WholeWord      bool
	UseRegex       bool
	UseFuzzy       bool
	FuzzyThreshold int
	ContextWindow  int
}

// NewSearchRequest returns a request with default thresholds for the given terms.
func NewSearchRequest(terms ...string) *SearchRequest {
	return &SearchRequest{
		Terms:          append([]string(nil), terms...),
		FuzzyThreshold: DefaultFuzzyThreshold,
		ContextWindow:  DefaultContextWindow,
	}
}

// Validate checks the request for configuration errors.
func (r *SearchRequest) Validate() error {
	if r == nil || len(r.Terms) == 0 {
		return configError("terms", ErrNoTerms)
	}
	for i, t := range r.Terms {
		if strings.TrimSpace(t) == "" {
			return configError(fmt.Sprintf("terms[%d]", i), ErrEmptyTerm)
		}
	}
	if r.UseRegex && r.UseFuzzy {
		return configError("mode", ErrConflictingModes)
	}
	if r.FuzzyThreshold < 0 || r.FuzzyThreshold > 100 {
		return configError("fuzzy_threshold", ErrInvalidThreshold)
	}
	if r.ContextWindow < 0 {
		return configError("context_window", ErrInvalidContextWindow)
	}
	return nil
}

// Clone returns a deep copy so callers cannot mutate a request shared with workers.
func (r *SearchRequest) Clone() *SearchRequest {
	c := *r
	c.Terms = append([]string(nil), r.Terms...)
	return &c
}

// UniqueTerms returns the terms with duplicates removed, keeping first-occurrence order.
func (r *SearchRequest) UniqueTerms() []string {
	seen := make(map[string]bool, len(r.Terms))
	out := make([]string, 0, len(r.Terms))
	for _, t := range r.Terms {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// ModeDescription returns a short human-readable description of the matching mode.
func (r *SearchRequest) ModeDescription() string {
	var parts []string
	switch {
	case r.UseRegex:
		parts = append(parts, "regex")
	case r.UseFuzzy:
		parts = append(parts, fmt.Sprintf("fuzzy>=%d", r.FuzzyThreshold))
	case r.WholeWord:
		parts = append(parts, "whole-word")
	default:
		parts = append(parts, "substring")
	}
	if r.CaseSensitive && !r.UseFuzzy {
		parts = append(parts, "case-sensitive")
	} else {
		parts = append(parts, "case-insensitive")
	}
	return strings.Join(parts, ", ")
}
