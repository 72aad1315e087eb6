package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// SearchEngine ties discovery and the coordinator together for one request.
type SearchEngine struct {
	Request *SearchRequest
	Walker  *FileWalker

	// Optional progress callback (nil if unused)
	OnProgress ProgressFunc

	coordinator *Coordinator
	logger      *slog.Logger
}

// NewSearchEngine validates req and builds the coordinator from opts.
func NewSearchEngine(req *SearchRequest, walker *FileWalker, opts ...Option) (*SearchEngine, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := walker.ValidatePatterns(); err != nil {
		return nil, configError("exclude", err)
	}

	se := &SearchEngine{
		Request: req.Clone(),
		Walker:  walker,
	}
	opts = append(opts, WithProgress(se.report))
	c, err := NewCoordinator(opts...)
	if err != nil {
		return nil, err
	}
	se.coordinator = c
	se.logger = c.base.With("component", "engine")
	return se, nil
}

func (se *SearchEngine) report(stage string, processed, total int, path string) {
	if se.OnProgress != nil {
		se.OnProgress(stage, processed, total, path)
	}
}

// Workers returns the coordinator's worker count.
func (se *SearchEngine) Workers() int { return se.coordinator.Workers() }

// Execute performs the complete search operation under root.
func (se *SearchEngine) Execute(ctx context.Context, root string) (*SearchResult, error) {
	startTime := time.Now()

	se.report(StageDiscover, 0, 0, root)
	files, err := se.Walker.FindFiles(ctx, root)
	if err != nil {
		return nil, err
	}
	se.report(StageDiscover, len(files), len(files), root)
	se.logger.Info("documents discovered", "root", root, "count", formatNumber(len(files)))

	if len(files) == 0 {
		return NewSearchResult(), nil
	}

	result, err := se.coordinator.Run(ctx, files, se.Request)
	se.logger.Info("search completed", "elapsed", time.Since(startTime).Round(time.Millisecond))
	return result, err
}

// formatNumber formats a number with thousands separators
func formatNumber(n int) string {
	str := fmt.Sprintf("%d", n)
	if len(str) <= 3 {
		return str
	}

	var result strings.Builder
	for i, digit := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result.WriteString(",")
		}
		result.WriteRune(digit)
	}

	return result.String()
}

// FormatNumber formats n with thousands separators.
func FormatNumber(n int) string { return formatNumber(n) }
