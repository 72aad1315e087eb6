package config

import (
	"path/filepath"
	"slices"
	"strings"
)

// CoreTypes defines the file extensions searched by default
var CoreTypes = []string{"pdf", "txt", "docx"}

// ExtendedTypes defines the additional extensions enabled by --extended
var ExtendedTypes = []string{
	"md", "log", "csv",
	"html", "htm",
	"eml", "mbox", "msg",
}

// SupportedTypes returns the searchable extensions for the given mode
func SupportedTypes(extended bool) []string {
	types := make([]string, len(CoreTypes))
	copy(types, CoreTypes)

	if extended {
		types = append(types, ExtendedTypes...)
	}

	return types
}

// BuildFileTypeMap creates a map for O(1) file type lookups, keyed by ".ext"
func BuildFileTypeMap(extended bool) map[string]bool {
	typeMap := make(map[string]bool)
	for _, ext := range SupportedTypes(extended) {
		typeMap["."+ext] = true
	}
	return typeMap
}

// IsSupported checks if a file has a searchable extension (case-insensitive)
func IsSupported(filename string, extended bool) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	return ext != "" && slices.Contains(SupportedTypes(extended), ext)
}

// IsHiddenFile checks if a file should be treated as hidden
func IsHiddenFile(filename string) bool {
	return strings.HasPrefix(filename, ".") && filename != "." && filename != ".."
}

var skipDirs = map[string]bool{
	".git":          true,
	".svn":          true,
	".hg":           true,
	"node_modules":  true,
	".vscode":       true,
	".idea":         true,
	"__pycache__":   true,
	".pytest_cache": true,
	"vendor":        true,
	".next":         true,
	".nuxt":         true,
}

// ShouldSkipDirectory determines if a directory should be skipped during traversal
func ShouldSkipDirectory(dirName string) bool {
	return skipDirs[dirName] || IsHiddenFile(dirName)
}

// GetFileTypeDescription returns a human-readable description of file types
func GetFileTypeDescription(extended bool) string {
	if extended {
		return "documents (" + strings.Join(CoreTypes, ", ") + ") + extended (" + strings.Join(ExtendedTypes, ", ") + ")"
	}
	return "documents (" + strings.Join(CoreTypes, ", ") + ")"
}

// GetEstimatedSearchTime returns time estimate based on file count
func GetEstimatedSearchTime(fileCount int) string {
	switch {
	case fileCount < 100:
		return "under 10 seconds"
	case fileCount < 1000:
		return "10-30 seconds"
	case fileCount < 5000:
		return "30 seconds - 2 minutes"
	default:
		return "2-10 minutes (depends on file sizes)"
	}
}
