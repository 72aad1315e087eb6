package app

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"doc-search/config"
)

const filler = "lorem ipsum dolor sit amet consectetur adipiscing elit sed do eiusmod"

// isolate points the default config location at an empty directory.
func isolate(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
}

func fixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"a.txt":    strings.Join([]string{"intro", "the budget was approved", "outro", filler}, "\n"),
		"b.txt":    strings.Join([]string{"nothing to see", filler}, "\n"),
		"c.md":     strings.Join([]string{"budget in markdown", filler}, "\n"),
		"scan.txt": "p. 1",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func runApp(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	a := NewApp()
	a.Writer = &stdout
	a.ErrWriter = &stderr
	code := run(a, append([]string{"doc-search"}, args...))
	return code, stdout.String(), stderr.String()
}

func TestRunTextOutput(t *testing.T) {
	isolate(t)
	dir := fixture(t)

	code, out, errOut := runApp(t, "-j", "2", dir, "budget")
	require.Equal(t, ExitOK, code, errOut)

	assert.Contains(t, out, filepath.Join(dir, "a.txt")+"\n")
	assert.Contains(t, out, ">> the budget was approved")
	assert.NotContains(t, out, "c.md")
	assert.NotContains(t, out, "\x1b[")
	assert.Contains(t, out, "Searched 3 documents: 1 matched, 1 without matches, 1 skipped, 0 failed")
}

func TestRunJSONOutputExtended(t *testing.T) {
	isolate(t)
	dir := fixture(t)

	code, out, errOut := runApp(t, "--format", "json", "--extended", "-C", "0", dir, "budget")
	require.Equal(t, ExitOK, code, errOut)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Len(t, decoded, 4)
	assert.Nil(t, decoded[filepath.Join(dir, "b.txt")])
	assert.Equal(t, map[string]any{"skipped": "scanned/empty"}, decoded[filepath.Join(dir, "scan.txt")])
	assert.Contains(t, out, `">> budget in markdown"`)
}

func TestRunWritesOutputFile(t *testing.T) {
	isolate(t)
	dir := fixture(t)
	target := filepath.Join(t.TempDir(), "report.html")

	code, out, errOut := runApp(t, "--format", "html", "-o", target, dir, "budget")
	require.Equal(t, ExitOK, code, errOut)
	assert.Empty(t, out)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<mark>budget</mark>")
}

func TestRunConfigFileDefaults(t *testing.T) {
	isolate(t)
	dir := fixture(t)
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("format = \"json\"\ncontext = 0\n"), 0o644))

	code, out, errOut := runApp(t, "--config", cfgPath, dir, "budget")
	require.Equal(t, ExitOK, code, errOut)
	assert.Contains(t, out, `">> the budget was approved"`)

	// Command-line flags win over the file.
	code, out, errOut = runApp(t, "--config", cfgPath, "--format", "text", dir, "budget")
	require.Equal(t, ExitOK, code, errOut)
	assert.Contains(t, out, "Searched 3 documents")
}

func TestRunUsageErrors(t *testing.T) {
	isolate(t)
	dir := fixture(t)
	badCfg := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(badCfg, []byte("unknown_key = 1\n"), 0o644))

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing term", []string{dir}, "PATH and at least one TERM"},
		{"missing path", []string{filepath.Join(dir, "nope"), "x"}, "path does not exist"},
		{"unsupported file", []string{filepath.Join(dir, "c.md"), "x"}, "unsupported document format"},
		{"bad format", []string{"--format", "xml", dir, "x"}, "invalid format"},
		{"bad log level", []string{"--log-level", "loud", dir, "x"}, "invalid log level"},
		{"regex and fuzzy", []string{"-r", "-f", dir, "x"}, "mutually exclusive"},
		{"bad workers", []string{"-j", "0", dir, "x"}, "worker count"},
		{"bad exclude", []string{"--exclude", "[", dir, "x"}, "exclude"},
		{"unknown config key", []string{"--config", badCfg, dir, "x"}, "unknown_key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, errOut := runApp(t, tt.args...)
			assert.Equal(t, ExitUsage, code)
			assert.Contains(t, errOut, tt.want)
		})
	}
}

func TestRunInvalidRegexFailsPerDocument(t *testing.T) {
	isolate(t)
	dir := fixture(t)

	code, out, errOut := runApp(t, "--regex", "--format", "json", dir, "(")
	require.Equal(t, ExitOK, code, errOut)
	assert.Contains(t, out, "invalid regular expression")
}

// resolvedOptions runs the app with an action that only merges options.
func resolvedOptions(t *testing.T, fc *config.FileConfig, args ...string) *options {
	t.Helper()
	var got *options
	a := NewApp()
	a.Writer, a.ErrWriter = &bytes.Buffer{}, &bytes.Buffer{}
	a.Action = func(c *cli.Context) error {
		var err error
		got, err = resolveOptions(c, fc)
		return err
	}
	require.Equal(t, ExitOK, run(a, append([]string{"doc-search"}, args...)))
	require.NotNil(t, got)
	return got
}

func TestNoColorEnvironment(t *testing.T) {
	isolate(t)
	dir := fixture(t)
	t.Setenv("NO_COLOR", "yes")

	code, _, errOut := runApp(t, dir, "budget")
	assert.Equal(t, ExitOK, code, errOut)

	assert.False(t, resolvedOptions(t, &config.FileConfig{}, dir, "budget").color)

	on := true
	assert.False(t, resolvedOptions(t, &config.FileConfig{Color: &on}, dir, "budget").color)
}

func TestColorDefaults(t *testing.T) {
	isolate(t)
	dir := fixture(t)
	t.Setenv("NO_COLOR", "")

	assert.True(t, resolvedOptions(t, &config.FileConfig{}, dir, "budget").color)
	assert.False(t, resolvedOptions(t, &config.FileConfig{}, "--no-color", dir, "budget").color)

	off := false
	assert.False(t, resolvedOptions(t, &config.FileConfig{Color: &off}, dir, "budget").color)
}

func TestRunReportsOutputWriteFailure(t *testing.T) {
	isolate(t)
	dir := fixture(t)
	if _, err := os.Stat("/dev/full"); err != nil {
		t.Skip("/dev/full not available")
	}

	code, _, errOut := runApp(t, "-o", "/dev/full", dir, "budget")
	assert.Equal(t, ExitRuntime, code)
	assert.NotEmpty(t, errOut)

	code, _, errOut = runApp(t, "-o", t.TempDir(), dir, "budget")
	assert.Equal(t, ExitRuntime, code)
	assert.Contains(t, errOut, "create output")
}

func TestParseLevel(t *testing.T) {
	for _, s := range []string{"debug", "info", "warn", "error"} {
		_, err := parseLevel(s)
		assert.NoError(t, err, s)
	}
	_, err := parseLevel("verbose")
	assert.Error(t, err)
}
