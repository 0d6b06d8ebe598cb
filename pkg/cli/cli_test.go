package cli_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/prospector/pkg/cli"
	"github.com/m-mizutani/prospector/pkg/model"
	"github.com/m-mizutani/prospector/pkg/repository"
	"github.com/m-mizutani/prospector/pkg/usecase/history"
)

type result struct {
	err    *cli.Error
	stdout string
	stderr string
}

func run(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	argv := append([]string{"prospector"}, args...)
	err := cli.RunWithIO(context.Background(), argv, strings.NewReader(stdin), &stdout, &stderr)
	return result{err: err, stdout: stdout.String(), stderr: stderr.String()}
}

// seed stores entries in a file repository under dir and returns them newest
// first
func seed(t *testing.T, dir string, inputs ...string) []*model.AnalysisEntry {
	t.Helper()
	ctx := context.Background()
	repo, err := repository.NewFile(dir)
	gt.NoError(t, err)

	base := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	store := history.New(repo)
	var entries []*model.AnalysisEntry
	for i, input := range inputs {
		entry := model.NewAnalysisEntry(input, "🎯 PROSPECT\n---\nCompany: Acme "+input, base.Add(time.Duration(i)*time.Minute))
		entries, err = store.Append(ctx, entry)
		gt.NoError(t, err)
	}
	return entries
}

// clearCredentials unsets variables that feed flags. t.Setenv restores them
// after the test.
func clearCredentials(t *testing.T) {
	for _, key := range []string{
		"GEMINI_API_KEY", "API_KEY", "GEMINI_PROJECT_ID",
		"OPENAI_API_KEY", "ANTHROPIC_API_KEY",
		"PROSPECTOR_PROVIDER", "PROSPECTOR_STORAGE", "PROSPECTOR_DATA_DIR",
		"PROSPECTOR_BUCKET", "PROSPECTOR_CONFIG", "PROSPECTOR_ENV_FILE",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestExamples(t *testing.T) {
	r := run(t, "", "examples")
	gt.V(t, r.err).Nil()
	gt.S(t, r.stdout).Contains("[1]")
	gt.S(t, r.stdout).Contains("Permit List")
	gt.S(t, r.stdout).Contains("LinkedIn Post")
	gt.S(t, r.stdout).Contains("Earnings Excerpt")
}

func TestAnalyzeMissingCredential(t *testing.T) {
	clearCredentials(t)

	r := run(t, "", "analyze", "--storage", "memory", "--provider", "gemini", "--text", "Pioneer permits 12 wells")
	gt.V(t, r.err).NotNil()
	gt.Equal(t, r.err.Code, 1)
	gt.S(t, r.stderr).Contains("GEMINI_API_KEY")
}

func TestAnalyzeMissingOpenAIKey(t *testing.T) {
	clearCredentials(t)

	r := run(t, "", "analyze", "--storage", "memory", "--provider", "openai", "--text", "Pioneer permits 12 wells")
	gt.V(t, r.err).NotNil()
	gt.S(t, r.stderr).Contains("OPENAI_API_KEY")
}

func TestAnalyzeEmptyInput(t *testing.T) {
	clearCredentials(t)

	r := run(t, "", "analyze", "--storage", "memory", "--provider", "ollama", "--text", "   ")
	gt.V(t, r.err).NotNil()
	gt.S(t, r.stderr).Contains("Please provide text to analyze.")
}

func TestAnalyzeUnknownExample(t *testing.T) {
	clearCredentials(t)

	r := run(t, "", "analyze", "--storage", "memory", "--example", "9")
	gt.V(t, r.err).NotNil()
	gt.S(t, r.err.Message).Contains("no such example")
}

func TestHistory(t *testing.T) {
	clearCredentials(t)
	dir := t.TempDir()
	seed(t, dir, "first permit filing", "second linkedin post")

	r := run(t, "", "history", "--storage", "file", "--data-dir", dir)
	gt.V(t, r.err).Nil()
	gt.S(t, r.stdout).Contains("first permit filing...")
	gt.S(t, r.stdout).Contains("second linkedin post...")
	gt.True(t, strings.Index(r.stdout, "second") < strings.Index(r.stdout, "first"))

	r = run(t, "", "history", "--storage", "file", "--data-dir", dir, "--limit", "1")
	gt.V(t, r.err).Nil()
	gt.S(t, r.stdout).Contains("second linkedin post")
	gt.S(t, r.stdout).NotContains("first permit filing")
}

func TestHistoryJSON(t *testing.T) {
	clearCredentials(t)
	dir := t.TempDir()
	entries := seed(t, dir, "only entry")

	r := run(t, "", "history", "--storage", "file", "--data-dir", dir, "--json")
	gt.V(t, r.err).Nil()
	gt.S(t, r.stdout).Contains(`"id": "` + entries[0].ID.String() + `"`)
	gt.S(t, r.stdout).Contains(`"rawInput": "only entry"`)
}

func TestHistoryEmpty(t *testing.T) {
	clearCredentials(t)

	r := run(t, "", "history", "--storage", "file", "--data-dir", t.TempDir())
	gt.V(t, r.err).Nil()
	gt.S(t, r.stdout).Contains("No analysis history.")
}

func TestShow(t *testing.T) {
	clearCredentials(t)
	dir := t.TempDir()
	entries := seed(t, dir, "permit filing")
	id := entries[0].ID.String()

	r := run(t, "", "show", "--storage", "file", "--data-dir", dir, "--raw", id)
	gt.V(t, r.err).Nil()
	gt.S(t, r.stdout).Contains("🎯 PROSPECT\n---\nCompany: Acme permit filing")

	r = run(t, "", "show", "--storage", "file", "--data-dir", dir, id[:8])
	gt.V(t, r.err).Nil()
	gt.S(t, r.stdout).Contains("PROSPECT")
	gt.S(t, r.stdout).Contains("Acme permit filing")
	gt.S(t, r.stdout).NotContains("---")

	r = run(t, "", "show", "--storage", "file", "--data-dir", dir, "no-such-id")
	gt.V(t, r.err).NotNil()

	r = run(t, "", "show", "--storage", "file", "--data-dir", dir)
	gt.V(t, r.err).NotNil()
	gt.S(t, r.err.Message).Contains("entry ID is required")
}

func TestClear(t *testing.T) {
	clearCredentials(t)

	t.Run("declined", func(t *testing.T) {
		dir := t.TempDir()
		seed(t, dir, "keep me")

		r := run(t, "n\n", "clear", "--storage", "file", "--data-dir", dir)
		gt.V(t, r.err).Nil()
		gt.S(t, r.stdout).Contains(history.ClearPrompt + " [y/N]")
		gt.S(t, r.stdout).Contains("History kept.")

		r = run(t, "", "history", "--storage", "file", "--data-dir", dir)
		gt.S(t, r.stdout).Contains("keep me")
	})

	t.Run("empty answer declines", func(t *testing.T) {
		dir := t.TempDir()
		seed(t, dir, "keep me")

		r := run(t, "", "clear", "--storage", "file", "--data-dir", dir)
		gt.V(t, r.err).Nil()
		gt.S(t, r.stdout).Contains("History kept.")
	})

	t.Run("confirmed", func(t *testing.T) {
		dir := t.TempDir()
		seed(t, dir, "remove me", "and me")

		r := run(t, "yes\n", "clear", "--storage", "file", "--data-dir", dir)
		gt.V(t, r.err).Nil()
		gt.S(t, r.stdout).Contains("History cleared.")

		r = run(t, "", "history", "--storage", "file", "--data-dir", dir)
		gt.S(t, r.stdout).Contains("No analysis history.")
	})

	t.Run("yes flag", func(t *testing.T) {
		dir := t.TempDir()
		seed(t, dir, "remove me")

		r := run(t, "", "clear", "--storage", "file", "--data-dir", dir, "--yes")
		gt.V(t, r.err).Nil()
		gt.S(t, r.stdout).NotContains("[y/N]")
		gt.S(t, r.stdout).Contains("History cleared.")
	})
}

func TestSQLiteStorage(t *testing.T) {
	clearCredentials(t)
	dir := t.TempDir()

	r := run(t, "", "history", "--storage", "sqlite", "--data-dir", dir)
	gt.V(t, r.err).Nil()
	gt.S(t, r.stdout).Contains("No analysis history.")

	_, err := os.Stat(filepath.Join(dir, "prospector.db"))
	gt.NoError(t, err)
}

func TestUnknownStorage(t *testing.T) {
	clearCredentials(t)

	r := run(t, "", "history", "--storage", "tape")
	gt.V(t, r.err).NotNil()
	gt.S(t, r.err.Message).Contains("unknown storage")
}

func TestGCSRequiresBucket(t *testing.T) {
	clearCredentials(t)

	r := run(t, "", "history", "--storage", "gcs")
	gt.V(t, r.err).NotNil()
	gt.S(t, r.err.Message).Contains("bucket is required")
}

func TestConfigFile(t *testing.T) {
	clearCredentials(t)
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	seed(t, dataDir, "configured entry")

	path := filepath.Join(dir, "prospector.yaml")
	gt.NoError(t, os.WriteFile(path, []byte("storage: file\ndata_dir: "+dataDir+"\n"), 0600))

	r := run(t, "", "history", "--config", path)
	gt.V(t, r.err).Nil()
	gt.S(t, r.stdout).Contains("configured entry")

	// explicit flags win over the file
	r = run(t, "", "history", "--config", path, "--data-dir", t.TempDir())
	gt.V(t, r.err).Nil()
	gt.S(t, r.stdout).Contains("No analysis history.")
}

func TestConfigFileInvalid(t *testing.T) {
	clearCredentials(t)
	path := filepath.Join(t.TempDir(), "broken.yaml")
	gt.NoError(t, os.WriteFile(path, []byte("timeout: soon\n"), 0600))

	r := run(t, "", "history", "--storage", "memory", "--config", path)
	gt.V(t, r.err).NotNil()
	gt.S(t, r.err.Message).Contains("invalid timeout")

	r = run(t, "", "history", "--storage", "memory", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	gt.V(t, r.err).NotNil()
}

func TestEnvFile(t *testing.T) {
	clearCredentials(t)
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	seed(t, dataDir, "from env file")

	path := filepath.Join(dir, "test.env")
	gt.NoError(t, os.WriteFile(path, []byte("PROSPECTOR_STORAGE=file\nPROSPECTOR_DATA_DIR="+dataDir+"\n"), 0600))

	r := run(t, "", "history", "--env-file", path)
	gt.V(t, r.err).Nil()
	gt.S(t, r.stdout).Contains("from env file")
}

func TestEnvFileMissing(t *testing.T) {
	clearCredentials(t)
	r := run(t, "", "--env-file="+filepath.Join(t.TempDir(), "missing.env"), "examples")
	gt.V(t, r.err).NotNil()
	gt.S(t, r.err.Message).Contains("failed to load env file")
}

func TestHeaderPolicyFlag(t *testing.T) {
	clearCredentials(t)
	dir := t.TempDir()
	entries := seed(t, dir, "policy entry")

	r := run(t, "", "show", "--storage", "file", "--data-dir", dir, "--header-rule", "bogus", entries[0].ID.String())
	gt.V(t, r.err).NotNil()
	gt.S(t, r.err.Message).Contains("unknown header rule")

	r = run(t, "", "show", "--storage", "file", "--data-dir", dir, "--header-policy", filepath.Join(dir, "missing.rego"), entries[0].ID.String())
	gt.V(t, r.err).NotNil()
}
