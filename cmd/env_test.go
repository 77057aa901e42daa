// env_test.go provides the CLI integration test harness: build the kbmirror
// binary once, then drive it as a subprocess against a fresh sqlite file per
// test, the same black-box subprocess-exec shape used elsewhere for CLI
// testing, adapted for a store opened with --db instead of a filesystem-
// backed repository.
package cmd

import (
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	binaryPath string
	buildOnce  sync.Once
	buildErr   error
)

// buildBinary compiles the kbmirror binary once for all tests in this package.
func buildBinary(t *testing.T) string {
	t.Helper()

	buildOnce.Do(func() {
		tmpDir, err := os.MkdirTemp("", "kbmirror-test-bin-*")
		if err != nil {
			buildErr = err
			return
		}

		binaryName := "kbmirror"
		if os.PathSeparator == '\\' {
			binaryName = "kbmirror.exe"
		}
		binaryPath = filepath.Join(tmpDir, binaryName)

		wd := mustGetwd()
		projectRoot := filepath.Dir(wd)

		cmd := exec.Command("go", "build", "-o", binaryPath, ".")
		cmd.Dir = projectRoot
		if out, err := cmd.CombinedOutput(); err != nil {
			buildErr = &buildError{err: err, output: string(out)}
		}
	})

	if buildErr != nil {
		t.Fatalf("failed to build binary: %v", buildErr)
	}
	return binaryPath
}

type buildError struct {
	err    error
	output string
}

func (e *buildError) Error() string {
	return e.err.Error() + "\n" + e.output
}

func mustGetwd() string {
	dir, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	return dir
}

// testEnv holds test environment state: an isolated sqlite file under a
// temp dir, driven entirely through the --db flag.
type testEnv struct {
	t      *testing.T
	dir    string
	dbPath string
	binary string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	binary := buildBinary(t)
	dir := t.TempDir()

	return &testEnv{t: t, dir: dir, dbPath: filepath.Join(dir, "kbmirror.db"), binary: binary}
}

// run executes kbmirror with --db pinned to this env's sqlite file and
// returns stdout+stderr combined.
func (e *testEnv) run(args ...string) string {
	e.t.Helper()
	out, err := e.runErr(args...)
	if err != nil {
		e.t.Fatalf("kbmirror %v failed: %v\noutput: %s", args, err, out)
	}
	return out
}

func (e *testEnv) runErr(args ...string) (string, error) {
	e.t.Helper()

	full := append([]string{"--db", e.dbPath}, args...)
	cmd := exec.Command(e.binary, full...)
	cmd.Dir = e.dir
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func (e *testEnv) contains(output, expected string) {
	e.t.Helper()
	assert.Contains(e.t, output, expected)
}

// newFixtureServer starts an httptest server serving a single text document
// at /doc.txt, classified by discovery.Classify as a single_url root.
func newFixtureServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func docURL(srv *httptest.Server) string {
	return strings.TrimRight(srv.URL, "/") + "/doc.txt"
}

// lastJSONLine returns the final non-empty line of command output, where
// --output json writes its single result line.
func lastJSONLine(output string) string {
	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) != "" {
			return lines[i]
		}
	}
	return ""
}
