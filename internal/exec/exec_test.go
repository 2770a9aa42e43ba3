package exec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "github.com/simonhull/forge/internal/errors"
)

// mockCommand re-runs the test binary as a fake external command.
func mockCommand(ctx context.Context, name string, args ...string) *exec.Cmd {
	cs := []string{"-test.run=TestHelperProcess", "--", name}
	cs = append(cs, args...)
	cmd := exec.CommandContext(ctx, os.Args[0], cs...)
	cmd.Env = []string{"GO_WANT_HELPER_PROCESS=1"}
	return cmd
}

// TestHelperProcess is the fake command; it does nothing in a normal run.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	args := os.Args
	for i, arg := range args {
		if arg == "--" {
			args = args[i+1:]
			break
		}
	}
	if len(args) == 0 {
		fmt.Fprintf(os.Stderr, "no command specified\n")
		os.Exit(1)
	}

	switch args[0] {
	case "echo":
		fmt.Println(strings.Join(args[1:], " "))
		os.Exit(0)
	case "printenv":
		fmt.Println(os.Getenv(args[1]))
		os.Exit(0)
	case "pwd":
		wd, _ := os.Getwd()
		fmt.Println(wd)
		os.Exit(0)
	case "git":
		wd, _ := os.Getwd()
		fmt.Printf("git %s in %s\n", strings.Join(args[1:], " "), wd)
		os.Exit(0)
	case "error":
		fmt.Fprintf(os.Stderr, "error occurred\n")
		os.Exit(1)
	case "notfound":
		os.Exit(127)
	case "block":
		select {}
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		os.Exit(1)
	}
}

func newMockExecutor(stdout, stderr *bytes.Buffer, opts Options) *Executor {
	opts.Stdout = stdout
	opts.Stderr = stderr
	e := NewExecutor(&opts)
	e.commandFunc = mockCommand
	return e
}

func TestNewExecutor(t *testing.T) {
	e := NewExecutor(nil)
	assert.Equal(t, os.Stdout, e.stdout)
	assert.Equal(t, os.Stderr, e.stderr)
	assert.NotNil(t, e.commandFunc)

	var stdout bytes.Buffer
	e = NewExecutor(&Options{Stdout: &stdout, Env: []string{"TEST=1"}, Dir: "/tmp"})
	assert.Equal(t, &stdout, e.stdout)
	assert.Equal(t, os.Stderr, e.stderr)
	assert.Equal(t, []string{"TEST=1"}, e.env)
	assert.Equal(t, "/tmp", e.dir)
}

func TestExecutorRun(t *testing.T) {
	var stdout, stderr bytes.Buffer
	e := newMockExecutor(&stdout, &stderr, Options{})

	require.NoError(t, e.Run(context.Background(), "echo", "hello", "world"))
	assert.Equal(t, "hello world\n", stdout.String())
}

func TestExecutorRunFailure(t *testing.T) {
	var stdout, stderr bytes.Buffer
	e := newMockExecutor(&stdout, &stderr, Options{})

	err := e.Run(context.Background(), "error", "now")

	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, "error now", cmdErr.Command)
	assert.False(t, cmdErr.NotFound)
	assert.True(t, errors.Is(err, ferrors.ErrEnvironment))
	assert.Contains(t, stderr.String(), "error occurred")
}

func TestExecutorCommandNotFound(t *testing.T) {
	var stdout, stderr bytes.Buffer
	e := newMockExecutor(&stdout, &stderr, Options{})

	err := e.Run(context.Background(), "notfound")

	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.True(t, cmdErr.NotFound)
	assert.EqualError(t, err, "notfound: command not found, please install it and try again")
}

func TestExecutorMissingBinary(t *testing.T) {
	e := NewExecutor(&Options{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}})

	err := e.Run(context.Background(), "forge-test-no-such-binary")

	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.True(t, cmdErr.NotFound)
}

func TestExecutorCancel(t *testing.T) {
	var stdout, stderr bytes.Buffer
	e := newMockExecutor(&stdout, &stderr, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := e.Run(ctx, "block")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "cancelled")
}

func TestExecutorEnvironment(t *testing.T) {
	var stdout, stderr bytes.Buffer
	e := newMockExecutor(&stdout, &stderr, Options{Env: []string{"FORGE_TEST=42"}})

	require.NoError(t, e.Run(context.Background(), "printenv", "FORGE_TEST"))
	assert.Equal(t, "42\n", stdout.String())
}

func TestExecutorWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	var stdout, stderr bytes.Buffer
	e := newMockExecutor(&stdout, &stderr, Options{Dir: dir})

	require.NoError(t, e.Run(context.Background(), "pwd"))

	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(strings.TrimSpace(stdout.String()))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestExecutorRunWithSpinner(t *testing.T) {
	var stdout, stderr bytes.Buffer
	e := newMockExecutor(&stdout, &stderr, Options{})

	require.NoError(t, e.RunWithSpinner(context.Background(), "Testing", "echo", "quiet"))
	assert.Empty(t, stdout.String(), "output is captured while the spinner runs")
	assert.NotContains(t, stderr.String(), "quiet")

	stderr.Reset()
	err := e.RunWithSpinner(context.Background(), "Failing", "error")
	require.Error(t, err)
	assert.Contains(t, stderr.String(), "error occurred", "captured output is shown on failure")
}

func TestGitInit(t *testing.T) {
	dir := t.TempDir()
	var stdout, stderr bytes.Buffer
	e := newMockExecutor(&stdout, &stderr, Options{})

	require.NoError(t, GitInit(context.Background(), e, dir, false))
	assert.Contains(t, stdout.String(), "git init --quiet in ")
	assert.Empty(t, e.dir, "GitInit must not change the executor")
}

func TestSpinnerModel(t *testing.T) {
	m := newSpinnerModel("Working")
	assert.NotNil(t, m.Init())
	assert.Contains(t, m.View(), "Working...")

	_, cmd := m.Update(spinnerDoneMsg{})
	assert.NotNil(t, cmd)
	assert.Equal(t, "✅ Working\n", m.View())

	m = newSpinnerModel("Working")
	m.Update(spinnerDoneMsg{err: errors.New("boom")})
	assert.Equal(t, "❌ Working\n", m.View())
}
