package generator

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "github.com/simonhull/forge/internal/errors"
)

// failOp fails on Execute.
type failOp struct {
	rel string
}

func (op *failOp) Execute(*Transaction) error { return errors.New("disk full") }
func (op *failOp) Undo() error                { return nil }
func (op *failOp) Path() string               { return op.rel }
func (op *failOp) Description() string        { return "fail " + op.rel }

func TestTransactionCommit(t *testing.T) {
	root := filepath.Join(t.TempDir(), "proj")

	tx := NewTransaction(root)
	tx.Add(&WriteFileOp{Rel: "a.txt", Content: []byte("a"), Mode: 0o644})
	tx.Add(&WriteFileOp{Rel: "deep/nested/b.txt", Content: []byte("b"), Mode: 0o644})
	tx.Add(&MkdirOp{Rel: "assets/images", Mode: 0o755})
	tx.Add(&WriteFileOp{Rel: "run.sh", Content: []byte("#!/bin/sh\n"), Mode: 0o755})

	written, err := tx.Commit()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "deep/nested/b.txt", "assets/images", "run.sh"}, written)

	assert.FileExists(t, filepath.Join(root, "a.txt"))
	assert.FileExists(t, filepath.Join(root, "deep", "nested", "b.txt"))
	assert.DirExists(t, filepath.Join(root, "assets", "images"))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(filepath.Join(root, "run.sh"))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
	}

	_, err = tx.Commit()
	assert.EqualError(t, err, "transaction already committed")
}

func TestTransactionRollbackOnError(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "proj")

	tx := NewTransaction(root)
	tx.Add(&WriteFileOp{Rel: "a.txt", Content: []byte("a"), Mode: 0o644})
	tx.Add(&MkdirOp{Rel: "assets/fonts", Mode: 0o755})
	tx.Add(&WriteFileOp{Rel: "pkg/b.txt", Content: []byte("b"), Mode: 0o644})
	tx.Add(&failOp{rel: "pkg/c.txt"})

	written, err := tx.Commit()
	assert.Nil(t, written)

	var ioErr *IoError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "write", ioErr.Op)
	assert.Equal(t, "pkg/c.txt", ioErr.Path)
	assert.Equal(t, []string{"a.txt", "assets/fonts", "pkg/b.txt"}, ioErr.Written)
	assert.True(t, errors.Is(err, ferrors.ErrEnvironment))
	assert.Contains(t, err.Error(), "disk full")

	_, statErr := os.Stat(root)
	assert.True(t, errors.Is(statErr, os.ErrNotExist), "created root should be removed")

	entries, err := os.ReadDir(parent)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestTransactionRollbackKeepsExistingRoot(t *testing.T) {
	root := t.TempDir()
	keep := filepath.Join(root, "keep.txt")
	require.NoError(t, os.WriteFile(keep, []byte("keep"), 0o600))

	tx := NewTransaction(root)
	tx.Add(&WriteFileOp{Rel: "keep.txt", Content: []byte("replaced"), Mode: 0o644})
	tx.Add(&WriteFileOp{Rel: "sub/new.txt", Content: []byte("new"), Mode: 0o644})
	tx.Add(&failOp{rel: "boom"})

	_, err := tx.Commit()
	require.Error(t, err)

	data, err := os.ReadFile(keep)
	require.NoError(t, err)
	assert.Equal(t, "keep", string(data))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(keep)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "keep.txt", entries[0].Name())
}

func TestTransactionExclusiveWriteKeepsForeignFile(t *testing.T) {
	root := t.TempDir()
	foreign := filepath.Join(root, "README.md")
	require.NoError(t, os.WriteFile(foreign, []byte("OTHER PROJECT"), 0o644))

	tx := NewTransaction(root)
	tx.Add(&WriteFileOp{Rel: "a.txt", Content: []byte("a"), Mode: 0o644, Exclusive: true})
	tx.Add(&WriteFileOp{Rel: "README.md", Content: []byte("# demo\n"), Mode: 0o644, Exclusive: true})

	_, err := tx.Commit()
	var notEmpty *TargetNotEmptyError
	require.ErrorAs(t, err, &notEmpty)
	assert.Equal(t, root, notEmpty.Path)
	assert.True(t, errors.Is(err, ferrors.ErrInvalidInput))

	data, err := os.ReadFile(foreign)
	require.NoError(t, err)
	assert.Equal(t, "OTHER PROJECT", string(data))
	assert.NoFileExists(t, filepath.Join(root, "a.txt"))
}

// failHalfway writes half of the content and then fails.
func failHalfway(t *testing.T) {
	t.Helper()
	orig := writeContent
	t.Cleanup(func() { writeContent = orig })
	writeContent = func(w io.Writer, b []byte) error {
		_, _ = w.Write(b[:len(b)/2])
		return errors.New("no space left on device")
	}
}

func TestTransactionPartialWriteIsRemoved(t *testing.T) {
	failHalfway(t)
	root := filepath.Join(t.TempDir(), "proj")

	tx := NewTransaction(root)
	tx.Add(&WriteFileOp{Rel: "pkg/big.txt", Content: []byte("0123456789"), Mode: 0o644, Exclusive: true})

	_, err := tx.Commit()
	var ioErr *IoError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "pkg/big.txt", ioErr.Path)
	assert.Empty(t, ioErr.Written)
	assert.Contains(t, err.Error(), "no space left on device")

	_, statErr := os.Stat(root)
	assert.True(t, errors.Is(statErr, os.ErrNotExist), "partial file and created directories should be removed")
}

func TestTransactionPartialOverwriteIsRestored(t *testing.T) {
	failHalfway(t)
	root := t.TempDir()
	keep := filepath.Join(root, "keep.txt")
	require.NoError(t, os.WriteFile(keep, []byte("keep"), 0o600))

	tx := NewTransaction(root)
	tx.Add(&WriteFileOp{Rel: "keep.txt", Content: []byte("replacement"), Mode: 0o644})

	_, err := tx.Commit()
	require.Error(t, err)

	data, err := os.ReadFile(keep)
	require.NoError(t, err)
	assert.Equal(t, "keep", string(data))
}

func TestTransactionRootIsFile(t *testing.T) {
	root := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(root, nil, 0o644))

	tx := NewTransaction(root)
	tx.Add(&WriteFileOp{Rel: "a.txt", Content: []byte("a"), Mode: 0o644})

	_, err := tx.Commit()
	var ioErr *IoError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "mkdir", ioErr.Op)
}

func TestTransactionDeferredRollback(t *testing.T) {
	root := filepath.Join(t.TempDir(), "proj")

	tx := NewTransaction(root)
	tx.Add(&WriteFileOp{Rel: "a.txt", Content: []byte("a"), Mode: 0o644})
	_, err := tx.Commit()
	require.NoError(t, err)

	tx.Rollback()
	assert.FileExists(t, filepath.Join(root, "a.txt"), "rollback after commit is a no-op")
}

func TestOperationDescriptions(t *testing.T) {
	tx := NewTransaction("root")
	tx.Add(&WriteFileOp{Rel: "main.go", Content: []byte("package main\n")})
	tx.Add(&MkdirOp{Rel: "assets"})

	var got []string
	for _, op := range tx.Operations() {
		got = append(got, op.Description())
	}
	assert.Equal(t, []string{"Create main.go (13 bytes)", "Create assets/"}, got)
}
