package generator

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Operation is one filesystem change in a Transaction. Execute performs
// it; Undo reverses a successful Execute as far as possible.
type Operation interface {
	Execute(t *Transaction) error
	Undo() error
	Path() string
	Description() string
}

// writeContent writes a rendered file's bytes. Tests replace it to fail
// partway through a write.
var writeContent = func(w io.Writer, b []byte) error {
	_, err := w.Write(b)
	return err
}

// WriteFileOp writes a file. A file it replaces is restored on Undo.
type WriteFileOp struct {
	Rel     string      // Project-relative path
	Content []byte      // File content (may be empty)
	Mode    fs.FileMode // File permissions

	// Exclusive refuses to replace anything already at Rel. A file that
	// appeared since the target was checked fails the commit with a
	// *TargetNotEmptyError.
	Exclusive bool

	abs      string
	previous []byte
	existed  bool
	prevMode fs.FileMode
}

func (op *WriteFileOp) Execute(t *Transaction) error {
	op.abs = t.abs(op.Rel)
	if err := t.mkdirAll(filepath.Dir(op.abs)); err != nil {
		return err
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if op.Exclusive {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	} else if info, err := os.Stat(op.abs); err == nil {
		if info.IsDir() {
			return fmt.Errorf("%s is a directory", op.Rel)
		}
		prev, err := os.ReadFile(op.abs)
		if err != nil {
			return err
		}
		op.existed, op.previous, op.prevMode = true, prev, info.Mode().Perm()
	}

	f, err := os.OpenFile(op.abs, flags, op.Mode)
	if err != nil {
		if op.Exclusive && errors.Is(err, fs.ErrExist) {
			return &TargetNotEmptyError{Path: t.root}
		}
		return err
	}

	err = writeContent(f, op.Content)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		// OpenFile keeps the mode of a file it truncates.
		err = os.Chmod(op.abs, op.Mode)
	}
	if err != nil {
		// The op never reaches the transaction's done list, so undo the
		// partial write here.
		_ = op.Undo()
		return err
	}
	return nil
}

func (op *WriteFileOp) Undo() error {
	if op.existed {
		if err := os.WriteFile(op.abs, op.previous, op.prevMode); err != nil {
			return err
		}
		return os.Chmod(op.abs, op.prevMode)
	}
	return os.Remove(op.abs)
}

func (op *WriteFileOp) Path() string {
	return op.Rel
}

func (op *WriteFileOp) Description() string {
	return fmt.Sprintf("Create %s (%d bytes)", op.Rel, len(op.Content))
}

// MkdirOp creates an empty directory.
type MkdirOp struct {
	Rel  string
	Mode fs.FileMode
}

func (op *MkdirOp) Execute(t *Transaction) error {
	abs := t.abs(op.Rel)
	if err := t.mkdirAll(abs); err != nil {
		return err
	}
	if op.Mode == 0 {
		return nil
	}
	return os.Chmod(abs, op.Mode)
}

// Undo is a no-op: directories created by the transaction are removed by
// its rollback, deepest first.
func (op *MkdirOp) Undo() error {
	return nil
}

func (op *MkdirOp) Path() string {
	return op.Rel
}

func (op *MkdirOp) Description() string {
	return fmt.Sprintf("Create %s/", op.Rel)
}

// Transaction applies staged operations under a root directory. Commit
// runs them in order; if one fails, the completed operations are undone
// and every directory the transaction created is removed.
type Transaction struct {
	root       string
	operations []Operation
	done       []Operation
	created    []string // Directories created, in creation order
	committed  bool
}

// NewTransaction creates a transaction rooted at root.
func NewTransaction(root string) *Transaction {
	return &Transaction{root: root}
}

// Add stages an operation (doesn't execute it yet).
func (t *Transaction) Add(op Operation) {
	t.operations = append(t.operations, op)
}

// Operations returns the staged operations.
func (t *Transaction) Operations() []Operation {
	return append([]Operation(nil), t.operations...)
}

// Commit executes every staged operation. It is not cancellable; callers
// decide whether to commit before calling it. A failure is an *IoError
// listing the paths written before it.
func (t *Transaction) Commit() ([]string, error) {
	if t.committed {
		return nil, errors.New("transaction already committed")
	}

	if err := t.mkdirAll(t.root); err != nil {
		return nil, &IoError{Op: "mkdir", Path: t.root, Err: err}
	}

	written := make([]string, 0, len(t.operations))
	for _, op := range t.operations {
		if err := op.Execute(t); err != nil {
			t.rollback()
			var notEmpty *TargetNotEmptyError
			if errors.As(err, &notEmpty) {
				return nil, err
			}
			return nil, &IoError{Op: opName(op), Path: op.Path(), Written: written, Err: err}
		}
		t.done = append(t.done, op)
		written = append(written, op.Path())
	}

	t.committed = true
	return written, nil
}

// Rollback undoes a transaction that has not committed (for use in defer).
func (t *Transaction) Rollback() {
	if !t.committed {
		t.rollback()
	}
}

func (t *Transaction) rollback() {
	for i := len(t.done) - 1; i >= 0; i-- {
		_ = t.done[i].Undo() // Best effort
	}
	for i := len(t.created) - 1; i >= 0; i-- {
		_ = os.Remove(t.created[i]) // Only succeeds while empty
	}
	t.done, t.created = nil, nil
}

func (t *Transaction) abs(rel string) string {
	return filepath.Join(t.root, filepath.FromSlash(rel))
}

// mkdirAll creates dir and any missing parents, recording each directory
// it creates.
func (t *Transaction) mkdirAll(dir string) error {
	var missing []string
	for d := dir; ; d = filepath.Dir(d) {
		info, err := os.Stat(d)
		if err == nil {
			if !info.IsDir() {
				return fmt.Errorf("%s is not a directory", d)
			}
			break
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		missing = append(missing, d)
		if parent := filepath.Dir(d); parent == d {
			break
		}
	}

	for i := len(missing) - 1; i >= 0; i-- {
		if err := os.Mkdir(missing[i], 0o755); err != nil && !errors.Is(err, fs.ErrExist) {
			return err
		}
		t.created = append(t.created, missing[i])
	}
	return nil
}

func opName(op Operation) string {
	switch op.(type) {
	case *MkdirOp:
		return "mkdir"
	default:
		return "write"
	}
}
