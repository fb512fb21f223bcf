// Package sandbox prepares the private working directory a submission is
// judged in.
package sandbox

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	cp "github.com/otiai10/copy"
)

// Box is a freshly created directory owned by a single judging attempt.
// Close removes everything inside and is safe to call more than once.
type Box struct {
	path string
}

// NewBox creates a new box under root. An empty root uses the OS temp dir.
func NewBox(root string) (*Box, error) {
	if root != "" {
		if err := os.MkdirAll(root, 0755); err != nil {
			return nil, fmt.Errorf("failed to create sandbox root: %w", err)
		}
	}
	path, err := os.MkdirTemp(root, "submission-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create sandbox: %w", err)
	}
	return &Box{path: path}, nil
}

func (box *Box) Path() string {
	return box.path
}

// Close removes the box. A box that is already gone is not an error.
func (box *Box) Close() error {
	err := os.RemoveAll(box.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove sandbox %s: %w", box.path, err)
	}
	return nil
}

func (box *Box) resolve(rel string) (string, error) {
	return within(box.path, rel)
}

func (box *Box) AddFile(path string, content []byte) error {
	full, err := box.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return err
	}
	return os.WriteFile(full, content, 0644)
}

func (box *Box) HasFile(path string) bool {
	full, err := box.resolve(path)
	if err != nil {
		return false
	}
	_, err = os.Stat(full)
	return err == nil
}

func (box *Box) GetFile(path string) ([]byte, error) {
	full, err := box.resolve(path)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(full)
}

// Remove deletes a file or directory tree inside the box if present.
func (box *Box) Remove(path string) error {
	full, err := box.resolve(path)
	if err != nil {
		return err
	}
	if full == box.path {
		return fmt.Errorf("refusing to remove sandbox root")
	}
	return os.RemoveAll(full)
}

// CopyIn copies the directory tree at src into the box at dst.
func (box *Box) CopyIn(src string, dst string) error {
	full, err := box.resolve(dst)
	if err != nil {
		return err
	}
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("fixtures %s: %w", src, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("fixtures %s is not a directory", src)
	}
	return cp.Copy(src, full, cp.Options{
		OnSymlink: func(string) cp.SymlinkAction { return cp.Deep },
	})
}

// within joins rel onto root and rejects results escaping root.
func within(root, rel string) (string, error) {
	full := filepath.Join(root, rel)
	r, err := filepath.Rel(root, full)
	if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes sandbox", rel)
	}
	return full, nil
}
