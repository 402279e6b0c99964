package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// File keeps the token as the raw contents of <dir>/<key>, mode 0600.
// Writes go through a temp file, fsync and rename so a crash never leaves a
// half-written token behind.
type File struct {
	path string
}

// NewFile validates key as a plain file name and prepares dir (0700).
func NewFile(dir, key string) (*File, error) {
	key = strings.TrimSpace(key)
	if key == "" || key != filepath.Base(key) || strings.HasPrefix(key, ".") {
		return nil, fmt.Errorf("tokenstore: invalid key %q", key)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("tokenstore: mkdir %s: %w", dir, err)
	}
	return &File{path: filepath.Join(dir, key)}, nil
}

// Path is the file holding the token.
func (f *File) Path() string { return f.path }

func (f *File) Get(ctx context.Context) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, err
	}
	if len(data) == 0 {
		return "", false, nil
	}
	return string(data), true, nil
}

func (f *File) Set(ctx context.Context, value string) error {
	if value == "" {
		return ErrEmptyValue
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := writeSynced(tmp, []byte(value)); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, f.path)
}

func (f *File) Remove(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func writeSynced(path string, data []byte) error {
	fh, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	if _, err := fh.Write(data); err != nil {
		_ = fh.Close()
		return err
	}
	if err := fh.Sync(); err != nil {
		_ = fh.Close()
		return err
	}
	return fh.Close()
}
