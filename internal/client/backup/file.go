package backup

import (
	"context"
	"fmt"
	"os"

	"github.com/nikbrowser/nikbrowser/internal/filex"
)

// File is a settings document on the local filesystem.
type File struct {
	Path string
}

func NewFile(path string) *File {
	return &File{Path: path}
}

func (f *File) String() string { return f.Path }

func (f *File) Save(_ context.Context, data []byte) error {
	if isCompressed(f.Path) {
		var err error
		if data, err = compress(data); err != nil {
			return err
		}
	}
	if err := filex.EnsureParentDir(f.Path); err != nil {
		return err
	}
	if err := os.WriteFile(f.Path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", f.Path, err)
	}
	return nil
}

func (f *File) Load(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Path, err)
	}
	if isCompressed(f.Path) {
		return decompress(data)
	}
	return data, nil
}
