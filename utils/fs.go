package utils

import (
	"encoding/json"
	"path/filepath"

	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

type Fs struct {
	AppFs afero.Fs
}

func NewFs(appFs afero.Fs) Fs {
	return Fs{AppFs: appFs}
}

// WriteJSON creates filePath, including missing parent directories, and writes data as indented JSON.
func (fs Fs) WriteJSON(filePath string, data interface{}) error {
	return fs.WriteJSONIndent(filePath, data, "  ")
}

func (fs Fs) WriteJSONIndent(filePath string, data interface{}, indent string) error {
	b, err := json.MarshalIndent(data, "", indent)
	if err != nil {
		return xerrors.Errorf("failed to marshal JSON: %w", err)
	}

	if dir := filepath.Dir(filePath); dir != "." {
		if err = fs.AppFs.MkdirAll(dir, 0755); err != nil {
			return xerrors.Errorf("mkdir error: %w", err)
		}
	}

	f, err := fs.AppFs.Create(filePath)
	if err != nil {
		return xerrors.Errorf("unable to open a file: %w", err)
	}
	defer f.Close()

	if _, err = f.Write(b); err != nil {
		return xerrors.Errorf("failed to save a file: %w", err)
	}
	return nil
}

// Exists reports whether path exists on the underlying filesystem.
func (fs Fs) Exists(path string) (bool, error) {
	ok, err := afero.Exists(fs.AppFs, path)
	if err != nil {
		return false, xerrors.Errorf("stat error: %w", err)
	}
	return ok, nil
}
