// Package storage provides access to the files served by the server.
package storage

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Dir is a flat file storage rooted at a directory. Names must be local to the
// directory, otherwise fs.ErrInvalid is returned.
type Dir struct {
	root string
}

func NewDir(root string) Dir {
	return Dir{root: root}
}

// ReadFile returns the whole contents of the file. A missing file results in an error
// matching fs.ErrNotExist.
func (d Dir) ReadFile(name string) ([]byte, error) {
	path, err := d.resolve(name)
	if err != nil {
		return nil, err
	}

	return os.ReadFile(path)
}

// CreateExclusive creates the file and writes the data into it. If the file already exists,
// it is left untouched and an error matching fs.ErrExist is returned.
func (d Dir) CreateExclusive(name string, data []byte) error {
	path, err := d.resolve(name)
	if err != nil {
		return err
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}

	if _, err = file.Write(data); err != nil {
		_ = file.Close()
		return errors.Wrapf(err, "write %s", path)
	}

	return file.Close()
}

func (d Dir) resolve(name string) (string, error) {
	if !filepath.IsLocal(name) {
		return "", &fs.PathError{Op: "resolve", Path: name, Err: fs.ErrInvalid}
	}

	return filepath.Join(d.root, name), nil
}
