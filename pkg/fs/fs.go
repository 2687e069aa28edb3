package fs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/afero"
)

// Remover deletes backing files of catalog entries.
type Remover interface {
	Remove(paths ...string) error
}

// Prober reports whether a path is still present.
type Prober interface {
	Exists(path string) (bool, error)
}

// Files combines both collaborators the catalog store consumes.
type Files interface {
	Remover
	Prober
}

// AferoFiles implements Files on top of an afero filesystem.
type AferoFiles struct {
	fs afero.Fs
}

func NewAferoFiles(fs afero.Fs) *AferoFiles {
	return &AferoFiles{fs: fs}
}

// NewOsFiles returns Files backed by the real operating system filesystem.
func NewOsFiles() *AferoFiles {
	return NewAferoFiles(afero.NewOsFs())
}

// Fs returns the underlying afero filesystem
func (f *AferoFiles) Fs() afero.Fs {
	return f.fs
}

// Remove deletes every path on a best-effort basis. Paths that are already
// gone are skipped; every other failure is collected and returned joined.
func (f *AferoFiles) Remove(paths ...string) error {
	var errs []error
	for _, path := range paths {
		if err := f.fs.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("failed to remove %s: %w", path, err))
		}
	}
	return errors.Join(errs...)
}

func (f *AferoFiles) Exists(path string) (bool, error) {
	return afero.Exists(f.fs, path)
}

// Hash returns the xxhash64 fingerprint of the file content as 16 hex digits.
func (f *AferoFiles) Hash(path string) (string, error) {
	file, err := f.fs.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	digest := xxhash.New()
	if _, err := io.Copy(digest, file); err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	return fmt.Sprintf("%016x", digest.Sum64()), nil
}

// Walk calls fn for every regular file below root, in lexical order.
// Hidden directories (dot-prefixed) are skipped.
func (f *AferoFiles) Walk(root string, fn func(path string) error) error {
	return afero.Walk(f.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != root && isDotted(info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		return fn(path)
	})
}

func isDotted(name string) bool {
	return len(name) > 1 && name[0] == '.'
}

// ParseHash validates a fingerprint as produced by Hash.
func ParseHash(value string) (uint64, error) {
	if len(value) != 16 {
		return 0, fmt.Errorf("invalid hash %q: expected 16 hex digits", value)
	}
	return strconv.ParseUint(value, 16, 64)
}
