// Package eeprom emulates the small byte-addressed EEPROM the module keeps its
// boot counter in. Writes land in a RAM image and only become durable on Commit.
package eeprom

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultSize is the emulated EEPROM size in bytes.
const DefaultSize = 512

// FileStore keeps the image in a file, replaced atomically on Commit.
// Not safe for concurrent use.
type FileStore struct {
	path  string
	data  []byte
	dirty bool
}

// OpenFile loads the image at path. A missing file gives a zeroed image; a
// short file is padded with zeros.
func OpenFile(path string, size int) (*FileStore, error) {
	if size <= 0 {
		size = DefaultSize
	}
	data := make([]byte, size)

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		copy(data, raw)
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read eeprom image: %w", err)
	}

	return &FileStore{path: path, data: data}, nil
}

// Get returns the byte at addr, or 0 outside the image.
func (s *FileStore) Get(addr int) byte {
	if addr < 0 || addr >= len(s.data) {
		return 0
	}
	return s.data[addr]
}

// Put sets the byte at addr. Writes outside the image are ignored.
func (s *FileStore) Put(addr int, b byte) {
	if addr < 0 || addr >= len(s.data) {
		return
	}
	if s.data[addr] == b {
		return
	}
	s.data[addr] = b
	s.dirty = true
}

// Commit writes the image if anything changed since the last commit.
func (s *FileStore) Commit() error {
	if !s.dirty {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create eeprom dir: %w", err)
	}

	tmp := s.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create eeprom image: %w", err)
	}
	if _, err := f.Write(s.data); err != nil {
		f.Close()
		return fmt.Errorf("write eeprom image: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync eeprom image: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close eeprom image: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace eeprom image: %w", err)
	}
	// The rename is only durable once the directory entry is on disk.
	if err := syncDir(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("sync eeprom dir: %w", err)
	}

	s.dirty = false
	return nil
}

// syncDir flushes a directory's entries. Overridable for tests.
var syncDir = func(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	if err := d.Sync(); err != nil {
		d.Close()
		return err
	}
	return d.Close()
}

// Size returns the image size.
func (s *FileStore) Size() int {
	return len(s.data)
}

// Path returns the backing file.
func (s *FileStore) Path() string {
	return s.path
}
