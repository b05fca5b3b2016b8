package config

import (
	"io/fs"
	"os"
)

// FileSystem abstracts the file system operations used by config loading and scaffolding.
type FileSystem interface {
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error
	MkdirAll(path string, perm fs.FileMode) error
	UserHomeDir() (string, error)
	Stat(name string) (fs.FileInfo, error)
	IsNotExist(err error) bool
}

// RealFileSystem implements FileSystem using the os package.
type RealFileSystem struct{}

// ReadFile reads the named file and returns the contents.
func (r *RealFileSystem) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name) // #nosec G304 -- config paths come from the project root or the user's home
}

// WriteFile writes data to the named file, creating it if necessary.
func (r *RealFileSystem) WriteFile(name string, data []byte, perm fs.FileMode) error {
	return os.WriteFile(name, data, perm) // #nosec G306 -- config file, not sensitive
}

// MkdirAll creates a directory along with any necessary parents.
func (r *RealFileSystem) MkdirAll(path string, perm fs.FileMode) error {
	return os.MkdirAll(path, perm)
}

// UserHomeDir returns the current user's home directory.
func (r *RealFileSystem) UserHomeDir() (string, error) {
	return os.UserHomeDir()
}

// Stat returns a FileInfo describing the named file.
func (r *RealFileSystem) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(name)
}

// IsNotExist reports whether err says a file or directory does not exist.
func (r *RealFileSystem) IsNotExist(err error) bool {
	return os.IsNotExist(err)
}
