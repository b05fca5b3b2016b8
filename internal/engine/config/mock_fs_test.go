package config

import (
	"io/fs"
	"os"
	"time"
)

// MockFileSystem is an in-memory file system for testing.
type MockFileSystem struct {
	Files       map[string][]byte
	Dirs        map[string]bool
	ReadErrors  map[string]error
	WriteErrors map[string]error
	StatErrors  map[string]error
	UserHome    string
	UserHomeErr error
}

// NewMockFileSystem creates a new MockFileSystem.
func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{
		Files:       make(map[string][]byte),
		Dirs:        make(map[string]bool),
		ReadErrors:  make(map[string]error),
		WriteErrors: make(map[string]error),
		StatErrors:  make(map[string]error),
	}
}

// ReadFile returns the content of the file from memory.
func (m *MockFileSystem) ReadFile(name string) ([]byte, error) {
	if err, ok := m.ReadErrors[name]; ok {
		return nil, err
	}
	content, ok := m.Files[name]
	if !ok {
		return nil, os.ErrNotExist
	}
	return content, nil
}

// WriteFile stores the content in memory.
func (m *MockFileSystem) WriteFile(name string, data []byte, _ fs.FileMode) error {
	if err, ok := m.WriteErrors[name]; ok {
		return err
	}
	m.Files[name] = append([]byte(nil), data...)
	return nil
}

// MkdirAll records the directory.
func (m *MockFileSystem) MkdirAll(path string, _ fs.FileMode) error {
	m.Dirs[path] = true
	return nil
}

// UserHomeDir returns the configured user home directory.
func (m *MockFileSystem) UserHomeDir() (string, error) {
	if m.UserHomeErr != nil {
		return "", m.UserHomeErr
	}
	return m.UserHome, nil
}

// Stat returns a mock FileInfo.
func (m *MockFileSystem) Stat(name string) (fs.FileInfo, error) {
	if err, ok := m.StatErrors[name]; ok {
		return nil, err
	}
	if _, ok := m.Files[name]; !ok {
		return nil, os.ErrNotExist
	}
	return &mockFileInfo{name: name}, nil
}

// IsNotExist checks if the error is os.ErrNotExist.
func (m *MockFileSystem) IsNotExist(err error) bool {
	return os.IsNotExist(err)
}

type mockFileInfo struct {
	name string
}

func (m *mockFileInfo) Name() string       { return m.name }
func (m *mockFileInfo) Size() int64        { return 0 }
func (m *mockFileInfo) Mode() fs.FileMode  { return 0o644 }
func (m *mockFileInfo) ModTime() time.Time { return time.Now() }
func (m *mockFileInfo) IsDir() bool        { return false }
func (m *mockFileInfo) Sys() interface{}   { return nil }
