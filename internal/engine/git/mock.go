package git

import (
	"context"
)

// MockService is a test double for git.Service.
type MockService struct {
	RootDir     string
	RootErr     error
	HookInstErr error
	HookRemErr  error
	IgnoreErr   error

	Installed bool
	Removed   bool
	Ignored   []string
}

// Root returns the configured root directory.
func (m *MockService) Root(_ context.Context) (string, error) {
	return m.RootDir, m.RootErr
}

// InstallHook records the call and returns the configured error.
func (m *MockService) InstallHook(_ context.Context) error {
	m.Installed = m.HookInstErr == nil
	return m.HookInstErr
}

// RemoveHook records the call and returns the configured error.
func (m *MockService) RemoveHook(_ context.Context) error {
	m.Removed = m.HookRemErr == nil
	return m.HookRemErr
}

// EnsureIgnored records entry and reports a change the first time it is seen.
func (m *MockService) EnsureIgnored(_ context.Context, entry string) (bool, error) {
	if m.IgnoreErr != nil {
		return false, m.IgnoreErr
	}
	for _, e := range m.Ignored {
		if e == entry {
			return false, nil
		}
	}
	m.Ignored = append(m.Ignored, entry)
	return true, nil
}
