// SPDX-FileCopyrightText: 2025 The BitFlux Authors
// SPDX-License-Identifier: EUPL-1.2

package platform

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bitflux-ai/installer/internal/domain"
)

// FileManager implements the FileManager port for real file operations.
type FileManager struct {
	verbose bool
	dryRun  bool
}

// NewFileManager creates a new file manager. In dry-run mode writes and
// removals are reported but not performed; reads still happen so the run
// can be rehearsed against the real system.
func NewFileManager(verbose, dryRun bool) *FileManager {
	return &FileManager{
		verbose: verbose,
		dryRun:  dryRun,
	}
}

// FileExists checks if a file exists.
func (f *FileManager) FileExists(path string) bool {
	_, err := os.Stat(path)

	return err == nil
}

// ReadFile reads data from a file.
func (f *FileManager) ReadFile(path string) ([]byte, error) {
	if f.verbose {
		fmt.Printf("Reading file: %s\n", path)
	}

	// #nosec G304 - File path comes from trusted application code
	return os.ReadFile(path)
}

// WriteFile writes data to a file, creating parent directories.
func (f *FileManager) WriteFile(path string, data []byte) error {
	if f.verbose || f.dryRun {
		fmt.Printf("Writing file: %s (%d bytes)\n", path, len(data))
	}

	if f.dryRun {
		return nil
	}

	// #nosec G301 - Standard directory permissions for system configuration
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// #nosec G306 - Standard file permissions for configuration files
	return os.WriteFile(path, data, 0644)
}

// AppendFile appends data to a file, creating it if missing.
func (f *FileManager) AppendFile(path string, data []byte) error {
	if f.verbose || f.dryRun {
		fmt.Printf("Appending to file: %s (%d bytes)\n", path, len(data))
	}

	if f.dryRun {
		return nil
	}

	// #nosec G301 - Standard directory permissions for system configuration
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// #nosec G302,G304 - Standard permissions, trusted path
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file for append: %w", err)
	}

	defer func() { _ = file.Close() }()

	if _, err := file.Write(data); err != nil {
		return fmt.Errorf("failed to append to file: %w", err)
	}

	return nil
}

// RemoveFile removes a file.
func (f *FileManager) RemoveFile(path string) error {
	if f.verbose || f.dryRun {
		fmt.Printf("Removing file: %s\n", path)
	}

	if f.dryRun {
		return nil
	}

	return os.Remove(path)
}

// MockFileManager implements the FileManager port for testing.
type MockFileManager struct {
	files    map[string][]byte
	readErrs map[string]error

	// Removed records every path handed to RemoveFile, in order.
	Removed []string
}

// NewMockFileManager creates a new mock file manager for testing.
func NewMockFileManager() *MockFileManager {
	return &MockFileManager{
		files:    make(map[string][]byte),
		readErrs: make(map[string]error),
	}
}

// SetMockFile sets the content of a mock file.
func (f *MockFileManager) SetMockFile(path string, content []byte) {
	f.files[path] = content
}

// SetReadError makes ReadFile fail for a path with the given error.
func (f *MockFileManager) SetReadError(path string, err error) {
	f.readErrs[path] = err
}

// MockFile returns the content of a mock file and whether it exists.
func (f *MockFileManager) MockFile(path string) ([]byte, bool) {
	content, ok := f.files[path]

	return content, ok
}

// FileExists checks if a mock file exists.
func (f *MockFileManager) FileExists(path string) bool {
	_, exists := f.files[path]

	return exists
}

// ReadFile reads from a mock file.
func (f *MockFileManager) ReadFile(path string) ([]byte, error) {
	if err, ok := f.readErrs[path]; ok {
		return nil, err
	}

	content, exists := f.files[path]
	if !exists {
		return nil, domain.ErrMockFileNotFound
	}

	return content, nil
}

// WriteFile writes to a mock file.
func (f *MockFileManager) WriteFile(path string, data []byte) error {
	f.files[path] = data

	return nil
}

// AppendFile appends to a mock file.
func (f *MockFileManager) AppendFile(path string, data []byte) error {
	f.files[path] = append(f.files[path], data...)

	return nil
}

// RemoveFile removes a mock file and records the attempt.
func (f *MockFileManager) RemoveFile(path string) error {
	f.Removed = append(f.Removed, path)

	if _, exists := f.files[path]; !exists {
		return domain.ErrMockFileNotFound
	}

	delete(f.files, path)

	return nil
}
