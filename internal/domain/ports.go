// SPDX-FileCopyrightText: 2025 The BitFlux Authors
// SPDX-License-Identifier: EUPL-1.2

package domain

import "context"

// CommandRunner defines the interface for executing system commands.
type CommandRunner interface {
	// Run executes a command and returns the captured result. A non-zero
	// exit is an error unless cmd.AllowErrors is set; in both cases the
	// result carries the captured output.
	Run(ctx context.Context, cmd Command) (*ExecutionResult, error)
}

// FileManager defines the interface for file operations.
type FileManager interface {
	// FileExists checks if a file exists.
	FileExists(path string) bool

	// ReadFile reads data from a file.
	ReadFile(path string) ([]byte, error)

	// WriteFile writes data to a file, creating parent directories.
	WriteFile(path string, data []byte) error

	// AppendFile appends data to a file, creating it if missing.
	AppendFile(path string, data []byte) error

	// RemoveFile removes a file.
	RemoveFile(path string) error
}
