// SPDX-FileCopyrightText: 2025 The BitFlux Authors
// SPDX-License-Identifier: EUPL-1.2

package domain

import (
	"errors"
	"fmt"
	"io/fs"
)

// Common domain errors.
var (
	// ErrUnsupportedDistribution means no profile's detection command even
	// succeeded; the host is not one we know how to install on.
	ErrUnsupportedDistribution = errors.New("no supported distribution detected")

	// ErrMockFileNotFound is returned by mock adapters for unknown paths. It
	// wraps fs.ErrNotExist so callers branching on absence see the same
	// behavior against mocks as against the real filesystem.
	ErrMockFileNotFound = fmt.Errorf("mock file not found: %w", fs.ErrNotExist)
)

// CommandFailedError reports a required external command exiting non-zero.
// It carries the full invocation and captured output so the failure is
// diagnosable without re-running anything.
type CommandFailedError struct {
	Command  string
	Stdout   string
	Stderr   string
	ExitCode int
}

func (e *CommandFailedError) Error() string {
	return fmt.Sprintf("command %q failed with exit code %d", e.Command, e.ExitCode)
}

// InvalidOverrideError reports a malformed overrides document. Unknown keys
// inside a well-formed document are not errors; they are diagnosed and
// skipped by InstallerProfile.WithOverrides.
type InvalidOverrideError struct {
	Err error
}

func (e *InvalidOverrideError) Error() string {
	return fmt.Sprintf("invalid overrides: %v", e.Err)
}

func (e *InvalidOverrideError) Unwrap() error {
	return e.Err
}

// MissingProfileOptionError reports a profile constructed without one of its
// required settings. This is a programming or data-table error, fatal at
// construction time.
type MissingProfileOptionError struct {
	Nickname string
	Option   string
}

func (e *MissingProfileOptionError) Error() string {
	return fmt.Sprintf("profile %q is missing required option %q", e.Nickname, e.Option)
}
