// SPDX-FileCopyrightText: 2025 The BitFlux Authors
// SPDX-License-Identifier: EUPL-1.2

// Package main provides the CLI entry point for the BitFlux installer.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/bitflux-ai/installer/internal/cli"
	"github.com/bitflux-ai/installer/internal/console"
	"github.com/bitflux-ai/installer/internal/domain"
)

// Exit codes following Unix conventions.
const (
	ExitSuccess          = 0  // Installation completed
	ExitGeneralError     = 1  // General errors, including missing privileges
	ExitUsageError       = 2  // Invalid arguments/usage
	ExitConfigError      = 3  // Malformed overrides or defaults file
	ExitUnsupportedError = 5  // No supported distribution detected
	ExitCommandError     = 6  // A required external command failed
	ExitSystemError      = 12 // Lock/filesystem issues
)

func main() {
	os.Exit(run())
}

func run() int {
	// Package managers and the bootloader only answer to root.
	if os.Geteuid() != 0 {
		fmt.Fprintln(os.Stderr, "bitflux-installer must run as root")

		return ExitGeneralError
	}

	// One installer at a time; two concurrent package-manager runs end in
	// lock contention at best.
	lockPath := filepath.Join(os.TempDir(), "bitflux-installer.lock")
	lock := flock.New(lockPath)

	locked, err := lock.TryLock()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to acquire process lock: %v\n", err)

		return ExitSystemError
	}

	if !locked {
		fmt.Fprintln(os.Stderr, "Another bitflux-installer instance is already running")

		return ExitGeneralError
	}

	defer func() {
		if unlockErr := lock.Unlock(); unlockErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to release process lock: %v\n", unlockErr)
		}
	}()

	if err := cli.New().Run(context.Background(), os.Args); err != nil {
		console.Default.Errorf("%v", err)

		return exitCode(err)
	}

	return ExitSuccess
}

// exitCode maps the error taxonomy onto distinct process exit codes so
// scripted callers can tell an unsupported host from a failed command.
func exitCode(err error) int {
	if errors.Is(err, domain.ErrUnsupportedDistribution) {
		return ExitUnsupportedError
	}

	commandFailed := &domain.CommandFailedError{}
	if errors.As(err, &commandFailed) {
		return ExitCommandError
	}

	invalidOverride := &domain.InvalidOverrideError{}
	missingOption := &domain.MissingProfileOptionError{}

	if errors.As(err, &invalidOverride) || errors.As(err, &missingOption) {
		return ExitConfigError
	}

	return ExitGeneralError
}
