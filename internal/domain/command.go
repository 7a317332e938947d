// SPDX-FileCopyrightText: 2025 The BitFlux Authors
// SPDX-License-Identifier: EUPL-1.2

// Package domain holds the installer's core types and ports.
package domain

import "strings"

// Command describes one external command invocation.
type Command struct {
	// Args is the literal argument list. Ignored when Shell is set.
	Args []string

	// Line is an opaque command line interpreted by /bin/sh. Only used when
	// Shell is set.
	Line string

	// Shell runs Line through a system shell instead of Args directly.
	Shell bool

	// AllowErrors turns a non-zero exit into a result instead of an error.
	AllowErrors bool

	// Safe marks read-only diagnostic commands that must run even during a
	// dry run, so detection still works while rehearsing.
	Safe bool
}

// ShellCommand builds a shell-interpreted command from an opaque command line.
func ShellCommand(line string) Command {
	return Command{Line: line, Shell: true}
}

// ExecCommand builds an argv-form command.
func ExecCommand(name string, args ...string) Command {
	return Command{Args: append([]string{name}, args...)}
}

func (c Command) String() string {
	if c.Shell {
		return c.Line
	}

	return strings.Join(c.Args, " ")
}

// ExecutionResult is the immutable outcome of one command invocation.
type ExecutionResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}
