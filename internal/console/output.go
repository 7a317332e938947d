// SPDX-FileCopyrightText: 2025 The BitFlux Authors
// SPDX-License-Identifier: EUPL-1.2

// Package console centralizes terminal output: diagnostics to stderr,
// results to stdout, color only when it makes sense.
package console

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Output holds the run's output configuration.
type Output struct {
	Verbose bool
	Quiet   bool

	// Err defaults to os.Stderr; swapped in tests.
	Err io.Writer
}

// Default is the process-wide output used by packages that only emit
// diagnostics.
var Default = &Output{Err: os.Stderr} //nolint:gochecknoglobals

// SetMode configures the default output once flags are parsed.
func SetMode(verbose, quiet bool) {
	Default.Verbose = verbose
	Default.Quiet = quiet
}

// IsTTY checks if the given descriptor is a terminal.
func IsTTY(fd uintptr) bool {
	return term.IsTerminal(int(fd))
}

func (o *Output) errWriter() io.Writer {
	if o.Err != nil {
		return o.Err
	}

	return os.Stderr
}

// Progressf writes progress messages to stderr, verbose mode only.
func (o *Output) Progressf(format string, args ...any) {
	if o.Verbose && !o.Quiet {
		fmt.Fprintf(o.errWriter(), format+"\n", args...)
	}
}

// Infof writes informational messages to stderr unless quiet.
func (o *Output) Infof(format string, args ...any) {
	if !o.Quiet {
		fmt.Fprintf(o.errWriter(), color.CyanString("i ")+format+"\n", args...)
	}
}

// Successf writes success messages to stderr unless quiet.
func (o *Output) Successf(format string, args ...any) {
	if !o.Quiet {
		fmt.Fprintf(o.errWriter(), color.GreenString("✔ ")+format+"\n", args...)
	}
}

// Warningf writes warnings to stderr. Warnings survive quiet mode.
func (o *Output) Warningf(format string, args ...any) {
	fmt.Fprintf(o.errWriter(), color.YellowString("⚠ ")+format+"\n", args...)
}

// Errorf writes errors to stderr, always.
func (o *Output) Errorf(format string, args ...any) {
	fmt.Fprintf(o.errWriter(), color.RedString("✖ ")+format+"\n", args...)
}
