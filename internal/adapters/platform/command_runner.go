// SPDX-FileCopyrightText: 2025 The BitFlux Authors
// SPDX-License-Identifier: EUPL-1.2

// Package platform provides the adapters that touch the real system:
// process execution and file management.
package platform

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/bitflux-ai/installer/internal/domain"
)

// CommandRunner implements the CommandRunner port for real system commands.
//
// stdout and stderr are captured separately and in full. Each stream gets
// its own pipe, drained by its own goroutine, so a child filling both never
// deadlocks and the two streams never bleed into each other.
type CommandRunner struct {
	verbose bool
	quiet   bool
	dryRun  bool

	out    io.Writer
	errOut io.Writer
}

// NewCommandRunner creates a new command runner.
func NewCommandRunner(verbose, quiet, dryRun bool) *CommandRunner {
	return &CommandRunner{
		verbose: verbose,
		quiet:   quiet,
		dryRun:  dryRun,
		out:     os.Stdout,
		errOut:  os.Stderr,
	}
}

// SetOutput redirects the runner's mirroring and verbose echo, for tests.
func (r *CommandRunner) SetOutput(out, errOut io.Writer) {
	r.out = out
	r.errOut = errOut
}

// Run executes a command and returns the captured result.
//
// During a dry run, commands not marked Safe are skipped entirely: no
// process is spawned and a synthetic zero-exit empty result is returned.
// Safe commands (read-only diagnostics) still execute so detection works
// while rehearsing.
func (r *CommandRunner) Run(ctx context.Context, cmd domain.Command) (*domain.ExecutionResult, error) {
	if r.dryRun && !cmd.Safe {
		if !r.quiet {
			fmt.Fprintf(r.out, "dry run: %s\n", cmd.String())
		}

		return &domain.ExecutionResult{}, nil
	}

	if r.verbose {
		fmt.Fprintf(r.out, "Running: %s\n", cmd.String())
	}

	result, err := r.execute(ctx, cmd)
	if err != nil {
		return nil, err
	}

	if r.verbose {
		r.echo(cmd, result)
	}

	if result.ExitCode != 0 && !cmd.AllowErrors {
		return result, &domain.CommandFailedError{
			Command:  cmd.String(),
			Stdout:   result.Stdout,
			Stderr:   result.Stderr,
			ExitCode: result.ExitCode,
		}
	}

	return result, nil
}

func (r *CommandRunner) execute(ctx context.Context, cmd domain.Command) (*domain.ExecutionResult, error) {
	execCmd, err := r.buildCmd(ctx, cmd)
	if err != nil {
		return nil, err
	}

	stdout, err := execCmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	stderr, err := execCmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	var outBuf, errBuf bytes.Buffer

	outSink := io.Writer(&outBuf)
	errSink := io.Writer(&errBuf)

	// Non-verbose interactive runs mirror output live; the full capture
	// happens regardless. Safe probes stay silent so detection does not
	// spam the console.
	if r.mirrors(cmd) {
		outSink = io.MultiWriter(&outBuf, r.out)
		errSink = io.MultiWriter(&errBuf, r.errOut)
	}

	if err := execCmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %q: %w", cmd.String(), err)
	}

	var (
		wg       sync.WaitGroup
		drainErr [2]error
	)

	wg.Add(2)

	go func() {
		defer wg.Done()

		drainErr[0] = drain(outSink, stdout)
	}()

	go func() {
		defer wg.Done()

		drainErr[1] = drain(errSink, stderr)
	}()

	wg.Wait()

	waitErr := execCmd.Wait()

	for _, err := range drainErr[:] {
		if err != nil {
			return nil, fmt.Errorf("failed to read output of %q: %w", cmd.String(), err)
		}
	}

	result := &domain.ExecutionResult{
		Stdout: outBuf.String(),
		Stderr: errBuf.String(),
	}

	if waitErr != nil {
		exitErr := &exec.ExitError{}
		if !errors.As(waitErr, &exitErr) {
			return nil, fmt.Errorf("failed to run %q: %w", cmd.String(), waitErr)
		}

		result.ExitCode = exitErr.ExitCode()
	}

	return result, nil
}

func (r *CommandRunner) buildCmd(ctx context.Context, cmd domain.Command) (*exec.Cmd, error) {
	if cmd.Shell {
		// #nosec G204 - shell-form commands come from the static profile table
		return exec.CommandContext(ctx, "/bin/sh", "-c", cmd.Line), nil
	}

	if len(cmd.Args) == 0 {
		return nil, errEmptyCommand
	}

	// #nosec G204 - argv-form commands come from trusted application code
	return exec.CommandContext(ctx, cmd.Args[0], cmd.Args[1:]...), nil
}

var errEmptyCommand = errors.New("empty command")

func (r *CommandRunner) mirrors(cmd domain.Command) bool {
	return !r.quiet && !r.verbose && !cmd.Safe
}

// echo prints the full invocation record after completion, success or not.
func (r *CommandRunner) echo(cmd domain.Command, result *domain.ExecutionResult) {
	fmt.Fprintf(r.out, "cmd:\n %q\n\n", cmd.String())
	fmt.Fprintf(r.out, "stdout:\n %q\n\n", result.Stdout)
	fmt.Fprintf(r.out, "stderr:\n %q\n\n", result.Stderr)
	fmt.Fprintf(r.out, "exitcode: %d\n\n", result.ExitCode)
}

// drain copies a stream until end-of-stream. A closed peer surfaces as EOF
// or a closed-file error; both mean the child is done with the stream, not
// that the run failed.
func drain(dst io.Writer, src io.Reader) error {
	_, err := io.Copy(dst, src)
	if err == nil || errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) {
		return nil
	}

	return err
}
