// SPDX-FileCopyrightText: 2025 The BitFlux Authors
// SPDX-License-Identifier: EUPL-1.2

package platform

import (
	"context"

	"github.com/bitflux-ai/installer/internal/domain"
)

// MockCommandRunner implements the CommandRunner port for testing. Results
// are scripted per command string; repeated invocations of the same command
// consume queued results in order, the last one sticking.
type MockCommandRunner struct {
	results map[string][]domain.ExecutionResult

	// Calls records every command handed to Run, in order.
	Calls []domain.Command
}

// NewMockCommandRunner creates a new mock command runner for testing.
func NewMockCommandRunner() *MockCommandRunner {
	return &MockCommandRunner{
		results: make(map[string][]domain.ExecutionResult),
	}
}

// SetResult scripts the result for a command string.
func (r *MockCommandRunner) SetResult(command string, result domain.ExecutionResult) {
	r.results[command] = []domain.ExecutionResult{result}
}

// QueueResult appends a result for a command string, consumed in order.
func (r *MockCommandRunner) QueueResult(command string, result domain.ExecutionResult) {
	r.results[command] = append(r.results[command], result)
}

// CallStrings returns the recorded invocations as command strings.
func (r *MockCommandRunner) CallStrings() []string {
	calls := make([]string, len(r.Calls))
	for i, cmd := range r.Calls {
		calls[i] = cmd.String()
	}

	return calls
}

// Run returns the scripted result, applying the same failure semantics as
// the real runner. Unscripted commands succeed with empty output.
func (r *MockCommandRunner) Run(_ context.Context, cmd domain.Command) (*domain.ExecutionResult, error) {
	r.Calls = append(r.Calls, cmd)

	result := domain.ExecutionResult{}

	if queue, ok := r.results[cmd.String()]; ok && len(queue) > 0 {
		result = queue[0]
		if len(queue) > 1 {
			r.results[cmd.String()] = queue[1:]
		}
	}

	if result.ExitCode != 0 && !cmd.AllowErrors {
		return &result, &domain.CommandFailedError{
			Command:  cmd.String(),
			Stdout:   result.Stdout,
			Stderr:   result.Stderr,
			ExitCode: result.ExitCode,
		}
	}

	return &result, nil
}
