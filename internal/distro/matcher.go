// SPDX-FileCopyrightText: 2025 The BitFlux Authors
// SPDX-License-Identifier: EUPL-1.2

package distro

import (
	"context"
	"strings"

	"github.com/bitflux-ai/installer/internal/console"
	"github.com/bitflux-ai/installer/internal/domain"
)

// Matcher selects the installer profile for the running host.
type Matcher struct {
	runner domain.CommandRunner
	output *console.Output
}

// NewMatcher creates a matcher probing through the given runner.
func NewMatcher(runner domain.CommandRunner) *Matcher {
	return &Matcher{
		runner: runner,
		output: console.Default,
	}
}

// Select runs each profile's detection command in listed order and returns
// the first whose release string contains the expected version substring.
//
// If nothing matches exactly, a second pass accepts the first profile whose
// detection command succeeds at all, on the theory that a close relative
// (say, a derivative distribution) is better served by the nearest known
// profile than by a refusal. Exact match is preferred because
// package-manager syntax differs subtly between point releases. If no
// detection command succeeds either way, the host is unsupported.
func (m *Matcher) Select(ctx context.Context, profiles []*domain.InstallerProfile) (*domain.InstallerProfile, error) {
	for _, profile := range profiles {
		release, ok := m.probe(ctx, profile)
		if !ok {
			continue
		}

		if strings.Contains(release, profile.ReleaseMatches()) {
			m.output.Progressf("Matched profile %s (%q)", profile.Nickname(), release)

			return profile, nil
		}
	}

	for _, profile := range profiles {
		release, ok := m.probe(ctx, profile)
		if !ok {
			continue
		}

		m.output.Warningf("No exact match for this host: detected %q, expected %q; using nearest profile %s",
			release, profile.ReleaseMatches(), profile.Nickname())

		return profile, nil
	}

	return nil, domain.ErrUnsupportedDistribution
}

// probe runs the detection command and returns the trimmed release string.
// Detection is safe (runs during dry runs) and failure only disqualifies
// the profile.
func (m *Matcher) probe(ctx context.Context, profile *domain.InstallerProfile) (string, bool) {
	result, err := m.runner.Run(ctx, profile.DetectionCommand())
	if err != nil || result.ExitCode != 0 {
		return "", false
	}

	release := strings.TrimSpace(result.Stdout)
	if release == "" {
		return "", false
	}

	return release, true
}
