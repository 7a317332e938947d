// SPDX-FileCopyrightText: 2025 The BitFlux Authors
// SPDX-License-Identifier: EUPL-1.2

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSettings() map[string]string {
	return map[string]string{
		SettingNickname:        "ubuntu2204",
		SettingReleaseCmd:      "lsb_release -ds",
		SettingReleaseMatches:  "Ubuntu 22.04",
		SettingRepoURL:         "https://mirror.bitflux.ai/repo/ubuntu2204",
		SettingKeyURL:          "https://mirror.bitflux.ai/repo/bitflux.gpg",
		SettingGrubVersion:     "swaphints",
		ActionRepoAdd:          "add-repo {{key_url}} {{repo_url}}",
		ActionKernelInstall:    "apt-get install -y bitflux-kernel",
		ActionUserspaceInstall: "apt-get install -y bitfluxcollector",
		ActionCacheClean:       "apt-get clean",
		ActionGrubUpdate:       "update-grub",
	}
}

func TestNewInstallerProfile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(map[string]string)
		wantErr string
	}{
		{
			name:   "all required settings present",
			mutate: func(_ map[string]string) {},
		},
		{
			name:    "missing release command",
			mutate:  func(s map[string]string) { delete(s, SettingReleaseCmd) },
			wantErr: SettingReleaseCmd,
		},
		{
			name:    "empty repo url",
			mutate:  func(s map[string]string) { s[SettingRepoURL] = "" },
			wantErr: SettingRepoURL,
		},
		{
			name:    "missing kernel install template",
			mutate:  func(s map[string]string) { delete(s, ActionKernelInstall) },
			wantErr: ActionKernelInstall,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			settings := validSettings()
			tt.mutate(settings)

			profile, err := NewInstallerProfile(settings)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, "ubuntu2204", profile.Nickname())

				return
			}

			require.Error(t, err)

			missing := &MissingProfileOptionError{}
			require.ErrorAs(t, err, &missing)
			assert.Equal(t, tt.wantErr, missing.Option)
		})
	}
}

func TestInstallerProfileImmutableConstruction(t *testing.T) {
	t.Parallel()

	settings := validSettings()
	profile, err := NewInstallerProfile(settings)
	require.NoError(t, err)

	// Mutating the source map must not reach into the profile.
	settings[SettingReleaseCmd] = "changed"
	assert.Equal(t, "lsb_release -ds", profile.ReleaseCmd())
}

func TestWithOverrides(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		overrides   map[string]string
		wantCmd     string
		wantSkipped []string
	}{
		{
			name:      "known key is applied",
			overrides: map[string]string{SettingReleaseCmd: "uname -a"},
			wantCmd:   "uname -a",
		},
		{
			name:        "unknown key is skipped and named",
			overrides:   map[string]string{"bogus_key": "x"},
			wantCmd:     "lsb_release -ds",
			wantSkipped: []string{"bogus_key"},
		},
		{
			name: "mixed keys apply the known one only",
			overrides: map[string]string{
				"bogus_key":       "x",
				SettingReleaseCmd: "uname -a",
			},
			wantCmd:     "uname -a",
			wantSkipped: []string{"bogus_key"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			profile, err := NewInstallerProfile(validSettings())
			require.NoError(t, err)

			merged, skipped := profile.WithOverrides(tt.overrides)
			assert.Equal(t, tt.wantCmd, merged.ReleaseCmd())
			assert.Equal(t, tt.wantSkipped, skipped)

			// The original profile is untouched.
			assert.Equal(t, "lsb_release -ds", profile.ReleaseCmd())
		})
	}
}

func TestParseOverrides(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		want    map[string]string
		wantErr bool
	}{
		{
			name: "valid object",
			raw:  `{"release_cmd": "uname -a"}`,
			want: map[string]string{"release_cmd": "uname -a"},
		},
		{
			name: "empty string means no overrides",
			raw:  "",
			want: nil,
		},
		{
			name:    "malformed json is fatal",
			raw:     `{"release_cmd": `,
			wantErr: true,
		},
		{
			name:    "non-string value is fatal",
			raw:     `{"release_cmd": 42}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseOverrides(tt.raw)
			if tt.wantErr {
				require.Error(t, err)

				invalid := &InvalidOverrideError{}
				assert.ErrorAs(t, err, &invalid)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestActionCommandExpandsPlaceholders(t *testing.T) {
	t.Parallel()

	profile, err := NewInstallerProfile(validSettings())
	require.NoError(t, err)

	cmd := profile.ActionCommand(ActionRepoAdd)
	assert.True(t, cmd.Shell)
	assert.Equal(t,
		"add-repo https://mirror.bitflux.ai/repo/bitflux.gpg https://mirror.bitflux.ai/repo/ubuntu2204",
		cmd.Line)
}

func TestDetectionCommandIsSafe(t *testing.T) {
	t.Parallel()

	profile, err := NewInstallerProfile(validSettings())
	require.NoError(t, err)

	cmd := profile.DetectionCommand()
	assert.True(t, cmd.Safe)
	assert.True(t, cmd.AllowErrors)
	assert.True(t, cmd.Shell)
	assert.Equal(t, "lsb_release -ds", cmd.Line)
}

func TestInstallConfigMerge(t *testing.T) {
	t.Parallel()

	boolPtr := func(v bool) *bool { return &v }

	base := InstallConfig{
		InstallKernel:    true,
		InstallUserspace: true,
		DeviceID:         "rack-7",
	}

	merged := base.Merge(InteractiveAnswers{
		InstallKernel: boolPtr(false),
		LicenseKey:    "abc123",
	})

	assert.False(t, merged.InstallKernel)
	assert.True(t, merged.InstallUserspace)
	assert.Equal(t, "rack-7", merged.DeviceID, "unanswered fields keep flag values")
	assert.Equal(t, "abc123", merged.LicenseKey)
}
