// SPDX-FileCopyrightText: 2025 The BitFlux Authors
// SPDX-License-Identifier: EUPL-1.2

package domain

import (
	"encoding/json"
	"sort"
	"strings"
)

// Setting keys understood by an installer profile.
const (
	SettingNickname       = "nickname"
	SettingReleaseCmd     = "release_cmd"
	SettingReleaseMatches = "release_matches"
	SettingRepoURL        = "repo_url"
	SettingKeyURL         = "key_url"
	SettingGrubVersion    = "grub_version"
)

// Action keys for the per-profile package-manager command templates.
const (
	ActionRepoAdd          = "repo_add_cmd"
	ActionKernelInstall    = "kernel_install_cmd"
	ActionUserspaceInstall = "userspace_install_cmd"
	ActionCacheClean       = "cache_clean_cmd"
	ActionGrubUpdate       = "grub_update_cmd"
)

// requiredSettings must all be present when a profile is constructed.
var requiredSettings = []string{
	SettingNickname,
	SettingReleaseCmd,
	SettingReleaseMatches,
	SettingRepoURL,
	SettingKeyURL,
	SettingGrubVersion,
	ActionRepoAdd,
	ActionKernelInstall,
	ActionUserspaceInstall,
	ActionCacheClean,
	ActionGrubUpdate,
}

// InstallerProfile is the static description of one supported
// distribution/version: its detection command, the substring of the release
// string that defines "supported", and the package-manager command templates
// for every action the orchestrator performs. Profiles are immutable;
// WithOverrides returns a copy.
type InstallerProfile struct {
	settings map[string]string
}

// NewInstallerProfile validates the settings table and builds a profile.
func NewInstallerProfile(settings map[string]string) (*InstallerProfile, error) {
	for _, key := range requiredSettings {
		if settings[key] == "" {
			return nil, &MissingProfileOptionError{
				Nickname: settings[SettingNickname],
				Option:   key,
			}
		}
	}

	copied := make(map[string]string, len(settings))
	for key, value := range settings {
		copied[key] = value
	}

	return &InstallerProfile{settings: copied}, nil
}

// Nickname is the short distro codename, used to build repository URLs.
func (p *InstallerProfile) Nickname() string {
	return p.settings[SettingNickname]
}

// ReleaseCmd is the shell command whose output identifies the distribution.
func (p *InstallerProfile) ReleaseCmd() string {
	return p.settings[SettingReleaseCmd]
}

// ReleaseMatches is the substring expected in the detection output.
func (p *InstallerProfile) ReleaseMatches() string {
	return p.settings[SettingReleaseMatches]
}

// GrubVersion is the version string located in bootloader menu entries.
func (p *InstallerProfile) GrubVersion() string {
	return p.settings[SettingGrubVersion]
}

// Setting returns a raw setting value, empty when absent.
func (p *InstallerProfile) Setting(key string) string {
	return p.settings[key]
}

// DetectionCommand is the read-only probe used by the matcher. It is safe to
// run during a dry run and a failure only means "not this profile".
func (p *InstallerProfile) DetectionCommand() Command {
	cmd := ShellCommand(p.ReleaseCmd())
	cmd.Safe = true
	cmd.AllowErrors = true

	return cmd
}

// ActionCommand expands one package-manager command template. Placeholders
// {{repo_url}}, {{key_url}} and {{nickname}} are substituted at call time.
func (p *InstallerProfile) ActionCommand(action string) Command {
	replacer := strings.NewReplacer(
		"{{repo_url}}", p.settings[SettingRepoURL],
		"{{key_url}}", p.settings[SettingKeyURL],
		"{{nickname}}", p.settings[SettingNickname],
	)

	return ShellCommand(replacer.Replace(p.settings[action]))
}

// WithOverrides merges caller-supplied settings over the profile's own and
// returns the resulting profile. Only keys already present are accepted;
// unknown keys are returned (sorted) for the caller to diagnose, never
// silently applied.
func (p *InstallerProfile) WithOverrides(overrides map[string]string) (*InstallerProfile, []string) {
	merged := make(map[string]string, len(p.settings))
	for key, value := range p.settings {
		merged[key] = value
	}

	var skipped []string

	for key, value := range overrides {
		if _, known := merged[key]; !known {
			skipped = append(skipped, key)

			continue
		}

		merged[key] = value
	}

	sort.Strings(skipped)

	return &InstallerProfile{settings: merged}, skipped
}

// ParseOverrides decodes the CLI overrides document, a JSON object mapping
// setting names to replacement values. Malformed input is fatal.
func ParseOverrides(raw string) (map[string]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	overrides := make(map[string]string)
	if err := json.Unmarshal([]byte(raw), &overrides); err != nil {
		return nil, &InvalidOverrideError{Err: err}
	}

	return overrides, nil
}
