// SPDX-FileCopyrightText: 2025 The BitFlux Authors
// SPDX-License-Identifier: EUPL-1.2

// Package distro holds the static table of supported distributions and the
// matcher that picks one for the running host.
package distro

import (
	"github.com/bitflux-ai/installer/internal/domain"
)

const (
	mirrorBase = "https://mirror.bitflux.ai/repo"
	keyURL     = mirrorBase + "/bitflux.gpg"
)

// Per-family package-manager command templates. The differences between
// point releases live in the profile table, not in types; a profile is data.
var debCommands = map[string]string{
	domain.ActionRepoAdd: "curl -fsSL {{key_url}} -o /usr/share/keyrings/bitflux-archive-keyring.gpg && " +
		`echo "deb [signed-by=/usr/share/keyrings/bitflux-archive-keyring.gpg] {{repo_url}} stable main" ` +
		"> /etc/apt/sources.list.d/bitflux.list && apt-get update",
	domain.ActionKernelInstall:    "apt-get install -y bitflux-kernel",
	domain.ActionUserspaceInstall: "apt-get install -y bitfluxcollector",
	domain.ActionCacheClean:       "apt-get clean",
	domain.ActionGrubUpdate:       "update-grub",
}

var dnfCommands = map[string]string{
	domain.ActionRepoAdd: "rpm --import {{key_url}} && " +
		"curl -fsSL {{repo_url}}/bitflux.repo -o /etc/yum.repos.d/bitflux.repo && dnf makecache",
	domain.ActionKernelInstall:    "dnf install -y bitflux-kernel",
	domain.ActionUserspaceInstall: "dnf install -y bitfluxcollector",
	domain.ActionCacheClean:       "dnf clean all",
	domain.ActionGrubUpdate:       "grub2-mkconfig -o /boot/grub2/grub.cfg",
}

type profileRow struct {
	nickname   string
	releaseCmd string
	matches    string
	commands   map[string]string
}

// The order matters: the matcher probes profiles as listed and the first
// exact match wins.
var registry = []profileRow{
	{nickname: "ubuntu2404", releaseCmd: "lsb_release -ds", matches: "Ubuntu 24.04", commands: debCommands},
	{nickname: "ubuntu2204", releaseCmd: "lsb_release -ds", matches: "Ubuntu 22.04", commands: debCommands},
	{nickname: "ubuntu2004", releaseCmd: "lsb_release -ds", matches: "Ubuntu 20.04", commands: debCommands},
	{nickname: "fedora41", releaseCmd: "cat /etc/fedora-release", matches: "Fedora release 41", commands: dnfCommands},
	{nickname: "fedora40", releaseCmd: "cat /etc/fedora-release", matches: "Fedora release 40", commands: dnfCommands},
	{nickname: "centos9", releaseCmd: "cat /etc/centos-release", matches: "CentOS Stream release 9", commands: dnfCommands},
}

// Profiles builds the ordered list of supported installer profiles.
func Profiles(versionString string) ([]*domain.InstallerProfile, error) {
	profiles := make([]*domain.InstallerProfile, 0, len(registry))

	for _, row := range registry {
		settings := map[string]string{
			domain.SettingNickname:       row.nickname,
			domain.SettingReleaseCmd:     row.releaseCmd,
			domain.SettingReleaseMatches: row.matches,
			domain.SettingRepoURL:        mirrorBase + "/" + row.nickname,
			domain.SettingKeyURL:         keyURL,
			domain.SettingGrubVersion:    versionString,
		}

		for action, template := range row.commands {
			settings[action] = template
		}

		profile, err := domain.NewInstallerProfile(settings)
		if err != nil {
			return nil, err
		}

		profiles = append(profiles, profile)
	}

	return profiles, nil
}
