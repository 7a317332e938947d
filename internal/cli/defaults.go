// SPDX-FileCopyrightText: 2025 The BitFlux Authors
// SPDX-License-Identifier: EUPL-1.2

package cli

import (
	"errors"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/bitflux-ai/installer/internal/domain"
)

// defaultsPath is the optional site defaults file, useful when one license
// covers a fleet and the installer runs unattended.
const defaultsPath = "/etc/bitflux/installer.toml"

type siteDefaults struct {
	LicenseKey    string `toml:"license_key"`
	DeviceID      string `toml:"device_id"`
	VersionString string `toml:"version_string"`
}

// loadDefaults reads the site defaults file. A missing file means no
// defaults; a malformed one is an error worth stopping for.
func loadDefaults(path string) (siteDefaults, error) {
	defaults := siteDefaults{}

	data, err := os.ReadFile(path) // #nosec G304 - fixed, documented path
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return defaults, nil
		}

		return defaults, err
	}

	if err := toml.Unmarshal(data, &defaults); err != nil {
		return defaults, err
	}

	return defaults, nil
}

// mergeUnder fills config fields the flags left empty. Flags always win.
func (d siteDefaults) mergeUnder(config domain.InstallConfig) domain.InstallConfig {
	if config.LicenseKey == "" {
		config.LicenseKey = d.LicenseKey
	}

	if config.DeviceID == "" {
		config.DeviceID = d.DeviceID
	}

	if config.VersionString == "" || config.VersionString == DefaultVersionString {
		if d.VersionString != "" {
			config.VersionString = d.VersionString
		}
	}

	return config
}
