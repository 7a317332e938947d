// SPDX-FileCopyrightText: 2025 The BitFlux Authors
// SPDX-License-Identifier: EUPL-1.2

package domain

// InstallConfig is the run's intent, assembled once from CLI flags (and the
// optional defaults file) before any detection happens. It is read-only
// thereafter; interactive answers are merged in through Merge rather than
// mutated in place.
type InstallConfig struct {
	InstallKernel    bool
	ModuleAutostart  bool
	InstallUserspace bool
	UpdateGrub       bool
	Reboot           bool
	Interactive      bool
	Quiet            bool
	Verbose          bool
	DryRun           bool

	// VersionString identifies the custom kernel in bootloader menu entries
	// and names the kernel module to autoload.
	VersionString string

	LicenseKey string
	DeviceID   string

	// Overrides are validated setting replacements for the active profile.
	Overrides map[string]string
}

// InteractiveAnswers collects what the first-run prompts produced. Zero
// values mean "not answered"; Merge only applies answered fields.
type InteractiveAnswers struct {
	InstallKernel    *bool
	InstallUserspace *bool
	DeviceID         string
	LicenseKey       string
}

// Merge returns a config with interactive answers applied.
func (c InstallConfig) Merge(answers InteractiveAnswers) InstallConfig {
	if answers.InstallKernel != nil {
		c.InstallKernel = *answers.InstallKernel
	}

	if answers.InstallUserspace != nil {
		c.InstallUserspace = *answers.InstallUserspace
	}

	if answers.DeviceID != "" {
		c.DeviceID = answers.DeviceID
	}

	if answers.LicenseKey != "" {
		c.LicenseKey = answers.LicenseKey
	}

	return c
}
