// SPDX-FileCopyrightText: 2025 The BitFlux Authors
// SPDX-License-Identifier: EUPL-1.2

// Package cli provides the command-line interface for the BitFlux installer.
package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/briandowns/spinner"
	"github.com/urfave/cli/v3"

	"github.com/bitflux-ai/installer/internal/adapters/platform"
	"github.com/bitflux-ai/installer/internal/console"
	"github.com/bitflux-ai/installer/internal/distro"
	"github.com/bitflux-ai/installer/internal/domain"
	"github.com/bitflux-ai/installer/internal/installer"
)

// DefaultVersionString identifies the custom kernel in bootloader entries.
const DefaultVersionString = "swaphints"

// App wires flags, prompts, detection, and the orchestrator together.
type App struct {
	cmd *cli.Command

	skipKernel          bool
	skipModuleAutostart bool
	skipUserspace       bool
	quiet               bool
	reboot              bool
	verbose             bool
	grubUpdate          bool
	dryRun              bool
	versionString       string
	licenseKey          string
	deviceID            string
	overrides           string

	// DefaultsPath is the optional site defaults file.
	DefaultsPath string
}

// New builds the installer CLI.
func New() *App {
	app := &App{DefaultsPath: defaultsPath}

	app.cmd = &cli.Command{
		Name:  "bitflux-installer",
		Usage: "Install the BitFlux swaphints kernel and collector",
		Description: `Detects the host distribution, configures the BitFlux package
repository, installs the swaphints kernel and the collector userspace,
points the bootloader at the new kernel, and starts the collector service.

Run without flags for the interactive first-time setup.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "skip-kernel-install",
				Usage:       "do not install the swaphints kernel packages",
				Destination: &app.skipKernel,
			},
			&cli.BoolFlag{
				Name:        "skip-module-autostart",
				Usage:       "do not enable the kernel module on boot",
				Destination: &app.skipModuleAutostart,
			},
			&cli.BoolFlag{
				Name:        "skip-userspace-install",
				Usage:       "do not install the collector userspace packages",
				Destination: &app.skipUserspace,
			},
			&cli.BoolFlag{
				Name:        "quiet",
				Usage:       "suppress output and interactive prompts",
				Aliases:     []string{"q"},
				Destination: &app.quiet,
			},
			&cli.BoolFlag{
				Name:        "reboot-after",
				Usage:       "reboot after installation without asking",
				Aliases:     []string{"reboot"},
				Destination: &app.reboot,
			},
			&cli.BoolFlag{
				Name:        "verbose",
				Usage:       "echo every command with its full output",
				Aliases:     []string{"v"},
				Destination: &app.verbose,
			},
			&cli.BoolFlag{
				Name:        "grub-update",
				Usage:       "point the bootloader at the swaphints kernel (experimental)",
				Destination: &app.grubUpdate,
			},
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "print state-changing commands instead of running them",
				Destination: &app.dryRun,
			},
			&cli.StringFlag{
				Name:        "version-string",
				Usage:       "kernel version substring to look for in bootloader entries",
				Value:       DefaultVersionString,
				Destination: &app.versionString,
			},
			&cli.StringFlag{
				Name:        "license-key",
				Usage:       "license key written to the collector config",
				Destination: &app.licenseKey,
			},
			&cli.StringFlag{
				Name:        "device-id",
				Usage:       "device identifier written to the collector config",
				Destination: &app.deviceID,
			},
			&cli.StringFlag{
				Name:        "overrides",
				Usage:       "JSON object of profile setting overrides, e.g. '{\"release_cmd\": \"uname -a\"}'",
				Destination: &app.overrides,
			},
		},
		Action: func(ctx context.Context, _ *cli.Command) error {
			return app.run(ctx)
		},
	}

	return app
}

// Run parses arguments and executes the installer.
func (a *App) Run(ctx context.Context, args []string) error {
	return a.cmd.Run(ctx, args)
}

func (a *App) run(ctx context.Context) error {
	console.SetMode(a.verbose, a.quiet)

	config, err := a.buildConfig()
	if err != nil {
		return err
	}

	if config.Interactive {
		answers, err := askSetup(config)
		if err != nil {
			return err
		}

		config = config.Merge(answers)
	}

	runner := platform.NewCommandRunner(config.Verbose, config.Quiet, config.DryRun)
	files := platform.NewFileManager(config.Verbose, config.DryRun)

	profile, err := a.selectProfile(ctx, runner, config)
	if err != nil {
		return err
	}

	orch := installer.New(config, profile, runner, files)
	if config.Interactive && config.InstallKernel {
		orch.ConfirmReboot = confirmReboot
	}

	return orch.Run(ctx)
}

// buildConfig assembles the run's intent from the defaults file and flags.
// Flags always win over file defaults.
func (a *App) buildConfig() (domain.InstallConfig, error) {
	config := domain.InstallConfig{
		InstallKernel:    !a.skipKernel,
		ModuleAutostart:  !a.skipModuleAutostart,
		InstallUserspace: !a.skipUserspace,
		UpdateGrub:       a.grubUpdate,
		Reboot:           a.reboot,
		Quiet:            a.quiet,
		Verbose:          a.verbose,
		DryRun:           a.dryRun,
		VersionString:    a.versionString,
		LicenseKey:       a.licenseKey,
		DeviceID:         a.deviceID,
	}

	defaults, err := loadDefaults(a.DefaultsPath)
	if err != nil {
		return config, fmt.Errorf("failed to read %s: %w", a.DefaultsPath, err)
	}

	config = defaults.mergeUnder(config)

	overrides, err := domain.ParseOverrides(a.overrides)
	if err != nil {
		return config, err
	}

	config.Overrides = overrides

	config.Interactive = interactiveMode(config, a.overrides != "", a.licenseKey != "")

	return config, nil
}

// interactiveMode gates the first-run prompts: anything that signals a
// scripted invocation turns them off.
func interactiveMode(config domain.InstallConfig, overridesGiven, licenseGiven bool) bool {
	if config.Quiet || overridesGiven || licenseGiven {
		return false
	}

	scripted := !config.InstallKernel && !config.InstallUserspace && config.UpdateGrub

	return !scripted
}

// selectProfile applies CLI overrides to the profile table and probes it.
// Overrides merge before detection runs: overriding release_cmd changes the
// command the matcher probes with, which is how a host the stock detection
// commands cannot identify gets forced onto a profile.
func (a *App) selectProfile(ctx context.Context, runner domain.CommandRunner, config domain.InstallConfig) (*domain.InstallerProfile, error) {
	profiles, err := distro.Profiles(config.VersionString)
	if err != nil {
		return nil, err
	}

	profiles, skipped := applyOverrides(profiles, config.Overrides)
	for _, key := range skipped {
		console.Default.Warningf("Ignoring override %q: not a profile setting", key)
	}

	stop := detectionSpinner(config)
	profile, err := distro.NewMatcher(runner).Select(ctx, profiles)

	stop()

	if err != nil {
		return nil, err
	}

	console.Default.Infof("Detected %s", profile.Nickname())

	return profile, nil
}

// applyOverrides merges the overrides onto every profile in the table and
// returns the merged list plus the unknown keys, deduplicated, for a single
// round of diagnostics.
func applyOverrides(profiles []*domain.InstallerProfile, overrides map[string]string) ([]*domain.InstallerProfile, []string) {
	if len(overrides) == 0 {
		return profiles, nil
	}

	merged := make([]*domain.InstallerProfile, len(profiles))
	seen := make(map[string]bool)

	var skipped []string

	for i, profile := range profiles {
		mergedProfile, unknown := profile.WithOverrides(overrides)
		merged[i] = mergedProfile

		for _, key := range unknown {
			if !seen[key] {
				seen[key] = true

				skipped = append(skipped, key)
			}
		}
	}

	sort.Strings(skipped)

	return merged, skipped
}

// detectionSpinner shows progress while the matcher probes, when there is a
// terminal to show it on. Detection commands never mirror output, so the
// spinner has the line to itself.
func detectionSpinner(config domain.InstallConfig) func() {
	if config.Quiet || config.Verbose || !console.IsTTY(os.Stderr.Fd()) {
		return func() {}
	}

	s := spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " Detecting distribution..."
	s.Start()

	return s.Stop
}
