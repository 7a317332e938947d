// SPDX-FileCopyrightText: 2025 The BitFlux Authors
// SPDX-License-Identifier: EUPL-1.2

// Package installer sequences the profile-driven installation steps.
package installer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/bitflux-ai/installer/internal/console"
	"github.com/bitflux-ai/installer/internal/domain"
	"github.com/bitflux-ai/installer/internal/grub"
)

// ServiceName is the collector's systemd unit.
const ServiceName = "bitfluxcollector"

// Default file locations, overridable for tests.
const (
	defaultCollectorConfig = "/opt/bitflux/etc/bitflux.conf"
	defaultModulesLoadPath = "/etc/modules-load.d/swaphints.conf"
	defaultStaleUnitPath   = "/etc/systemd/system/" + ServiceName + ".service"
)

// Orchestrator drives one installation run: a single forward pass over the
// steps the InstallConfig asks for, each shelling out through the profile's
// command templates.
type Orchestrator struct {
	config  domain.InstallConfig
	profile *domain.InstallerProfile
	runner  domain.CommandRunner
	files   domain.FileManager
	output  *console.Output

	// Grub rewrites the bootloader selection when the config asks for it.
	Grub *grub.Editor

	CollectorConfigPath string
	ModulesLoadPath     string
	StaleUnitPath       string

	// ConfirmReboot, when set, decides the reboot instead of the config
	// flag. Interactive mode wires a prompt here.
	ConfirmReboot func(ctx context.Context) (bool, error)
}

// New creates an orchestrator for one run.
func New(config domain.InstallConfig, profile *domain.InstallerProfile, runner domain.CommandRunner, files domain.FileManager) *Orchestrator {
	return &Orchestrator{
		config:              config,
		profile:             profile,
		runner:              runner,
		files:               files,
		output:              console.Default,
		Grub:                grub.NewEditor(runner, files),
		CollectorConfigPath: defaultCollectorConfig,
		ModulesLoadPath:     defaultModulesLoadPath,
		StaleUnitPath:       defaultStaleUnitPath,
	}
}

// Run performs the installation. Steps run in a fixed order with no
// branching back; the first failed required command aborts the run.
func (o *Orchestrator) Run(ctx context.Context) error {
	if o.config.InstallKernel || o.config.InstallUserspace {
		if err := o.setupRepository(ctx); err != nil {
			return err
		}
	}

	if o.config.InstallKernel {
		if err := o.installKernel(ctx); err != nil {
			return err
		}
	}

	if o.config.UpdateGrub {
		if err := o.Grub.Apply(ctx, o.profile); err != nil {
			return err
		}
	}

	if o.config.InstallUserspace {
		if err := o.installUserspace(ctx); err != nil {
			return err
		}
	}

	return o.maybeReboot(ctx)
}

func (o *Orchestrator) setupRepository(ctx context.Context) error {
	o.output.Infof("Configuring the %s package repository", o.profile.Nickname())

	// Stale metadata from a previous attempt can mask the fresh repository.
	clean := o.profile.ActionCommand(domain.ActionCacheClean)
	clean.AllowErrors = true

	if _, err := o.runner.Run(ctx, clean); err != nil {
		return err
	}

	if _, err := o.runner.Run(ctx, o.profile.ActionCommand(domain.ActionRepoAdd)); err != nil {
		return fmt.Errorf("repository setup failed: %w", err)
	}

	return nil
}

func (o *Orchestrator) installKernel(ctx context.Context) error {
	o.output.Infof("Installing kernel packages")

	if _, err := o.runner.Run(ctx, o.profile.ActionCommand(domain.ActionKernelInstall)); err != nil {
		return fmt.Errorf("kernel installation failed: %w", err)
	}

	if o.config.ModuleAutostart {
		o.output.Progressf("Enabling %s module autoload", o.config.VersionString)

		if err := o.files.AppendFile(o.ModulesLoadPath, []byte(o.config.VersionString+"\n")); err != nil {
			return fmt.Errorf("failed to enable module autoload: %w", err)
		}
	}

	return nil
}

func (o *Orchestrator) installUserspace(ctx context.Context) error {
	o.output.Infof("Installing the BitFlux collector")

	if _, err := o.runner.Run(ctx, o.profile.ActionCommand(domain.ActionUserspaceInstall)); err != nil {
		return fmt.Errorf("userspace installation failed: %w", err)
	}

	if err := o.configureCollector(); err != nil {
		return err
	}

	if err := o.enableService(ctx); err != nil {
		return fmt.Errorf("failed to enable %s: %w", ServiceName, err)
	}

	if _, err := o.runner.Run(ctx, domain.ExecCommand("systemctl", "restart", ServiceName)); err != nil {
		return fmt.Errorf("failed to restart %s: %w", ServiceName, err)
	}

	o.output.Successf("Collector installed and running")

	return nil
}

// configureCollector patches the license key and device id into the
// collector config, leaving everything else in the file alone.
func (o *Orchestrator) configureCollector() error {
	if o.config.LicenseKey == "" && o.config.DeviceID == "" {
		o.output.Progressf("No license key or device id to configure")

		return nil
	}

	data, err := o.files.ReadFile(o.CollectorConfigPath)
	if err != nil {
		// A fresh install may not have written the config yet. Anything
		// other than absence must not be papered over, or we would clobber
		// a config we merely failed to read.
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to read %s: %w", o.CollectorConfigPath, err)
		}

		data = nil
	}

	if o.config.LicenseKey != "" {
		data = PatchKeyValue(data, licenseKeyName, o.config.LicenseKey)
	}

	if o.config.DeviceID != "" {
		data = PatchKeyValue(data, deviceIDName, o.config.DeviceID)
	}

	if o.config.DryRun {
		o.output.Progressf("dry run: would update %s", o.CollectorConfigPath)

		return nil
	}

	if err := o.files.WriteFile(o.CollectorConfigPath, data); err != nil {
		return fmt.Errorf("failed to update %s: %w", o.CollectorConfigPath, err)
	}

	return nil
}

// enableService enables the collector unit, with one self-healing retry: a
// stale unit file left by a pre-packaging install can shadow the packaged
// one, so on failure we remove it, reload, and try once more. The second
// failure is fatal.
func (o *Orchestrator) enableService(ctx context.Context) error {
	enable := domain.ExecCommand("systemctl", "enable", ServiceName)

	if _, err := o.runner.Run(ctx, enable); err == nil {
		return nil
	}

	o.output.Warningf("Enable failed; removing stale unit file and retrying")

	_ = o.files.RemoveFile(o.StaleUnitPath)

	reload := domain.ExecCommand("systemctl", "daemon-reload")
	reload.AllowErrors = true
	_, _ = o.runner.Run(ctx, reload)

	_, err := o.runner.Run(ctx, enable)

	return err
}

func (o *Orchestrator) maybeReboot(ctx context.Context) error {
	reboot := o.config.Reboot

	if o.ConfirmReboot != nil {
		confirmed, err := o.ConfirmReboot(ctx)
		if err != nil {
			return err
		}

		reboot = confirmed
	}

	if !reboot {
		return nil
	}

	o.output.Infof("Rebooting")

	if _, err := o.runner.Run(ctx, domain.ExecCommand("systemctl", "reboot")); err != nil {
		return fmt.Errorf("reboot failed: %w", err)
	}

	return nil
}
