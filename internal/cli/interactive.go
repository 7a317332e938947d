// SPDX-FileCopyrightText: 2025 The BitFlux Authors
// SPDX-License-Identifier: EUPL-1.2

package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/bitflux-ai/installer/internal/domain"
)

// Install type choices offered during first-run setup.
const (
	installTypeFull      = "full"
	installTypeKernel    = "kernel"
	installTypeUserspace = "userspace"
)

func getTitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39")).
		MarginBottom(1)
}

// askSetup runs the first-run prompts and returns what the user decided.
// Fields the user left alone stay unanswered so flag values survive.
func askSetup(config domain.InstallConfig) (domain.InteractiveAnswers, error) {
	fmt.Print(getTitleStyle().Render("BitFlux installer"))
	fmt.Println()

	answers := domain.InteractiveAnswers{}

	installType := installTypeFull

	typeForm := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("What should be installed?").
				Options(
					huh.NewOption("Full install (kernel + collector)", installTypeFull),
					huh.NewOption("Kernel only", installTypeKernel),
					huh.NewOption("Collector only", installTypeUserspace),
				).
				Value(&installType),
		),
	)

	if err := typeForm.Run(); err != nil {
		return answers, err
	}

	kernel := installType != installTypeUserspace
	userspace := installType != installTypeKernel
	answers.InstallKernel = &kernel
	answers.InstallUserspace = &userspace

	if !userspace {
		return answers, nil
	}

	deviceID := config.DeviceID
	if deviceID == "" {
		deviceID, _ = os.Hostname()
	}

	licenseKey := config.LicenseKey

	detailForm := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Device name").
				Description("How this machine appears in the BitFlux console").
				Value(&deviceID),
			huh.NewInput().
				Title("License key").
				Description("Leave empty to register the device later").
				EchoMode(huh.EchoModePassword).
				Value(&licenseKey),
		),
	)

	if err := detailForm.Run(); err != nil {
		return answers, err
	}

	answers.DeviceID = deviceID
	answers.LicenseKey = licenseKey

	return answers, nil
}

// confirmReboot asks whether to boot into the new kernel now. Wired into
// the orchestrator so the question comes after installation finishes.
func confirmReboot(_ context.Context) (bool, error) {
	confirmed := false

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Reboot now to load the swaphints kernel?").
				Value(&confirmed),
		),
	)

	if err := form.Run(); err != nil {
		return false, err
	}

	return confirmed, nil
}
