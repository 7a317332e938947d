// SPDX-FileCopyrightText: 2025 The BitFlux Authors
// SPDX-License-Identifier: EUPL-1.2

// Package grub locates a kernel menu entry in the bootloader configuration
// and points the default boot selection at it.
package grub

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/bitflux-ai/installer/internal/console"
	"github.com/bitflux-ai/installer/internal/domain"
)

// The menu grammar we care about is three line shapes. Anything else in
// grub.cfg is noise for our purposes.
var (
	topEntryPattern = regexp.MustCompile(`^menuentry ['"]([^'"]+)['"]`)
	submenuPattern  = regexp.MustCompile(`^submenu ['"]([^'"]+)['"]`)
	nestedPattern   = regexp.MustCompile(`^\s+menuentry ['"]([^'"]+)['"]`)
)

const recoveryMarker = "(recovery mode)"

// Defaults-file keys rewritten to select the target entry.
const (
	timeoutStyleLine = "GRUB_TIMEOUT_STYLE=menu"
	timeoutLine      = "GRUB_TIMEOUT=2"
)

// MenuEntries parses grub.cfg lines into selectable identifiers. Nested
// entries are rendered "parent>child". The scope machine has two levels: a
// submenu line opens a nested scope, and the next top-level entry closes it.
func MenuEntries(lines []string) []string {
	var (
		entries []string
		submenu string
	)

	for _, line := range lines {
		switch {
		case topEntryPattern.MatchString(line):
			submenu = ""

			entries = append(entries, topEntryPattern.FindStringSubmatch(line)[1])
		case submenuPattern.MatchString(line):
			submenu = submenuPattern.FindStringSubmatch(line)[1]
		case submenu != "" && nestedPattern.MatchString(line):
			entries = append(entries, submenu+">"+nestedPattern.FindStringSubmatch(line)[1])
		}
	}

	return entries
}

// SelectEntry returns the first identifier containing the version string,
// skipping recovery-mode entries.
func SelectEntry(entries []string, version string) (string, bool) {
	for _, entry := range entries {
		if strings.Contains(entry, version) && !strings.Contains(entry, recoveryMarker) {
			return entry, true
		}
	}

	return "", false
}

// RewriteDefaults patches the timeout style, timeout, and default entry
// lines in the bootloader defaults file. All other lines pass through
// unchanged, in order; keys not present are appended.
func RewriteDefaults(lines []string, entry string) []string {
	defaultLine := fmt.Sprintf("GRUB_DEFAULT=%q", entry)

	replacements := []struct {
		prefix string
		line   string
	}{
		{"GRUB_TIMEOUT_STYLE=", timeoutStyleLine},
		{"GRUB_TIMEOUT=", timeoutLine},
		{"GRUB_DEFAULT=", defaultLine},
	}

	seen := make(map[string]bool, len(replacements))
	out := make([]string, 0, len(lines)+len(replacements))

	for _, line := range lines {
		replaced := false

		for _, repl := range replacements {
			if strings.HasPrefix(line, repl.prefix) && !seen[repl.prefix] {
				out = append(out, repl.line)
				seen[repl.prefix] = true
				replaced = true

				break
			}
		}

		if !replaced {
			out = append(out, line)
		}
	}

	for _, repl := range replacements {
		if !seen[repl.prefix] {
			out = append(out, repl.line)
		}
	}

	return out
}

// Editor rewrites the bootloader configuration to boot a specific kernel.
type Editor struct {
	runner domain.CommandRunner
	files  domain.FileManager
	output *console.Output

	// ConfigPaths are tried in order for the rendered menu.
	ConfigPaths []string

	// DefaultsPath is the defaults file that gets line-patched.
	DefaultsPath string
}

// NewEditor creates a grub editor with the standard file locations.
func NewEditor(runner domain.CommandRunner, files domain.FileManager) *Editor {
	return &Editor{
		runner:       runner,
		files:        files,
		output:       console.Default,
		ConfigPaths:  []string{"/boot/grub/grub.cfg", "/boot/grub2/grub.cfg"},
		DefaultsPath: "/etc/default/grub",
	}
}

// Apply selects the menu entry for the profile's grub version string,
// rewrites the defaults file to boot it, and runs the profile's grub update
// command. Taking the version from the profile means a grub_version override
// changes which entry gets selected. A missing entry is a diagnostic, not a
// failure: the host simply keeps its current default until the new kernel's
// entry exists.
func (e *Editor) Apply(ctx context.Context, profile *domain.InstallerProfile) error {
	version := profile.GrubVersion()

	menu, err := e.readMenu()
	if err != nil {
		e.output.Warningf("Skipping bootloader update: %v", err)

		return nil
	}

	entry, found := SelectEntry(MenuEntries(menu), version)
	if !found {
		e.output.Warningf("Skipping bootloader update: no menu entry contains %q", version)

		return nil
	}

	data, err := e.files.ReadFile(e.DefaultsPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", e.DefaultsPath, err)
	}

	lines := RewriteDefaults(splitLines(string(data)), entry)
	if err := e.files.WriteFile(e.DefaultsPath, []byte(strings.Join(lines, "\n")+"\n")); err != nil {
		return fmt.Errorf("failed to rewrite %s: %w", e.DefaultsPath, err)
	}

	e.output.Progressf("Selected boot entry %q", entry)

	if _, err := e.runner.Run(ctx, profile.ActionCommand(domain.ActionGrubUpdate)); err != nil {
		return fmt.Errorf("bootloader update failed: %w", err)
	}

	return nil
}

func (e *Editor) readMenu() ([]string, error) {
	for _, path := range e.ConfigPaths {
		if !e.files.FileExists(path) {
			continue
		}

		data, err := e.files.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		return splitLines(string(data)), nil
	}

	return nil, fmt.Errorf("no bootloader menu found in %s", strings.Join(e.ConfigPaths, ", "))
}

func splitLines(text string) []string {
	return strings.Split(strings.TrimRight(text, "\n"), "\n")
}
