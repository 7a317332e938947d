// SPDX-FileCopyrightText: 2025 The BitFlux Authors
// SPDX-License-Identifier: EUPL-1.2

package grub

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/bitflux-ai/installer/internal/adapters/platform"
	"github.com/bitflux-ai/installer/internal/console"
	"github.com/bitflux-ai/installer/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMenu = `#
# DO NOT EDIT THIS FILE
#
set timeout=5
menuentry 'Ubuntu' --class ubuntu {
	linux /vmlinuz
}
submenu 'Advanced options' $menuentry_id_option 'gnulinux-advanced' {
	menuentry 'Ubuntu, with swaphints' {
		linux /vmlinuz-swaphints
	}
	menuentry 'Ubuntu, with swaphints (recovery mode)' {
		linux /vmlinuz-swaphints recovery
	}
}
menuentry 'Memory test' {
	linux16 /memtest86+
}
`

func TestMenuEntries(t *testing.T) {
	t.Parallel()

	entries := MenuEntries(strings.Split(sampleMenu, "\n"))

	assert.Equal(t, []string{
		"Ubuntu",
		"Advanced options>Ubuntu, with swaphints",
		"Advanced options>Ubuntu, with swaphints (recovery mode)",
		"Memory test",
	}, entries)
}

func TestMenuEntriesSubmenuScopeResets(t *testing.T) {
	t.Parallel()

	lines := []string{
		`submenu 'Advanced options' {`,
		`	menuentry 'nested one' {`,
		`menuentry 'Top level' {`,
		`	menuentry 'orphan nested' {`,
	}

	// The top-level entry closes the submenu scope, so the indented entry
	// after it has no parent and is not selectable.
	assert.Equal(t, []string{
		"Advanced options>nested one",
		"Top level",
	}, MenuEntries(lines))
}

func TestSelectEntry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		entries []string
		version string
		want    string
		found   bool
	}{
		{
			name: "nested entry preferred over recovery",
			entries: []string{
				"Ubuntu",
				"Advanced options>Ubuntu, with swaphints",
				"Advanced options>Ubuntu, with swaphints (recovery mode)",
			},
			version: "swaphints",
			want:    "Advanced options>Ubuntu, with swaphints",
			found:   true,
		},
		{
			name: "recovery entries are never selected",
			entries: []string{
				"Advanced options>Ubuntu, with swaphints (recovery mode)",
			},
			version: "swaphints",
		},
		{
			name:    "no entry matches",
			entries: []string{"Ubuntu", "Memory test"},
			version: "swaphints",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, found := SelectEntry(tt.entries, tt.version)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRewriteDefaults(t *testing.T) {
	t.Parallel()

	input := []string{
		"# If you change this file, run 'update-grub' afterwards",
		"GRUB_DEFAULT=0",
		"GRUB_TIMEOUT=5",
		`GRUB_CMDLINE_LINUX_DEFAULT="quiet splash"`,
		"GRUB_CMDLINE_LINUX=\"\"",
	}

	out := RewriteDefaults(input, "Foo")

	assert.Equal(t, []string{
		"# If you change this file, run 'update-grub' afterwards",
		`GRUB_DEFAULT="Foo"`,
		"GRUB_TIMEOUT=2",
		`GRUB_CMDLINE_LINUX_DEFAULT="quiet splash"`,
		"GRUB_CMDLINE_LINUX=\"\"",
		"GRUB_TIMEOUT_STYLE=menu",
	}, out, "existing lines are patched in place, missing keys appended, order preserved")
}

func TestRewriteDefaultsAppendsAllWhenEmpty(t *testing.T) {
	t.Parallel()

	out := RewriteDefaults(nil, "Advanced options>Ubuntu, with swaphints")

	assert.Contains(t, out, "GRUB_TIMEOUT_STYLE=menu")
	assert.Contains(t, out, "GRUB_TIMEOUT=2")
	assert.Contains(t, out, `GRUB_DEFAULT="Advanced options>Ubuntu, with swaphints"`)
}

func testEditor(runner domain.CommandRunner, files domain.FileManager) *Editor {
	editor := NewEditor(runner, files)
	editor.output = &console.Output{Err: &bytes.Buffer{}}

	return editor
}

func testGrubProfile(t *testing.T) *domain.InstallerProfile {
	t.Helper()

	profile, err := domain.NewInstallerProfile(map[string]string{
		domain.SettingNickname:        "ubuntu2204",
		domain.SettingReleaseCmd:      "lsb_release -ds",
		domain.SettingReleaseMatches:  "Ubuntu 22.04",
		domain.SettingRepoURL:         "https://mirror.bitflux.ai/repo/ubuntu2204",
		domain.SettingKeyURL:          "https://mirror.bitflux.ai/repo/bitflux.gpg",
		domain.SettingGrubVersion:     "swaphints",
		domain.ActionRepoAdd:          "repo-add",
		domain.ActionKernelInstall:    "kernel-install",
		domain.ActionUserspaceInstall: "userspace-install",
		domain.ActionCacheClean:       "cache-clean",
		domain.ActionGrubUpdate:       "update-grub",
	})
	require.NoError(t, err)

	return profile
}

func TestEditorApply(t *testing.T) {
	t.Parallel()

	files := platform.NewMockFileManager()
	files.SetMockFile("/boot/grub/grub.cfg", []byte(sampleMenu))
	files.SetMockFile("/etc/default/grub", []byte("GRUB_DEFAULT=0\nGRUB_TIMEOUT=5\n"))

	runner := platform.NewMockCommandRunner()

	editor := testEditor(runner, files)

	err := editor.Apply(context.Background(), testGrubProfile(t))
	require.NoError(t, err)

	written, ok := files.MockFile("/etc/default/grub")
	require.True(t, ok)

	assert.Contains(t, string(written), `GRUB_DEFAULT="Advanced options>Ubuntu, with swaphints"`)
	assert.Contains(t, string(written), "GRUB_TIMEOUT=2")
	assert.Contains(t, string(written), "GRUB_TIMEOUT_STYLE=menu")

	assert.Equal(t, []string{"update-grub"}, runner.CallStrings())
}

func TestEditorApplyUsesProfileGrubVersion(t *testing.T) {
	t.Parallel()

	menu := "menuentry 'Ubuntu' {\n" +
		"menuentry 'Ubuntu, with vanilla-6.8' {\n" +
		"menuentry 'Ubuntu, with swaphints' {\n"

	files := platform.NewMockFileManager()
	files.SetMockFile("/boot/grub/grub.cfg", []byte(menu))
	files.SetMockFile("/etc/default/grub", []byte("GRUB_DEFAULT=0\n"))

	runner := platform.NewMockCommandRunner()

	editor := testEditor(runner, files)

	profile, skipped := testGrubProfile(t).WithOverrides(map[string]string{
		domain.SettingGrubVersion: "vanilla-6.8",
	})
	require.Empty(t, skipped)

	err := editor.Apply(context.Background(), profile)
	require.NoError(t, err)

	written, ok := files.MockFile("/etc/default/grub")
	require.True(t, ok)
	assert.Contains(t, string(written), `GRUB_DEFAULT="Ubuntu, with vanilla-6.8"`)
}

func TestEditorApplyNoMatchingEntryIsNotFatal(t *testing.T) {
	t.Parallel()

	files := platform.NewMockFileManager()
	files.SetMockFile("/boot/grub/grub.cfg", []byte("menuentry 'Ubuntu' {\n"))
	files.SetMockFile("/etc/default/grub", []byte("GRUB_DEFAULT=0\n"))

	runner := platform.NewMockCommandRunner()

	editor := testEditor(runner, files)

	err := editor.Apply(context.Background(), testGrubProfile(t))
	require.NoError(t, err)

	written, _ := files.MockFile("/etc/default/grub")
	assert.Equal(t, "GRUB_DEFAULT=0\n", string(written), "defaults file untouched")
	assert.Empty(t, runner.Calls, "no update command issued")
}

func TestEditorApplyMissingMenuIsNotFatal(t *testing.T) {
	t.Parallel()

	files := platform.NewMockFileManager()
	runner := platform.NewMockCommandRunner()

	editor := testEditor(runner, files)

	err := editor.Apply(context.Background(), testGrubProfile(t))
	require.NoError(t, err)
	assert.Empty(t, runner.Calls)
}
