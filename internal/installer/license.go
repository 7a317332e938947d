// SPDX-FileCopyrightText: 2025 The BitFlux Authors
// SPDX-License-Identifier: EUPL-1.2

package installer

import "strings"

// Collector config keys patched by the installer.
const (
	licenseKeyName = "licensekey"
	deviceIDName   = "deviceid"
)

// PatchKeyValue rewrites the value of a key=value line, appending the line
// when the key is absent. Every other line passes through unchanged, in
// order, so hand-edited config survives reinstalls.
func PatchKeyValue(data []byte, key, value string) []byte {
	text := strings.TrimRight(string(data), "\n")

	var lines []string
	if text != "" {
		lines = strings.Split(text, "\n")
	}

	patched := false

	for i, line := range lines {
		if strings.HasPrefix(line, key+"=") {
			lines[i] = key + "=" + value
			patched = true

			break
		}
	}

	if !patched {
		lines = append(lines, key+"="+value)
	}

	return []byte(strings.Join(lines, "\n") + "\n")
}
