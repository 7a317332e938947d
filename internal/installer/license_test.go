// SPDX-FileCopyrightText: 2025 The BitFlux Authors
// SPDX-License-Identifier: EUPL-1.2

package installer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPatchKeyValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		key   string
		value string
		want  string
	}{
		{
			name:  "replaces existing value",
			input: "# collector config\nlicensekey=old\ninterval=30\n",
			key:   "licensekey",
			value: "new",
			want:  "# collector config\nlicensekey=new\ninterval=30\n",
		},
		{
			name:  "appends missing key",
			input: "interval=30\n",
			key:   "deviceid",
			value: "rack-7",
			want:  "interval=30\ndeviceid=rack-7\n",
		},
		{
			name:  "empty file",
			input: "",
			key:   "licensekey",
			value: "abc",
			want:  "licensekey=abc\n",
		},
		{
			name:  "prefix of another key is left alone",
			input: "deviceidle=never\n",
			key:   "deviceid",
			value: "rack-7",
			want:  "deviceidle=never\ndeviceid=rack-7\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := PatchKeyValue([]byte(tt.input), tt.key, tt.value)
			assert.Equal(t, tt.want, string(got))
		})
	}
}
