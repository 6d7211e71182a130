// SPDX-FileCopyrightText: 2026 The Redoxer Authors
//
// SPDX-License-Identifier: MIT

package image

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFolderMapping(t *testing.T) {
	tests := []struct {
		name        string
		spec        string
		expected    FolderMapping
		expectedErr error
	}{
		{
			name:     "host only defaults guest",
			spec:     "./proj",
			expected: FolderMapping{Host: "./proj", Guest: "/root"},
		},
		{
			name:     "explicit guest",
			spec:     "./proj:/data/in",
			expected: FolderMapping{Host: "./proj", Guest: "/data/in"},
		},
		{
			name:     "guest path cleaned",
			spec:     "out:/data//out/",
			expected: FolderMapping{Host: "out", Guest: "/data/out"},
		},
		{
			name:        "empty host",
			spec:        ":/root",
			expectedErr: ErrInvalidMapping,
		},
		{
			name:        "relative guest",
			spec:        "./proj:data",
			expectedErr: ErrInvalidMapping,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapping, err := ParseFolderMapping(tt.spec)
			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, mapping)
		})
	}
}

func TestRunConfigValidate(t *testing.T) {
	cfg := RunConfig{
		Args:      []string{"true"},
		Folders:   []FolderMapping{{Host: "./in", Guest: "/root"}},
		Artifacts: []FolderMapping{{Host: "./out", Guest: "/data/out"}},
	}
	require.NoError(t, cfg.Validate())

	cfg.Artifacts = append(cfg.Artifacts, FolderMapping{Host: "./in", Guest: "/other"})
	require.ErrorIs(t, cfg.Validate(), ErrDuplicateFolder)
}
