package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petal-labs/svgen/core"
)

func TestSvgOutputPath(t *testing.T) {
	tests := []struct {
		id    string
		index int
		want  string
	}{
		{"gen_1", 0, "gen_1-1.svg"},
		{"gen.v2-b", 2, "gen.v2-b-3.svg"},
		{"../../etc/passwd", 0, ".._.._etc_passwd-1.svg"},
		{"a b:c", 1, "a_b_c-2.svg"},
		{"", 0, "-1.svg"},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got := svgOutputPath("/out", tt.id, tt.index)
			assert.Equal(t, filepath.Join("/out", tt.want), got)
		})
	}
}

func TestSaveSvgResponse(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	resp := &core.SvgResponse{
		ID: "gen_7",
		Data: []core.SvgDocument{
			{SVG: "<svg>a</svg>", MimeType: "image/svg+xml"},
			{SVG: "<svg>b</svg>", MimeType: "image/svg+xml"},
		},
	}

	paths, err := saveSvgResponse(resp, dir)
	require.NoError(t, err)
	require.Len(t, paths, 2)

	for i, want := range []string{"<svg>a</svg>", "<svg>b</svg>"} {
		assert.True(t, filepath.IsAbs(paths[i]))
		data, err := os.ReadFile(paths[i])
		require.NoError(t, err)
		assert.Equal(t, want, string(data))
	}
	assert.Equal(t, filepath.Join(dir, "gen_7-2.svg"), paths[1])
}
