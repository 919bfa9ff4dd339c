package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	r := NewRenderer()

	testCases := []struct {
		name     string
		source   string
		contains []string
		excludes []string
	}{
		{
			name:     "heading with id",
			source:   "# Getting Started",
			contains: []string{`<h1 id="getting-started">Getting Started</h1>`},
		},
		{
			name:     "image",
			source:   "![step](https://img.example/one.png)",
			contains: []string{`<img src="https://img.example/one.png" alt="step"`},
		},
		{
			name:     "gfm table",
			source:   "| a | b |\n|---|---|\n| 1 | 2 |",
			contains: []string{"<table>", "<td>1</td>"},
		},
		{
			name:     "script is stripped",
			source:   "hello <script>alert(1)</script>",
			contains: []string{"hello"},
			excludes: []string{"<script", "alert(1)"},
		},
		{
			name:     "event handlers are stripped",
			source:   `<a href="https://example.com" onclick="steal()">x</a>`,
			contains: []string{`href="https://example.com"`},
			excludes: []string{"onclick"},
		},
		{
			name:     "fenced code keeps its language class",
			source:   "```go\nfmt.Println(1)\n```",
			contains: []string{`class="language-go"`},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := r.Render(tc.source)
			require.NoError(t, err)
			for _, s := range tc.contains {
				assert.Contains(t, string(out), s)
			}
			for _, s := range tc.excludes {
				assert.NotContains(t, string(out), s)
			}
		})
	}
}
