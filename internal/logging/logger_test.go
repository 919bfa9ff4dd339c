package logging

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/naka-gawa/portfolio/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	testCases := []struct {
		name        string
		format      string
		level       string
		expectError bool
		contains    string
	}{
		{name: "text format", format: "text", level: "info", contains: "hello"},
		{name: "json format", format: "json", level: "debug", contains: `"msg":"hello"`},
		{name: "bad format", format: "xml", level: "info", expectError: true},
		{name: "bad level", format: "text", level: "loud", expectError: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger, err := New(&buf, tc.format, tc.level)
			if tc.expectError {
				require.Error(t, err)
				assert.True(t, errors.Is(err, domain.ErrInvalidConfig))
				return
			}
			require.NoError(t, err)

			logger.Info("hello", "user", "octocat")
			assert.Contains(t, buf.String(), tc.contains)
		})
	}
}

func TestNewFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "text", "warn")
	require.NoError(t, err)

	logger.Info("quiet")
	logger.Warn("loud")

	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "loud")
}

func TestContextLogger(t *testing.T) {
	fallback := Discard()
	assert.Same(t, fallback, From(context.Background(), fallback))

	stored := Discard()
	ctx := With(context.Background(), stored)
	assert.Same(t, stored, From(ctx, fallback))
}
