// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) Lothar May

package cmd

import (
	"path/filepath"
	"testing"

	"daisychart/initapp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommands(t *testing.T) {
	for _, name := range []string{"view", "render", "mockserver"} {
		c, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, c.Name())
		assert.NotNil(t, c.InheritedFlags().Lookup("config"), name)
		assert.NotNil(t, c.InheritedFlags().Lookup("log-level"), name)
	}
}

func TestRenderFlagDefaults(t *testing.T) {
	out, err := renderCmd.Flags().GetString("out")
	require.NoError(t, err)
	assert.Equal(t, "chart.png", out)
	scale, err := renderCmd.Flags().GetFloat32("scale")
	require.NoError(t, err)
	assert.Equal(t, float32(1), scale)
}

func TestRenderRejectsNegativeWidth(t *testing.T) {
	out := filepath.Join(t.TempDir(), "chart.png")
	require.NoError(t, renderCmd.Flags().Set("out", out))
	require.NoError(t, renderCmd.Flags().Set("width", "-10"))
	t.Cleanup(func() {
		_ = renderCmd.Flags().Set("out", "chart.png")
		_ = renderCmd.Flags().Set("width", "1200")
	})
	err := renderCmd.RunE(renderCmd, nil)
	assert.ErrorIs(t, err, initapp.ErrInvalidSize)
	assert.NoFileExists(t, out)
}
