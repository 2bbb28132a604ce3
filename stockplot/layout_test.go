// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) Lothar May

package stockplot

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanLayoutEmptySeries(t *testing.T) {
	_, err := PlanLayout(800, 600, DefaultPaneConfig(), 0)
	assert.True(t, errors.Is(err, ErrEmptySeries))
}

func TestPlanLayoutTooSmall(t *testing.T) {
	_, err := PlanLayout(50, 600, DefaultPaneConfig(), 10)
	assert.True(t, errors.Is(err, ErrSurfaceTooSmall))
	_, err = PlanLayout(800, 120, DefaultPaneConfig(), 10)
	assert.True(t, errors.Is(err, ErrSurfaceTooSmall))
}

func TestPlanLayoutWithOscillator(t *testing.T) {
	l, err := PlanLayout(800, 600, DefaultPaneConfig(), 100)
	require.NoError(t, err)
	require.True(t, l.HasOscillator)
	assert.False(t, l.Main.Overlaps(l.Oscillator))
	assert.InDelta(t, 0.22*600, l.Oscillator.Dy(), 1e-3)
	assert.InDelta(t, 12, l.Oscillator.Min.Y-l.Main.Max.Y, 1e-3)
	assert.Equal(t, float32(64), l.Main.Min.X)
	assert.Equal(t, l.Main.Min.X, l.Oscillator.Min.X)
	assert.Greater(t, l.AxisLabelY, l.Oscillator.Max.Y)
	assert.Less(t, l.AxisLabelY, float32(600))
	assert.InDelta(t, (800-64-12)/100.0, l.BarSlotWidth, 1e-4)
	assert.InDelta(t, 0.8*l.BarSlotWidth, l.BarBodyWidth, 1e-4)
}

func TestPlanLayoutOscillatorFloor(t *testing.T) {
	l, err := PlanLayout(400, 200, DefaultPaneConfig(), 10)
	require.NoError(t, err)
	assert.InDelta(t, 60, l.Oscillator.Dy(), 1e-3)
	assert.False(t, l.Main.Overlaps(l.Oscillator))
}

func TestPlanLayoutWithoutOscillator(t *testing.T) {
	pc := DefaultPaneConfig()
	pc.ShowOscillator = false
	l, err := PlanLayout(800, 600, pc, 10)
	require.NoError(t, err)
	assert.False(t, l.HasOscillator)
	assert.Equal(t, float32(600-28), l.Main.Max.Y)
	assert.Len(t, l.Panes(), 1)
}

func TestBodyWidthFloor(t *testing.T) {
	l, err := PlanLayout(800, 600, DefaultPaneConfig(), 5000)
	require.NoError(t, err)
	assert.Equal(t, float32(1), l.BarBodyWidth)
}
