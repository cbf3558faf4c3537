package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectFractionInsideWindow(t *testing.T) {
	opts := DefaultOptions()
	g := ProjectFraction(Interval{Start: 540, End: 600}, 1, 2, opts)

	span := float64(DefaultWindowEnd - DefaultWindowStart)
	assert.InDelta(t, 180/span, g.Top, 1e-9)
	assert.InDelta(t, 60/span, g.Height, 1e-9)
	assert.InDelta(t, 0.5, g.Left, 1e-9)
	assert.InDelta(t, 0.5, g.Width, 1e-9)
	assert.Equal(t, DefaultBaseZ+1, g.StackOrder)
	assert.False(t, g.Clipped)
}

func TestProjectFractionAppliesLaneGap(t *testing.T) {
	opts := DefaultOptions()
	opts.LaneGap = 0.02
	g := ProjectFraction(Interval{Start: 540, End: 600}, 0, 4, opts)
	assert.InDelta(t, 0.23, g.Width, 1e-9)
	assert.InDelta(t, 0, g.Left, 1e-9)
}

func TestProjectFractionClipsBeforeWindow(t *testing.T) {
	opts := DefaultOptions()
	// 05:30-06:30 keeps only the 30 minutes after 06:00.
	g := ProjectFraction(Interval{Start: 330, End: 390}, 0, 1, opts)
	assert.Equal(t, 0.0, g.Top)
	assert.InDelta(t, 30/float64(opts.Window.Span()), g.Height, 1e-9)
	assert.True(t, g.Clipped)
}

func TestProjectFractionClipsAfterWindow(t *testing.T) {
	opts := DefaultOptions()
	g := ProjectFraction(Interval{Start: 1410, End: 1500}, 0, 1, opts)
	assert.Equal(t, 1.0, g.Top)
	assert.Equal(t, 0.0, g.Height)
	assert.True(t, g.Clipped)

	g = ProjectFraction(Interval{Start: 1350, End: 1410}, 0, 1, opts)
	assert.LessOrEqual(t, g.Top+g.Height, 1.0+1e-9)
	assert.True(t, g.Clipped)
}

func TestProjectPixel(t *testing.T) {
	opts := DefaultOptions()
	opts.Projection = ProjectionPixel
	g := Project(Interval{Start: 540, End: 570}, 0, 3, opts)

	assert.InDelta(t, 180*1.5, g.Top, 1e-9)
	assert.InDelta(t, 45, g.Height, 1e-9)
	assert.InDelta(t, 1.0/3, g.Width, 1e-9)
}

func TestProjectPixelDoesNotClampTime(t *testing.T) {
	opts := DefaultOptions()
	opts.Projection = ProjectionPixel
	g := Project(Interval{Start: 300, End: 360}, 0, 1, opts)
	assert.InDelta(t, -90, g.Top, 1e-9)
	assert.InDelta(t, 90, g.Height, 1e-9)
	assert.True(t, g.Clipped)
}

func TestOptionsValidate(t *testing.T) {
	require.NoError(t, DefaultOptions().Validate())

	bad := DefaultOptions()
	bad.Window = Window{Start: 600, End: 600}
	assert.Error(t, bad.Validate())

	bad = DefaultOptions()
	bad.LaneGap = 1
	assert.Error(t, bad.Validate())

	bad = DefaultOptions()
	bad.Projection = ProjectionPixel
	bad.PixelsPerMinute = 0
	assert.Error(t, bad.Validate())

	bad = DefaultOptions()
	bad.Projection = "isometric"
	assert.Error(t, bad.Validate())
}
