package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/clinic-agenda-api/pkg/layout"
)

func testLayoutConfig() LayoutConfig {
	return LayoutConfig{
		DayWindowStart:  "06:00",
		DayWindowEnd:    "23:00",
		PixelsPerMinute: 1.5,
		BaseZ:           10,
		LaneGap:         0.02,
	}
}

func TestLoadLayoutProfilesDefaults(t *testing.T) {
	profiles, err := LoadLayoutProfiles("", testLayoutConfig())
	require.NoError(t, err)
	require.Len(t, profiles, 2)

	day := profiles[ProfileDay]
	assert.Equal(t, layout.ProjectionPixel, day.Projection)
	assert.Equal(t, layout.Window{Start: 360, End: 1380}, day.Window)
	assert.InDelta(t, 1.5, day.PixelsPerMinute, 1e-9)
	assert.InDelta(t, 0.02, day.LaneGap, 1e-9)

	assert.Equal(t, layout.ProjectionFraction, profiles[ProfileWeek].Projection)
}

func TestLoadLayoutProfilesMissingFileFallsBack(t *testing.T) {
	profiles, err := LoadLayoutProfiles(filepath.Join(t.TempDir(), "nope.yaml"), testLayoutConfig())
	require.NoError(t, err)
	assert.Contains(t, profiles, ProfileDay)
}

func TestLoadLayoutProfilesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	content := `
profiles:
  Compact:
    window_start: "07:00"
    window_end: "24:00"
    projection: pixel
    pixels_per_minute: 1
  week:
    window_start: "08:00"
    window_end: "20:00"
    lane_gap: 0.05
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	profiles, err := LoadLayoutProfiles(path, testLayoutConfig())
	require.NoError(t, err)

	compact := profiles["compact"]
	assert.Equal(t, layout.Window{Start: 420, End: 1440}, compact.Window)
	assert.Equal(t, layout.ProjectionPixel, compact.Projection)
	assert.InDelta(t, 1.0, compact.PixelsPerMinute, 1e-9)
	assert.Equal(t, 10, compact.BaseZ)

	week := profiles[ProfileWeek]
	assert.Equal(t, layout.Window{Start: 480, End: 1200}, week.Window)
	assert.Equal(t, layout.ProjectionFraction, week.Projection)
	assert.InDelta(t, 0.05, week.LaneGap, 1e-9)
}

func TestLoadLayoutProfilesCustomInheritsEnvDay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	content := `
profiles:
  day:
    window_start: "07:00"
    projection: fraction
    lane_gap: 0.1
  compact:
    base_z: 5
  flat:
    base_z: 0
    lane_gap: 0
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	for i := 0; i < 20; i++ {
		profiles, err := LoadLayoutProfiles(path, testLayoutConfig())
		require.NoError(t, err)

		day := profiles[ProfileDay]
		assert.Equal(t, layout.Window{Start: 420, End: 1380}, day.Window)
		assert.Equal(t, layout.ProjectionFraction, day.Projection)
		assert.InDelta(t, 0.1, day.LaneGap, 1e-9)

		compact := profiles["compact"]
		assert.Equal(t, layout.Window{Start: 360, End: 1380}, compact.Window)
		assert.Equal(t, layout.ProjectionPixel, compact.Projection)
		assert.InDelta(t, 0.02, compact.LaneGap, 1e-9)
		assert.InDelta(t, 1.5, compact.PixelsPerMinute, 1e-9)
		assert.Equal(t, 5, compact.BaseZ)

		flat := profiles["flat"]
		assert.Equal(t, 0, flat.BaseZ)
		assert.InDelta(t, 0.0, flat.LaneGap, 1e-9)
		assert.Equal(t, layout.ProjectionPixel, flat.Projection)
	}
}

func TestLoadLayoutProfilesRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	content := `
profiles:
  broken:
    window_start: "20:00"
    window_end: "08:00"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	_, err := LoadLayoutProfiles(path, testLayoutConfig())
	assert.Error(t, err)
}

func TestLoadLayoutProfilesRejectsBadClock(t *testing.T) {
	cfg := testLayoutConfig()
	cfg.DayWindowStart = "6am"
	_, err := LoadLayoutProfiles("", cfg)
	assert.ErrorIs(t, err, layout.ErrInvalidTimeFormat)
}
