package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/noah-isme/clinic-agenda-api/pkg/layout"
)

// Built-in layout profile names.
const (
	ProfileDay  = "day"
	ProfileWeek = "week"
)

// LayoutProfile is a named set of layout constants that can be selected per request.
type LayoutProfile struct {
	Name            string  `yaml:"-" json:"name"`
	WindowStart     string  `yaml:"window_start" json:"window_start"`
	WindowEnd       string  `yaml:"window_end" json:"window_end"`
	PixelsPerMinute float64 `yaml:"pixels_per_minute" json:"pixels_per_minute"`
	BaseZ           int     `yaml:"base_z" json:"base_z"`
	LaneGap         float64 `yaml:"lane_gap" json:"lane_gap"`
	Projection      string  `yaml:"projection" json:"projection"`
}

// profileEntry is one YAML profile. Pointer fields tell an explicit zero from an unset key.
type profileEntry struct {
	WindowStart     string   `yaml:"window_start"`
	WindowEnd       string   `yaml:"window_end"`
	PixelsPerMinute *float64 `yaml:"pixels_per_minute"`
	BaseZ           *int     `yaml:"base_z"`
	LaneGap         *float64 `yaml:"lane_gap"`
	Projection      string   `yaml:"projection"`
}

type profileFile struct {
	Profiles map[string]profileEntry `yaml:"profiles"`
}

// ToOptions converts the profile into layout options, validating every field.
func (p LayoutProfile) ToOptions() (layout.Options, error) {
	start, err := layout.ParseClock(p.WindowStart)
	if err != nil {
		return layout.Options{}, fmt.Errorf("profile %s window_start: %w", p.Name, err)
	}
	// 24:00 is accepted as the end of the visible day.
	end, err := parseWindowEnd(p.WindowEnd)
	if err != nil {
		return layout.Options{}, fmt.Errorf("profile %s window_end: %w", p.Name, err)
	}

	opts := layout.Options{
		Window:          layout.Window{Start: start, End: end},
		PixelsPerMinute: p.PixelsPerMinute,
		BaseZ:           p.BaseZ,
		LaneGap:         p.LaneGap,
		Projection:      layout.Projection(strings.ToLower(strings.TrimSpace(p.Projection))),
	}
	if err := opts.Validate(); err != nil {
		return layout.Options{}, fmt.Errorf("profile %s: %w", p.Name, err)
	}
	return opts, nil
}

// DefaultLayoutProfiles derives the built-in day and week profiles from the env layout section.
func DefaultLayoutProfiles(cfg LayoutConfig) map[string]LayoutProfile {
	day := LayoutProfile{
		Name:            ProfileDay,
		WindowStart:     cfg.DayWindowStart,
		WindowEnd:       cfg.DayWindowEnd,
		PixelsPerMinute: cfg.PixelsPerMinute,
		BaseZ:           cfg.BaseZ,
		LaneGap:         cfg.LaneGap,
		Projection:      string(layout.ProjectionPixel),
	}
	week := day
	week.Name = ProfileWeek
	week.Projection = string(layout.ProjectionFraction)
	return map[string]LayoutProfile{ProfileDay: day, ProfileWeek: week}
}

// LoadLayoutProfiles reads named profiles from a YAML file layered over the defaults.
// An empty path or a missing file yields the defaults alone. Overrides of a
// built-in profile inherit from that built-in; custom profiles inherit from day.
func LoadLayoutProfiles(path string, cfg LayoutConfig) (map[string]layout.Options, error) {
	defaults := DefaultLayoutProfiles(cfg)
	profiles := DefaultLayoutProfiles(cfg)

	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read layout profiles: %w", err)
		default:
			var file profileFile
			if err := yaml.Unmarshal(raw, &file); err != nil {
				return nil, fmt.Errorf("parse layout profiles: %w", err)
			}
			for name, entry := range file.Profiles {
				key := strings.ToLower(strings.TrimSpace(name))
				if key == "" {
					return nil, errors.New("layout profile with empty name")
				}
				base, ok := defaults[key]
				if !ok {
					base = defaults[ProfileDay]
				}
				profiles[key] = fillProfile(key, entry, base)
			}
		}
	}

	result := make(map[string]layout.Options, len(profiles))
	for name, profile := range profiles {
		opts, err := profile.ToOptions()
		if err != nil {
			return nil, err
		}
		result[name] = opts
	}
	return result, nil
}

func fillProfile(name string, e profileEntry, base LayoutProfile) LayoutProfile {
	p := base
	p.Name = name
	if e.WindowStart != "" {
		p.WindowStart = e.WindowStart
	}
	if e.WindowEnd != "" {
		p.WindowEnd = e.WindowEnd
	}
	if e.PixelsPerMinute != nil {
		p.PixelsPerMinute = *e.PixelsPerMinute
	}
	if e.BaseZ != nil {
		p.BaseZ = *e.BaseZ
	}
	if e.LaneGap != nil {
		p.LaneGap = *e.LaneGap
	}
	if e.Projection != "" {
		p.Projection = e.Projection
	}
	return p
}

func parseWindowEnd(raw string) (int, error) {
	if strings.TrimSpace(raw) == "24:00" {
		return layout.MinutesPerDay, nil
	}
	return layout.ParseClock(raw)
}
