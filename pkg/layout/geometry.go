package layout

import "fmt"

// Projection selects the coordinate system used for top/height.
type Projection string

const (
	// ProjectionFraction expresses top/height as fractions of the day window.
	ProjectionFraction Projection = "fraction"
	// ProjectionPixel expresses top/height in pixels at a fixed pixels-per-minute ratio.
	ProjectionPixel Projection = "pixel"
)

// Defaults for the visible window and the fixed-height grid (45px per half hour).
const (
	DefaultWindowStart     = 6 * 60
	DefaultWindowEnd       = 23 * 60
	DefaultPixelsPerMinute = 45.0 / 30.0
	DefaultBaseZ           = 10
)

// Window is the visible time-of-day range, in minutes since midnight.
type Window struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// Span returns the window length in minutes.
func (w Window) Span() int {
	return w.End - w.Start
}

// Options carries the caller-supplied layout constants.
type Options struct {
	Window          Window
	PixelsPerMinute float64
	BaseZ           int
	LaneGap         float64
	Projection      Projection
}

// DefaultOptions returns the 06:00-23:00 fractional layout.
func DefaultOptions() Options {
	return Options{
		Window:          Window{Start: DefaultWindowStart, End: DefaultWindowEnd},
		PixelsPerMinute: DefaultPixelsPerMinute,
		BaseZ:           DefaultBaseZ,
		Projection:      ProjectionFraction,
	}
}

// Validate checks that the options describe a usable grid.
func (o Options) Validate() error {
	if o.Window.Start < 0 || o.Window.End <= o.Window.Start {
		return fmt.Errorf("layout window %d-%d is empty or negative", o.Window.Start, o.Window.End)
	}
	if o.LaneGap < 0 || o.LaneGap >= 1 {
		return fmt.Errorf("lane gap %.3f outside [0,1)", o.LaneGap)
	}
	switch o.Projection {
	case ProjectionFraction:
	case ProjectionPixel:
		if o.PixelsPerMinute <= 0 {
			return fmt.Errorf("pixels per minute must be positive, got %.3f", o.PixelsPerMinute)
		}
	default:
		return fmt.Errorf("unknown projection %q", o.Projection)
	}
	return nil
}

func (o Options) normalized() Options {
	if o.Window.End <= o.Window.Start {
		o.Window = Window{Start: DefaultWindowStart, End: DefaultWindowEnd}
	}
	if o.PixelsPerMinute <= 0 {
		o.PixelsPerMinute = DefaultPixelsPerMinute
	}
	if o.Projection == "" {
		o.Projection = ProjectionFraction
	}
	if o.LaneGap < 0 || o.LaneGap >= 1 {
		o.LaneGap = 0
	}
	return o
}

// Geometry is the renderable box for one event.
type Geometry struct {
	Top        float64 `json:"top"`
	Height     float64 `json:"height"`
	Left       float64 `json:"left"`
	Width      float64 `json:"width"`
	StackOrder int     `json:"stack_order"`
	Clipped    bool    `json:"clipped"`
}

// Project maps an interval and its lane onto the configured projection.
func Project(iv Interval, lane, laneCount int, opts Options) Geometry {
	opts = opts.normalized()
	if opts.Projection == ProjectionPixel {
		return ProjectPixel(iv, lane, laneCount, opts)
	}
	return ProjectFraction(iv, lane, laneCount, opts)
}

// ProjectFraction positions the visible part of the interval as fractions of
// the window. Parts outside the window are cut off, never moved.
func ProjectFraction(iv Interval, lane, laneCount int, opts Options) Geometry {
	span := float64(opts.Window.Span())
	visStart := maxInt(iv.Start, opts.Window.Start)
	visEnd := minInt(iv.End, opts.Window.End)

	g := horizontal(lane, laneCount, opts)
	g.Clipped = clipped(iv, opts.Window)
	if visEnd <= visStart {
		// Entirely outside: pin to the nearest edge with zero height.
		if iv.End <= opts.Window.Start {
			g.Top = 0
		} else {
			g.Top = 1
		}
		return g
	}
	g.Top = clamp01(float64(visStart-opts.Window.Start) / span)
	g.Height = clamp01(float64(visEnd-visStart) / span)
	return g
}

// ProjectPixel positions the interval on a fixed-height grid. Vertical values
// are not clamped; the grid container hides overflow.
func ProjectPixel(iv Interval, lane, laneCount int, opts Options) Geometry {
	g := horizontal(lane, laneCount, opts)
	g.Clipped = clipped(iv, opts.Window)
	g.Top = float64(iv.Start-opts.Window.Start) * opts.PixelsPerMinute
	g.Height = float64(iv.Duration()) * opts.PixelsPerMinute
	return g
}

func horizontal(lane, laneCount int, opts Options) Geometry {
	if laneCount < 1 {
		laneCount = 1
	}
	share := 1 / float64(laneCount)
	return Geometry{
		Left:       clamp01(float64(lane) * share),
		Width:      clamp01(share - opts.LaneGap),
		StackOrder: opts.BaseZ + lane,
	}
}

func clipped(iv Interval, w Window) bool {
	return iv.Start < w.Start || iv.End > w.End
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
