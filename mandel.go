package mandel

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Window is a rectangle of the complex plane. Row 0 of a Grid lies on MinY.
type Window struct {
	MinX, MaxX float64
	MinY, MaxY float64
}

// FullWindow is the classic view of the whole set.
var FullWindow = Window{
	MinX: -2,
	MaxX: 1,
	MinY: -1,
	MaxY: 1,
}

// Classic regions / landmarks in the Mandelbrot set
var (
	// Seahorse Valley – dense filaments and repeating “seahorse” curls
	SeahorseValley = Window{
		MinX: -0.8,
		MaxX: -0.7,
		MinY: 0.05,
		MaxY: 0.15,
	}

	// Elephant Valley – large bulb with trunk-like tendrils
	ElephantValley = Window{
		MinX: -1.85,
		MaxX: -1.75,
		MinY: -0.10,
		MaxY: -0.02,
	}

	// Spiral Minibrot – small Mandelbrot copy with tight spiral arms
	SpiralMinibrot = Window{
		MinX: -0.7435,
		MaxX: -0.7420,
		MinY: 0.1310,
		MaxY: 0.1325,
	}
)

var windows = map[string]Window{
	"full":     FullWindow,
	"seahorse": SeahorseValley,
	"elephant": ElephantValley,
	"spiral":   SpiralMinibrot,
}

// WindowByName looks up one of the predefined windows.
func WindowByName(name string) (Window, error) {
	w, ok := windows[name]
	if !ok {
		return Window{}, fmt.Errorf("unknown window %q (known: %v)", name, WindowNames())
	}
	return w, nil
}

// WindowNames lists the predefined windows in sorted order.
func WindowNames() []string {
	names := make([]string, 0, len(windows))
	for n := range windows {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Grid is the pixel raster laid over a Window. It is computed once and passed
// by value to everything that needs the geometry.
type Grid struct {
	Window     Window
	Resolution int
	Width      int
	Height     int
	Step       float64
}

var ErrResolution = errors.New("resolution must be a positive integer")

// NewGrid derives the raster size from the window spans and resolution.
func NewGrid(w Window, resolution int) (Grid, error) {
	if resolution <= 0 {
		return Grid{}, fmt.Errorf("%w: got %d", ErrResolution, resolution)
	}
	spanX := w.MaxX - w.MinX
	spanY := w.MaxY - w.MinY
	if !(spanX > 0) || !(spanY > 0) {
		return Grid{}, fmt.Errorf("window %+v has no area", w)
	}

	fw := math.Round(float64(resolution) * spanX)
	fh := math.Round(float64(resolution) * spanY)
	if fw < 1 || fh < 1 {
		return Grid{}, fmt.Errorf("%w: %d yields an empty %gx%g grid", ErrResolution, resolution, fw, fh)
	}
	// width*height has to fit in an int on every platform
	if fw*fh > MaxPixels {
		return Grid{}, fmt.Errorf("%w: %d yields %gx%g pixels, too many", ErrResolution, resolution, fw, fh)
	}

	width := int(fw)
	return Grid{
		Window:     w,
		Resolution: resolution,
		Width:      width,
		Height:     int(fh),
		Step:       spanX / float64(width),
	}, nil
}

// Pixels is the number of cells in the grid.
func (g Grid) Pixels() int {
	return g.Width * g.Height
}

// Point maps a linearized pixel index (row*Width + col) to its sample in the plane.
func (g Grid) Point(pos int) complex128 {
	row := pos / g.Width
	col := pos % g.Width
	// explicit conversions keep the products from being fused with the additions
	re := float64(float64(col)*g.Step) + g.Window.MinX
	im := float64(float64(row)*g.Step) + g.Window.MinY
	return complex(re, im)
}
