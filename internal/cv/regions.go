package cv

import "image"

// Screen geometry types
type Region struct {
	Left   int `yaml:"left" json:"left"`
	Top    int `yaml:"top" json:"top"`
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

type Point struct {
	X int `yaml:"x" json:"x"`
	Y int `yaml:"y" json:"y"`
}

// NewRegion creates a new region
func NewRegion(left, top, width, height int) Region {
	return Region{Left: left, Top: top, Width: width, Height: height}
}

// Rect converts the region to an image.Rectangle
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.Left, r.Top, r.Left+r.Width, r.Top+r.Height)
}

// Contains checks if a point is within the region
func (r Region) Contains(p Point) bool {
	return p.X >= r.Left && p.X < r.Left+r.Width && p.Y >= r.Top && p.Y < r.Top+r.Height
}

// Empty reports whether the region has no area
func (r Region) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Bounded clamps the region to the given outer bounds. The result always has
// at least one pixel of area so a capture of it cannot degenerate to zero size.
func (r Region) Bounded(outer Region) Region {
	left := max(outer.Left, r.Left)
	top := max(outer.Top, r.Top)
	right := min(outer.Left+outer.Width, r.Left+r.Width)
	bottom := min(outer.Top+outer.Height, r.Top+r.Height)
	return Region{
		Left:   left,
		Top:    top,
		Width:  max(1, right-left),
		Height: max(1, bottom-top),
	}
}
