// Package shorts implements the heuristic used to keep short-form and
// vertical videos out of the queue.
package shorts

import "strings"

// DefaultMarker is the title token that flags a short.
const DefaultMarker = "#shorts"

// Detector decides whether a video is a short.
type Detector struct {
	Marker string
	// Disabled turns the heuristic off so every video is accepted.
	Disabled bool
}

// New returns a detector using the default marker.
func New() *Detector {
	return &Detector{Marker: DefaultMarker}
}

// Title reports whether title carries the shorts marker, ignoring case.
func (d *Detector) Title(title string) bool {
	if d.Disabled || title == "" {
		return false
	}
	marker := d.Marker
	if marker == "" {
		marker = DefaultMarker
	}
	return strings.Contains(strings.ToLower(title), strings.ToLower(marker))
}

// Aspect reports whether a thumbnail of the given size is vertical.
// Unknown sizes are never vertical.
func (d *Detector) Aspect(width, height int) bool {
	if d.Disabled || width <= 0 || height <= 0 {
		return false
	}
	return height >= width
}

// IsShort combines the title and thumbnail checks.
func (d *Detector) IsShort(title string, width, height int) bool {
	return d.Title(title) || d.Aspect(width, height)
}
