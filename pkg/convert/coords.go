package convert

// =============================================================================
// Coordinate Transform
// =============================================================================
//
// The document coordinate system uses larger engineering units with the
// vertical axis increasing upward; the canvas uses pixel-like units with
// the vertical axis increasing downward. The transform scales both axes by
// a fixed factor and inverts the vertical axis against a precomputed
// offset derived from the tallest element.

const (
	// CoordScale converts document units to canvas units.
	CoordScale = 10.0
	// CoordPad is headroom added above the topmost element before the
	// vertical inversion, in document units.
	CoordPad = 5.0
)

// Space is one document↔canvas coordinate mapping. The offset depends on
// the extent of the document being converted, so a Space is built per call.
type Space struct {
	Scale   float64
	OffsetY float64
}

// NewSpace builds a Space for a document whose largest vertical coordinate
// is maxY (in document units).
func NewSpace(maxY float64) Space {
	return Space{
		Scale:   CoordScale,
		OffsetY: (maxY + CoordPad) * CoordScale,
	}
}

// ToCanvas maps a document coordinate to the canvas system.
func (s Space) ToCanvas(x, y float64) (float64, float64) {
	return x * s.Scale, s.OffsetY - y*s.Scale
}

// FromCanvas maps a canvas coordinate back to the document system.
// It is the exact inverse of ToCanvas for the same Space.
func (s Space) FromCanvas(x, y float64) (float64, float64) {
	return x / s.Scale, (s.OffsetY - y) / s.Scale
}
