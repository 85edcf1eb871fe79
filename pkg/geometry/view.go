package geometry

// Snapshot is a frame-consistent copy of the shared view state.
type Snapshot struct {
	Position  Vec3
	Normal    Vec3
	ViewportW float64
	ViewportH float64
	Surfaces  []Surface
	Depth     *Depth
	Tracking  bool
}

// View is what a visualization module sees for one surface. It is a
// value; modules may keep it but changes never flow back.
type View struct {
	// Surface is the index of the surface this view belongs to.
	Surface int
	// Position is in surface pixels; x is the remapped local coordinate.
	Position Vec3
	// Normal is the normalized position with x remapped into the surface window.
	Normal Vec3
	// VW and VH are 1% of the surface width and height.
	VW, VH float64
	// Width and Height are the surface size in pixels.
	Width, Height float64
	// Surfaces is the full layout, for modules that span segments.
	Surfaces []Surface
	// Depth is the latest depth frame, nil with pointer input.
	Depth *Depth
	// Tracking reports whether the external signal currently sees a viewer.
	Tracking bool
}

// Project builds the exposed view for surface i. The error is a
// ConfigurationError when the offset leaves surface i without a window;
// the view is still usable with a local x of 0.
func Project(s Snapshot, i int, offset float64) (View, error) {
	var surf Surface
	if i >= 0 && i < len(s.Surfaces) {
		surf = s.Surfaces[i]
	} else {
		surf = Surface{Width: s.ViewportW, Height: s.ViewportH, CenterX: s.ViewportW / 2, CenterY: s.ViewportH / 2}
	}

	localX, err := Remap(s.Normal.X, i, offset)

	surfaces := make([]Surface, len(s.Surfaces))
	copy(surfaces, s.Surfaces)

	v := View{
		Surface:  i,
		Normal:   Vec3{X: localX, Y: s.Normal.Y, Z: s.Normal.Z},
		Position: Vec3{X: localX * surf.Width, Y: s.Normal.Y * surf.Height, Z: s.Normal.Z},
		VW:       surf.Width * 0.01,
		VH:       surf.Height * 0.01,
		Width:    surf.Width,
		Height:   surf.Height,
		Surfaces: surfaces,
		Depth:    s.Depth,
		Tracking: s.Tracking,
	}
	return v, err
}

// ProjectAll builds one view per surface from the same snapshot. Only the
// first configuration error is returned.
func ProjectAll(s Snapshot, offset float64) ([]View, error) {
	n := len(s.Surfaces)
	if n == 0 {
		n = 1
	}
	views := make([]View, n)
	var first error
	for i := range views {
		v, err := Project(s, i, offset)
		if err != nil && first == nil {
			first = err
		}
		views[i] = v
	}
	return views, first
}
