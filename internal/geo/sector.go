package geo

// Sector is an angular cone described by a center angle and a
// half-width, both in radians. The center is an absolute angle in
// [0, 2π); the arc spans [center-halfWidth, center+halfWidth] and may
// wrap around the 0/2π boundary.
type Sector struct {
	Center    float64
	HalfWidth float64
}

// NewSector builds a sector around center, normalizing the center into
// [0, 2π).
func NewSector(center, halfWidth float64) Sector {
	return Sector{Center: NormalizeAbsoluteAngle(center), HalfWidth: halfWidth}
}

// left and right are the wrapped edges of the arc.
func (s Sector) left() float64 {
	return NormalizeAbsoluteAngle(s.Center - s.HalfWidth)
}

func (s Sector) right() float64 {
	return NormalizeAbsoluteAngle(s.Center + s.HalfWidth)
}

// ContainsAngle reports whether the absolute angle lies on the arc,
// taking wraparound into account.
func (s Sector) ContainsAngle(angle float64) bool {
	angle = NormalizeAbsoluteAngle(angle)
	left, right := s.left(), s.right()
	if left <= right {
		return angle >= left && angle <= right
	}
	// Arc wraps through 0.
	return angle >= left || angle <= right
}

// Overlaps reports whether the two sectors share any angle. The test
// is a four-way containment check, each sector's edges against the
// other's arc, which makes it commutative.
func (s Sector) Overlaps(t Sector) bool {
	return s.ContainsAngle(t.left()) ||
		s.ContainsAngle(t.right()) ||
		t.ContainsAngle(s.left()) ||
		t.ContainsAngle(s.right())
}
