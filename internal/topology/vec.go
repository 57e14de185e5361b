package topology

// Vec3 is a point in the placement cube.
type Vec3 [3]float64

func (v Vec3) DistSq(o Vec3) float64 {
	dx, dy, dz := v[0]-o[0], v[1]-o[1], v[2]-o[2]
	return dx*dx + dy*dy + dz*dz
}

// Uniform is the subset of *rand.Rand needed for placement.
type Uniform interface {
	Float64() float64
}

// RandomPositions places n points uniformly in a cube of side box centred on
// the origin.
func RandomPositions(n int, box float64, r Uniform) []Vec3 {
	pos := make([]Vec3, n)
	for i := range pos {
		for d := 0; d < 3; d++ {
			pos[i][d] = (r.Float64() - 0.5) * box
		}
	}
	return pos
}
