package hex

import "math/rand"

// Random draws a cell from the disk of the given radius around origin.
//
// q is drawn uniformly from [-radius, radius], then r uniformly from the
// column's bounds, so the origin-relative point always satisfies the cube
// constraint. The translated result is not checked against any board; callers
// must validate it against the real board radius.
//
// Random panics if radius is negative.
func Random(rng *rand.Rand, radius int, origin Coord) Coord {
	q := -radius + rng.Intn(2*radius+1)
	lo, hi := rowBounds(q, radius)
	r := lo + rng.Intn(hi-lo+1)
	return origin.Add(Coord{Q: q, R: r})
}
