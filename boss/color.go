package boss

// HasColor reports whether edge i belongs to color c (spec §3's
// color bitmap: "bit i·C + c is set iff edge i belongs to color c").
// It panics if the graph was built without a color bitmap; callers
// check NumColors() > 0 first.
func (g *Graph) HasColor(i uint64, c int) bool {
	if g.colors == nil {
		panic("boss: HasColor called on a graph with no color bitmap")
	}
	return g.colors.Get(i*uint64(g.numColors) + uint64(c))
}

// Colors returns the sorted list of color indices edge i belongs to.
func (g *Graph) Colors(i uint64) []int {
	if g.colors == nil {
		return nil
	}
	var out []int
	for c := 0; c < g.numColors; c++ {
		if g.HasColor(i, c) {
			out = append(out, c)
		}
	}
	return out
}
