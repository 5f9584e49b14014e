package world

// Viewshed is the set of cells an agent can currently see.
type Viewshed struct {
	Visible []Position `json:"visible"`
	Range   int        `json:"range"`
	Dirty   bool       `json:"dirty"`
}

// NewViewshed returns a viewshed that will be computed on first refresh.
func NewViewshed(rng int) Viewshed {
	return Viewshed{Range: rng, Dirty: true}
}

// Recompute refreshes the visible set around origin if the viewshed is
// dirty. Visible cells are every generated cell within Range (by
// Distance); they are marked visible and revealed on idx. A clean
// viewshed is left as is and only re-marks its cells.
func (v *Viewshed) Recompute(idx *Index, origin Position) {
	if v.Dirty {
		v.Visible = v.Visible[:0]
		for x := origin.X - v.Range; x <= origin.X+v.Range; x++ {
			for y := origin.Y - v.Range; y <= origin.Y+v.Range; y++ {
				p := Position{X: x, Y: y}
				if Distance(origin, p) > v.Range {
					continue
				}
				if _, ok := idx.Lookup(p); !ok {
					continue
				}
				v.Visible = append(v.Visible, p)
			}
		}
		v.Dirty = false
	}
	idx.MarkVisible(v.Visible)
}
