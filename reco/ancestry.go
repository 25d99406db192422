package reco

// AncestryIndex maps track ids to the particles of one event and answers
// parent/daughter queries. It is read-only after construction; the particle
// pointers it hands out must not be mutated.
type AncestryIndex struct {
	particles []Particle
	byID      map[int]int   // track id -> position
	children  map[int][]int // parent track id -> positions, input order
}

// NewAncestryIndex builds the index in one pass over particles. The input
// slice is copied. Two particles sharing a track id yield a
// *DuplicateTrackError.
func NewAncestryIndex(particles []Particle) (*AncestryIndex, error) {
	idx := &AncestryIndex{
		particles: make([]Particle, len(particles)),
		byID:      make(map[int]int, len(particles)),
		children:  make(map[int][]int),
	}
	copy(idx.particles, particles)
	for i := range idx.particles {
		p := &idx.particles[i]
		if j, dup := idx.byID[p.TrackID]; dup {
			return nil, &DuplicateTrackError{TrackID: p.TrackID, First: j, Second: i}
		}
		idx.byID[p.TrackID] = i
		if p.ParentID != 0 {
			idx.children[p.ParentID] = append(idx.children[p.ParentID], i)
		}
	}
	return idx, nil
}

// Len returns the number of indexed particles.
func (idx *AncestryIndex) Len() int { return len(idx.particles) }

// At returns the i-th particle in insertion order.
func (idx *AncestryIndex) At(i int) *Particle { return &idx.particles[i] }

// Lookup returns the particle with the given track id.
func (idx *AncestryIndex) Lookup(trackID int) (*Particle, error) {
	i, ok := idx.byID[trackID]
	if !ok {
		return nil, &LookupError{TrackID: trackID}
	}
	return &idx.particles[i], nil
}

// DaughtersOf returns the particles whose ParentID equals p.TrackID, in input
// order. Unknown or nil particles have no daughters. ParentID 0 means "no
// parent", so primaries are never daughters of a particle with track id 0.
func (idx *AncestryIndex) DaughtersOf(p *Particle) []*Particle {
	if p == nil {
		return nil
	}
	if _, known := idx.byID[p.TrackID]; !known {
		return nil
	}
	pos := idx.children[p.TrackID]
	out := make([]*Particle, 0, len(pos))
	for _, i := range pos {
		if i == idx.byID[p.TrackID] {
			continue // self-parented record
		}
		out = append(out, &idx.particles[i])
	}
	return out
}

// Resolve returns the daughters of p: the declared DaughterIDs when the
// supplier provided them, otherwise DaughtersOf. A declared id missing from
// the event yields a *LookupError.
func (idx *AncestryIndex) Resolve(p *Particle) ([]*Particle, error) {
	if len(p.DaughterIDs) == 0 {
		return idx.DaughtersOf(p), nil
	}
	out := make([]*Particle, 0, len(p.DaughterIDs))
	for _, id := range p.DaughterIDs {
		i, ok := idx.byID[id]
		if !ok {
			return nil, &LookupError{TrackID: id, Referrer: p.TrackID}
		}
		out = append(out, &idx.particles[i])
	}
	return out, nil
}
