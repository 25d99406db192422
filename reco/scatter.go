package reco

import "strings"

// maxScatterDepth bounds the re-scatter walk on malformed ancestry.
const maxScatterDepth = 256

// ScatterSummary counts the re-scatters a particle undergoes before it ends.
type ScatterSummary struct {
	Elastic   int
	Inelastic int
	// Last is the final particle of the same-species re-scatter chain; the
	// particle itself when it never re-scattered.
	Last *Particle
	// EndState is the end process of Last.
	EndState string
}

// ScanScatters follows the same-species re-scatter descendants of p. A
// daughter created by hadElastic counts as elastic, one created by any
// "*Inelastic" process counts as inelastic; the walk continues from it.
func ScanScatters(idx *AncestryIndex, p *Particle) ScatterSummary {
	var s ScatterSummary
	cur := p
	visited := map[int]bool{p.TrackID: true}
	for depth := 0; depth < maxScatterDepth; depth++ {
		var next *Particle
		for _, d := range idx.DaughtersOf(cur) {
			if d.PDG != cur.PDG || visited[d.TrackID] {
				continue
			}
			if d.Process == ProcessHadElastic {
				s.Elastic++
				next = d
				break
			}
			if strings.HasSuffix(d.Process, "Inelastic") {
				s.Inelastic++
				next = d
				break
			}
		}
		if next == nil {
			break
		}
		visited[next.TrackID] = true
		cur = next
	}
	s.Last = cur
	s.EndState = cur.EndProcess
	return s
}

// PresenceFlags reports, for each species code, whether the event holds a
// primary particle of that species (either charge state).
func PresenceFlags(idx *AncestryIndex, species []int) []bool {
	flags := make([]bool, len(species))
	for i := 0; i < idx.Len(); i++ {
		p := idx.At(i)
		if p.Process != ProcessPrimary {
			continue
		}
		for j, code := range species {
			if p.AbsPDG() == abs(code) {
				flags[j] = true
			}
		}
	}
	return flags
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
