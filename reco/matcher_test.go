package reco

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signature-reco/signature-reco/reco/internal/testutil"
	"github.com/signature-reco/signature-reco/reco/trace"
)

func TestSearch_SigmaExample_MatchesInDiscoveryOrder(t *testing.T) {
	// GIVEN a primary Sigma- with a neutron and a pi- daughter
	idx := mustIndex(
		primary(1, 3112, r3.Vec{X: 3, Y: 4}),
		decayProduct(2, 2112, 1, 1, 0),
		decayProduct(3, -211, 1, 1, 1),
	)

	// WHEN the allow-all template is searched
	m := Search(idx, sigmaTemplate(), AllowAll{}, MatchEnv{})

	// THEN the match is the root followed by its daughters
	require.True(t, m.Found)
	assert.Equal(t, []int{1, 2, 3}, trackIDs(m.Matched()))
	assert.Equal(t, []int{1}, trackIDs(m.Chain))
	assert.Equal(t, r3.Vec{X: 3, Y: 4}, m.DecayVertex)
	testutil.AssertFloat64Equal(t, "decay length", 5, m.DecayLength, 1e-12)
	testutil.AssertFloat64Equal(t, "reference phi", math.Atan2(4, 3), m.RefPhi, 1e-12)
}

func TestSearch_ChargedDaughterObservables(t *testing.T) {
	idx := mustIndex(
		primary(1, 3112, r3.Vec{X: 3, Y: 4}),
		decayProduct(2, 2112, 1, 1, 0),
		decayProduct(3, -211, 1, 1, 1),
	)

	m := Search(idx, sigmaTemplate(), nil, MatchEnv{})

	require.True(t, m.Found)
	require.Len(t, m.Daughters, 2)
	neutron, pion := m.Daughters[0], m.Daughters[1]
	assert.False(t, neutron.Charged)
	assert.Equal(t, SentinelFloat, neutron.Phi)
	assert.Equal(t, SentinelFloat, neutron.ImpactParameter)

	// phi = pi/4, reference azimuth = atan2(4, 3); d0 = 5 sin(pi/4 - atan2(4, 3)) = -sqrt(2)/2
	assert.True(t, pion.Charged)
	testutil.AssertFloat64Equal(t, "pion phi", math.Pi/4, pion.Phi, 1e-12)
	testutil.AssertFloat64Equal(t, "pion d0", -math.Sqrt2/2, pion.ImpactParameter, 1e-9)
}

func TestSearch_DaughterMultiset_PermutationMatchesSubstitutionBreaks(t *testing.T) {
	daughters := []int{2112, -211}
	orders := [][]int{{2112, -211}, {-211, 2112}}
	for _, order := range orders {
		idx := mustIndex(
			primary(1, 3112, r3.Vec{X: 1}),
			decayProduct(2, order[0], 1, 1, 1),
			decayProduct(3, order[1], 1, 1, 1),
		)
		assert.True(t, Search(idx, sigmaTemplate(), nil, MatchEnv{}).Found, "order %v", order)
	}

	for slot := range daughters {
		codes := append([]int(nil), daughters...)
		codes[slot] = 2212
		idx := mustIndex(
			primary(1, 3112, r3.Vec{X: 1}),
			decayProduct(2, codes[0], 1, 1, 1),
			decayProduct(3, codes[1], 1, 1, 1),
		)
		m := Search(idx, sigmaTemplate(), nil, MatchEnv{})
		assert.False(t, m.Found, "substituted slot %d", slot)
	}
}

func TestSearch_ExtraDaughterBreaksMultiset(t *testing.T) {
	idx := mustIndex(
		primary(1, 3112, r3.Vec{X: 1}),
		decayProduct(2, 2112, 1, 1, 1),
		decayProduct(3, -211, 1, 1, 1),
		decayProduct(4, 22, 1, 1, 1),
	)
	assert.False(t, Search(idx, sigmaTemplate(), nil, MatchEnv{}).Found)
}

func TestSearch_DaughterProcessKeepsOnlyDecayProducts(t *testing.T) {
	// GIVEN a sigma whose pion also knocked out a proton recorded as its daughter
	scattered := decayProduct(4, 2212, 1, 1, 1)
	scattered.Process = "hadInelastic"
	particles := []Particle{
		primary(1, 3112, r3.Vec{X: 1}),
		decayProduct(2, 2112, 1, 1, 1),
		decayProduct(3, -211, 1, 1, 1),
		scattered,
	}

	// WHEN searched with and without the daughter process restriction
	plain := sigmaTemplate()
	restricted := sigmaTemplate()
	restricted.DaughterProcess = ProcessDecay

	// THEN only the restricted template ignores the non-decay daughter
	assert.False(t, Search(mustIndex(particles...), plain, nil, MatchEnv{}).Found)
	assert.True(t, Search(mustIndex(particles...), restricted, nil, MatchEnv{}).Found)
}

func TestSearch_DecayLengthBoundary(t *testing.T) {
	idx := mustIndex(
		primary(1, 3112, r3.Vec{X: 30, Y: 40}),
		decayProduct(2, 2112, 1, 1, 1),
		decayProduct(3, -211, 1, 1, 1),
	)
	tmpl := sigmaTemplate()

	// Exactly at the cutoff is accepted.
	tmpl.DecayLengthCutoff = 50
	m := Search(idx, tmpl, nil, MatchEnv{})
	require.True(t, m.Found)
	assert.Equal(t, 50.0, m.DecayLength)

	// The cutoff just below the decay length rejects.
	tmpl.DecayLengthCutoff = math.Nextafter(50, 0)
	assert.False(t, Search(idx, tmpl, nil, MatchEnv{}).Found)

	// Measured from the reference vertex, not the origin.
	tmpl.DecayLengthCutoff = 50
	assert.True(t, Search(idx, tmpl, nil, MatchEnv{Vertex: r3.Vec{X: 30}}).Found)
	assert.False(t, Search(idx, tmpl, nil, MatchEnv{Vertex: r3.Vec{X: -1}}).Found)
}

func TestSearch_MissingLookupSkipsCandidateAndContinues(t *testing.T) {
	// GIVEN a first candidate declaring a daughter absent from the event
	broken := primary(1, 3112, r3.Vec{X: 1})
	broken.DaughterIDs = []int{2, 77}
	tr := trace.NewSearchTrace(trace.TraceConfig{Level: trace.TraceLevelCandidates})

	idx := mustIndex(
		broken,
		decayProduct(2, 2112, 1, 1, 1),
		primary(10, 3112, r3.Vec{X: 2}),
		decayProduct(11, 2112, 10, 1, 1),
		decayProduct(12, -211, 10, 1, 1),
	)

	// WHEN searched
	m := Search(idx, sigmaTemplate(), nil, MatchEnv{Trace: tr})

	// THEN the later candidate matches and the broken one is traced as a lookup failure
	require.True(t, m.Found)
	assert.Equal(t, 10, m.Root.TrackID)
	require.Len(t, tr.Candidates, 2)
	assert.Equal(t, trace.OutcomeLookup, tr.Candidates[0].Outcome)
	assert.Equal(t, trace.OutcomeAccepted, tr.Candidates[1].Outcome)
}

func TestSearch_MissingLookupOnlyCandidate_NotFoundWithSentinels(t *testing.T) {
	broken := primary(1, 3112, r3.Vec{X: 1})
	broken.DaughterIDs = []int{77}
	m := Search(mustIndex(broken), sigmaTemplate(), nil, MatchEnv{})

	assert.False(t, m.Found)
	assert.Empty(t, m.Matched())
	assert.Equal(t, SentinelFloat, m.DecayLength)
	assert.Equal(t, SentinelFloat, m.RefPhi)
	assert.Equal(t, r3.Vec{X: SentinelFloat, Y: SentinelFloat, Z: SentinelFloat}, m.DecayVertex)
}

func TestSearch_FirstMatchInInsertionOrder(t *testing.T) {
	idx := mustIndex(
		primary(5, 3112, r3.Vec{X: 1}),
		primary(3, 3112, r3.Vec{X: 2}),
		decayProduct(6, 2112, 3, 1, 1),
		decayProduct(7, -211, 3, 1, 1),
		decayProduct(8, 2112, 5, 1, 1),
		decayProduct(9, -211, 5, 1, 1),
	)
	m := Search(idx, sigmaTemplate(), nil, MatchEnv{})
	require.True(t, m.Found)
	assert.Equal(t, 5, m.Root.TrackID)
}

func TestSearch_RootRequiresProcessTagsAndMatchesConjugate(t *testing.T) {
	tests := []struct {
		name  string
		root  Particle
		found bool
	}{
		{"primary decay", primary(1, 3112, r3.Vec{X: 1}), true},
		{"charge conjugate code", primary(1, -3112, r3.Vec{X: 1}), true},
		{"wrong creation process", Particle{TrackID: 1, PDG: 3112, Process: ProcessDecay, EndProcess: ProcessDecay}, false},
		{"wrong end process", Particle{TrackID: 1, PDG: 3112, Process: ProcessPrimary, EndProcess: "hadInelastic"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := mustIndex(tt.root, decayProduct(2, 2112, 1, 1, 1), decayProduct(3, -211, 1, 1, 1))
			assert.Equal(t, tt.found, Search(idx, sigmaTemplate(), nil, MatchEnv{}).Found)
		})
	}
}

type rejectTrack struct{ id int }

func (r rejectTrack) Accept(p *Particle) bool { return p.TrackID != r.id }

func TestSearch_FilterRejectsCandidate(t *testing.T) {
	tr := trace.NewSearchTrace(trace.TraceConfig{Level: trace.TraceLevelCandidates})
	idx := mustIndex(
		primary(1, 3112, r3.Vec{X: 1}),
		decayProduct(2, 2112, 1, 1, 1),
		decayProduct(3, -211, 1, 1, 1),
	)

	m := Search(idx, sigmaTemplate(), rejectTrack{id: 3}, MatchEnv{Trace: tr})

	assert.False(t, m.Found)
	require.Len(t, tr.Candidates, 1)
	assert.Equal(t, trace.OutcomeFilter, tr.Candidates[0].Outcome)
}

func kaonTemplate() *Template {
	return &Template{
		Name: "kshort",
		Level: Level{
			Species: 311, Process: ProcessPrimary, EndProcess: ProcessDecay,
			Intermediate: &Level{Species: 310, Process: ProcessDecay, EndProcess: ProcessDecay},
		},
		Daughters:         []int{211, -211},
		DecayLengthCutoff: DefaultDecayLengthCutoff,
	}
}

func kshort(id, parent int, end r3.Vec) Particle {
	return Particle{TrackID: id, PDG: 310, Process: ProcessDecay, EndProcess: ProcessDecay, ParentID: parent, End: end}
}

func TestSearch_IntermediateLevelBecomesWorkingRoot(t *testing.T) {
	// GIVEN K0 -> K_S0 -> pi+ pi-, with the K_S0 decaying further out
	idx := mustIndex(
		primary(1, 311, r3.Vec{}),
		kshort(2, 1, r3.Vec{X: 6, Y: 8}),
		decayProduct(3, 211, 2, 1, 1),
		decayProduct(4, -211, 2, 1, 1),
	)

	m := Search(idx, kaonTemplate(), nil, MatchEnv{})

	// THEN the chain holds both levels and the decay is the K_S0's
	require.True(t, m.Found)
	assert.Equal(t, []int{1, 2}, trackIDs(m.Chain))
	assert.Equal(t, 2, m.Root.TrackID)
	assert.Equal(t, []int{2, 3, 4}, trackIDs(m.Matched()))
	testutil.AssertFloat64Equal(t, "decay length", 10, m.DecayLength, 1e-12)
}

func TestSearch_IntermediateLevelRequiresExactlyOneMatch(t *testing.T) {
	tr := trace.NewSearchTrace(trace.TraceConfig{Level: trace.TraceLevelCandidates})
	idx := mustIndex(
		primary(1, 311, r3.Vec{}),
		kshort(2, 1, r3.Vec{X: 1}),
		kshort(3, 1, r3.Vec{X: 1}),
		decayProduct(4, 211, 2, 1, 1),
		decayProduct(5, -211, 2, 1, 1),
	)

	m := Search(idx, kaonTemplate(), nil, MatchEnv{Trace: tr})

	assert.False(t, m.Found)
	require.Len(t, tr.Candidates, 1)
	assert.Equal(t, trace.OutcomeChain, tr.Candidates[0].Outcome)
}

func TestSearch_ThreeLevelChain(t *testing.T) {
	// GIVEN a configured two-intermediate chain
	tmpl := &Template{
		Name: "deep",
		Level: Level{
			Species: 100, Process: ProcessPrimary, EndProcess: ProcessDecay,
			Intermediate: &Level{
				Species: 200, Process: ProcessDecay, EndProcess: ProcessDecay,
				Intermediate: &Level{Species: 300, Process: ProcessDecay, EndProcess: ProcessDecay},
			},
		},
		Daughters:         []int{22, 22},
		DecayLengthCutoff: 10,
	}
	require.NoError(t, tmpl.Validate())
	assert.Equal(t, 3, tmpl.Depth())

	idx := mustIndex(
		primary(1, 100, r3.Vec{}),
		Particle{TrackID: 2, PDG: 200, Process: ProcessDecay, EndProcess: ProcessDecay, ParentID: 1},
		Particle{TrackID: 3, PDG: -300, Process: ProcessDecay, EndProcess: ProcessDecay, ParentID: 2, End: r3.Vec{Z: 2}},
		decayProduct(4, 22, 3, 0, 0),
		decayProduct(5, 22, 3, 0, 0),
	)

	m := Search(idx, tmpl, nil, MatchEnv{})
	require.True(t, m.Found)
	assert.Equal(t, []int{1, 2, 3}, trackIDs(m.Chain))
	assert.Equal(t, 2.0, m.DecayLength)
}

func TestSearch_FeedsScatterSummaries(t *testing.T) {
	rescatter := Particle{TrackID: 4, PDG: -211, Process: ProcessHadElastic, ParentID: 3, EndProcess: "Stopped"}
	idx := mustIndex(
		primary(1, 3112, r3.Vec{X: 1}),
		decayProduct(2, 2112, 1, 1, 1),
		decayProduct(3, -211, 1, 1, 1),
		rescatter,
	)
	tmpl := sigmaTemplate()
	tmpl.DaughterProcess = ProcessDecay

	m := Search(idx, tmpl, nil, MatchEnv{})

	require.True(t, m.Found)
	assert.Equal(t, 1, m.Daughters[1].Scatters.Elastic)
	assert.Equal(t, "Stopped", m.Daughters[1].Scatters.EndState)
	assert.Equal(t, 0, m.Daughters[0].Scatters.Elastic)
}
