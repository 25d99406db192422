package reco

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestSignatureKinds_Sorted(t *testing.T) {
	assert.Equal(t, []string{"charged-sigma", "custom", "kshort-pionic", "lambda-protonic"}, SignatureKinds())
}

func TestNewSignature_UnknownKindPanics(t *testing.T) {
	assert.Panics(t, func() { NewSignature("xi-cascade") })
}

func TestSignature_ConfigureThenTryMatch(t *testing.T) {
	// GIVEN a lambda signature that only accepts positively charged daughters
	sig := NewSignature("lambda-protonic")
	err := sig.Configure(SignatureConfig{
		Name:   "lambda-positive",
		Filter: FilterConfig{Policy: "kinematic", ChargeSign: intPtr(1)},
	}, DefaultSpecies())
	require.NoError(t, err)
	assert.Equal(t, "lambda-positive", sig.Name())

	idx := mustIndex(
		primary(1, 3122, r3.Vec{X: 1}),
		decayProduct(2, 2212, 1, 1, 1),
		decayProduct(3, -211, 1, 1, 1),
	)

	// WHEN matched
	m := sig.TryMatch(idx, MatchEnv{})

	// THEN the negative pion fails the filter
	assert.False(t, m.Found)
	assert.Equal(t, "lambda-positive", m.Signature)
}

func TestSignature_Configure_KindMismatch(t *testing.T) {
	sig := NewSignature("charged-sigma")
	err := sig.Configure(SignatureConfig{Kind: "lambda-protonic"}, DefaultSpecies())
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestSignature_Configure_EmptyKindTakesOwnKind(t *testing.T) {
	// GIVEN a kshort signature configured without repeating its kind
	sig := NewSignature("kshort-pionic")

	// WHEN only a name is supplied
	err := sig.Configure(SignatureConfig{Name: "ks"}, DefaultSpecies())

	// THEN it keeps the kshort preset
	require.NoError(t, err)
	assert.Equal(t, "ks", sig.Name())
	ts, ok := sig.(interface{ Template() Template })
	require.True(t, ok)
	assert.Equal(t, 311, ts.Template().Species)
}

func TestBuildSignatures_RejectsEmptyKind(t *testing.T) {
	_, err := BuildSignatures(&Config{Signatures: []SignatureConfig{{Name: "x"}}}, DefaultSpecies())
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestBuildSignatures_PreservesOrder(t *testing.T) {
	cfg := &Config{Signatures: []SignatureConfig{
		{Kind: "lambda-protonic"},
		{Name: "sigma", Kind: "charged-sigma"},
	}}
	sigs, err := BuildSignatures(cfg, DefaultSpecies())
	require.NoError(t, err)
	require.Len(t, sigs, 2)
	assert.Equal(t, "lambda-protonic", sigs[0].Name())
	assert.Equal(t, "sigma", sigs[1].Name())
}

func TestPresetTemplates_AreValid(t *testing.T) {
	for _, kind := range SignatureKinds() {
		if kind == "custom" {
			continue
		}
		tmpl, ok := PresetTemplate(kind)
		require.True(t, ok, kind)
		assert.NoError(t, tmpl.Validate(), kind)
		assert.Equal(t, DefaultDecayLengthCutoff, tmpl.DecayLengthCutoff, kind)
	}
}
