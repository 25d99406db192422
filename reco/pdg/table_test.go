package pdg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signature-reco/signature-reco/reco"
)

func TestTable_Lookup_ChargesOfBundledDaughters(t *testing.T) {
	table := New()
	tests := []struct {
		code    int
		charged bool
	}{
		{211, true},
		{-211, true},
		{2212, true},
		{2112, false},
		{22, false},
	}
	for _, tt := range tests {
		s, ok := table.Lookup(tt.code)
		require.True(t, ok, "code %d", tt.code)
		assert.Equal(t, tt.charged, s.Charge != 0, "code %d", tt.code)
	}
}

func TestTable_Lookup_UnknownCode(t *testing.T) {
	_, ok := New().Lookup(999999999)
	assert.False(t, ok)
}

func TestRegister_SetsFactory(t *testing.T) {
	// GIVEN this package is linked in
	// WHEN the heppdt table is requested by name
	table, err := reco.NewSpeciesTable("heppdt")

	// THEN the registered factory serves it
	require.NoError(t, err)
	assert.IsType(t, &Table{}, table)
}
