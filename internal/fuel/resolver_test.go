package fuel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStations() []Station {
	return []Station{
		{Name: "Coles Express Wantirna South", Display: "Coles"},
		{Name: "7-Eleven Wantirna South", Address: "Cnr Burwood Hwy & Stud Rd", Display: "711 M3"},
		{Name: "7-Eleven Wantirna South", Address: "Westfield Knox, 425 Burwood Hwy", Display: "711 Westfield"},
		{Name: "BP Wantirna South", Display: "BP"},
	}
}

func TestResolvePairBeforeName(t *testing.T) {
	r := NewResolver(testStations())

	// Two physical sites share a name and are disambiguated by address.
	assert.Equal(t, "711 M3", r.Resolve("7-Eleven Wantirna South", "Cnr Burwood Hwy & Stud Rd"))
	assert.Equal(t, "711 Westfield", r.Resolve("7-Eleven Wantirna South", "Westfield Knox, 425 Burwood Hwy"))
}

func TestResolveNameOnly(t *testing.T) {
	r := NewResolver(testStations())

	// Name-only rules match regardless of address.
	assert.Equal(t, "Coles", r.Resolve("Coles Express Wantirna South", "anything"))
	assert.Equal(t, "BP", r.Resolve("BP Wantirna South", ""))
}

func TestResolveIdentityFallback(t *testing.T) {
	r := NewResolver(testStations())

	// Unmapped stations resolve to their raw name.
	assert.Equal(t, "United Wantirna", r.Resolve("United Wantirna", "1 Mountain Hwy"))

	// A mapped name with an unknown address falls through the pair rules to
	// the identity fallback, because no name-only rule exists for it.
	assert.Equal(t, "7-Eleven Wantirna South", r.Resolve("7-Eleven Wantirna South", "somewhere else"))
}

func TestResolveTotalAndStable(t *testing.T) {
	r := NewResolver(testStations())

	inputs := [][2]string{
		{"BP Wantirna South", "any"},
		{"Coles Express Wantirna South", ""},
		{"never seen", "never seen"},
	}
	for _, in := range inputs {
		first := r.Resolve(in[0], in[1])
		require.NotEmpty(t, first)
		require.Equal(t, first, r.Resolve(in[0], in[1]), "repeated resolve must be identical")
	}
}

func TestResolveExactEquality(t *testing.T) {
	r := NewResolver(testStations())

	// Whitespace differences are distinct keys; no fuzzy matching.
	assert.Equal(t, "711 M3", r.Resolve("7-Eleven Wantirna South", "Cnr Burwood Hwy & Stud Rd"))
	assert.NotEqual(t, "711 M3", r.Resolve("7-Eleven Wantirna South", "Cnr Burwood Hwy  & Stud Rd"))
}

func TestFilterAllows(t *testing.T) {
	f := NewFilter(testStations())

	assert.True(t, f.Allows("Coles Express Wantirna South", "any address"))
	assert.True(t, f.Allows("7-Eleven Wantirna South", "Cnr Burwood Hwy & Stud Rd"))
	assert.False(t, f.Allows("7-Eleven Wantirna South", "somewhere else"))
	assert.False(t, f.Allows("United Wantirna", ""))
}
