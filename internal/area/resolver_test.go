package area

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolver_Resolve(t *testing.T) {
	resolver := NewDefaultResolver()

	tests := []struct {
		name     string
		address  string
		expected string
		found    bool
	}{
		{
			name:     "full area name in address",
			address:  "Marina Heights Tower, Dubai Marina, Dubai",
			expected: "Dubai Marina",
			found:    true,
		},
		{
			name:     "case insensitive match",
			address:  "apartment in DOWNTOWN DUBAI near the mall",
			expected: "Downtown Dubai",
			found:    true,
		},
		{
			name:     "abbreviation fallback",
			address:  "Diamond Views 4, JVC, Dubai",
			expected: "Jumeirah Village Circle",
			found:    true,
		},
		{
			name:     "jlt abbreviation",
			address:  "Cluster D, JLT",
			expected: "Jumeirah Lake Towers",
			found:    true,
		},
		{
			name:    "no match",
			address: "Some Building, Unknown District",
			found:   false,
		},
		{
			name:    "empty address",
			address: "",
			found:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := resolver.Resolve(tt.address)
			require.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}

func TestResolver_Resolve_EnumerationOrderTieBreak(t *testing.T) {
	resolver := NewResolver(
		[]string{"Jumeirah Village Circle", "Jumeirah"},
		nil,
	)

	// Both names are contained in the text; the earlier entry wins.
	got, ok := resolver.Resolve("Villa in Jumeirah Village Circle")
	require.True(t, ok)
	assert.Equal(t, "Jumeirah Village Circle", got)
}

func TestResolver_Resolve_FullNameBeatsAbbreviation(t *testing.T) {
	resolver := NewDefaultResolver()

	// The address contains both the full name and an abbreviation token; the
	// full-name pass runs first.
	got, ok := resolver.Resolve("Dubai Marina, near JLT metro")
	require.True(t, ok)
	assert.Equal(t, "Dubai Marina", got)
}

func TestCanonicalAreas_StableOrder(t *testing.T) {
	// The enumeration order is a documented tie-break, so the head of the
	// list must stay put.
	require.NotEmpty(t, CanonicalAreas)
	assert.Equal(t, "Jumeirah Village Circle", CanonicalAreas[0])
}
