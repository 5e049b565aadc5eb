package offers

import (
	"strings"
	"testing"

	"offerscope-backend/lib/domtree"

	"github.com/stretchr/testify/require"
)

func parseFragment(t testing.TB, src string) domtree.Node {
	t.Helper()
	root, err := domtree.Parse(strings.NewReader(src))
	require.NoError(t, err)
	return root
}

func TestParseMagnitudePercent(t *testing.T) {
	for _, tt := range []struct {
		text  string
		value float64
		label string
	}{
		{"5% cash back", 5, "5% back"},
		{"Up to 12.5% cash back online", 12.5, "12.5% back"},
		{"Get 3% back at Acme", 3, "3% back"},
		// 100 sits on the inclusive end of the plausible range
		{"100% cash back", 100, "100% back"},
	} {
		m := ParseMagnitude(tt.text, nil)
		require.NotNil(t, m, tt.text)
		require.Equal(t, TypePercent, m.Type, tt.text)
		require.Equal(t, tt.value, m.Value, tt.text)
		require.Equal(t, tt.label, m.Label, tt.text)
	}
}

func TestParseMagnitudePriority(t *testing.T) {
	// percent beats multiplier beats flat when several appear together
	m := ParseMagnitude("5% cash back or 2X miles", nil)
	require.NotNil(t, m)
	require.Equal(t, TypePercent, m.Type)
	require.Equal(t, 5.0, m.Value)

	m = ParseMagnitude("2X miles plus 1,000 miles signup bonus", nil)
	require.NotNil(t, m)
	require.Equal(t, TypeMultiplier, m.Type)
	require.Equal(t, 2.0, m.Value)
}

func TestParseMagnitudeMultiplier(t *testing.T) {
	m := ParseMagnitude("Earn 5X miles", nil)
	require.NotNil(t, m)
	require.Equal(t, TypeMultiplier, m.Type)
	require.Equal(t, 5.0, m.Value)
	require.Equal(t, "5X miles", m.Label)

	// concatenated rendering is repaired by boundary spacing
	m = ParseMagnitude("5Xmiles", nil)
	require.NotNil(t, m)
	require.Equal(t, TypeMultiplier, m.Type)
	require.Equal(t, 5.0, m.Value)
}

func TestParseMagnitudeMultiplierRawMaxFallback(t *testing.T) {
	// out of the usual range entirely, so the raw maximum is kept
	m := ParseMagnitude("50X miles", nil)
	require.NotNil(t, m)
	require.Equal(t, TypeMultiplier, m.Type)
	require.Equal(t, 50.0, m.Value)
	require.Equal(t, "50X miles", m.Label)
}

func TestParseMagnitudePercentOutOfRange(t *testing.T) {
	// an implausible percentage never produces a percent offer
	m := ParseMagnitude("150% cash back", nil)
	require.Nil(t, m)
}

func TestParseMagnitudeFlat(t *testing.T) {
	m := ParseMagnitude("Earn 10,000 miles", nil)
	require.NotNil(t, m)
	require.Equal(t, TypeFlat, m.Type)
	require.Equal(t, 10000.0, m.Value)
	require.Equal(t, "10,000 miles", m.Label)

	m = ParseMagnitude("$50 back on your first order", nil)
	require.NotNil(t, m)
	require.Equal(t, TypeFlat, m.Type)
	require.Equal(t, 50.0, m.Value)
	require.Equal(t, "$50 back", m.Label)

	// dollars and miles compete on raw value
	m = ParseMagnitude("$20 back or 5,000 miles", nil)
	require.NotNil(t, m)
	require.Equal(t, 5000.0, m.Value)
	require.Equal(t, "5,000 miles", m.Label)
}

func TestParseMagnitudeNoOffer(t *testing.T) {
	require.Nil(t, ParseMagnitude("Browse all offers", nil))
	require.Nil(t, ParseMagnitude("", nil))
}

func TestParseMagnitudeSplitMarkup(t *testing.T) {
	// the value and unit live in separate text nodes
	root := parseFragment(t, `<div><span>5</span><b>%</b> cash back</div>`)
	m := ParseMagnitude("5% cash back", root)
	require.NotNil(t, m)
	require.Equal(t, TypePercent, m.Type)
	require.Equal(t, 5.0, m.Value)

	root = parseFragment(t, `<div><span>2</span><span>X</span><span>miles</span></div>`)
	m = ParseMagnitude("2 X miles", root)
	require.NotNil(t, m)
	require.Equal(t, TypeMultiplier, m.Type)
	require.Equal(t, 2.0, m.Value)
}

func TestGroupThousands(t *testing.T) {
	require.Equal(t, "950", groupThousands(950))
	require.Equal(t, "1,000", groupThousands(1000))
	require.Equal(t, "1,234,567", groupThousands(1234567))
}
