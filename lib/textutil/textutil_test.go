package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeWhitespace(t *testing.T) {
	require.Equal(t, "5% Cash Back", NormalizeWhitespace("  5%   Cash\n\tBack "))
	require.Equal(t, "", NormalizeWhitespace(" \n\t "))
}

func TestTitleCase(t *testing.T) {
	require.Equal(t, "Home Depot", TitleCase("home_depot"))
	require.Equal(t, "Best Buy", TitleCase("BEST BUY"))
	require.Equal(t, "", TitleCase(""))

	// must be idempotent
	for _, s := range []string{"home_depot", "acme", "Öffnungs zeit", "a b_c"} {
		once := TitleCase(s)
		require.Equal(t, once, TitleCase(once))
	}
}

func TestIsBadName(t *testing.T) {
	require.True(t, IsBadName(""))
	require.True(t, IsBadName("x"))
	// a lone rune is too short even when it spans several bytes
	require.True(t, IsBadName("É"))
	require.False(t, IsBadName("Éz"))
	require.True(t, IsBadName("Search Offers"))
	require.True(t, IsBadName("Exclusive Coupon"))
	require.False(t, IsBadName("Acme"))
}

func TestCleanNoise(t *testing.T) {
	require.Equal(t, "Acme", CleanNoise("Acme for you"))
	require.Equal(t, "Acme Deals", CleanNoise("Acme exclusive coupon Deals"))
	require.Equal(t, "Acme", CleanNoise("Acme"))
}
