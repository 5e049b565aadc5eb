package offers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGroup(t *testing.T) {
	all := []Offer{
		{Type: TypePercent, Merchant: "Acme", Amount: 3},
		{Type: TypeFlat, Merchant: "Star Cafe", Amount: 5000},
		{Type: TypePercent, Merchant: "Blue Bikes", Amount: 10},
		{Type: TypeMultiplier, Merchant: "Hotelio", Amount: 5},
		{Type: TypePercent, Merchant: "Corner Deli", Amount: 10},
	}

	g := Group(all)
	require.Len(t, g.Percent, 3)
	require.Len(t, g.Multiplier, 1)
	require.Len(t, g.Flat, 1)

	// descending by amount, ties keep input order
	require.Equal(t, "Blue Bikes", g.Percent[0].Merchant)
	require.Equal(t, "Corner Deli", g.Percent[1].Merchant)
	require.Equal(t, "Acme", g.Percent[2].Merchant)
}

func TestFilter(t *testing.T) {
	all := []Offer{
		{Type: TypePercent, Merchant: "Acme", Label: "5% back"},
		{Type: TypePercent, Merchant: "Star Cafe", Label: "3% back"},
		{Type: TypeMultiplier, Merchant: "Hotelio", Label: "5X miles"},
	}
	starred := map[string]bool{"Star Cafe": true}
	increased := map[string]bool{all[2].Key(): true}

	out := Filter(all, FilterOptions{Search: "cafe"}, starred, increased)
	require.Len(t, out, 1)
	require.Equal(t, "Star Cafe", out[0].Merchant)

	out = Filter(all, FilterOptions{StarredOnly: true}, starred, increased)
	require.Len(t, out, 1)
	require.Equal(t, "Star Cafe", out[0].Merchant)

	out = Filter(all, FilterOptions{IncreasedOnly: true}, starred, increased)
	require.Len(t, out, 1)
	require.Equal(t, "Hotelio", out[0].Merchant)

	out = Filter(all, FilterOptions{}, starred, increased)
	require.Len(t, out, 3)
}

func TestResolveMerchantNameCascade(t *testing.T) {
	// logo URL beats everything else
	tile := parseFragment(t, `<div>
		<img src="/api/v1/logos?domain=blue-bikes.com" alt="Something Else">
		<h3>Wrong Name</h3>
	</div>`)
	require.Equal(t, "Blue Bikes", ResolveMerchantName(tile, ""))

	// image alt when there is no logo URL
	tile = parseFragment(t, `<div><img src="/art/hero.png" alt="Corner Deli"></div>`)
	require.Equal(t, "Corner Deli", ResolveMerchantName(tile, ""))

	// alt text that just says "logo" is skipped in favor of the heading
	tile = parseFragment(t, `<div>
		<img src="/art/hero.png" alt="merchant logo">
		<h3>Hotelio</h3>
	</div>`)
	require.Equal(t, "Hotelio", ResolveMerchantName(tile, ""))

	// leading word of the offer text as the last real guess
	tile = parseFragment(t, `<div></div>`)
	require.Equal(t, "Acme", ResolveMerchantName(tile, "Acme Online 5% cash back"))

	// nothing at all
	require.Equal(t, "Unknown", ResolveMerchantName(tile, "Get 5% cash back"))
}
