package snapshots

import (
	"testing"

	"offerscope-backend/services/offers"

	"github.com/stretchr/testify/require"
)

func TestSuggestRenames(t *testing.T) {
	previous := NewSnapshot([]Record{
		{Key: "Blue Bikes|10% back|", Merchant: "Blue Bikes", Type: offers.TypePercent, Amount: 10},
		{Key: "Acme|5% back|", Merchant: "Acme", Type: offers.TypePercent, Amount: 5},
	})
	next := NewSnapshot([]Record{
		{Key: "Blue Bikes|10% back|", Merchant: "Blue Bikes", Type: offers.TypePercent, Amount: 0},
		{Key: "Acme|5% back|", Merchant: "Acme", Type: offers.TypePercent, Amount: 5},
		{Key: "Blue Bikes Co|10% back|", Merchant: "Blue Bikes Co", Type: offers.TypePercent, Amount: 10},
	})

	renames := SuggestRenames(previous, next)
	require.Len(t, renames, 1)
	require.Equal(t, "Blue Bikes", renames[0].From)
	require.Equal(t, "Blue Bikes Co", renames[0].To)
	require.GreaterOrEqual(t, renames[0].Similarity, minRenameSimilarity)
}

func TestSuggestRenamesNoWeakPairs(t *testing.T) {
	previous := NewSnapshot([]Record{
		{Key: "Acme|5% back|", Merchant: "Acme", Type: offers.TypePercent, Amount: 5},
	})
	next := NewSnapshot([]Record{
		{Key: "Acme|5% back|", Merchant: "Acme", Type: offers.TypePercent, Amount: 0},
		{Key: "Hotelio|5X miles|", Merchant: "Hotelio", Type: offers.TypeMultiplier, Amount: 5},
	})

	require.Empty(t, SuggestRenames(previous, next))
}
