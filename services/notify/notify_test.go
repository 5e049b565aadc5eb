package notify

import (
	"context"
	"testing"

	"offerscope-backend/services/offers"
	"offerscope-backend/services/snapshots"

	"github.com/stretchr/testify/require"
)

func TestCollectIncreases(t *testing.T) {
	acme := offers.Offer{Type: offers.TypePercent, Merchant: "Acme", Amount: 8, Label: "8% back"}
	cafe := offers.Offer{Type: offers.TypeMultiplier, Merchant: "Star Cafe", Amount: 2, Label: "2X miles"}

	deltas := map[string]snapshots.Delta{
		acme.Key(): {Increased: true, Amount: 3},
		cafe.Key(): {},
	}

	out := CollectIncreases([]offers.Offer{acme, cafe}, deltas)
	require.Len(t, out, 1)
	require.Equal(t, "Acme", out[0].Offer.Merchant)
	require.Equal(t, 3.0, out[0].Delta.Amount)
}

func TestDigestBody(t *testing.T) {
	baseline := snapshots.Record{Amount: 5}
	body := digestBody([]Increase{
		{
			Offer: offers.Offer{
				Merchant: "Acme",
				Label:    "8% back",
				Amount:   8,
				Link:     "https://offers.example.com/r/acme",
			},
			Delta: snapshots.Delta{Baseline: &baseline, Amount: 3, Increased: true},
		},
	})
	require.Contains(t, body, "Acme: 8% back (was 5, now 8)")
	require.Contains(t, body, "https://offers.example.com/r/acme")
}

func TestSendDigestNothingToSend(t *testing.T) {
	svc := NewService(Options{Recipients: []string{"user@example.com"}})
	require.NoError(t, svc.SendDigest(context.Background(), nil))

	svc = NewService(Options{})
	require.NoError(t, svc.SendDigest(context.Background(), []Increase{{}}))
}
