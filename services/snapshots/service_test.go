package snapshots

import (
	"context"
	"testing"

	"offerscope-backend/lib/testutil"
	"offerscope-backend/services/offers"

	"github.com/stretchr/testify/require"
)

func setup(t testing.TB) (Service, func()) {
	res, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name: "services/snapshots",
	})
	return NewService(res.Store), cleanup
}

func TestReconcileRoundTrip(t *testing.T) {
	svc, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	previous, first, deltas, err := svc.Reconcile(ctx, []offers.Offer{acmeOffer(5)}, t0)
	require.NoError(t, err)
	require.Equal(t, 0, previous.Len())
	require.Equal(t, 1, first.Len())
	require.False(t, deltas[acmeOffer(5).Key()].Increased)

	// a later run with a raised amount sees the persisted baseline
	previous, second, deltas, err := svc.Reconcile(ctx, []offers.Offer{acmeOffer(9)}, t1)
	require.NoError(t, err)
	require.Equal(t, 1, second.Len())

	// the returned previous is the same state the deltas were taken against
	base, ok := previous.Get(acmeOffer(5).Key())
	require.True(t, ok)
	require.Equal(t, 5.0, base.Amount)

	d := deltas[acmeOffer(9).Key()]
	require.True(t, d.Increased)
	require.Equal(t, 4.0, d.Amount)

	loaded, err := svc.Load(ctx)
	require.NoError(t, err)
	r, ok := loaded.Get(acmeOffer(9).Key())
	require.True(t, ok)
	require.Equal(t, 9.0, r.Amount)
}

func TestLoadMissingIsEmpty(t *testing.T) {
	svc, cleanup := setup(t)
	defer cleanup()

	snapshot, err := svc.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, snapshot.Len())
}

func TestLoadCorruptIsEmpty(t *testing.T) {
	res, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name: "services/snapshots",
	})
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, res.Store.Set(ctx, SnapshotKey, "{not json"))

	snapshot, err := NewService(res.Store).Load(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, snapshot.Len())
}
