package starred

import (
	"context"
	"testing"

	"offerscope-backend/lib/testutil"

	"github.com/stretchr/testify/require"
)

func setup(t testing.TB) (Service, func()) {
	res, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name: "services/starred",
	})
	return NewService(res.Store), cleanup
}

func TestStarUnstar(t *testing.T) {
	svc, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, svc.Star(ctx, "Acme"))
	require.NoError(t, svc.Star(ctx, "Star Cafe"))
	require.NoError(t, svc.Star(ctx, "Acme"))

	names, err := svc.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"Acme", "Star Cafe"}, names)

	require.NoError(t, svc.Unstar(ctx, "Acme"))
	require.NoError(t, svc.Unstar(ctx, "Never Starred"))

	names, err = svc.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"Star Cafe"}, names)

	set, err := svc.Set(ctx)
	require.NoError(t, err)
	require.True(t, set["Star Cafe"])
	require.False(t, set["Acme"])
}

func TestCorruptStateIsEmpty(t *testing.T) {
	res, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name: "services/starred",
	})
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, res.Store.Set(ctx, StarredKey, "[truncated"))

	names, err := NewService(res.Store).List(ctx)
	require.NoError(t, err)
	require.Empty(t, names)
}
