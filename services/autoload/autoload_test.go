package autoload

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakePage struct {
	// remaining is how many activations until the control disappears
	remaining   int
	appearAfter int

	finds       int
	scrolls     int
	activations int
}

type fakeControl struct {
	page *fakePage
}

func (c fakeControl) Activate(ctx context.Context) error {
	c.page.activations++
	c.page.remaining--
	return nil
}

func (p *fakePage) FindLoadControl(ctx context.Context) (Control, error) {
	p.finds++
	if p.finds <= p.appearAfter {
		return nil, nil
	}
	if p.remaining <= 0 {
		return nil, nil
	}
	return fakeControl{page: p}, nil
}

func (p *fakePage) ScrollToBottom(ctx context.Context) error {
	p.scrolls++
	return nil
}

func fastOptions() Options {
	opts := DefaultOptions()
	opts.DiscoveryInterval = time.Millisecond
	opts.ScrollSettle = time.Millisecond
	opts.LoadSettle = time.Millisecond
	return opts
}

func TestRunActivatesUntilControlGone(t *testing.T) {
	page := &fakePage{remaining: 3}
	var statuses []string

	err := Run(context.Background(), page, func(s string) {
		statuses = append(statuses, s)
	}, fastOptions())
	require.NoError(t, err)
	require.Equal(t, 3, page.activations)
	require.Equal(t, 3, page.scrolls)
	require.NotEmpty(t, statuses)
	require.Equal(t, "done loading offers", statuses[len(statuses)-1])
}

func TestRunRetriesDiscovery(t *testing.T) {
	// the control only renders on the third poll
	page := &fakePage{remaining: 1, appearAfter: 2}

	err := Run(context.Background(), page, nil, fastOptions())
	require.NoError(t, err)
	require.Equal(t, 1, page.activations)
}

func TestRunNoControlIsNotAnError(t *testing.T) {
	page := &fakePage{remaining: 0}
	opts := fastOptions()
	opts.DiscoveryAttempts = 3

	err := Run(context.Background(), page, nil, opts)
	require.NoError(t, err)
	require.Zero(t, page.activations)
	require.Equal(t, 3, page.finds)
}

func TestRunHonorsActivationCap(t *testing.T) {
	page := &fakePage{remaining: 1000}
	opts := fastOptions()
	opts.MaxActivations = 5

	err := Run(context.Background(), page, nil, opts)
	require.NoError(t, err)
	require.Equal(t, 5, page.activations)
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	page := &fakePage{appearAfter: 100, remaining: 1}
	err := Run(ctx, page, nil, fastOptions())
	require.Error(t, err)
	require.True(t, errors.Is(err, context.Canceled))
}
