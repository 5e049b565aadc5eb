// Package autoload drives the host page's "load more" control until the
// page stops producing more tiles. It only grows the document; extraction
// runs separately once the loop reports completion.
package autoload

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("offerscope.services.autoload")

// Page is the mutable document being grown. Implementations wrap a real
// browser session or a test fixture.
type Page interface {
	// FindLoadControl reports the load-more control, or nil when the
	// page has no more to give.
	FindLoadControl(ctx context.Context) (Control, error)
	// ScrollToBottom nudges lazy rendering along before each activation.
	ScrollToBottom(ctx context.Context) error
}

// Control is an activatable on-page element.
type Control interface {
	Activate(ctx context.Context) error
}

// StatusFunc receives human-readable progress lines.
type StatusFunc func(status string)

type Options struct {
	// DiscoveryAttempts bounds the initial search for the control.
	DiscoveryAttempts int
	DiscoveryInterval time.Duration
	// ScrollSettle is the wait between scrolling and activating.
	ScrollSettle time.Duration
	// LoadSettle is the wait after activating, letting tiles render.
	LoadSettle time.Duration
	// MaxActivations is a hard stop against pages that never run out.
	MaxActivations int
}

func DefaultOptions() Options {
	return Options{
		DiscoveryAttempts: 10,
		DiscoveryInterval: 250 * time.Millisecond,
		ScrollSettle:      300 * time.Millisecond,
		LoadSettle:        600 * time.Millisecond,
		MaxActivations:    100,
	}
}

// Run grows the page until the load control disappears, the activation
// cap is hit, or ctx is cancelled. A page that never shows the control
// at all is not an error: there was simply nothing to load.
func Run(ctx context.Context, page Page, status StatusFunc, opts Options) error {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()

	if status == nil {
		status = func(string) {}
	}

	control, err := discover(ctx, page, status, opts)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if control == nil {
		status("no load-more control found, page may already be complete")
		return nil
	}

	activations := 0
	for control != nil && activations < opts.MaxActivations {
		if err := page.ScrollToBottom(ctx); err != nil {
			span.RecordError(err)
			return err
		}
		if err := sleep(ctx, opts.ScrollSettle); err != nil {
			return err
		}

		if err := control.Activate(ctx); err != nil {
			span.RecordError(err)
			return err
		}
		activations++
		status(fmt.Sprintf("loaded more offers (%d)", activations))

		if err := sleep(ctx, opts.LoadSettle); err != nil {
			return err
		}
		control, err = page.FindLoadControl(ctx)
		if err != nil {
			span.RecordError(err)
			return err
		}
	}

	span.SetAttributes(attribute.Int("activations", activations))
	if activations >= opts.MaxActivations {
		slog.WarnContext(ctx, "stopped auto-loading at activation cap", "cap", opts.MaxActivations)
	}
	status("done loading offers")
	return nil
}

func discover(ctx context.Context, page Page, status StatusFunc, opts Options) (Control, error) {
	for attempt := 1; ; attempt++ {
		control, err := page.FindLoadControl(ctx)
		if err != nil {
			return nil, err
		}
		if control != nil {
			return control, nil
		}
		if attempt >= opts.DiscoveryAttempts {
			return nil, nil
		}
		status(fmt.Sprintf("waiting for page to settle (%d/%d)", attempt, opts.DiscoveryAttempts))
		if err := sleep(ctx, opts.DiscoveryInterval); err != nil {
			return nil, err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
