package gps

import (
	"context"
	"fmt"
	"time"

	"github.com/rotafield/rotafield-api/geo"
)

const (
	// DefaultAcquireTimeout bounds how long a single fix request may take.
	DefaultAcquireTimeout = 20 * time.Second

	// DefaultWatchInterval is the minimum spacing between fixes a watcher
	// forwards.
	DefaultWatchInterval = 30 * time.Second
)

// The three externally distinguishable failure causes of a fix request.
// Anything else a provider returns is passed through as-is.
var (
	ErrPermissionDenied    = fmt.Errorf("location permission denied")
	ErrPositionUnavailable = fmt.Errorf("position unavailable")
	ErrTimeout             = fmt.Errorf("position request timed out")
)

// Fix is a single positioning result.
type Fix struct {
	Coordinate geo.Coordinate
	AccuracyM  float64
	Time       time.Time
}

// Provider acquires device positions. Implementations wrap whatever the
// client platform exposes; the engine only sees this interface.
type Provider interface {
	// CurrentPosition blocks until a fix arrives, the context ends, or the
	// provider fails.
	CurrentPosition(ctx context.Context) (*Fix, error)
}

// Acquire requests one fix with the default timeout. A context deadline hit
// is reported as ErrTimeout so callers need not inspect context errors.
func Acquire(ctx context.Context, p Provider) (*Fix, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultAcquireTimeout)
	defer cancel()

	fix, err := p.CurrentPosition(ctx)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrTimeout
		}
		return nil, err
	}

	return fix, nil
}

// Watcher polls a provider and forwards fixes no more often than its
// interval. Fixes arriving early are dropped, not queued.
type Watcher struct {
	provider Provider
	interval time.Duration

	// now is swappable for tests.
	now func() time.Time
}

func NewWatcher(p Provider) *Watcher {
	return &Watcher{
		provider: p,
		interval: DefaultWatchInterval,
		now:      time.Now,
	}
}

// Watch emits throttled fixes until ctx ends. Acquisition errors end the
// stream; callers restart the watch after reporting the failure.
func (w *Watcher) Watch(ctx context.Context) (<-chan Fix, <-chan error) {
	fixes := make(chan Fix)
	errs := make(chan error, 1)

	go func() {
		defer close(fixes)

		var lastForward time.Time

		for {
			fix, err := Acquire(ctx, w.provider)
			if err != nil {
				if ctx.Err() == nil {
					errs <- err
				}
				return
			}

			now := w.now()
			if remaining := w.interval - now.Sub(lastForward); !lastForward.IsZero() && remaining > 0 {
				// early fix: drop it and hold off the next request
				select {
				case <-time.After(remaining):
					continue
				case <-ctx.Done():
					return
				}
			}
			lastForward = now

			select {
			case fixes <- *fix:
			case <-ctx.Done():
				return
			}
		}
	}()

	return fixes, errs
}
