package gps

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rotafield/rotafield-api/geo"
)

type stubProvider struct {
	fix *Fix
	err error

	// waitForCancel makes CurrentPosition block until the context ends.
	waitForCancel bool

	calls int
}

func (p *stubProvider) CurrentPosition(ctx context.Context) (*Fix, error) {
	p.calls++
	if p.waitForCancel {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if p.err != nil {
		return nil, p.err
	}
	return p.fix, nil
}

func TestAcquireReturnsFix(t *testing.T) {
	want := &Fix{
		Coordinate: geo.Coordinate{Latitude: -23.5505, Longitude: -46.6333},
		AccuracyM:  12,
		Time:       time.Now(),
	}

	fix, err := Acquire(context.Background(), &stubProvider{fix: want})

	assert.NoError(t, err)
	assert.Equal(t, want, fix)
}

func TestAcquirePassesProviderErrorsThrough(t *testing.T) {
	fix, err := Acquire(context.Background(), &stubProvider{err: ErrPermissionDenied})

	assert.Nil(t, fix)
	assert.Equal(t, ErrPermissionDenied, err)
}

func TestAcquirePositionUnavailable(t *testing.T) {
	fix, err := Acquire(context.Background(), &stubProvider{err: ErrPositionUnavailable})

	assert.Nil(t, fix)
	assert.Equal(t, ErrPositionUnavailable, err)
}

func TestAcquireReportsTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	fix, err := Acquire(ctx, &stubProvider{waitForCancel: true})

	assert.Nil(t, fix)
	assert.Equal(t, ErrTimeout, err)
}

func TestWatcherForwardsFirstFix(t *testing.T) {
	provider := &stubProvider{fix: &Fix{
		Coordinate: geo.Coordinate{Latitude: -23.5505, Longitude: -46.6333},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := NewWatcher(provider)
	fixes, _ := w.Watch(ctx)

	select {
	case fix := <-fixes:
		assert.Equal(t, -23.5505, fix.Coordinate.Latitude)
	case <-time.After(time.Second):
		t.Fatal("no fix forwarded")
	}
}

func TestWatcherThrottlesEarlyFixes(t *testing.T) {
	provider := &stubProvider{fix: &Fix{}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	current := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	w := NewWatcher(provider)
	w.interval = time.Hour
	w.now = func() time.Time { return current }

	fixes, _ := w.Watch(ctx)

	<-fixes

	// next fix comes in well within the interval and must be dropped
	select {
	case <-fixes:
		t.Fatal("early fix was forwarded")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestWatcherStopsOnError(t *testing.T) {
	provider := &stubProvider{err: ErrPositionUnavailable}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := NewWatcher(provider)
	fixes, errs := w.Watch(ctx)

	select {
	case err := <-errs:
		assert.Equal(t, ErrPositionUnavailable, err)
	case <-time.After(time.Second):
		t.Fatal("no error reported")
	}

	_, open := <-fixes
	assert.False(t, open)
}

func TestWatcherStopsWhenContextEnds(t *testing.T) {
	provider := &stubProvider{waitForCancel: true}

	ctx, cancel := context.WithCancel(context.Background())

	w := NewWatcher(provider)
	fixes, _ := w.Watch(ctx)

	cancel()

	select {
	case _, open := <-fixes:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}
