package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YusufSemihCan/Charon-LCBot/internal/config"
	"github.com/YusufSemihCan/Charon-LCBot/internal/input"
	"github.com/YusufSemihCan/Charon-LCBot/internal/navigation"
)

// stubEngine records calls and fails the test on overlapping ones.
type stubEngine struct {
	mu      sync.Mutex
	running bool
	overlap bool
	calls   []navigation.State
	current navigation.State
	opts    navigation.Options
	err     error
	delay   time.Duration
}

func (e *stubEngine) enter() {
	e.mu.Lock()
	if e.running {
		e.overlap = true
	}
	e.running = true
	e.mu.Unlock()
}

func (e *stubEngine) leave() {
	e.mu.Lock()
	e.running = false
	e.mu.Unlock()
}

func (e *stubEngine) NavigateTo(target navigation.State) (bool, error) {
	e.enter()
	defer e.leave()
	time.Sleep(e.delay)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, target)
	if e.err != nil {
		return false, e.err
	}
	e.current = target
	return true, nil
}

func (e *stubEngine) SynchronizeState() (navigation.State, error) {
	e.enter()
	defer e.leave()
	return e.CurrentState(), nil
}

func (e *stubEngine) CurrentState() navigation.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

func (e *stubEngine) SetOptions(opts navigation.Options) {
	e.enter()
	defer e.leave()
	e.opts = opts
}

func (e *stubEngine) Options() navigation.Options { return e.opts }

func startWorker(t *testing.T, e Engine, onResult func(Result)) *Worker {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	w := NewWorker(e, onResult)
	go w.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-w.done
	})
	return w
}

func TestWorkerNavigate(t *testing.T) {
	e := &stubEngine{}
	var got []Result
	w := startWorker(t, e, func(r Result) { got = append(got, r) })

	res, err := w.Navigate(context.Background(), navigation.Drive)
	require.NoError(t, err)
	assert.True(t, res.Reached)
	assert.Equal(t, navigation.Drive, res.State)
	assert.Equal(t, navigation.Drive, res.Target)
	require.Len(t, got, 1)
	assert.Equal(t, res, got[0])
}

func TestWorkerSerializesRequests(t *testing.T) {
	e := &stubEngine{delay: 5 * time.Millisecond}
	w := startWorker(t, e, nil)

	var wg sync.WaitGroup
	for _, target := range []navigation.State{navigation.Hub, navigation.Drive, navigation.Sinners, navigation.ChargeBoxes} {
		wg.Add(1)
		go func(s navigation.State) {
			defer wg.Done()
			_, err := w.Navigate(context.Background(), s)
			assert.NoError(t, err)
		}(target)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, w.Reconfigure(context.Background(), navigation.DefaultOptions()))
	}()
	wg.Wait()

	assert.False(t, e.overlap)
	assert.Len(t, e.calls, 4)
	assert.Equal(t, navigation.DefaultOptions().MaxHops, e.opts.MaxHops)
	assert.False(t, w.Busy())
}

func TestWorkerPropagatesFailSafe(t *testing.T) {
	e := &stubEngine{err: input.ErrFailSafe}
	w := startWorker(t, e, nil)

	res, err := w.Navigate(context.Background(), navigation.Hub)
	assert.ErrorIs(t, err, input.ErrFailSafe)
	assert.False(t, res.Reached)
}

func TestWorkerSynchronize(t *testing.T) {
	e := &stubEngine{current: navigation.MirrorDungeon}
	w := startWorker(t, e, nil)

	s, err := w.Synchronize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, navigation.MirrorDungeon, s)
}

func TestWorkerStopped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	w := NewWorker(&stubEngine{}, nil)
	go w.Run(ctx)
	cancel()
	<-w.done

	err := w.Do(context.Background(), func() {})
	assert.True(t, errors.Is(err, ErrStopped))
}

func TestWorkerCallerCancel(t *testing.T) {
	w := NewWorker(&stubEngine{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := w.Do(ctx, func() {})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNavigatorOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Vision.ClickThreshold = 0.75
	cfg.Navigation.MaxHops = 4
	cfg.Navigation.StrictOverlay = true
	cfg.Navigation.SettleDelay = 200 * time.Millisecond
	cfg.Input.ClickHold = 0

	opts := NavigatorOptions(cfg)
	assert.Equal(t, 0.75, opts.ClickThreshold)
	assert.Equal(t, 4, opts.MaxHops)
	assert.True(t, opts.StrictOverlay)
	assert.Equal(t, 200*time.Millisecond, opts.SettleDelay)
	assert.Equal(t, input.DefaultClickHold, opts.ClickHold)
}

func TestLocatorOptionsRejectsUnknownMode(t *testing.T) {
	cfg := config.Default()
	cfg.Vision.CacheMode = "fastest"

	_, err := LocatorOptions(cfg, 1)
	assert.Error(t, err)

	cfg.Vision.CacheMode = config.CacheMemory
	opts, err := LocatorOptions(cfg, 1.5)
	require.NoError(t, err)
	assert.Len(t, opts, 3)
}
