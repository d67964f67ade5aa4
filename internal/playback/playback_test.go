package playback

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/fishstation/internal/models"
	"github.com/desertthunder/fishstation/internal/shared"
	tu "github.com/desertthunder/fishstation/internal/testing"
)

// gatedSleep blocks every sleep until release is closed and reports each call on started.
type gatedSleep struct {
	started  chan time.Duration
	release  chan struct{}
	mu       sync.Mutex
	finished int
}

func newGatedSleep() *gatedSleep {
	return &gatedSleep{started: make(chan time.Duration, 16), release: make(chan struct{})}
}

func (g *gatedSleep) sleep(ctx context.Context, d time.Duration) error {
	g.started <- d
	select {
	case <-g.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	g.mu.Lock()
	g.finished++
	g.mu.Unlock()
	return nil
}

func (g *gatedSleep) Finished() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.finished
}

func (g *gatedSleep) awaitStart(t *testing.T) time.Duration {
	t.Helper()
	select {
	case d := <-g.started:
		return d
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a track to start")
		return 0
	}
}

// recordingSleep returns immediately and records the requested durations.
type recordingSleep struct {
	mu    sync.Mutex
	calls []time.Duration
}

func (r *recordingSleep) sleep(_ context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, d)
	return nil
}

func (r *recordingSleep) Calls() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.calls...)
}

func urls(tracks []models.Track) []string {
	out := make([]string, len(tracks))
	for i, t := range tracks {
		out[i] = t.TrueURL
	}
	return out
}

func drain(c *Controller) []Event {
	var events []Event
	for {
		select {
		case e := <-c.Events():
			events = append(events, e)
		default:
			return events
		}
	}
}

func kinds(events []Event) []EventKind {
	out := make([]EventKind, len(events))
	for i, e := range events {
		out[i] = e.Kind
	}
	return out
}

func TestPlayTrack(t *testing.T) {
	track := tu.SampleTracks(1)[0]
	track.Duration = 3

	t.Run("sleeps for duration on success", func(t *testing.T) {
		source := &tu.MockSource{}
		rec := &recordingSleep{}
		c := New(source, shared.NewLogger(nil), WithSleep(rec.sleep))

		ok, err := c.PlayTrack(context.Background(), track)
		if err != nil || !ok {
			t.Fatalf("PlayTrack() = %v, %v", ok, err)
		}
		if got := rec.Calls(); !reflect.DeepEqual(got, []time.Duration{3 * time.Second}) {
			t.Errorf("expected one 3s sleep, got %v", got)
		}
		if c.State() != Idle {
			t.Errorf("expected idle after track, got %s", c.State())
		}
	})

	t.Run("refused returns without sleeping", func(t *testing.T) {
		source := &tu.MockSource{Refuse: map[string]bool{track.TrueURL: true}}
		rec := &recordingSleep{}
		c := New(source, shared.NewLogger(nil), WithSleep(rec.sleep))

		ok, err := c.PlayTrack(context.Background(), track)
		if err != nil || ok {
			t.Fatalf("PlayTrack() = %v, %v; want false, nil", ok, err)
		}
		if len(rec.Calls()) != 0 {
			t.Errorf("refused track should not sleep, got %v", rec.Calls())
		}
	})

	t.Run("source error returns without sleeping", func(t *testing.T) {
		fail := shared.NewSourceError("play", errors.New("timeout"))
		source := &tu.MockSource{Fail: map[string]error{track.TrueURL: fail}}
		rec := &recordingSleep{}
		c := New(source, shared.NewLogger(nil), WithSleep(rec.sleep))

		if _, err := c.PlayTrack(context.Background(), track); !errors.Is(err, shared.ErrSource) {
			t.Fatalf("expected source error, got %v", err)
		}
		if len(rec.Calls()) != 0 || c.State() != Idle {
			t.Errorf("failed track should not sleep or leave state %s", c.State())
		}
	})

	t.Run("interrupt is an implicit stop", func(t *testing.T) {
		source := &tu.MockSource{}
		ctx, cancel := context.WithCancel(context.Background())
		interrupted := func(ctx context.Context, d time.Duration) error {
			cancel()
			return ctx.Err()
		}
		c := New(source, shared.NewLogger(nil), WithSleep(interrupted))

		ok, err := c.PlayTrack(ctx, track)
		if err != nil || !ok {
			t.Fatalf("PlayTrack() = %v, %v", ok, err)
		}
		if c.State() != Stopped {
			t.Errorf("expected stopped, got %s", c.State())
		}
		if source.HomeCalls() != 1 {
			t.Errorf("expected surface sent home once, got %d", source.HomeCalls())
		}
	})

	t.Run("rejected during traversal", func(t *testing.T) {
		source := &tu.MockSource{}
		gate := newGatedSleep()
		c := New(source, shared.NewLogger(nil), WithSleep(gate.sleep))

		if err := c.PlayPlaylist(context.Background(), tu.SampleTracks(2), Sequential, nil); err != nil {
			t.Fatalf("PlayPlaylist() error = %v", err)
		}
		gate.awaitStart(t)

		if _, err := c.PlayTrack(context.Background(), track); !errors.Is(err, shared.ErrTraversalActive) {
			t.Errorf("expected ErrTraversalActive, got %v", err)
		}

		close(gate.release)
		c.Wait()
		if got := source.Played(); len(got) != 2 {
			t.Errorf("foreground track should not have played, got %v", got)
		}
	})
}

func TestPlayPlaylist(t *testing.T) {
	t.Run("sequential plays every track in order", func(t *testing.T) {
		source := &tu.MockSource{}
		rec := &recordingSleep{}
		c := New(source, shared.NewLogger(nil), WithSleep(rec.sleep))
		tracks := tu.SampleTracks(3)

		var positions []int
		if err := c.PlayPlaylist(context.Background(), tracks, Sequential, func(pos int, _ models.Track) { positions = append(positions, pos) }); err != nil {
			t.Fatalf("PlayPlaylist() error = %v", err)
		}
		c.Wait()

		if got := source.Played(); !reflect.DeepEqual(got, urls(tracks)) {
			t.Errorf("expected %v, got %v", urls(tracks), got)
		}
		if !reflect.DeepEqual(positions, []int{0, 1, 2}) {
			t.Errorf("expected positions [0 1 2], got %v", positions)
		}
		want := []EventKind{TrackStarted, TrackStarted, TrackStarted, TraversalDone}
		if got := kinds(drain(c)); !reflect.DeepEqual(got, want) {
			t.Errorf("expected events %v, got %v", want, got)
		}
		if c.State() != Idle || c.Active() {
			t.Errorf("expected idle with no traversal, got %s active=%v", c.State(), c.Active())
		}
	})

	t.Run("shuffle is computed once", func(t *testing.T) {
		source := &tu.MockSource{}
		calls := 0
		shuffle := func(n int) []int {
			calls++
			return []int{2, 0, 1}
		}
		c := New(source, shared.NewLogger(nil), WithSleep((&recordingSleep{}).sleep), WithShuffle(shuffle))
		tracks := tu.SampleTracks(3)

		var positions []int
		_ = c.PlayPlaylist(context.Background(), tracks, Shuffled, func(pos int, _ models.Track) { positions = append(positions, pos) })
		c.Wait()

		if calls != 1 {
			t.Errorf("expected one shuffle per run, got %d", calls)
		}
		want := []string{tracks[2].TrueURL, tracks[0].TrueURL, tracks[1].TrueURL}
		if got := source.Played(); !reflect.DeepEqual(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
		if !reflect.DeepEqual(positions, []int{2, 0, 1}) {
			t.Errorf("expected playlist positions [2 0 1], got %v", positions)
		}
	})

	t.Run("refused and failed tracks skip the wait", func(t *testing.T) {
		tracks := tu.SampleTracks(3)
		source := &tu.MockSource{
			Refuse: map[string]bool{tracks[0].TrueURL: true},
			Fail:   map[string]error{tracks[1].TrueURL: shared.NewSourceError("play", errors.New("timeout"))},
		}
		rec := &recordingSleep{}
		c := New(source, shared.NewLogger(nil), WithSleep(rec.sleep))

		_ = c.PlayPlaylist(context.Background(), tracks, Sequential, nil)
		c.Wait()

		if got := rec.Calls(); len(got) != 1 {
			t.Errorf("expected a single wait for the playable track, got %v", got)
		}
		want := []EventKind{TrackRefused, TrackFailed, TrackStarted, TraversalDone}
		events := drain(c)
		if got := kinds(events); !reflect.DeepEqual(got, want) {
			t.Errorf("expected events %v, got %v", want, got)
		}
		if events[0].Message != "could not play singer 1 - title 1, this track may need a VIP account" {
			t.Errorf("unexpected refused message %q", events[0].Message)
		}
	})

	t.Run("second traversal rejected", func(t *testing.T) {
		source := &tu.MockSource{}
		gate := newGatedSleep()
		c := New(source, shared.NewLogger(nil), WithSleep(gate.sleep))
		first := tu.SampleTracks(2)

		if err := c.PlayPlaylist(context.Background(), first, Sequential, nil); err != nil {
			t.Fatalf("PlayPlaylist() error = %v", err)
		}
		gate.awaitStart(t)

		other := []models.Track{{SongID: "x", TrueURL: "https://music.example.com/media/outer?id=x", Duration: 1}}
		if err := c.PlayPlaylist(context.Background(), other, Sequential, nil); !errors.Is(err, shared.ErrTraversalActive) {
			t.Fatalf("expected ErrTraversalActive, got %v", err)
		}

		close(gate.release)
		c.Wait()
		if got := source.Played(); !reflect.DeepEqual(got, urls(first)) {
			t.Errorf("running traversal altered: expected %v, got %v", urls(first), got)
		}
	})

	t.Run("stop never truncates the current track", func(t *testing.T) {
		source := &tu.MockSource{}
		gate := newGatedSleep()
		c := New(source, shared.NewLogger(nil), WithSleep(gate.sleep))
		tracks := tu.SampleTracks(3)

		_ = c.PlayPlaylist(context.Background(), tracks, Sequential, nil)
		gate.awaitStart(t)

		if err := c.Stop(context.Background()); err != nil {
			t.Fatalf("Stop() error = %v", err)
		}
		if c.State() != Stopped {
			t.Errorf("expected stopped, got %s", c.State())
		}
		if gate.Finished() != 0 {
			t.Error("stop interrupted the track in progress")
		}
		if !c.Active() {
			t.Error("traversal slot should be held until the current track ends")
		}
		if err := c.PlayPlaylist(context.Background(), tracks, Sequential, nil); !errors.Is(err, shared.ErrTraversalActive) {
			t.Errorf("expected ErrTraversalActive while draining, got %v", err)
		}

		close(gate.release)
		c.Wait()

		if gate.Finished() != 1 {
			t.Errorf("expected the started track to finish its wait, got %d", gate.Finished())
		}
		if got := source.Played(); !reflect.DeepEqual(got, urls(tracks[:1])) {
			t.Errorf("expected only the first track, got %v", got)
		}
		want := []EventKind{TrackStarted, TraversalStopped}
		if got := kinds(drain(c)); !reflect.DeepEqual(got, want) {
			t.Errorf("expected events %v, got %v", want, got)
		}
		if source.HomeCalls() != 1 {
			t.Errorf("expected surface sent home once, got %d", source.HomeCalls())
		}
		if c.Active() || c.State() != Stopped {
			t.Errorf("expected stopped with no traversal, got %s active=%v", c.State(), c.Active())
		}

		if err := c.PlayPlaylist(context.Background(), tracks[:1], Sequential, nil); err != nil {
			t.Errorf("expected a new traversal after the old one drained, got %v", err)
		}
		c.Wait()
	})

	t.Run("empty playlist", func(t *testing.T) {
		c := New(&tu.MockSource{}, shared.NewLogger(nil))
		if err := c.PlayPlaylist(context.Background(), nil, Sequential, nil); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
		if c.Active() {
			t.Error("rejected traversal should not hold the slot")
		}
	})

	t.Run("full event buffer never blocks", func(t *testing.T) {
		source := &tu.MockSource{}
		c := New(source, shared.NewLogger(nil), WithSleep((&recordingSleep{}).sleep), WithEventBuffer(1))
		tracks := tu.SampleTracks(4)

		_ = c.PlayPlaylist(context.Background(), tracks, Sequential, nil)
		c.Wait()

		if len(source.Played()) != 4 {
			t.Errorf("expected all tracks played, got %v", source.Played())
		}
		if got := drain(c); len(got) != 1 {
			t.Errorf("expected one buffered event, got %d", len(got))
		}
	})
}

func TestStop(t *testing.T) {
	t.Run("idle stop skips the surface", func(t *testing.T) {
		source := &tu.MockSource{}
		c := New(source, shared.NewLogger(nil))

		if err := c.Stop(context.Background()); err != nil {
			t.Fatalf("Stop() error = %v", err)
		}
		if c.State() != Stopped || source.HomeCalls() != 0 {
			t.Errorf("expected stopped without GoHome, got %s, %d calls", c.State(), source.HomeCalls())
		}
	})

	t.Run("home failure is reported", func(t *testing.T) {
		source := &tu.MockSource{HomeErr: shared.NewSourceError("home", errors.New("closed"))}
		gate := newGatedSleep()
		c := New(source, shared.NewLogger(nil), WithSleep(gate.sleep))

		_ = c.PlayPlaylist(context.Background(), tu.SampleTracks(1), Sequential, nil)
		gate.awaitStart(t)

		if err := c.Stop(context.Background()); !errors.Is(err, shared.ErrSource) {
			t.Errorf("expected source error, got %v", err)
		}
		close(gate.release)
		c.Wait()
	})
}

func TestSleepContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sleepContext(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if err := sleepContext(context.Background(), time.Millisecond); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}
