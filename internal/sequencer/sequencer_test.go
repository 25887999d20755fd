package sequencer

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitFor = 2 * time.Second

type fakeTicker struct {
	interval time.Duration
	c        chan time.Time
	stopped  chan struct{}
}

func (f *fakeTicker) C() <-chan time.Time { return f.c }
func (f *fakeTicker) Stop()               { close(f.stopped) }

// tickers hands out fake tickers and lets the test grab each one as the
// worker creates it.
type tickers struct {
	mu      sync.Mutex
	created []*fakeTicker
	next    chan *fakeTicker
}

func newTickers() *tickers {
	return &tickers{next: make(chan *fakeTicker, 8)}
}

func (ts *tickers) factory(d time.Duration) Ticker {
	ft := &fakeTicker{interval: d, c: make(chan time.Time), stopped: make(chan struct{})}
	ts.mu.Lock()
	ts.created = append(ts.created, ft)
	ts.mu.Unlock()
	ts.next <- ft
	return ft
}

func (ts *tickers) count() int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return len(ts.created)
}

func (ts *tickers) await(t *testing.T) *fakeTicker {
	t.Helper()
	select {
	case ft := <-ts.next:
		return ft
	case <-time.After(waitFor):
		t.Fatal("worker never created a ticker")
		return nil
	}
}

func (f *fakeTicker) tick(t *testing.T) {
	t.Helper()
	select {
	case f.c <- time.Now():
	case <-time.After(waitFor):
		t.Fatal("worker did not take the tick")
	}
}

type recorder struct {
	mu     sync.Mutex
	sounds []Sound
	queued []int
	beats  func() int
	err    error
}

func (r *recorder) Click(s Sound) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sounds = append(r.sounds, s)
	if r.beats != nil {
		r.queued = append(r.queued, r.beats())
	}
	return r.err
}

func (r *recorder) played() []Sound {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Sound(nil), r.sounds...)
}

func newTestSequencer(t *testing.T, bpm, beats int) (*Sequencer, *tickers, *recorder) {
	t.Helper()
	ts := newTickers()
	rec := &recorder{}
	seq, err := New(rec, bpm, beats, WithTicker(ts.factory))
	require.NoError(t, err)
	t.Cleanup(seq.Close)
	return seq, ts, rec
}

func nextBeat(t *testing.T, seq *Sequencer) Beat {
	t.Helper()
	select {
	case b, ok := <-seq.Beats():
		require.True(t, ok, "beats channel closed")
		return b
	case <-time.After(waitFor):
		t.Fatal("no beat published")
		return Beat{}
	}
}

func TestNewValidatesArguments(t *testing.T) {
	rec := &recorder{}

	_, err := New(rec, 29, 4)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = New(rec, 301, 4)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = New(rec, 120, 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = New(rec, 120, 13)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = New(nil, 120, 4)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	seq, err := New(rec, 30, 1)
	require.NoError(t, err)
	assert.Equal(t, Status{BPM: 30, BeatsPerBar: 1, State: Stopped, Tempo: "grave"}, seq.Status())
}

func TestInterval(t *testing.T) {
	assert.Equal(t, time.Second, Interval(60))
	assert.Equal(t, 500*time.Millisecond, Interval(120))
	assert.Equal(t, 2*time.Second, Interval(30))
	assert.Equal(t, 200*time.Millisecond, Interval(300))
}

func TestAccentWrapsEveryBar(t *testing.T) {
	seq, ts, rec := newTestSequencer(t, 60, 4)

	require.True(t, seq.Start())
	ft := ts.await(t)
	assert.Equal(t, time.Second, ft.interval)

	first := nextBeat(t, seq)
	assert.Equal(t, 1, first.Position)
	assert.True(t, first.Accent)
	assert.Equal(t, 4, first.BeatsPerBar)
	assert.Equal(t, 60, first.BPM)

	wantPos := []int{2, 3, 4, 1, 2}
	for _, want := range wantPos {
		ft.tick(t)
		b := nextBeat(t, seq)
		assert.Equal(t, want, b.Position)
		assert.Equal(t, want == 1, b.Accent)
	}

	require.True(t, seq.Stop())
	assert.Equal(t, []Sound{Accent, Normal, Normal, Normal, Accent, Normal}, rec.played())
}

func TestSingleBeatBarIsAlwaysAccent(t *testing.T) {
	seq, ts, _ := newTestSequencer(t, 120, 1)

	require.True(t, seq.Start())
	ft := ts.await(t)

	for i := 0; i < 3; i++ {
		if i > 0 {
			ft.tick(t)
		}
		b := nextBeat(t, seq)
		assert.Equal(t, 1, b.Position)
		assert.True(t, b.Accent)
	}
}

func TestBeatPublishedBeforeClick(t *testing.T) {
	seq, ts, rec := newTestSequencer(t, 120, 4)
	rec.beats = func() int { return len(seq.Beats()) }

	require.True(t, seq.Start())
	ft := ts.await(t)
	ft.tick(t)
	ft.tick(t)
	require.True(t, seq.Stop())

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, []int{1, 2, 3}, rec.queued)
}

func TestStartWhileRunningIsNoop(t *testing.T) {
	seq, ts, _ := newTestSequencer(t, 120, 4)

	require.True(t, seq.Start())
	ts.await(t)

	assert.False(t, seq.Start())
	assert.Equal(t, Running, seq.Status().State)
	assert.Equal(t, 1, ts.count())
}

func TestStopWhileStoppedIsNoop(t *testing.T) {
	seq, ts, _ := newTestSequencer(t, 120, 4)

	assert.False(t, seq.Stop())

	require.True(t, seq.Start())
	ft := ts.await(t)
	require.True(t, seq.Stop())

	select {
	case <-ft.stopped:
	case <-time.After(waitFor):
		t.Fatal("ticker not stopped")
	}
	assert.False(t, seq.Stop())
	assert.Equal(t, Stopped, seq.Status().State)
}

func TestStartResetsBeatCounter(t *testing.T) {
	seq, ts, _ := newTestSequencer(t, 120, 4)

	require.True(t, seq.Start())
	ft := ts.await(t)
	nextBeat(t, seq)
	ft.tick(t)
	assert.Equal(t, 2, nextBeat(t, seq).Position)
	require.True(t, seq.Stop())

	require.True(t, seq.Start())
	ts.await(t)
	assert.Equal(t, 1, nextBeat(t, seq).Position)
}

func TestToggle(t *testing.T) {
	seq, ts, _ := newTestSequencer(t, 120, 4)

	assert.Equal(t, Running, seq.Toggle())
	ts.await(t)
	assert.Equal(t, Stopped, seq.Toggle())
	assert.Equal(t, Stopped, seq.Status().State)
}

func TestSetBeatsPerBarWhileRunningStartsNewBar(t *testing.T) {
	seq, ts, _ := newTestSequencer(t, 120, 4)

	require.True(t, seq.Start())
	ft := ts.await(t)
	nextBeat(t, seq)
	ft.tick(t)
	assert.Equal(t, 2, nextBeat(t, seq).Position)

	require.NoError(t, seq.SetBeatsPerBar(3))
	ft2 := ts.await(t)

	b := nextBeat(t, seq)
	assert.Equal(t, 1, b.Position)
	assert.Equal(t, 3, b.BeatsPerBar)
	assert.True(t, b.Accent)

	for _, want := range []int{2, 3, 1} {
		ft2.tick(t)
		assert.Equal(t, want, nextBeat(t, seq).Position)
	}
	assert.Equal(t, Running, seq.Status().State)
}

func TestSetBPMWhileRunningRestartsWithNewInterval(t *testing.T) {
	seq, ts, _ := newTestSequencer(t, 60, 4)

	require.True(t, seq.Start())
	ft := ts.await(t)
	assert.Equal(t, time.Second, ft.interval)
	nextBeat(t, seq)

	require.NoError(t, seq.SetBPM(120))
	ft2 := ts.await(t)
	assert.Equal(t, 500*time.Millisecond, ft2.interval)
	assert.Equal(t, 500*time.Millisecond, seq.Interval())

	b := nextBeat(t, seq)
	assert.Equal(t, 1, b.Position)
	assert.Equal(t, 120, b.BPM)
	assert.Equal(t, "moderato", seq.Status().Tempo)
}

func TestSettersWhileStoppedDoNotStart(t *testing.T) {
	seq, ts, _ := newTestSequencer(t, 60, 4)

	require.NoError(t, seq.SetBPM(90))
	require.NoError(t, seq.SetBeatsPerBar(6))
	assert.Equal(t, 0, ts.count())
	assert.Equal(t, Status{BPM: 90, BeatsPerBar: 6, State: Stopped, Tempo: "andante moderato"}, seq.Status())
}

func TestSettersRejectOutOfRange(t *testing.T) {
	seq, _, _ := newTestSequencer(t, 60, 4)

	assert.ErrorIs(t, seq.SetBPM(0), ErrInvalidArgument)
	assert.ErrorIs(t, seq.SetBPM(301), ErrInvalidArgument)
	assert.ErrorIs(t, seq.SetBeatsPerBar(0), ErrInvalidArgument)
	assert.ErrorIs(t, seq.SetBeatsPerBar(13), ErrInvalidArgument)
	assert.Equal(t, 60, seq.Status().BPM)
	assert.Equal(t, 4, seq.Status().BeatsPerBar)
}

func TestClickErrorDoesNotStopTheLoop(t *testing.T) {
	ts := newTickers()
	rec := &recorder{err: assert.AnError}
	seq, err := New(rec, 120, 2, WithTicker(ts.factory))
	require.NoError(t, err)
	defer seq.Close()

	require.True(t, seq.Start())
	ft := ts.await(t)
	nextBeat(t, seq)
	ft.tick(t)
	assert.Equal(t, 2, nextBeat(t, seq).Position)
	assert.Equal(t, Running, seq.Status().State)
}

func TestCloseStopsAndClosesBeats(t *testing.T) {
	ts := newTickers()
	seq, err := New(&recorder{}, 120, 4, WithTicker(ts.factory))
	require.NoError(t, err)

	require.True(t, seq.Start())
	ts.await(t)
	seq.Close()
	seq.Close()

	assert.Equal(t, Stopped, seq.Status().State)
	assert.False(t, seq.Start())

	for range seq.Beats() {
	}
}

func TestPositionsStayWithinBar(t *testing.T) {
	for beats := MinBeatsPerBar; beats <= MaxBeatsPerBar; beats++ {
		ts := newTickers()
		seq, err := New(&recorder{}, 300, beats, WithTicker(ts.factory))
		require.NoError(t, err)

		require.True(t, seq.Start())
		ft := ts.await(t)
		for i := 0; i < 2*beats+1; i++ {
			if i > 0 {
				ft.tick(t)
			}
			b := nextBeat(t, seq)
			require.GreaterOrEqual(t, b.Position, 1)
			require.LessOrEqual(t, b.Position, beats)
		}
		seq.Close()
	}
}

func TestRealTickerSpacing(t *testing.T) {
	if testing.Short() {
		t.Skip("real-time test")
	}

	seq, err := New(&recorder{}, 300, 4)
	require.NoError(t, err)
	defer seq.Close()

	require.True(t, seq.Start())

	var at []time.Time
	for i := 0; i < 4; i++ {
		at = append(at, nextBeat(t, seq).At)
	}
	require.True(t, seq.Stop())

	for i := 1; i < len(at); i++ {
		gap := at[i].Sub(at[i-1])
		assert.InDelta(t, float64(200*time.Millisecond), float64(gap), float64(60*time.Millisecond), "gap %d: %v", i, gap)
	}
}
