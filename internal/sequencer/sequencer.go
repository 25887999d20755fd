// Package sequencer drives the metronome beat: one worker goroutine ticks at
// time.Minute/bpm, decides accent vs normal for every beat and publishes the
// beat position on a channel for the display.
package sequencer

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/dimfu/metro/internal/tempo"
)

const (
	MinBeatsPerBar = 1
	MaxBeatsPerBar = 12

	// a tick later or earlier than this re-anchors the schedule
	driftTolerance = 10 * time.Millisecond

	defaultBuffer = 16
)

// ErrInvalidArgument is returned for a BPM or bar length outside the supported bounds.
var ErrInvalidArgument = errors.New("invalid argument")

// Sound selects which clip the Clicker plays.
type Sound int

const (
	Normal Sound = iota
	Accent
)

func (s Sound) String() string {
	if s == Accent {
		return "accent"
	}
	return "normal"
}

// Clicker plays a click. Click must not block until the clip ends.
type Clicker interface {
	Click(Sound) error
}

// ClickerFunc adapts a plain function to Clicker.
type ClickerFunc func(Sound) error

func (f ClickerFunc) Click(s Sound) error { return f(s) }

// Beat is published once per beat, before its click is triggered.
type Beat struct {
	Position    int // 1..BeatsPerBar
	BeatsPerBar int
	BPM         int
	Accent      bool
	At          time.Time
	Drift       time.Duration
}

type State int

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "stopped"
}

type Status struct {
	BPM         int
	BeatsPerBar int
	State       State
	Tempo       string
}

// Ticker is the subset of time.Ticker the worker needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type realTicker struct {
	t *time.Ticker
}

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

func newRealTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

type Option func(*Sequencer)

func WithLogger(l zerolog.Logger) Option {
	return func(s *Sequencer) { s.log = l }
}

// WithTicker replaces the time.Ticker factory.
func WithTicker(f func(time.Duration) Ticker) Option {
	return func(s *Sequencer) { s.newTicker = f }
}

func WithClock(now func() time.Time) Option {
	return func(s *Sequencer) { s.now = now }
}

// WithBuffer sets the capacity of the Beats channel. Beats are dropped, not
// queued, once the consumer falls this far behind.
func WithBuffer(n int) Option {
	return func(s *Sequencer) { s.buffer = n }
}

type Sequencer struct {
	clicker   Clicker
	log       zerolog.Logger
	newTicker func(time.Duration) Ticker
	now       func() time.Time
	buffer    int
	beats     chan Beat

	mu          sync.Mutex
	bpm         int
	beatsPerBar int
	running     bool
	closed      bool
	stop        chan struct{}
	done        chan struct{}
}

func New(clicker Clicker, bpm, beatsPerBar int, opts ...Option) (*Sequencer, error) {
	if clicker == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "nil clicker")
	}
	if err := ValidateBPM(bpm); err != nil {
		return nil, err
	}
	if err := ValidateBeatsPerBar(beatsPerBar); err != nil {
		return nil, err
	}

	s := &Sequencer{
		clicker:     clicker,
		log:         zerolog.Nop(),
		newTicker:   newRealTicker,
		now:         time.Now,
		buffer:      defaultBuffer,
		bpm:         bpm,
		beatsPerBar: beatsPerBar,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.buffer < 1 {
		s.buffer = 1
	}
	s.beats = make(chan Beat, s.buffer)
	return s, nil
}

func ValidateBPM(bpm int) error {
	if bpm < tempo.MinBPM || bpm > tempo.MaxBPM {
		return errors.Wrapf(ErrInvalidArgument, "bpm %d outside %d..%d", bpm, tempo.MinBPM, tempo.MaxBPM)
	}
	return nil
}

func ValidateBeatsPerBar(n int) error {
	if n < MinBeatsPerBar || n > MaxBeatsPerBar {
		return errors.Wrapf(ErrInvalidArgument, "beats per bar %d outside %d..%d", n, MinBeatsPerBar, MaxBeatsPerBar)
	}
	return nil
}

// Interval is the time between two beats at bpm.
func Interval(bpm int) time.Duration {
	return time.Minute / time.Duration(bpm)
}

// Beats returns the channel beat events are published on. It is closed by Close.
func (s *Sequencer) Beats() <-chan Beat {
	return s.beats
}

func (s *Sequencer) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Interval(s.bpm)
}

func (s *Sequencer) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		BPM:         s.bpm,
		BeatsPerBar: s.beatsPerBar,
		State:       Stopped,
		Tempo:       tempo.Name(s.bpm),
	}
	if s.running {
		st.State = Running
	}
	return st
}

// Start begins producing beats, the first one immediately. It reports false
// and does nothing when already running or closed.
func (s *Sequencer) Start() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running || s.closed {
		return false
	}
	s.start()
	return true
}

// Stop cancels the pending tick and waits for the worker to exit. It reports
// false when already stopped.
func (s *Sequencer) Stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return false
	}
	s.halt()
	return true
}

// Toggle starts a stopped sequencer or stops a running one and returns the new state.
func (s *Sequencer) Toggle() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.running:
		s.halt()
	case !s.closed:
		s.start()
	}
	if s.running {
		return Running
	}
	return Stopped
}

// SetBPM changes the tempo. A running sequencer restarts with the new
// interval and a fresh bar.
func (s *Sequencer) SetBPM(bpm int) error {
	if err := ValidateBPM(bpm); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if bpm == s.bpm {
		return nil
	}
	s.bpm = bpm
	s.restart()
	return nil
}

// SetBeatsPerBar changes the bar length. A running sequencer restarts at the
// first beat of a new bar.
func (s *Sequencer) SetBeatsPerBar(n int) error {
	if err := ValidateBeatsPerBar(n); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if n == s.beatsPerBar {
		return nil
	}
	s.beatsPerBar = n
	s.restart()
	return nil
}

// Close stops the sequencer and closes the Beats channel.
func (s *Sequencer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	if s.running {
		s.halt()
	}
	s.closed = true
	close(s.beats)
}

// caller holds s.mu
func (s *Sequencer) start() {
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.running = true

	s.log.Debug().
		Int("bpm", s.bpm).
		Int("beats_per_bar", s.beatsPerBar).
		Dur("interval", Interval(s.bpm)).
		Msg("sequencer started")

	go s.run(s.bpm, s.beatsPerBar, s.stop, s.done)
}

// caller holds s.mu
func (s *Sequencer) halt() {
	close(s.stop)
	<-s.done
	s.stop, s.done = nil, nil
	s.running = false

	s.log.Debug().Msg("sequencer stopped")
}

// caller holds s.mu
func (s *Sequencer) restart() {
	if !s.running {
		return
	}
	s.halt()
	s.start()
}

func (s *Sequencer) run(bpm, beatsPerBar int, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	interval := Interval(bpm)
	ticker := s.newTicker(interval)
	defer ticker.Stop()

	position := 0
	next := s.now()

	position = position%beatsPerBar + 1
	s.beat(Beat{Position: position, BeatsPerBar: beatsPerBar, BPM: bpm, At: next})
	next = next.Add(interval)

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C():
			drift := now.Sub(next)
			if drift > driftTolerance || drift < -driftTolerance {
				s.log.Debug().Dur("drift", drift).Msg("re-anchoring beat schedule")
				next = now
			}
			next = next.Add(interval)

			position = position%beatsPerBar + 1
			s.beat(Beat{Position: position, BeatsPerBar: beatsPerBar, BPM: bpm, At: now, Drift: drift})
		}
	}
}

// beat publishes b and then triggers its click.
func (s *Sequencer) beat(b Beat) {
	b.Accent = b.Position == 1

	select {
	case s.beats <- b:
	default:
		s.log.Debug().Int("position", b.Position).Msg("beat consumer behind, event dropped")
	}

	sound := Normal
	if b.Accent {
		sound = Accent
	}
	if err := s.clicker.Click(sound); err != nil {
		s.log.Warn().Err(err).Int("position", b.Position).Stringer("sound", sound).Msg("click failed")
	}
}
