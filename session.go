package main

import (
	"context"

	"github.com/eiannone/keyboard"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/dimfu/metro/internal/sequencer"
)

// session is the control surface: it turns key presses into sequencer
// operations and is the only goroutine touching the display.
type session struct {
	seq     *sequencer.Sequencer
	display display
	log     zerolog.Logger
	view    view
}

func newSession(seq *sequencer.Sequencer, d display, l zerolog.Logger) *session {
	s := &session{seq: seq, display: d, log: l}
	s.sync()
	return s
}

// sync copies the sequencer status into the view.
func (s *session) sync() {
	st := s.seq.Status()
	running := st.State == sequencer.Running
	if st.BPM != s.view.Tempo || st.BeatsPerBar != s.view.Beats || running != s.view.Running {
		s.view.Position = 0
	}
	s.view.Tempo = st.BPM
	s.view.TempoName = st.Tempo
	s.view.Beats = st.BeatsPerBar
	s.view.Running = running
}

func (s *session) show() {
	if err := s.display.Show(s.view); err != nil {
		s.log.Warn().Err(err).Msg("display update failed")
	}
}

// apply runs a control action and reports whether the session should end.
func (s *session) apply(a action) (bool, error) {
	var err error
	switch a {
	case actNone:
		return false, nil
	case actQuit:
		return true, nil
	case actToggle:
		s.seq.Toggle()
	case actTempoUp:
		err = s.seq.SetBPM(clampTempo(s.view.Tempo + bpmStep))
	case actTempoDown:
		err = s.seq.SetBPM(clampTempo(s.view.Tempo - bpmStep))
	case actTempoPageUp:
		err = s.seq.SetBPM(clampTempo(s.view.Tempo + bpmPageStep))
	case actTempoPageDown:
		err = s.seq.SetBPM(clampTempo(s.view.Tempo - bpmPageStep))
	case actBeatsUp:
		err = s.seq.SetBeatsPerBar(clampBeats(s.view.Beats + beatsStep))
	case actBeatsDown:
		err = s.seq.SetBeatsPerBar(clampBeats(s.view.Beats - beatsStep))
	}
	if err != nil {
		return false, err
	}

	s.sync()
	s.log.Debug().
		Stringer("action", a).
		Int("bpm", s.view.Tempo).
		Int("beats", s.view.Beats).
		Bool("running", s.view.Running).
		Msg("control")
	s.show()
	return false, nil
}

// onBeat shows b unless it belongs to a run that has since been stopped or
// restarted with other settings.
func (s *session) onBeat(b sequencer.Beat) {
	if !s.view.Running || b.BPM != s.view.Tempo || b.BeatsPerBar != s.view.Beats {
		return
	}
	s.view.Position = b.Position
	s.log.Debug().Int("position", b.Position).Bool("accent", b.Accent).Dur("drift", b.Drift).Msg("beat")
	s.show()
}

// run drives the session until quit, ctx cancellation or the beat channel
// closing. keys may be nil for a headless session.
func (s *session) run(ctx context.Context, keys <-chan keyboard.KeyEvent) error {
	defer func() {
		if err := s.display.Close(); err != nil {
			s.log.Warn().Err(err).Msg("closing display")
		}
	}()
	s.show()

	for {
		select {
		case <-ctx.Done():
			return nil
		case b, ok := <-s.seq.Beats():
			if !ok {
				return nil
			}
			s.onBeat(b)
		case ev, ok := <-keys:
			if !ok {
				keys = nil
				continue
			}
			if ev.Err != nil {
				return errors.Wrap(ev.Err, "keyboard")
			}
			quit, err := s.apply(actionFor(ev))
			if err != nil {
				return err
			}
			if quit {
				return nil
			}
		}
	}
}
