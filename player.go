package main

import (
	"os"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
	"github.com/pkg/errors"

	"github.com/dimfu/metro/internal/sequencer"
)

// resampling quality used when the two clips disagree on sample rate
const resampleQuality = 4

// AudioPlayer holds both clicks fully decoded in memory so a beat only costs a
// speaker.Play call.
type AudioPlayer struct {
	accent *beep.Buffer
	normal *beep.Buffer
}

// Read opens and decodes a WAV file.
func Read(path string) (beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, errors.Wrap(err, "reading audio file failed")
	}

	streamer, format, err := wav.Decode(f)
	if err != nil {
		f.Close()
		return nil, beep.Format{}, errors.Wrapf(err, "error while decoding audio %s", path)
	}

	return streamer, format, nil
}

// LoadBuffer decodes path into a buffer of the given format, resampling when
// the file's sample rate differs. A zero format adopts the file's own.
func LoadBuffer(path string, format beep.Format) (*beep.Buffer, beep.Format, error) {
	streamer, fileFormat, err := Read(path)
	if err != nil {
		return nil, beep.Format{}, err
	}
	defer streamer.Close()

	if format.SampleRate == 0 {
		format = fileFormat
	}

	var src beep.Streamer = streamer
	if fileFormat.SampleRate != format.SampleRate {
		src = beep.Resample(resampleQuality, fileFormat.SampleRate, format.SampleRate, streamer)
	}

	buffer := beep.NewBuffer(format)
	buffer.Append(src)
	if buffer.Len() == 0 {
		return nil, beep.Format{}, errors.Errorf("audio file %s is empty", path)
	}
	return buffer, format, nil
}

// NewAudioPlayer decodes the accent and normal clicks and initialises the
// speaker at the accent clip's sample rate.
func NewAudioPlayer(accentPath, clickPath string) (*AudioPlayer, error) {
	accent, format, err := LoadBuffer(accentPath, beep.Format{})
	if err != nil {
		return nil, errors.Wrap(err, "accent sound")
	}
	normal, _, err := LoadBuffer(clickPath, format)
	if err != nil {
		return nil, errors.Wrap(err, "click sound")
	}

	if err := speaker.Init(format.SampleRate, format.SampleRate.N(speakerBuffer)); err != nil {
		return nil, errors.Wrap(err, "error while initializing speaker")
	}

	return &AudioPlayer{
		accent: accent,
		normal: normal,
	}, nil
}

// Click starts the clip and returns without waiting for it to finish.
func (ap *AudioPlayer) Click(s sequencer.Sound) error {
	buffer := ap.normal
	if s == sequencer.Accent {
		buffer = ap.accent
	}
	speaker.Play(buffer.Streamer(0, buffer.Len()))
	return nil
}

func (ap *AudioPlayer) Close() {
	speaker.Clear()
	speaker.Close()
}
