package main

import "time"

const (
	appName = "metro"

	DEFAULT_BPM   = 60
	DEFAULT_BEATS = 4

	DEFAULT_ACCENT_SOUND = "audio/glass.wav"
	DEFAULT_CLICK_SOUND  = "audio/stick.wav"

	DEFAULT_LOG_LEVEL = "warn"
	PRESET_FILE       = ".metro.json"

	// speaker buffer, a tenth of a second keeps the click latency low
	speakerBuffer = time.Second / 10

	// control steps
	bpmStep     = 1
	bpmPageStep = 10
	beatsStep   = 1
)

// version is set with -ldflags "-X main.version=..."
var version = "dev"
