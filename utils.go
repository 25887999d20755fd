package main

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/dimfu/metro/internal/sequencer"
	"github.com/dimfu/metro/internal/tempo"
)

func ValidTempo(input int) bool {
	return sequencer.ValidateBPM(input) == nil
}

func ValidBeats(input int) bool {
	return sequencer.ValidateBeatsPerBar(input) == nil
}

// clampTempo and clampBeats bound control input the way a spin button would.
func clampTempo(input int) int {
	return clamp(input, tempo.MinBPM, tempo.MaxBPM)
}

func clampBeats(input int) int {
	return clamp(input, sequencer.MinBeatsPerBar, sequencer.MaxBeatsPerBar)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func UserHomeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	if runtime.GOOS == "windows" {
		home := os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
		if home == "" {
			home = os.Getenv("USERPROFILE")
		}
		return home
	}
	return os.Getenv("HOME")
}

// expandHome resolves a leading ~ against the user's home directory.
func expandHome(path string) string {
	if path == "~" {
		return UserHomeDir()
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(UserHomeDir(), path[2:])
	}
	return path
}
