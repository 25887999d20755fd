package main

import (
	"encoding/json"
	"os"
	"sort"

	"github.com/pkg/errors"
)

var (
	ErrPresetExists   = errors.New("preset already exists")
	ErrPresetNotFound = errors.New("preset not found")
)

type Preset struct {
	Key   string `json:"key"`
	Tempo int    `json:"tempo"`
	Beats int    `json:"beats"`
}

func (p Preset) Validate() error {
	if p.Key == "" {
		return errors.New("preset needs a name")
	}
	if !ValidTempo(p.Tempo) {
		return errors.Errorf("preset %q: tempo %d is not valid", p.Key, p.Tempo)
	}
	if !ValidBeats(p.Beats) {
		return errors.Errorf("preset %q: %d beats per bar is not valid", p.Key, p.Beats)
	}
	return nil
}

// PresetStore keeps presets as a JSON array in a single file.
type PresetStore struct {
	Presets []Preset
	Path    string
}

// OpenPresets reads the preset file at path. A missing or empty file yields an
// empty store.
func OpenPresets(path string) (*PresetStore, error) {
	ps := &PresetStore{Path: path, Presets: []Preset{}}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ps, nil
		}
		return nil, errors.Wrapf(err, "reading presets %s", path)
	}
	if len(data) == 0 {
		return ps, nil
	}
	if err := json.Unmarshal(data, &ps.Presets); err != nil {
		return nil, errors.Wrapf(err, "decoding presets %s", path)
	}
	return ps, nil
}

func (ps *PresetStore) Get(key string) (Preset, bool) {
	for _, p := range ps.Presets {
		if p.Key == key {
			return p, true
		}
	}
	return Preset{}, false
}

// List returns the presets sorted by key.
func (ps *PresetStore) List() []Preset {
	out := append([]Preset(nil), ps.Presets...)
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func (ps *PresetStore) Write() error {
	data, err := json.MarshalIndent(ps.Presets, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(ps.Path, data, 0644); err != nil {
		return errors.Wrapf(err, "writing presets %s", ps.Path)
	}
	return nil
}

func (ps *PresetStore) Create(p Preset) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if _, ok := ps.Get(p.Key); ok {
		return errors.Wrapf(ErrPresetExists, "%q", p.Key)
	}

	ps.Presets = append(ps.Presets, p)
	return ps.Write()
}

func (ps *PresetStore) Delete(key string) error {
	if _, ok := ps.Get(key); !ok {
		return errors.Wrapf(ErrPresetNotFound, "%q", key)
	}

	kept := ps.Presets[:0]
	for _, p := range ps.Presets {
		if p.Key != key {
			kept = append(kept, p)
		}
	}
	ps.Presets = kept
	return ps.Write()
}
