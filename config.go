package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/dimfu/metro/internal/sequencer"
)

// Config is the resolved run configuration.
// Precedence: flag > METRO_* env > metro.yaml > preset > default.
type Config struct {
	Tempo       int
	Beats       int
	Preset      string
	Play        bool
	AccentSound string
	ClickSound  string
	LogLevel    string
	LogFile     string
	PresetFile  string
	Verbose     bool
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("bpm", DEFAULT_BPM)
	v.SetDefault("beats", DEFAULT_BEATS)
	v.SetDefault("accent", DEFAULT_ACCENT_SOUND)
	v.SetDefault("click", DEFAULT_CLICK_SOUND)
	v.SetDefault("log-level", DEFAULT_LOG_LEVEL)
	v.SetDefault("presets", filepath.Join(UserHomeDir(), PRESET_FILE))

	v.SetEnvPrefix(strings.ToUpper(appName))
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig binds flags into v, reads the optional config file and applies
// the selected preset.
func LoadConfig(v *viper.Viper, flags *pflag.FlagSet) (*Config, error) {
	if err := v.BindPFlags(flags); err != nil {
		return nil, errors.Wrap(err, "binding flags")
	}

	explicitFile := v.GetString("config")
	if explicitFile != "" {
		v.SetConfigFile(expandHome(explicitFile))
	} else {
		v.SetConfigName(appName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(filepath.Join(UserHomeDir(), ".config", appName))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicitFile != "" || !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "reading config")
		}
	}

	cfg := &Config{
		Tempo:       v.GetInt("bpm"),
		Beats:       v.GetInt("beats"),
		Preset:      v.GetString("preset"),
		Play:        v.GetBool("play"),
		AccentSound: expandHome(v.GetString("accent")),
		ClickSound:  expandHome(v.GetString("click")),
		LogLevel:    v.GetString("log-level"),
		LogFile:     v.GetString("log-file"),
		PresetFile:  expandHome(v.GetString("presets")),
		Verbose:     v.GetBool("verbose"),
	}

	if cfg.Preset != "" {
		ps, err := OpenPresets(cfg.PresetFile)
		if err != nil {
			return nil, err
		}
		p, ok := ps.Get(cfg.Preset)
		if !ok {
			return nil, errors.Wrapf(ErrPresetNotFound, "%q", cfg.Preset)
		}
		if !isExplicit(v, flags, "bpm") {
			cfg.Tempo = p.Tempo
		}
		if !isExplicit(v, flags, "beats") {
			cfg.Beats = p.Beats
		}
	}

	if err := sequencer.ValidateBPM(cfg.Tempo); err != nil {
		return nil, err
	}
	if err := sequencer.ValidateBeatsPerBar(cfg.Beats); err != nil {
		return nil, err
	}
	return cfg, nil
}

// isExplicit reports whether key was set by the user rather than defaulted.
func isExplicit(v *viper.Viper, flags *pflag.FlagSet, key string) bool {
	if f := flags.Lookup(key); f != nil && f.Changed {
		return true
	}
	if v.InConfig(key) {
		return true
	}
	_, ok := os.LookupEnv(strings.ToUpper(appName + "_" + strings.ReplaceAll(key, "-", "_")))
	return ok
}

// setupLogging points the global zerolog logger at stderr or cfg.LogFile and
// returns a function releasing the log file.
func setupLogging(cfg *Config) (func(), error) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, errors.Wrapf(err, "log level %q", cfg.LogLevel)
	}
	if cfg.Verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	var out io.Writer = os.Stderr
	release := func() {}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(expandHome(cfg.LogFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, errors.Wrap(err, "opening log file")
		}
		out = f
		release = func() { _ = f.Close() }
	}

	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.Kitchen,
		NoColor:    cfg.LogFile != "",
	}).With().Timestamp().Logger()
	return release, nil
}
