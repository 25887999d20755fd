package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/eiannone/keyboard"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dimfu/metro/internal/sequencer"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "A terminal metronome",
		Long: `metro - a metronome for the terminal.

Plays an accented click on the first beat of every bar and a normal click on
the others. Tempo runs from 30 to 300 bpm, bars from 1 to 12 beats.

Controls:
  space, enter   play / stop
  up, down       tempo ±1        (k, j)
  pgup, pgdn     tempo ±10       (K, J)
  right, left    beats per bar   (l, h)
  q, esc         quit

Settings come from flags, METRO_* environment variables (a .env file in the
working directory is loaded first), metro.yaml in . or ~/.config/metro, and
named presets.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runMetronome,
	}

	addPersistentFlags(root.PersistentFlags())
	addRunFlags(root.Flags())

	root.AddCommand(newTempoCmd(), newPresetCmd(), newVersionCmd())
	return root
}

// Execute runs the command tree.
func Execute() error {
	return newRootCmd().Execute()
}

func addPersistentFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "config file (default metro.yaml in . or ~/.config/metro)")
	fs.String("presets", "", "preset file (default ~/"+PRESET_FILE+")")
	fs.String("log-level", DEFAULT_LOG_LEVEL, "log level: debug, info, warn, error")
	fs.String("log-file", "", "write logs to this file instead of stderr")
	fs.BoolP("verbose", "v", false, "debug logging")
}

func addRunFlags(fs *pflag.FlagSet) {
	fs.IntP("bpm", "b", DEFAULT_BPM, "tempo in beats per minute (30-300)")
	fs.IntP("beats", "s", DEFAULT_BEATS, "beats per bar (1-12)")
	fs.StringP("preset", "p", "", "start from a saved preset")
	fs.Bool("play", false, "start playing immediately")
	fs.String("accent", DEFAULT_ACCENT_SOUND, "WAV clip for the first beat of a bar")
	fs.String("click", DEFAULT_CLICK_SOUND, "WAV clip for the other beats")
}

func runMetronome(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig(newViper(), cmd.Flags())
	if err != nil {
		return err
	}

	release, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	defer release()

	player, err := NewAudioPlayer(cfg.AccentSound, cfg.ClickSound)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load click sounds")
	}
	defer player.Close()

	seq, err := sequencer.New(player, cfg.Tempo, cfg.Beats,
		sequencer.WithLogger(log.With().Str("component", "sequencer").Logger()))
	if err != nil {
		return err
	}
	defer seq.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var keys <-chan keyboard.KeyEvent
	if isTerminal(os.Stdin) {
		keys, err = keyboard.GetKeys(10)
		if err != nil {
			return errors.Wrap(err, "opening keyboard")
		}
		defer keyboard.Close()
	}

	s := newSession(seq, newDisplay(os.Stdout), log.With().Str("component", "session").Logger())
	if cfg.Play || keys == nil {
		if _, err := s.apply(actToggle); err != nil {
			return err
		}
	}

	log.Info().
		Int("bpm", cfg.Tempo).
		Int("beats", cfg.Beats).
		Bool("interactive", keys != nil).
		Msg("metronome ready")
	return s.run(ctx, keys)
}
