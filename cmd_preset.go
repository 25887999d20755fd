package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dimfu/metro/internal/tempo"
)

func newPresetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preset",
		Short: "Manage saved tempo presets",
	}
	cmd.AddCommand(newPresetAddCmd(), newPresetRmCmd(), newPresetLsCmd())
	return cmd
}

// openPresetStore resolves the preset file the same way the metronome does.
func openPresetStore(cmd *cobra.Command) (*PresetStore, error) {
	v := newViper()
	if f := cmd.Flags().Lookup("presets"); f != nil {
		if err := v.BindPFlag("presets", f); err != nil {
			return nil, err
		}
	}
	return OpenPresets(expandHome(v.GetString("presets")))
}

func newPresetAddCmd() *cobra.Command {
	var bpm, beats int

	cmd := &cobra.Command{
		Use:     "add NAME",
		Short:   "Save a preset",
		Example: "  metro preset add waltz --bpm 90 --beats 3",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ps, err := openPresetStore(cmd)
			if err != nil {
				return err
			}
			p := Preset{Key: args[0], Tempo: bpm, Beats: beats}
			if err := ps.Create(p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s: %d bpm (%s), %d beats\n", p.Key, p.Tempo, tempo.Name(p.Tempo), p.Beats)
			return nil
		},
	}
	cmd.Flags().IntVarP(&bpm, "bpm", "b", DEFAULT_BPM, "tempo in beats per minute (30-300)")
	cmd.Flags().IntVarP(&beats, "beats", "s", DEFAULT_BEATS, "beats per bar (1-12)")
	return cmd
}

func newPresetRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm NAME",
		Aliases: []string{"delete"},
		Short:   "Delete a preset",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ps, err := openPresetStore(cmd)
			if err != nil {
				return err
			}
			if err := ps.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}

func newPresetLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List presets",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ps, err := openPresetStore(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			list := ps.List()
			if len(list) == 0 {
				fmt.Fprintln(out, "no presets")
				return nil
			}
			for _, p := range list {
				fmt.Fprintf(out, "%-16s %3d bpm  %2d beats  %s\n", p.Key, p.Tempo, p.Beats, tempo.Name(p.Tempo))
			}
			return nil
		},
	}
}
