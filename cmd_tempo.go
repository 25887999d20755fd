package main

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/dimfu/metro/internal/sequencer"
	"github.com/dimfu/metro/internal/tempo"
)

func newTempoCmd() *cobra.Command {
	var table bool

	cmd := &cobra.Command{
		Use:   "tempo [BPM]",
		Short: "Print the tempo marking for a BPM",
		Example: `  metro tempo 120
  metro tempo --table`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if table {
				for _, r := range tempo.Table {
					fmt.Fprintf(out, "%-18s %3d-%-3d  %v-%v\n", r.Name, r.Low, r.High,
						sequencer.Interval(r.High), sequencer.Interval(r.Low))
				}
				return nil
			}
			if len(args) == 0 {
				return errors.New("BPM required (or --table)")
			}

			bpm, err := strconv.Atoi(args[0])
			if err != nil {
				return errors.Errorf("invalid BPM %q", args[0])
			}
			fmt.Fprintln(out, tempo.Name(bpm))
			return nil
		},
	}
	cmd.Flags().BoolVar(&table, "table", false, "print every tempo range with its beat interval")
	return cmd
}
