package main

import (
	"fmt"
	"io"
	"os"

	"github.com/hupe1980/pointloc"
	"github.com/spf13/cobra"
)

func (a *app) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Write the nearest neighbour distance histogram",
		Long: `Load the snapshot, build the grid and bin the distance from every particle
to its nearest neighbour into stats.num_bins logarithmic bins between
stats.min_dist and stats.max_dist.

The histogram is written to stats.output, or stdout when it is empty or "-".
Each line holds the lower and upper bin edge and the particle count.`,
		Args: cobra.NoArgs,
		RunE: a.runStats,
	}
}

func (a *app) runStats(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	pl, err := a.loadIndex(ctx)
	if err != nil {
		return err
	}

	st, err := pl.DistanceHistogram(ctx, pointloc.HistogramConfig{
		NumBins: a.cfg.Stats.NumBins,
		MinDist: a.cfg.Stats.MinDist,
		MaxDist: a.cfg.Stats.MaxDist,
	})
	if err != nil {
		return err
	}
	a.logMetrics(ctx)

	out := cmd.OutOrStdout()
	if path := a.cfg.Stats.Output; path != "" && path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := writeHistogram(f, st); err != nil {
			_ = f.Close()
			return err
		}
		return f.Close()
	}
	return writeHistogram(out, st)
}

func writeHistogram(w io.Writer, st *pointloc.DistanceStats) error {
	if _, err := fmt.Fprintf(w, "# particles %d\n# min %g max %g mean %g stddev %g\n# underflow %d overflow %d\n",
		len(st.Nearest), st.Min, st.Max, st.Mean, st.StdDev, st.Underflow, st.Overflow); err != nil {
		return err
	}
	for k, count := range st.Counts {
		if _, err := fmt.Fprintf(w, "%g\t%g\t%d\n", st.Dividers[k], st.Dividers[k+1], int(count)); err != nil {
			return err
		}
	}
	return nil
}
