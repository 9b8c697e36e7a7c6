package main

import (
	"fmt"
	"math"

	"github.com/hupe1980/pointloc"
	"github.com/spf13/cobra"
)

func (a *app) neighboursCmd() *cobra.Command {
	var (
		index  int
		radius float64
		k      int
	)

	cmd := &cobra.Command{
		Use:   "neighbours",
		Short: "List the neighbours of one particle",
		Long: `List the particles closer than --radius to particle --index, nearest first.
With --k the k nearest particles are listed instead.

Each line holds the particle index, its distance and its position.`,
		Example: `  pointloc neighbours --params run.yml --index 42
  pointloc neighbours --params run.yml --index 42 --radius 0.01
  pointloc neighbours --params run.yml --index 42 --k 8`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			pl, err := a.loadIndex(ctx)
			if err != nil {
				return err
			}

			var ns []pointloc.Neighbour
			if k > 0 {
				ns, err = pl.NearestK(ctx, index, k)
			} else {
				if !cmd.Flags().Changed("radius") {
					radius = a.cfg.Query.Radius
				}
				ns, err = pl.Neighbours(ctx, index, radius)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, n := range ns {
				p := pl.Position(n.Index)
				fmt.Fprintf(out, "%d\t%g\t%g\t%g\t%g\n", n.Index, math.Sqrt(n.Distance2), p.X, p.Y, p.Z)
			}
			a.logMetrics(ctx)
			return nil
		},
	}

	cmd.Flags().IntVarP(&index, "index", "i", 0, "Query particle index (required)")
	cmd.Flags().Float64VarP(&radius, "radius", "r", 0, "Search radius (default query.radius)")
	cmd.Flags().IntVar(&k, "k", 0, "List the k nearest particles instead of a radius search")
	cmd.MarkFlagsMutuallyExclusive("radius", "k")
	_ = cmd.MarkFlagRequired("index")
	return cmd
}
