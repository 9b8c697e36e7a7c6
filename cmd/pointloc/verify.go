package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/spf13/cobra"
)

func (a *app) verifyCmd() *cobra.Command {
	var (
		samples int
		seed    uint64
		radius  float64
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check grid queries against a brute force search",
		Long: `Sample --samples particles and compare the neighbour count found by the
incremental grid search with an exhaustive scan over all particles.

The command fails if any sample disagrees.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if samples <= 0 {
				return fmt.Errorf("--samples must be positive, got %d", samples)
			}
			if !cmd.Flags().Changed("radius") {
				radius = a.cfg.Query.Radius
			}

			pl, err := a.loadIndex(ctx)
			if err != nil {
				return err
			}

			rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
			indices := make([]int, samples)
			for k := range indices {
				indices[k] = rng.IntN(pl.Len())
			}

			got, err := pl.BatchNeighbours(ctx, indices, radius)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			mismatches := 0
			for k, i := range indices {
				want, err := pl.BruteForceNeighbours(i, radius)
				if err != nil {
					return err
				}
				if len(got[k]) != len(want) {
					mismatches++
					fmt.Fprintf(out, "MISMATCH index %d: grid %d, brute force %d\n", i, len(got[k]), len(want))
				}
			}
			a.logMetrics(ctx)

			fmt.Fprintf(out, "verified %d samples at radius %g: %d mismatches\n", len(indices), radius, mismatches)
			if mismatches > 0 {
				return fmt.Errorf("%d of %d samples disagree", mismatches, len(indices))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&samples, "samples", "n", 100, "Number of sampled particles")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "Sampling seed")
	cmd.Flags().Float64VarP(&radius, "radius", "r", 0, "Search radius (default query.radius)")
	return cmd
}
