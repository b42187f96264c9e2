package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mpetrik/photo-people/internal/cluster"
	"github.com/mpetrik/photo-people/internal/config"
)

var facesClusterCmd = &cobra.Command{
	Use:   "cluster",
	Short: "Group all faces into persons from scratch",
	Long: `Run density clustering over every stored face embedding and create a
person for each cluster found.

This is destructive: all existing persons and face assignments are
replaced by the new grouping, including manually labeled ones. Use
'faces cluster-new' to incrementally assign new faces instead.

Examples:
  # Cluster with default parameters
  photo-people faces cluster

  # Stricter clustering (smaller radius, bigger clusters required)
  photo-people faces cluster --eps 0.4 --min-samples 5`,
	RunE: runFacesCluster,
}

func init() {
	facesCmd.AddCommand(facesClusterCmd)

	cfg := config.Load()
	facesClusterCmd.Flags().Float64("eps", cfg.Clustering.Eps, "Maximum cosine distance between cluster neighbors")
	facesClusterCmd.Flags().Int("min-samples", cfg.Clustering.MinSamples, "Minimum faces per cluster")
	facesClusterCmd.Flags().Bool("verbose", false, "Print every assignment")
}

func runFacesCluster(cmd *cobra.Command, args []string) error {
	eps := mustGetFloat64(cmd, "eps")
	minSamples := mustGetInt(cmd, "min-samples")
	verbose := mustGetBool(cmd, "verbose")

	ctx := context.Background()
	cfg := config.Load()

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	engine := cluster.NewEngine(store, store,
		cluster.WithDimension(cfg.Detector.Dim),
		cluster.WithEvents(&cliEvents{verbose: verbose}),
	)

	res, err := engine.Cluster(ctx, eps, minSamples)
	if err != nil {
		return fmt.Errorf("clustering failed: %w", err)
	}

	if res.Skipped {
		fmt.Printf("Clustering skipped: %s\n", res.Reason)
		return nil
	}

	fmt.Printf("\nRun %s finished\n", res.RunID)
	fmt.Printf("Persons created: %d\n", res.PersonsCreated)
	fmt.Printf("Faces assigned:  %d\n", res.FacesAssigned)
	fmt.Printf("Noise faces:     %d\n", res.NoiseFaces)
	return nil
}
