package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mpetrik/photo-people/internal/cluster"
	"github.com/mpetrik/photo-people/internal/config"
)

var facesClusterNewCmd = &cobra.Command{
	Use:   "cluster-new",
	Short: "Assign new faces to known persons in one pass",
	Long: `Run one incremental clustering pass: every unassigned face is compared
against the centroid of each known person and assigned when it is
similar enough. Faces that match nobody are clustered among themselves,
and a new person is created for every sufficiently large group.

Existing persons and assignments are never modified - this pass only
adds. Run 'faces cluster-loop' to repeat until nothing changes.

Examples:
  # One pass with default parameters
  photo-people faces cluster-new

  # Require stronger similarity for assignments
  photo-people faces cluster-new --threshold 0.7

  # Allow smaller new identities
  photo-people faces cluster-new --min-samples-new 10`,
	RunE: runFacesClusterNew,
}

func init() {
	facesCmd.AddCommand(facesClusterNewCmd)

	cfg := config.Load()
	facesClusterNewCmd.Flags().Float64("threshold", cfg.Clustering.SimilarityThreshold, "Cosine similarity a face must exceed to join a person")
	facesClusterNewCmd.Flags().Int("min-samples-new", cfg.Clustering.MinSamplesNew, "Minimum unmatched faces before a new person is created")
	facesClusterNewCmd.Flags().Bool("verbose", false, "Print every assignment")
}

func runFacesClusterNew(cmd *cobra.Command, args []string) error {
	threshold := mustGetFloat64(cmd, "threshold")
	minSamplesNew := mustGetInt(cmd, "min-samples-new")
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

	res, err := engine.ClusterNew(ctx, cluster.Params{
		SimilarityThreshold: threshold,
		MinSamplesNew:       minSamplesNew,
	})
	if err != nil {
		return fmt.Errorf("incremental clustering failed: %w", err)
	}

	fmt.Printf("\nFaces assigned:  %d\n", res.FacesAssigned)
	fmt.Printf("Persons created: %d\n", res.PersonsCreated)
	fmt.Printf("Still unmatched: %d\n", res.Unmatched)
	return nil
}
