package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mpetrik/photo-people/internal/cluster"
	"github.com/mpetrik/photo-people/internal/config"
)

var facesClusterLoopCmd = &cobra.Command{
	Use:   "cluster-loop",
	Short: "Repeat incremental clustering until nothing changes",
	Long: `Run 'faces cluster-new' passes until a pass assigns no faces and
creates no persons. Each assignment shifts person centroids, which can
bring further faces into reach, so a single pass often leaves work on
the table.

Examples:
  # Converge with default parameters
  photo-people faces cluster-loop

  # Cap the number of passes
  photo-people faces cluster-loop --max-iterations 5`,
	RunE: runFacesClusterLoop,
}

func init() {
	facesCmd.AddCommand(facesClusterLoopCmd)

	cfg := config.Load()
	facesClusterLoopCmd.Flags().Float64("threshold", cfg.Clustering.SimilarityThreshold, "Cosine similarity a face must exceed to join a person")
	facesClusterLoopCmd.Flags().Int("min-samples-new", cfg.Clustering.MinSamplesNew, "Minimum unmatched faces before a new person is created")
	facesClusterLoopCmd.Flags().Int("max-iterations", cfg.Clustering.MaxIterations, "Maximum number of passes")
	facesClusterLoopCmd.Flags().Bool("verbose", false, "Print every assignment")
}

func runFacesClusterLoop(cmd *cobra.Command, args []string) error {
	threshold := mustGetFloat64(cmd, "threshold")
	minSamplesNew := mustGetInt(cmd, "min-samples-new")
	maxIterations := mustGetInt(cmd, "max-iterations")
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

	res, err := engine.ClusterNewLoop(ctx, cluster.Params{
		SimilarityThreshold: threshold,
		MinSamplesNew:       minSamplesNew,
		MaxIterations:       maxIterations,
	})
	if err != nil {
		return fmt.Errorf("incremental clustering failed after %d iterations: %w", res.Iterations, err)
	}

	fmt.Printf("\nRun %s finished\n", res.RunID)
	fmt.Printf("Iterations:      %d\n", res.Iterations)
	fmt.Printf("Faces assigned:  %d\n", res.FacesAssigned)
	fmt.Printf("Persons created: %d\n", res.PersonsCreated)
	if res.Converged {
		fmt.Println("Converged: no further changes possible")
	} else {
		fmt.Println("Stopped at iteration cap before converging")
	}
	return nil
}
