package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mpetrik/photo-people/internal/cluster"
	"github.com/mpetrik/photo-people/internal/config"
)

var facesPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete every unconfirmed person",
	Long: `Delete all persons that were created by clustering and never labeled
by a human. Their faces become unassigned again; embeddings are kept, so
a later clustering run can regroup them.

Confirmed (labeled) persons are never touched.

Examples:
  photo-people faces prune --yes`,
	RunE: runFacesPrune,
}

func init() {
	facesCmd.AddCommand(facesPruneCmd)

	facesPruneCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")
}

func runFacesPrune(cmd *cobra.Command, args []string) error {
	yes := mustGetBool(cmd, "yes")
	if !yes {
		return fmt.Errorf("this deletes every unconfirmed person; re-run with --yes to confirm")
	}

	ctx := context.Background()
	cfg := config.Load()

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	engine := cluster.NewEngine(store, store, cluster.WithDimension(cfg.Detector.Dim))

	res, err := engine.DeleteUnconfirmed(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Persons deleted: %d\n", res.PersonsDeleted)
	fmt.Printf("Faces released:  %d\n", res.FacesReleased)
	return nil
}
