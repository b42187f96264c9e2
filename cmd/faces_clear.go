package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mpetrik/photo-people/internal/config"
)

var facesClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all faces and persons",
	Long: `Delete every face row and every person from the database. Embeddings
are gone afterwards; photos must be re-extracted.

Examples:
  photo-people faces clear --yes`,
	RunE: runFacesClear,
}

func init() {
	facesCmd.AddCommand(facesClearCmd)

	facesClearCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")
}

func runFacesClear(cmd *cobra.Command, args []string) error {
	yes := mustGetBool(cmd, "yes")
	if !yes {
		return fmt.Errorf("this deletes every face and person; re-run with --yes to confirm")
	}

	ctx := context.Background()
	cfg := config.Load()

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	count, _ := store.CountFaces(ctx)

	if err := store.DeleteAllPersons(ctx); err != nil {
		return fmt.Errorf("failed to delete persons: %w", err)
	}
	if err := store.DeleteAllFaces(ctx); err != nil {
		return fmt.Errorf("failed to delete faces: %w", err)
	}

	fmt.Printf("Deleted %d faces and all persons\n", count)
	return nil
}
