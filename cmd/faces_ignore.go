package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mpetrik/photo-people/internal/config"
)

var facesIgnoreCmd = &cobra.Command{
	Use:   "ignore [face-id]",
	Short: "Exclude a face from clustering",
	Long: `Mark a face as ignored. Ignored faces keep their stored embedding but
are excluded from every clustering pass - useful for false detections
and background strangers.

Examples:
  # Ignore a face
  photo-people faces ignore 42

  # Bring it back
  photo-people faces ignore 42 --undo`,
	Args: cobra.ExactArgs(1),
	RunE: runFacesIgnore,
}

func init() {
	facesCmd.AddCommand(facesIgnoreCmd)

	facesIgnoreCmd.Flags().Bool("undo", false, "Clear the ignored flag instead of setting it")
}

func runFacesIgnore(cmd *cobra.Command, args []string) error {
	undo := mustGetBool(cmd, "undo")

	faceID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid face id %q", args[0])
	}

	ctx := context.Background()
	cfg := config.Load()

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.SetIgnored(ctx, faceID, !undo); err != nil {
		return fmt.Errorf("face %d: %w", faceID, err)
	}

	if undo {
		fmt.Printf("Face %d is clusterable again\n", faceID)
	} else {
		fmt.Printf("Face %d ignored\n", faceID)
	}
	return nil
}
