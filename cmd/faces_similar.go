package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mpetrik/photo-people/internal/config"
	"github.com/mpetrik/photo-people/internal/database"
)

var facesSimilarCmd = &cobra.Command{
	Use:   "similar [face-id]",
	Short: "Find faces similar to a given face",
	Long: `Find the stored faces most similar to a given face using an in-memory
HNSW index over the embeddings. Lower distance values indicate more
similar faces.

Examples:
  # Ten nearest faces
  photo-people faces similar 42

  # More results, stricter cutoff
  photo-people faces similar 42 --limit 25 --threshold 0.3`,
	Args: cobra.ExactArgs(1),
	RunE: runFacesSimilar,
}

func init() {
	facesCmd.AddCommand(facesSimilarCmd)

	facesSimilarCmd.Flags().Int("limit", 10, "Maximum number of results")
	facesSimilarCmd.Flags().Float64("threshold", 0.5, "Maximum cosine distance (lower = more similar)")
}

func runFacesSimilar(cmd *cobra.Command, args []string) error {
	limit := mustGetInt(cmd, "limit")
	threshold := mustGetFloat64(cmd, "threshold")

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

	query, err := store.GetFace(ctx, faceID)
	if err != nil {
		return fmt.Errorf("face %d: %w", faceID, err)
	}

	faces, err := store.ListClusterable(ctx)
	if err != nil {
		return err
	}

	index := database.NewHNSWIndex()
	index.BuildFromFaces(faces)
	fmt.Printf("Indexed %d faces\n", index.Len())

	// Over-fetch so the query face and distance cutoff still leave
	// enough results.
	ids, distances, err := index.Search(query.Embedding, limit*database.HNSWSearchMultiplier)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FACE\tDISTANCE\tPERSON\tPHOTO")

	shown := 0
	for i, id := range ids {
		if id == faceID || distances[i] > threshold {
			continue
		}
		if shown >= limit {
			break
		}
		face := index.GetFace(id)
		if face == nil {
			continue
		}
		person := "-"
		if face.Assigned() {
			person = strconv.FormatInt(*face.PersonID, 10)
		}
		fmt.Fprintf(w, "%d\t%.4f\t%s\t%s\n", id, distances[i], person, face.PhotoPath)
		shown++
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if shown == 0 {
		fmt.Println("No similar faces found")
	}
	return nil
}
