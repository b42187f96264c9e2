package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mpetrik/photo-people/internal/cluster"
	"github.com/mpetrik/photo-people/internal/config"
)

var facesLabelCmd = &cobra.Command{
	Use:   "label [person-id] [name]",
	Short: "Name a person, merging into an existing person on name collision",
	Long: `Assign a human name to a person and mark it confirmed. Confirmed
persons survive 'faces prune'.

If another person already carries exactly that name, the two are merged:
every face moves to the existing person and the newly labeled one is
deleted. Name matching for merges is exact and case-sensitive.

Examples:
  # Name person 12
  photo-people faces label 12 "Jan Novak"

  # Merge person 15 into the existing "Jan Novak"
  photo-people faces label 15 "Jan Novak"`,
	Args: cobra.ExactArgs(2),
	RunE: runFacesLabel,
}

func init() {
	facesCmd.AddCommand(facesLabelCmd)
}

func runFacesLabel(cmd *cobra.Command, args []string) error {
	personID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid person id %q", args[0])
	}
	name := args[1]
	if name == "" {
		return fmt.Errorf("name must not be empty")
	}

	ctx := context.Background()
	cfg := config.Load()

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	engine := cluster.NewEngine(store, store,
		cluster.WithDimension(cfg.Detector.Dim),
		cluster.WithEvents(&cliEvents{}),
	)

	res, err := engine.Label(ctx, personID, name)
	if err != nil {
		return err
	}

	if res.Merged {
		fmt.Printf("Person %d merged into %q (id %d), %d faces moved\n",
			res.PersonID, res.Name, res.MergedInto, res.FacesMoved)
	} else {
		fmt.Printf("Person %d labeled %q\n", res.PersonID, res.Name)
	}
	return nil
}
