package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mpetrik/photo-people/internal/cluster"
	"github.com/mpetrik/photo-people/internal/config"
	"github.com/mpetrik/photo-people/internal/names"
)

var facesStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show persons and face counts",
	Long: `Print every person with its face count, photo count and mean
detection confidence, plus library-wide totals.

Examples:
  # Everything
  photo-people faces stats

  # Single person; matching ignores case and diacritics
  photo-people faces stats --person "jan novak"`,
	RunE: runFacesStats,
}

func init() {
	facesCmd.AddCommand(facesStatsCmd)

	facesStatsCmd.Flags().String("person", "", "Only show persons matching this name")
}

func runFacesStats(cmd *cobra.Command, args []string) error {
	personFilter := mustGetString(cmd, "person")

	ctx := context.Background()
	cfg := config.Load()

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	engine := cluster.NewEngine(store, store, cluster.WithDimension(cfg.Detector.Dim))

	stats, err := engine.Stats(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCONFIRMED\tFACES\tPHOTOS\tAVG CONF")

	shown := 0
	for _, p := range stats.Persons {
		if personFilter != "" && !names.Match(p.Name, personFilter) {
			continue
		}
		confirmed := ""
		if p.Confirmed {
			confirmed = "yes"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%.2f\n",
			p.PersonID, p.Name, confirmed, p.FaceCount, p.PhotoCount, p.AvgConfidence)
		shown++
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if personFilter != "" && shown == 0 {
		fmt.Printf("No person matching %q\n", personFilter)
		return nil
	}

	if personFilter == "" {
		fmt.Printf("\nPersons:          %d\n", len(stats.Persons))
		fmt.Printf("Total faces:      %d\n", stats.TotalFaces)
		fmt.Printf("Unassigned faces: %d\n", stats.UnassignedFaces)
	}
	return nil
}
