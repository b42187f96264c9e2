package cmd

import (
	"github.com/spf13/cobra"
)

var facesCmd = &cobra.Command{
	Use:   "faces",
	Short: "Detect, cluster and label faces in a photo library",
}

func init() {
	rootCmd.AddCommand(facesCmd)
}
