package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "photo-people",
	Short: "A CLI tool for grouping photo library faces into people",
	Long: `Photo People is a CLI application that detects faces in a photo
library, stores their identity embeddings and groups them into persons:
a full clustering pass for bootstrap, plus cheap incremental passes that
reconcile newly imported faces against the people it already knows.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
