// Package main implements matchctl, an offline tool that scores candidate
// profile files against job rule files without a database.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "matchctl",
	Short: "Score candidate profiles against job rules offline",
	Long: `matchctl validates job rule files and scores candidate profile documents
against them with the same engine the API uses. Rule and profile files may be
YAML or JSON. Only the jaccard and fuzzy DESCRIPTIVE methods are available
offline.`,
	SilenceUsage: true,
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
