// Package main provides builderctl, the operator CLI for the application builder.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "builderctl",
	Short: "Application builder tooling",
	Long:  "builderctl previews cover letter templates and maintains the activity registry used by builder-manager.",
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
