package main

import (
	"errors"
	"fmt"
	"os"

	"application-builder/pkg/registry"

	"github.com/spf13/cobra"
)

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Maintain the activity registry",
}

var registryValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the activity registry file",
	Args:  cobra.NoArgs,
	RunE:  runRegistryValidate,
}

var registryInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the built-in activity registry to a file",
	Args:  cobra.NoArgs,
	RunE:  runRegistryInit,
}

var (
	registryPath  string
	registryForce bool
)

func init() {
	registryCmd.PersistentFlags().StringVarP(&registryPath, "path", "p", "configs/activity-registry.json", "Path to registry file")
	registryInitCmd.Flags().BoolVar(&registryForce, "force", false, "Overwrite an existing file")

	registryCmd.AddCommand(registryValidateCmd, registryInitCmd)
	rootCmd.AddCommand(registryCmd)
}

func runRegistryValidate(cmd *cobra.Command, _ []string) error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return fmt.Errorf("registry validation failed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Registry validation passed. Found %d activities.\n", len(reg.Activities))
	return nil
}

func runRegistryInit(cmd *cobra.Command, _ []string) error {
	if _, err := os.Stat(registryPath); err == nil && !registryForce {
		return fmt.Errorf("%s already exists, use --force to overwrite", registryPath)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := registry.SaveRegistry(registry.DefaultRegistry(), registryPath); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", registryPath)
	return nil
}
