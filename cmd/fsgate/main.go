// Package main is the entry point for the fsgate CLI.
//
// fsgate serves a small set of filesystem tools over the Model Context
// Protocol (MCP), restricted to operator-whitelisted directories. The
// startup sequence is:
//
// 1. Initialize logging
// 2. Collect roots from --root flags, or the config file when none given
// 3. Resolve and verify each root (symlinks resolved, must be a directory)
// 4. Build the containment policy and start the MCP stdio server
//
// The `roots` subcommand runs steps 2-3 and prints the outcome, so an
// operator can check a configuration without starting the server.
package main

import (
	"fmt"
	"os"

	"fsgate/internal/config"
	"fsgate/internal/guard"
	"fsgate/internal/logging"
	"fsgate/internal/mcpserver"

	"github.com/spf13/cobra"
)

var rootFlags []string

func main() {
	rootCmd := &cobra.Command{
		Use:     "fsgate",
		Short:   "MCP filesystem server restricted to whitelisted directories",
		Version: mcpserver.Version,
		Long: `fsgate exposes read, write, delete, move and list tools over MCP stdio.
Every tool call is validated against the whitelisted root directories;
paths that normalize, traverse, or symlink outside of them are refused.`,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server on stdio",
		RunE:  runServe,
	}
	serveCmd.Flags().StringArrayVar(&rootFlags, "root", nil,
		"directory to whitelist (repeatable; overrides the config file)")

	rootsCmd := &cobra.Command{
		Use:   "roots",
		Short: "Resolve and print the whitelisted directories",
		RunE:  runRoots,
	}
	rootsCmd.Flags().StringArrayVar(&rootFlags, "root", nil,
		"directory to whitelist (repeatable; overrides the config file)")

	initCmd := &cobra.Command{
		Use:   "init [dir ...]",
		Short: "Write a config file whitelisting the given directories",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runInit,
	}

	rootCmd.AddCommand(serveCmd, rootsCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// collectRoots returns the root URIs to whitelist: the --root flags when
// given, otherwise the config file's roots.
func collectRoots() ([]string, error) {
	if len(rootFlags) > 0 {
		return rootFlags, nil
	}

	if config.IsFirstRun() {
		return nil, fmt.Errorf("no roots given: pass --root or run 'fsgate init'")
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if len(cfg.Roots) == 0 {
		return nil, fmt.Errorf("config whitelists no roots: pass --root or run 'fsgate init'")
	}
	return cfg.Roots, nil
}

// resolvePolicy turns root URIs into a containment policy. Roots that
// cannot be used are reported and skipped; at least one must survive.
func resolvePolicy(logger *logging.AppLogger) (*guard.Policy, []guard.SkippedRoot, error) {
	uris, err := collectRoots()
	if err != nil {
		return nil, nil, err
	}

	descriptors := make([]guard.RootDescriptor, 0, len(uris))
	for _, uri := range uris {
		descriptors = append(descriptors, guard.RootDescriptor{URI: uri})
	}

	resolved, skipped := guard.ResolveRoots(descriptors)
	if len(resolved) == 0 {
		return nil, skipped, fmt.Errorf("no usable roots after resolution")
	}

	logger.Info("Roots resolved", "usable", len(resolved), "skipped", len(skipped))
	return guard.NewPolicy(resolved), skipped, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := logging.NewAppLogger()

	policy, skipped, err := resolvePolicy(logger)
	if err != nil {
		logger.Error("Startup failed", "error", err)
		return err
	}
	for _, s := range skipped {
		logger.Warn("Skipping root", "uri", s.URI, "reason", s.Kind.String())
	}

	srv := mcpserver.NewServer(policy, logger)
	if err := srv.Start(); err != nil {
		logger.Error("Server stopped with error", "error", err)
		return err
	}
	return nil
}

func runRoots(cmd *cobra.Command, args []string) error {
	logger := logging.NewAppLogger()

	policy, skipped, err := resolvePolicy(logger)
	if err != nil {
		for _, s := range skipped {
			fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s: %s\n", s.URI, s.Kind)
		}
		return err
	}

	for _, dir := range policy.AllowedDirs() {
		fmt.Fprintln(cmd.OutOrStdout(), dir)
	}
	for _, s := range skipped {
		fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s: %s\n", s.URI, s.Kind)
	}
	return nil
}

func runInit(cmd *cobra.Command, args []string) error {
	// Verify the directories before persisting them, so a typo is caught
	// now rather than at the next serve.
	descriptors := make([]guard.RootDescriptor, 0, len(args))
	for _, uri := range args {
		descriptors = append(descriptors, guard.RootDescriptor{URI: uri})
	}
	resolved, skipped := guard.ResolveRoots(descriptors)
	for _, s := range skipped {
		fmt.Fprintf(cmd.ErrOrStderr(), "rejected %s: %s\n", s.URI, s.Kind)
	}
	if len(resolved) == 0 {
		return fmt.Errorf("none of the given directories are usable")
	}

	if err := config.CreateNewConfig(args); err != nil {
		return err
	}
	path, _ := config.FindConfigFile()
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s with %d root(s)\n", path, len(args))
	return nil
}
