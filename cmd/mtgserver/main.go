// Command mtgserver hosts the search_mtg_cards tool over MCP.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/spachava753/mtgmcp/internal/commands"
	"github.com/spachava753/mtgmcp/internal/config"
	"github.com/spachava753/mtgmcp/internal/version"
)

var (
	configPath string
	httpAddr   string
	logFile    string
	schemaOut  string
)

var rootCmd = &cobra.Command{
	Use:   "mtgserver",
	Short: "MCP tool host for Magic: The Gathering card search",
	Long: `mtgserver exposes the search_mtg_cards tool over the Model Context Protocol.
It speaks MCP on stdin/stdout by default, or streamable HTTP with --http.
Diagnostics go to stderr; every tool call is appended to mcp-tool-calls.log.`,
	Version:       version.Get(),
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		// stdout carries the MCP stream
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
		slog.SetDefault(logger)

		return commands.ExecuteServe(cmd.Context(), commands.ServeOptions{
			Config:   cfg,
			HTTPAddr: httpAddr,
			LogFile:  logFile,
			Logger:   logger,
		})
	},
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of the configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := config.Schema()
		if err != nil {
			return err
		}
		if schemaOut == "" {
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		}
		if err := os.MkdirAll(filepath.Dir(schemaOut), 0o755); err != nil {
			return fmt.Errorf("creating schema directory: %w", err)
		}
		if err := os.WriteFile(schemaOut, append(data, '\n'), 0o644); err != nil {
			return fmt.Errorf("writing schema: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Generated schema: %s\n", schemaOut)
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "", "Path to configuration file (default: ./mtgmcp.yaml, then the user config dir)")
	rootCmd.Flags().StringVar(&httpAddr, "http", "", "Serve streamable HTTP on this address instead of stdio, e.g. :8080")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "Path of the tool call log (default: mcp-tool-calls.log next to the executable)")
	schemaCmd.Flags().StringVarP(&schemaOut, "output", "o", "", "Write the schema to this file instead of stdout, e.g. schema/mtgmcp-config-schema.json")
	rootCmd.AddCommand(schemaCmd)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}
}
