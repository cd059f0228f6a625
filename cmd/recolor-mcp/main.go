package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ironsheep/facade-recolor/internal/config"
	"github.com/ironsheep/facade-recolor/internal/server"
	"github.com/ironsheep/facade-recolor/internal/visualizer"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "recolor-mcp",
	Short: "MCP server for wall and facade recoloring",
	Long: `recolor-mcp repaints walls and facades in photos while keeping their
shading. It communicates via MCP protocol over stdin/stdout; configure it in
your MCP client.

Settings come from an optional config file and RECOLOR_* environment
variables, e.g. RECOLOR_LOG_LEVEL=debug or RECOLOR_OUTPUT_DIR=~/recolor.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("recolor-mcp %s\n  Build time: %s\n  Git commit: %s\n", Version, BuildTime, GitCommit))
	rootCmd.Flags().StringVarP(&configFile, "config", "c", "", "config file (yaml, json or toml)")
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if cfg.Debug() {
		log.Printf("Recolor MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	viz, err := visualizer.FromConfig(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(viz)
	srv.SetVersion(Version)
	return srv.Run(ctx)
}

func main() {
	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
