package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	ytsubs "github.com/xybydy/go-ytsubs"
	"github.com/xybydy/go-ytsubs/pkg/youtube"
)

var (
	flagAddr    string
	flagPort    int
	flagMetrics bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the transcript HTTP API",
	Args:  cobra.NoArgs,
	RunE:  serveRun,
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "Interface to bind to (default \"localhost\")")
	serveCmd.Flags().IntVarP(&flagPort, "port", "p", 0, "Port to listen on (default 8000)")
	serveCmd.Flags().BoolVar(&flagMetrics, "metrics", false, "Expose Prometheus metrics on /metrics")
}

// applyServeFlags copies the serve flags that were set into cfg.
func applyServeFlags(cmd *cobra.Command) {
	if cmd != serveCmd {
		return
	}
	if flagAddr != "" {
		cfg.BindAddr = flagAddr
	}
	if flagPort != 0 {
		cfg.Port = flagPort
	}
	if cmd.Flags().Changed("metrics") {
		cfg.Metrics = flagMetrics
	}
}

func serveRun(cmd *cobra.Command, args []string) error {
	client := youtube.NewClient(cfg.ClientOptions(), logger)

	opts := cfg.Options(logger)
	opts.Version = version
	server, err := ytsubs.NewServer(client, opts)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	logger.Info("Starting ytsubs", zap.String("version", version))
	server.Run(nil)
	return nil
}
