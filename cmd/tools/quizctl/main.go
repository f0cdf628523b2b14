// cmd/tools/quizctl/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"broker-match-workers/internal/common/config"
	"broker-match-workers/internal/common/logger"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "quizctl",
		Short:         "Operate the broker matching quiz outside of a process instance",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: configs/config.yaml)")

	root.AddCommand(planCmd())
	root.AddCommand(rankCmd())
	root.AddCommand(restartCmd())
	root.AddCommand(reindexCmd())
	root.AddCommand(activitiesCmd())
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.LoadFromFile(cfgFile)
	}
	return config.Load()
}

func newLogger(cfg *config.Config) logger.Logger {
	return logger.NewStructured(cfg.Logging.Level, "console")
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
