// Command primefan counts primes in [1, 10000] with one worker process per
// range of 1000.
//
// Run without arguments, it is the orchestrator: it re-runs itself once per
// range and forwards the output of all workers to stdout. Run with two
// integers, it is a worker scanning that range. Anything else is a usage
// error.
//
// Logs go to stderr. Settings are read from the environment:
//
//	PRIMEFAN_LOG_LEVEL     debug, info, warn or error (default info)
//	PRIMEFAN_LOG_DEV       coloured console logs instead of JSON
//	PRIMEFAN_DRAIN_GRACE   how long to keep reading a worker's output after it exited (default 2s)
//	PRIMEFAN_METRICS_FILE  write Prometheus metrics to this file after the run
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ridge/fanout"
	"github.com/ridge/fanout/internal/config"
	"github.com/ridge/fanout/internal/logging"
	"github.com/ridge/fanout/internal/primes"
)

const version = "dev"

const (
	workerCount = 10
	rangeSize   = 1000
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code := fanout.ExitOK
	root := newRootCommand(&code, stdout, stderr)
	// cobra falls back to os.Args for a nil slice
	if args == nil {
		args = []string{}
	}
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		return fanout.ExitUsage
	}
	return code
}

func newRootCommand(code *int, stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "primefan [<start> <end>]",
		Short: "Count primes with a pool of worker processes",
		// Range bounds may be negative: "-5" is an argument, not a flag
		DisableFlagParsing: true,
		Args:               orchestratorOrWorkerArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			args, meta := splitArgs(args)
			switch {
			case meta == "help":
				cmd.SetOut(stdout)
				return cmd.Help()
			case meta == "version":
				fmt.Fprintf(stdout, "primefan version %s\n", version)
			case len(args) == 2:
				*code = fanout.RunWorker(cmd.Context(), args, primes.Reporter{RangeSize: rangeSize}.Scan, stdout, stderr)
			default:
				*code = orchestrate(cmd.Context(), stdout, stderr)
			}
			return nil
		},
	}
	cmd.Flags().BoolP("version", "v", false, "print the version and exit")
	// stdout carries worker output only; usage and errors go to stderr
	cmd.SetOut(stderr)
	cmd.SetErr(stderr)
	return cmd
}

// splitArgs drops a leading "--" and recognizes a lone --help or --version.
// Arguments after "--" are always positional.
func splitArgs(args []string) (positional []string, meta string) {
	if len(args) > 0 && args[0] == "--" {
		return args[1:], ""
	}
	if len(args) == 1 {
		switch args[0] {
		case "-h", "--help":
			return nil, "help"
		case "-v", "--version":
			return nil, "version"
		}
	}
	return args, ""
}

func orchestratorOrWorkerArgs(cmd *cobra.Command, args []string) error {
	args, meta := splitArgs(args)
	if meta != "" {
		return nil
	}
	switch len(args) {
	case 0, 2:
		return nil
	default:
		return fmt.Errorf("accepts no arguments or <start> <end>, received %d", len(args))
	}
}

// orchestrate runs the whole pool. opts are applied after the defaults built
// from the environment.
func orchestrate(ctx context.Context, stdout, stderr io.Writer, opts ...fanout.Option) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "primefan: %v\n", err)
		return fanout.ExitError
	}

	logger, err := logging.New(cfg.Logger())
	if err != nil {
		fmt.Fprintf(stderr, "primefan: build logger: %v\n", err)
		return fanout.ExitError
	}
	defer func() { _ = logger.Sync() }()

	plan, err := fanout.Partition(workerCount, rangeSize)
	if err != nil {
		logger.Error("partitioning work", zap.Error(err))
		return fanout.ExitError
	}

	metrics := fanout.NewPrometheusMetricsCollector("primefan")
	orch := fanout.New(plan, append([]fanout.Option{
		fanout.WithOutput(stdout),
		fanout.WithLogger(logger),
		fanout.WithMetrics(metrics),
		fanout.WithDrainGrace(cfg.Drain.Grace),
	}, opts...)...)

	_, runErr := orch.Run(ctx)

	if cfg.Metrics.File != "" {
		if err := metrics.WriteToTextfile(cfg.Metrics.File); err != nil {
			logger.Warn("writing metrics", zap.String("path", cfg.Metrics.File), zap.Error(err))
		}
	}

	if runErr != nil {
		fmt.Fprintf(stderr, "primefan: %v\n", runErr)
		return fanout.ExitError
	}
	return fanout.ExitOK
}
