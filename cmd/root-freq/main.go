// Command root-freq computes per-sura root frequency statistics from the
// Quranic Arabic Corpus morphology file and writes them as JSON.
//
// Usage:
//
//	go run ./cmd/root-freq [-config rootfreq.yaml]
//
// Without a config file the defaults read data/quranic-corpus-morphology-0.4.txt
// and write data/roots-freq.json. ROOTFREQ_* environment variables override
// both.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cognicore/rootfreq/internal/logger"
	"github.com/cognicore/rootfreq/pkg/rootfreq"
	"github.com/cognicore/rootfreq/pkg/rootfreq/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("root-freq", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Optional: path to YAML config file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "failed to load config: %v\n", err)
		return 1
	}

	logger.SetupWriter(stderr, cfg.Logging.Level, cfg.Logging.Format)

	res, err := rootfreq.Run(ctx, rootfreq.Options{
		Config: cfg,
		Logger: logger.WithComponent("rootfreq"),
	})
	if err != nil {
		slog.Error("root frequency run failed", "error", err)
		return 1
	}

	fmt.Fprintf(stdout, "Wrote: %s (suras: %d, roots: %d, tokens: %d)\n",
		cfg.Output,
		len(res.Report.Suras),
		res.Report.Meta.RootVocabSize,
		res.Report.Meta.TotalRootTokens,
	)
	return 0
}
