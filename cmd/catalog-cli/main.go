// Command catalog-cli browses the product catalog from a terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-faster/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/xenking/catalog-view/internal/catalog"
	"github.com/xenking/catalog-view/internal/console"
	"github.com/xenking/catalog-view/internal/domain/product"
	"github.com/xenking/catalog-view/internal/ui"
	"github.com/xenking/catalog-view/internal/view"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newApp().RunContext(ctx, os.Args)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "catalog-cli",
		Usage: "browse the product catalog; type help for commands",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "endpoint",
				Usage:   "catalog endpoint",
				Value:   catalog.DefaultURL,
				EnvVars: []string{"CATALOG_ENDPOINT"},
			},
			&cli.IntFlag{
				Name:    "size",
				Usage:   "initial page size (12, 24 or 36)",
				Value:   product.DefaultPageSize,
				EnvVars: []string{"CATALOG_SIZE"},
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Usage:   "timeout of a single upstream request",
				Value:   10 * time.Second,
				EnvVars: []string{"CATALOG_TIMEOUT"},
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "log fetch failures to stderr",
			},
		},
		Action: run,
	}
}

func run(c *cli.Context) error {
	lg, err := newLogger(c.Bool("debug"))
	if err != nil {
		return errors.Wrap(err, "create logger")
	}
	defer func() { _ = lg.Sync() }()

	client, err := catalog.NewClient(catalog.Options{
		URL:     c.String("endpoint"),
		Timeout: c.Duration("timeout"),
	})
	if err != nil {
		return errors.Wrap(err, "create catalog client")
	}

	settings := view.DefaultSettings()
	settings.PageSize = c.Int("size")

	con := console.New(client, settings, os.Stdout, lg, ui.DefaultLabels())
	return con.Run(c.Context, os.Stdin)
}

// newLogger logs to stderr so it never interleaves with the rendered view.
func newLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if debug {
		cfg.Level.SetLevel(zapcore.DebugLevel)
	}
	return cfg.Build()
}
