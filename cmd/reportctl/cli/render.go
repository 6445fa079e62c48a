package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/odyssey-erp/tesoreria/internal/app"
	"github.com/odyssey-erp/tesoreria/internal/fetch"
	"github.com/odyssey-erp/tesoreria/internal/platform/cache"
	"github.com/odyssey-erp/tesoreria/internal/reporting"
)

type renderOptions struct {
	urls    []string
	out     string
	refresh bool
}

func newRenderCommand(root *rootOptions) *cobra.Command {
	opts := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Fetch the CSV files and write the PDF report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, root, opts)
		},
	}
	cmd.Flags().StringSliceVarP(&opts.urls, "url", "u", nil, "CSV URLs, comma separated or repeated")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Output file (default reporte-<timestamp>.pdf, - for stdout)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "Download again even when REDIS_ADDR holds a cached copy")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}

func runRender(cmd *cobra.Command, root *rootOptions, opts *renderOptions) error {
	urls, err := fetch.ParseURLList(strings.Join(opts.urls, ","))
	if err != nil {
		return err
	}

	cfg, err := app.LoadConfig(root.envFile)
	if err != nil {
		return err
	}
	cfg.LogLevel = "warn"
	if root.verbose {
		cfg.LogLevel = "debug"
	}
	logger := app.NewLoggerTo(cmd.ErrOrStderr(), cfg)

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient, err = cache.New(cmd.Context(), cfg.RedisAddr)
		if err != nil {
			logger.Warn("redis unavailable, csv cache disabled", slog.Any("error", err))
		} else {
			defer func() { _ = redisClient.Close() }()
		}
	}
	service, err := app.NewReportService(cfg, logger, nil, redisClient)
	if err != nil {
		return err
	}

	result, err := service.Generate(cmd.Context(), reporting.Request{URLs: urls, Refresh: opts.refresh})
	if err != nil {
		return err
	}

	if opts.out == "-" {
		_, err := cmd.OutOrStdout().Write(result.PDF)
		return err
	}
	path := opts.out
	if path == "" {
		path = result.Filename
	}
	if err := writeFile(path, result.PDF); err != nil {
		return err
	}

	out := cmd.ErrOrStderr()
	fmt.Fprintf(out, "wrote %s (%d pages, %d bytes)\n", path, result.Pages, len(result.PDF))
	for _, f := range result.Failures {
		fmt.Fprintf(out, "warning: %v\n", f)
	}
	if n := len(result.Warnings); n > 0 {
		fmt.Fprintf(out, "warning: %d values could not be read as numbers\n", n)
	}
	return nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
