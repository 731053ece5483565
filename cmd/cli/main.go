package main

import (
	"context"
	"fmt"
	"os"

	"github.com/de-tools/social-atlas/pkg/runtime/terminal"
	"github.com/de-tools/social-atlas/pkg/runtime/terminal/commands"
	"github.com/de-tools/social-atlas/pkg/services/catalog"
	"github.com/de-tools/social-atlas/pkg/services/config"
	"github.com/de-tools/social-atlas/pkg/services/normalizer"
	"github.com/de-tools/social-atlas/pkg/services/report"
	"github.com/de-tools/social-atlas/pkg/store/client"
	"github.com/de-tools/social-atlas/pkg/store/s3"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	// .env is optional for the CLI; flags and the config file are enough.
	_ = godotenv.Load()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	ctx := logger.WithContext(context.Background())

	catalogs, err := catalog.NewRegistry()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	normalizers, err := normalizer.NewRegistry(catalogs, normalizer.DefaultFactories())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cli := terminal.NewCLI(terminal.Options{
		Deps: commands.Deps{
			Catalogs:    catalogs,
			Normalizers: normalizers,
			NewFetcher: func(cfg config.APIConfig) (report.Fetcher, error) {
				return client.NewAnalyticsClient(client.Config{
					BaseURL:         cfg.BaseURL,
					Timeout:         cfg.Timeout(),
					UserAgent:       cfg.UserAgent,
					RateLimitPerSec: cfg.RateLimitPerSec,
					RateLimitBurst:  cfg.RateLimitBurst,
				})
			},
			NewUploader: func(ctx context.Context, cfg config.S3Config) (commands.Uploader, error) {
				return s3.NewUploaderFromConfig(ctx, cfg.Bucket, cfg.Prefix, cfg.AWSProfile, cfg.Region)
			},
		},
		Output: os.Stdout,
	})

	if err := cli.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
