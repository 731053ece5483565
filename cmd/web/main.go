package main

import (
	"fmt"
	"os"

	"github.com/de-tools/social-atlas/pkg/server"
	"github.com/de-tools/social-atlas/pkg/services/catalog"
	"github.com/de-tools/social-atlas/pkg/services/config"
	"github.com/de-tools/social-atlas/pkg/services/normalizer"
	"github.com/de-tools/social-atlas/pkg/services/report"
	"github.com/de-tools/social-atlas/pkg/store/client"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	cfgPath      string
	profilesPath string
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the web server for Social Atlas",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to the YAML configuration file")
	rootCmd.Flags().StringVarP(&profilesPath, "profiles", "p", "",
		"Path to the INI profiles file used when a request names no profiles")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	logger := zerolog.New(os.Stdout).Level(cfg.Log.ZerologLevel()).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	catalogs, err := catalog.NewRegistry()
	if err != nil {
		return fmt.Errorf("failed to build metric catalogs: %w", err)
	}
	normalizers, err := normalizer.NewRegistry(catalogs, normalizer.DefaultFactories())
	if err != nil {
		return fmt.Errorf("failed to build normalizers: %w", err)
	}

	analytics, err := client.NewAnalyticsClient(client.Config{
		BaseURL:         cfg.API.BaseURL,
		Timeout:         cfg.API.Timeout(),
		UserAgent:       cfg.API.UserAgent,
		RateLimitPerSec: cfg.API.RateLimitPerSec,
		RateLimitBurst:  cfg.API.RateLimitBurst,
	})
	if err != nil {
		return fmt.Errorf("failed to create analytics client: %w", err)
	}

	var profiles config.ProfileRegistry
	if profilesPath != "" {
		profiles, err = config.NewProfileRegistry(profilesPath)
		if err != nil {
			return err
		}
		networks, _ := profiles.GetNetworks(ctx)
		logger.Info().Msgf("Profiles found at `%s` for %d networks", profilesPath, len(networks))
	}

	defaultMetrics, err := cfg.Report.DefaultMetrics()
	if err != nil {
		return err
	}

	webAPI := server.NewWebAPI(logger, server.Config{
		Addr: cfg.Server.Addr(),
		Dependencies: server.Dependencies{
			Generator:      report.NewGenerator(analytics, catalogs, normalizers),
			Catalogs:       catalogs,
			Profiles:       profiles,
			DefaultMetrics: defaultMetrics,
		},
	})

	return webAPI.Start()
}
