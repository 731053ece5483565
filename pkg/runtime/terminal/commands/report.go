package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/de-tools/social-atlas/pkg/models/domain"
	"github.com/de-tools/social-atlas/pkg/runtime/export"
	"github.com/de-tools/social-atlas/pkg/runtime/terminal/console"
	"github.com/de-tools/social-atlas/pkg/services/config"
	"github.com/de-tools/social-atlas/pkg/services/report"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

type ReportCmd struct {
	configPath   string
	profilesPath string
	period       string
	from         string
	to           string
	networks     []string
	metrics      []string
	output       string
	upload       bool
	deps         Deps
	reporter     *console.Reporter
}

func NewReportCmd(deps Deps, reporter *console.Reporter) *cobra.Command {
	rc := &ReportCmd{deps: deps, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate a social analytics workbook",
		RunE:  rc.run,
	}

	cmd.Flags().StringVar(&rc.configPath, "config", "", "Path to the YAML configuration file")
	cmd.Flags().StringVar(&rc.profilesPath, "profiles", "", "Path to the INI file listing profiles per network")
	cmd.Flags().StringVar(&rc.period, "period", "", "Aggregation period: daily, monthly, quarterly or yearly")
	cmd.Flags().StringVar(&rc.from, "from", "", "First day of the report (YYYY-MM-DD)")
	cmd.Flags().StringVar(&rc.to, "to", "", "Last day of the report (YYYY-MM-DD)")
	cmd.Flags().StringSliceVar(&rc.networks, "network", nil, "Network to include; defaults to every network in the profiles file")
	cmd.Flags().StringArrayVar(&rc.metrics, "metrics", nil, "Metric selection as network=id1,id2")
	cmd.Flags().StringVar(&rc.output, "output", "", "Workbook path; defaults to a generated name in export.output_dir")
	cmd.Flags().BoolVar(&rc.upload, "upload", false, "Upload the workbook to the configured S3 bucket")

	_ = cmd.MarkFlagRequired("profiles")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func (rc *ReportCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logger := zerolog.Ctx(ctx)

	cfg, err := config.Load(rc.configPath)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(cfg.Log.ZerologLevel())

	reportCfg, err := rc.reportConfig(cmd, cfg)
	if err != nil {
		return err
	}

	fetcher, err := rc.deps.NewFetcher(cfg.API)
	if err != nil {
		return fmt.Errorf("failed to create analytics client: %w", err)
	}

	bar := newNetworkBar(cmd.ErrOrStderr(), reportCfg.Networks)
	generator := report.NewGenerator(fetcher, rc.deps.Catalogs, rc.deps.Normalizers,
		report.WithProgress(func(network domain.Network, _ error) {
			bar.Describe(network.DisplayName())
			_ = bar.Add(1)
		}),
	)

	rep, err := generator.GenerateReport(ctx, reportCfg)
	_ = bar.Finish()
	if errors.Is(err, report.ErrNoData) {
		_ = rc.reporter.Handle(rep)
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	path := rc.output
	if path == "" {
		path = filepath.Join(cfg.Export.OutputDir, export.FileName(rep))
	}
	if err := export.SaveWorkbook(path, rep); err != nil {
		return err
	}
	logger.Info().Str("path", path).Msg("workbook saved")
	outputs := []string{path}

	if rc.upload {
		location, err := rc.uploadWorkbook(cmd, cfg.Export.S3, path)
		if err != nil {
			return err
		}
		outputs = append(outputs, location)
	}

	return rc.reporter.Handle(rep, outputs...)
}

func (rc *ReportCmd) uploadWorkbook(cmd *cobra.Command, cfg config.S3Config, path string) (string, error) {
	ctx := cmd.Context()

	uploader, err := rc.deps.NewUploader(ctx, cfg)
	if err != nil {
		return "", fmt.Errorf("failed to create uploader: %w", err)
	}
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return uploader.Upload(ctx, f, export.ContentType)
}

func (rc *ReportCmd) reportConfig(cmd *cobra.Command, cfg *config.Config) (domain.ReportConfig, error) {
	ctx := cmd.Context()

	profiles, err := config.NewProfileRegistry(rc.profilesPath)
	if err != nil {
		return domain.ReportConfig{}, err
	}

	var networks []domain.Network
	if len(rc.networks) > 0 {
		for _, name := range rc.networks {
			network, err := domain.ParseNetwork(name)
			if err != nil {
				return domain.ReportConfig{}, err
			}
			networks = append(networks, network)
		}
	} else {
		networks, err = profiles.GetNetworks(ctx)
		if err != nil {
			return domain.ReportConfig{}, err
		}
	}

	profilesByNetwork, err := config.ProfilesByNetwork(ctx, profiles, networks)
	if err != nil {
		return domain.ReportConfig{}, err
	}

	metrics, err := cfg.Report.DefaultMetrics()
	if err != nil {
		return domain.ReportConfig{}, err
	}
	overrides, err := ParseMetricSelections(rc.metrics)
	if err != nil {
		return domain.ReportConfig{}, err
	}
	for network, ids := range overrides {
		metrics[network] = ids
	}

	period := rc.period
	if period == "" {
		period = cfg.Report.Period
	}

	return domain.ReportConfig{
		Period:            domain.Period(period),
		StartDate:         rc.from,
		EndDate:           rc.to,
		Networks:          networks,
		ProfilesByNetwork: profilesByNetwork,
		MetricsByNetwork:  metrics,
	}, nil
}

// ParseMetricSelections reads "network=id1,id2" flag values.
func ParseMetricSelections(values []string) (map[domain.Network][]string, error) {
	out := make(map[domain.Network][]string, len(values))
	for _, value := range values {
		name, list, ok := strings.Cut(value, "=")
		if !ok {
			return nil, fmt.Errorf("invalid metric selection %q, expected network=id1,id2", value)
		}
		network, err := domain.ParseNetwork(name)
		if err != nil {
			return nil, err
		}
		for _, id := range strings.Split(list, ",") {
			if id = strings.TrimSpace(id); id != "" {
				out[network] = append(out[network], id)
			}
		}
	}
	return out, nil
}

// newNetworkBar advances once per distinct network, matching the generator.
func newNetworkBar(w io.Writer, networks []domain.Network) *progressbar.ProgressBar {
	return progressbar.NewOptions(len(lo.Uniq(networks)),
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("fetching networks"),
		progressbar.OptionClearOnFinish(),
	)
}
