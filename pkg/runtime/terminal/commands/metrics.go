package commands

import (
	"fmt"

	"github.com/de-tools/social-atlas/pkg/models/domain"
	"github.com/de-tools/social-atlas/pkg/runtime/terminal/console"
	"github.com/de-tools/social-atlas/pkg/services/catalog"
	"github.com/spf13/cobra"
)

type MetricsCmd struct {
	network  string
	catalogs *catalog.Registry
	reporter *console.Reporter
}

func NewMetricsCmd(catalogs *catalog.Registry, reporter *console.Reporter) *cobra.Command {
	mc := &MetricsCmd{catalogs: catalogs, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "List the metrics available for a network",
		RunE:  mc.run,
	}

	cmd.Flags().StringVar(&mc.network, "network", "", "Network to list metrics for (e.g., instagram)")
	_ = cmd.MarkFlagRequired("network")

	return cmd
}

func (mc *MetricsCmd) run(cmd *cobra.Command, _ []string) error {
	network, err := domain.ParseNetwork(mc.network)
	if err != nil {
		return err
	}
	c, err := mc.catalogs.Get(network)
	if err != nil {
		return fmt.Errorf("failed to load %s catalog: %w", network, err)
	}
	return mc.reporter.HandleCatalog(network, c.Metrics())
}
