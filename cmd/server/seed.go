package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/99minutos/delivery-dispatch/internal/core/domain"
	"github.com/99minutos/delivery-dispatch/internal/infrastructure/seed"
)

const defaultZonesFile = "config/zones.yaml"

func seedZonesCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed-zones",
		Short: "Upsert delivery zones from a YAML file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := setup(ctx)
			if err != nil {
				return err
			}
			defer a.close(ctx)

			zones, err := seed.LoadZonesFile(ctx, file, a.zones)
			if err != nil {
				return err
			}
			printZones(zones)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", defaultZonesFile, "zones YAML file")
	return cmd
}

func (a *app) seedZones(ctx context.Context, path string) error {
	zones, err := seed.LoadZonesFile(ctx, path, a.zones)
	if err != nil {
		return fmt.Errorf("seed zones: %w", err)
	}
	a.log.Info().Str("file", path).Int("zones", len(zones)).Msg("zones seeded")
	return nil
}

func printZones(zones []*domain.Zone) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Code", "Name", "Type", "Radius km", "Base fee", "Per km", "Active"})
	for _, z := range zones {
		r := z.EffectiveRates()
		t.AppendRow(table.Row{z.Code, z.Name, z.Type, z.RadiusKm, r.BaseFee, r.PerDistanceRate, z.IsActive})
	}
	t.AppendFooter(table.Row{"", "", "", "", "", "Total", len(zones)})
	t.Render()
}
