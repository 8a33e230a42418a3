package main

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func reconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Run one reconciliation pass and exit",
		Long: `Settles pending agent bookkeeping, releases agent claims whose shipment
no longer needs them and re-dispatches PENDING shipments.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := setup(ctx)
			if err != nil {
				return err
			}
			defer a.close(ctx)

			report, err := a.reconciler.RunOnce(ctx)

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row{"Step", "Count"})
			t.AppendRow(table.Row{"effects settled", report.EffectsSettled})
			t.AppendRow(table.Row{"effects failed", report.EffectsFailed})
			t.AppendRow(table.Row{"claims released", report.ClaimsReleased})
			t.AppendRow(table.Row{"shipments dispatched", report.Dispatched})
			t.Render()

			return err
		},
	}
}
