// Command server runs the delivery dispatch API and its maintenance tasks.
//
//	server serve        HTTP API, location workers and the periodic reconciler
//	server reconcile    one reconciliation pass, printed as a table
//	server seed-zones   upsert zones from a YAML file
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// @title                       Delivery Dispatch API
// @version                     1.0
// @description                 Last-mile delivery pricing, dispatch, lifecycle and live tracking.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	root := &cobra.Command{
		Use:           "server",
		Short:         "Delivery dispatch and fee engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), reconcileCmd(), seedZonesCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
