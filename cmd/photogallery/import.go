package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Alexander-D-Karpov/photogallery/internal/services"
)

var importCmd = &cobra.Command{
	Use:   "import <base-dir>",
	Short: "Load a theme/collection/photo directory tree into the catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		importer := services.NewImportService(a.repo, a.ingest, a.cfg.ImportWorkers, a.logger)
		sum, err := importer.Import(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d photos in %d collections across %d themes (%d failed)\n",
			sum.Photos, sum.Collections, sum.Themes, sum.Failed)
		return nil
	},
}
