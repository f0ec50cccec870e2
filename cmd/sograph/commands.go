package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Fetch all active campaigns and write them to an XLSX workbook",
		Long: `Fetch every active campaign, group them by gem tier (1, 10, 20) and
write result_<DD_MM_YYYY_HH_MM_SS>.xlsx into SOGRAPH_ASSETS_DIR.

Prints the written path, or "no campaigns" when nothing was gathered.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			a, err := setup(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			path, err := a.service.ParseData(ctx)
			if err != nil {
				return fmt.Errorf("export campaigns: %w", err)
			}
			printExport(cmd, path)
			return nil
		},
	}
}

func newCheckinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkin",
		Short: "Perform the daily check-in",
		Long: `Perform the daily check-in and print the status code:

  0    already signed in today
  1    signed in now
  2    login required (credentials rejected)
  404  request failed
  any other value is the API's message, unchanged`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			a, err := setup(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			fmt.Fprintln(cmd.OutOrStdout(), a.service.CollectDaily(ctx))
			return nil
		},
	}
}

func newDailyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "daily",
		Short: "Check in and export campaigns concurrently",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			a, err := setup(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			var code, path string
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				code = a.service.CollectDaily(gctx)
				return nil
			})
			g.Go(func() error {
				var err error
				path, err = a.service.ParseData(gctx)
				if err != nil {
					return fmt.Errorf("export campaigns: %w", err)
				}
				return nil
			})
			if err := g.Wait(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "checkin: %s\n", code)
			printExport(cmd, path)
			return nil
		},
	}
}

func printExport(cmd *cobra.Command, path string) {
	if path == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "no campaigns")
		return
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
}
