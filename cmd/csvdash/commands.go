package main

import (
	"errors"
	"fmt"

	"csvdash/internal/cli"
	"csvdash/internal/config"
	"csvdash/internal/engine"
	"csvdash/internal/log"
	"csvdash/internal/session"

	"github.com/spf13/cobra"
)

type app struct {
	cfg     *config.Config
	logger  *log.Logger
	session *session.Session
	file    string
}

func newRootCmd() *cobra.Command {
	a := &app{cfg: config.Load()}

	root := &cobra.Command{
		Use:           "csvdash",
		Short:         "Explore a CSV or Parquet file from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			a.logger = a.cfg.Logger(log.ComponentCLI)
			log.SetDefault(a.logger)
			if a.file == "" {
				a.file = a.cfg.DataFile
			}
			if a.file == "" {
				return errors.New("no data file: pass --file or set DATA_FILE")
			}
			a.session = session.New(a.logger)
			return a.session.Load(a.file)
		},
	}
	root.PersistentFlags().StringVarP(&a.file, "file", "f", "", "CSV or Parquet file to load (default $DATA_FILE)")
	root.PersistentFlags().StringVarP(&a.cfg.OutputDir, "output", "o", a.cfg.OutputDir, "directory for rendered charts")
	root.PersistentFlags().StringVar(&a.cfg.LogLevel, "log-level", a.cfg.LogLevel, "debug, info, warn or error")

	root.AddCommand(a.menuCmd(), a.summaryCmd(), a.catalogCmd(), a.topCmd(), a.plotCmd())
	return root
}

func (a *app) options() cli.Options {
	return cli.Options{
		OutputDir:      a.cfg.OutputDir,
		TopGroupColumn: a.cfg.TopGroupColumn,
		TopValueColumn: a.cfg.TopValueColumn,
		TopN:           a.cfg.TopN,
		ChartWidth:     a.cfg.ChartWidth,
		ChartHeight:    a.cfg.ChartHeight,
	}
}

func (a *app) menuCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Interactive text dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.NewMenu(a.session, a.options(), cmd.InOrStdin(), cmd.OutOrStdout(), a.logger).Run()
		},
	}
}

func (a *app) summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Row count, missing values and numeric column statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.session.Summary()
			if err != nil {
				return err
			}
			cli.PrintSummary(cmd.OutOrStdout(), s)
			return nil
		},
	}
}

func (a *app) catalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List date, categorical and numeric columns",
		RunE: func(cmd *cobra.Command, args []string) error {
			cli.PrintCatalog(cmd.OutOrStdout(), a.session.Snapshot().Catalog)
			return nil
		},
	}
}

func (a *app) topCmd() *cobra.Command {
	var chartOut bool
	cmd := &cobra.Command{
		Use:   "top",
		Short: "Largest category totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := a.options()
			items, err := a.session.Top(opts.TopGroupColumn, opts.TopValueColumn, opts.TopN)
			if err != nil {
				return err
			}
			title := fmt.Sprintf("Top %d %s by %s", opts.TopN, opts.TopGroupColumn, opts.TopValueColumn)
			cli.PrintTop(cmd.OutOrStdout(), title, items)
			if !chartOut || len(items) == 0 {
				return nil
			}
			path, err := cli.SaveTopChart(opts, title, items)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Chart saved to %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&a.cfg.TopGroupColumn, "group", a.cfg.TopGroupColumn, "column to group by")
	cmd.Flags().StringVar(&a.cfg.TopValueColumn, "value", a.cfg.TopValueColumn, "numeric column to sum")
	cmd.Flags().IntVarP(&a.cfg.TopN, "limit", "n", a.cfg.TopN, "number of groups")
	cmd.Flags().BoolVar(&chartOut, "chart", false, "also write a bar chart PNG")
	return cmd
}

func (a *app) plotCmd() *cobra.Command {
	var sel session.Selection
	var export string
	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Sum a numeric column per date for one category value and chart it",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if err := a.session.Apply(sel); err != nil {
				return err
			}
			series, err := a.session.Series()
			if engine.IsNotice(err) {
				cli.Notice(out, err.Error())
				return nil
			}
			if err != nil {
				return err
			}
			if len(series.Points) == 0 {
				cli.Notice(out, "No rows match the current selection.")
				return nil
			}

			cli.PrintSeries(out, series)
			path, err := cli.SaveSeriesChart(a.options(), series, a.session.Snapshot().Selection.CategoryValue)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Chart saved to %s\n", path)

			if export != "" {
				if err := engine.ExportSeries(export, series.Points, series.YLabel); err != nil {
					return err
				}
				fmt.Fprintf(out, "Series exported to %s\n", export)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&sel.CategoryColumn, "category", "", "categorical column to filter on (default first)")
	cmd.Flags().StringVar(&sel.CategoryValue, "value", "", "category value to keep (default first)")
	cmd.Flags().StringVar(&sel.ValueColumn, "column", "", "numeric column to sum (default first)")
	cmd.Flags().StringVar(&export, "export", "", "also write the series to a .csv or .parquet file")
	return cmd
}
