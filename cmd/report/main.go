// Command report prints accident tabulations and trend projections from a
// workbook, and renders the hourly projection grid as a line chart.
package main

import (
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/school-accident-trends/internal/adapter/workbook"
	"github.com/couchcryptid/school-accident-trends/internal/observability"
	"github.com/couchcryptid/school-accident-trends/internal/query"
)

// options are the flags shared by every subcommand.
type options struct {
	workbook  string
	schema    string
	dimension string
	region    string
	weekday   string
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "report",
		Short:        "School accident distributions and next-year projections",
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.workbook, "workbook", "w", "schoolData.xlsx", "accident workbook path")
	pf.StringVar(&opts.schema, "schema", "", "workbook schema YAML (default: embedded)")
	pf.StringVarP(&opts.dimension, "dimension", "d", "place", "dimension to tabulate (place, body_part, type, activity, object, grade)")
	pf.StringVarP(&opts.region, "region", "r", "서울", "region to filter on")
	pf.StringVar(&opts.weekday, "weekday", "월", "weekday token to filter on")

	root.AddCommand(summaryCmd(opts))
	root.AddCommand(gridCmd(opts))
	root.AddCommand(weekdaysCmd(opts))
	root.AddCommand(chartCmd(opts))
	return root
}

func summaryCmd(opts *options) *cobra.Command {
	var hourStart, hourEnd, target int

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Per-year counts and distributions with the projected distribution",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := openService(opts, cmd)
			if err != nil {
				return err
			}
			res, err := svc.Project(cmd.Context(), query.Query{
				Dimension:  opts.dimension,
				Region:     opts.region,
				Weekday:    opts.weekday,
				HourStart:  hourStart,
				HourEnd:    hourEnd,
				TargetYear: target,
			})
			if err != nil {
				return err
			}
			return writeSummary(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().IntVar(&hourStart, "hour-start", 0, "first hour of the range (inclusive)")
	cmd.Flags().IntVar(&hourEnd, "hour-end", 24, "end of the hour range (exclusive)")
	cmd.Flags().IntVar(&target, "target-year", 0, "year to project (default: latest year + 1)")
	return cmd
}

func gridCmd(opts *options) *cobra.Command {
	var g gridFlags

	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Projected share of every label for each hour",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := runGrid(cmd, opts, g)
			if err != nil {
				return err
			}
			return writeGrid(cmd.OutOrStdout(), res)
		},
	}

	g.register(cmd)
	return cmd
}

func weekdaysCmd(opts *options) *cobra.Command {
	var hourStart, hourEnd int

	cmd := &cobra.Command{
		Use:   "weekdays",
		Short: "Per-year counts and distributions split by weekday",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := openService(opts, cmd)
			if err != nil {
				return err
			}
			res, err := svc.Weekdays(cmd.Context(), query.WeekdayQuery{
				Dimension: opts.dimension,
				Region:    opts.region,
				HourStart: hourStart,
				HourEnd:   hourEnd,
			})
			if err != nil {
				return err
			}
			return writeWeekdays(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().IntVar(&hourStart, "hour-start", 0, "first hour of the range (inclusive)")
	cmd.Flags().IntVar(&hourEnd, "hour-end", 24, "end of the hour range (exclusive)")
	return cmd
}

func chartCmd(opts *options) *cobra.Command {
	var (
		g   gridFlags
		out string
	)

	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Render the hourly projection grid as a PNG line chart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := runGrid(cmd, opts, g)
			if err != nil {
				return err
			}
			if err := renderChart(out, res.Grid); err != nil {
				return err
			}
			cmd.Printf("wrote %s\n", out)
			return nil
		},
	}

	g.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "grid.png", "output image path (.png, .svg or .pdf)")
	return cmd
}

type gridFlags struct {
	from, to, target int
}

func (g *gridFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&g.from, "from", 6, "first hour slot")
	cmd.Flags().IntVar(&g.to, "to", 22, "end of the last hour slot (exclusive)")
	cmd.Flags().IntVar(&g.target, "target-year", 0, "year to project (default: latest year + 1)")
}

func runGrid(cmd *cobra.Command, opts *options, g gridFlags) (query.GridResult, error) {
	svc, err := openService(opts, cmd)
	if err != nil {
		return query.GridResult{}, err
	}
	return svc.Grid(cmd.Context(), query.GridQuery{
		Dimension:  opts.dimension,
		Region:     opts.region,
		Weekday:    opts.weekday,
		FromHour:   g.from,
		ToHour:     g.to,
		TargetYear: g.target,
	})
}

// openService loads the workbook and wraps it in a query service. Skipped
// years and load details are logged to stderr.
func openService(opts *options, cmd *cobra.Command) (*query.Service, error) {
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))

	schema, err := workbook.LoadSchema(opts.schema)
	if err != nil {
		return nil, err
	}
	ds, err := workbook.NewLoader(schema, logger).Load(opts.workbook)
	if err != nil {
		return nil, err
	}

	metrics := observability.NewMetricsWithRegistry(prometheus.NewRegistry())
	return query.NewService(ds, logger, metrics, query.DefaultOptions()), nil
}
