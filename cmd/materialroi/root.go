package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	analyticsapp "materialroi/internal/analytics/application"
	analyticsdomain "materialroi/internal/analytics/domain"
	"materialroi/internal/bootstrap"
	"materialroi/internal/config"
	exportdomain "materialroi/internal/export/domain"
	shareddomain "materialroi/internal/shared/domain"
	"materialroi/internal/telemetry"
)

// options regroupe les drapeaux communs à toutes les sous-commandes
type options struct {
	envFile      string
	sample       bool
	month        string
	regions      []string
	provinces    []string
	categories   []string
	salespersons []string
	distributors []string
	asJSON       bool
}

func (o *options) query() (analyticsapp.Query, error) {
	q := analyticsapp.Query{Sample: o.sample}
	if o.month != "" {
		m, err := shareddomain.ParseMonth(o.month)
		if err != nil {
			return q, fmt.Errorf("invalid --month: %w", err)
		}
		q.Filter.Month = m
	}
	q.Filter.Regions = o.regions
	q.Filter.Provinces = o.provinces
	q.Filter.Categories = o.categories
	q.Filter.Salespersons = o.salespersons
	q.Filter.Distributors = o.distributors
	return q, nil
}

func newRootCmd(ctx context.Context) *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "materialroi",
		Short:         "Promotional material ROI analysis for distributors",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.envFile, "env", ".env", "environment file")
	flags.BoolVar(&opts.sample, "sample", false, "analyze the generated sample ledger")
	flags.StringVar(&opts.month, "month", "", "restrict to one month (YYYY-MM)")
	flags.StringSliceVar(&opts.regions, "region", nil, "regions to keep")
	flags.StringSliceVar(&opts.provinces, "province", nil, "provinces to keep")
	flags.StringSliceVar(&opts.categories, "category", nil, "material categories to keep")
	flags.StringSliceVar(&opts.salespersons, "salesperson", nil, "salespersons to keep")
	flags.StringSliceVar(&opts.distributors, "distributor", nil, "distributor names to keep")
	flags.BoolVar(&opts.asJSON, "json", false, "print JSON instead of tables")

	root.AddCommand(analyzeCmd(ctx, opts))
	root.AddCommand(recommendCmd(ctx, opts))
	root.AddCommand(strategiesCmd(ctx, opts))
	root.AddCommand(exportCmd(ctx, opts))
	return root
}

// withApp charge la configuration, construit l'application et exécute fn
func withApp(ctx context.Context, opts *options, fn func(app *bootstrap.App) error) error {
	cfg, err := config.Load(opts.envFile)
	if err != nil {
		return err
	}
	logger := telemetry.NewLogger(cfg.LogLevel, true)

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(app)
}

func report(ctx context.Context, opts *options, app *bootstrap.App) (*analyticsdomain.Report, error) {
	q, err := opts.query()
	if err != nil {
		return nil, err
	}
	return app.Analysis.Report(ctx, q)
}

func analyzeCmd(ctx context.Context, opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Print KPIs and the per-distributor metrics table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(ctx, opts, func(app *bootstrap.App) error {
				rep, err := report(ctx, opts, app)
				if err != nil {
					return err
				}
				if opts.asJSON {
					return printJSON(cmd.OutOrStdout(), rep)
				}
				printOverview(cmd.OutOrStdout(), rep)
				printDistributors(cmd.OutOrStdout(), rep.Distributors)
				return nil
			})
		},
	}
}

func recommendCmd(ctx context.Context, opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "recommend",
		Short: "Print material combination recommendations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(ctx, opts, func(app *bootstrap.App) error {
				rep, err := report(ctx, opts, app)
				if err != nil {
					return err
				}
				if opts.asJSON {
					return printJSON(cmd.OutOrStdout(), rep.Recommendations)
				}
				printRecommendations(cmd.OutOrStdout(), rep.Recommendations)
				return nil
			})
		},
	}
}

func strategiesCmd(ctx context.Context, opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "Print the strategy playbook of each present value segment",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(ctx, opts, func(app *bootstrap.App) error {
				rep, err := report(ctx, opts, app)
				if err != nil {
					return err
				}
				if opts.asJSON {
					return printJSON(cmd.OutOrStdout(), rep.Strategies)
				}
				printStrategies(cmd.OutOrStdout(), rep)
				return nil
			})
		},
	}
}

func exportCmd(ctx context.Context, opts *options) *cobra.Command {
	var exportType, format, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the distributor table (CSV or Parquet) or the recommendations (CSV)",
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := opts.query()
			if err != nil {
				return err
			}
			f, err := exportdomain.ParseExportFormat(format)
			if err != nil {
				return err
			}
			job, err := exportdomain.NewExportJob(f, exportdomain.ExportType(exportType), q.Sample, q.Filter)
			if err != nil {
				return err
			}
			return withApp(ctx, opts, func(app *bootstrap.App) error {
				file, err := app.Export.Export(ctx, job)
				if err != nil {
					return err
				}
				if out == "" {
					out = file.Name
				}
				if err := os.WriteFile(out, file.Data, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", out, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d rows written to %s\n", file.Rows, out)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&exportType, "type", string(exportdomain.ExportTypeDistributors), "distributors or recommendations")
	cmd.Flags().StringVar(&format, "format", string(exportdomain.ExportFormatCSV), "csv or parquet")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: generated name)")
	return cmd
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printOverview(w io.Writer, rep *analyticsdomain.Report) {
	o := rep.Overview
	fmt.Fprintf(w, "物料总成本: %s\n", o.MaterialCost)
	fmt.Fprintf(w, "销售总额:   %s\n", o.Sales)
	fmt.Fprintf(w, "ROI:        %.2f (%s)\n", o.ROI, o.ROIBand)
	fmt.Fprintf(w, "物料销售比率: %.2f%% (%s)\n", o.CostRatioPct, o.CostRatioBand)
	fmt.Fprintf(w, "经销商数量: %d\n\n", o.Distributors)
}

func printDistributors(w io.Writer, rows []analyticsdomain.DistributorMetric) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "客户代码\t经销商名称\t月份\t销售人员\t物料总成本\t销售总额\tROI\t比率%\t多样性\t分层")
	for _, m := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%.2f\t%.2f\t%d\t%s\n",
			m.CustomerID, m.CustomerName, m.Month, m.Salesperson,
			shareddomain.FormatCurrency(m.MaterialCostTotal), shareddomain.FormatCurrency(m.SalesTotal),
			m.ROI, m.CostRatioPct, m.MaterialDiversity, m.Segment)
	}
	tw.Flush()
}

func printRecommendations(w io.Writer, recs []analyticsdomain.CombinationRecommendation) {
	for _, r := range recs {
		fmt.Fprintf(w, "%s\n  预期ROI: %s\n  适用场景: %s\n  物料配比: %s\n  目标客户: %s\n\n",
			r.Label, r.ExpectedROI, r.UseCase, r.SuggestedMaterialMix, r.TargetCustomerProfile)
	}
}

func printStrategies(w io.Writer, rep *analyticsdomain.Report) {
	for _, seg := range analyticsdomain.AllSegments {
		p, ok := rep.Strategies[seg]
		if !ok {
			continue
		}
		fmt.Fprintf(w, "%s\n  策略: %s\n  物料配比: %s\n  投放增减: %s\n  物料创新: %s\n  关注重点: %s\n\n",
			seg, p.Strategy, p.MaterialMix, p.SpendDelta, p.Innovation, p.Focus)
	}
}
