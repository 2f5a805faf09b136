package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/CodingDyl/virtec-crm/internal/pricing"
	"github.com/CodingDyl/virtec-crm/internal/services"
	"github.com/CodingDyl/virtec-crm/pdf"
	"github.com/spf13/cobra"
)

func newQuoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Quote tools",
	}

	var (
		req        pricing.Request
		rate       float64
		complexity string
		urgency    string
		asJSON     bool
	)
	price := &cobra.Command{
		Use:   "price",
		Short: "Price a job without storing a quote",
		Example: `  agencyctl quote price --hours 40 --complexity High --urgency Rush --hosting 1200`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Complexity = pricing.Complexity(complexity)
			req.Urgency = pricing.Urgency(urgency)
			if cmd.Flags().Changed("rate") {
				req.HourlyRate = pricing.Rate(rate)
			}
			req = req.WithDefaults(pricing.DefaultHourlyRate)
			if v := pricing.Validate(req); !v.Empty() {
				return fmt.Errorf("invalid request: %s", describe(&services.ValidationError{Violations: v}))
			}
			b := pricing.Itemize(req)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(b)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "Hours\t%g\n", b.EstimatedHours)
			fmt.Fprintf(tw, "Rate\t%s\n", pdf.Money(b.HourlyRate))
			fmt.Fprintf(tw, "Complexity\t%s (x%g)\n", req.Complexity, b.ComplexityMultiplier)
			fmt.Fprintf(tw, "Urgency\t%s (x%g)\n", req.Urgency, b.UrgencyMultiplier)
			fmt.Fprintf(tw, "Labour\t%s\n", pdf.Money(b.Labour))
			fmt.Fprintf(tw, "Hosting\t%s\n", pdf.Money(b.HostingCost))
			fmt.Fprintf(tw, "Maintenance\t%s\n", pdf.Money(b.MaintenanceCost))
			fmt.Fprintf(tw, "Total\t%s\n", pdf.Money(b.Total))
			return tw.Flush()
		},
	}
	f := price.Flags()
	f.Float64Var(&req.EstimatedHours, "hours", 0, "Estimated hours")
	f.Float64Var(&rate, "rate", pricing.DefaultHourlyRate, "Hourly rate")
	f.StringVar(&complexity, "complexity", string(pricing.DefaultComplexity), "Low, Medium or High")
	f.StringVar(&urgency, "urgency", string(pricing.DefaultUrgency), "Standard, Rush or Extreme Rush")
	f.Float64Var(&req.HostingCost, "hosting", 0, "Hosting cost")
	f.Float64Var(&req.MaintenanceCost, "maintenance", 0, "Maintenance cost")
	f.StringSliceVar(&req.Features, "feature", nil, "Feature code, repeatable")
	f.BoolVar(&asJSON, "json", false, "Print the breakdown as JSON")
	_ = price.MarkFlagRequired("hours")

	cmd.AddCommand(price)
	return cmd
}
