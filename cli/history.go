package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"loan-widget/money"
)

func newHistoryCmd(opts *globalOptions) *cobra.Command {
	var (
		limit  int
		output string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent calculations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}
			if limit < 1 {
				return fmt.Errorf("--limit must be at least 1")
			}

			a, err := newApp(cmd.Context(), opts.cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			calcs, err := a.history.List(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list history: %w", err)
			}

			if output != outputText {
				return encode(cmd.OutOrStdout(), output, calcs)
			}
			if len(calcs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No calculations yet.")
				return nil
			}

			formatter, err := money.NewFormatter(opts.cfg.Widget.Locale, opts.cfg.Widget.Currency)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "WHEN\tAMOUNT\tRATE\tYEARS\tMONTHLY\tTOTAL")
			for _, c := range calcs {
				fmt.Fprintf(tw, "%s\t%s\t%g%%\t%d\t%s\t%s\n",
					c.CreatedAt.Local().Format("2006-01-02 15:04"),
					formatter.Format(c.Input.Amount),
					c.Input.AnnualRatePercent,
					c.Input.TermYears,
					formatter.Format(c.Result.MonthlyPayment),
					formatter.Format(c.Result.TotalPayment),
				)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of calculations to show")
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "output format (text, json, yaml)")
	return cmd
}
