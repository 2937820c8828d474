package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"loan-widget/domain"
	"loan-widget/service"
)

var errRejected = errors.New("invalid input")

func newCalcCmd(opts *globalOptions) *cobra.Command {
	var (
		amount, interest, years string
		output                  string
		noLatency               bool
	)

	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Calculate a monthly payment once",
		Long: `Calculate a monthly payment from flags.

Fields that are not given on the command line are taken from the last entry
saved by any of the loan-widget front ends.`,
		Example: `  loan-widget calc --amount 200000 --interest 6.5 --years 30
  loan-widget calc --years 15 --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}

			presenter := &linePresenter{out: cmd.ErrOrStderr(), verbose: output == outputText}
			extra := []service.Option{service.WithPresenter(presenter)}
			if noLatency {
				extra = append(extra, service.WithSimulatedLatency(0))
			}

			a, err := newApp(cmd.Context(), opts.cfg, extra...)
			if err != nil {
				return err
			}
			defer a.Close()

			raw := a.widget.Init(cmd.Context())
			presenter.armed = true
			if cmd.Flags().Changed("amount") {
				raw.Amount = amount
			}
			if cmd.Flags().Changed("interest") {
				raw.Interest = interest
			}
			if cmd.Flags().Changed("years") {
				raw.Years = years
			}

			outcome, err := a.widget.Submit(cmd.Context(), raw)
			if err != nil {
				return err
			}
			return renderOutcome(cmd, output, outcome)
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "loan amount")
	cmd.Flags().StringVar(&interest, "interest", "", "annual interest rate in percent")
	cmd.Flags().StringVar(&years, "years", "", "term in whole years")
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "output format (text, json, yaml)")
	cmd.Flags().BoolVar(&noLatency, "no-latency", false, "skip the simulated calculation delay")
	return cmd
}

func renderOutcome(cmd *cobra.Command, output string, outcome service.SubmitOutcome) error {
	if output != outputText {
		if err := encode(cmd.OutOrStdout(), output, outcome); err != nil {
			return err
		}
	}

	switch outcome.Status {
	case service.SubmitSucceeded:
		if output == outputText {
			printResult(cmd.OutOrStdout(), outcome.Input, outcome.Formatted)
		}
		return nil
	case service.SubmitRejected:
		return errRejected
	case service.SubmitFailed:
		return fmt.Errorf("calculation failed: %s", domain.UserMessage(outcome.Err))
	}
	return fmt.Errorf("submission %s", outcome.Status)
}
