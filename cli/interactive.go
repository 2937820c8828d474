package cli

import (
	"github.com/spf13/cobra"

	"loan-widget/logging"
	"loan-widget/prompt"
	"loan-widget/tui"
)

func newPromptCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "prompt",
		Short: "Answer the loan questions one at a time",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), opts.cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			driver := prompt.NewSurveyDriver(cmd.OutOrStdout())
			return prompt.NewSession(a.widget, driver).Run(cmd.Context())
		},
	}
}

func newTUICmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive loan form",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// The alternate screen owns the terminal; log lines would tear it.
			logging.Init(logging.Config{Level: "disabled"})

			a, err := newApp(cmd.Context(), opts.cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			return tui.Run(cmd.Context(), a.widget)
		},
	}
}
