package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/faultdrill/internal/history"
)

var debriefCmd = &cobra.Command{
	Use:   "debrief",
	Short: "Ask the coach to review the most recent session",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd, false)
		if err != nil {
			return err
		}
		defer rt.Close()

		if !rt.debrief.Enabled() {
			return errors.New("no LLM provider configured (set FAULTDRILL_LLM_PROVIDER and an API key)")
		}
		records := rt.history.Load(cmd.Context())
		if len(records) == 0 {
			return errors.New("no sessions recorded yet")
		}

		d, err := rt.debrief.Generate(cmd.Context(), records[len(records)-1], history.Aggregate(records))
		if err != nil {
			return fmt.Errorf("generate debrief: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, d.Headline)
		for _, sec := range []struct {
			title string
			items []string
		}{
			{"Strengths", d.Strengths},
			{"Focus", d.Focus},
			{"Next steps", d.NextSteps},
		} {
			if len(sec.items) == 0 {
				continue
			}
			fmt.Fprintf(out, "\n%s:\n", sec.title)
			for _, it := range sec.items {
				fmt.Fprintf(out, "  - %s\n", it)
			}
		}
		return nil
	},
}
