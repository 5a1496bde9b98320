package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/faultdrill/internal/history"
	"github.com/abhisek/faultdrill/internal/scenario"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show pass rates by circuit type",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd, false)
		if err != nil {
			return err
		}
		defer rt.Close()

		a := history.Aggregate(rt.history.Load(cmd.Context()))
		out := cmd.OutOrStdout()

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(a)
		}

		if a.TotalSessions == 0 {
			fmt.Fprintln(out, "No sessions recorded yet.")
			return nil
		}

		fmt.Fprintf(out, "Sessions: %d   Average: %d%%   Best: %d%%   Passes: %d\n\n",
			a.TotalSessions, a.AverageScore, a.BestScore, a.Passes)
		fmt.Fprintf(out, "%-28s  %7s  %5s\n", "Circuit", "Correct", "Rate")
		fmt.Fprintln(out, strings.Repeat("\u2500", 44))
		for _, c := range a.Categories {
			fmt.Fprintf(out, "%-28s  %3d/%-3d  %4d%%\n",
				scenario.CircuitTypeLabel(c.CircuitType), c.Correct, c.Total, c.Pct)
		}

		if a.ShowProgress() {
			fmt.Fprintln(out)
			fmt.Fprintf(out, "Focus on:  %s\n", statList(a.Weakest))
			fmt.Fprintf(out, "Strongest: %s\n", statList(a.Strongest))
		}
		return nil
	},
}

func statList(stats []history.CategoryStat) string {
	parts := make([]string, len(stats))
	for i, s := range stats {
		parts[i] = fmt.Sprintf("%s (%d%%)", scenario.CircuitTypeLabel(s.CircuitType), s.Pct)
	}
	return strings.Join(parts, ", ")
}

func init() {
	statsCmd.Flags().Bool("json", false, "Print analytics as JSON")
}
