package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/faultdrill/internal/scenario"
	"github.com/abhisek/faultdrill/internal/scoring"
	"github.com/abhisek/faultdrill/internal/ui/layout"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded sessions, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd, false)
		if err != nil {
			return err
		}
		defer rt.Close()

		records := rt.history.Load(cmd.Context())
		out := cmd.OutOrStdout()

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(records)
		}
		if len(records) == 0 {
			fmt.Fprintln(out, "No sessions recorded yet.")
			return nil
		}

		limit, _ := cmd.Flags().GetInt("limit")
		verbose, _ := cmd.Flags().GetBool("verbose")

		fmt.Fprintf(out, "%-16s  %-8s  %5s  %5s  %8s  %s\n", "Date", "Mode", "Score", "Right", "Time", "Result")
		fmt.Fprintln(out, strings.Repeat("\u2500", 60))
		shown := 0
		for i := len(records) - 1; i >= 0; i-- {
			if limit > 0 && shown == limit {
				break
			}
			shown++
			rec := records[i]
			result := "FAIL"
			if scoring.IsPass(rec.CorrectCount) {
				result = "PASS"
			}
			fmt.Fprintf(out, "%-16s  %-8s  %4d%%  %2d/%-2d  %8s  %s\n",
				rec.Date.Local().Format("2006-01-02 15:04"), rec.Mode, rec.Score,
				rec.CorrectCount, rec.TotalCount, layout.FormatClock(rec.TimeUsedSeconds), result)

			if verbose {
				for _, ex := range rec.PerExercise {
					mark := "ok "
					if !ex.Correct {
						mark = "err"
					}
					line := fmt.Sprintf("    %s  %-26s  %-18s  %d tests",
						mark, scenario.CircuitTypeLabel(ex.CircuitType),
						scenario.FaultType(ex.FaultType).Label(), ex.TestsPerformedCount)
					if p := scoring.HintPenaltyLabel(ex.HintsUsed); p != "" {
						line += "  " + p
					}
					fmt.Fprintln(out, line)
				}
			}
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "Maximum number of sessions to list (0 = all)")
	historyCmd.Flags().BoolP("verbose", "v", false, "Show each exercise")
	historyCmd.Flags().Bool("json", false, "Print records as JSON")
}
