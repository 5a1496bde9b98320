package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/faultdrill/internal/events"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the recorded session history",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd, false)
		if err != nil {
			return err
		}
		defer rt.Close()

		out := cmd.OutOrStdout()
		n := len(rt.history.Load(cmd.Context()))
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			fmt.Fprintf(out, "This deletes %d recorded session(s). Re-run with --yes to confirm.\n", n)
			return nil
		}

		if err := rt.history.Clear(cmd.Context()); err != nil {
			return err
		}
		if err := rt.publisher.Publish(cmd.Context(), events.HistoryCleared, map[string]int{"sessions": n}); err != nil {
			rt.logger.Warn("event not published", zap.String("type", events.HistoryCleared), zap.Error(err))
		}
		fmt.Fprintf(out, "Deleted %d session(s).\n", n)
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("yes", false, "Confirm deletion")
}
