package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/faultdrill/internal/session"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start a fault-finding session straight away",
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetString("mode")
		mode, err := session.ParseMode(raw)
		if err != nil {
			return err
		}
		return runTUI(cmd, mode)
	},
}

func init() {
	playCmd.Flags().String("mode", string(session.ModePractice), "Session mode: practice, exam or guided")
}
