package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/faultdrill/internal/scenario"
)

var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "List the fault scenarios in the bank",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd, false)
		if err != nil {
			return err
		}
		defer rt.Close()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-14s  %-26s  %-18s  %s\n", "ID", "Circuit", "Fault", "Tests")
		fmt.Fprintln(out, strings.Repeat("\u2500", 70))
		for _, s := range rt.bank.All() {
			n := 0
			for _, tp := range s.TestPoints {
				n += len(tp.Tests)
			}
			fmt.Fprintf(out, "%-14s  %-26s  %-18s  %d\n",
				s.ID, scenario.CircuitTypeLabel(s.CircuitType), s.FaultType.Label(), n)
		}
		fmt.Fprintf(out, "\n%d scenarios across %d circuit types (format %s).\n",
			rt.bank.Len(), len(rt.bank.CircuitTypes()), rt.bank.Version())
		return nil
	},
}

var scenariosValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a scenario bank file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bank, err := scenario.LoadBankFile(args[0])
		if err != nil {
			return err
		}
		if err := scenario.CheckSupply(bank.All(), scenario.SessionSize); err != nil {
			return fmt.Errorf("bank cannot fill a session: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d scenarios OK (format %s)\n", args[0], bank.Len(), bank.Version())
		return nil
	},
}

func init() {
	scenariosCmd.AddCommand(scenariosValidateCmd)
}
