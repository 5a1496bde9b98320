package cmd

import (
	"encoding/json"
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/abhisek/faultdrill/internal/scenario"
)

// version is set via -ldflags at build time.
var version = "(devel)"

// buildInfo describes the binary and the scenario pool compiled into it.
type buildInfo struct {
	Version       string `json:"version"`
	Commit        string `json:"commit,omitempty"`
	GoVersion     string `json:"goVersion"`
	Platform      string `json:"platform"`
	PoolFormat    string `json:"scenarioFormat"`
	PoolScenarios int    `json:"scenarios"`
}

func currentBuild() (buildInfo, error) {
	info := buildInfo{
		Version:   version,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		if info.Version == "(devel)" && bi.Main.Version != "" {
			info.Version = bi.Main.Version
		}
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" && len(s.Value) >= 12 {
				info.Commit = s.Value[:12]
			}
		}
	}
	bank, err := scenario.DefaultBank()
	if err != nil {
		return info, fmt.Errorf("embedded scenario pool: %w", err)
	}
	info.PoolFormat = bank.Version()
	info.PoolScenarios = bank.Len()
	return info, nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build and scenario pool versions",
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := currentBuild()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		}

		fmt.Fprintf(out, "faultdrill %s", info.Version)
		if info.Commit != "" {
			fmt.Fprintf(out, " (%s)", info.Commit)
		}
		fmt.Fprintf(out, "\n%s %s\n", info.GoVersion, info.Platform)
		fmt.Fprintf(out, "scenario pool %s, %d scenarios\n", info.PoolFormat, info.PoolScenarios)
		return nil
	},
}

func init() {
	versionCmd.Flags().Bool("json", false, "Print build information as JSON")
}
