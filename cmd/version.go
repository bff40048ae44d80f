package cmd

import (
	"encoding/json"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
)

// These are set at build time via -ldflags, e.g.:
// go build -ldflags "-X github.com/digitalhand/testenv-cli/cmd.Version=v0.1.0 -X github.com/digitalhand/testenv-cli/cmd.Commit=$(git rev-parse --short HEAD)"
var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

type buildInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit,omitempty"`
	Date    string `json:"date,omitempty"`
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().Bool("json", false, "print build metadata as JSON")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print CLI version and build metadata",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(resolveBuildInfo())
		}
		fmt.Fprintf(cmd.OutOrStdout(), "testenv-cli %s\n", resolvedVersion())
		return nil
	},
}

// resolveBuildInfo prefers ldflags values and falls back to the module and
// VCS metadata embedded by the go toolchain.
func resolveBuildInfo() buildInfo {
	bi := buildInfo{Version: Version, Commit: Commit, Date: Date}

	if info, ok := debug.ReadBuildInfo(); ok {
		if (bi.Version == "" || bi.Version == "dev") && info.Main.Version != "" && info.Main.Version != "(devel)" {
			bi.Version = info.Main.Version
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if bi.Commit == "" {
					bi.Commit = s.Value
				}
			case "vcs.time":
				if bi.Date == "" {
					bi.Date = s.Value
				}
			}
		}
	}

	if len(bi.Commit) > 12 {
		bi.Commit = bi.Commit[:12]
	}
	return bi
}

func resolvedVersion() string {
	bi := resolveBuildInfo()
	parts := []string{bi.Version}
	if bi.Commit != "" {
		parts = append(parts, bi.Commit)
	}
	if bi.Date != "" {
		parts = append(parts, bi.Date)
	}
	return strings.Join(parts, " ")
}
