package cli

import (
	"encoding/json"
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Version and Commit are set via ldflags. Without them the module build
// info stamped by the go tool is used.
var (
	Version = "dev"
	Commit  = ""
)

type buildInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit,omitempty"`
	Go      string `json:"go,omitempty"`
	Config  string `json:"config"`
}

func readBuildInfo() buildInfo {
	info := buildInfo{Version: Version, Commit: Commit, Config: getConfigPath()}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	info.Go = bi.GoVersion
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	if info.Commit == "" {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" && len(s.Value) >= 12 {
				info.Commit = s.Value[:12]
			}
		}
	}
	return info
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		info := readBuildInfo()
		if JSONOutput() {
			out, _ := json.MarshalIndent(info, "", "  ")
			fmt.Println(string(out))
			return
		}
		fmt.Printf("jukebox %s\n", info.Version)
		if Verbose() {
			if info.Commit != "" {
				fmt.Printf("  commit: %s\n", info.Commit)
			}
			fmt.Printf("  go:     %s\n", info.Go)
			fmt.Printf("  config: %s\n", info.Config)
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
