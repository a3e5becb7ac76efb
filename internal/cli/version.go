package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

// Build information, set with -ldflags
var (
	Version = "0.1.0"
	Commit  = "none"
	Date    = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "버전 정보 출력",
	Run:   runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, args []string) {
	info := map[string]interface{}{
		"version":   Version,
		"commit":    Commit,
		"date":      Date,
		"go":        runtime.Version(),
		"os":        runtime.GOOS,
		"arch":      runtime.GOARCH,
		"db":        GetDBPath(),
		"kit_types": currentConfig().SchemaPath(),
	}

	if jsonOut {
		json.NewEncoder(os.Stdout).Encode(info)
		return
	}

	fmt.Printf("ikd %s (%s, %s)\n", Version, Commit, Date)
	fmt.Printf("  go: %s %s/%s\n", info["go"], info["os"], info["arch"])
	fmt.Printf("  db: %s\n", info["db"])
}
