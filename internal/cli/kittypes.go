package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var kitTypesCmd = &cobra.Command{
	Use:   "kit-types",
	Short: "kit type 목록 조회",
	Long:  `설정된 kit type 과 각 index set 의 필드를 출력합니다.`,
	RunE:  runKitTypes,
}

func init() {
	rootCmd.AddCommand(kitTypesCmd)
}

func runKitTypes(cmd *cobra.Command, args []string) error {
	reg, err := getRegistry()
	if err != nil {
		return err
	}

	if jsonOut {
		out := make(map[string]interface{})
		for _, s := range reg.Schemas() {
			out[s.Name] = s.Sets
		}
		return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
			"kit_types": out,
			"order":     reg.Names(),
		})
	}

	fmt.Printf("%-24s %-16s %s\n", "KIT TYPE", "INDEX SET", "FIELDS")
	fmt.Println(strings.Repeat("-", 72))
	for _, s := range reg.Schemas() {
		name := s.Name
		for _, set := range s.Sets {
			fmt.Printf("%-24s %-16s %s\n", name, set.Name, strings.Join(set.Fields, ", "))
			name = ""
		}
	}
	return nil
}
