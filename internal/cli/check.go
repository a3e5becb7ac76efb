package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/n0roo/ikd-kit/internal/pattern"
)

var checkCmd = &cobra.Command{
	Use:   "check <grammar> <value>...",
	Short: "패턴 문법 검사",
	Long: `값이 패턴 문법에 맞는지 검사합니다.

문법: ` + strings.Join(pattern.Names(), ", ") + `

결과는 accepted (완성), intermediate (입력 중), rejected (불가) 중 하나입니다.

예시:
  ikd check read Y151
  ikd check index I10U9 I8N2
  ikd check adapter ACGTAGT`,
	Args: cobra.MinimumNArgs(2),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	g, err := pattern.Lookup(args[0])
	if err != nil {
		return err
	}

	type result struct {
		Value    string `json:"value"`
		State    string `json:"state"`
		Complete bool   `json:"complete"`
	}
	results := make([]result, 0, len(args)-1)
	rejected := 0
	for _, v := range args[1:] {
		st := g.Validate(v)
		if st == pattern.Rejected {
			rejected++
		}
		results = append(results, result{Value: v, State: st.String(), Complete: g.Complete(v)})
	}

	if jsonOut {
		if err := json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
			"grammar": strings.ToLower(args[0]),
			"results": results,
		}); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			line := fmt.Sprintf("%-24s %s", r.Value, r.State)
			if r.State == pattern.Rejected.String() {
				line = errorStyle.Render(line)
			}
			fmt.Println(line)
		}
	}

	if rejected > 0 {
		return fmt.Errorf("%d개 값이 %s 문법에 맞지 않습니다", rejected, strings.ToLower(args[0]))
	}
	return nil
}
