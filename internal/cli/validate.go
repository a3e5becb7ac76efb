package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/n0roo/ikd-kit/internal/derive"
	"github.com/n0roo/ikd-kit/internal/session"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "세션 테이블과 설정 검증",
	Long: `내보내기 전에 세션을 검증합니다.

  - index 열: DNA 서열 여부, 길이 일치
  - kit type 에 필요한 헤더 존재 여부
  - index set 별 빈 값 여부
  - resource / index kit 설정`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVarP(&sessionID, "session", "s", "", "세션 ID (기본: 최근 세션)")
}

type checkResult struct {
	Check string `json:"check"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	reg, err := getRegistry()
	if err != nil {
		return err
	}

	return withSession(func(svc *session.Service, sess *session.Session) error {
		t, err := svc.LoadTable(sess.ID)
		if err != nil {
			return err
		}
		frame := t.Snapshot()

		var results []checkResult
		add := func(name string, err error) {
			r := checkResult{Check: name, OK: err == nil}
			if err != nil {
				r.Error = err.Error()
			}
			results = append(results, r)
		}

		if frame.Empty() {
			add("table", derive.ErrEmptyTable)
		}
		for _, label := range derive.IndexLabels {
			if !frame.Has(label) {
				continue
			}
			w := &warnings{}
			derive.ValidateSequenceColumn(label, frame, w)
			derive.ValidateUniformLength(label, frame, w)
			if len(w.Warnings) == 0 {
				add(label, nil)
			}
			for _, warning := range w.Warnings {
				add(label, warning)
			}
		}

		if schema, err := reg.Lookup(sess.Resource.KitType); err != nil {
			add("kit_type", err)
		} else {
			if err := derive.RequireFields(frame, schema); err != nil {
				add("headers", err)
			} else {
				_, err := derive.Partition(frame, schema)
				add("index_sets", err)
			}
		}
		add("resource", sess.Resource.Validate())
		add("index_kit", sess.Kit.Validate())

		failed := 0
		for _, r := range results {
			if !r.OK {
				failed++
			}
		}

		if jsonOut {
			if err := json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
				"session": sess.ID,
				"results": results,
				"ok":      failed == 0,
			}); err != nil {
				return err
			}
		} else {
			for _, r := range results {
				if r.OK {
					fmt.Printf("✅ %s\n", r.Check)
				} else {
					fmt.Println(errorStyle.Render(fmt.Sprintf("❌ %s: %s", r.Check, r.Error)))
				}
			}
		}

		if failed > 0 {
			return fmt.Errorf("검증 실패 %d건", failed)
		}
		return nil
	})
}
