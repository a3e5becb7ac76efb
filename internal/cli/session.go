package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/n0roo/ikd-kit/internal/export"
	"github.com/n0roo/ikd-kit/internal/lock"
	"github.com/n0roo/ikd-kit/internal/session"
	"github.com/n0roo/ikd-kit/internal/table"
)

var (
	sessionID    string
	sessionLimit int
	sessionAll   bool
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "편집 세션 관리",
	Long: `불러온 테이블의 편집 세션을 관리합니다.
--session 을 생략하면 가장 최근 세션을 사용합니다.`,
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "세션 목록",
	RunE:  runSessionList,
}

var sessionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "세션 설정과 테이블 출력",
	RunE:  runSessionShow,
}

var sessionRelabelCmd = &cobra.Command{
	Use:   "relabel <column> <label>",
	Short: "열 헤더 변경",
	Long: `열 헤더를 바꿉니다. 같은 헤더를 가진 다른 열은 원래 헤더로 복원됩니다.
index_i7 / index_i5 로 바꾸면 해당 열의 override cycle 을 다시 계산하고,
검증에 실패하면 헤더를 복원하고 cycle 값을 비웁니다.`,
	Args: cobra.ExactArgs(2),
	RunE: runSessionRelabel,
}

var sessionRestoreCmd = &cobra.Command{
	Use:   "restore [column]",
	Short: "열 헤더 복원 (생략 시 전체)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSessionRestore,
}

var sessionHideCmd = &cobra.Command{
	Use:   "hide <column>",
	Short: "열 숨기기",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionHide,
}

var sessionShowAllCmd = &cobra.Command{
	Use:   "show-all",
	Short: "숨긴 열 모두 표시",
	RunE:  runSessionShowAll,
}

var sessionCellCmd = &cobra.Command{
	Use:   "cell <row> <column> <value>",
	Short: "셀 값 변경",
	Args:  cobra.ExactArgs(3),
	RunE:  runSessionCell,
}

var sessionSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "kit / resource 설정 변경",
	Long: `설정 값을 바꿉니다. 패턴 문법에 맞지 않는 값은 거부됩니다.

키: ` + strings.Join(append(append([]string{}, export.KitFields...), export.ResourceFields...), ", "),
	Args: cobra.ExactArgs(2),
	RunE: runSessionSet,
}

var sessionCyclesCmd = &cobra.Command{
	Use:   "cycles",
	Short: "override cycle 일괄 계산",
	Long:  `모든 index 열을 검증해 통과하면 override cycle 을 한번에 설정합니다.`,
	RunE:  runSessionCycles,
}

var sessionDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "세션 삭제",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionDelete,
}

var sessionEventsCmd = &cobra.Command{
	Use:   "events",
	Short: "세션 이벤트 기록",
	RunE:  runSessionEvents,
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.PersistentFlags().StringVarP(&sessionID, "session", "s", "", "세션 ID (기본: 최근 세션)")

	sessionCmd.AddCommand(sessionListCmd)
	sessionListCmd.Flags().IntVar(&sessionLimit, "limit", 20, "최대 개수")

	sessionCmd.AddCommand(sessionShowCmd)
	sessionShowCmd.Flags().BoolVar(&sessionAll, "all", false, "숨긴 열도 출력")

	sessionCmd.AddCommand(sessionRelabelCmd)
	sessionCmd.AddCommand(sessionRestoreCmd)
	sessionCmd.AddCommand(sessionHideCmd)
	sessionCmd.AddCommand(sessionShowAllCmd)
	sessionCmd.AddCommand(sessionCellCmd)
	sessionCmd.AddCommand(sessionSetCmd)
	sessionCmd.AddCommand(sessionCyclesCmd)
	sessionCmd.AddCommand(sessionDeleteCmd)
	sessionCmd.AddCommand(sessionEventsCmd)
}

// withSession resolves --session and hands the service to fn
func withSession(fn func(svc *session.Service, sess *session.Session) error) error {
	svc, cleanup, err := getSessionService()
	if err != nil {
		return err
	}
	defer cleanup()

	sess, err := svc.Resolve(sessionID)
	if err != nil {
		return err
	}
	return fn(svc, sess)
}

// mutate is withSession for commands that change the session; it refuses
// while an editor holds the session
func mutate(fn func(svc *session.Service, sess *session.Session) error) error {
	return withSession(func(svc *session.Service, sess *session.Session) error {
		if err := checkLock(sess.ID); err != nil {
			return err
		}
		return fn(svc, sess)
	})
}

// checkLock refuses a session another process holds for editing
func checkLock(id string) error {
	locks, cleanup, err := getLockService()
	if err != nil {
		return err
	}
	defer cleanup()

	held, holder, err := locks.IsLocked(id)
	if err != nil {
		return err
	}
	if held && holder != lock.Holder() {
		return &lock.HeldError{SessionID: id, Holder: holder}
	}
	return nil
}

func runSessionList(cmd *cobra.Command, args []string) error {
	svc, cleanup, err := getSessionService()
	if err != nil {
		return err
	}
	defer cleanup()

	sessions, err := svc.List(sessionLimit)
	if err != nil {
		return err
	}

	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
			"sessions": sessions,
		})
	}

	if len(sessions) == 0 {
		fmt.Println("세션이 없습니다.")
		return nil
	}

	fmt.Printf("%-10s %-9s %-22s %-5s %-30s %s\n", "ID", "STATUS", "KIT TYPE", "KIND", "SOURCE", "UPDATED")
	fmt.Println(strings.Repeat("-", 100))
	for _, s := range sessions {
		fmt.Printf("%-10s %-9s %-22s %-5s %-30s %s\n",
			s.ID[:8],
			s.Status,
			valueOr(s.KitType, "-"),
			s.SourceKind,
			truncate(s.SourcePath, 30),
			s.UpdatedAt.Format("2006-01-02 15:04"),
		)
	}
	return nil
}

func runSessionShow(cmd *cobra.Command, args []string) error {
	return withSession(func(svc *session.Service, sess *session.Session) error {
		t, err := svc.LoadTable(sess.ID)
		if err != nil {
			return err
		}

		if jsonOut {
			return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
				"session": sess,
				"table":   t.State(),
			})
		}

		fmt.Printf("%s %s\n", headerStyle.Render("Session:"), sess.ID)
		fmt.Printf("  source:   %s (%s)\n", sess.SourcePath, sess.SourceKind)
		fmt.Printf("  status:   %s\n", sess.Status)
		fmt.Printf("  user:     %s\n", valueOr(sess.UserName, "-"))
		fmt.Printf("  updated:  %s\n", sess.UpdatedAt.Format("2006-01-02 15:04:05"))
		fmt.Println()

		fmt.Println(headerStyle.Render("Index kit"))
		for _, key := range export.KitFields {
			v, _ := sess.Kit.Get(key)
			fmt.Printf("  %-28s %s\n", key+":", valueOr(v, "-"))
		}
		fmt.Println()
		fmt.Println(headerStyle.Render("Resource"))
		for _, key := range export.ResourceFields {
			v, _ := sess.Resource.Get(key)
			fmt.Printf("  %-28s %s\n", key+":", valueOr(v, "-"))
		}
		fmt.Println()
		fmt.Println(renderEditable(t, sessionAll))
		return nil
	})
}

// renderEditable draws the grid with column numbers; relabeled headers
// show their original label
func renderEditable(t *table.Editable, all bool) string {
	labels := t.Labels()
	snap := t.Snapshot()

	var cols []int
	var headers []string
	for i, l := range labels {
		if t.Hidden(i) && !all {
			continue
		}
		h := fmt.Sprintf("%d:%s", i, l)
		if orig, ok := t.OriginalLabel(i); ok && orig != l {
			h += " (" + orig + ")"
		}
		cols = append(cols, i)
		headers = append(headers, h)
	}

	rows := make([][]string, snap.Len())
	for r := range rows {
		full := snap.Row(r)
		row := make([]string, len(cols))
		for j, c := range cols {
			row[j] = full[c]
		}
		rows[r] = row
	}
	return renderGrid(headers, rows)
}

func runSessionRelabel(cmd *cobra.Command, args []string) error {
	index, err := parseIndex(args[0], "열 번호")
	if err != nil {
		return err
	}
	label := args[1]

	return mutate(func(svc *session.Service, sess *session.Session) error {
		w := &warnings{}
		sess, res, err := svc.Relabel(sess.ID, index, label, w)
		if err != nil {
			return err
		}
		logger.Debug("relabel",
			zap.String("session", sess.ID),
			zap.Int("index", index),
			zap.String("label", label),
			zap.Bool("changed", res.Changed))

		if jsonOut {
			return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
				"session":  sess,
				"changed":  res.Changed,
				"derived":  res.Derived,
				"field":    res.Update.Field,
				"value":    res.Update.Value,
				"warnings": w.Warnings,
			})
		}

		if !res.Changed {
			fmt.Printf("열 %d 는 이미 %s 입니다.\n", index, label)
			return nil
		}
		fmt.Printf("✅ 열 %d → %s\n", index, label)
		if res.Derived {
			if res.Update.Clear() {
				fmt.Println(warnStyle.Render(fmt.Sprintf("   %s 비움, 헤더 복원", res.Update.Field)))
			} else {
				fmt.Printf("   %s = %s\n", res.Update.Field, res.Update.Value)
			}
		}
		printWarnings(w)
		return nil
	})
}

func runSessionRestore(cmd *cobra.Command, args []string) error {
	return mutate(func(svc *session.Service, sess *session.Session) error {
		if len(args) == 0 {
			if _, err := svc.RestoreAll(sess.ID); err != nil {
				return err
			}
			fmt.Println("✅ 모든 헤더 복원")
			return nil
		}
		index, err := parseIndex(args[0], "열 번호")
		if err != nil {
			return err
		}
		if _, err := svc.Restore(sess.ID, index); err != nil {
			return err
		}
		fmt.Printf("✅ 열 %d 헤더 복원\n", index)
		return nil
	})
}

func runSessionHide(cmd *cobra.Command, args []string) error {
	index, err := parseIndex(args[0], "열 번호")
	if err != nil {
		return err
	}
	return mutate(func(svc *session.Service, sess *session.Session) error {
		if _, err := svc.Hide(sess.ID, index); err != nil {
			return err
		}
		fmt.Printf("✅ 열 %d 숨김\n", index)
		return nil
	})
}

func runSessionShowAll(cmd *cobra.Command, args []string) error {
	return mutate(func(svc *session.Service, sess *session.Session) error {
		if _, err := svc.ShowAll(sess.ID); err != nil {
			return err
		}
		fmt.Println("✅ 모든 열 표시")
		return nil
	})
}

func runSessionCell(cmd *cobra.Command, args []string) error {
	row, err := parseIndex(args[0], "행 번호")
	if err != nil {
		return err
	}
	col, err := parseIndex(args[1], "열 번호")
	if err != nil {
		return err
	}
	return mutate(func(svc *session.Service, sess *session.Session) error {
		if _, err := svc.SetCell(sess.ID, row, col, args[2]); err != nil {
			return err
		}
		fmt.Printf("✅ (%d, %d) = %q\n", row, col, args[2])
		return nil
	})
}

func runSessionSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]
	if key == export.FieldKitType && value != "" {
		reg, err := getRegistry()
		if err != nil {
			return err
		}
		if _, err := reg.Lookup(value); err != nil {
			return err
		}
	}
	return mutate(func(svc *session.Service, sess *session.Session) error {
		sess, err := svc.Set(sess.ID, key, value)
		if err != nil {
			return err
		}
		if jsonOut {
			return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{"session": sess})
		}
		fmt.Printf("✅ %s = %s\n", key, value)
		if key == export.FieldKitType {
			fmt.Println(mutedStyle.Render("   kit type 변경으로 헤더가 복원되었습니다"))
		}
		return nil
	})
}

func runSessionCycles(cmd *cobra.Command, args []string) error {
	return mutate(func(svc *session.Service, sess *session.Session) error {
		w := &warnings{}
		sess, updates, err := svc.Autoset(sess.ID, w)
		if err != nil {
			return err
		}
		if jsonOut {
			return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
				"session":  sess,
				"updates":  updates,
				"warnings": w.Warnings,
			})
		}
		if len(updates) == 0 {
			fmt.Println("설정할 override cycle 이 없습니다.")
		} else {
			fmt.Println("✅ override cycle 설정")
		}
		printCycles(sess.Resource)
		printWarnings(w)
		return nil
	})
}

func runSessionDelete(cmd *cobra.Command, args []string) error {
	svc, cleanup, err := getSessionService()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := checkLock(args[0]); err != nil {
		return err
	}
	if err := svc.Delete(args[0]); err != nil {
		return err
	}
	fmt.Printf("✅ 세션 삭제: %s\n", args[0])
	return nil
}

func runSessionEvents(cmd *cobra.Command, args []string) error {
	return withSession(func(svc *session.Service, sess *session.Session) error {
		events, err := svc.Events(sess.ID)
		if err != nil {
			return err
		}
		if jsonOut {
			return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{"events": events})
		}
		for _, e := range events {
			fmt.Printf("%s  %-9s %s\n", e.CreatedAt.Format("15:04:05"), e.Type, truncate(e.Data, 80))
		}
		return nil
	})
}
