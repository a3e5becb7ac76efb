package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var unlockAll bool

var lockCmd = &cobra.Command{
	Use:   "lock",
	Short: "편집 잠금 관리",
	Long: `ikd edit 는 세션을 여는 동안 잠금을 잡습니다.
잠긴 세션은 다른 프로세스에서 변경할 수 없습니다.`,
}

var lockListCmd = &cobra.Command{
	Use:   "list",
	Short: "잠금 목록",
	RunE:  runLockList,
}

var lockReleaseCmd = &cobra.Command{
	Use:   "release [session-id]",
	Short: "잠금 강제 해제",
	Long:  `비정상 종료로 남은 잠금을 해제합니다. --all 로 모든 잠금을 해제합니다.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLockRelease,
}

func init() {
	rootCmd.AddCommand(lockCmd)
	lockCmd.AddCommand(lockListCmd)
	lockCmd.AddCommand(lockReleaseCmd)
	lockReleaseCmd.Flags().BoolVar(&unlockAll, "all", false, "모든 잠금 해제")
}

func runLockList(cmd *cobra.Command, args []string) error {
	svc, cleanup, err := getLockService()
	if err != nil {
		return err
	}
	defer cleanup()

	locks, err := svc.List()
	if err != nil {
		return err
	}

	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{"locks": locks})
	}
	if len(locks) == 0 {
		fmt.Println("잠금이 없습니다.")
		return nil
	}

	fmt.Printf("%-38s %-30s %s\n", "SESSION", "HOLDER", "ACQUIRED")
	fmt.Println(strings.Repeat("-", 90))
	for _, l := range locks {
		fmt.Printf("%-38s %-30s %s\n", l.SessionID, truncate(l.Holder, 30), l.AcquiredAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func runLockRelease(cmd *cobra.Command, args []string) error {
	svc, cleanup, err := getLockService()
	if err != nil {
		return err
	}
	defer cleanup()

	if unlockAll {
		n, err := svc.Clear()
		if err != nil {
			return err
		}
		fmt.Printf("✅ 잠금 %d개 해제\n", n)
		return nil
	}

	id := sessionID
	if len(args) > 0 {
		id = args[0]
	}
	if id == "" {
		sessions, cleanupSessions, err := getSessionService()
		if err != nil {
			return err
		}
		defer cleanupSessions()
		sess, err := sessions.Latest()
		if err != nil {
			return err
		}
		id = sess.ID
	}

	released, err := svc.Force(id)
	if err != nil {
		return err
	}
	if !released {
		fmt.Printf("세션 '%s'에 대한 잠금이 없습니다.\n", id)
		return nil
	}
	fmt.Printf("✅ 잠금 해제: %s\n", id)
	return nil
}
