package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/n0roo/ikd-kit/internal/lock"
	"github.com/n0roo/ikd-kit/internal/session"
	"github.com/n0roo/ikd-kit/internal/tui"
)

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "대화형 편집기 실행",
	Long: `세션을 대화형 편집기로 엽니다.

설정 탭: 입력 중인 값을 패턴 문법으로 즉시 검사합니다.
테이블 탭: 헤더 재지정, 복원, override cycle 계산.

키:
  tab       탭 전환
  ctrl+s    저장
  esc       종료 (변경 사항은 저장됨)`,
	RunE: runEdit,
}

func init() {
	rootCmd.AddCommand(editCmd)
	editCmd.Flags().StringVarP(&sessionID, "session", "s", "", "세션 ID (기본: 최근 세션)")
}

func runEdit(cmd *cobra.Command, args []string) error {
	reg, err := getRegistry()
	if err != nil {
		return err
	}
	return withSession(func(svc *session.Service, sess *session.Session) error {
		locks, cleanup, err := getLockService()
		if err != nil {
			return err
		}
		defer cleanup()

		holder := lock.Holder()
		if err := locks.Acquire(sess.ID, holder); err != nil {
			return err
		}
		defer releaseLock(locks, sess.ID, holder)
		logger.Debug("edit lock acquired", zap.String("session", sess.ID), zap.String("holder", holder))

		return tui.Run(svc, reg, sess)
	})
}

// releaseLock drops the edit lock, logging a failed release
func releaseLock(locks *lock.Service, id, holder string) {
	if err := locks.Release(id, holder); err != nil {
		logger.Warn("edit lock release failed", zap.String("session", id), zap.String("holder", holder), zap.Error(err))
	}
}
