package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/n0roo/ikd-kit/internal/export"
	"github.com/n0roo/ikd-kit/internal/session"
)

var (
	exportOutput string
	exportFormat string
	exportIndent int
	exportStdout bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "index kit 문서 내보내기",
	Long: `세션 테이블과 설정을 검증한 뒤 index kit 문서를 씁니다.
문서는 user_info, resource, index_kit, indexes 네 항목으로 구성됩니다.

출력 경로를 생략하면 불러온 파일 이름에 확장자를 바꿔 사용합니다.`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&sessionID, "session", "s", "", "세션 ID (기본: 최근 세션)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "출력 파일 경로")
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "출력 형식 (json, yaml; 기본: 설정값)")
	exportCmd.Flags().IntVar(&exportIndent, "indent", 0, "들여쓰기 (기본: 설정값)")
	exportCmd.Flags().BoolVar(&exportStdout, "stdout", false, "파일 대신 표준 출력으로 쓰기")
}

func runExport(cmd *cobra.Command, args []string) error {
	c := currentConfig()

	formatName := exportFormat
	if formatName == "" {
		formatName = c.Export.Format
	}
	format, err := export.ParseFormat(formatName)
	if err != nil {
		return err
	}
	indent := exportIndent
	if indent == 0 {
		indent = c.Export.Indent
	}

	reg, err := getRegistry()
	if err != nil {
		return err
	}

	return withSession(func(svc *session.Service, sess *session.Session) error {
		t, err := svc.LoadTable(sess.ID)
		if err != nil {
			return err
		}

		user := sess.UserName
		if user == "" {
			user = c.User
		}
		doc, err := export.Build(export.Input{
			Table:    t.Snapshot(),
			Registry: reg,
			User:     export.NewUserInfo(user, sess.SourcePath, time.Now()),
			Kit:      sess.Kit,
			Resource: sess.Resource,
		})
		if err != nil {
			logger.Warn("export rejected", zap.String("session", sess.ID), zap.Error(err))
			return err
		}

		if exportStdout {
			return export.Write(os.Stdout, doc, format, indent)
		}

		path := exportOutput
		if path == "" {
			path = filepath.Join(filepath.Dir(sess.SourcePath), export.ProposedPath(sess.SourcePath, format))
		}
		path = export.EnsureSuffix(path, format)

		if err := export.WriteFile(path, doc, format, indent); err != nil {
			return err
		}
		exportID, err := svc.RecordExport(sess.ID, path, format)
		if err != nil {
			return err
		}
		logger.Info("exported",
			zap.String("session", sess.ID),
			zap.String("export", exportID),
			zap.String("path", path),
			zap.String("format", string(format)))

		if jsonOut {
			return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
				"id":      exportID,
				"session": sess.ID,
				"path":    path,
				"format":  format,
			})
		}

		fmt.Printf("✅ 내보내기 완료: %s\n", path)
		for _, set := range doc.Indexes {
			fmt.Printf("   %-16s %d행\n", set.Name, len(set.Rows))
		}
		return nil
	})
}
