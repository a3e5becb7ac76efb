package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/n0roo/ikd-kit/internal/config"
	"github.com/n0roo/ikd-kit/internal/db"
	"github.com/n0roo/ikd-kit/internal/derive"
	"github.com/n0roo/ikd-kit/internal/kittype"
	"github.com/n0roo/ikd-kit/internal/lock"
	"github.com/n0roo/ikd-kit/internal/logging"
	"github.com/n0roo/ikd-kit/internal/session"
)

var (
	dbPath     string
	configPath string
	verbose    bool
	jsonOut    bool

	cfg    *config.Config
	logger = logging.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "ikd",
	Short: "index kit 정의 변환 도구",
	Long: `ikd - index kit 정의 변환 도구

벤더 index kit 정의 파일(.tsv)이나 구분자 파일(.csv)을 불러와
index 열을 검증하고 override cycle 패턴을 계산한 뒤
index kit JSON 문서로 내보냅니다.

주요 기능:
  - 정의 파일 파싱: IndexKit / Resources / Indices 섹션
  - 패턴 검증: read / index / adapter / name / version
  - 편집 세션: 헤더 재지정, 복원, 설정 변경
  - 내보내기: user_info / resource / index_kit / indexes`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		logger.Debug("command failed", zap.Error(err))
	}
	return err
}

func init() {
	rootCmd.Version = Version
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite DB 경로 (기본: ~/.ikd/ikd.db)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "설정 파일 경로 (기본: .ikd/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "상세 출력")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "JSON 출력")
}

// setup loads the config and builds the logger before any command runs
func setup(cmd *cobra.Command, args []string) error {
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cwd, _ := os.Getwd()
		cfg, err = config.Load(cwd)
	}
	if err != nil {
		return err
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	logger = logging.New(level, os.Stderr)
	logger.Debug("config loaded", zap.String("db", GetDBPath()), zap.String("kit_types", cfg.SchemaPath()))
	return nil
}

func currentConfig() *config.Config {
	if cfg == nil {
		return config.DefaultConfig()
	}
	return cfg
}

// GetDBPath returns the database path
func GetDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	return currentConfig().DatabasePath()
}

func getRegistry() (*kittype.Registry, error) {
	return kittype.LoadOrDefault(currentConfig().SchemaPath())
}

func getSessionService() (*session.Service, func(), error) {
	database, err := db.Open(GetDBPath())
	if err != nil {
		return nil, nil, err
	}
	return session.NewService(database), func() { database.Close() }, nil
}

func getLockService() (*lock.Service, func(), error) {
	database, err := db.Open(GetDBPath())
	if err != nil {
		return nil, nil, err
	}
	return lock.NewService(database), func() { database.Close() }, nil
}

// warnings logs every derivation warning and keeps them for the caller
type warnings struct {
	derive.Collector
}

var _ derive.Notifier = (*warnings)(nil)

func (w *warnings) Warn(warning derive.Warning) {
	w.Collector.Warn(warning)
	logger.Warn(warning.Error(),
		zap.String("label", warning.Label),
		zap.String("kind", string(warning.Kind)),
		zap.Ints("rows", warning.Rows))
}

func printWarnings(w *warnings) {
	if jsonOut {
		return
	}
	for _, warning := range w.Warnings {
		fmt.Fprintln(os.Stderr, warnStyle.Render("⚠️  "+warning.Error()))
	}
}
