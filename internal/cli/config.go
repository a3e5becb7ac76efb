package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/n0roo/ikd-kit/internal/config"
)

var (
	configForce  bool
	configGlobal bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "설정 관리",
	Long: `ikd 설정을 관리합니다.

설정 파일: .ikd/config.yaml (없으면 ~/.ikd/config.yaml)

예시:
  ikd config show
  ikd config init
  ikd config set export.format yaml
  ikd config set kit_types_path ./kit_types.yaml`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "현재 설정 표시",
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "설정 초기화",
	Long:  `기본 설정으로 .ikd/config.yaml 을 생성합니다 (--global: ~/.ikd/config.yaml).`,
	RunE:  runConfigInit,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "설정 값 변경",
	Long: `설정 값을 변경합니다.

사용 가능한 키:
  kit_types_path   kit type 정의 파일 (비우면 내장 정의)
  db_path          세션 DB 경로
  log_level        debug, info, warn, error
  user             내보내기 문서의 사용자 이름
  export.format    json, yaml
  export.indent    들여쓰기 칸 수`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "설정 값 조회",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)

	configCmd.PersistentFlags().BoolVar(&configGlobal, "global", false, "전역 설정 (~/.ikd/config.yaml)")
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "기존 설정 덮어쓰기")
}

// configFile is the file config init/set write to
func configFile() string {
	if configPath != "" {
		return configPath
	}
	if configGlobal {
		return config.GlobalConfigPath()
	}
	cwd, _ := os.Getwd()
	return config.Path(cwd)
}

func configValue(c *config.Config, key string) (string, error) {
	switch key {
	case "kit_types_path":
		return c.KitTypesPath, nil
	case "db_path":
		return c.DBPath, nil
	case "log_level":
		return c.LogLevel, nil
	case "user":
		return c.User, nil
	case "export.format":
		return c.Export.Format, nil
	case "export.indent":
		return strconv.Itoa(c.Export.Indent), nil
	}
	return "", fmt.Errorf("알 수 없는 설정 키: %s", key)
}

func setConfigValue(c *config.Config, key, value string) error {
	switch key {
	case "kit_types_path":
		c.KitTypesPath = value
	case "db_path":
		c.DBPath = value
	case "log_level":
		c.LogLevel = value
	case "user":
		c.User = value
	case "export.format":
		c.Export.Format = value
	case "export.indent":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("export.indent 는 숫자여야 합니다: %q", value)
		}
		c.Export.Indent = n
	default:
		return fmt.Errorf("알 수 없는 설정 키: %s", key)
	}
	return c.Validate()
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	c := currentConfig()
	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(c)
	}

	fmt.Println("📋 ikd 설정")
	fmt.Println()
	fmt.Printf("kit type 정의: %s\n", valueOr(c.SchemaPath(), "(내장)"))
	fmt.Printf("세션 DB:       %s\n", GetDBPath())
	fmt.Printf("로그 레벨:     %s\n", c.LogLevel)
	fmt.Printf("사용자:        %s\n", valueOr(c.User, "(로그인 이름)"))
	fmt.Printf("내보내기:      %s, indent %d\n", c.Export.Format, c.Export.Indent)
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configFile()
	if _, err := os.Stat(path); err == nil && !configForce {
		return fmt.Errorf("설정 파일이 이미 존재합니다: %s\n--force 옵션으로 덮어쓰기 가능", path)
	}

	c := config.DefaultConfig()
	if err := config.SaveFile(path, c); err != nil {
		return err
	}

	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
			"status": "created",
			"path":   path,
			"config": c,
		})
	}

	fmt.Println("✅ 설정 생성 완료!")
	fmt.Printf("   파일: %s\n", path)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	path := configFile()
	c, err := config.LoadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		c = config.DefaultConfig()
	}

	if err := setConfigValue(c, args[0], args[1]); err != nil {
		return err
	}
	if err := config.SaveFile(path, c); err != nil {
		return err
	}
	fmt.Printf("✅ %s = %s\n", args[0], args[1])
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	v, err := configValue(currentConfig(), args[0])
	if err != nil {
		return err
	}
	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(map[string]string{args[0]: v})
	}
	fmt.Println(v)
	return nil
}
