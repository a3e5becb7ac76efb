package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/n0roo/ikd-kit/internal/ikd"
	"github.com/n0roo/ikd-kit/internal/table"
)

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "index kit 정의 파일 파싱",
	Long: `index kit 정의 파일(.tsv)을 읽어 메타데이터, resource,
kit type 과 통합 index 테이블을 출력합니다. 세션은 만들지 않습니다.`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	def, err := ikd.Load(args[0])
	if err != nil {
		return err
	}
	kind, ok := def.KitType()
	frame := def.IndicesFrame()
	logger.Debug("definition parsed",
		zap.String("path", args[0]),
		zap.String("strategy", def.IndexStrategy()),
		zap.String("kit_type", string(kind)),
		zap.Int("rows", frame.Len()))

	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
			"metadata":                    def.Metadata,
			"supported_library_prep_kits": def.SupportedLibraryPrepKits,
			"resources":                   def.Resources,
			"kit_type":                    string(kind),
			"indices":                     frame.Records(),
		})
	}

	fmt.Println(headerStyle.Render("IndexKit"))
	for _, k := range def.MetadataKeys {
		fmt.Printf("  %-20s %s\n", k, def.Metadata[k])
	}
	if len(def.SupportedLibraryPrepKits) > 0 {
		fmt.Printf("  %-20s %s\n", "prep_kits", strings.Join(def.SupportedLibraryPrepKits, ", "))
	}

	if len(def.Resources) > 0 {
		fmt.Println()
		fmt.Println(headerStyle.Render("Resources"))
		for _, k := range sortedKeys(def.Resources) {
			fmt.Printf("  %-20s %s\n", k, def.Resources[k])
		}
	}

	fmt.Println()
	if !ok {
		fmt.Println(warnStyle.Render("⚠️  " + ikd.ErrNoKitType.Error()))
		return nil
	}
	fmt.Printf("%s %s (%d rows)\n", headerStyle.Render("Kit type:"), kind, frame.Len())
	fmt.Println(renderFrame(frame))
	return nil
}

func renderFrame(f *table.Frame) string {
	rows := make([][]string, f.Len())
	for i := range rows {
		rows[i] = f.Row(i)
	}
	return renderGrid(f.Columns(), rows)
}
