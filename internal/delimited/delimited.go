// Package delimited loads plain row/column files whose delimiter is not
// known up front.
package delimited

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	_ "github.com/marcboeker/go-duckdb/v2"

	"github.com/n0roo/ikd-kit/internal/table"
)

// Candidates are the delimiters SniffText considers, in preference order
var Candidates = []rune{',', '\t', ';', '|'}

// sampleLines bounds how much of the file SniffText looks at
const sampleLines = 20

// ErrNoDelimiter is returned when no candidate splits the sample consistently
var ErrNoDelimiter = errors.New("could not determine delimiter")

// Sniff asks DuckDB's CSV sniffer for the delimiter of the file at path
func Sniff(ctx context.Context, path string) (rune, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return 0, fmt.Errorf("DuckDB 열기 실패: %w", err)
	}
	defer db.Close()

	query := fmt.Sprintf(`SELECT Delimiter FROM sniff_csv('%s')`, strings.ReplaceAll(path, "'", "''"))
	var delim string
	if err := db.QueryRowContext(ctx, query).Scan(&delim); err != nil {
		return 0, fmt.Errorf("구분자 감지 실패: %w", err)
	}
	r, size := utf8.DecodeRuneInString(delim)
	if r == utf8.RuneError || size != len(delim) {
		return 0, fmt.Errorf("구분자 감지 실패: unsupported delimiter %q", delim)
	}
	return r, nil
}

// SniffText picks the candidate that appears the same, non-zero number of
// times on every sampled line. When none is consistent, the candidate
// present on every line with the highest total wins.
func SniffText(sample string) (rune, error) {
	var lines []string
	for _, l := range strings.Split(strings.ReplaceAll(sample, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(l) == "" {
			continue
		}
		lines = append(lines, l)
		if len(lines) == sampleLines {
			break
		}
	}
	if len(lines) == 0 {
		return 0, ErrNoDelimiter
	}

	var best, fallback rune
	bestCount, fallbackTotal := 0, 0
	for _, c := range Candidates {
		first := strings.Count(lines[0], string(c))
		consistent, everywhere := first > 0, true
		total := 0
		for _, l := range lines {
			n := strings.Count(l, string(c))
			total += n
			if n != first {
				consistent = false
			}
			if n == 0 {
				everywhere = false
			}
		}
		if consistent && first > bestCount {
			best, bestCount = c, first
		}
		if everywhere && total > fallbackTotal {
			fallback, fallbackTotal = c, total
		}
	}
	switch {
	case bestCount > 0:
		return best, nil
	case fallbackTotal > 0:
		return fallback, nil
	}
	return 0, ErrNoDelimiter
}

// Load reads the file at path into a frame. A zero delim is detected with
// Sniff, falling back to SniffText. The first row is the header.
func Load(ctx context.Context, path string, delim rune) (*table.Frame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("파일 읽기 실패: %w", err)
	}
	if delim == 0 {
		if delim, err = Sniff(ctx, path); err != nil {
			if delim, err = SniffText(string(data)); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
		}
	}
	return Read(bytes.NewReader(data), delim)
}

// Read parses delimited text with a header row. Short rows are padded with
// nulls; rows longer than the header are an error.
func Read(r io.Reader, delim rune) (*table.Frame, error) {
	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return table.NewFrame(nil, nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("헤더 읽기 실패: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("행 읽기 실패: %w", err)
		}
		if len(rec) > len(header) {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("line %d: %d fields, header has %d", line, len(rec), len(header))
		}
		rows = append(rows, rec)
	}
	return table.NewFrame(header, rows), nil
}
