package delimited

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSniffText(t *testing.T) {
	cases := []struct {
		name   string
		sample string
		want   rune
	}{
		{"comma", "a,b,c\n1,2,3\n", ','},
		{"tab", "a\tb\n1\t2\n", '\t'},
		{"semicolon beats inconsistent comma", "a;b;c\n1,5;2;3\n4;5;6\n", ';'},
		{"pipe", "a|b\n1|2\n", '|'},
		{"crlf", "a,b\r\n1,2\r\n", ','},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := SniffText(c.sample)
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestSniffTextFallback(t *testing.T) {
	// no candidate is consistent, comma is present on every line
	got, err := SniffText("a,b,c\n1,2\n")
	require.NoError(t, err)
	assert.Equal(t, ',', got)

	_, err = SniffText("single\ncolumn\n")
	assert.ErrorIs(t, err, ErrNoDelimiter)
	_, err = SniffText("")
	assert.ErrorIs(t, err, ErrNoDelimiter)
}

func TestRead(t *testing.T) {
	f, err := Read(strings.NewReader("\ufeffname,index_i7\nA1,ACGT\nA2\n"), ',')
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "index_i7"}, f.Columns())
	assert.Equal(t, 2, f.Len())
	assert.Equal(t, "", f.Value(1, "index_i7"))

	_, err = Read(strings.NewReader("a,b\n1,2,3\n"), ',')
	assert.ErrorContains(t, err, "header has 2")

	f, err = Read(strings.NewReader(""), ',')
	require.NoError(t, err)
	assert.True(t, f.Empty())
}

func TestLoadExplicitDelimiter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kit.csv")
	require.NoError(t, os.WriteFile(path, []byte("name;seq\nA;ACGT\nB;GGCC\n"), 0644))

	f, err := Load(context.Background(), path, ';')
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "seq"}, f.Columns())
	assert.Equal(t, "GGCC", f.Value(1, "seq"))
}

func TestLoadDetectsDelimiter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kit.tsv")
	require.NoError(t, os.WriteFile(path, []byte("name\tseq\tpos\nA\tACGT\tA01\nB\tGGCC\tA02\n"), 0644))

	f, err := Load(context.Background(), path, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "seq", "pos"}, f.Columns())
	assert.Equal(t, 2, f.Len())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "none.csv"), 0)
	assert.Error(t, err)
}
