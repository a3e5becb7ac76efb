package table

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGrid() *Editable {
	return FromFrame(NewFrame(
		[]string{"Sample", "Seq1", "Seq2", "Empty"},
		[][]string{{"s1", "ACGT", "TTTT", ""}, {"s2", "CCCC", "GGGG", "nan"}},
	))
}

func TestFromFrameDropsEmptyColumns(t *testing.T) {
	e := newGrid()
	assert.Equal(t, []string{"Sample", "Seq1", "Seq2"}, e.Labels())
	assert.Equal(t, 2, e.Rows())
}

func TestRelabelRecordsOriginalOnce(t *testing.T) {
	e := newGrid()

	changed, err := e.Relabel(1, "index_i7")
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = e.Relabel(1, "index_i5")
	require.NoError(t, err)
	assert.True(t, changed)

	orig, ok := e.OriginalLabel(1)
	assert.True(t, ok)
	assert.Equal(t, "Seq1", orig)

	e.Restore(1)
	assert.Equal(t, "Seq1", e.Labels()[1])
	_, ok = e.OriginalLabel(1)
	assert.False(t, ok)
}

func TestRelabelMovesLabelBetweenColumns(t *testing.T) {
	e := newGrid()
	_, _ = e.Relabel(1, "index_i7")

	// 같은 label 을 다른 column 에 주면 기존 column 은 원래대로
	_, err := e.Relabel(2, "index_i7")
	require.NoError(t, err)
	assert.Equal(t, []string{"Sample", "Seq1", "index_i7"}, e.Labels())
}

func TestRelabelSameLabelReportsNoChange(t *testing.T) {
	e := newGrid()
	changed, err := e.Relabel(0, "Sample")
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = e.Relabel(9, "x")
	assert.Error(t, err)
}

func TestRestoreAllAndLabel(t *testing.T) {
	e := newGrid()
	_, _ = e.Relabel(0, "sample_id")
	_, _ = e.Relabel(1, "index_i7")
	_, _ = e.Relabel(2, "index_i5")

	e.RestoreLabel("index_i7")
	assert.Equal(t, []string{"sample_id", "Seq1", "index_i5"}, e.Labels())

	e.RestoreAll()
	assert.Equal(t, []string{"Sample", "Seq1", "Seq2"}, e.Labels())
}

func TestHiddenColumnsStayInSnapshot(t *testing.T) {
	e := newGrid()
	require.NoError(t, e.Hide(2))
	assert.True(t, e.Hidden(2))
	assert.True(t, e.Snapshot().Has("Seq2"))

	e.ShowAll()
	assert.False(t, e.Hidden(2))
}

func TestStateRoundTrip(t *testing.T) {
	e := newGrid()
	_, _ = e.Relabel(1, "index_i7")
	require.NoError(t, e.Hide(0))
	require.NoError(t, e.Set(1, 2, "AAAA"))

	b, err := json.Marshal(e.State())
	require.NoError(t, err)

	var s State
	require.NoError(t, json.Unmarshal(b, &s))
	back := FromState(s)

	assert.Equal(t, e.Labels(), back.Labels())
	assert.True(t, back.Hidden(0))
	assert.Equal(t, "AAAA", back.Snapshot().Value(1, "Seq2"))

	back.Restore(1)
	assert.Equal(t, "Seq1", back.Labels()[1])
}
