package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexGrammar(t *testing.T) {
	cases := []struct {
		in   string
		want State
	}{
		{"I8", Accepted},
		{"I", Intermediate},
		{"I8I8", Accepted},
		{"I8xI8x", Rejected},
		{"", Accepted},
		{"Z8", Rejected},
		{"Ix", Accepted},
		{"I8N2", Accepted},
		{"I8N", Intermediate},
		{"IxIx", Rejected},
		{"IxN2", Accepted},
		{"Y8", Rejected},
		{"8", Rejected},
		{"I8 ", Rejected},
		{"I8\n", Rejected},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Index.Validate(c.in), "Index.Validate(%q)", c.in)
	}
}

func TestReadGrammar(t *testing.T) {
	cases := []struct {
		in   string
		want State
	}{
		{"Y151", Accepted},
		{"Yx", Accepted},
		{"U8Y143", Accepted},
		{"Y", Intermediate},
		{"N2Y", Intermediate},
		{"YxYx", Rejected},
		{"I8", Rejected},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Read.Validate(c.in), "Read.Validate(%q)", c.in)
	}
}

func TestCompleteRejectsEmptyAndPartial(t *testing.T) {
	assert.False(t, Index.Complete(""))
	assert.False(t, Index.Complete("I"))
	assert.True(t, Index.Complete("I10"))
	assert.True(t, Read.Complete("Yx"))
}

func TestAdapterGrammar(t *testing.T) {
	assert.Equal(t, Accepted, Adapter.Validate(""))
	assert.Equal(t, Accepted, Adapter.Validate("acgt+ACGT"))
	assert.Equal(t, Rejected, Adapter.Validate("ACGN"))
	assert.True(t, Adapter.Complete("CTGTCTCTTATACACATCT"))
}

func TestNameGrammar(t *testing.T) {
	assert.Equal(t, Accepted, Name.Validate("GMS560_Index_Kit"))
	assert.Equal(t, Accepted, Name.Validate(""))
	assert.Equal(t, Rejected, Name.Validate("has space"))
	assert.Equal(t, Rejected, Name.Validate("dash-ed"))
	assert.False(t, Name.Complete(""))
}

func TestVersionGrammar(t *testing.T) {
	cases := []struct {
		in   string
		want State
	}{
		{"1", Accepted},
		{"1.2.3", Accepted},
		{"1.", Intermediate},
		{"1.2.", Intermediate},
		{"1.2.3.", Rejected},
		{"1.2.3.4", Rejected},
		{"1234", Rejected},
		{"a", Rejected},
		{"", Accepted},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Version.Validate(c.in), "Version.Validate(%q)", c.in)
	}
}

func TestLookup(t *testing.T) {
	g, err := Lookup("INDEX")
	require.NoError(t, err)
	assert.Equal(t, Accepted, g.Validate("I8"))

	_, err = Lookup("nope")
	assert.ErrorContains(t, err, "adapter, index, name, read, version")
	assert.Equal(t, "intermediate", Intermediate.String())
}
