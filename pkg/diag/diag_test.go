package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelWarning, ParseLevel("warning"))
	assert.Equal(t, LevelFailureNote, ParseLevel("failure-note"))
	assert.Equal(t, Level("custom"), ParseLevel("custom"))
}

func TestLevelIsError(t *testing.T) {
	assert.True(t, LevelError.IsError())
	assert.True(t, LevelICE.IsError())
	assert.False(t, LevelWarning.IsError())
	assert.False(t, LevelNote.IsError())
}

func TestSpanWidth(t *testing.T) {
	assert.Equal(t, 8, Span{ColStart: 13, ColEnd: 21}.Width())
	assert.Equal(t, 1, Span{ColStart: 5, ColEnd: 5}.Width())
	assert.Equal(t, 1, Span{ColStart: 5, ColEnd: 2}.Width())
}

func TestHeader(t *testing.T) {
	d := Errorf("E0038", "the trait `%s` cannot be made into an object", "Foo")
	assert.Equal(t, "error[E0038]: the trait `Foo` cannot be made into an object", d.Header())

	w := New(LevelWarning, "unused variable: `x`")
	assert.Equal(t, "warning: unused variable: `x`", w.Header())
}

func TestPrimarySpan(t *testing.T) {
	d := New(LevelError, "boom").
		WithSpan(Span{File: "a.rs", LineStart: 2, Primary: false}).
		WithSpan(Span{File: "a.rs", LineStart: 7, Primary: true})

	s, ok := d.PrimarySpan()
	require.True(t, ok)
	assert.Equal(t, 7, s.LineStart)

	_, ok = New(LevelError, "no spans").PrimarySpan()
	assert.False(t, ok)
}

func TestPrimarySpan_FallsBackToFirst(t *testing.T) {
	d := New(LevelNote, "n").WithSpan(Span{File: "a.rs", LineStart: 3})
	s, ok := d.PrimarySpan()
	require.True(t, ok)
	assert.Equal(t, 3, s.LineStart)
}

func TestCount(t *testing.T) {
	diags := []Diagnostic{
		{Level: LevelError},
		{Level: LevelError},
		{Level: LevelWarning},
		{Level: LevelNote},
	}
	errors, warnings := Count(diags)
	assert.Equal(t, 2, errors)
	assert.Equal(t, 1, warnings)
}

func TestCodes_SortedAndDeduped(t *testing.T) {
	diags := []Diagnostic{
		{Level: LevelError, Code: "E0658"},
		{Level: LevelError, Code: "E0038"},
		{Level: LevelError, Code: "E0658"},
		{Level: LevelWarning},
	}
	assert.Equal(t, []string{"E0038", "E0658"}, Codes(diags))
}

func TestSort_ByFileLineCol(t *testing.T) {
	diags := []Diagnostic{
		{Message: "c", Spans: []Span{{File: "b.rs", LineStart: 1, ColStart: 1, Primary: true}}},
		{Message: "spanless"},
		{Message: "b", Spans: []Span{{File: "a.rs", LineStart: 9, ColStart: 5, Primary: true}}},
		{Message: "a", Spans: []Span{{File: "a.rs", LineStart: 9, ColStart: 2, Primary: true}}},
	}
	Sort(diags)
	assert.Equal(t, "a", diags[0].Message)
	assert.Equal(t, "b", diags[1].Message)
	assert.Equal(t, "c", diags[2].Message)
	assert.Equal(t, "spanless", diags[3].Message)
}
