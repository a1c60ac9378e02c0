package normalize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply_DirSubstitution(t *testing.T) {
	n := New("tests/ui/object-safety")
	got, err := n.Apply("error[E0038]: nope\n  --> tests/ui/object-safety/case.rs:5:10\n")
	require.NoError(t, err)
	assert.Contains(t, got, "  --> $DIR/case.rs:5:10")
}

func TestApply_BackslashPathsInArrowLines(t *testing.T) {
	n := &Normalizer{TestDir: ""}
	got, err := n.Apply(`  --> ui\const-fn\case.rs:4:5` + "\n")
	require.NoError(t, err)
	assert.Equal(t, "  --> ui/const-fn/case.rs:4:5\n", got)
}

func TestApply_AnonymizesGutter(t *testing.T) {
	in := strings.Join([]string{
		"error: boom",
		"  --> $DIR/a.rs:12:5",
		"   |",
		"12 |     loop {}",
		"   |     ^^^^",
		"",
	}, "\n")
	n := &Normalizer{AnonymizeGutter: true}
	got, err := n.Apply(in)
	require.NoError(t, err)
	assert.Contains(t, got, "LL |     loop {}")
	assert.NotContains(t, got, "12 |")
}

func TestApply_WideGutterRealigned(t *testing.T) {
	in := strings.Join([]string{
		"   --> $DIR/a.rs:104:5",
		"    |",
		"104 |     loop {}",
		"    |     ^^^^",
		"",
	}, "\n")
	n := &Normalizer{AnonymizeGutter: true}
	got, err := n.Apply(in)
	require.NoError(t, err)
	want := strings.Join([]string{
		"  --> $DIR/a.rs:104:5",
		"   |",
		"LL |     loop {}",
		"   |     ^^^^",
		"",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestApply_WhitespaceCanonicalization(t *testing.T) {
	n := &Normalizer{}
	got, err := n.Apply("error: x   \r\nnote: y\n\n\n")
	require.NoError(t, err)
	assert.Equal(t, "error: x\nnote: y\n", got)
}

func TestApply_EmptyInput(t *testing.T) {
	n := New("x")
	got, err := n.Apply("")
	require.NoError(t, err)
	assert.Equal(t, "", got)

	got, err = n.Apply("\n\n")
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestApply_UserRules(t *testing.T) {
	n := (&Normalizer{}).WithRules(Rule{Pattern: `\d+ bytes`, Replacement: "N bytes"})
	got, err := n.Apply("error: allocation of 1024 bytes failed\n")
	require.NoError(t, err)
	assert.Equal(t, "error: allocation of N bytes failed\n", got)
}

func TestApply_BadUserRule(t *testing.T) {
	n := (&Normalizer{}).WithRules(Rule{Pattern: `[`, Replacement: ""})
	_, err := n.Apply("anything\n")
	assert.Error(t, err)
}
