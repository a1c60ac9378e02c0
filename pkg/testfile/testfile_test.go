package testfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diagcheck/diagcheck/pkg/diag"
	"github.com/diagcheck/diagcheck/pkg/testutil"
)

const constFnSource = `//@ check-fail
//@ edition: 2018
//@ compile-flags: -Z unstable-options

const fn f() -> usize {
    let mut x = 0;
    while x < 10 { //~ ERROR[E0658] loops are not allowed in const fn
        x += 1;
    }
    x
}

fn main() {}
`

func TestParse_HeadersAndAnnotations(t *testing.T) {
	f, err := Parse("const-fn.rs", constFnSource)
	require.NoError(t, err)

	assert.Equal(t, ModeCheckFail, f.Mode)
	assert.Equal(t, "2018", f.Edition)
	assert.Equal(t, []string{"-Z", "unstable-options"}, f.CompileFlags)
	assert.False(t, f.IgnoreTest)
	assert.Empty(t, f.UnknownDirectives)

	require.Len(t, f.Annotations, 1)
	a := f.Annotations[0]
	assert.Equal(t, 7, a.Line)
	assert.Equal(t, diag.LevelError, a.Level)
	assert.Equal(t, "E0658", a.Code)
	assert.Equal(t, "loops are not allowed in const fn", a.Message)
}

func TestParse_CaretAndPipeAdjusters(t *testing.T) {
	src := `fn main() {
    let x: u32 = "hello";
    //~^ ERROR mismatched types
    //~| NOTE expected ` + "`u32`" + `, found ` + "`&str`" + `
}
`
	f, err := Parse("adjust.rs", src)
	require.NoError(t, err)
	require.Len(t, f.Annotations, 2)
	assert.Equal(t, 2, f.Annotations[0].Line)
	assert.Equal(t, diag.LevelError, f.Annotations[0].Level)
	assert.Equal(t, 2, f.Annotations[1].Line, "//~| reuses the previous annotation's line")
	assert.Equal(t, diag.LevelNote, f.Annotations[1].Level)
}

func TestParse_StackedCarets(t *testing.T) {
	src := "fn f() {}\nbad syntax here\n\n//~^^ ERROR expected item\n"
	f, err := Parse("stack.rs", src)
	require.NoError(t, err)
	require.Len(t, f.Annotations, 1)
	assert.Equal(t, 2, f.Annotations[0].Line)
}

func TestParse_DownAdjuster(t *testing.T) {
	src := "//~v ERROR expected item\nbad\n"
	f, err := Parse("down.rs", src)
	require.NoError(t, err)
	require.Len(t, f.Annotations, 1)
	assert.Equal(t, 2, f.Annotations[0].Line)
}

func TestParse_RevisionScopedAnnotation(t *testing.T) {
	src := `//@ revisions: stock gated
//@[gated] compile-flags: --cfg feature_gate

trait Bar {}
const fn f(x: &dyn Bar) {} //[stock]~ ERROR trait objects in const fn are unstable
`
	f, err := Parse("rev.rs", src)
	require.NoError(t, err)
	assert.Equal(t, []string{"stock", "gated"}, f.Revisions)
	assert.Equal(t, []string{"--cfg", "feature_gate"}, f.RevisionFlags["gated"])

	require.Len(t, f.Annotations, 1)
	assert.True(t, f.Annotations[0].AppliesTo("stock"))
	assert.False(t, f.Annotations[0].AppliesTo("gated"))

	assert.Len(t, f.AnnotationsFor("stock"), 1)
	assert.Empty(t, f.AnnotationsFor("gated"))
}

func TestParse_NormalizeRule(t *testing.T) {
	src := `//@ normalize-stderr-test: "\\d+ bytes" -> "N bytes"` + "\nfn main() {}\n"
	f, err := Parse("norm.rs", src)
	require.NoError(t, err)
	require.Len(t, f.Normalize, 1)
	assert.Equal(t, `\\d+ bytes`, f.Normalize[0].Pattern)
	assert.Equal(t, "N bytes", f.Normalize[0].Replacement)
}

func TestParse_BadNormalizeRule(t *testing.T) {
	_, err := Parse("bad.rs", "//@ normalize-stderr-test: not-a-rule\n")
	assert.Error(t, err)
}

func TestParse_UnknownDirectiveCollected(t *testing.T) {
	f, err := Parse("u.rs", "//@ run-rustfix\nfn main() {}\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"run-rustfix"}, f.UnknownDirectives)
}

func TestParse_IgnoreTest(t *testing.T) {
	f, err := Parse("i.rs", "//@ ignore-test\nfn main() {}\n")
	require.NoError(t, err)
	assert.True(t, f.IgnoreTest)
}

func TestParse_MalformedAnnotation(t *testing.T) {
	_, err := Parse("m.rs", "fn main() {} //~ oops no keyword\n")
	assert.Error(t, err)
}

func TestParse_PipeWithoutPrevious(t *testing.T) {
	_, err := Parse("p.rs", "//~| ERROR floating\n")
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir := testutil.TempSuite(t, map[string]string{
		"case.rs": "//@ check-pass\nfn main() {}\n",
	})
	f, err := Load(dir + "/case.rs")
	require.NoError(t, err)
	assert.Equal(t, ModeCheckPass, f.Mode)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load("/nonexistent/case.rs")
	assert.Error(t, err)
}
