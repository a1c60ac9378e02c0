package diag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func objectSafetySource() MapSource {
	return MapSource{
		"$DIR/object-safety.rs": {
			"trait Foo {",
			"    fn generic<T>(&self);",
			"}",
			"",
			"fn f(x: &dyn Foo) {}",
		},
	}
}

func testRenderer(src Source) *Renderer {
	return &Renderer{Source: src, Anonymize: true, ExplainCommand: "rustc"}
}

func TestRender_ErrorWithSpanAndHelp(t *testing.T) {
	r := testRenderer(objectSafetySource())

	d := Errorf("E0038", "the trait `Foo` cannot be made into an object").
		WithSpan(Span{
			File: "$DIR/object-safety.rs", LineStart: 5, LineEnd: 5,
			ColStart: 10, ColEnd: 17, Primary: true,
			Label: "`Foo` cannot be made into an object",
		}).
		WithHelp("consider moving `generic` to another trait")

	want := strings.Join([]string{
		"error[E0038]: the trait `Foo` cannot be made into an object",
		"  --> $DIR/object-safety.rs:5:10",
		"   |",
		"LL | fn f(x: &dyn Foo) {}",
		"   |          ^^^^^^^ `Foo` cannot be made into an object",
		"   |",
		"   = help: consider moving `generic` to another trait",
	}, "\n")
	assert.Equal(t, want, r.Render(d))
}

func TestRender_ChildWithSpanGetsOwnBlock(t *testing.T) {
	r := testRenderer(objectSafetySource())

	d := Errorf("E0038", "the trait `Foo` cannot be made into an object").
		WithSpan(Span{
			File: "$DIR/object-safety.rs", LineStart: 5, LineEnd: 5,
			ColStart: 10, ColEnd: 17, Primary: true,
		})
	d.Children = append(d.Children, Diagnostic{
		Level:   LevelNote,
		Message: `for a trait to be "object safe" it needs to allow building a vtable`,
		Spans: []Span{{
			File: "$DIR/object-safety.rs", LineStart: 2, LineEnd: 2,
			ColStart: 8, ColEnd: 15, Primary: true,
		}},
	})

	got := r.Render(d)
	require.Contains(t, got, "error[E0038]:")
	assert.Contains(t, got, "note: for a trait to be \"object safe\" it needs to allow building a vtable\n  --> $DIR/object-safety.rs:2:8")
	assert.Contains(t, got, "LL |     fn generic<T>(&self);")
	assert.Contains(t, got, "   |        ^^^^^^^")
}

func TestRender_SecondarySpanUsesDashes(t *testing.T) {
	src := MapSource{"$DIR/a.rs": {"let x = y + z;"}}
	r := testRenderer(src)

	d := New(LevelError, "mismatched types").
		WithSpan(Span{File: "$DIR/a.rs", LineStart: 1, ColStart: 9, ColEnd: 10, Primary: true}).
		WithSpan(Span{File: "$DIR/a.rs", LineStart: 1, ColStart: 13, ColEnd: 14, Primary: false, Label: "expected `u32`"})

	got := r.Render(d)
	assert.Contains(t, got, "   |         ^   - expected `u32`")
}

func TestRender_MissingSourceOmitsQuotedRows(t *testing.T) {
	r := testRenderer(MapSource{})
	d := Errorf("E0601", "`main` function not found").
		WithSpan(Span{File: "$DIR/missing.rs", LineStart: 1, ColStart: 1, ColEnd: 1, Primary: true})

	got := r.Render(d)
	assert.Contains(t, got, "  --> $DIR/missing.rs:1:1")
	assert.NotContains(t, got, "LL |")
}

func TestRender_NumberedGutter(t *testing.T) {
	src := MapSource{"a.rs": {"", "", "", "", "", "", "", "", "", "let q = ();"}}
	r := &Renderer{Source: src, Anonymize: false}

	d := New(LevelWarning, "unused variable: `q`").
		WithSpan(Span{File: "a.rs", LineStart: 10, ColStart: 5, ColEnd: 6, Primary: true})

	got := r.Render(d)
	assert.Contains(t, got, "10 | let q = ();")
	assert.Contains(t, got, "  --> a.rs:10:5")
}

func TestRenderAll_SingleError(t *testing.T) {
	r := testRenderer(MapSource{})
	diags := []Diagnostic{*New(LevelError, "expected one of `!` or `::`, found `(`")}

	want := "error: expected one of `!` or `::`, found `(`\n" +
		"\n" +
		"error: aborting due to 1 previous error\n"
	assert.Equal(t, want, r.RenderAll(diags))
}

func TestRenderAll_ErrorsAndWarnings(t *testing.T) {
	r := testRenderer(MapSource{})
	diags := []Diagnostic{
		{Level: LevelError, Code: "E0658", Message: "loops are not allowed in const fn"},
		{Level: LevelError, Code: "E0038", Message: "trait objects"},
		{Level: LevelWarning, Message: "bare trait object"},
	}

	got := r.RenderAll(diags)
	assert.Contains(t, got, "error: aborting due to 2 previous errors; 1 warning emitted\n")
	assert.Contains(t, got, "Some errors have detailed explanations: E0038, E0658.\n")
	assert.Contains(t, got, "For more information about an error, try `rustc --explain E0038`.\n")
}

func TestRenderAll_WarningsOnly(t *testing.T) {
	r := testRenderer(MapSource{})
	diags := []Diagnostic{
		{Level: LevelWarning, Message: "a"},
		{Level: LevelWarning, Message: "b"},
	}
	got := r.RenderAll(diags)
	assert.Contains(t, got, "warning: 2 warnings emitted\n")
	assert.NotContains(t, got, "aborting")
}

func TestRenderAll_Empty(t *testing.T) {
	r := testRenderer(MapSource{})
	assert.Equal(t, "", r.RenderAll(nil))
}

func TestFileSource_MissingFile(t *testing.T) {
	fs := NewFileSource()
	_, ok := fs.Line("/nonexistent/path/file.rs", 1)
	assert.False(t, ok)
	// Second lookup hits the negative cache; must still report missing.
	_, ok = fs.Line("/nonexistent/path/file.rs", 1)
	assert.False(t, ok)
}
