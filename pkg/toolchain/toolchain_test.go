package toolchain

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell-based toolchain tests need a POSIX sh")
	}
}

func TestBuildArgv_DefaultTemplate(t *testing.T) {
	tc := New("rustc")
	tc.Flags = []string{"--crate-type=lib"}

	argv := tc.BuildArgv(Job{
		File:     "ui/case.rs",
		Flags:    []string{"-Zunstable-options"},
		Edition:  "2021",
		Revision: "stock",
		JSON:     true,
	})

	assert.Equal(t, []string{
		"rustc",
		"ui/case.rs",
		"--crate-type=lib",
		"--edition=2021",
		"--cfg", "stock",
		"--error-format=json",
		"-Zunstable-options",
	}, argv)
}

func TestBuildArgv_CustomTemplate(t *testing.T) {
	tc := New("cargo", "build", "--manifest-path={file}", "{flags}")
	argv := tc.BuildArgv(Job{File: "Cargo.toml", Flags: []string{"--offline"}})
	assert.Equal(t, []string{"cargo", "build", "--manifest-path=Cargo.toml", "--offline"}, argv)
}

func TestBuildArgv_OutDir(t *testing.T) {
	tc := New("rustc")
	argv := tc.BuildArgv(Job{File: "a.rs", OutDir: "/tmp/build"})
	assert.Equal(t, []string{"rustc", "a.rs", "--out-dir", "/tmp/build"}, argv)
}

func TestCompile_Success(t *testing.T) {
	requireShell(t)
	tc := New("sh", "-c", `echo compiled; echo "warning: x" >&2`)

	res, err := tc.Compile(context.Background(), Job{})
	require.NoError(t, err)
	assert.Equal(t, ClassSuccess, res.Class)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "compiled\n", res.Stdout)
	assert.Equal(t, "warning: x\n", res.Stderr)
	assert.False(t, res.Truncated)
}

func TestCompile_CompileError(t *testing.T) {
	requireShell(t)
	tc := New("sh", "-c", `echo "error[E0038]: nope" >&2; exit 1`)

	res, err := tc.Compile(context.Background(), Job{})
	require.NoError(t, err)
	assert.Equal(t, ClassCompileError, res.Class)
	assert.Equal(t, 1, res.ExitCode)
	assert.Contains(t, res.Stderr, "E0038")
}

func TestCompile_CrashExitCode(t *testing.T) {
	requireShell(t)
	tc := New("sh", "-c", `exit 101`)

	res, err := tc.Compile(context.Background(), Job{})
	require.NoError(t, err)
	assert.Equal(t, ClassCrashed, res.Class)
	assert.Equal(t, 101, res.ExitCode)
}

func TestCompile_CrashICEMarker(t *testing.T) {
	requireShell(t)
	tc := New("sh", "-c", `echo "error: internal compiler error: unexpected panic" >&2; exit 1`)

	res, err := tc.Compile(context.Background(), Job{})
	require.NoError(t, err)
	assert.Equal(t, ClassCrashed, res.Class)
}

func TestCompile_ToolMissing(t *testing.T) {
	tc := New("definitely-not-a-compiler-2a6f")

	res, err := tc.Compile(context.Background(), Job{File: "a.rs"})
	require.NoError(t, err)
	assert.Equal(t, ClassToolMissing, res.Class)
	assert.Contains(t, res.Stderr, "compiler not found")
}

func TestCompile_Timeout(t *testing.T) {
	requireShell(t)
	tc := New("sh", "-c", `sleep 10`)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	res, err := tc.Compile(ctx, Job{})
	require.NoError(t, err)
	assert.Equal(t, ClassTimeout, res.Class)
}

func TestCompile_CapsRunawayOutput(t *testing.T) {
	requireShell(t)
	tc := New("sh", "-c", `yes "error: flood" | head -c 200000 >&2`)
	tc.StderrLimit = 1024

	res, err := tc.Compile(context.Background(), Job{})
	require.NoError(t, err)
	assert.True(t, res.Truncated)
	assert.Len(t, res.Stderr, 1024)
}

func TestCompile_StderrFloodBeforeStdout(t *testing.T) {
	requireShell(t)
	// The child fills stderr far past any pipe buffer before stdout
	// produces a byte; both pipes must be read in parallel or the
	// child stalls mid-write and the compile never finishes.
	tc := New("sh", "-c", `yes "error: flood" | head -c 200000 >&2; echo done`)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res, err := tc.Compile(ctx, Job{})
	require.NoError(t, err)
	assert.Equal(t, ClassSuccess, res.Class)
	assert.Equal(t, "done\n", res.Stdout)
	assert.Contains(t, res.Stderr, "error: flood")
}

func TestDetect(t *testing.T) {
	requireShell(t)
	tc := New("sh")
	tc.VersionArgs = []string{"-c", "echo rustc 1.99.0-nightly; echo second line"}

	version, err := tc.Detect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "rustc 1.99.0-nightly", version)
}

func TestDetect_Missing(t *testing.T) {
	tc := New("definitely-not-a-compiler-2a6f")
	_, err := tc.Detect(context.Background())
	assert.ErrorIs(t, err, ErrToolMissing)
}
