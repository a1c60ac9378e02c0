// Package toolchain invokes the compiler under test and classifies how
// each invocation ended. The harness never interprets the compiler's
// judgement beyond its exit class; diagnostics are handled downstream.
package toolchain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/diagcheck/diagcheck/pkg/duration"
	"github.com/diagcheck/diagcheck/pkg/iohelper"
)

// ErrToolMissing indicates the compiler binary could not be found or
// started.
var ErrToolMissing = errors.New("toolchain: compiler not found")

// iceMarker is the prefix rustc prints when it panics. An ICE is a
// compiler bug, never a valid test outcome.
const iceMarker = "internal compiler error"

// iceExitCode is the exit status of a rustc panic.
const iceExitCode = 101

// Class describes how a compile invocation ended.
type Class string

const (
	// ClassSuccess is a clean exit 0.
	ClassSuccess Class = "success"
	// ClassCompileError is a normal rejection: the compiler ran and
	// reported errors. Expected for check-fail cases.
	ClassCompileError Class = "compile-error"
	// ClassToolMissing means the binary could not be started.
	ClassToolMissing Class = "tool-missing"
	// ClassTimeout means the per-case deadline expired.
	ClassTimeout Class = "timeout"
	// ClassCrashed covers signals and internal compiler errors.
	ClassCrashed Class = "crashed"
)

// Job describes one compile of a test source. Flags carries the merged
// header and override flags for the case.
type Job struct {
	File     string
	Flags    []string
	Edition  string
	Revision string
	JSON     bool
	OutDir   string
}

// Result is the outcome of one invocation.
type Result struct {
	Class     Class
	ExitCode  int
	Stdout    string
	Stderr    string
	Truncated bool
	Argv      []string
	Duration  time.Duration
}

// Toolchain runs the compiler. Args is an argv template; {file} and
// {flags} placeholders are expanded per job, and an empty template
// defaults to "{file} {flags}".
type Toolchain struct {
	Command string
	Args    []string

	// Flags are suite-level flags prepended to every job's flags.
	Flags []string

	// VersionArgs override the probe arguments used by Detect.
	VersionArgs []string

	// StderrLimit caps captured stderr (0 = iohelper default).
	StderrLimit int64
}

// New creates a toolchain for the given compiler command.
func New(command string, args ...string) *Toolchain {
	return &Toolchain{Command: command, Args: args}
}

// BuildArgv expands the argv template for a job. Flag order is
// suite flags, edition, revision cfg, error format, then job flags, so
// per-case flags win when the compiler takes the last occurrence.
func (t *Toolchain) BuildArgv(job Job) []string {
	flags := make([]string, 0, len(t.Flags)+len(job.Flags)+4)
	flags = append(flags, t.Flags...)
	if job.Edition != "" {
		flags = append(flags, "--edition="+job.Edition)
	}
	if job.Revision != "" {
		flags = append(flags, "--cfg", job.Revision)
	}
	if job.JSON {
		flags = append(flags, "--error-format=json")
	}
	flags = append(flags, job.Flags...)
	if job.OutDir != "" {
		flags = append(flags, "--out-dir", job.OutDir)
	}

	template := t.Args
	if len(template) == 0 {
		template = []string{"{file}", "{flags}"}
	}

	argv := []string{t.Command}
	for _, arg := range template {
		switch arg {
		case "{file}":
			argv = append(argv, job.File)
		case "{flags}":
			argv = append(argv, flags...)
		default:
			argv = append(argv, strings.ReplaceAll(arg, "{file}", job.File))
		}
	}
	return argv
}

// Compile runs the compiler for one job. The returned error covers
// harness failures only; compiler outcomes land in Result.Class.
func (t *Toolchain) Compile(ctx context.Context, job Job) (*Result, error) {
	argv := t.BuildArgv(job)
	res := &Result{Argv: argv}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		res.Class = ClassToolMissing
		res.ExitCode = -1
		res.Stderr = fmt.Sprintf("%v: %v", ErrToolMissing, err)
		return res, nil
	}

	stderrLimit := t.StderrLimit
	if stderrLimit <= 0 {
		stderrLimit = iohelper.LargeMaxOutputSize
	}

	// Both pipes drain in parallel: a compiler that fills one past the
	// pipe buffer while the harness reads the other would block forever.
	var (
		wg      sync.WaitGroup
		outData []byte
		errData []byte
		errErr  error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		// stdout carries artifact notifications at most, so capture
		// failures there are logged rather than failing the case.
		outData = iohelper.ReadCappedOrLog(stdout, slog.Default())
		io.Copy(io.Discard, stdout)
	}()
	go func() {
		defer wg.Done()
		errData, errErr = drainCapped(stderr, stderrLimit)
	}()
	wg.Wait()
	waitErr := cmd.Wait()
	res.Duration = time.Since(start)

	res.Stdout = string(outData)
	res.Stderr = string(errData)
	res.Truncated = iohelper.Truncated(outData, iohelper.DefaultMaxOutputSize) ||
		iohelper.Truncated(errData, stderrLimit)
	if errErr != nil {
		return nil, fmt.Errorf("capturing output: %w", errErr)
	}

	res.classify(ctx, waitErr)
	return res, nil
}

// classify maps the process outcome onto an exit class.
func (r *Result) classify(ctx context.Context, waitErr error) {
	if ctx.Err() == context.DeadlineExceeded {
		r.Class = ClassTimeout
		r.ExitCode = -1
		return
	}

	var exitErr *exec.ExitError
	switch {
	case waitErr == nil:
		r.ExitCode = 0
		r.Class = ClassSuccess
	case errors.As(waitErr, &exitErr):
		r.ExitCode = exitErr.ExitCode()
		switch {
		case r.ExitCode < 0 || r.ExitCode == iceExitCode ||
			strings.Contains(r.Stderr, iceMarker):
			r.Class = ClassCrashed
		default:
			r.Class = ClassCompileError
		}
	default:
		r.ExitCode = -1
		r.Class = ClassToolMissing
	}
}

// drainCapped reads up to maxSize from r, then discards the rest so
// the child never blocks on a full pipe.
func drainCapped(r io.Reader, maxSize int64) ([]byte, error) {
	data, err := iohelper.ReadCapped(r, maxSize)
	if err != nil {
		return data, err
	}
	_, err = io.Copy(io.Discard, r)
	return data, err
}

// Detect probes the compiler binary and returns its version line.
func (t *Toolchain) Detect(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, duration.ToolProbe)
	defer cancel()

	args := t.VersionArgs
	if len(args) == 0 {
		args = []string{"--version"}
	}

	out, err := exec.CommandContext(ctx, t.Command, args...).Output()
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrToolMissing, t.Command, err)
	}

	version, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	return version, nil
}
