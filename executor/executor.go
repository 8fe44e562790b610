// Package executor models external-tool invocations as typed operations. Every
// pipeline stage's real work is a contract around some external tool (compiler,
// binding generator, packager), so each invocation is an explicit Command value
// run through the Runner interface, letting tests substitute fake tools.
package executor

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"go.uber.org/zap"
)

// Command describes one external-tool invocation.
type Command struct {
	Program string
	Args    []string

	// Dir is the working directory; empty means the caller's.
	Dir string

	// Env holds variables appended to the current process environment.
	Env map[string]string
}

func (c Command) String() string {
	out := c.Program
	for _, a := range c.Args {
		out += " " + a
	}
	return out
}

// Result holds the output and exit code from a command execution. It is
// populated even when the command fails so callers can surface tool output.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes external commands.
type Runner interface {
	// Run executes the command, blocking until the tool exits. A non-zero
	// exit is returned as an error; the Result is still populated.
	Run(ctx context.Context, cmd Command, opts ...Option) (*Result, error)

	// LookPath reports where a program resolves to, or an error when it is
	// not installed.
	LookPath(program string) (string, error)
}

// Options configures command execution behavior.
type Options struct {
	// Console streams the tool's output to the parent's stdout/stderr in
	// addition to capturing it.
	Console bool

	// Custom stdout/stderr writers (for advanced use cases).
	StdoutWriter io.Writer
	StderrWriter io.Writer
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithConsole enables or disables streaming to the console.
func WithConsole(console bool) Option {
	return func(o *Options) { o.Console = console }
}

// WithStdoutWriter sets a custom stdout writer.
func WithStdoutWriter(w io.Writer) Option {
	return func(o *Options) { o.StdoutWriter = w }
}

// WithStderrWriter sets a custom stderr writer.
func WithStderrWriter(w io.Writer) Option {
	return func(o *Options) { o.StderrWriter = w }
}

// Local runs commands on the host via os/exec.
type Local struct {
	log     *zap.Logger
	options Options
}

// NewLocal creates a host runner. Base options apply to every Run and can be
// overridden per call.
func NewLocal(log *zap.Logger, opts ...Option) *Local {
	if log == nil {
		log = zap.NewNop()
	}
	options := Options{}
	for _, opt := range opts {
		opt(&options)
	}
	return &Local{log: log, options: options}
}

// Run implements Runner.
func (l *Local) Run(ctx context.Context, cmd Command, opts ...Option) (*Result, error) {
	options := l.options
	for _, opt := range opts {
		opt(&options)
	}

	ec := exec.CommandContext(ctx, cmd.Program, cmd.Args...)
	if cmd.Dir != "" {
		ec.Dir = cmd.Dir
	}
	if len(cmd.Env) > 0 {
		ec.Env = os.Environ()
		for k, v := range cmd.Env {
			ec.Env = append(ec.Env, fmt.Sprintf("%s=%s", k, v))
		}
	}

	var stdoutBuf, stderrBuf bytes.Buffer
	ec.Stdout = buildWriter(&stdoutBuf, os.Stdout, options.Console, options.StdoutWriter)
	ec.Stderr = buildWriter(&stderrBuf, os.Stderr, options.Console, options.StderrWriter)

	l.log.Debug("running command",
		zap.String("program", cmd.Program),
		zap.Strings("args", cmd.Args),
		zap.String("dir", cmd.Dir),
	)

	err := ec.Run()
	result := &Result{
		Stdout:   stdoutBuf.String(),
		Stderr:   stderrBuf.String(),
		ExitCode: exitCode(err),
	}
	if err != nil {
		return result, fmt.Errorf("run %s: %w", cmd.Program, err)
	}
	return result, nil
}

// LookPath implements Runner.
func (l *Local) LookPath(program string) (string, error) {
	path, err := exec.LookPath(program)
	if err != nil {
		return "", fmt.Errorf("lookpath %s: %w", program, err)
	}
	return path, nil
}

func buildWriter(capture *bytes.Buffer, console io.Writer, toConsole bool, custom io.Writer) io.Writer {
	writers := []io.Writer{capture}
	if toConsole {
		writers = append(writers, console)
	}
	if custom != nil {
		writers = append(writers, custom)
	}
	if len(writers) == 1 {
		return capture
	}
	return io.MultiWriter(writers...)
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
