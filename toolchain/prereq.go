// Package toolchain gates the pipeline on its external prerequisites and
// drives the native compiler across the target matrix.
package toolchain

import (
	"os"

	"go.uber.org/zap"

	"github.com/damus-io/nostr-sdk/errors"
	"github.com/damus-io/nostr-sdk/executor"
	"github.com/damus-io/nostr-sdk/fs"
)

const checkOp = "toolchain.Check"

// AndroidNDKEnv names the environment variable pointing at the installed
// Android NDK root.
const AndroidNDKEnv = "ANDROID_NDK_HOME"

// Checker validates toolchain prerequisites before any target-specific work
// begins. Checks run once per invocation and are never cached across runs.
type Checker struct {
	fsys   fs.Filesystem
	runner executor.Runner
	getenv func(string) string
	log    *zap.Logger
}

// NewChecker creates a Checker. getenv defaults to os.Getenv.
func NewChecker(fsys fs.Filesystem, runner executor.Runner, getenv func(string) string, log *zap.Logger) *Checker {
	if getenv == nil {
		getenv = os.Getenv
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Checker{fsys: fsys, runner: runner, getenv: getenv, log: log}
}

// EnvDir verifies that an environment variable is set and names an existing
// directory. The diagnostic names the missing variable so the operator knows
// exactly what to configure.
func (c *Checker) EnvDir(name, envVar string) error {
	value := c.getenv(envVar)
	if value == "" {
		return errors.Newf(errors.CodePrecondition, checkOp,
			"%s requires %s to be set", name, envVar)
	}

	info, err := c.fsys.Stat(value)
	if err != nil {
		return errors.Newf(errors.CodePrecondition, checkOp,
			"%s: %s points at %s, which does not exist", name, envVar, value)
	}
	if !info.IsDir() {
		return errors.Newf(errors.CodePrecondition, checkOp,
			"%s: %s points at %s, which is not a directory", name, envVar, value)
	}

	c.log.Debug("prerequisite satisfied", zap.String("name", name), zap.String("path", value))
	return nil
}

// Tool verifies that a program is installed.
func (c *Checker) Tool(name, program string) error {
	if _, err := c.runner.LookPath(program); err != nil {
		return errors.Newf(errors.CodePrecondition, checkOp,
			"%s requires %s on PATH", name, program)
	}
	return nil
}
