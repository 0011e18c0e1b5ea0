package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"strings"

	simple_util "github.com/liserjrqlxue/simple-util"
	"github.com/pkg/errors"
)

// StageFailure reports a nonzero exit from an external tool, carrying
// enough context to reproduce the invocation by hand.
type StageFailure struct {
	Tool     string
	Args     []string
	ExitCode int
	Err      error
}

func (e *StageFailure) Error() string {
	return fmt.Sprintf("%s %s: exit status %d",
		e.Tool, strings.Join(e.Args, " "), e.ExitCode)
}

func (e *StageFailure) Unwrap() error { return e.Err }

// Logger adapts *log.Logger to io.Writer so external tool stderr lands
// in the pipeline log.
type Logger struct {
	*log.Logger
}

func (l *Logger) Write(b []byte) (int, error) {
	l.Logger.Printf("%s", b)
	return len(b), nil
}

// Runner invokes external tools synchronously. A zero Runner sends
// tool output to the process stderr.
type Runner struct {
	// Sink receives the tools' stderr, and stdout when it is not
	// redirected to a file.
	Sink io.Writer
}

func (r *Runner) sink() io.Writer {
	if r.Sink != nil {
		return r.Sink
	}
	return os.Stderr
}

// Run blocks until the tool exits. When stdoutPath is non-empty the
// tool's stdout is written verbatim there, truncating any previous
// content. A nonzero exit is returned as a *StageFailure.
func (r *Runner) Run(tool string, args []string, stdoutPath string) error {
	log.Printf("run %s %s", tool, strings.Join(args, " "))
	cmd := exec.Command(tool, args...)
	cmd.Stderr = r.sink()
	cmd.Stdout = r.sink()

	if stdoutPath != "" {
		f, err := os.Create(stdoutPath)
		if err != nil {
			return errors.Wrapf(err, "create stdout target for %s", tool)
		}
		defer simple_util.DeferClose(f)
		cmd.Stdout = f
	}

	if err := cmd.Run(); err != nil {
		code := -1
		if ee, ok := err.(*exec.ExitError); ok {
			code = ee.ExitCode()
		}
		return &StageFailure{Tool: tool, Args: args, ExitCode: code, Err: err}
	}
	return nil
}
