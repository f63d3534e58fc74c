// Package buildsys holds the subprocess plumbing shared by build helpers:
// the captured Result of one invocation, the Runner that produces it and the
// BuildSystem lifecycle a helper such as cmake implements.
package buildsys

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"github.com/qiniu/x/log"
)

// BuildSystem captures the configure/build lifecycle of a build helper.
type BuildSystem interface {
	// Configure generates the project files.
	Configure(args ...string) *Result

	// Build builds the generated project. config selects a configuration
	// of a multi-config project and is empty otherwise.
	Build(config string, args ...string) *Result
}

// Runner executes one external command to completion.
type Runner interface {
	Run(name string, args ...string) *Result
}

// Result is the outcome of one external invocation. Output is captured,
// never streamed.
type Result struct {
	Args   []string // program name first
	Stdout []byte
	Stderr []byte
	Err    error
}

// Failed reports whether the invocation did not complete successfully.
func (r *Result) Failed() bool {
	return r.Err != nil
}

// AsError returns nil for a successful invocation and an *ExitError
// otherwise.
func (r *Result) AsError() error {
	if r.Err == nil {
		return nil
	}
	return &ExitError{Args: r.Args, Stdout: r.Stdout, Stderr: r.Stderr, Err: r.Err}
}

// ExitError reports a failed invocation together with its captured output.
type ExitError struct {
	Args   []string
	Stdout []byte
	Stderr []byte
	Err    error
}

func (e *ExitError) Error() string {
	return CommandLine(e.Args) + ": " + e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExecRunner runs commands on the host with os/exec.
type ExecRunner struct {
	// Dir is the working directory; empty means the current one.
	Dir string
}

func (e ExecRunner) Run(name string, args ...string) *Result {
	cmdArgs := append([]string{name}, args...)
	log.Debugf("exec: %s", CommandLine(cmdArgs))

	var stdout, stderr bytes.Buffer
	cmd := exec.Command(name, args...)
	cmd.Dir = e.Dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		log.Debugf("exec: %s failed: %v", name, err)
	}
	return &Result{
		Args:   cmdArgs,
		Stdout: stdout.Bytes(),
		Stderr: stderr.Bytes(),
		Err:    err,
	}
}

// DryRunner prints every command instead of running it and reports success.
type DryRunner struct {
	W io.Writer
}

func (d DryRunner) Run(name string, args ...string) *Result {
	cmdArgs := append([]string{name}, args...)
	fmt.Fprintln(d.W, CommandLine(cmdArgs))
	return &Result{Args: cmdArgs}
}

// CommandLine renders args as a shell-like command line, quoting arguments
// that contain blanks or quotes.
func CommandLine(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		if a == "" || strings.ContainsAny(a, " \t\"'") {
			a = strconv.Quote(a)
		}
		quoted[i] = a
	}
	return strings.Join(quoted, " ")
}
