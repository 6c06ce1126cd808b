// SPDX-License-Identifier: MPL-2.0

// Package cmdrun executes one external command and returns its exit
// status together with the aggregated text of both output streams.
//
// stdout and stderr are drained concurrently, each on its own
// goroutine, from process start until the stream is exhausted and the
// process has been waited on. A child that fills both OS pipe buffers
// while only one stream is drained would otherwise block forever.
// Lines are captured in arrival order per stream; interleaving between
// the two streams is not deterministic, only that both are fully
// drained before Run returns.
//
// There are no retries and no timeout at this layer: failures surface
// purely as a non-zero exit code for the caller to interpret. The
// context is accepted so a cancellation policy can be layered on later
// without redesign.
package cmdrun

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// Command describes one external command as an argument vector.
// Commands are never assembled from shell strings, so no quoting rules
// apply on any operating system.
type Command struct {
	// Args is the argument vector; Args[0] is the executable.
	Args []string
	// Dir is the working directory (empty means inherit).
	Dir string
	// SuppressOutput disables echoing captured stdout lines to the
	// logger. Aggregation is unaffected.
	SuppressOutput bool
	// SuppressErrors disables echoing captured stderr lines to the
	// logger. Aggregation is unaffected.
	SuppressErrors bool
}

// String renders the command for log messages.
func (c Command) String() string {
	return strings.Join(c.Args, " ")
}

// Result is the outcome of a completed command.
type Result struct {
	// ExitCode is the process exit status.
	ExitCode int
	// Stdout is every line read from stdout, newline-joined, in
	// arrival order. Independent of terminal buffering: pipes, never
	// a pty.
	Stdout string
	// Stderr is every line read from stderr, newline-joined.
	Stderr string
}

// Ok reports whether the command exited zero.
func (r *Result) Ok() bool {
	return r.ExitCode == 0
}

// Run executes the command to completion. The returned error is
// non-nil only when the process could not be started or its pipes
// could not be set up; a non-zero exit status is reported through
// Result.ExitCode, never as an error.
//
// Captured lines are echoed through logger as they arrive (stdout at
// debug level, stderr at error level) unless suppressed per stream.
func Run(ctx context.Context, logger *log.Logger, command Command) (*Result, error) {
	if len(command.Args) == 0 {
		return nil, fmt.Errorf("empty command")
	}

	logger.Debug("executing", "command", command.String())

	cmd := exec.CommandContext(ctx, command.Args[0], command.Args[1:]...)
	cmd.Dir = command.Dir

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open stdout pipe: %w", err)
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", command.Args[0], err)
	}

	echoOut := func(line string) {
		if !command.SuppressOutput {
			logger.Debug(line)
		}
	}
	echoErr := func(line string) {
		if !command.SuppressErrors {
			logger.Error(line)
		}
	}

	var wg sync.WaitGroup
	var stdoutLines, stderrLines []string
	var stdoutErr, stderrErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		stdoutLines, stdoutErr = drain(stdoutPipe, echoOut)
	}()
	go func() {
		defer wg.Done()
		stderrLines, stderrErr = drain(stderrPipe, echoErr)
	}()

	// Both drains must finish before Wait closes the pipes.
	wg.Wait()

	result := &Result{
		Stdout: strings.Join(stdoutLines, "\n"),
		Stderr: strings.Join(stderrLines, "\n"),
	}

	if err := cmd.Wait(); err != nil {
		exitErr, ok := err.(*exec.ExitError)
		if !ok {
			return nil, fmt.Errorf("failed to run %s: %w", command.Args[0], err)
		}
		result.ExitCode = exitErr.ExitCode()
	}

	if stdoutErr != nil {
		return nil, fmt.Errorf("failed to read stdout of %s: %w", command.Args[0], stdoutErr)
	}
	if stderrErr != nil {
		return nil, fmt.Errorf("failed to read stderr of %s: %w", command.Args[0], stderrErr)
	}

	return result, nil
}

// drain reads a stream line by line until EOF, echoing each one.
// Lines are unbounded: the reader grows as needed, so a tool that
// prints megabytes on a single line never stalls the pipe. Reading to
// EOF, rather than polling process liveness, guarantees the pipe
// buffer can never fill while the other stream is being read.
func drain(r io.Reader, echo func(string)) ([]string, error) {
	var lines []string

	reader := bufio.NewReader(r)
	for {
		chunk, err := reader.ReadString('\n')
		if len(chunk) > 0 {
			line := strings.TrimSuffix(chunk, "\n")
			line = strings.TrimSuffix(line, "\r")
			lines = append(lines, line)
			echo(line)
		}
		if err == io.EOF {
			return lines, nil
		}
		if err != nil {
			// Exhaust the pipe so the child is never left blocked on a
			// full buffer, then report the read failure.
			io.Copy(io.Discard, r)
			return lines, err
		}
	}
}
