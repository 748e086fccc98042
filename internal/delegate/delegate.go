// Package delegate builds delegation instructions and hands them to an
// agent through one of four modes: batch and print write the instruction
// to a terminal, file queues it for later pickup, and cli invokes the
// agent command directly.
package delegate

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/specflow-dev/specflow/internal/errors"
	"github.com/specflow-dev/specflow/internal/logging"
)

// Delegation modes.
const (
	ModeBatch = "batch"
	ModePrint = "print"
	ModeFile  = "file"
	ModeCLI   = "cli"
)

// DefaultTimeout bounds a single cli-mode invocation.
const DefaultTimeout = 300 * time.Second

// bannerWidth is the width of the frame around printed instructions.
const bannerWidth = 70

// CommandRunner executes the agent CLI and returns its stdout and stderr.
// Tests inject fakes; production uses defaultRunner.
type CommandRunner func(ctx context.Context, dir, name string, args ...string) (stdout, stderr []byte, err error)

// defaultRunner shells out with separate output buffers so cli-mode
// records can report stderr independently of stdout.
var defaultRunner CommandRunner = func(ctx context.Context, dir, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	err := cmd.Run()
	return outBuf.Bytes(), errBuf.Bytes(), err
}

// Record is one delegation and its outcome. Records accumulate in the
// session's delegation history and drive the batch summary.
type Record struct {
	TaskID      string    `json:"task_id"`
	Agent       string    `json:"agent"`
	Mode        string    `json:"mode"`
	Instruction string    `json:"instruction"`
	Output      string    `json:"output,omitempty"`
	Error       string    `json:"error,omitempty"`
	Executed    bool      `json:"executed"`
	DelegatedAt time.Time `json:"delegated_at"`
}

// Failed reports whether the delegation itself went wrong, as opposed to
// the delegated work failing afterwards.
func (r Record) Failed() bool { return r.Error != "" }

// Delegator hands instructions to agents in a fixed mode.
type Delegator struct {
	mode        string
	command     string
	timeout     time.Duration
	projectRoot string
	pendingFile string
	out         io.Writer
	runner      CommandRunner
	log         *logging.Logger
}

// Options configures a Delegator. Zero values fall back to batch mode,
// the "claude" command, DefaultTimeout, and stdout.
type Options struct {
	Mode        string
	Command     string
	Timeout     time.Duration
	ProjectRoot string
	PendingFile string
	Out         io.Writer
	Runner      CommandRunner
	Logger      *logging.Logger
}

// New builds a Delegator.
func New(opts Options) *Delegator {
	d := &Delegator{
		mode:        opts.Mode,
		command:     opts.Command,
		timeout:     opts.Timeout,
		projectRoot: opts.ProjectRoot,
		pendingFile: opts.PendingFile,
		out:         opts.Out,
		runner:      opts.Runner,
		log:         opts.Logger,
	}
	if d.mode == "" {
		d.mode = ModeBatch
	}
	if d.command == "" {
		d.command = "claude"
	}
	if d.timeout <= 0 {
		d.timeout = DefaultTimeout
	}
	if d.out == nil {
		d.out = os.Stdout
	}
	if d.runner == nil {
		d.runner = defaultRunner
	}
	if d.log == nil {
		d.log = logging.NopLogger()
	}
	return d
}

// Mode returns the delegation mode in effect.
func (d *Delegator) Mode() string { return d.mode }

// Delegate executes one delegation and returns its record. The record's
// Error field is set when the hand-off itself failed; delegated work that
// runs and fails is reported through Output and Executed instead.
func (d *Delegator) Delegate(ctx context.Context, in InstructionInput) Record {
	rec := Record{
		TaskID:      in.Task.Key(),
		Agent:       in.Agent,
		Mode:        d.mode,
		Instruction: BuildInstruction(in),
		DelegatedAt: time.Now().UTC(),
	}

	d.log.Debug("delegating task", "task", rec.TaskID, "agent", rec.Agent, "mode", d.mode)

	switch d.mode {
	case ModePrint, ModeBatch:
		d.printInstruction(rec.Instruction)
		rec.Output = rec.Instruction
	case ModeFile:
		d.delegateToFile(&rec, in)
	case ModeCLI:
		d.delegateToCLI(ctx, &rec)
	default:
		rec.Error = fmt.Sprintf("unknown delegation mode %q", d.mode)
	}

	if rec.Error != "" {
		d.log.Warn("delegation failed", "task", rec.TaskID, "agent", rec.Agent, "error", rec.Error)
	}
	return rec
}

// printInstruction frames the instruction so it stands out in terminal
// scrollback when several delegations print in one run.
func (d *Delegator) printInstruction(instruction string) {
	banner := strings.Repeat("=", bannerWidth)
	fmt.Fprintf(d.out, "\n%s\nDELEGATION INSTRUCTION\n%s\n%s\n%s\n\n", banner, banner, instruction, banner)
}

func (d *Delegator) delegateToFile(rec *Record, in InstructionInput) {
	entry := PendingDelegation{
		Instruction: rec.Instruction,
		Agent:       rec.Agent,
		TaskID:      rec.TaskID,
		SpecName:    in.SpecName,
		CreatedAt:   rec.DelegatedAt,
		Status:      PendingStatus,
	}
	if err := AppendPending(d.pendingFile, entry); err != nil {
		rec.Output = fmt.Sprintf("Failed to write delegation: %v", err)
		rec.Error = err.Error()
		return
	}
	rec.Output = fmt.Sprintf("Delegation written to %s", d.pendingFile)
	rec.Executed = true
}

func (d *Delegator) delegateToCLI(ctx context.Context, rec *Record) {
	runCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	stdout, stderr, err := d.runner(runCtx, d.projectRoot, d.command, "--print", rec.Instruction)
	rec.Output = strings.TrimSpace(string(stdout))

	switch {
	case err == nil:
		rec.Executed = true
	case errors.Is(err, exec.ErrNotFound):
		rec.Output = fmt.Sprintf("%s CLI not found. Install it or use 'print' mode.", d.command)
		rec.Error = fmt.Sprintf("%s CLI not available", d.command)
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		rec.Output = "Delegation timed out"
		rec.Error = "timeout"
	default:
		rec.Error = strings.TrimSpace(string(stderr))
		if rec.Error == "" {
			rec.Error = err.Error()
		}
	}
}
