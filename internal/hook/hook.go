package hook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/maxvaer/gmapsprobe/internal/probe"
)

// Runner executes a shell command for each vulnerable result.
type Runner struct {
	cmd     string
	quiet   bool
	stderr  io.Writer
	timeout time.Duration
}

// NewRunner creates a hook runner. cmd is the shell command to execute.
func NewRunner(cmd string, quiet bool) *Runner {
	return &Runner{cmd: cmd, quiet: quiet, stderr: os.Stderr, timeout: 30 * time.Second}
}

// Run executes the hook command with the result as JSON on stdin. The
// placeholders {probe}, {key}, {poc} and {status} are expanded in the
// command as single shell words, already quoted. Errors are logged but do
// not halt the scan.
func (r *Runner) Run(ctx context.Context, result *probe.Result) {
	data, err := json.Marshal(result)
	if err != nil {
		fmt.Fprintf(r.stderr, "[hook] marshal error: %v\n", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	shell, args, quote := shellCommand()
	expanded := strings.NewReplacer(
		"{probe}", quote(result.Probe),
		"{key}", quote(result.Key),
		"{poc}", quote(result.PoC),
		"{status}", quote(strconv.Itoa(result.StatusCode)),
	).Replace(r.cmd)

	cmd := exec.CommandContext(ctx, shell, append(args, expanded)...)
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stderr = r.stderr

	output, err := cmd.Output()
	if err != nil {
		if !r.quiet {
			fmt.Fprintf(r.stderr, "[hook] error: %v\n", err)
		}
		return
	}
	if len(output) > 0 && !r.quiet {
		fmt.Fprintf(r.stderr, "[hook] %s", output)
	}
}

func shellCommand() (string, []string, func(string) string) {
	if runtime.GOOS == "windows" {
		return "cmd", []string{"/C"}, cmdQuote
	}
	return "sh", []string{"-c"}, probe.ShellQuote
}

// cmdQuote double-quotes s for cmd.exe.
func cmdQuote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
