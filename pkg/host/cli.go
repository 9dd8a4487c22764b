package host

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// ErrCLIFailed marks a command that ran and reported a non-success status.
var ErrCLIFailed = errors.New("firebase cli reported failure")

// FirebaseCLI runs the firebase command line tool.
type FirebaseCLI struct {
	Binary string
	Dir    string
}

// cliResult is the envelope printed by `firebase ... --json`.
type cliResult struct {
	Status string          `json:"status"`
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

// Command builds an unstarted command.
func (c FirebaseCLI) Command(args ...string) *exec.Cmd {
	cmd := exec.Command(c.binary(), args...)
	cmd.Dir = c.Dir
	return cmd
}

// RunJSON runs the CLI with --json and decodes the result into out.
func (c FirebaseCLI) RunJSON(ctx context.Context, out any, args ...string) error {
	args = append(args, "--json", "--non-interactive")
	cmd := exec.CommandContext(ctx, c.binary(), args...)
	cmd.Dir = c.Dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout, cmd.Stderr = &stdout, &stderr

	zap.L().Debug("firebase cli", zap.Strings("args", args), zap.String("dir", c.Dir))
	runErr := cmd.Run()

	var res cliResult
	if err := json.Unmarshal(bytes.TrimSpace(stdout.Bytes()), &res); err != nil {
		if runErr != nil {
			return fmt.Errorf("firebase %s: %w: %s", args[0], runErr, strings.TrimSpace(stderr.String()))
		}
		return fmt.Errorf("firebase %s: unreadable output: %w", args[0], err)
	}
	if res.Status != "success" {
		msg := res.Error
		if msg == "" {
			msg = "status " + res.Status
		}
		return fmt.Errorf("firebase %s: %w: %s", args[0], ErrCLIFailed, msg)
	}
	if out == nil || len(res.Result) == 0 {
		return nil
	}
	return json.Unmarshal(res.Result, out)
}

func (c FirebaseCLI) binary() string {
	if c.Binary == "" {
		return "firebase"
	}
	return c.Binary
}
