package host

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"fbbridge/pkg/protocol"
)

var (
	uiURLPattern = regexp.MustCompile(`View Emulator UI at (https?://[^\s│|]+)`)
	readyPattern = regexp.MustCompile(`All emulators ready`)
	// bottom border of the ready banner, or the blank line after it
	bannerEndPattern = regexp.MustCompile(`^\s*(└|\+-|$)`)
)

// bannerLines caps how far past the ready line a UI URL is looked for.
const bannerLines = 4

// ExecEmulators runs `firebase emulators:start` as a child process.
type ExecEmulators struct {
	CLI          FirebaseCLI
	ExportDir    string
	StartTimeout time.Duration
	StopTimeout  time.Duration
	ExtraArgs    []string

	mu   sync.Mutex
	proc *emulatorProc
}

type emulatorProc struct {
	cmd     *exec.Cmd
	project string
	// done is closed once the process has exited and its output is drained.
	done     chan struct{}
	waitErr  error
	lastLine string
}

func emulatorArgs(req protocol.LaunchEmulators) []string {
	sel := req.EmulatorUISelections
	args := []string{"emulators:start", "--project", sel.ProjectID}
	if sel.Mode == protocol.EmulatorModeHosting {
		args = append(args, "--only", "hosting")
	}
	if sel.FirebaseJSONPath != "" {
		args = append(args, "--config", sel.FirebaseJSONPath)
	}
	if sel.ImportStateFolderPath != "" {
		args = append(args, "--import", sel.ImportStateFolderPath)
	}
	if sel.DebugLogging {
		args = append(args, "--debug")
	}
	return args
}

// Start launches the emulators and waits until the CLI reports them ready.
func (e *ExecEmulators) Start(ctx context.Context, req protocol.LaunchEmulators) (protocol.NotifyRunningEmulatorInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.proc != nil {
		return protocol.NotifyRunningEmulatorInfo{}, ErrEmulatorsRunning
	}

	cmd := e.CLI.Command(append(emulatorArgs(req), e.ExtraArgs...)...)
	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw
	// emulator JVMs may outlive the CLI and keep the output open
	cmd.WaitDelay = 5 * time.Second
	if err := cmd.Start(); err != nil {
		_ = pw.Close()
		return protocol.NotifyRunningEmulatorInfo{}, fmt.Errorf("start emulators: %w", err)
	}
	p := &emulatorProc{cmd: cmd, project: req.EmulatorUISelections.ProjectID, done: make(chan struct{})}
	ready := make(chan string, 1)
	scanned := make(chan struct{})
	go func() {
		p.lastLine = scanEmulatorOutput(pr, ready)
		close(scanned)
	}()
	go func() {
		p.waitErr = cmd.Wait()
		_ = pw.Close()
		<-scanned
		close(p.done)
	}()

	timeout := e.StartTimeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case url := <-ready:
		e.proc = p
		return protocol.NotifyRunningEmulatorInfo{
			UIURL:       url,
			DisplayInfo: "Emulators running for " + p.project,
		}, nil
	case <-p.done:
		if p.lastLine != "" {
			return protocol.NotifyRunningEmulatorInfo{}, fmt.Errorf("emulators exited before ready: %v: %s", p.waitErr, p.lastLine)
		}
		return protocol.NotifyRunningEmulatorInfo{}, fmt.Errorf("emulators exited before ready: %v", p.waitErr)
	case <-timer.C:
		kill(p)
		return protocol.NotifyRunningEmulatorInfo{}, fmt.Errorf("emulators not ready after %s", timeout)
	case <-ctx.Done():
		kill(p)
		return protocol.NotifyRunningEmulatorInfo{}, ctx.Err()
	}
}

// scanEmulatorOutput logs CLI output and reports the UI URL once the
// emulators are ready. The CLI prints the ready line before the URL, so a
// ready line without a URL keeps the scan going until the banner closes; the
// URL is "" when the emulators run without a UI. It drains r until EOF and
// returns the last non-blank line.
func scanEmulatorOutput(r io.Reader, ready chan<- string) (last string) {
	var (
		url      string
		pending  = -1
		reported bool
	)
	report := func() {
		if !reported {
			ready <- url
			reported = true
		}
	}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		zap.L().Debug("emulators", zap.String("line", line))
		if strings.TrimSpace(line) != "" {
			last = strings.TrimSpace(line)
		}
		if reported {
			continue
		}
		if m := uiURLPattern.FindStringSubmatch(line); m != nil {
			url = strings.TrimRight(m[1], "/") + "/"
			report()
			continue
		}
		switch {
		case pending < 0 && readyPattern.MatchString(line):
			pending = 0
		case pending >= 0:
			pending++
			if bannerEndPattern.MatchString(line) || pending >= bannerLines {
				report()
			}
		}
	}
	if pending >= 0 {
		report()
	}
	_, _ = io.Copy(io.Discard, r)
	return last
}

// Stop optionally exports emulator state, then interrupts the process and
// waits for it to exit.
func (e *ExecEmulators) Stop(ctx context.Context, exportOnExit bool) error {
	e.mu.Lock()
	p := e.proc
	e.proc = nil
	e.mu.Unlock()
	if p == nil {
		return ErrEmulatorsStopped
	}

	var errs []error
	if exportOnExit && e.ExportDir != "" {
		exp := e.CLI.Command("emulators:export", e.ExportDir, "--project", p.project, "--force")
		if out, err := exp.CombinedOutput(); err != nil {
			errs = append(errs, fmt.Errorf("export emulator state: %w: %s", err, strings.TrimSpace(string(out))))
		}
	}

	if err := p.cmd.Process.Signal(os.Interrupt); err != nil {
		// no SIGINT on windows
		kill(p)
	}
	timeout := e.StopTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	select {
	case <-p.done:
	case <-time.After(timeout):
		kill(p)
		errs = append(errs, fmt.Errorf("emulators did not exit within %s", timeout))
	case <-ctx.Done():
		kill(p)
		errs = append(errs, ctx.Err())
	}
	return errors.Join(errs...)
}

func kill(p *emulatorProc) {
	_ = p.cmd.Process.Kill()
	<-p.done
}
