// Package lifecycle owns the emulator start/stop state machine.
//
// States advance NotRunning -> Starting -> Running -> Stopping -> NotRunning.
// A launch is accepted only from NotRunning. A stop issued while starting is
// queued and carried out as soon as the start resolves.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"fbbridge/pkg/observability"
	"fbbridge/pkg/protocol"
)

type State int32

const (
	NotRunning State = iota
	Starting
	Running
	Stopping
)

func (s State) String() string {
	switch s {
	case NotRunning:
		return "not-running"
	case Starting:
		return "starting"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

var (
	ErrBusy        = errors.New("lifecycle: emulators are already starting or running")
	ErrStartFailed = errors.New("lifecycle: emulators failed to start")
	ErrStopFailed  = errors.New("lifecycle: emulators did not stop cleanly")
)

// Controller starts and stops the emulator processes.
type Controller interface {
	Start(ctx context.Context, req protocol.LaunchEmulators) (protocol.NotifyRunningEmulatorInfo, error)
	Stop(ctx context.Context, exportOnExit bool) error
}

// Notifier pushes notifications to the UI side.
type Notifier interface {
	Notify(protocol.Notification) error
}

// Display shows a user-visible message on the host.
type Display interface {
	ShowMessage(ctx context.Context, msg string, opts *protocol.MessageOptions) error
}

// Observer is called on every transition. It runs with the manager locked
// and must not call back into it.
type Observer func(from, to State)

// Manager is the single emulator state machine of a host process.
type Manager struct {
	ctrl    Controller
	out     Notifier
	display Display

	mu         sync.Mutex
	state      State
	stopQueued bool
	export     bool
	idle       chan struct{} // closed when the current run is back at NotRunning
	observers  []Observer
}

func New(ctrl Controller, out Notifier, display Display) *Manager {
	idle := make(chan struct{})
	close(idle)
	return &Manager{ctrl: ctrl, out: out, display: display, idle: idle}
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) Observe(fn Observer) {
	m.mu.Lock()
	m.observers = append(m.observers, fn)
	m.mu.Unlock()
}

func (m *Manager) setLocked(to State) {
	from := m.state
	m.state = to
	observability.RecordTransition(from.String(), to.String())
	zap.L().Info("emulators state", zap.Stringer("from", from), zap.Stringer("to", to))
	for _, fn := range m.observers {
		fn(from, to)
	}
}

// Launch starts the emulators and blocks until the start resolves. On
// success notifyRunningEmulatorInfo is sent, and a stop queued meanwhile is
// then carried out.
func (m *Manager) Launch(ctx context.Context, req protocol.LaunchEmulators) error {
	m.mu.Lock()
	if m.state != NotRunning {
		st := m.state
		m.mu.Unlock()
		m.show(ctx, "Emulators are already "+st.String()+". Stop them before launching again.")
		return fmt.Errorf("%w: %s", ErrBusy, st)
	}
	m.setLocked(Starting)
	m.stopQueued = false
	m.export = req.EmulatorUISelections.ExportStateOnExit
	m.idle = make(chan struct{})
	m.mu.Unlock()

	info, err := m.ctrl.Start(ctx, req)

	m.mu.Lock()
	queued := m.stopQueued
	m.stopQueued = false
	if err != nil {
		idle := m.idle
		m.setLocked(NotRunning)
		m.mu.Unlock()
		m.show(ctx, "Failed to start emulators: "+err.Error())
		if queued {
			m.notify(protocol.NotifyEmulatorsStopped{})
		}
		close(idle)
		return fmt.Errorf("%w: %w", ErrStartFailed, err)
	}
	m.setLocked(Running)
	if !queued {
		m.mu.Unlock()
		m.notify(info)
		return nil
	}
	// UI learns the emulators ran before it learns they stopped.
	m.setLocked(Stopping)
	export := m.export
	m.mu.Unlock()
	m.notify(info)
	_ = m.finishStop(context.WithoutCancel(ctx), export)
	return nil
}

// Stop ends the current run. From NotRunning it only confirms with
// notifyEmulatorsStopped. While starting, the stop is queued and Stop waits
// for the run to end. A concurrent stop is joined.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	switch m.state {
	case NotRunning:
		m.mu.Unlock()
		m.notify(protocol.NotifyEmulatorsStopped{})
		return nil
	case Running:
		m.setLocked(Stopping)
		export := m.export
		m.mu.Unlock()
		return m.finishStop(ctx, export)
	case Starting:
		m.stopQueued = true
	}
	idle := m.idle
	m.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops running emulators before the host exits.
func (m *Manager) Shutdown(ctx context.Context) error {
	if m.State() == NotRunning {
		return nil
	}
	return m.Stop(ctx)
}

func (m *Manager) finishStop(ctx context.Context, export bool) error {
	err := m.ctrl.Stop(ctx, export)

	m.mu.Lock()
	idle := m.idle
	m.setLocked(NotRunning)
	m.mu.Unlock()

	if err != nil {
		m.show(ctx, "Emulators did not stop cleanly: "+err.Error())
		err = fmt.Errorf("%w: %w", ErrStopFailed, err)
	}
	m.notify(protocol.NotifyEmulatorsStopped{})
	close(idle)
	return err
}

func (m *Manager) notify(n protocol.Notification) {
	if err := m.out.Notify(n); err != nil {
		zap.L().Warn("lifecycle notification not delivered", zap.String("kind", string(n.NotificationKind())), zap.Error(err))
	}
}

func (m *Manager) show(ctx context.Context, msg string) {
	if err := m.display.ShowMessage(ctx, msg, &protocol.MessageOptions{Modal: true}); err != nil {
		zap.L().Warn("message display failed", zap.String("msg", msg), zap.Error(err))
	}
}
