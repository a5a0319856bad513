// Package boot implements the firmware bootstrap sequence: the fixed,
// one-time ordered set of initialization steps that must run to completion
// on the initial goroutine before any application logic may execute.
//
// The sequence is strictly linear:
//
//	Uninitialized → PatchesLinked → LoggerReady
//
// Step 1 links the vendor runtime's symbol patches into the process; every
// hardware-abstraction call depends on them. Step 2 installs the process-wide
// default logger. No log output may be observed before LoggerReady, and no
// hardware call is safe before PatchesLinked.
package boot

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// State is the process-wide bootstrap state. It moves monotonically forward
// and is terminal at LoggerReady; it is never reset during the process
// lifetime.
type State int32

const (
	// Uninitialized is the state at process start. No runtime patch is
	// linked and no logger sink is installed.
	Uninitialized State = iota

	// PatchesLinked means the vendor runtime patches are bound into the
	// process. Hardware-abstraction calls are safe; logging is not.
	PatchesLinked

	// LoggerReady means the default logger sink is installed. All
	// subsequent code may assume both patched runtime and safe logging.
	LoggerReady
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case PatchesLinked:
		return "patches-linked"
	case LoggerReady:
		return "logger-ready"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// ErrorKind classifies a bootstrap failure.
type ErrorKind int

const (
	// PatchLinkFailure means the vendor runtime could not be patched.
	// Always fatal: the process must abort before any further
	// initialization, and no structured error reporting is guaranteed
	// because logging is not yet available.
	PatchLinkFailure ErrorKind = iota

	// LoggerInitFailure means the logger sink could not be installed.
	// Fatal on this target; there is no degraded no-logging mode.
	LoggerInitFailure
)

func (k ErrorKind) String() string {
	switch k {
	case PatchLinkFailure:
		return "patch-link-failure"
	case LoggerInitFailure:
		return "logger-init-failure"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is a bootstrap failure. Kind tells the caller which step failed and
// therefore which state the process was left in.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("bootstrap %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ErrAlreadyRun is returned when Run is invoked a second time in the same
// process. Re-entering the bootstrap sequence is a contract violation; the
// guard exists so the violation surfaces loudly instead of silently
// re-mutating process-wide runtime state.
var ErrAlreadyRun = errors.New("bootstrap already run in this process")

// Sequencer executes the two-step bootstrap protocol exactly once. It is not
// safe to call Run concurrently with itself; the one-shot guard makes a
// concurrent second caller fail with ErrAlreadyRun rather than corrupt state.
type Sequencer struct {
	linkPatches func() error
	initLogger  func() error

	started atomic.Bool
	state   atomic.Int32
}

// New builds a Sequencer from the two one-shot steps. linkPatches binds the
// vendor runtime symbol patches; initLogger installs the process-wide default
// logger sink. Neither step may log, spawn goroutines, or touch hardware
// beyond its own concern.
func New(linkPatches, initLogger func() error) *Sequencer {
	return &Sequencer{
		linkPatches: linkPatches,
		initLogger:  initLogger,
	}
}

// Run executes the bootstrap sequence: patch linking strictly first, logger
// installation strictly second. It must be the first thing the process entry
// point does, before any other goroutine is spawned.
//
// On success the state is LoggerReady and the return is nil. On failure the
// returned *Error carries the failing step's kind and the state is left at
// the last completed step. There is no retry: a failed step is terminal and
// the process is expected to abort (watchdog restart territory, not
// in-process recovery).
func (s *Sequencer) Run() error {
	if !s.started.CompareAndSwap(false, true) {
		return ErrAlreadyRun
	}

	// Step 1: link vendor runtime patches. Nothing may run before this;
	// hardware-abstraction calls resolve through the patched symbols.
	if err := s.linkPatches(); err != nil {
		return &Error{Kind: PatchLinkFailure, Err: err}
	}
	s.state.Store(int32(PatchesLinked))

	// Step 2: install the default logger sink. Only now is it legal to
	// emit log records anywhere in the process.
	if err := s.initLogger(); err != nil {
		return &Error{Kind: LoggerInitFailure, Err: err}
	}
	s.state.Store(int32(LoggerReady))

	return nil
}

// State reports the current bootstrap state.
func (s *Sequencer) State() State {
	return State(s.state.Load())
}

// Ready reports whether bootstrap completed and application logic may run.
func (s *Sequencer) Ready() bool {
	return s.State() == LoggerReady
}
