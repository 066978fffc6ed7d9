// Package supervise runs a registry owner as a supervised, single-writer
// loop. All mutating operations are serialized through the owner's inbox;
// the supervisor restarts the loop after a crash, handing the same
// canonical table to the next owner generation. The recovery store is
// consulted only when no live table exists: on first start after a clean
// shutdown, or on a fresh start.
package supervise

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tally-dev/tally/internal/model"
)

// State of a supervised owner.
type State int

const (
	Stopped State = iota
	Starting
	Running
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Starting:
		return "starting"
	case Running:
		return "running"
	default:
		return "unknown"
	}
}

// Command is one mailbox message. Reject answers the waiting caller when
// the owner cannot process the command (crash in flight, terminal stop).
type Command interface {
	Reject(err error)
}

// Handler applies one command to the canonical table. A panic here
// crashes the current owner generation; the supervisor restarts it.
type Handler[T any] func(table T, cmd Command)

// Options tunes a supervisor.
type Options struct {
	Name        string        // registry name, used in logs
	CallTimeout time.Duration // reply wait; zero means DefaultCallTimeout
	MaxRestarts int           // crash restarts before giving up
	MailboxSize int           // inbox buffer
}

// DefaultCallTimeout mirrors the usual synchronous-call deadline.
const DefaultCallTimeout = 5 * time.Second

const defaultMailboxSize = 64

// Supervisor owns the lifecycle of a registry owner: stopped -> starting
// -> running -> (crash) -> starting. The inbox outlives owner
// generations, so commands queued during a restart are processed by the
// next generation.
type Supervisor[T any] struct {
	name        string
	callTimeout time.Duration
	maxRestarts int
	log         *slog.Logger

	restore func() T
	persist func(T)
	handler Handler[T]

	inbox chan Command
	quit  chan struct{}

	mu       sync.Mutex
	state    State
	table    T
	restarts int
	stopping bool
	done     chan struct{}
}

// New wires a supervisor. restore produces the initial table (typically
// rehydrated from the recovery store), persist saves a snapshot on clean
// shutdown, handler applies commands. The owner is not started yet.
func New[T any](opts Options, restore func() T, persist func(T), handler Handler[T]) *Supervisor[T] {
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = DefaultCallTimeout
	}
	if opts.MailboxSize <= 0 {
		opts.MailboxSize = defaultMailboxSize
	}
	return &Supervisor[T]{
		name:        opts.Name,
		callTimeout: opts.CallTimeout,
		maxRestarts: opts.MaxRestarts,
		log:         slog.Default().With("registry", opts.Name),
		restore:     restore,
		persist:     persist,
		handler:     handler,
		inbox:       make(chan Command, opts.MailboxSize),
		quit:        make(chan struct{}),
	}
}

// Start rehydrates the table and launches the first owner generation.
func (s *Supervisor[T]) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Stopped {
		return
	}
	s.state = Starting
	s.table = s.restore()
	s.done = make(chan struct{})
	s.quit = make(chan struct{})
	s.restarts = 0
	s.stopping = false
	s.spawnLocked()
	s.log.Info("owner started")
}

// spawnLocked launches an owner generation over the current table.
func (s *Supervisor[T]) spawnLocked() {
	s.state = Running
	go s.run(s.table)
}

// run is one owner generation. It processes commands until told to quit
// or until a handler panics.
func (s *Supervisor[T]) run(table T) {
	var inflight Command
	defer func() {
		if r := recover(); r != nil {
			if inflight != nil {
				inflight.Reject(fmt.Errorf("%w: owner crashed: %v", model.ErrUnavailable, r))
			}
			s.onCrash(r)
		}
	}()

	for {
		select {
		case <-s.quit:
			s.drain(table)
			s.persist(table)
			s.finish(Stopped)
			s.log.Info("owner stopped, snapshot saved")
			return
		case cmd := <-s.inbox:
			inflight = cmd
			s.handler(table, cmd)
			inflight = nil
		}
	}
}

// drain applies commands already queued at shutdown time.
func (s *Supervisor[T]) drain(table T) {
	for {
		select {
		case cmd := <-s.inbox:
			s.handler(table, cmd)
		default:
			return
		}
	}
}

// onCrash restarts the owner with the same table handed off directly,
// bypassing the recovery store. Past the restart budget the supervisor
// stops for good and rejects whatever is still queued.
func (s *Supervisor[T]) onCrash(reason any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.restarts++
	if s.restarts > s.maxRestarts {
		s.log.Error("owner crashed, restart budget exhausted", "reason", reason, "restarts", s.restarts-1)
		s.state = Stopped
		close(s.done)
		s.rejectQueued()
		return
	}

	s.log.Warn("owner crashed, restarting with table handoff", "reason", reason, "restart", s.restarts)
	s.state = Starting
	s.spawnLocked()
}

func (s *Supervisor[T]) rejectQueued() {
	for {
		select {
		case cmd := <-s.inbox:
			cmd.Reject(model.ErrUnavailable)
		default:
			return
		}
	}
}

// finish records a clean owner exit.
func (s *Supervisor[T]) finish(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	close(s.done)
}

// Stop shuts the owner down gracefully: queued commands are applied, the
// snapshot is persisted, and the supervisor ends Stopped.
func (s *Supervisor[T]) Stop() {
	s.mu.Lock()
	if s.state == Stopped {
		s.mu.Unlock()
		return
	}
	done := s.done
	first := !s.stopping
	s.stopping = true
	s.mu.Unlock()

	if first {
		close(s.quit)
	}
	<-done
}

// State returns the current lifecycle state.
func (s *Supervisor[T]) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Restarts returns how many crash restarts have happened since Start.
func (s *Supervisor[T]) Restarts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restarts
}

// Send enqueues a command. It fails fast with ErrUnavailable when the
// supervisor is stopped; during a restart the inbox keeps accepting.
func (s *Supervisor[T]) Send(cmd Command) error {
	s.mu.Lock()
	state := s.state
	s.mu.Unlock()
	if state == Stopped {
		return model.ErrUnavailable
	}

	select {
	case s.inbox <- cmd:
		return nil
	case <-time.After(s.callTimeout):
		return fmt.Errorf("%w: mailbox full", model.ErrUnavailable)
	}
}

// Call sends a command and waits for its reply. Exceeding the call
// timeout surfaces ErrUnavailable; the command may still be applied, so
// a retried create can legitimately come back already-exists.
func Call[T, R any](s *Supervisor[T], cmd Command, reply <-chan R) (R, error) {
	var zero R
	if err := s.Send(cmd); err != nil {
		return zero, err
	}
	select {
	case r := <-reply:
		return r, nil
	case <-time.After(s.callTimeout):
		return zero, fmt.Errorf("%w: call timed out", model.ErrUnavailable)
	}
}
