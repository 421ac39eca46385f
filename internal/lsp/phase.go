package lsp

import (
	"fmt"

	"github.com/stubls/stubls/internal/lsp/lsproto"
)

// Phase is the lifecycle state of a connection. Phases only move forward.
type Phase int32

const (
	PhaseUninitialized Phase = iota
	PhaseInitializing
	PhaseRunning
	PhaseShuttingDown
	PhaseStopped
)

func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "Uninitialized"
	case PhaseInitializing:
		return "Initializing"
	case PhaseRunning:
		return "Running"
	case PhaseShuttingDown:
		return "ShuttingDown"
	case PhaseStopped:
		return "Stopped"
	default:
		return fmt.Sprintf("Phase(%d)", int32(p))
	}
}

// checkPhase reports whether method may be handled in the current phase.
// exit is accepted everywhere.
func (s *Server) checkPhase(method lsproto.Method) error {
	phase := s.Phase()
	switch method {
	case lsproto.MethodExit:
		return nil
	case lsproto.MethodInitialize:
		if phase != PhaseUninitialized {
			return fmt.Errorf("%w: server already initialized", lsproto.ErrInvalidRequest)
		}
		return nil
	case lsproto.MethodInitialized:
		if phase != PhaseInitializing {
			return fmt.Errorf("%w: unexpected initialized in phase %s", lsproto.ErrInvalidRequest, phase)
		}
		return nil
	}

	switch phase {
	case PhaseRunning:
		return nil
	case PhaseUninitialized, PhaseInitializing:
		return fmt.Errorf("%w: server not yet initialized", lsproto.ErrInvalidRequest)
	default:
		return fmt.Errorf("%w: server is shutting down", lsproto.ErrInvalidRequest)
	}
}
