package lsp

import (
	"context"
	"errors"
	"fmt"

	"github.com/stubls/stubls/internal/lsp/lsproto"
	"github.com/stubls/stubls/internal/project"
)

// ErrExitWithoutShutdown is returned by Run when the client sent exit
// without a preceding shutdown request.
var ErrExitWithoutShutdown = errors.New("exit received without prior shutdown")

var (
	errExit              = errors.New("exit notification received")
	errCancelledByClient = fmt.Errorf("%w: request cancelled by client", lsproto.ErrRequestCancelled)
	errRequestTimedOut   = fmt.Errorf("%w: request timed out", lsproto.ErrRequestFailed)
	errServerStopped     = fmt.Errorf("%w: server stopped", lsproto.ErrServerCancelled)
)

// errorCode picks the wire code for err. Errors that carry no code of their
// own are classified by the document store sentinel they wrap.
func errorCode(err error) *lsproto.ErrorCode {
	var code *lsproto.ErrorCode
	if errors.As(err, &code) {
		return code
	}
	switch {
	case errors.Is(err, project.ErrStaleVersion), errors.Is(err, project.ErrContentMismatch):
		return lsproto.ErrContentModified
	case errors.Is(err, project.ErrUnknownDocument),
		errors.Is(err, project.ErrDuplicateDocument),
		errors.Is(err, project.ErrInvalidRange):
		return lsproto.ErrInvalidParams
	}
	return lsproto.ErrInternalError
}

// contextError explains why a request context ended.
func contextError(ctx context.Context) error {
	cause := context.Cause(ctx)
	var code *lsproto.ErrorCode
	if errors.As(cause, &code) {
		return cause
	}
	return fmt.Errorf("%w: %w", lsproto.ErrServerCancelled, cause)
}
