package lsp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/stubls/stubls/internal/collections"
	"github.com/stubls/stubls/internal/core"
	"github.com/stubls/stubls/internal/jsonrpc"
	"github.com/stubls/stubls/internal/lsp/lsproto"
	"github.com/stubls/stubls/internal/project"
	"github.com/stubls/stubls/internal/project/logging"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
)

const defaultQueueSize = 100

type ServerOptions struct {
	In     Reader
	Out    Writer
	Logger logging.Logger

	// Features must be fully registered before NewServer is called.
	Features *Features
	// PositionEncodings is the server's preference order; the first one the
	// client also supports is used. UTF-16 is the fallback.
	PositionEncodings    []lsproto.PositionEncodingKind
	SyncKind             lsproto.TextDocumentSyncKind
	RequestTimeout       time.Duration
	QueueSize            int
	ConfigurationSection string
	SessionID            string
	// ShutdownGrace is how long shutdown lets running feature requests
	// finish before cancelling them. Zero cancels them right away.
	ShutdownGrace time.Duration
}

func NewServer(opts *ServerOptions) *Server {
	if opts.Logger == nil {
		panic("Logger is required")
	}
	features := opts.Features
	if features == nil {
		features = NewFeatures()
	}
	queueSize := core.IfElse(opts.QueueSize > 0, opts.QueueSize, defaultQueueSize)

	s := &Server{
		r:                     opts.In,
		w:                     opts.Out,
		logger:                opts.Logger,
		sessionID:             opts.SessionID,
		features:              features,
		handlers:              maps.Clone(handlers()),
		requestQueue:          make(chan *lsproto.RequestMessage, queueSize),
		outgoingQueue:         make(chan *lsproto.Message, queueSize),
		done:                  make(chan struct{}),
		pendingClientRequests: make(map[lsproto.ID]pendingClientRequest),
		pendingServerRequests: make(map[lsproto.ID]chan *lsproto.ResponseMessage),
		positionEncodings:     opts.PositionEncodings,
		syncKind:              core.IfElse(opts.SyncKind == lsproto.TextDocumentSyncKindNone, lsproto.TextDocumentSyncKindIncremental, opts.SyncKind),
		configurationSection:  opts.ConfigurationSection,
		shutdownGrace:         opts.ShutdownGrace,
	}
	maps.Copy(s.handlers, features.handlers)
	s.requestTimeout.Store(int64(opts.RequestTimeout))
	return s
}

type pendingClientRequest struct {
	req    *lsproto.RequestMessage
	cancel context.CancelCauseFunc
}

type Reader interface {
	Read() (*lsproto.Message, error)
}

type Writer interface {
	Write(msg *lsproto.Message) error
}

type lspReader struct {
	r *lsproto.BaseReader
}

type lspWriter struct {
	w *lsproto.BaseWriter
}

func (r *lspReader) Read() (*lsproto.Message, error) {
	data, err := r.r.Read()
	if err != nil {
		return nil, err
	}
	return jsonrpc.DecodeMessage(data)
}

func ToReader(r io.Reader) Reader {
	return &lspReader{r: lsproto.NewBaseReader(r)}
}

func (w *lspWriter) Write(msg *lsproto.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	return w.w.Write(data)
}

func ToWriter(w io.Writer) Writer {
	return &lspWriter{w: lsproto.NewBaseWriter(w)}
}

var (
	_ Reader = (*lspReader)(nil)
	_ Writer = (*lspWriter)(nil)
)

type Server struct {
	r Reader
	w Writer

	logger    logging.Logger
	sessionID string

	features *Features
	handlers handlerMap

	clientSeq               atomic.Int32
	requestQueue            chan *lsproto.RequestMessage
	outgoingQueue           chan *lsproto.Message
	done                    chan struct{}
	pendingClientRequests   map[lsproto.ID]pendingClientRequest
	pendingClientRequestsMu sync.Mutex
	pendingServerRequests   map[lsproto.ID]chan *lsproto.ResponseMessage
	pendingServerRequestsMu sync.Mutex

	// inflight counts feature handlers running off the dispatch goroutine.
	inflight sync.WaitGroup

	// readErr is written by readLoop before it closes requestQueue.
	readErr error

	phase             atomic.Int32
	shutdownRequested atomic.Bool
	requestTimeout    atomic.Int64

	positionEncodings    []lsproto.PositionEncodingKind
	syncKind             lsproto.TextDocumentSyncKind
	configurationSection string

	// Set by initialize on the dispatch goroutine.
	initializeParams *lsproto.InitializeParams
	positionEncoding lsproto.PositionEncodingKind
	locale           language.Tag
	session          *project.Session
	shutdownGrace    time.Duration
	workspaceFolders collections.Set[lsproto.URI]
}

func (s *Server) Phase() Phase {
	return Phase(s.phase.Load())
}

func (s *Server) setPhase(phase Phase) {
	old := Phase(s.phase.Swap(int32(phase)))
	s.logger.Logf("phase %s -> %s", old, phase)
}

func (s *Server) RequestTimeout() time.Duration {
	return time.Duration(s.requestTimeout.Load())
}

// SetRequestTimeout applies to requests dispatched after the call. Zero disables the timeout.
func (s *Server) SetRequestTimeout(timeout time.Duration) {
	s.requestTimeout.Store(int64(timeout))
}

// Run serves the connection until exit, end of input, a transport failure or
// cancellation of ctx. It returns nil only when the client asked to shut down first.
func (s *Server) Run(ctx context.Context) error {
	if s.sessionID != "" {
		s.logger.Logf("session %s started", s.sessionID)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.dispatchLoop(ctx) })
	g.Go(func() error { return s.writeLoop(ctx) })

	// Don't run readLoop in the group, as it blocks on stdin read and cannot be cancelled.
	go s.readLoop(ctx)

	err := g.Wait()
	close(s.done)
	s.cancelPendingRequests()

	if s.shutdownRequested.Load() && (errors.Is(err, errExit) || errors.Is(err, io.EOF) || errors.Is(err, context.Canceled)) {
		s.logger.Log("server stopped")
		return nil
	}
	switch {
	case errors.Is(err, errExit):
		err = ErrExitWithoutShutdown
	case errors.Is(err, io.EOF):
		err = fmt.Errorf("%w: connection closed before exit", io.ErrUnexpectedEOF)
	}
	s.logger.Error("server stopped: ", err)
	return err
}

func (s *Server) readLoop(ctx context.Context) {
	defer close(s.requestQueue)
	for {
		if ctx.Err() != nil {
			s.readErr = ctx.Err()
			return
		}
		msg, err := s.r.Read()
		if err != nil {
			if errors.Is(err, lsproto.ErrParseError) || errors.Is(err, lsproto.ErrInvalidRequest) {
				s.logger.Error("malformed message: ", err)
				s.sendError(nil, err)
				continue
			}
			s.readErr = err
			return
		}

		if msg.Kind == lsproto.MessageKindResponse {
			s.handleResponse(msg.AsResponse())
			continue
		}

		req := msg.AsRequest()
		s.logMessage(msg.Kind, req)
		if lsproto.Method(req.Method) == lsproto.MethodCancelRequest {
			if err := s.checkKind(lsproto.MethodCancelRequest, req.ID); err != nil {
				s.logger.Error("rejected method '", req.Method, "' (", req.ID, "): ", err)
				s.sendError(req.ID, err)
				continue
			}
			params, err := lsproto.UnmarshalParams[*lsproto.CancelParams](req.Params)
			if err != nil {
				s.logger.Warn("ignoring malformed cancellation: ", err)
				continue
			}
			s.cancelRequest(params.Id)
			continue
		}

		select {
		case s.requestQueue <- req:
		case <-ctx.Done():
			s.readErr = ctx.Err()
			return
		}
	}
}

func (s *Server) logMessage(kind lsproto.MessageKind, req *lsproto.RequestMessage) {
	if req.ID != nil {
		s.logger.Logf("received %s '%s' (%s)", kind, req.Method, req.ID)
	} else {
		s.logger.Logf("received %s '%s'", kind, req.Method)
	}
	if logger := s.logger.Verbose(); logger != nil && len(req.Params) != 0 {
		logger.Logf("params: %s", req.Params)
	}
}

func (s *Server) handleResponse(resp *lsproto.ResponseMessage) {
	if resp.ID == nil {
		s.logger.Warn("dropping response without id: ", resp.Error.String())
		return
	}
	s.pendingServerRequestsMu.Lock()
	defer s.pendingServerRequestsMu.Unlock()
	if respChan, ok := s.pendingServerRequests[*resp.ID]; ok {
		respChan <- resp
		close(respChan)
		delete(s.pendingServerRequests, *resp.ID)
	} else {
		s.logger.Warn("dropping response to unknown request ", resp.ID)
	}
}

// cancelRequest is a no-op for ids that are not in flight.
func (s *Server) cancelRequest(id *lsproto.ID) {
	s.pendingClientRequestsMu.Lock()
	defer s.pendingClientRequestsMu.Unlock()
	if pendingReq, ok := s.pendingClientRequests[*id]; ok {
		pendingReq.cancel(errCancelledByClient)
		delete(s.pendingClientRequests, *id)
	}
}

func (s *Server) cancelPendingRequests() {
	s.pendingClientRequestsMu.Lock()
	defer s.pendingClientRequestsMu.Unlock()
	for id, pendingReq := range s.pendingClientRequests {
		pendingReq.cancel(errServerStopped)
		delete(s.pendingClientRequests, id)
	}
}

func (s *Server) dispatchLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req, ok := <-s.requestQueue:
			if !ok {
				return s.readErr
			}
			if err := s.dispatch(ctx, req); err != nil {
				return err
			}
		}
	}
}

func (s *Server) dispatch(ctx context.Context, req *lsproto.RequestMessage) error {
	handler, err := s.route(req)
	if err != nil {
		if req.ID != nil {
			s.logger.Error("rejected method '", req.Method, "' (", req.ID, "): ", err)
			s.sendError(req.ID, err)
		} else {
			s.logger.Warn("dropping notification '", req.Method, "': ", err)
		}
		return nil
	}
	if handler == nil {
		s.logger.Warn("unhandled notification '", req.Method, "' dropped")
		return nil
	}

	requestCtx := core.WithLocale(ctx, s.locale)
	cancel := context.CancelCauseFunc(func(error) {})
	if req.ID != nil {
		requestCtx, cancel = context.WithCancelCause(core.WithRequestID(requestCtx, req.ID.String()))
		s.pendingClientRequestsMu.Lock()
		_, inUse := s.pendingClientRequests[*req.ID]
		if !inUse {
			s.pendingClientRequests[*req.ID] = pendingClientRequest{
				req:    req,
				cancel: cancel,
			}
		}
		s.pendingClientRequestsMu.Unlock()
		if inUse {
			cancel(nil)
			err := fmt.Errorf("%w: request id %s is already in flight", lsproto.ErrInvalidRequest, req.ID)
			s.logger.Error("rejected method '", req.Method, "' (", req.ID, "): ", err)
			s.sendError(req.ID, err)
			return nil
		}
	}

	handle := func() error {
		defer func() {
			if req.ID != nil {
				s.pendingClientRequestsMu.Lock()
				delete(s.pendingClientRequests, *req.ID)
				s.pendingClientRequestsMu.Unlock()
			}
			cancel(nil)
		}()
		defer s.recover(req)

		start := time.Now()
		err := handler(s, requestCtx, req)
		if errors.Is(err, errExit) {
			return err
		}
		if err != nil {
			if req.ID != nil {
				s.logger.Error("error handling method '", req.Method, "' (", req.ID, "): ", err)
				s.sendError(req.ID, err)
			} else {
				s.logger.Errorf("error handling notification '%s': %v", req.Method, err)
			}
			return nil
		}
		s.logger.Info("handled method '", req.Method, "' in ", time.Since(start))
		return nil
	}

	if s.isBlockingMethod(lsproto.Method(req.Method)) {
		return handle()
	}
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		_ = handle()
	}()
	return nil
}

// drainRequests lets in-flight feature handlers respond for up to grace, then
// cancels the rest and waits for them to return.
func (s *Server) drainRequests(grace time.Duration) {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	if grace > 0 {
		timer := time.NewTimer(grace)
		defer timer.Stop()
		select {
		case <-done:
			return
		case <-timer.C:
		}
	}
	s.pendingClientRequestsMu.Lock()
	cancelled := 0
	for id, pending := range s.pendingClientRequests {
		// The shutdown request itself runs inline and is still pending.
		if s.isBlockingMethod(lsproto.Method(pending.req.Method)) {
			continue
		}
		pending.cancel(errServerStopped)
		delete(s.pendingClientRequests, id)
		cancelled++
	}
	s.pendingClientRequestsMu.Unlock()
	if cancelled > 0 {
		s.logger.Warn("cancelling ", cancelled, " request(s) still running at shutdown")
	}
	<-done
}

func (s *Server) writeLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			s.flushOutgoing()
			return ctx.Err()
		case msg := <-s.outgoingQueue:
			if err := s.w.Write(msg); err != nil {
				return fmt.Errorf("failed to write message: %w", err)
			}
		}
	}
}

// flushOutgoing writes what is already queued, such as the shutdown
// response, before the loop stops.
func (s *Server) flushOutgoing() {
	for {
		select {
		case msg := <-s.outgoingQueue:
			if err := s.w.Write(msg); err != nil {
				s.logger.Error("failed to write message: ", err)
				return
			}
		default:
			return
		}
	}
}

// send reports false once the server has stopped.
func (s *Server) send(msg *lsproto.Message) bool {
	select {
	case s.outgoingQueue <- msg:
		return true
	case <-s.done:
		return false
	}
}

func sendClientRequest[Req, Resp any](ctx context.Context, s *Server, info lsproto.RequestInfo[Req, Resp], params Req) (Resp, error) {
	var result Resp
	id := lsproto.NewIDString(fmt.Sprintf("s%d", s.clientSeq.Add(1)))
	req, err := jsonrpc.NewRequestMessage(string(info.Method), id, params)
	if err != nil {
		return result, err
	}

	responseChan := make(chan *lsproto.ResponseMessage, 1)
	s.pendingServerRequestsMu.Lock()
	s.pendingServerRequests[*id] = responseChan
	s.pendingServerRequestsMu.Unlock()

	if !s.send(req.Message()) {
		s.forgetServerRequest(id)
		return result, errServerStopped
	}

	select {
	case <-ctx.Done():
		s.forgetServerRequest(id)
		return result, ctx.Err()
	case resp := <-responseChan:
		if resp.Error != nil {
			return result, fmt.Errorf("%w: %s failed: %s", lsproto.ErrRequestFailed, info.Method, resp.Error.String())
		}
		if raw := resp.RawResult(); len(raw) != 0 {
			if err := json.Unmarshal(raw, &result); err != nil {
				return result, fmt.Errorf("failed to unmarshal %s result: %w", info.Method, err)
			}
		}
		return result, nil
	}
}

func (s *Server) forgetServerRequest(id *lsproto.ID) {
	s.pendingServerRequestsMu.Lock()
	defer s.pendingServerRequestsMu.Unlock()
	if respChan, ok := s.pendingServerRequests[*id]; ok {
		close(respChan)
		delete(s.pendingServerRequests, *id)
	}
}

func sendNotification[Params any](s *Server, info lsproto.NotificationInfo[Params], params Params) {
	req, err := jsonrpc.NewRequestMessage(string(info.Method), nil, params)
	if err != nil {
		s.logger.Error("failed to encode notification ", info.Method, ": ", err)
		return
	}
	s.send(req.Message())
}

func (s *Server) sendResult(id *lsproto.ID, result any) {
	s.sendResponse(&lsproto.ResponseMessage{
		ID:     id,
		Result: result,
	})
}

// sendError answers a request with err; a nil id answers a message whose id could not be read.
func (s *Server) sendError(id *lsproto.ID, err error) {
	s.sendResponse(&lsproto.ResponseMessage{
		ID: id,
		Error: &lsproto.ResponseError{
			Code:    errorCode(err).Code,
			Message: err.Error(),
		},
	})
}

func (s *Server) sendResponse(resp *lsproto.ResponseMessage) {
	s.send(resp.Message())
}

// route checks the method against the current phase and finds its handler.
// A nil handler with a nil error is an unknown notification.
func (s *Server) route(req *lsproto.RequestMessage) (handlerFunc, error) {
	method := lsproto.Method(req.Method)
	if err := s.checkKind(method, req.ID); err != nil {
		return nil, err
	}
	if err := s.checkPhase(method); err != nil {
		return nil, err
	}
	if handler := s.handlers[method]; handler != nil {
		return handler, nil
	}
	if req.ID == nil {
		return nil, nil
	}
	return nil, fmt.Errorf("%w: %s", lsproto.ErrMethodNotFound, req.Method)
}

// checkKind rejects requests sent without an id and notifications sent with
// one. Methods of unknown kind pass.
func (s *Server) checkKind(method lsproto.Method, id *lsproto.ID) error {
	switch s.features.kind(method) {
	case lsproto.MethodKindRequest:
		if id == nil {
			return fmt.Errorf("%w: %s is a request and requires an id", lsproto.ErrInvalidRequest, method)
		}
	case lsproto.MethodKindNotification:
		if id != nil {
			return fmt.Errorf("%w: %s is a notification and cannot carry an id", lsproto.ErrInvalidRequest, method)
		}
	}
	return nil
}

func (s *Server) recover(req *lsproto.RequestMessage) {
	if r := recover(); r != nil {
		stack := debug.Stack()
		s.logger.Errorf("panic handling request %s: %v\n%s", req.Method, r, string(stack))
		if req.ID != nil {
			s.sendError(req.ID, fmt.Errorf("%w: panic handling request %s: %v", lsproto.ErrInternalError, req.Method, r))
		} else {
			s.logger.Error("unhandled panic in notification ", req.Method, ": ", r)
		}
	}
}

// runRequest runs fn on its own goroutine and answers the request once, with
// fn's result or with a cancellation error as soon as ctx is done.
func (s *Server) runRequest(ctx context.Context, req *lsproto.RequestMessage, fn func(context.Context) (any, error)) error {
	if timeout := s.RequestTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeoutCause(ctx, timeout, errRequestTimedOut)
		defer cancel()
	}

	type result struct {
		resp any
		err  error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Errorf("panic handling request %s: %v\n%s", req.Method, r, string(debug.Stack()))
				done <- result{err: fmt.Errorf("%w: panic handling request %s: %v", lsproto.ErrInternalError, req.Method, r)}
			}
		}()
		resp, err := fn(ctx)
		done <- result{resp, err}
	}()

	select {
	case res := <-done:
		if ctx.Err() != nil {
			return contextError(ctx)
		}
		if res.err != nil {
			return res.err
		}
		if req.ID != nil {
			s.sendResult(req.ID, res.resp)
		}
		return nil
	case <-ctx.Done():
		return contextError(ctx)
	}
}

func (s *Server) runNotification(ctx context.Context, req *lsproto.RequestMessage, fn func(context.Context) error) error {
	defer s.recover(req)
	return fn(ctx)
}

func (s *Server) isBlockingMethod(method lsproto.Method) bool {
	return !s.features.Has(method)
}

func ptrTo[T any](v T) *T {
	return &v
}
