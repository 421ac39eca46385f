// Package lsptestutil runs an lsp.Server over in-memory pipes and drives it
// like an editor would.
package lsptestutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/stubls/stubls/internal/jsonrpc"
	"github.com/stubls/stubls/internal/lsp"
	"github.com/stubls/stubls/internal/lsp/lsproto"
	"github.com/stubls/stubls/internal/project/logging"
	"gotest.tools/v3/assert"
)

// DefaultTimeout bounds every wait performed by the helpers.
const DefaultTimeout = 10 * time.Second

type Options struct {
	Features          *lsp.Features
	RequestTimeout    time.Duration
	SyncKind          lsproto.TextDocumentSyncKind
	PositionEncodings []lsproto.PositionEncodingKind
	// Settings answers every workspace/configuration item.
	Settings      any
	ShutdownGrace time.Duration
}

// pendingCall collects the responses expected for one request id. Requests
// that reuse an id share it.
type pendingCall struct {
	ch        chan *lsproto.ResponseMessage
	remaining int
}

type Client struct {
	t      testing.TB
	Server *lsp.Server
	Logger logging.LogCollector

	toServer *io.PipeWriter
	reader   *lsproto.BaseReader
	writeMu  sync.Mutex
	writer   *lsproto.BaseWriter

	settings any
	nextID   atomic.Int32

	mu        sync.Mutex
	pending   map[lsproto.ID]*pendingCall
	received  []*lsproto.RequestMessage
	orphans   []*lsproto.ResponseMessage
	changed   chan struct{}
	readDone  chan struct{}
	runResult chan error
	runErr    error
	stopped   bool
}

// NewClient starts a server and a client connected to it. The connection is
// closed when the test ends.
func NewClient(t testing.TB, opts *Options) *Client {
	t.Helper()
	if opts == nil {
		opts = &Options{}
	}

	serverIn, toServer := io.Pipe()
	fromServer, serverOut := io.Pipe()
	logger := logging.NewLogCollector()

	server := lsp.NewServer(&lsp.ServerOptions{
		In:                lsp.ToReader(serverIn),
		Out:               lsp.ToWriter(serverOut),
		Logger:            logger,
		Features:          opts.Features,
		PositionEncodings: opts.PositionEncodings,
		SyncKind:          opts.SyncKind,
		RequestTimeout:    opts.RequestTimeout,
		SessionID:         t.Name(),
		ShutdownGrace:     opts.ShutdownGrace,
	})

	c := &Client{
		t:         t,
		Server:    server,
		Logger:    logger,
		toServer:  toServer,
		reader:    lsproto.NewBaseReader(fromServer),
		writer:    lsproto.NewBaseWriter(toServer),
		settings:  opts.Settings,
		pending:   make(map[lsproto.ID]*pendingCall),
		changed:   make(chan struct{}),
		readDone:  make(chan struct{}),
		runResult: make(chan error, 1),
	}

	go func() {
		err := server.Run(context.Background())
		serverIn.Close()
		serverOut.Close()
		c.runResult <- err
	}()
	go c.readLoop()

	t.Cleanup(func() {
		toServer.Close()
		ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
		defer cancel()
		if _, err := c.wait(ctx); err != nil {
			t.Errorf("server did not stop: %v; log:\n%s", err, logger.String())
			return
		}
		<-c.readDone
		logger.Close()
	})
	return c
}

func (c *Client) readLoop() {
	defer close(c.readDone)
	for {
		data, err := c.reader.Read()
		if err != nil {
			c.mu.Lock()
			c.stopped = true
			c.broadcast()
			c.mu.Unlock()
			return
		}
		msg, err := jsonrpc.DecodeMessage(data)
		if err != nil {
			c.t.Errorf("server sent a malformed message %s: %v", data, err)
			continue
		}
		switch msg.Kind {
		case lsproto.MessageKindResponse:
			c.handleResponse(msg.AsResponse())
		case lsproto.MessageKindRequest:
			req := msg.AsRequest()
			c.record(req)
			c.answer(req)
		default:
			c.record(msg.AsRequest())
		}
	}
}

func (c *Client) handleResponse(resp *lsproto.ResponseMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if resp.ID == nil {
		c.orphans = append(c.orphans, resp)
		c.broadcast()
		return
	}
	if call, ok := c.pending[*resp.ID]; ok {
		call.ch <- resp
		if call.remaining--; call.remaining == 0 {
			delete(c.pending, *resp.ID)
		}
		return
	}
	c.t.Errorf("response to unknown request %s", resp.ID)
}

func (c *Client) record(req *lsproto.RequestMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.received = append(c.received, req)
	c.broadcast()
}

// broadcast wakes every waiter. c.mu must be held.
func (c *Client) broadcast() {
	close(c.changed)
	c.changed = make(chan struct{})
}

// answer replies to server-initiated requests.
func (c *Client) answer(req *lsproto.RequestMessage) {
	resp := &lsproto.ResponseMessage{ID: req.ID}
	switch lsproto.Method(req.Method) {
	case lsproto.MethodWorkspaceConfiguration:
		params, err := lsproto.UnmarshalParams[*lsproto.ConfigurationParams](req.Params)
		if err != nil {
			c.t.Errorf("bad workspace/configuration params: %v", err)
			return
		}
		items := make([]any, len(params.Items))
		for i := range items {
			items[i] = c.settings
		}
		resp.Result = items
	default:
		resp.Error = &lsproto.ResponseError{
			Code:    lsproto.ErrMethodNotFound.Code,
			Message: "client does not implement " + req.Method,
		}
	}
	if err := c.write(resp.Message()); err != nil && !errors.Is(err, io.ErrClosedPipe) {
		c.t.Errorf("failed to answer %s: %v", req.Method, err)
	}
}

func (c *Client) write(msg *lsproto.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return c.WriteRaw(data)
}

// WriteRaw frames body and sends it to the server as is.
func (c *Client) WriteRaw(body []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.writer.Write(body)
}

// WriteFrame sends bytes to the server without framing them.
func (c *Client) WriteFrame(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_, err := c.toServer.Write(data)
	return err
}

// Send sends a request and returns its id without waiting for the response.
func (c *Client) Send(method lsproto.Method, params any) (*lsproto.ID, <-chan *lsproto.ResponseMessage, error) {
	id := lsproto.NewID(c.nextID.Add(1))
	ch, err := c.SendWithID(id, method, params)
	if err != nil {
		return nil, nil, err
	}
	return id, ch, nil
}

// SendWithID sends a request with the given id. Responses to requests sent
// with the same id arrive on the same channel.
func (c *Client) SendWithID(id *lsproto.ID, method lsproto.Method, params any) (<-chan *lsproto.ResponseMessage, error) {
	req, err := jsonrpc.NewRequestMessage(string(method), id, omitEmpty(params))
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	call, ok := c.pending[*id]
	if !ok {
		call = &pendingCall{ch: make(chan *lsproto.ResponseMessage, 4)}
		c.pending[*id] = call
	}
	call.remaining++
	c.mu.Unlock()
	if err := c.write(req.Message()); err != nil {
		c.mu.Lock()
		if call.remaining--; call.remaining == 0 {
			delete(c.pending, *id)
		}
		c.mu.Unlock()
		return nil, err
	}
	return call.ch, nil
}

// Request sends a request and waits for its response.
func (c *Client) Request(ctx context.Context, method lsproto.Method, params any) (*lsproto.ResponseMessage, error) {
	_, ch, err := c.Send(method, params)
	if err != nil {
		return nil, err
	}
	return c.Await(ctx, ch)
}

// Await waits for a response returned by Send.
func (c *Client) Await(ctx context.Context, ch <-chan *lsproto.ResponseMessage) (*lsproto.ResponseMessage, error) {
	for {
		c.mu.Lock()
		changed, stopped := c.changed, c.stopped
		c.mu.Unlock()
		select {
		case resp := <-ch:
			return resp, nil
		default:
		}
		if stopped {
			return nil, errors.New("connection closed before the response arrived")
		}
		select {
		case resp := <-ch:
			return resp, nil
		case <-changed:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (c *Client) Notify(method lsproto.Method, params any) error {
	req, err := jsonrpc.NewRequestMessage(string(method), nil, omitEmpty(params))
	if err != nil {
		return err
	}
	return c.write(req.Message())
}

// omitEmpty drops params given as an empty raw value.
func omitEmpty(params any) any {
	if raw, ok := params.(jsontext.Value); ok && len(raw) == 0 {
		return nil
	}
	return params
}

// Receive waits for the next message the server sent with the given method
// and consumes it.
func (c *Client) Receive(ctx context.Context, method lsproto.Method) (*lsproto.RequestMessage, error) {
	for {
		c.mu.Lock()
		if i := slices.IndexFunc(c.received, func(m *lsproto.RequestMessage) bool { return m.Method == string(method) }); i >= 0 {
			msg := c.received[i]
			c.received = slices.Delete(c.received, i, i+1)
			c.mu.Unlock()
			return msg, nil
		}
		changed, stopped := c.changed, c.stopped
		c.mu.Unlock()
		if stopped {
			return nil, fmt.Errorf("connection closed before %s arrived", method)
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// ReceiveOrphan waits for the next response that carried a null id.
func (c *Client) ReceiveOrphan(ctx context.Context) (*lsproto.ResponseMessage, error) {
	for {
		c.mu.Lock()
		if len(c.orphans) > 0 {
			resp := c.orphans[0]
			c.orphans = c.orphans[1:]
			c.mu.Unlock()
			return resp, nil
		}
		changed, stopped := c.changed, c.stopped
		c.mu.Unlock()
		if stopped {
			return nil, errors.New("connection closed")
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// CloseInput ends the stream the server reads from.
func (c *Client) CloseInput() {
	c.toServer.Close()
}

// Wait returns the result of Server.Run.
func (c *Client) Wait(ctx context.Context) error {
	err, waitErr := c.wait(ctx)
	if waitErr != nil {
		return waitErr
	}
	return err
}

func (c *Client) wait(ctx context.Context) (runErr error, err error) {
	c.mu.Lock()
	if c.runResult == nil {
		defer c.mu.Unlock()
		return c.runErr, nil
	}
	ch := c.runResult
	c.mu.Unlock()
	select {
	case runErr := <-ch:
		c.mu.Lock()
		c.runErr, c.runResult = runErr, nil
		c.mu.Unlock()
		return runErr, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func timeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), DefaultTimeout)
}

// Call sends a typed request and decodes its result. The response error is
// returned as is so tests can inspect its code.
func Call[Req, Resp any](t testing.TB, c *Client, info lsproto.RequestInfo[Req, Resp], params Req) (Resp, *lsproto.ResponseError) {
	t.Helper()
	ctx, cancel := timeout()
	defer cancel()
	resp, err := c.Request(ctx, info.Method, params)
	assert.NilError(t, err, "log:\n%s", c.Logger.String())
	var result Resp
	if resp.Error != nil {
		return result, resp.Error
	}
	if raw := resp.RawResult(); len(raw) != 0 {
		assert.NilError(t, json.Unmarshal(raw, &result))
	}
	return result, nil
}

func Notify[Params any](t testing.TB, c *Client, info lsproto.NotificationInfo[Params], params Params) {
	t.Helper()
	assert.NilError(t, c.Notify(info.Method, params))
}

// Receive waits for a notification or request from the server and decodes its params.
func Receive[Params any](t testing.TB, c *Client, info lsproto.NotificationInfo[Params]) Params {
	t.Helper()
	ctx, cancel := timeout()
	defer cancel()
	msg, err := c.Receive(ctx, info.Method)
	assert.NilError(t, err, "log:\n%s", c.Logger.String())
	params, err := lsproto.UnmarshalParams[Params](msg.Params)
	assert.NilError(t, err)
	return params
}

func DefaultInitializeParams() *lsproto.InitializeParams {
	return &lsproto.InitializeParams{
		Capabilities: &lsproto.ClientCapabilities{},
	}
}

// Initialize performs the initialize/initialized handshake. A nil params uses
// DefaultInitializeParams.
func (c *Client) Initialize(t testing.TB, params *lsproto.InitializeParams) *lsproto.InitializeResult {
	t.Helper()
	if params == nil {
		params = DefaultInitializeParams()
	}
	result, respErr := Call(t, c, lsproto.InitializeInfo, params)
	assert.Assert(t, respErr == nil, "initialize failed: %s", respErr.String())
	Notify(t, c, lsproto.InitializedInfo, &lsproto.InitializedParams{})
	// window/logMessage is the first thing the server sends once running.
	logMessage := Receive(t, c, lsproto.WindowLogMessageInfo)
	assert.Equal(t, logMessage.Message, "server initialized!")
	return result
}

// Shutdown sends shutdown and exit and returns the result of Server.Run.
func (c *Client) Shutdown(t testing.TB) error {
	t.Helper()
	_, respErr := Call(t, c, lsproto.ShutdownInfo, nil)
	assert.Assert(t, respErr == nil, "shutdown failed: %s", respErr.String())
	Notify(t, c, lsproto.ExitInfo, nil)
	ctx, cancel := timeout()
	defer cancel()
	return c.Wait(ctx)
}

// OpenDocument sends textDocument/didOpen for a plaintext document.
func (c *Client) OpenDocument(t testing.TB, uri lsproto.DocumentUri, version int32, text string) {
	t.Helper()
	Notify(t, c, lsproto.TextDocumentDidOpenInfo, &lsproto.DidOpenTextDocumentParams{
		TextDocument: lsproto.TextDocumentItem{
			Uri:        uri,
			LanguageId: "plaintext",
			Version:    version,
			Text:       text,
		},
	})
}
