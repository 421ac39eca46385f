package lsp

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/stubls/stubls/internal/lsp/lsproto"
	"github.com/stubls/stubls/internal/project"
)

// Features is the table of optional methods a server implements. Every method
// not registered here, other than the lifecycle and synchronization methods
// the server owns, is answered with MethodNotFound.
//
// Feature handlers run on their own goroutines so that long requests never
// hold up the connection. They see documents through a read-only view.
type Features struct {
	handlers     handlerMap
	kinds        map[lsproto.Method]lsproto.MethodKind
	capabilities []func(*lsproto.ServerCapabilities)
}

func NewFeatures() *Features {
	return &Features{
		handlers: make(handlerMap),
		kinds:    make(map[lsproto.Method]lsproto.MethodKind),
	}
}

// RegisterRequest implements a request method. It panics if the method is
// owned by the server, is a notification, or is already registered.
func RegisterRequest[Req, Resp any](f *Features, info lsproto.RequestInfo[Req, Resp], fn func(context.Context, project.Reader, Req) (Resp, error)) {
	f.checkRegistration(info.Method, lsproto.MethodKindRequest)
	f.handlers[info.Method] = func(s *Server, ctx context.Context, req *lsproto.RequestMessage) error {
		params, err := lsproto.UnmarshalParams[Req](req.Params)
		if err != nil {
			return err
		}
		return s.runRequest(ctx, req, func(ctx context.Context) (any, error) {
			return fn(ctx, s.session.Documents(), params)
		})
	}
}

// RegisterNotification implements a notification method. Notifications
// handled this way are not ordered with respect to each other.
func RegisterNotification[Params any](f *Features, info lsproto.NotificationInfo[Params], fn func(context.Context, project.Reader, Params) error) {
	f.checkRegistration(info.Method, lsproto.MethodKindNotification)
	f.handlers[info.Method] = func(s *Server, ctx context.Context, req *lsproto.RequestMessage) error {
		params, err := lsproto.UnmarshalParams[Params](req.Params)
		if err != nil {
			return err
		}
		return s.runNotification(ctx, req, func(ctx context.Context) error {
			return fn(ctx, s.session.Documents(), params)
		})
	}
}

func (f *Features) checkRegistration(method lsproto.Method, kind lsproto.MethodKind) {
	if _, ok := handlers()[method]; ok || method == lsproto.MethodCancelRequest {
		panic(fmt.Sprintf("cannot register %s: method is handled by the server", method))
	}
	if known := method.Kind(); known != lsproto.MethodKindUnknown && known != kind {
		panic(fmt.Sprintf("cannot register %s as a %s", method, kindName(kind)))
	}
	if _, ok := f.handlers[method]; ok {
		panic(fmt.Sprintf("%s is already registered", method))
	}
	f.kinds[method] = kind
}

// kind reports how method must be sent: the protocol's kind for standard
// methods, the registered kind for extensions.
func (f *Features) kind(method lsproto.Method) lsproto.MethodKind {
	if kind := method.Kind(); kind != lsproto.MethodKindUnknown {
		return kind
	}
	return f.kinds[method]
}

func kindName(kind lsproto.MethodKind) string {
	if kind == lsproto.MethodKindRequest {
		return "request"
	}
	return "notification"
}

// Capabilities adds fn to the hooks that refine the advertised
// ServerCapabilities, for options such as trigger characters.
func (f *Features) Capabilities(fn func(*lsproto.ServerCapabilities)) {
	f.capabilities = append(f.capabilities, fn)
}

func (f *Features) Has(method lsproto.Method) bool {
	_, ok := f.handlers[method]
	return ok
}

// Methods returns the registered methods in sorted order.
func (f *Features) Methods() []lsproto.Method {
	return slices.Sorted(maps.Keys(f.handlers))
}
