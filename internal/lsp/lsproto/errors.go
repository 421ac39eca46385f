package lsproto

import "github.com/stubls/stubls/internal/jsonrpc"

type ErrorCode = jsonrpc.ErrorCode

var (
	ErrParseError     = jsonrpc.ErrParseError
	ErrInvalidRequest = jsonrpc.ErrInvalidRequest
	ErrMethodNotFound = jsonrpc.ErrMethodNotFound
	ErrInvalidParams  = jsonrpc.ErrInvalidParams
	ErrInternalError  = jsonrpc.ErrInternalError

	ErrServerNotInitialized = &ErrorCode{Name: "ServerNotInitialized", Code: -32002}
	ErrUnknownErrorCode     = &ErrorCode{Name: "UnknownErrorCode", Code: -32001}

	// ErrRequestFailed means a syntactically correct request could not be served.
	ErrRequestFailed = &ErrorCode{Name: "RequestFailed", Code: -32803}
	// ErrServerCancelled means the server cancelled a request it was not asked to cancel.
	ErrServerCancelled = &ErrorCode{Name: "ServerCancelled", Code: -32802}
	// ErrContentModified means the document changed underneath the request.
	ErrContentModified  = &ErrorCode{Name: "ContentModified", Code: -32801}
	ErrRequestCancelled = &ErrorCode{Name: "RequestCancelled", Code: -32800}
)
