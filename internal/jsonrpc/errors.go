package jsonrpc

import "fmt"

// ErrorCode is a JSON-RPC error code. Handlers wrap one with fmt.Errorf("%w: ...")
// and the code is recovered on the way out with errors.As.
type ErrorCode struct {
	Name string
	Code int32
}

func (e *ErrorCode) Error() string {
	return e.Name
}

var (
	ErrParseError     = &ErrorCode{"ParseError", -32700}
	ErrInvalidRequest = &ErrorCode{"InvalidRequest", -32600}
	ErrMethodNotFound = &ErrorCode{"MethodNotFound", -32601}
	ErrInvalidParams  = &ErrorCode{"InvalidParams", -32602}
	ErrInternalError  = &ErrorCode{"InternalError", -32603}
)

type ResponseError struct {
	Code    int32  `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitzero"`
}

func (r *ResponseError) String() string {
	if r == nil {
		return ""
	}
	return fmt.Sprintf("[%d] %s", r.Code, r.Message)
}
