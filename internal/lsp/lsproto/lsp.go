package lsproto

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/stubls/stubls/internal/jsonrpc"
)

type DocumentUri string

// FileName returns the local path for file URIs and the URI unchanged otherwise.
func (uri DocumentUri) FileName() string {
	if strings.HasPrefix(string(uri), "file://") {
		parsed, err := url.Parse(string(uri))
		if err != nil {
			return string(uri)
		}
		if parsed.Host != "" {
			return "//" + parsed.Host + parsed.Path
		}
		return fixWindowsURIPath(parsed.Path)
	}
	return string(uri)
}

func fixWindowsURIPath(path string) string {
	if rest, ok := strings.CutPrefix(path, "/"); ok && len(rest) >= 2 && rest[1] == ':' {
		return rest
	}
	return path
}

type HasTextDocumentURI interface {
	TextDocumentURI() DocumentUri
}

type URI string

type Method string

// UnmarshalParams decodes raw request params. Absent params decode to the zero
// value; anything that does not fit T is reported as ErrInvalidParams.
func UnmarshalParams[T any](data jsontext.Value) (T, error) {
	var v T
	if len(data) != 0 && data.Kind() != 'n' {
		if err := json.Unmarshal(data, &v); err != nil {
			return v, fmt.Errorf("%w: failed to unmarshal %T: %w", ErrInvalidParams, v, err)
		}
	}
	r, ok := any(v).(validator)
	if !ok {
		r, ok = any(&v).(validator)
	}
	if ok {
		if err := r.validate(); err != nil {
			return v, fmt.Errorf("%w: %w", ErrInvalidParams, err)
		}
	}
	return v, nil
}

// validator is implemented by params with required properties. Implementations
// must accept a nil receiver.
type validator interface {
	validate() error
}

func ptrTo[T any](v T) *T {
	return &v
}

func PtrIsTrue(v *bool) bool {
	return v != nil && *v
}

// Inspired by https://www.youtube.com/watch?v=dab3I-HcTVk

type RequestInfo[Params, Resp any] struct {
	_      [0]Params
	_      [0]Resp
	Method Method
}

type NotificationInfo[Params any] struct {
	_      [0]Params
	Method Method
}

// RawRequestInfo describes a request whose params and result are passed through undecoded.
func RawRequestInfo(method Method) RequestInfo[jsontext.Value, any] {
	return RequestInfo[jsontext.Value, any]{Method: method}
}

func RawNotificationInfo(method Method) NotificationInfo[jsontext.Value] {
	return NotificationInfo[jsontext.Value]{Method: method}
}

type Null struct{}

func (Null) UnmarshalJSONFrom(dec *jsontext.Decoder) error {
	data, err := dec.ReadValue()
	if err != nil {
		return err
	}
	if string(data) != "null" {
		return fmt.Errorf("expected null, got %s", data)
	}
	return nil
}

func (Null) MarshalJSONTo(enc *jsontext.Encoder) error {
	return enc.WriteToken(jsontext.Null)
}

// Envelope types live in jsonrpc; they are aliased here so handlers only import lsproto.
type (
	ID              = jsonrpc.ID
	Message         = jsonrpc.Message
	RequestMessage  = jsonrpc.RequestMessage
	ResponseMessage = jsonrpc.ResponseMessage
	ResponseError   = jsonrpc.ResponseError
	MessageKind     = jsonrpc.MessageKind
)

const (
	MessageKindNotification = jsonrpc.MessageKindNotification
	MessageKindRequest      = jsonrpc.MessageKindRequest
	MessageKindResponse     = jsonrpc.MessageKindResponse
)

var (
	NewID       = jsonrpc.NewID
	NewIDString = jsonrpc.NewIDString
)
