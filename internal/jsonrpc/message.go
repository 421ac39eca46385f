package jsonrpc

import (
	"errors"
	"fmt"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/stubls/stubls/internal/core"
)

const Version = "2.0"

type MessageKind int

const (
	MessageKindNotification MessageKind = iota
	MessageKindRequest
	MessageKindResponse
)

func (k MessageKind) String() string {
	switch k {
	case MessageKindNotification:
		return "notification"
	case MessageKindRequest:
		return "request"
	case MessageKindResponse:
		return "response"
	}
	return fmt.Sprintf("MessageKind(%d)", int(k))
}

// Message is any decoded JSON-RPC message. Notifications are carried as
// RequestMessages without an ID.
type Message struct {
	Kind MessageKind
	msg  any
}

func (m *Message) AsRequest() *RequestMessage {
	return m.msg.(*RequestMessage)
}

func (m *Message) AsResponse() *ResponseMessage {
	return m.msg.(*ResponseMessage)
}

type RequestMessage struct {
	ID     *ID
	Method string
	Params jsontext.Value
}

func NewRequestMessage(method string, id *ID, params any) (*RequestMessage, error) {
	req := &RequestMessage{ID: id, Method: method}
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal params for %s: %w", method, err)
		}
		req.Params = data
	}
	return req, nil
}

func (r *RequestMessage) IsNotification() bool {
	return r.ID == nil
}

func (r *RequestMessage) Message() *Message {
	return &Message{
		Kind: core.IfElse(r.ID == nil, MessageKindNotification, MessageKindRequest),
		msg:  r,
	}
}

func (r *RequestMessage) MarshalJSONTo(enc *jsontext.Encoder) error {
	if err := enc.WriteToken(jsontext.BeginObject); err != nil {
		return err
	}
	if err := writeMember(enc, "jsonrpc", Version); err != nil {
		return err
	}
	if r.ID != nil {
		if err := writeMember(enc, "id", r.ID); err != nil {
			return err
		}
	}
	if err := writeMember(enc, "method", r.Method); err != nil {
		return err
	}
	if len(r.Params) != 0 {
		if err := enc.WriteToken(jsontext.String("params")); err != nil {
			return err
		}
		if err := enc.WriteValue(r.Params); err != nil {
			return err
		}
	}
	return enc.WriteToken(jsontext.EndObject)
}

// ResponseMessage always carries an id (null when the request id could not be
// read) and exactly one of result or error.
type ResponseMessage struct {
	ID     *ID
	Result any
	Error  *ResponseError
}

func (r *ResponseMessage) Message() *Message {
	return &Message{Kind: MessageKindResponse, msg: r}
}

func (r *ResponseMessage) MarshalJSONTo(enc *jsontext.Encoder) error {
	if err := enc.WriteToken(jsontext.BeginObject); err != nil {
		return err
	}
	if err := writeMember(enc, "jsonrpc", Version); err != nil {
		return err
	}
	if err := enc.WriteToken(jsontext.String("id")); err != nil {
		return err
	}
	if r.ID == nil {
		if err := enc.WriteToken(jsontext.Null); err != nil {
			return err
		}
	} else if err := r.ID.MarshalJSONTo(enc); err != nil {
		return err
	}
	if r.Error != nil {
		if err := writeMember(enc, "error", r.Error); err != nil {
			return err
		}
	} else {
		if err := enc.WriteToken(jsontext.String("result")); err != nil {
			return err
		}
		if r.Result == nil {
			if err := enc.WriteToken(jsontext.Null); err != nil {
				return err
			}
		} else if err := json.MarshalEncode(enc, r.Result); err != nil {
			return err
		}
	}
	return enc.WriteToken(jsontext.EndObject)
}

// RawResult returns the undecoded result of a response read off the wire.
func (r *ResponseMessage) RawResult() jsontext.Value {
	if v, ok := r.Result.(jsontext.Value); ok {
		return v
	}
	return nil
}

func writeMember(enc *jsontext.Encoder, name string, v any) error {
	if err := enc.WriteToken(jsontext.String(name)); err != nil {
		return err
	}
	return json.MarshalEncode(enc, v)
}

type rawMessage struct {
	JSONRPC string         `json:"jsonrpc"`
	ID      jsontext.Value `json:"id,omitzero"`
	Method  string         `json:"method,omitzero"`
	Params  jsontext.Value `json:"params,omitzero"`
	Result  jsontext.Value `json:"result,omitzero"`
	Error   *ResponseError `json:"error,omitzero"`
}

func (m *Message) MarshalJSONTo(enc *jsontext.Encoder) error {
	return json.MarshalEncode(enc, m.msg)
}

func (m *Message) UnmarshalJSONFrom(dec *jsontext.Decoder) error {
	var raw rawMessage
	if err := json.UnmarshalDecode(dec, &raw); err != nil {
		return err
	}
	if raw.JSONRPC != Version {
		return fmt.Errorf("%w: unsupported jsonrpc version %q", ErrInvalidRequest, raw.JSONRPC)
	}

	var id *ID
	if len(raw.ID) != 0 && raw.ID.Kind() != 'n' {
		id = new(ID)
		if err := json.Unmarshal(raw.ID, id); err != nil {
			return err
		}
	}

	if raw.Method != "" {
		if raw.Result != nil || raw.Error != nil {
			return fmt.Errorf("%w: request %q carries a result or error", ErrInvalidRequest, raw.Method)
		}
		if len(raw.ID) != 0 && id == nil {
			return fmt.Errorf("%w: request %q has a null id", ErrInvalidRequest, raw.Method)
		}
		req := &RequestMessage{ID: id, Method: raw.Method, Params: raw.Params}
		*m = *req.Message()
		return nil
	}

	if len(raw.ID) == 0 {
		return fmt.Errorf("%w: message has neither method nor id", ErrInvalidRequest)
	}
	if (raw.Result != nil) == (raw.Error != nil) {
		return fmt.Errorf("%w: response must have exactly one of result or error", ErrInvalidRequest)
	}
	resp := &ResponseMessage{ID: id, Error: raw.Error}
	if raw.Result != nil {
		resp.Result = raw.Result
	}
	*m = *resp.Message()
	return nil
}

// DecodeMessage parses a single message body. Malformed JSON is reported as
// ErrParseError; well-formed JSON that is not a JSON-RPC message as ErrInvalidRequest.
func DecodeMessage(data []byte) (*Message, error) {
	msg := &Message{}
	if err := json.Unmarshal(data, msg); err != nil {
		if errors.Is(err, ErrInvalidRequest) {
			return nil, err
		}
		if synErr := (*jsontext.SyntacticError)(nil); errors.As(err, &synErr) {
			return nil, fmt.Errorf("%w: %w", ErrParseError, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return msg, nil
}
