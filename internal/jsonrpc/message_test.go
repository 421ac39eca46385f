package jsonrpc_test

import (
	"testing"

	"github.com/go-json-experiment/json"
	"github.com/stubls/stubls/internal/jsonrpc"
	"gotest.tools/v3/assert"
)

func TestDecodeMessage(t *testing.T) {
	t.Parallel()

	t.Run("request", func(t *testing.T) {
		t.Parallel()
		msg, err := jsonrpc.DecodeMessage([]byte(`{"jsonrpc":"2.0","id":7,"method":"textDocument/hover","params":{"a":1}}`))
		assert.NilError(t, err)
		assert.Equal(t, msg.Kind, jsonrpc.MessageKindRequest)
		req := msg.AsRequest()
		assert.Equal(t, req.ID.String(), "7")
		assert.Equal(t, req.Method, "textDocument/hover")
		assert.Equal(t, string(req.Params), `{"a":1}`)
	})

	t.Run("notification", func(t *testing.T) {
		t.Parallel()
		msg, err := jsonrpc.DecodeMessage([]byte(`{"jsonrpc":"2.0","method":"initialized","params":{}}`))
		assert.NilError(t, err)
		assert.Equal(t, msg.Kind, jsonrpc.MessageKindNotification)
		assert.Assert(t, msg.AsRequest().IsNotification())
	})

	t.Run("string id", func(t *testing.T) {
		t.Parallel()
		msg, err := jsonrpc.DecodeMessage([]byte(`{"jsonrpc":"2.0","id":"abc","method":"shutdown"}`))
		assert.NilError(t, err)
		assert.Equal(t, *msg.AsRequest().ID, *jsonrpc.NewIDString("abc"))
	})

	t.Run("response", func(t *testing.T) {
		t.Parallel()
		msg, err := jsonrpc.DecodeMessage([]byte(`{"jsonrpc":"2.0","id":"s1","result":[{"trace":"verbose"}]}`))
		assert.NilError(t, err)
		assert.Equal(t, msg.Kind, jsonrpc.MessageKindResponse)
		resp := msg.AsResponse()
		assert.Equal(t, resp.ID.String(), "s1")
		assert.Equal(t, string(resp.RawResult()), `[{"trace":"verbose"}]`)
	})

	t.Run("error response", func(t *testing.T) {
		t.Parallel()
		msg, err := jsonrpc.DecodeMessage([]byte(`{"jsonrpc":"2.0","id":3,"error":{"code":-32601,"message":"nope"}}`))
		assert.NilError(t, err)
		resp := msg.AsResponse()
		assert.Equal(t, resp.Error.Code, int32(-32601))
		assert.Equal(t, resp.Error.String(), "[-32601] nope")
	})

	t.Run("syntax error", func(t *testing.T) {
		t.Parallel()
		_, err := jsonrpc.DecodeMessage([]byte(`{"jsonrpc":"2.0",`))
		assert.ErrorIs(t, err, jsonrpc.ErrParseError)
	})

	invalid := map[string]string{
		"wrong version":       `{"jsonrpc":"1.0","id":1,"method":"x"}`,
		"no method no id":     `{"jsonrpc":"2.0"}`,
		"result and error":    `{"jsonrpc":"2.0","id":1,"result":1,"error":{"code":1,"message":""}}`,
		"request with result": `{"jsonrpc":"2.0","id":1,"method":"x","result":1}`,
		"fractional id":       `{"jsonrpc":"2.0","id":1.5,"method":"x"}`,
		"object id":           `{"jsonrpc":"2.0","id":{},"method":"x"}`,
		"null request id":     `{"jsonrpc":"2.0","id":null,"method":"x"}`,
		"not an object":       `[1,2,3]`,
	}
	for name, body := range invalid {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := jsonrpc.DecodeMessage([]byte(body))
			assert.ErrorIs(t, err, jsonrpc.ErrInvalidRequest)
		})
	}
}

func TestResponseMessageMarshal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		resp *jsonrpc.ResponseMessage
		want string
	}{
		{
			name: "null result",
			resp: &jsonrpc.ResponseMessage{ID: jsonrpc.NewID(1)},
			want: `{"jsonrpc":"2.0","id":1,"result":null}`,
		},
		{
			name: "result",
			resp: &jsonrpc.ResponseMessage{ID: jsonrpc.NewIDString("x"), Result: map[string]int{"a": 1}},
			want: `{"jsonrpc":"2.0","id":"x","result":{"a":1}}`,
		},
		{
			name: "error with null id",
			resp: &jsonrpc.ResponseMessage{Error: &jsonrpc.ResponseError{Code: -32700, Message: "bad"}},
			want: `{"jsonrpc":"2.0","id":null,"error":{"code":-32700,"message":"bad"}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			data, err := json.Marshal(tt.resp.Message())
			assert.NilError(t, err)
			assert.Equal(t, string(data), tt.want)
		})
	}
}

func TestRequestMessageMarshal(t *testing.T) {
	t.Parallel()

	req, err := jsonrpc.NewRequestMessage("window/logMessage", nil, map[string]any{"type": 3})
	assert.NilError(t, err)
	data, err := json.Marshal(req.Message())
	assert.NilError(t, err)
	assert.Equal(t, string(data), `{"jsonrpc":"2.0","method":"window/logMessage","params":{"type":3}}`)

	req, err = jsonrpc.NewRequestMessage("shutdown", jsonrpc.NewIDString("s1"), nil)
	assert.NilError(t, err)
	data, err = json.Marshal(req.Message())
	assert.NilError(t, err)
	assert.Equal(t, string(data), `{"jsonrpc":"2.0","id":"s1","method":"shutdown"}`)
}
