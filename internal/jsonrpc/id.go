package jsonrpc

import (
	"fmt"
	"strconv"

	"github.com/go-json-experiment/json/jsontext"
)

// ID is a JSON-RPC request id. Clients may use integers or strings.
type ID struct {
	str   string
	int   int32
	isStr bool
}

func NewID(n int32) *ID {
	return &ID{int: n}
}

func NewIDString(str string) *ID {
	return &ID{str: str, isStr: true}
}

func (id *ID) String() string {
	if id == nil {
		return "<nil>"
	}
	if id.isStr {
		return id.str
	}
	return strconv.Itoa(int(id.int))
}

func (id *ID) MarshalJSONTo(enc *jsontext.Encoder) error {
	if id.isStr {
		return enc.WriteToken(jsontext.String(id.str))
	}
	return enc.WriteToken(jsontext.Int(int64(id.int)))
}

func (id *ID) UnmarshalJSONFrom(dec *jsontext.Decoder) error {
	tok, err := dec.ReadToken()
	if err != nil {
		return err
	}
	switch tok.Kind() {
	case '"':
		*id = ID{str: tok.String(), isStr: true}
	case '0':
		n := tok.Int()
		if float64(n) != tok.Float() || n < -1<<31 || n > 1<<31-1 {
			return fmt.Errorf("%w: id %s is not a 32-bit integer", ErrInvalidRequest, tok.String())
		}
		*id = ID{int: int32(n)}
	default:
		return fmt.Errorf("%w: id must be a string or an integer, got %s", ErrInvalidRequest, tok.Kind())
	}
	return nil
}
