// Package charset provides storage field codecs for named character sets
// using golang.org/x/text.
package charset

import (
	"strings"

	"github.com/fwojciec/elemsel"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// Ensure Codec implements elemsel.FieldCodec at compile time.
var _ elemsel.FieldCodec = (*Codec)(nil)

// Codec encodes storage fields in a named character set.
type Codec struct {
	name string
	enc  encoding.Encoding // nil for UTF-8
}

// NewCodec returns a codec for the charset name, which may be any WHATWG
// encoding label. An empty name means UTF-8. Unknown names return EINVALID.
func NewCodec(name string) (*Codec, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return &Codec{name: "utf-8"}, nil
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, elemsel.Errorf(elemsel.EINVALID, "unknown charset %q", name)
	}

	canonical, err := htmlindex.Name(enc)
	if err != nil {
		return nil, elemsel.Errorf(elemsel.EINVALID, "unsupported charset %q", name)
	}
	if canonical == "utf-8" {
		return &Codec{name: canonical}, nil
	}
	return &Codec{name: canonical, enc: enc}, nil
}

// Name returns the canonical charset name.
func (c *Codec) Name() string {
	return c.name
}

// Encode converts text to the codec's charset. Invalid UTF-8 input and
// runes the charset cannot represent return EINVALID.
func (c *Codec) Encode(text string) ([]byte, error) {
	t := transform.Transformer(encoding.UTF8Validator)
	if c.enc != nil {
		t = transform.Chain(encoding.UTF8Validator, c.enc.NewEncoder())
	}

	b, _, err := transform.Bytes(t, []byte(text))
	if err != nil {
		return nil, elemsel.Errorf(elemsel.EINVALID, "encode %s: %v", c.name, err)
	}
	return b, nil
}

// Decode converts b from the codec's charset to a string. For UTF-8,
// invalid input returns EINVALID.
func (c *Codec) Decode(b []byte) (string, error) {
	t := transform.Transformer(encoding.UTF8Validator)
	if c.enc != nil {
		t = c.enc.NewDecoder()
	}

	out, _, err := transform.Bytes(t, b)
	if err != nil {
		return "", elemsel.Errorf(elemsel.EINVALID, "decode %s: %v", c.name, err)
	}
	return string(out), nil
}
