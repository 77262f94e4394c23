package elemsel

import "unicode/utf8"

// FieldCodec converts extracted text to and from the bytes stored in a
// document metadata field.
type FieldCodec interface {
	Encode(text string) ([]byte, error)
	Decode(b []byte) (string, error)
}

// Ensure UTF8Codec implements FieldCodec.
var _ FieldCodec = UTF8Codec{}

// UTF8Codec stores fields as UTF-8 and rejects invalid input.
// It is the default codec of Filter and Indexer.
type UTF8Codec struct{}

// Encode returns text as bytes. Returns EINVALID for invalid UTF-8.
func (UTF8Codec) Encode(text string) ([]byte, error) {
	if !utf8.ValidString(text) {
		return nil, Errorf(EINVALID, "text is not valid UTF-8")
	}
	return []byte(text), nil
}

// Decode returns b as a string. Returns EINVALID for invalid UTF-8.
func (UTF8Codec) Decode(b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", Errorf(EINVALID, "field is not valid UTF-8")
	}
	return string(b), nil
}
