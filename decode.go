package jsonfield

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// maxDepth bounds the nesting of arrays and objects accepted by Parse.
const maxDepth = 512

// Parse decodes text into nil, bool, json.Number, string, []any or
// *Object. Object members keep their source order; a repeated name keeps
// its first position and takes the last value.
//
// The empty string means "no data yet" and yields an empty *Object.
// Anything else that is not exactly one JSON value in valid UTF-8 returns
// an error wrapping ErrMalformed.
func Parse(text string) (any, error) {
	if text == "" {
		return NewObject(), nil
	}
	if !utf8.ValidString(text) {
		return nil, fmt.Errorf("jsonfield: %w: invalid UTF-8", ErrMalformed)
	}

	// Use a standard JSON decoder, token by token, so object members can
	// be collected in order. UseNumber keeps numeric literals verbatim.
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	v, err := parseValue(dec, 0)
	if err != nil {
		return nil, fmt.Errorf("jsonfield: %w: %v", ErrMalformed, err)
	}

	// Exactly one value is allowed; only whitespace may follow it.
	if tok, err := dec.Token(); err != io.EOF {
		if err == nil {
			err = fmt.Errorf("unexpected %v after top-level value", tok)
		}
		return nil, fmt.Errorf("jsonfield: %w: %v", ErrMalformed, err)
	}
	return v, nil
}

// Decode is Parse with malformed input collapsed to an empty object.
func Decode(text string) any {
	v, err := Parse(text)
	if err != nil {
		return NewObject()
	}
	return v
}

func parseValue(dec *json.Decoder, depth int) (any, error) {
	tok, err := dec.Token()
	if err == io.EOF {
		return nil, io.ErrUnexpectedEOF
	}
	if err != nil {
		return nil, err
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		// string, json.Number, bool or nil.
		return tok, nil
	}
	if depth >= maxDepth {
		return nil, errors.New("maximum nesting depth exceeded")
	}

	switch delim {
	case '{':
		obj := NewObject()
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("object key is %T, not string", keyTok)
			}
			val, err := parseValue(dec, depth+1)
			if err != nil {
				return nil, err
			}
			obj.Set(key, val)
		}
		if err := expectDelim(dec, '}'); err != nil {
			return nil, err
		}
		return obj, nil
	case '[':
		arr := []any{}
		for dec.More() {
			val, err := parseValue(dec, depth+1)
			if err != nil {
				return nil, err
			}
			arr = append(arr, val)
		}
		if err := expectDelim(dec, ']'); err != nil {
			return nil, err
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("unexpected delimiter %v", delim)
	}
}

// expectDelim consumes the closing delimiter of the current container.
func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %v, found %v", want, tok)
	}
	return nil
}
