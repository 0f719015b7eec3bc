package jsonfield

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// emptyObjectText is the canonical text of an empty object, and the
// fallback for anything that cannot be encoded.
const emptyObjectText = "{}"

// serializerIndent is the indentation the pretty printer emits before
// canonicalization replaces each run with one tab.
const serializerIndent = "    "

var leadingSpaces = regexp.MustCompile(`(?m)^( {4,})`)

// Canonicalize serializes v into canonical text: one tab per nesting
// level, "key": value separators, members in insertion order, and neither
// "/" nor non-ASCII characters escaped.
//
// Values may be anything Decode returns, or any Go value encoding/json
// accepts (maps encode with sorted keys). Values with no JSON form return
// an error wrapping ErrUnencodable.
func Canonicalize(v any) (string, error) {
	// Step 1: compact encoding that preserves member order.
	var compact bytes.Buffer
	if err := writeCompact(&compact, v, 0); err != nil {
		return "", err
	}

	// Step 2: pretty print with the serializer's space indentation.
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, compact.Bytes(), "", serializerIndent); err != nil {
		return "", fmt.Errorf("jsonfield: %w: %v", ErrUnencodable, err)
	}

	// Step 3: turn the leading space runs into tabs.
	return tabIndent(pretty.String()), nil
}

// Encode is Canonicalize with failures collapsed to "{}".
func Encode(v any) string {
	s, err := Canonicalize(v)
	if err != nil {
		return emptyObjectText
	}
	return s
}

// tabIndent replaces every complete four-space group inside a line's
// leading run of four or more spaces with a tab. A remainder shorter than
// four spaces is kept after the tabs, so six spaces become "\t  ".
func tabIndent(s string) string {
	return leadingSpaces.ReplaceAllStringFunc(s, func(run string) string {
		return strings.ReplaceAll(run, serializerIndent, "\t")
	})
}

func writeCompact(buf *bytes.Buffer, v any, depth int) error {
	if depth > maxDepth {
		return fmt.Errorf("jsonfield: %w: nesting deeper than %d (cyclic value?)", ErrUnencodable, maxDepth)
	}

	switch x := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		if x {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case string:
		return writeString(buf, x)
	case json.Number:
		if x == "" {
			buf.WriteString("0")
			return nil
		}
		if !json.Valid([]byte(x)) {
			return fmt.Errorf("jsonfield: %w: invalid number literal %q", ErrUnencodable, string(x))
		}
		buf.WriteString(string(x))
	case *Object:
		if x == nil {
			buf.WriteString("null")
			return nil
		}
		buf.WriteByte('{')
		for i, m := range x.members {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeString(buf, m.Name); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeCompact(buf, m.Value, depth+1); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case []any:
		buf.WriteByte('[')
		for i, elem := range x {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCompact(buf, elem, depth+1); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case map[string]any:
		if x == nil {
			buf.WriteString("null")
			return nil
		}
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeString(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeCompact(buf, x[k], depth+1); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return writeMarshaled(buf, v)
	}
	return nil
}

// writeString writes s as a quoted JSON string without HTML escaping.
func writeString(buf *bytes.Buffer, s string) error {
	return writeMarshaled(buf, s)
}

// writeMarshaled encodes any other Go value with encoding/json, HTML
// escaping disabled, and appends it without the encoder's trailing newline.
func writeMarshaled(buf *bytes.Buffer, v any) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("jsonfield: %w: %v", ErrUnencodable, err)
	}
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte("\n")))
	return nil
}
