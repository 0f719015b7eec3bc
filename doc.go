// Package jsonfield implements a JSON custom field: values are stored as
// JSON text per record, decoded into ordered in-memory values, re-encoded
// into one canonical tab-indented form and rendered as syntax-highlighted
// markup.
//
// The pure core is three functions:
//
//	v := jsonfield.Decode(stored)      // never fails, {} on bad input
//	s := jsonfield.Encode(v)           // canonical text, {} on failure
//	h := jsonfield.Highlight(s)        // <span class="json-field-key">...
//
// Parse and Canonicalize expose the same operations with an error
// channel for callers that want to log malformed data.
//
// Fields ties the core to a metadata Store and a RecordContext, resolving
// record references such as "user_42" the way templates pass them.
package jsonfield
