package jsonfield

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RecordKind says which metadata table a record lives in.
type RecordKind uint8

const (
	PostRecord RecordKind = iota
	UserRecord
)

func (k RecordKind) String() string {
	if k == UserRecord {
		return "user"
	}
	return "post"
}

// RecordRef identifies the post or user a field value belongs to.
type RecordRef struct {
	Kind RecordKind
	ID   int64
}

// String renders the reference the way templates write it: "123" for a
// post and "user_42" for a user.
func (r RecordRef) String() string {
	if r.Kind == UserRecord {
		return "user_" + strconv.FormatInt(r.ID, 10)
	}
	return strconv.FormatInt(r.ID, 10)
}

// RecordContext supplies the records implied by the current request.
type RecordContext interface {
	// CurrentPostID is the post being rendered.
	CurrentPostID() int64
	// CurrentUserID is the logged-in user.
	CurrentUserID() int64
}

// StaticContext is a RecordContext with fixed ids.
type StaticContext struct {
	PostID int64
	UserID int64
}

func (c StaticContext) CurrentPostID() int64 { return c.PostID }
func (c StaticContext) CurrentUserID() int64 { return c.UserID }

const userPrefix = "user_"

// ResolveRecord turns a template-style record reference into a RecordRef:
//
//   - nil, false, "", "null", "false" or 0: the current post
//   - "user" or "user_": the current user
//   - "user_<id>": that user
//   - any other integer, or a decimal string: that post
//
// A RecordRef passes through unchanged.
func ResolveRecord(ref any, rc RecordContext) (RecordRef, error) {
	switch x := ref.(type) {
	case nil:
		return currentPost(rc), nil
	case RecordRef:
		return x, nil
	case *RecordRef:
		if x == nil {
			return currentPost(rc), nil
		}
		return *x, nil
	case bool:
		if !x {
			return currentPost(rc), nil
		}
	case int:
		return postOrCurrent(int64(x), rc), nil
	case int32:
		return postOrCurrent(int64(x), rc), nil
	case int64:
		return postOrCurrent(x, rc), nil
	case uint:
		if uint64(x) <= math.MaxInt64 {
			return postOrCurrent(int64(x), rc), nil
		}
	case uint32:
		return postOrCurrent(int64(x), rc), nil
	case uint64:
		if x <= math.MaxInt64 {
			return postOrCurrent(int64(x), rc), nil
		}
	case string:
		return resolveString(x, rc)
	}
	return RecordRef{}, fmt.Errorf("jsonfield: record reference %v (%T): %w", ref, ref, ErrInvalidRecordRef)
}

func resolveString(s string, rc RecordContext) (RecordRef, error) {
	switch s {
	case "", "null", "false", "0":
		return currentPost(rc), nil
	case "user", userPrefix:
		return RecordRef{Kind: UserRecord, ID: currentUser(rc)}, nil
	}
	if rest, ok := strings.CutPrefix(s, userPrefix); ok {
		id, err := strconv.ParseInt(rest, 10, 64)
		if err != nil || id < 0 {
			return RecordRef{}, fmt.Errorf("jsonfield: user reference %q: %w", s, ErrInvalidRecordRef)
		}
		return RecordRef{Kind: UserRecord, ID: id}, nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 0 {
		return RecordRef{}, fmt.Errorf("jsonfield: post reference %q: %w", s, ErrInvalidRecordRef)
	}
	return RecordRef{Kind: PostRecord, ID: id}, nil
}

func postOrCurrent(id int64, rc RecordContext) RecordRef {
	if id == 0 {
		return currentPost(rc)
	}
	return RecordRef{Kind: PostRecord, ID: id}
}

func currentPost(rc RecordContext) RecordRef {
	if rc == nil {
		return RecordRef{Kind: PostRecord}
	}
	return RecordRef{Kind: PostRecord, ID: rc.CurrentPostID()}
}

func currentUser(rc RecordContext) int64 {
	if rc == nil {
		return 0
	}
	return rc.CurrentUserID()
}
