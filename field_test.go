package jsonfield

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

// failingStore reports every write as failed and serves reads from an
// inner MemoryStore.
type failingStore struct {
	*MemoryStore
	err error
}

func (s failingStore) Update(context.Context, RecordRef, string, string) (bool, error) {
	return false, s.err
}

func newTestFields(store Store) (*Fields, *bytes.Buffer) {
	var logs bytes.Buffer
	return &Fields{
		Store:   store,
		Context: StaticContext{PostID: 7, UserID: 3},
		Logger:  slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
	}, &logs
}

func TestFieldsGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.Update(ctx, RecordRef{Kind: PostRecord, ID: 7}, "data", `{"a": 1, "b": "x/y", "c": null}`)
	store.Update(ctx, RecordRef{Kind: PostRecord, ID: 8}, "data", `{"a":`)
	f, logs := newTestFields(store)

	t.Run("Value", func(t *testing.T) {
		v := f.Get(ctx, "data", nil)
		obj, ok := v.(*Object)
		if !ok || strings.Join(obj.Keys(), ",") != "a,b,c" {
			t.Fatalf("Get = %#v", v)
		}
		if got := f.GetFormat(ctx, "data", "null", FormatValue); !Equal(got, v) {
			t.Errorf("GetFormat(value) = %#v, want %#v", got, v)
		}
	})

	t.Run("Markup", func(t *testing.T) {
		got := f.GetFormat(ctx, "data", false, FormatMarkup).(string)
		want := DefaultHTMLFormatter.Pre(Encode(Decode(`{"a": 1, "b": "x/y", "c": null}`)))
		if got != want {
			t.Errorf("markup =\n%s\nwant\n%s", got, want)
		}
		if n := strings.Count(got, `class="json-field-key"`); n != 3 {
			t.Errorf("markup has %d key spans, want 3", n)
		}
	})

	t.Run("MalformedFallsBackAndLogs", func(t *testing.T) {
		logs.Reset()
		v := f.Get(ctx, "data", 8)
		if obj, ok := v.(*Object); !ok || obj.Len() != 0 {
			t.Errorf("Get(malformed) = %#v, want empty object", v)
		}
		if !strings.Contains(logs.String(), "json field read failed") {
			t.Errorf("malformed value not logged: %s", logs.String())
		}
		if _, err := f.Read(ctx, "data", 8); !errors.Is(err, ErrMalformed) {
			t.Errorf("Read error = %v, want ErrMalformed", err)
		}
	})

	t.Run("Missing", func(t *testing.T) {
		if got := f.GetFormat(ctx, "none", 99, FormatMarkup); got != `<pre class="json-field-output">{}</pre>` {
			t.Errorf("markup of missing field = %v", got)
		}
	})

	t.Run("InvalidRecord", func(t *testing.T) {
		_, err := f.Read(ctx, "data", "user_x")
		var fe *FieldError
		if !errors.As(err, &fe) || !errors.Is(err, ErrInvalidRecordRef) || fe.Op != "get" {
			t.Errorf("Read error = %v", err)
		}
	})

	t.Run("UnknownFormat", func(t *testing.T) {
		if got := f.GetFormat(ctx, "data", nil, Format("php")); got != nil {
			t.Errorf("GetFormat(php) = %v, want nil", got)
		}
	})
}

func TestFieldsDefaultValue(t *testing.T) {
	ctx := context.Background()
	g, err := LoadFieldGroup(strings.NewReader(productGroup))
	if err != nil {
		t.Fatal(err)
	}
	store := NewMemoryStore()
	f, _ := newTestFields(store)
	f.Group = g

	v := f.Get(ctx, "specs", nil)
	if !Equal(v, Decode(`{"sizes": []}`)) {
		t.Errorf("Get(specs) = %s, want default value", Encode(v))
	}

	if !f.Set(ctx, "specs", Decode(`{"sizes": [1]}`), nil, SetOptions{}) {
		t.Fatal("Set(specs) failed")
	}
	raw, _ := store.Get(ctx, RecordRef{Kind: PostRecord, ID: 7}, "field_specs")
	if raw != "{\n\t\"sizes\": [\n\t\t1\n\t]\n}" {
		t.Errorf("stored under field key = %q", raw)
	}
}

func TestFieldsSet(t *testing.T) {
	ctx := context.Background()

	t.Run("UserRecordRoundTrip", func(t *testing.T) {
		store := NewMemoryStore()
		f, _ := newTestFields(store)
		if !f.Set(ctx, "prefs", Decode(`{"theme": "dark"}`), "user_42", SetOptions{}) {
			t.Fatal("Set failed")
		}
		raw, _ := store.Get(ctx, RecordRef{Kind: UserRecord, ID: 42}, "prefs")
		if raw != "{\n\t\"theme\": \"dark\"\n}" {
			t.Errorf("stored = %q", raw)
		}
		if got := f.Get(ctx, "prefs", "user_42"); !Equal(got, Decode(raw)) {
			t.Errorf("Get(user_42) = %s", Encode(got))
		}
	})

	t.Run("CurrentUserConsistent", func(t *testing.T) {
		store := NewMemoryStore()
		f, _ := newTestFields(store)
		if !f.Set(ctx, "prefs", []any{"a"}, "user", SetOptions{}) {
			t.Fatal("Set failed")
		}
		if got := Encode(f.Get(ctx, "prefs", "user_")); got != "[\n\t\"a\"\n]" {
			t.Errorf("Get(user_) = %q", got)
		}
		if got := Encode(f.Get(ctx, "prefs", "user_3")); got != "[\n\t\"a\"\n]" {
			t.Errorf("Get(user_3) = %q", got)
		}
	})

	t.Run("NoOpWriteIsSuccess", func(t *testing.T) {
		store := NewMemoryStore()
		f, logs := newTestFields(store)
		v := Decode(`{"a": 1}`)
		if !f.Set(ctx, "data", v, 7, SetOptions{}) {
			t.Fatal("first Set failed")
		}
		if !f.Set(ctx, "data", v, 7, SetOptions{}) {
			t.Error("Set of the stored value reported failure")
		}
		if !strings.Contains(logs.String(), "already up to date") {
			t.Errorf("no-op write not logged: %s", logs.String())
		}
	})

	t.Run("Encoded", func(t *testing.T) {
		store := NewMemoryStore()
		f, _ := newTestFields(store)
		if !f.Set(ctx, "data", `{"raw":true}`, nil, SetOptions{Encoded: true}) {
			t.Fatal("Set failed")
		}
		raw, _ := store.Get(ctx, RecordRef{Kind: PostRecord, ID: 7}, "data")
		if raw != `{"raw":true}` {
			t.Errorf("stored = %q, want text as given", raw)
		}
	})

	t.Run("SlashedStore", func(t *testing.T) {
		store := NewMemoryStore()
		store.UnslashOnWrite = true
		f, _ := newTestFields(store)
		v := Decode(`{"quote": "say \"hi\"", "path": "C:\\dir"}`)
		opts := SetOptions{Slash: true}
		if !f.Set(ctx, "data", v, nil, opts) {
			t.Fatal("Set failed")
		}
		if got := f.Get(ctx, "data", nil); !Equal(got, v) {
			t.Errorf("Get = %s, want %s", Encode(got), Encode(v))
		}
		if !f.Set(ctx, "data", v, nil, opts) {
			t.Error("repeated slashed Set reported failure")
		}
	})

	t.Run("StoreFailure", func(t *testing.T) {
		boom := fmt.Errorf("disk full")
		store := failingStore{MemoryStore: NewMemoryStore(), err: boom}
		f, logs := newTestFields(store)
		err := f.Write(ctx, "data", Decode(`{"a": 1}`), 7, SetOptions{})
		if !errors.Is(err, ErrStoreWrite) || !errors.Is(err, boom) {
			t.Errorf("Write error = %v, want ErrStoreWrite wrapping cause", err)
		}
		if f.Set(ctx, "data", Decode(`{"a": 1}`), 7, SetOptions{}) {
			t.Error("Set reported success on store failure")
		}
		if !strings.Contains(logs.String(), "json field write failed") {
			t.Errorf("failure not logged: %s", logs.String())
		}
	})

	t.Run("StoreFailureWithMatchingValue", func(t *testing.T) {
		inner := NewMemoryStore()
		inner.Update(ctx, RecordRef{Kind: PostRecord, ID: 7}, "data", "{\n\t\"a\": 1\n}")
		f, _ := newTestFields(failingStore{MemoryStore: inner, err: errors.New("0 rows")})
		if !f.Set(ctx, "data", Decode(`{"a": 1}`), 7, SetOptions{}) {
			t.Error("Set reported failure although the stored value matches")
		}
	})

	t.Run("InvalidRecord", func(t *testing.T) {
		f, _ := newTestFields(NewMemoryStore())
		if f.Set(ctx, "data", 1, "user_me", SetOptions{}) {
			t.Error("Set succeeded with invalid record reference")
		}
	})
}

func TestFieldsShortcode(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.Update(ctx, RecordRef{Kind: UserRecord, ID: 24}, "bio", `{"name": "Ada"}`)
	store.Update(ctx, RecordRef{Kind: PostRecord, ID: 7}, "bio", `[true]`)
	f, _ := newTestFields(store)

	got := f.Shortcode(ctx, map[string]string{"field": "bio", "id": "user_24"})
	if !strings.Contains(got, span("string", `"Ada"`)) {
		t.Errorf("Shortcode(user_24) = %s", got)
	}
	got = f.Shortcode(ctx, map[string]string{"field": "bio"})
	if !strings.Contains(got, span("boolean", "true")) {
		t.Errorf("Shortcode(current post) = %s", got)
	}
}

func TestFieldsRenderMany(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	var reqs []Request
	for i := 1; i <= 50; i++ {
		store.Update(ctx, RecordRef{Kind: PostRecord, ID: int64(i)}, "n", fmt.Sprintf(`{"i": %d}`, i))
		reqs = append(reqs, Request{Field: "n", Record: i})
	}
	f, _ := newTestFields(store)
	f.Workers = 4

	out, err := f.RenderMany(ctx, reqs)
	if err != nil {
		t.Fatalf("RenderMany error = %v", err)
	}
	if len(out) != len(reqs) {
		t.Fatalf("got %d results, want %d", len(out), len(reqs))
	}
	for i, got := range out {
		if want := span("number", fmt.Sprint(i+1)); !strings.Contains(got, want) {
			t.Errorf("result %d = %s, want it to contain %s", i, got, want)
		}
	}

	t.Run("Cancelled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		out, err := f.RenderMany(cctx, reqs)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
		for i, got := range out {
			if got != `<pre class="json-field-output">{}</pre>` {
				t.Errorf("result %d = %s, want empty object markup", i, got)
			}
		}
	})

	t.Run("Empty", func(t *testing.T) {
		out, err := f.RenderMany(ctx, nil)
		if err != nil || len(out) != 0 {
			t.Errorf("RenderMany(nil) = %v, %v", out, err)
		}
	})
}
