package jsonfield

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
)

// Format selects what Fields.GetFormat returns.
type Format string

const (
	// FormatValue returns the decoded value.
	FormatValue Format = "value"
	// FormatMarkup returns highlighted HTML inside a <pre> element.
	FormatMarkup Format = "markup"
)

// SetOptions tune Fields.Set.
type SetOptions struct {
	// Encoded means the value is already JSON text (string, []byte or
	// json.RawMessage) and is stored as-is.
	Encoded bool
	// Slash backslash-escapes the text for stores that unslash on write.
	Slash bool
}

// Fields reads and writes JSON field values through a metadata Store.
// All fields are optional except Store.
type Fields struct {
	Store   Store
	Context RecordContext
	// Group maps field names to keys and supplies default values.
	Group *FieldGroup
	// HTML renders FormatMarkup; nil uses DefaultHTMLFormatter.
	HTML   *HTMLFormatter
	Logger *slog.Logger
	// Workers bounds RenderMany's concurrency; zero uses GOMAXPROCS.
	Workers int
}

func (f *Fields) logger() *slog.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return slog.Default()
}

func (f *Fields) html() *HTMLFormatter {
	if f.HTML != nil {
		return f.HTML
	}
	return DefaultHTMLFormatter
}

func (f *Fields) workers() int {
	if f.Workers > 0 {
		return f.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// config resolves a field key or name against the group.
func (f *Fields) config(field string) FieldConfig {
	if cfg, ok := f.Group.Lookup(field); ok {
		return *cfg
	}
	return FieldConfig{Key: field}
}

// Read returns the decoded value of field on the referenced record. On
// error the value is still the fallback Get would return.
func (f *Fields) Read(ctx context.Context, field string, ref any) (any, error) {
	cfg := f.config(field)
	rec, err := ResolveRecord(ref, f.Context)
	if err != nil {
		return NewObject(), &FieldError{Op: "get", Field: cfg.Key, Err: err}
	}

	raw, err := f.Store.Get(ctx, rec, cfg.Key)
	if err != nil {
		return NewObject(), &FieldError{Op: "get", Field: cfg.Key, Record: rec.String(), Err: err}
	}
	if raw == "" {
		raw = cfg.DefaultValue
	}

	v, err := Parse(raw)
	if err != nil {
		return NewObject(), &FieldError{Op: "get", Field: cfg.Key, Record: rec.String(), Err: err}
	}
	return v, nil
}

// Get returns the decoded value of field, or an empty object when the
// record cannot be resolved, the store fails or the stored text is
// malformed. Failures are logged, never returned.
func (f *Fields) Get(ctx context.Context, field string, ref any) any {
	v, err := f.Read(ctx, field, ref)
	if err != nil {
		f.logger().WarnContext(ctx, "json field read failed",
			slog.String("field", field),
			slog.Any("record", ref),
			slog.String("error", err.Error()),
		)
	}
	return v
}

// Markup returns the field value as highlighted HTML.
func (f *Fields) Markup(ctx context.Context, field string, ref any) string {
	return f.html().Pre(Encode(f.Get(ctx, field, ref)))
}

// GetFormat returns Get's value for FormatValue and Markup's string for
// FormatMarkup. An unknown format yields nil.
func (f *Fields) GetFormat(ctx context.Context, field string, ref any, format Format) any {
	switch format {
	case FormatValue, "":
		return f.Get(ctx, field, ref)
	case FormatMarkup:
		return f.Markup(ctx, field, ref)
	}
	return nil
}

// Write encodes value and stores it under field on the referenced record.
//
// A store that reports no change is not treated as a failure when reading
// the value back shows it is already stored; such stores report "nothing
// updated" for a write of the current value.
func (f *Fields) Write(ctx context.Context, field string, value any, ref any, opts SetOptions) error {
	cfg := f.config(field)
	rec, err := ResolveRecord(ref, f.Context)
	if err != nil {
		return &FieldError{Op: "set", Field: cfg.Key, Err: err}
	}

	text := encodeForStore(value, opts.Encoded)
	if opts.Slash {
		text = AddSlashes(text)
	}

	changed, werr := f.Store.Update(ctx, rec, cfg.Key, text)
	if werr == nil && changed {
		return nil
	}

	current, rerr := f.Store.Get(ctx, rec, cfg.Key)
	if rerr == nil {
		if opts.Slash {
			current = AddSlashes(current)
		}
		if current == text {
			f.logger().DebugContext(ctx, "json field already up to date",
				slog.String("field", cfg.Key),
				slog.String("record", rec.String()),
			)
			return nil
		}
	}

	err = ErrStoreWrite
	if werr != nil {
		err = errors.Join(ErrStoreWrite, werr)
	}
	return &FieldError{Op: "set", Field: cfg.Key, Record: rec.String(), Err: err}
}

// Set is Write reporting success as a bool. Failures are logged.
func (f *Fields) Set(ctx context.Context, field string, value any, ref any, opts SetOptions) bool {
	if err := f.Write(ctx, field, value, ref, opts); err != nil {
		f.logger().ErrorContext(ctx, "json field write failed",
			slog.String("field", field),
			slog.Any("record", ref),
			slog.String("error", err.Error()),
		)
		return false
	}
	return true
}

func encodeForStore(value any, encoded bool) string {
	if encoded {
		switch x := value.(type) {
		case string:
			return x
		case []byte:
			return string(x)
		case json.RawMessage:
			return string(x)
		}
	}
	return Encode(value)
}

// Shortcode renders the field named by attrs["field"] on the record in
// attrs["id"] (absent means the current post) as markup.
func (f *Fields) Shortcode(ctx context.Context, attrs map[string]string) string {
	var ref any
	if id, ok := attrs["id"]; ok {
		ref = id
	}
	return f.Markup(ctx, attrs["field"], ref)
}

// Request names one field on one record for RenderMany.
type Request struct {
	Field  string
	Record any
}

// RenderMany renders the markup of every request concurrently on a
// bounded worker pool and returns the results in request order. When ctx
// is cancelled, requests not yet started render as an empty object and
// ctx's error is returned.
func (f *Fields) RenderMany(ctx context.Context, reqs []Request) ([]string, error) {
	out := make([]string, len(reqs))
	if len(reqs) == 0 {
		return out, nil
	}

	pool, err := ants.NewPool(f.workers())
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i, r := range reqs {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			out[i] = f.Markup(ctx, r.Field, r.Record)
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return nil, err
		}
	}
	wg.Wait()

	empty := f.html().Pre(emptyObjectText)
	for i := range out {
		if out[i] == "" {
			out[i] = empty
		}
	}
	return out, ctx.Err()
}
