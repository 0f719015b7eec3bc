package jsonfield

import (
	"context"
	"testing"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	ref := RecordRef{Kind: PostRecord, ID: 1}

	if v, err := s.Get(ctx, ref, "k"); err != nil || v != "" {
		t.Fatalf("Get on empty store = %q, %v", v, err)
	}
	if changed, err := s.Update(ctx, ref, "k", "{}"); err != nil || !changed {
		t.Fatalf("first Update = %v, %v", changed, err)
	}
	if changed, _ := s.Update(ctx, ref, "k", "{}"); changed {
		t.Error("Update with the same value reported a change")
	}
	if v, _ := s.Get(ctx, RecordRef{Kind: UserRecord, ID: 1}, "k"); v != "" {
		t.Errorf("user record shares post record value: %q", v)
	}

	var zero MemoryStore
	if changed, err := zero.Update(ctx, ref, "k", "x"); err != nil || !changed {
		t.Errorf("zero MemoryStore Update = %v, %v", changed, err)
	}
}

func TestSlashes(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{`{"a": "b"}`, `{\"a\": \"b\"}`},
		{`it's`, `it\'s`},
		{`back\slash`, `back\\slash`},
		{"nul\x00", `nul\0`},
		{`\0`, `\\0`},
	}
	for _, tt := range tests {
		got := AddSlashes(tt.in)
		if got != tt.want {
			t.Errorf("AddSlashes(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if back := StripSlashes(got); back != tt.in {
			t.Errorf("StripSlashes(%q) = %q, want %q", got, back, tt.in)
		}
	}
}
