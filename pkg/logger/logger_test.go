package logger

import (
	"errors"
	"log/slog"
	"testing"
)

func TestNormalizeKeepsKeyValuePairs(t *testing.T) {
	args := []any{"address", ":8080", "version", "1.0.0"}
	got := normalize(args)
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}
	if got[0] != "address" || got[1] != ":8080" {
		t.Errorf("pairs changed: %v", got)
	}
}

func TestNormalizeKeysBareValues(t *testing.T) {
	got := normalize([]any{errors.New("boom")})
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	attr, ok := got[0].(slog.Attr)
	if !ok {
		t.Fatalf("got %T, want slog.Attr", got[0])
	}
	if attr.Key != "error" || attr.Value.String() != "boom" {
		t.Errorf("attr = %v", attr)
	}
}

func TestNormalizeOddArgs(t *testing.T) {
	got := normalize([]any{"only-value", 42, nil})
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	for _, a := range got {
		if _, ok := a.(slog.Attr); !ok {
			t.Errorf("got %T, want slog.Attr", a)
		}
	}
}
