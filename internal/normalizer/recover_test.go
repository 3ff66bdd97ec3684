// Copyright 2026 fanjia1024
// Tests for best-effort JSON recovery

package normalizer

import (
	"reflect"
	"testing"
)

func TestRecoverParse_ValidJSON(t *testing.T) {
	got := RecoverParse(`{"a":1}`)
	want := map[string]any{"a": float64(1)}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RecoverParse: %#v", got)
	}
}

func TestRecoverParse_TrailingComma(t *testing.T) {
	got := RecoverParse(`{"a":1,`)
	want := map[string]any{"a": float64(1)}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RecoverParse: %#v", got)
	}
}

func TestRecoverParse_MissingBrace(t *testing.T) {
	got := RecoverParse(`{"a":1`)
	want := map[string]any{"a": float64(1)}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RecoverParse: %#v", got)
	}
}

func TestRecoverParse_MissingBracket(t *testing.T) {
	got := RecoverParse(`[1,2`)
	want := []any{float64(1), float64(2)}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RecoverParse: %#v", got)
	}
}

func TestRecoverParse_Unrecoverable(t *testing.T) {
	cases := []any{
		"not json",
		"",
		`{"a": "unterminated`,
		nil,
		42,
		map[string]any{"a": 1},
	}
	for _, c := range cases {
		if got := RecoverParse(c); got != nil {
			t.Errorf("RecoverParse(%#v) = %#v, want nil", c, got)
		}
	}
}

func TestRecoverParse_WhitespacePadding(t *testing.T) {
	got := RecoverParse("  {\"q\":\"x\"}\n")
	want := map[string]any{"q": "x"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RecoverParse: %#v", got)
	}
}
