package secrets

import (
	"context"
	"strings"
	"testing"
)

func TestNewStore(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		wantErr  bool
	}{
		{name: "default", provider: "", wantErr: false},
		{name: "memory", provider: "memory", wantErr: false},
		{name: "env", provider: "env", wantErr: false},
		{name: "unknown provider", provider: "unknown", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store, err := NewStore(Config{Provider: tc.provider})
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				if !strings.Contains(err.Error(), "unsupported secret provider") {
					t.Fatalf("error = %q", err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if store == nil {
				t.Fatalf("store should not be nil")
			}
		})
	}
}

func TestMemoryStoreContract(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if err := s.Set(ctx, "gateway_api_key", "value"); err != nil {
		t.Fatalf("set secret failed: %v", err)
	}
	got, err := s.Get(ctx, "gateway_api_key")
	if err != nil || got != "value" {
		t.Fatalf("get secret: %q, %v", got, err)
	}

	keys, err := s.List(ctx, "gateway_")
	if err != nil || len(keys) != 1 {
		t.Fatalf("list secrets: %v, %v", keys, err)
	}

	if err := s.Delete(ctx, "gateway_api_key"); err != nil {
		t.Fatalf("delete secret failed: %v", err)
	}
	if _, err := s.Get(ctx, "gateway_api_key"); err == nil {
		t.Fatal("expected error after delete")
	}
}

func TestEnvStore(t *testing.T) {
	ctx := context.Background()
	t.Setenv("SECRET_TEST_KEY", "env-value")

	s := NewEnvStore()
	got, err := s.Get(ctx, "SECRET_TEST_KEY")
	if err != nil || got != "env-value" {
		t.Fatalf("get env secret: %q, %v", got, err)
	}
	if _, err := s.Get(ctx, "SECRET_TEST_KEY_MISSING"); err == nil {
		t.Fatal("expected error for unset variable")
	}
}
