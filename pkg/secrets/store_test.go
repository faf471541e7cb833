package secrets

import (
	"context"
	"errors"
	"os"
	"testing"
)

func TestNewStore(t *testing.T) {
	tests := []struct {
		name     string
		provider string
	}{
		{name: "memory", provider: "memory"},
		{name: "env", provider: "env"},
		{name: "unknown falls back to env", provider: "unknown"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store, err := NewStore(Config{Provider: tc.provider})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if store == nil {
				t.Fatalf("store should not be nil")
			}
		})
	}
}

func TestNewStore_MemorySeededFromConfig(t *testing.T) {
	store, err := NewStore(Config{
		Provider: "memory",
		Config:   map[string]string{"REWARD_WEBHOOK_TOKEN": "dev-token"},
	})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	got, err := store.Get(context.Background(), "REWARD_WEBHOOK_TOKEN")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "dev-token" {
		t.Fatalf("Get = %q, want dev-token", got)
	}
}

func TestMemoryAndEnvStoreBasicContract(t *testing.T) {
	ctx := context.Background()
	stores := []Store{NewMemoryStore(), NewEnvStore("")}

	for _, s := range stores {
		if err := s.Set(ctx, "secret_test_key", "value"); err != nil {
			t.Fatalf("set secret failed: %v", err)
		}
		got, err := s.Get(ctx, "secret_test_key")
		if err != nil {
			t.Fatalf("get secret failed: %v", err)
		}
		if got != "value" {
			t.Fatalf("get secret = %q, want value", got)
		}
		if err := s.Delete(ctx, "secret_test_key"); err != nil {
			t.Fatalf("delete secret failed: %v", err)
		}
		_, err = s.Get(ctx, "secret_test_key")
		if err == nil {
			t.Fatalf("expected error after delete")
		}
	}
}

func TestEnvStore_Prefix(t *testing.T) {
	ctx := context.Background()
	s := NewEnvStore("QUESTS_")

	if err := s.Set(ctx, "API_TOKEN", "abc"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	t.Cleanup(func() { _ = s.Delete(ctx, "API_TOKEN") })

	got, err := s.Get(ctx, "API_TOKEN")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "abc" {
		t.Fatalf("Get = %q, want abc", got)
	}

	keys, err := s.List(ctx, "API_")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	found := false
	for _, k := range keys {
		if k == "API_TOKEN" {
			found = true
		}
	}
	if !found {
		t.Fatalf("List should return the unprefixed key name, got %v", keys)
	}
}

func TestK8sStore_ReadsMountedFiles(t *testing.T) {
	saDir := t.TempDir()
	secretsDir := t.TempDir()
	writeFile(t, saDir+"/token", "sa-token\n")
	writeFile(t, secretsDir+"/REWARD_SIGNING_SEED", "c2VlZA==\n")

	store, err := NewK8sStore(K8sConfig{ServiceAccountPath: saDir, SecretsPath: secretsDir})
	if err != nil {
		t.Fatalf("NewK8sStore: %v", err)
	}
	ctx := context.Background()

	got, err := store.Get(ctx, "REWARD_SIGNING_SEED")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "c2VlZA==" {
		t.Fatalf("Get should trim trailing whitespace, got %q", got)
	}

	// service account 文件只按原名取，不顶替其他 key
	if _, err := store.Get(ctx, "MISSING_KEY"); err == nil {
		t.Fatalf("missing key must not fall back to the service account token")
	}
	token, err := store.Get(ctx, "token")
	if err != nil {
		t.Fatalf("Get token: %v", err)
	}
	if token != "sa-token" {
		t.Fatalf("Get token = %q", token)
	}

	if err := store.Set(ctx, "x", "y"); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("Set should report read-only, got %v", err)
	}

	keys, err := store.List(ctx, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %v", keys)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
