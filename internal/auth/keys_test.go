package auth

import (
	"testing"
)

func TestHashKey(t *testing.T) {
	result := HashKey("test-api-key")
	if len(result) != 64 {
		t.Errorf("HashKey() returned %d chars, want 64", len(result))
	}

	trimmed := HashKey("  test-api-key  ")
	if trimmed != result {
		t.Errorf("HashKey() with whitespace = %v, want %v", trimmed, result)
	}

	// SHA256 of the empty string
	empty := HashKey("")
	if empty != "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855" {
		t.Errorf("HashKey(\"\") = %v", empty)
	}
}

func TestHashKey_Deterministic(t *testing.T) {
	key := "my-secret-key"
	if HashKey(key) != HashKey(key) {
		t.Error("HashKey is not deterministic")
	}
}

func TestHashKey_DifferentInputsDifferentOutputs(t *testing.T) {
	if HashKey("key1") == HashKey("key2") {
		t.Error("Different keys produced same hash")
	}
}

func TestVerifyKey(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		presented  string
		want       bool
	}{
		{name: "match", configured: "secret", presented: "secret", want: true},
		{name: "mismatch", configured: "secret", presented: "wrong", want: false},
		{name: "presented with whitespace", configured: "secret", presented: " secret ", want: true},
		{name: "empty configured rejects everything", configured: "", presented: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VerifyKey(tt.configured, tt.presented); got != tt.want {
				t.Errorf("VerifyKey(%q, %q) = %v, want %v", tt.configured, tt.presented, got, tt.want)
			}
		})
	}
}
