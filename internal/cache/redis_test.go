package cache

import (
	"testing"
)

func TestCache_NamespaceKey(t *testing.T) {
	cache := &Cache{}

	tests := []struct {
		name     string
		key      string
		expected string
	}{
		{
			name:     "simple key",
			key:      "test",
			expected: "newsroom:test",
		},
		{
			name:     "key with colon",
			key:      KeyPublicArticles,
			expected: "newsroom:public:articles",
		},
		{
			name:     "empty key",
			key:      "",
			expected: "newsroom:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := cache.namespaceKey(tt.key)
			if result != tt.expected {
				t.Errorf("namespaceKey() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestDisabledCacheIsSafe(t *testing.T) {
	var cache *Cache

	if _, err := cache.Get("k"); err != ErrCacheDisabled {
		t.Errorf("Get on nil cache = %v, want ErrCacheDisabled", err)
	}
	if err := cache.Set("k", "v", DefaultTTL); err != ErrCacheDisabled {
		t.Errorf("Set on nil cache = %v, want ErrCacheDisabled", err)
	}
	if err := cache.Delete("k"); err != ErrCacheDisabled {
		t.Errorf("Delete on nil cache = %v, want ErrCacheDisabled", err)
	}
	if err := cache.Close(); err != nil {
		t.Errorf("Close on nil cache = %v, want nil", err)
	}
}
