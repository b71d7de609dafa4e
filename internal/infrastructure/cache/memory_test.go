package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/productcat/backend/internal/domain"
)

func TestMemoryCache_SetAndGet(t *testing.T) {
	cache := NewMemoryCache()
	defer cache.Close()
	ctx := context.Background()

	tests := []struct {
		name  string
		key   string
		value []byte
		ttl   time.Duration
	}{
		{
			name:  "store and retrieve cookies",
			key:   "woolworths:session-cookies",
			value: []byte(`[{"name":"bm_sz","value":"abc"}]`),
			ttl:   1 * time.Minute,
		},
		{
			name:  "store and retrieve categorization",
			key:   "category:basic:123456",
			value: []byte(`{"type":"Milk","variety":["Oat"]}`),
			ttl:   1 * time.Minute,
		},
		{
			name:  "store with short TTL",
			key:   "expiring",
			value: []byte("expires-soon"),
			ttl:   1 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := cache.Set(ctx, tt.key, tt.value, tt.ttl); err != nil {
				t.Fatalf("Set() error = %v", err)
			}

			// For short TTL test, wait for expiration
			if tt.ttl < 10*time.Millisecond {
				time.Sleep(10 * time.Millisecond)
				_, err := cache.Get(ctx, tt.key)
				if err != domain.ErrCacheMiss {
					t.Errorf("Expected cache miss after expiration, got error = %v", err)
				}
				return
			}

			got, err := cache.Get(ctx, tt.key)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if string(got) != string(tt.value) {
				t.Errorf("Get() = %s, want %s", got, tt.value)
			}
		})
	}
}

func TestMemoryCache_ValuesAreCopied(t *testing.T) {
	cache := NewMemoryCache()
	defer cache.Close()
	ctx := context.Background()

	value := []byte("original")
	if err := cache.Set(ctx, "k", value, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	value[0] = 'X'

	got, _ := cache.Get(ctx, "k")
	got[1] = 'Y'

	again, _ := cache.Get(ctx, "k")
	if string(again) != "original" {
		t.Errorf("Get() = %s, want original", again)
	}
}

func TestMemoryCache_Get_CacheMiss(t *testing.T) {
	cache := NewMemoryCache()
	defer cache.Close()

	_, err := cache.Get(context.Background(), "non-existent-key")
	if err != domain.ErrCacheMiss {
		t.Errorf("Get() error = %v, want %v", err, domain.ErrCacheMiss)
	}
}

func TestMemoryCache_Delete(t *testing.T) {
	cache := NewMemoryCache()
	defer cache.Close()
	ctx := context.Background()

	key := "delete-test"
	if err := cache.Set(ctx, key, []byte("value"), 1*time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if _, err := cache.Get(ctx, key); err != nil {
		t.Fatalf("Get() before delete error = %v", err)
	}

	if err := cache.Delete(ctx, key); err != nil {
		t.Errorf("Delete() error = %v", err)
	}

	if _, err := cache.Get(ctx, key); err != domain.ErrCacheMiss {
		t.Errorf("Get() after delete error = %v, want %v", err, domain.ErrCacheMiss)
	}
}

func TestMemoryCache_Exists(t *testing.T) {
	cache := NewMemoryCache()
	defer cache.Close()
	ctx := context.Background()

	key := "exists-test"

	exists, err := cache.Exists(ctx, key)
	if err != nil {
		t.Errorf("Exists() error = %v", err)
	}
	if exists {
		t.Errorf("Exists() = true, want false for non-existent key")
	}

	if err := cache.Set(ctx, key, []byte("value"), 1*time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	exists, err = cache.Exists(ctx, key)
	if err != nil {
		t.Errorf("Exists() error = %v", err)
	}
	if !exists {
		t.Errorf("Exists() = false, want true after setting value")
	}

	shortKey := "short-ttl"
	if err := cache.Set(ctx, shortKey, []byte("value"), 1*time.Millisecond); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	exists, err = cache.Exists(ctx, shortKey)
	if err != nil {
		t.Errorf("Exists() error = %v", err)
	}
	if exists {
		t.Errorf("Exists() = true, want false after expiration")
	}
}

func TestMemoryCache_RemoveExpired(t *testing.T) {
	cache := NewMemoryCache()
	defer cache.Close()
	ctx := context.Background()

	_ = cache.Set(ctx, "live", []byte("1"), time.Hour)
	_ = cache.Set(ctx, "dead", []byte("2"), time.Millisecond)

	cache.removeExpired(time.Now().Add(time.Second))

	if size := cache.Size(); size != 1 {
		t.Errorf("Size() = %d, want 1 after cleanup", size)
	}
}

func TestMemoryCache_SizeAndClear(t *testing.T) {
	cache := NewMemoryCache()
	defer cache.Close()
	ctx := context.Background()

	if size := cache.Size(); size != 0 {
		t.Errorf("Size() = %d, want 0 for empty cache", size)
	}

	for i := 0; i < 5; i++ {
		key := string(rune('a' + i))
		if err := cache.Set(ctx, key, []byte{byte(i)}, 1*time.Minute); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}

	if size := cache.Size(); size != 5 {
		t.Errorf("Size() = %d, want 5", size)
	}

	cache.Clear()

	if size := cache.Size(); size != 0 {
		t.Errorf("Size() = %d, want 0 after clear", size)
	}
}

func TestMemoryCache_Concurrent(t *testing.T) {
	cache := NewMemoryCache()
	defer cache.Close()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", id)
			if err := cache.Set(ctx, key, []byte(key), 1*time.Minute); err != nil {
				t.Errorf("Concurrent Set() error = %v", err)
			}
			if _, err := cache.Get(ctx, key); err != nil {
				t.Errorf("Concurrent Get() error = %v", err)
			}
		}(i)
	}
	wg.Wait()
}
