package utils

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_BasicOperations(t *testing.T) {
	cache := NewCache[string, int]()

	cache.Set("key1", 42)
	value, exists := cache.Get("key1")
	if !exists {
		t.Error("expected key1 to exist")
	}
	if value != 42 {
		t.Errorf("expected value 42, got %d", value)
	}

	_, exists = cache.Get("nonexistent")
	if exists {
		t.Error("expected nonexistent key to not exist")
	}

	if cache.Size() != 1 {
		t.Errorf("expected size 1, got %d", cache.Size())
	}
}

func TestCache_Keys(t *testing.T) {
	cache := NewCache[string, int]()

	cache.Set("key1", 1)
	cache.Set("key2", 2)
	cache.Set("key3", 3)

	assert.ElementsMatch(t, []string{"key1", "key2", "key3"}, cache.Keys())
}

func TestCache_GetOrCreate(t *testing.T) {
	cache := NewCache[string, string]()

	v, created, err := cache.GetOrCreate("a", func() (string, error) { return "first", nil })
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "first", v)

	v, created, err = cache.GetOrCreate("a", func() (string, error) { return "second", nil })
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "first", v)

	stats := cache.GetStats()
	assert.Equal(t, 1, stats.Size)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Creates)
}

func TestCache_FailuresAreNotCached(t *testing.T) {
	cache := NewCache[string, int]()
	boom := errors.New("boom")

	_, _, err := cache.GetOrCreate("k", func() (int, error) { return 0, boom })
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, cache.Size())

	v, created, err := cache.GetOrCreate("k", func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 7, v)
}

func TestCache_ConcurrentSameKeyCreatesOnce(t *testing.T) {
	cache := NewCache[string, int]()
	var calls atomic.Int32
	release := make(chan struct{})

	const workers = 32
	var wg sync.WaitGroup
	results := make([]int, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, _, err := cache.GetOrCreate("shared", func() (int, error) {
				calls.Add(1)
				<-release
				return 99, nil
			})
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			results[i] = v
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, v := range results {
		assert.Equal(t, 99, v)
	}
	assert.Equal(t, int64(1), cache.GetStats().Creates)
}

func TestCache_DifferentKeysDoNotBlock(t *testing.T) {
	cache := NewCache[string, string]()
	slowStarted := make(chan struct{})
	release := make(chan struct{})

	go func() {
		_, _, _ = cache.GetOrCreate("slow", func() (string, error) {
			close(slowStarted)
			<-release
			return "slow", nil
		})
	}()
	<-slowStarted

	done := make(chan struct{})
	go func() {
		defer close(done)
		v, _, err := cache.GetOrCreate("fast", func() (string, error) { return "fast", nil })
		assert.NoError(t, err)
		assert.Equal(t, "fast", v)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("creation of an unrelated key waited on a slow creation")
	}
	close(release)
}

func TestCache_ManyKeys(t *testing.T) {
	cache := NewCache[string, int]()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", i%10)
			_, _, err := cache.GetOrCreate(key, func() (int, error) { return i % 10, nil })
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, cache.Size())
	assert.Equal(t, int64(10), cache.GetStats().Creates)
}
