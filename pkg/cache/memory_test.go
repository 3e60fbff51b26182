package cache

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Mukul-Bhagat/AttendanceMark-sub003/core"
)

func testOrgs(prefix string) []core.OrganizationMembership {
	return []core.OrganizationMembership{
		{OrganizationName: "Acme Corp", Prefix: prefix, Role: core.RoleManager, UserID: "u1"},
	}
}

func TestInMemoryCacheGetSetShouldStoreAndRetrieve(t *testing.T) {
	cache := NewInMemoryCache(core.CacheConfig{
		TTL:     5 * time.Minute,
		MaxSize: 100,
	})

	orgs := testOrgs("acme")

	err := cache.Set("u1", orgs)
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	retrieved, err := cache.Get("u1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if len(retrieved) != 1 {
		t.Fatalf("Expected 1 membership, got %d", len(retrieved))
	}
	if retrieved[0].Prefix != "acme" {
		t.Errorf("Expected prefix acme, got %s", retrieved[0].Prefix)
	}
}

func TestInMemoryCacheGetNonExistentShouldReturnErrCacheNotFound(t *testing.T) {
	cache := NewInMemoryCache(core.CacheConfig{
		TTL:     5 * time.Minute,
		MaxSize: 100,
	})

	_, err := cache.Get("nonexistent")
	if !errors.Is(err, core.ErrCacheNotFound) {
		t.Errorf("Expected ErrCacheNotFound, got %v", err)
	}
}

func TestInMemoryCacheExpiryShouldExpireEntriesAfterTTL(t *testing.T) {
	cache := NewInMemoryCache(core.CacheConfig{
		TTL:     50 * time.Millisecond,
		MaxSize: 100,
	})

	cache.Set("u1", testOrgs("acme"))

	// Should exist immediately
	if _, err := cache.Get("u1"); err != nil {
		t.Error("Entry should exist immediately after Set")
	}

	// Wait for TTL to expire
	time.Sleep(80 * time.Millisecond)

	if _, err := cache.Get("u1"); !errors.Is(err, core.ErrCacheNotFound) {
		t.Errorf("Expected ErrCacheNotFound after TTL, got %v", err)
	}
	if cache.Len() != 0 {
		t.Errorf("Expected expired entry to be removed, have %d", cache.Len())
	}
}

func TestInMemoryCacheEvictionWhenFull(t *testing.T) {
	cache := NewInMemoryCache(core.CacheConfig{
		TTL:     5 * time.Minute,
		MaxSize: 3,
	})

	for i := 0; i < 4; i++ {
		cache.Set(fmt.Sprintf("u%d", i), testOrgs("acme"))
	}

	if cache.Len() != 3 {
		t.Errorf("Expected size capped at 3, got %d", cache.Len())
	}
	if cache.Stats().Evictions != 1 {
		t.Errorf("Expected 1 eviction, got %d", cache.Stats().Evictions)
	}
}

func TestInMemoryCacheClearShouldRemoveEverything(t *testing.T) {
	cache := NewInMemoryCache(core.CacheConfig{})

	cache.Set("u1", testOrgs("acme"))
	cache.Set("u2", testOrgs("globex"))

	if err := cache.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if cache.Len() != 0 {
		t.Errorf("Expected empty cache, have %d", cache.Len())
	}
}

func TestInMemoryCacheStatsTrackHitsAndMisses(t *testing.T) {
	cache := NewInMemoryCache(core.CacheConfig{
		TTL:     5 * time.Minute,
		MaxSize: 100,
	})

	cache.Set("u1", testOrgs("acme"))
	cache.Get("u1")
	cache.Get("u1")
	cache.Get("missing")
	cache.Delete("u1")

	stats := cache.Stats()
	if stats.Hits != 2 {
		t.Errorf("Expected 2 hits, got %d", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("Expected 1 miss, got %d", stats.Misses)
	}
	if stats.Sets != 1 {
		t.Errorf("Expected 1 set, got %d", stats.Sets)
	}
	if stats.Deletes != 1 {
		t.Errorf("Expected 1 delete, got %d", stats.Deletes)
	}
}
