package cache

import (
	"testing"
	"time"
)

func TestKey_StableAndNamespaced(t *testing.T) {
	k1 := Key("candidates|policy|owner-1")
	k2 := Key("candidates|policy|owner-1")
	k3 := Key("candidates|policy|owner-2")

	if k1 != k2 {
		t.Error("identical ids must derive identical keys")
	}
	if k1 == k3 {
		t.Error("different ids must derive different keys")
	}
	if len(k1) <= len("appealsmith:v1:") {
		t.Errorf("key %q missing hash payload", k1)
	}
}

func TestMemory_SetGetDelete(t *testing.T) {
	m := NewMemory(time.Minute, time.Minute)

	if _, found := m.Get("missing"); found {
		t.Error("expected miss for unknown key")
	}

	if err := m.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	if val, found := m.Get("k"); !found || string(val) != "v" {
		t.Errorf("expected hit with 'v', got %q found=%v", val, found)
	}

	if err := m.Delete("k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, found := m.Get("k"); found {
		t.Error("expected miss after delete")
	}
}

func TestDisk_RoundTripAndExpiry(t *testing.T) {
	d := NewDisk(t.TempDir(), time.Hour)

	if err := d.Set(Key("a"), []byte("payload"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	if val, found := d.Get(Key("a")); !found || string(val) != "payload" {
		t.Errorf("expected hit with payload, got %q found=%v", val, found)
	}

	// An entry with a TTL in the past must read as a miss and self-clean.
	if err := d.Set(Key("b"), []byte("stale"), -time.Second); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, found := d.Get(Key("b")); found {
		t.Error("expected expired entry to miss")
	}
}

func TestLayered_PromotesDiskHits(t *testing.T) {
	layered := NewLayered(time.Minute, t.TempDir(), time.Hour)

	// Write through both layers, then clear memory only.
	if err := layered.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := layered.memory.Clear(); err != nil {
		t.Fatalf("clear memory: %v", err)
	}

	if val, found := layered.Get("k"); !found || string(val) != "v" {
		t.Fatalf("expected disk hit, got %q found=%v", val, found)
	}
	if _, found := layered.memory.Get("k"); !found {
		t.Error("expected disk hit promoted into memory")
	}
}

func TestLayered_ClearEmptiesBothLayers(t *testing.T) {
	layered := NewLayered(time.Minute, t.TempDir(), time.Hour)

	if err := layered.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := layered.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, found := layered.Get("k"); found {
		t.Error("expected miss after clear")
	}
}
