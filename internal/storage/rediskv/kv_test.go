package rediskv

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func setupTestKV(t *testing.T) (*KV, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	kv, err := New("redis://" + mr.Addr() + "/0")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { kv.Close() })
	return kv, mr
}

func TestGetMissingKey(t *testing.T) {
	kv, _ := setupTestKV(t)

	value, found, err := kv.Get("habit:r1:days")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if found || value != "" {
		t.Errorf("Get() = %q, %v; want not found", value, found)
	}
}

func TestSetAndGet(t *testing.T) {
	kv, mr := setupTestKV(t)

	if err := kv.Set("habit:r1:days", `["2025-01-02"]`); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	value, found, err := kv.Get("habit:r1:days")
	if err != nil || !found || value != `["2025-01-02"]` {
		t.Errorf("Get() = %q, %v, %v", value, found, err)
	}

	// keys are namespaced
	raw, err := mr.Get("cadence:habit:r1:days")
	if err != nil {
		t.Fatalf("raw key missing: %v", err)
	}
	if raw != `["2025-01-02"]` {
		t.Errorf("raw value = %q", raw)
	}
}

func TestServerDown(t *testing.T) {
	kv, mr := setupTestKV(t)
	mr.Close()

	if _, _, err := kv.Get("k"); err == nil {
		t.Error("expected Get error with server down")
	}
	if err := kv.Set("k", "v"); err == nil {
		t.Error("expected Set error with server down")
	}
}

func TestNewInvalidURL(t *testing.T) {
	if _, err := New("not-a-url"); err == nil {
		t.Error("expected error for invalid URL")
	}
}
