package keyring

import (
	"errors"
	"testing"

	gokeyring "github.com/zalando/go-keyring"
)

func TestSetAndGet(t *testing.T) {
	gokeyring.MockInit()

	connStr := "postgres://cadence@localhost:5432/cadence?sslmode=disable"
	if err := Set(AccountDatabase, connStr); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	redisURL := "redis://:secret@localhost:6379/0"
	if err := Set(AccountRedis, redisURL); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	got, err := Get(AccountDatabase)
	if err != nil || got != connStr {
		t.Errorf("Get(database) = %q, %v; want %q", got, err, connStr)
	}
	got, err = Get(AccountRedis)
	if err != nil || got != redisURL {
		t.Errorf("Get(redis) = %q, %v; want %q", got, err, redisURL)
	}
}

func TestSetEmpty(t *testing.T) {
	gokeyring.MockInit()

	if err := Set(AccountDatabase, ""); err == nil {
		t.Error("Set with empty value should return an error")
	}
}

func TestGetNotFound(t *testing.T) {
	gokeyring.MockInit()

	if _, err := Get(AccountRedis); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want %v", err, ErrNotFound)
	}
	if got := Lookup(AccountRedis); got != "" {
		t.Errorf("Lookup() = %q, want empty", got)
	}
}

func TestDelete(t *testing.T) {
	gokeyring.MockInit()

	if err := Set(AccountDatabase, "host=localhost user=cadence"); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if err := Delete(AccountDatabase); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := Get(AccountDatabase); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after Delete error = %v, want %v", err, ErrNotFound)
	}
	if err := Delete(AccountDatabase); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want %v", err, ErrNotFound)
	}
}

func TestKeyringUnavailable(t *testing.T) {
	gokeyring.MockInitWithError(errors.New("no dbus session"))
	t.Cleanup(gokeyring.MockInit)

	if _, err := Get(AccountDatabase); !errors.Is(err, ErrKeyringUnavailable) {
		t.Errorf("Get() error = %v, want %v", err, ErrKeyringUnavailable)
	}
	if IsAvailable() {
		t.Error("IsAvailable() = true with failing keyring")
	}
}

func TestParseAccount(t *testing.T) {
	tests := []struct {
		name    string
		want    Account
		wantErr bool
	}{
		{"database", AccountDatabase, false},
		{"db", AccountDatabase, false},
		{"redis", AccountRedis, false},
		{"smtp", "", true},
	}
	for _, tt := range tests {
		got, err := ParseAccount(tt.name)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseAccount(%q) = %q, %v", tt.name, got, err)
		}
	}
}
