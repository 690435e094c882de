package memory

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/yndnr/sessionlab-go/internal/core/domain"
)

func TestUserStore(t *testing.T) {
	seed := map[string]string{"alice": "password123", "bob": "qwerty456"}
	store := NewUserStore(seed)
	ctx := context.Background()

	secret, err := store.Secret(ctx, "alice")
	if err != nil || secret != "password123" {
		t.Fatalf("Secret(alice) = %q, %v", secret, err)
	}
	if _, err := store.Secret(ctx, "mallory"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("Secret(mallory) error = %v, want ErrUserNotFound", err)
	}

	// The seed map is copied.
	seed["alice"] = "changed"
	if secret, _ := store.Secret(ctx, "alice"); secret != "password123" {
		t.Error("store shares the caller's map")
	}

	if got := store.Usernames(); !reflect.DeepEqual(got, []string{"alice", "bob"}) {
		t.Errorf("Usernames() = %v", got)
	}
}

func TestUserStore_Replace(t *testing.T) {
	store := NewUserStore(map[string]string{"alice": "password123"})
	ctx := context.Background()

	if err := store.Replace(ctx, map[string]string{"carol": "hunter2"}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if _, err := store.Secret(ctx, "alice"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Error("Replace should drop users missing from the new table")
	}
	if secret, _ := store.Secret(ctx, "carol"); secret != "hunter2" {
		t.Errorf("Secret(carol) = %q", secret)
	}
}
