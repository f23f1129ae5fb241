package goauth

import (
	"testing"

	auth "github.com/goliatone/go-auth"
	"github.com/google/uuid"
)

func TestToActor(t *testing.T) {
	user := &auth.User{
		ID:        uuid.New(),
		Email:     "test@example.com",
		Username:  "tester",
		FirstName: "Test",
		LastName:  "Er",
	}

	result := toActor(user)
	if result == nil {
		t.Fatalf("expected user to be converted")
	}
	if result.ID != user.ID || result.Email != user.Email {
		t.Fatalf("expected id/email to be copied")
	}
	if result.DisplayName != "Test Er" {
		t.Fatalf("expected full name, got %q", result.DisplayName)
	}
}

func TestDisplayNameFallbacks(t *testing.T) {
	user := &auth.User{Email: "test@example.com", Username: "tester"}
	if got := displayName(user); got != "tester" {
		t.Fatalf("expected username fallback, got %q", got)
	}
	user.Username = ""
	if got := displayName(user); got != "test@example.com" {
		t.Fatalf("expected email fallback, got %q", got)
	}
}

func TestToActorNil(t *testing.T) {
	if toActor(nil) != nil {
		t.Fatalf("expected nil passthrough")
	}
}
