// Package goauth bridges go-auth user repositories into the actor directory
// contract the authorization gate consumes.
package goauth

import (
	"context"
	"strings"

	"github.com/croysdar/clutter-map-sub000/pkg/types"
	auth "github.com/goliatone/go-auth"
	"github.com/google/uuid"
)

// ActorDirectory wraps a go-auth Users repository so resolved identities can
// be attributed on recorded events without a second user store.
type ActorDirectory struct {
	repo auth.Users
}

// NewActorDirectory builds an ActorDirectory around the given repository.
func NewActorDirectory(repo auth.Users) *ActorDirectory {
	return &ActorDirectory{repo: repo}
}

var _ types.ActorDirectory = (*ActorDirectory)(nil)

// GetActor loads a user by UUID and projects it onto the audit actor model.
func (d *ActorDirectory) GetActor(ctx context.Context, id uuid.UUID) (*types.Actor, error) {
	record, err := d.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, err
	}
	return toActor(record), nil
}

func toActor(user *auth.User) *types.Actor {
	if user == nil {
		return nil
	}
	return &types.Actor{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: displayName(user),
	}
}

func displayName(user *auth.User) string {
	name := strings.TrimSpace(strings.TrimSpace(user.FirstName) + " " + strings.TrimSpace(user.LastName))
	if name != "" {
		return name
	}
	if user.Username != "" {
		return user.Username
	}
	return user.Email
}
