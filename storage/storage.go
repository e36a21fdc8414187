package storage

import (
	"context"
	"embed"

	"github.com/google/uuid"

	"github.com/shipfeed/shipfeed/svc/billing"
	"github.com/shipfeed/shipfeed/svc/changelog"
)

// Migrations holds the goose SQL migrations, rooted at MigrationsDir.
//
//go:embed migrations/*.sql
var Migrations embed.FS

const MigrationsDir = "migrations"

// Store is everything the application persists. Both Postgres and Memory
// implement it.
type Store interface {
	billing.SubscriptionStore
	billing.UserStore
	billing.CountStore
	changelog.Store

	// UpsertProfile records an authenticated user so webhook emails can be
	// matched back to them.
	UpsertProfile(ctx context.Context, id uuid.UUID, email string) error
}

var (
	_ Store = (*Postgres)(nil)
	_ Store = (*Memory)(nil)
)
