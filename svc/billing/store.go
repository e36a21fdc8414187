package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Subscription is the one billing row per user.
type Subscription struct {
	UserID         uuid.UUID
	Plan           Plan
	Status         string
	CustomerID     string
	SubscriptionID string
	UpdatedAt      time.Time
}

// SubscriptionStore persists subscriptions. Get methods return
// ErrSubscriptionNotFound on a miss. Update methods report whether a row
// matched; a miss is not an error.
type SubscriptionStore interface {
	GetByUser(ctx context.Context, userID uuid.UUID) (Subscription, error)
	UpsertForUser(ctx context.Context, sub Subscription) error
	UpdateByExternalID(ctx context.Context, subscriptionID string, plan Plan, status string) (bool, error)
	UpdateStatusByExternalID(ctx context.Context, subscriptionID, status string) (bool, error)
}

// UserStore finds users by email, case-insensitively. Returns ErrUserNotFound on a miss.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (uuid.UUID, error)
}

// CountStore backs the resource counters. Counts are never cached.
type CountStore interface {
	CountProjects(ctx context.Context, ownerID uuid.UUID) (int64, error)
	CountChangelogsSince(ctx context.Context, authorID uuid.UUID, since time.Time) (int64, error)
}
