package changelog

import (
	"context"

	"github.com/google/uuid"
)

// ChangelogFilter scopes a listing. OwnerID limits results to projects the
// owner holds; PublishedOnly switches ordering to published_at desc.
type ChangelogFilter struct {
	OwnerID       uuid.UUID
	ProjectID     uuid.UUID
	PublishedOnly bool
}

// Store persists the changelog domain. Lookups return the package's
// not-found sentinels on a miss; CreateProject returns ErrSlugTaken on a
// slug conflict.
type Store interface {
	CreateProject(ctx context.Context, p Project) (Project, error)
	GetProject(ctx context.Context, id uuid.UUID) (Project, error)
	GetProjectBySlug(ctx context.Context, slug string) (Project, error)
	ListProjects(ctx context.Context, ownerID uuid.UUID) ([]ProjectSummary, error)

	CreateChangelog(ctx context.Context, c Changelog) (Changelog, error)
	GetChangelog(ctx context.Context, id uuid.UUID) (Changelog, error)
	ListChangelogs(ctx context.Context, f ChangelogFilter) ([]Changelog, error)
	UpdateChangelog(ctx context.Context, c Changelog) (Changelog, error)
	DeleteChangelog(ctx context.Context, id uuid.UUID) error

	UpsertSubscriber(ctx context.Context, s Subscriber) (Subscriber, error)
	SetSubscriberConfirmed(ctx context.Context, projectID uuid.UUID, email string, confirmed bool) (Subscriber, error)
	ListSubscribers(ctx context.Context, projectID uuid.UUID) ([]Subscriber, error)
	DeleteSubscriber(ctx context.Context, projectID uuid.UUID, email string) error
}
