package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shipfeed/shipfeed/pkg/pg"
	"github.com/shipfeed/shipfeed/svc/billing"
	"github.com/shipfeed/shipfeed/svc/changelog"
)

// Postgres is the production Store.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (s *Postgres) UpsertProfile(ctx context.Context, id uuid.UUID, email string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO profiles (id, email, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email, updated_at = NOW()`,
		id, email)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

// FindByEmail returns the profile most recently seen with email. Several
// identities may share an address, e.g. an account re-created at the
// identity provider.
func (s *Postgres) FindByEmail(ctx context.Context, email string) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.pool.QueryRow(ctx, `
		SELECT id FROM profiles WHERE lower(email) = lower($1)
		ORDER BY updated_at DESC LIMIT 1`, email).Scan(&id)
	if pg.IsNotFoundError(err) {
		return uuid.Nil, billing.ErrUserNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("find profile by email: %w", err)
	}
	return id, nil
}

// Subscriptions

func (s *Postgres) GetByUser(ctx context.Context, userID uuid.UUID) (billing.Subscription, error) {
	var (
		sub  billing.Subscription
		plan string
	)
	err := s.pool.QueryRow(ctx, `
		SELECT user_id, plan, status, customer_id, subscription_id, updated_at
		FROM subscriptions WHERE user_id = $1`, userID).
		Scan(&sub.UserID, &plan, &sub.Status, &sub.CustomerID, &sub.SubscriptionID, &sub.UpdatedAt)
	if pg.IsNotFoundError(err) {
		return billing.Subscription{}, billing.ErrSubscriptionNotFound
	}
	if err != nil {
		return billing.Subscription{}, fmt.Errorf("get subscription: %w", err)
	}
	sub.Plan = billing.Plan(plan)
	return sub, nil
}

func (s *Postgres) UpsertForUser(ctx context.Context, sub billing.Subscription) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO subscriptions (user_id, plan, status, customer_id, subscription_id, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			plan = EXCLUDED.plan,
			status = EXCLUDED.status,
			customer_id = EXCLUDED.customer_id,
			subscription_id = EXCLUDED.subscription_id,
			updated_at = NOW()`,
		sub.UserID, string(sub.Plan), sub.Status, sub.CustomerID, sub.SubscriptionID)
	if err != nil {
		return fmt.Errorf("upsert subscription: %w", err)
	}
	return nil
}

func (s *Postgres) UpdateByExternalID(ctx context.Context, subscriptionID string, plan billing.Plan, status string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE subscriptions SET plan = $2, status = $3, updated_at = NOW()
		WHERE subscription_id = $1`,
		subscriptionID, string(plan), status)
	if err != nil {
		return false, fmt.Errorf("update subscription: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Postgres) UpdateStatusByExternalID(ctx context.Context, subscriptionID, status string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE subscriptions SET status = $2, updated_at = NOW()
		WHERE subscription_id = $1`,
		subscriptionID, status)
	if err != nil {
		return false, fmt.Errorf("update subscription status: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Counters

func (s *Postgres) CountProjects(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM projects WHERE owner_id = $1`, ownerID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count projects: %w", err)
	}
	return n, nil
}

func (s *Postgres) CountChangelogsSince(ctx context.Context, authorID uuid.UUID, since time.Time) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM changelogs WHERE author_id = $1 AND created_at >= $2`,
		authorID, since).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count changelogs: %w", err)
	}
	return n, nil
}

// Projects

const projectColumns = `id, owner_id, name, slug, description, logo_url, created_at`

func scanProject(row pgx.Row) (changelog.Project, error) {
	var p changelog.Project
	err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Slug, &p.Description, &p.LogoURL, &p.CreatedAt)
	return p, err
}

func (s *Postgres) CreateProject(ctx context.Context, p changelog.Project) (changelog.Project, error) {
	created, err := scanProject(s.pool.QueryRow(ctx, `
		INSERT INTO projects (id, owner_id, name, slug, description, logo_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+projectColumns,
		p.ID, p.OwnerID, p.Name, p.Slug, p.Description, p.LogoURL, p.CreatedAt))
	if pg.IsDuplicateKeyError(err) {
		return changelog.Project{}, changelog.ErrSlugTaken
	}
	if err != nil {
		return changelog.Project{}, fmt.Errorf("create project: %w", err)
	}
	return created, nil
}

func (s *Postgres) GetProject(ctx context.Context, id uuid.UUID) (changelog.Project, error) {
	p, err := scanProject(s.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
	if pg.IsNotFoundError(err) {
		return changelog.Project{}, changelog.ErrProjectNotFound
	}
	if err != nil {
		return changelog.Project{}, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

func (s *Postgres) GetProjectBySlug(ctx context.Context, slug string) (changelog.Project, error) {
	p, err := scanProject(s.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE slug = $1`, slug))
	if pg.IsNotFoundError(err) {
		return changelog.Project{}, changelog.ErrProjectNotFound
	}
	if err != nil {
		return changelog.Project{}, fmt.Errorf("get project by slug: %w", err)
	}
	return p, nil
}

func (s *Postgres) ListProjects(ctx context.Context, ownerID uuid.UUID) ([]changelog.ProjectSummary, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT p.id, p.owner_id, p.name, p.slug, p.description, p.logo_url, p.created_at,
			(SELECT COUNT(*) FROM changelogs c WHERE c.project_id = p.id),
			(SELECT COUNT(*) FROM subscribers s WHERE s.project_id = p.id)
		FROM projects p
		WHERE p.owner_id = $1
		ORDER BY p.created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (changelog.ProjectSummary, error) {
		var ps changelog.ProjectSummary
		err := row.Scan(&ps.ID, &ps.OwnerID, &ps.Name, &ps.Slug, &ps.Description, &ps.LogoURL, &ps.CreatedAt,
			&ps.ChangelogCount, &ps.SubscriberCount)
		return ps, err
	})
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return out, nil
}

// Changelogs

const changelogColumns = `id, project_id, author_id, title, version, content, status, published_at, created_at`

func scanChangelog(row pgx.Row) (changelog.Changelog, error) {
	var (
		c      changelog.Changelog
		status string
	)
	err := row.Scan(&c.ID, &c.ProjectID, &c.AuthorID, &c.Title, &c.Version, &c.Content, &status, &c.PublishedAt, &c.CreatedAt)
	c.Status = changelog.Status(status)
	return c, err
}

func (s *Postgres) CreateChangelog(ctx context.Context, c changelog.Changelog) (changelog.Changelog, error) {
	created, err := scanChangelog(s.pool.QueryRow(ctx, `
		INSERT INTO changelogs (id, project_id, author_id, title, version, content, status, published_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+changelogColumns,
		c.ID, c.ProjectID, c.AuthorID, c.Title, c.Version, c.Content, string(c.Status), c.PublishedAt, c.CreatedAt))
	if pg.IsForeignKeyViolationError(err) {
		return changelog.Changelog{}, changelog.ErrProjectNotFound
	}
	if err != nil {
		return changelog.Changelog{}, fmt.Errorf("create changelog: %w", err)
	}
	return created, nil
}

func (s *Postgres) GetChangelog(ctx context.Context, id uuid.UUID) (changelog.Changelog, error) {
	c, err := scanChangelog(s.pool.QueryRow(ctx, `SELECT `+changelogColumns+` FROM changelogs WHERE id = $1`, id))
	if pg.IsNotFoundError(err) {
		return changelog.Changelog{}, changelog.ErrChangelogNotFound
	}
	if err != nil {
		return changelog.Changelog{}, fmt.Errorf("get changelog: %w", err)
	}
	return c, nil
}

func (s *Postgres) ListChangelogs(ctx context.Context, f changelog.ChangelogFilter) ([]changelog.Changelog, error) {
	query := `SELECT c.id, c.project_id, c.author_id, c.title, c.version, c.content, c.status, c.published_at, c.created_at
		FROM changelogs c JOIN projects p ON p.id = c.project_id
		WHERE ($1::uuid IS NULL OR p.owner_id = $1)
			AND ($2::uuid IS NULL OR c.project_id = $2)
			AND (NOT $3 OR c.status = 'published')`
	if f.PublishedOnly {
		query += ` ORDER BY c.published_at DESC NULLS LAST, c.created_at DESC`
	} else {
		query += ` ORDER BY c.created_at DESC`
	}

	rows, err := s.pool.Query(ctx, query, nullableUUID(f.OwnerID), nullableUUID(f.ProjectID), f.PublishedOnly)
	if err != nil {
		return nil, fmt.Errorf("list changelogs: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (changelog.Changelog, error) {
		return scanChangelog(row)
	})
	if err != nil {
		return nil, fmt.Errorf("list changelogs: %w", err)
	}
	return out, nil
}

func (s *Postgres) UpdateChangelog(ctx context.Context, c changelog.Changelog) (changelog.Changelog, error) {
	updated, err := scanChangelog(s.pool.QueryRow(ctx, `
		UPDATE changelogs SET title = $2, version = $3, content = $4, status = $5, published_at = $6
		WHERE id = $1
		RETURNING `+changelogColumns,
		c.ID, c.Title, c.Version, c.Content, string(c.Status), c.PublishedAt))
	if pg.IsNotFoundError(err) {
		return changelog.Changelog{}, changelog.ErrChangelogNotFound
	}
	if err != nil {
		return changelog.Changelog{}, fmt.Errorf("update changelog: %w", err)
	}
	return updated, nil
}

func (s *Postgres) DeleteChangelog(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM changelogs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete changelog: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return changelog.ErrChangelogNotFound
	}
	return nil
}

// Subscribers

const subscriberColumns = `project_id, email, confirmed, created_at`

func scanSubscriber(row pgx.Row) (changelog.Subscriber, error) {
	var sub changelog.Subscriber
	err := row.Scan(&sub.ProjectID, &sub.Email, &sub.Confirmed, &sub.CreatedAt)
	return sub, err
}

func (s *Postgres) UpsertSubscriber(ctx context.Context, sub changelog.Subscriber) (changelog.Subscriber, error) {
	out, err := scanSubscriber(s.pool.QueryRow(ctx, `
		INSERT INTO subscribers (project_id, email, confirmed, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (project_id, email) DO UPDATE SET confirmed = EXCLUDED.confirmed
		RETURNING `+subscriberColumns,
		sub.ProjectID, sub.Email, sub.Confirmed, sub.CreatedAt))
	if pg.IsForeignKeyViolationError(err) {
		return changelog.Subscriber{}, changelog.ErrProjectNotFound
	}
	if err != nil {
		return changelog.Subscriber{}, fmt.Errorf("upsert subscriber: %w", err)
	}
	return out, nil
}

func (s *Postgres) SetSubscriberConfirmed(ctx context.Context, projectID uuid.UUID, email string, confirmed bool) (changelog.Subscriber, error) {
	out, err := scanSubscriber(s.pool.QueryRow(ctx, `
		UPDATE subscribers SET confirmed = $3
		WHERE project_id = $1 AND email = $2
		RETURNING `+subscriberColumns,
		projectID, email, confirmed))
	if pg.IsNotFoundError(err) {
		return changelog.Subscriber{}, changelog.ErrSubscriberNotFound
	}
	if err != nil {
		return changelog.Subscriber{}, fmt.Errorf("confirm subscriber: %w", err)
	}
	return out, nil
}

func (s *Postgres) ListSubscribers(ctx context.Context, projectID uuid.UUID) ([]changelog.Subscriber, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+subscriberColumns+` FROM subscribers
		WHERE project_id = $1
		ORDER BY created_at DESC`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (changelog.Subscriber, error) {
		return scanSubscriber(row)
	})
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	return out, nil
}

func (s *Postgres) DeleteSubscriber(ctx context.Context, projectID uuid.UUID, email string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM subscribers WHERE project_id = $1 AND email = $2`, projectID, email)
	if err != nil {
		return fmt.Errorf("delete subscriber: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return changelog.ErrSubscriberNotFound
	}
	return nil
}

func nullableUUID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
