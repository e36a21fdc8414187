package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipfeed/shipfeed/storage"
	"github.com/shipfeed/shipfeed/svc/billing"
	"github.com/shipfeed/shipfeed/svc/changelog"
)

func newProject(owner uuid.UUID, slug string, created time.Time) changelog.Project {
	return changelog.Project{ID: uuid.New(), OwnerID: owner, Name: slug, Slug: slug, CreatedAt: created}
}

func TestMemory_Profiles(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := storage.NewMemory()
	id := uuid.New()

	require.NoError(t, m.UpsertProfile(ctx, id, "Ada@Example.com"))

	got, err := m.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = m.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, billing.ErrUserNotFound)
}

func TestMemory_ProfilesSharingEmail(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := storage.NewMemory()
	original, recreated := uuid.New(), uuid.New()

	require.NoError(t, m.UpsertProfile(ctx, original, "ada@example.com"))
	require.NoError(t, m.UpsertProfile(ctx, recreated, "ada@example.com"))

	got, err := m.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, recreated, got)

	// seeing the first identity again makes it the current owner of the address
	require.NoError(t, m.UpsertProfile(ctx, original, "ADA@example.com"))
	got, err = m.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, original, got)

	// moving to another address releases the old one
	require.NoError(t, m.UpsertProfile(ctx, original, "ada@new.example.com"))
	got, err = m.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, recreated, got)
}

func TestMemory_Subscriptions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := storage.NewMemory()
	user := uuid.New()

	_, err := m.GetByUser(ctx, user)
	require.ErrorIs(t, err, billing.ErrSubscriptionNotFound)

	require.NoError(t, m.UpsertForUser(ctx, billing.Subscription{
		UserID: user, Plan: billing.PlanPro, Status: billing.StatusActive,
		CustomerID: "cus_1", SubscriptionID: "sub_1",
	}))
	require.NoError(t, m.UpsertForUser(ctx, billing.Subscription{
		UserID: user, Plan: billing.PlanPro, Status: billing.StatusActive,
		CustomerID: "cus_1", SubscriptionID: "sub_1",
	}))

	sub, err := m.GetByUser(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, billing.PlanPro, sub.Plan)
	assert.False(t, sub.UpdatedAt.IsZero())

	ok, err := m.UpdateStatusByExternalID(ctx, "sub_1", billing.StatusPastDue)
	require.NoError(t, err)
	assert.True(t, ok)

	sub, _ = m.GetByUser(ctx, user)
	assert.Equal(t, billing.PlanPro, sub.Plan)
	assert.Equal(t, billing.StatusPastDue, sub.Status)

	ok, err = m.UpdateByExternalID(ctx, "sub_1", billing.PlanFree, billing.StatusCanceled)
	require.NoError(t, err)
	assert.True(t, ok)

	sub, _ = m.GetByUser(ctx, user)
	assert.Equal(t, billing.PlanFree, sub.Plan)

	ok, err = m.UpdateByExternalID(ctx, "sub_unknown", billing.PlanPro, billing.StatusActive)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = m.UpdateStatusByExternalID(ctx, "", billing.StatusActive)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemory_Counts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := storage.NewMemory()
	owner, other := uuid.New(), uuid.New()
	monthStart := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	p, err := m.CreateProject(ctx, newProject(owner, "one", monthStart))
	require.NoError(t, err)
	_, err = m.CreateProject(ctx, newProject(other, "two", monthStart))
	require.NoError(t, err)

	for _, at := range []time.Time{
		monthStart.Add(-time.Second),
		monthStart,
		monthStart.Add(48 * time.Hour),
	} {
		_, err := m.CreateChangelog(ctx, changelog.Changelog{
			ID: uuid.New(), ProjectID: p.ID, AuthorID: owner, Title: "t", Content: "c",
			Status: changelog.StatusDraft, CreatedAt: at,
		})
		require.NoError(t, err)
	}

	n, err := m.CountProjects(ctx, owner)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = m.CountChangelogsSince(ctx, owner, monthStart)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	n, err = m.CountChangelogsSince(ctx, other, monthStart)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMemory_Projects(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := storage.NewMemory()
	owner := uuid.New()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	first, err := m.CreateProject(ctx, newProject(owner, "alpha", base))
	require.NoError(t, err)
	second, err := m.CreateProject(ctx, newProject(owner, "beta", base.Add(time.Hour)))
	require.NoError(t, err)

	_, err = m.CreateProject(ctx, newProject(uuid.New(), "alpha", base))
	assert.ErrorIs(t, err, changelog.ErrSlugTaken)

	got, err := m.GetProjectBySlug(ctx, "beta")
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)

	_, err = m.GetProject(ctx, uuid.New())
	assert.ErrorIs(t, err, changelog.ErrProjectNotFound)

	_, err = m.UpsertSubscriber(ctx, changelog.Subscriber{ProjectID: first.ID, Email: "a@example.com", Confirmed: true})
	require.NoError(t, err)

	list, err := m.ListProjects(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
	assert.EqualValues(t, 1, list[1].SubscriberCount)
}

func TestMemory_ListChangelogs(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := storage.NewMemory()
	owner := uuid.New()
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	p, err := m.CreateProject(ctx, newProject(owner, "app", base))
	require.NoError(t, err)

	published := func(at time.Time) *time.Time { return &at }

	older := changelog.Changelog{
		ID: uuid.New(), ProjectID: p.ID, AuthorID: owner, Title: "older", Content: "x",
		Status: changelog.StatusPublished, CreatedAt: base.Add(2 * time.Hour), PublishedAt: published(base.Add(2 * time.Hour)),
	}
	newer := changelog.Changelog{
		ID: uuid.New(), ProjectID: p.ID, AuthorID: owner, Title: "newer", Content: "x",
		Status: changelog.StatusPublished, CreatedAt: base.Add(time.Hour), PublishedAt: published(base.Add(5 * time.Hour)),
	}
	draft := changelog.Changelog{
		ID: uuid.New(), ProjectID: p.ID, AuthorID: owner, Title: "draft", Content: "x",
		Status: changelog.StatusDraft, CreatedAt: base.Add(3 * time.Hour),
	}
	for _, c := range []changelog.Changelog{older, newer, draft} {
		_, err := m.CreateChangelog(ctx, c)
		require.NoError(t, err)
	}

	public, err := m.ListChangelogs(ctx, changelog.ChangelogFilter{ProjectID: p.ID, PublishedOnly: true})
	require.NoError(t, err)
	require.Len(t, public, 2)
	assert.Equal(t, "newer", public[0].Title)
	assert.Equal(t, "older", public[1].Title)

	all, err := m.ListChangelogs(ctx, changelog.ChangelogFilter{OwnerID: owner})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "draft", all[0].Title)

	none, err := m.ListChangelogs(ctx, changelog.ChangelogFilter{OwnerID: uuid.New()})
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = m.CreateChangelog(ctx, changelog.Changelog{ID: uuid.New(), ProjectID: uuid.New()})
	assert.ErrorIs(t, err, changelog.ErrProjectNotFound)

	require.NoError(t, m.DeleteChangelog(ctx, draft.ID))
	assert.ErrorIs(t, m.DeleteChangelog(ctx, draft.ID), changelog.ErrChangelogNotFound)
}

func TestMemory_Subscribers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := storage.NewMemory()
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	p, err := m.CreateProject(ctx, newProject(uuid.New(), "app", base))
	require.NoError(t, err)

	_, err = m.UpsertSubscriber(ctx, changelog.Subscriber{ProjectID: p.ID, Email: "a@example.com", CreatedAt: base})
	require.NoError(t, err)
	_, err = m.UpsertSubscriber(ctx, changelog.Subscriber{ProjectID: p.ID, Email: "b@example.com", CreatedAt: base.Add(time.Hour)})
	require.NoError(t, err)

	again, err := m.UpsertSubscriber(ctx, changelog.Subscriber{ProjectID: p.ID, Email: "a@example.com", Confirmed: true, CreatedAt: base.Add(2 * time.Hour)})
	require.NoError(t, err)
	assert.True(t, again.Confirmed)
	assert.Equal(t, base, again.CreatedAt)

	list, err := m.ListSubscribers(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b@example.com", list[0].Email)

	sub, err := m.SetSubscriberConfirmed(ctx, p.ID, "b@example.com", true)
	require.NoError(t, err)
	assert.True(t, sub.Confirmed)

	_, err = m.SetSubscriberConfirmed(ctx, p.ID, "missing@example.com", true)
	assert.ErrorIs(t, err, changelog.ErrSubscriberNotFound)

	require.NoError(t, m.DeleteSubscriber(ctx, p.ID, "a@example.com"))
	assert.ErrorIs(t, m.DeleteSubscriber(ctx, p.ID, "a@example.com"), changelog.ErrSubscriberNotFound)
}
