package storage

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shipfeed/shipfeed/svc/billing"
	"github.com/shipfeed/shipfeed/svc/changelog"
)

type profile struct {
	email string
	seq   uint64
}

type subscriberKey struct {
	projectID uuid.UUID
	email     string
}

// Memory is an in-process Store. It is safe for concurrent use and loses
// everything on restart.
type Memory struct {
	mu            sync.RWMutex
	now           func() time.Time
	profiles      map[uuid.UUID]profile
	profileSeq    uint64
	subscriptions map[uuid.UUID]billing.Subscription
	projects      map[uuid.UUID]changelog.Project
	changelogs    map[uuid.UUID]changelog.Changelog
	subscribers   map[subscriberKey]changelog.Subscriber
}

func NewMemory() *Memory {
	return &Memory{
		now:           time.Now,
		profiles:      make(map[uuid.UUID]profile),
		subscriptions: make(map[uuid.UUID]billing.Subscription),
		projects:      make(map[uuid.UUID]changelog.Project),
		changelogs:    make(map[uuid.UUID]changelog.Changelog),
		subscribers:   make(map[subscriberKey]changelog.Subscriber),
	}
}

func (m *Memory) UpsertProfile(_ context.Context, id uuid.UUID, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profileSeq++
	m.profiles[id] = profile{email: email, seq: m.profileSeq}
	return nil
}

// FindByEmail returns the most recently upserted profile with email.
func (m *Memory) FindByEmail(_ context.Context, email string) (uuid.UUID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var (
		found uuid.UUID
		best  uint64
	)
	for id, p := range m.profiles {
		if strings.EqualFold(p.email, email) && p.seq > best {
			found, best = id, p.seq
		}
	}
	if best == 0 {
		return uuid.Nil, billing.ErrUserNotFound
	}
	return found, nil
}

func (m *Memory) GetByUser(_ context.Context, userID uuid.UUID) (billing.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sub, ok := m.subscriptions[userID]
	if !ok {
		return billing.Subscription{}, billing.ErrSubscriptionNotFound
	}
	return sub, nil
}

func (m *Memory) UpsertForUser(_ context.Context, sub billing.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub.UpdatedAt = m.now().UTC()
	m.subscriptions[sub.UserID] = sub
	return nil
}

func (m *Memory) UpdateByExternalID(_ context.Context, subscriptionID string, plan billing.Plan, status string) (bool, error) {
	return m.updateByExternalID(subscriptionID, func(sub *billing.Subscription) {
		sub.Plan = plan
		sub.Status = status
	}), nil
}

func (m *Memory) UpdateStatusByExternalID(_ context.Context, subscriptionID, status string) (bool, error) {
	return m.updateByExternalID(subscriptionID, func(sub *billing.Subscription) {
		sub.Status = status
	}), nil
}

func (m *Memory) updateByExternalID(subscriptionID string, apply func(*billing.Subscription)) bool {
	if subscriptionID == "" {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	matched := false
	for id, sub := range m.subscriptions {
		if sub.SubscriptionID != subscriptionID {
			continue
		}
		apply(&sub)
		sub.UpdatedAt = m.now().UTC()
		m.subscriptions[id] = sub
		matched = true
	}
	return matched
}

func (m *Memory) CountProjects(_ context.Context, ownerID uuid.UUID) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, p := range m.projects {
		if p.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}

func (m *Memory) CountChangelogsSince(_ context.Context, authorID uuid.UUID, since time.Time) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, c := range m.changelogs {
		if c.AuthorID == authorID && !c.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (m *Memory) CreateProject(_ context.Context, p changelog.Project) (changelog.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.projects {
		if existing.Slug == p.Slug {
			return changelog.Project{}, changelog.ErrSlugTaken
		}
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = m.now().UTC()
	}
	m.projects[p.ID] = p
	return p, nil
}

func (m *Memory) GetProject(_ context.Context, id uuid.UUID) (changelog.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.projects[id]
	if !ok {
		return changelog.Project{}, changelog.ErrProjectNotFound
	}
	return p, nil
}

func (m *Memory) GetProjectBySlug(_ context.Context, slug string) (changelog.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.projects {
		if p.Slug == slug {
			return p, nil
		}
	}
	return changelog.Project{}, changelog.ErrProjectNotFound
}

func (m *Memory) ListProjects(_ context.Context, ownerID uuid.UUID) ([]changelog.ProjectSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []changelog.ProjectSummary{}
	for _, p := range m.projects {
		if p.OwnerID != ownerID {
			continue
		}
		ps := changelog.ProjectSummary{Project: p}
		for _, c := range m.changelogs {
			if c.ProjectID == p.ID {
				ps.ChangelogCount++
			}
		}
		for k := range m.subscribers {
			if k.projectID == p.ID {
				ps.SubscriberCount++
			}
		}
		out = append(out, ps)
	}
	slices.SortFunc(out, func(a, b changelog.ProjectSummary) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

func (m *Memory) CreateChangelog(_ context.Context, c changelog.Changelog) (changelog.Changelog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[c.ProjectID]; !ok {
		return changelog.Changelog{}, changelog.ErrProjectNotFound
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = m.now().UTC()
	}
	m.changelogs[c.ID] = c
	return c, nil
}

func (m *Memory) GetChangelog(_ context.Context, id uuid.UUID) (changelog.Changelog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.changelogs[id]
	if !ok {
		return changelog.Changelog{}, changelog.ErrChangelogNotFound
	}
	return c, nil
}

func (m *Memory) ListChangelogs(_ context.Context, f changelog.ChangelogFilter) ([]changelog.Changelog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []changelog.Changelog{}
	for _, c := range m.changelogs {
		if f.ProjectID != uuid.Nil && c.ProjectID != f.ProjectID {
			continue
		}
		if f.OwnerID != uuid.Nil && m.projects[c.ProjectID].OwnerID != f.OwnerID {
			continue
		}
		if f.PublishedOnly && c.Status != changelog.StatusPublished {
			continue
		}
		out = append(out, c)
	}
	if f.PublishedOnly {
		slices.SortFunc(out, func(a, b changelog.Changelog) int {
			return cmp.Or(comparePublished(b, a), b.CreatedAt.Compare(a.CreatedAt))
		})
	} else {
		slices.SortFunc(out, func(a, b changelog.Changelog) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	}
	return out, nil
}

// comparePublished orders unpublished entries before published ones.
func comparePublished(a, b changelog.Changelog) int {
	switch {
	case a.PublishedAt == nil && b.PublishedAt == nil:
		return 0
	case a.PublishedAt == nil:
		return -1
	case b.PublishedAt == nil:
		return 1
	}
	return a.PublishedAt.Compare(*b.PublishedAt)
}

func (m *Memory) UpdateChangelog(_ context.Context, c changelog.Changelog) (changelog.Changelog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.changelogs[c.ID]
	if !ok {
		return changelog.Changelog{}, changelog.ErrChangelogNotFound
	}
	existing.Title = c.Title
	existing.Version = c.Version
	existing.Content = c.Content
	existing.Status = c.Status
	existing.PublishedAt = c.PublishedAt
	m.changelogs[c.ID] = existing
	return existing, nil
}

func (m *Memory) DeleteChangelog(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.changelogs[id]; !ok {
		return changelog.ErrChangelogNotFound
	}
	delete(m.changelogs, id)
	return nil
}

func (m *Memory) UpsertSubscriber(_ context.Context, sub changelog.Subscriber) (changelog.Subscriber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[sub.ProjectID]; !ok {
		return changelog.Subscriber{}, changelog.ErrProjectNotFound
	}
	key := subscriberKey{projectID: sub.ProjectID, email: sub.Email}
	if existing, ok := m.subscribers[key]; ok {
		existing.Confirmed = sub.Confirmed
		m.subscribers[key] = existing
		return existing, nil
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = m.now().UTC()
	}
	m.subscribers[key] = sub
	return sub, nil
}

func (m *Memory) SetSubscriberConfirmed(_ context.Context, projectID uuid.UUID, email string, confirmed bool) (changelog.Subscriber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := subscriberKey{projectID: projectID, email: email}
	sub, ok := m.subscribers[key]
	if !ok {
		return changelog.Subscriber{}, changelog.ErrSubscriberNotFound
	}
	sub.Confirmed = confirmed
	m.subscribers[key] = sub
	return sub, nil
}

func (m *Memory) ListSubscribers(_ context.Context, projectID uuid.UUID) ([]changelog.Subscriber, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []changelog.Subscriber{}
	for k, sub := range m.subscribers {
		if k.projectID == projectID {
			out = append(out, sub)
		}
	}
	slices.SortFunc(out, func(a, b changelog.Subscriber) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), strings.Compare(a.Email, b.Email))
	})
	return out, nil
}

func (m *Memory) DeleteSubscriber(_ context.Context, projectID uuid.UUID, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := subscriberKey{projectID: projectID, email: email}
	if _, ok := m.subscribers[key]; !ok {
		return changelog.ErrSubscriberNotFound
	}
	delete(m.subscribers, key)
	return nil
}
