package changelog

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shipfeed/shipfeed/pkg/logger"
	"github.com/shipfeed/shipfeed/pkg/slug"
	"github.com/shipfeed/shipfeed/pkg/validator"
	"github.com/shipfeed/shipfeed/svc/billing"
)

const (
	maxNameLen        = 100
	maxDescriptionLen = 1000
	maxSlugLen        = 48
	maxTitleLen       = 200
	maxVersionLen     = 50
	maxContentLen     = 100_000
)

// Authorizer is satisfied by *billing.Entitlements.
type Authorizer interface {
	Authorize(ctx context.Context, userID uuid.UUID, action billing.Action) (billing.Decision, error)
}

type Service struct {
	store Store
	auth  Authorizer
	log   *slog.Logger
	now   func() time.Time
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(store Store, auth Authorizer, opts ...Option) *Service {
	s := &Service{store: store, auth: auth, log: logger.Noop(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) authorize(ctx context.Context, userID uuid.UUID, action billing.Action) error {
	dec, err := s.auth.Authorize(ctx, userID, action)
	if err != nil {
		return err
	}
	return dec.Err()
}

type CreateProjectInput struct {
	Name        string
	Description string
	Slug        string
	LogoURL     string
}

// CreateProject validates before consulting the gate so a rejected request
// never counts or writes anything. A slug derived from the name gets a
// random suffix when the plain form is taken; an explicit slug does not.
func (s *Service) CreateProject(ctx context.Context, ownerID uuid.UUID, in CreateProjectInput) (Project, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Slug = strings.TrimSpace(in.Slug)

	rules := []validator.Rule{
		validator.Required("name", in.Name),
		validator.MaxLen("name", in.Name, maxNameLen),
		validator.MaxLen("description", in.Description, maxDescriptionLen),
	}
	if in.Slug != "" {
		rules = append(rules, validator.ValidSlug("slug", in.Slug), validator.MaxLen("slug", in.Slug, maxSlugLen))
	}
	if err := validator.Apply(rules...); err != nil {
		return Project{}, err
	}

	if err := s.authorize(ctx, ownerID, billing.ActionCreateProject); err != nil {
		return Project{}, err
	}

	p := Project{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Name:        in.Name,
		Slug:        in.Slug,
		Description: in.Description,
		LogoURL:     in.LogoURL,
		CreatedAt:   s.now().UTC(),
	}
	derived := p.Slug == ""
	if derived {
		p.Slug = slug.Make(in.Name, slug.MaxLength(maxSlugLen))
		if p.Slug == "" {
			p.Slug = slug.Make("project", slug.WithSuffix(6))
		}
	}

	created, err := s.store.CreateProject(ctx, p)
	if errors.Is(err, ErrSlugTaken) && derived {
		p.Slug = slug.Make(in.Name, slug.MaxLength(maxSlugLen), slug.WithSuffix(6))
		created, err = s.store.CreateProject(ctx, p)
	}
	if err != nil {
		return Project{}, err
	}

	s.log.InfoContext(ctx, "project created", logger.ProjectID(created.ID.String()), slog.String("slug", created.Slug))
	return created, nil
}

// ListProjects returns the owner's projects, newest first.
func (s *Service) ListProjects(ctx context.Context, ownerID uuid.UUID) ([]ProjectSummary, error) {
	return s.store.ListProjects(ctx, ownerID)
}

func (s *Service) GetProject(ctx context.Context, ownerID uuid.UUID, projectSlug string) (Project, error) {
	p, err := s.store.GetProjectBySlug(ctx, projectSlug)
	if err != nil {
		return Project{}, err
	}
	if p.OwnerID != ownerID {
		return Project{}, ErrProjectNotFound
	}
	return p, nil
}

func (s *Service) ownedProject(ctx context.Context, ownerID, projectID uuid.UUID) (Project, error) {
	p, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return Project{}, err
	}
	if p.OwnerID != ownerID {
		return Project{}, ErrProjectNotFound
	}
	return p, nil
}

type CreateChangelogInput struct {
	ProjectID uuid.UUID
	Title     string
	Version   string
	Content   string
	Status    Status
}

func (s *Service) CreateChangelog(ctx context.Context, authorID uuid.UUID, in CreateChangelogInput) (Changelog, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Version = strings.TrimSpace(in.Version)
	if in.Status == "" {
		in.Status = StatusDraft
	}

	err := validator.Apply(
		validator.Required("title", in.Title),
		validator.MaxLen("title", in.Title, maxTitleLen),
		validator.MaxLen("version", in.Version, maxVersionLen),
		validator.Required("content", in.Content),
		validator.MaxLen("content", in.Content, maxContentLen),
		validator.OneOf("status", in.Status, StatusDraft, StatusPublished),
		validator.Rule{
			Check: func() bool { return in.ProjectID != uuid.Nil },
			Error: validator.ValidationError{Field: "projectId", Message: "field is required", Key: "validation.required"},
		},
	)
	if err != nil {
		return Changelog{}, err
	}

	if _, err := s.ownedProject(ctx, authorID, in.ProjectID); err != nil {
		return Changelog{}, err
	}
	if err := s.authorize(ctx, authorID, billing.ActionCreateChangelog); err != nil {
		return Changelog{}, err
	}

	now := s.now().UTC()
	c := Changelog{
		ID:        uuid.New(),
		ProjectID: in.ProjectID,
		AuthorID:  authorID,
		Title:     in.Title,
		Version:   in.Version,
		Content:   in.Content,
		Status:    in.Status,
		CreatedAt: now,
	}
	if c.Status == StatusPublished {
		c.PublishedAt = &now
	}
	return s.store.CreateChangelog(ctx, c)
}

// ListChangelogs returns entries across the owner's projects, or within
// one project when projectID is set.
func (s *Service) ListChangelogs(ctx context.Context, ownerID uuid.UUID, projectID *uuid.UUID) ([]Changelog, error) {
	f := ChangelogFilter{OwnerID: ownerID}
	if projectID != nil {
		if _, err := s.ownedProject(ctx, ownerID, *projectID); err != nil {
			return nil, err
		}
		f.ProjectID = *projectID
	}
	return s.store.ListChangelogs(ctx, f)
}

type ChangelogPatch struct {
	Title   *string
	Version *string
	Content *string
	Status  *Status
}

// UpdateChangelog sets published_at the first time an entry is published
// and clears it when the entry goes back to draft.
func (s *Service) UpdateChangelog(ctx context.Context, ownerID, id uuid.UUID, patch ChangelogPatch) (Changelog, error) {
	c, err := s.ownedChangelog(ctx, ownerID, id)
	if err != nil {
		return Changelog{}, err
	}

	if patch.Title != nil {
		c.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Version != nil {
		c.Version = strings.TrimSpace(*patch.Version)
	}
	if patch.Content != nil {
		c.Content = *patch.Content
	}
	if patch.Status != nil {
		c.Status = *patch.Status
	}

	err = validator.Apply(
		validator.Required("title", c.Title),
		validator.MaxLen("title", c.Title, maxTitleLen),
		validator.MaxLen("version", c.Version, maxVersionLen),
		validator.Required("content", c.Content),
		validator.MaxLen("content", c.Content, maxContentLen),
		validator.OneOf("status", c.Status, StatusDraft, StatusPublished),
	)
	if err != nil {
		return Changelog{}, err
	}

	switch c.Status {
	case StatusPublished:
		if c.PublishedAt == nil {
			now := s.now().UTC()
			c.PublishedAt = &now
		}
	case StatusDraft:
		c.PublishedAt = nil
	}
	return s.store.UpdateChangelog(ctx, c)
}

func (s *Service) DeleteChangelog(ctx context.Context, ownerID, id uuid.UUID) error {
	if _, err := s.ownedChangelog(ctx, ownerID, id); err != nil {
		return err
	}
	return s.store.DeleteChangelog(ctx, id)
}

func (s *Service) ownedChangelog(ctx context.Context, ownerID, id uuid.UUID) (Changelog, error) {
	c, err := s.store.GetChangelog(ctx, id)
	if err != nil {
		return Changelog{}, err
	}
	if _, err := s.ownedProject(ctx, ownerID, c.ProjectID); err != nil {
		if errors.Is(err, ErrProjectNotFound) {
			return Changelog{}, ErrChangelogNotFound
		}
		return Changelog{}, err
	}
	return c, nil
}

// PublicPage lists a project's published entries, most recently published first.
func (s *Service) PublicPage(ctx context.Context, projectSlug string) (PublicPage, error) {
	p, err := s.store.GetProjectBySlug(ctx, projectSlug)
	if err != nil {
		return PublicPage{}, err
	}
	entries, err := s.store.ListChangelogs(ctx, ChangelogFilter{ProjectID: p.ID, PublishedOnly: true})
	if err != nil {
		return PublicPage{}, err
	}
	return PublicPage{Project: p, Changelogs: entries}, nil
}

// Subscribe is public and not gated. Re-subscribing an existing address
// confirms it again.
func (s *Service) Subscribe(ctx context.Context, projectID uuid.UUID, email string) (Subscriber, error) {
	email = normalizeEmail(email)
	if err := validator.Apply(validator.ValidEmail("email", email)); err != nil {
		return Subscriber{}, err
	}
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return Subscriber{}, err
	}
	return s.store.UpsertSubscriber(ctx, Subscriber{
		ProjectID: projectID,
		Email:     email,
		Confirmed: true,
		CreatedAt: s.now().UTC(),
	})
}

func (s *Service) SetConfirmed(ctx context.Context, projectID uuid.UUID, email string, confirmed bool) (Subscriber, error) {
	email = normalizeEmail(email)
	if err := validator.Apply(validator.ValidEmail("email", email)); err != nil {
		return Subscriber{}, err
	}
	return s.store.SetSubscriberConfirmed(ctx, projectID, email, confirmed)
}

// ListSubscribers returns a project's subscribers, newest first. Owner only.
func (s *Service) ListSubscribers(ctx context.Context, ownerID, projectID uuid.UUID) ([]Subscriber, error) {
	if _, err := s.ownedProject(ctx, ownerID, projectID); err != nil {
		return nil, err
	}
	return s.store.ListSubscribers(ctx, projectID)
}

// Unsubscribe removes an address. Owner only.
func (s *Service) Unsubscribe(ctx context.Context, ownerID, projectID uuid.UUID, email string) error {
	if _, err := s.ownedProject(ctx, ownerID, projectID); err != nil {
		return err
	}
	return s.store.DeleteSubscriber(ctx, projectID, normalizeEmail(email))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
