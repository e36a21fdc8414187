package changelog

import (
	"time"

	"github.com/google/uuid"
)

type Project struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"ownerId"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	LogoURL     string    `json:"logoUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ProjectSummary is a project as listed on the dashboard.
type ProjectSummary struct {
	Project
	ChangelogCount  int64 `json:"changelogCount"`
	SubscriberCount int64 `json:"subscriberCount"`
}

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

type Changelog struct {
	ID          uuid.UUID  `json:"id"`
	ProjectID   uuid.UUID  `json:"projectId"`
	AuthorID    uuid.UUID  `json:"authorId"`
	Title       string     `json:"title"`
	Version     string     `json:"version"`
	Content     string     `json:"content"`
	Status      Status     `json:"status"`
	PublishedAt *time.Time `json:"publishedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type Subscriber struct {
	ProjectID uuid.UUID `json:"projectId"`
	Email     string    `json:"email"`
	Confirmed bool      `json:"confirmed"`
	CreatedAt time.Time `json:"createdAt"`
}

// PublicPage is what anonymous visitors see at /{slug}.
type PublicPage struct {
	Project    Project     `json:"project"`
	Changelogs []Changelog `json:"changelogs"`
}
