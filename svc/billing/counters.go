package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Counters measure the usage the gate compares against plan limits. Every
// call queries the store; monthly counts use calendar months in the
// configured location.
type Counters struct {
	store CountStore
	loc   *time.Location
	now   func() time.Time
}

type CountersOption func(*Counters)

// WithLocation sets the time zone that defines calendar months. Default UTC.
func WithLocation(loc *time.Location) CountersOption {
	return func(c *Counters) {
		if loc != nil {
			c.loc = loc
		}
	}
}

// WithClock replaces time.Now when computing the current month.
func WithClock(now func() time.Time) CountersOption {
	return func(c *Counters) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCounters defaults to UTC months and the wall clock.
func NewCounters(store CountStore, opts ...CountersOption) *Counters {
	c := &Counters{store: store, loc: time.UTC, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ProjectCount is all-time.
func (c *Counters) ProjectCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := c.store.CountProjects(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("count projects: %w", err)
	}
	return n, nil
}

// MonthlyChangelogCount counts changelogs authored since the start of the
// current calendar month.
func (c *Counters) MonthlyChangelogCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := c.store.CountChangelogsSince(ctx, userID, MonthStart(c.now(), c.loc))
	if err != nil {
		return 0, fmt.Errorf("count changelogs: %w", err)
	}
	return n, nil
}

// Count returns the usage figure the gate needs for action.
func (c *Counters) Count(ctx context.Context, userID uuid.UUID, action Action) (int64, error) {
	switch action {
	case ActionCreateProject:
		return c.ProjectCount(ctx, userID)
	case ActionCreateChangelog:
		return c.MonthlyChangelogCount(ctx, userID)
	default:
		return 0, nil
	}
}

// MonthStart is midnight on the first day of t's month in loc.
func MonthStart(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
}
