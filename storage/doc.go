// Package storage persists users, subscriptions, projects, changelogs and
// subscribers.
//
// Postgres is the production store on a pgx pool; its schema ships as
// embedded goose migrations. Memory has the same semantics and backs tests
// and STORAGE_DRIVER=memory.
package storage
