// Package slug builds URL-safe identifiers for public changelog pages.
package slug
