package changelog

import "errors"

var (
	ErrProjectNotFound    = errors.New("changelog: project not found")
	ErrChangelogNotFound  = errors.New("changelog: entry not found")
	ErrSubscriberNotFound = errors.New("changelog: subscriber not found")
	ErrSlugTaken          = errors.New("changelog: project slug already taken")
)
