package drafting

import "errors"

var (
	ErrEmptyChanges   = errors.New("drafting: changes are required")
	ErrProviderFailed = errors.New("drafting: provider request failed")
	ErrEmptyResponse  = errors.New("drafting: provider returned no content")
)
