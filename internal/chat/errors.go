package chat

import "errors"

var (
	ErrRateLimited = errors.New("You have exceeded your maximum number of messages for the day! Please try again later.")
	ErrForbidden   = errors.New("Forbidden")
	ErrNotFound    = errors.New("Not found")
	ErrNoStreams   = errors.New("No streams found")
)
