package service

import "errors"

var (
	ErrStoryNotFound        = errors.New("story not found")
	ErrPlatformNotFound     = errors.New("platform not found")
	ErrRestaurantNotFound   = errors.New("restaurant not found")
	ErrInvalidStory         = errors.New("invalid story")
	ErrInvalidPostPositions = errors.New("post positions must be dense, unique and start at zero")
	ErrStoryHasNoPosts      = errors.New("story has no posts")
	ErrMissingPublishTime   = errors.New("story has no publish time")
	ErrUnknownOperation     = errors.New("unknown story operation")
	ErrPartialRetraction    = errors.New("retraction partially failed")
	ErrInvalidCredentials   = errors.New("invalid platform credentials")

	// ErrMediaNotFound means the platform no longer has the media, usually
	// because an earlier retraction already deleted it.
	ErrMediaNotFound = errors.New("media not found on platform")

	// ErrEventNotHandled means the mutation was committed but its status
	// handling failed. The outbox relay retries it.
	ErrEventNotHandled = errors.New("story saved but event handling failed")
)
