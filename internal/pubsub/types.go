package pubsub

import "cloud.google.com/go/pubsub"

type client struct {
	client   *pubsub.Client
	teardown func()
}

// EventType represents the type of event/message sent via pubsub.
type EventType string

const (
	// EventMatchSettled is published after a match has been fully settled.
	EventMatchSettled EventType = "match-settled"
	// EventCleanupChat asks the chat cleanup consumer to remove a match's thread.
	EventCleanupChat EventType = "cleanup-chat"
	// EventCleanupRoster asks the roster cleanup consumer to remove a settled
	// match's participant rows.
	EventCleanupRoster EventType = "cleanup-roster"
	// EventRankUpdated notifies downstream consumers of a rank change.
	EventRankUpdated EventType = "rank-updated"
)
