package models

import (
	"encoding/json"
	"time"
)

// StoryEvent is an outbox row written in the same transaction as the story
// mutation it describes.
type StoryEvent struct {
	ID          string          `db:"id" json:"id"`
	StoryID     int64           `db:"story_id" json:"story_id"`
	Operation   string          `db:"operation" json:"operation"`
	Snapshot    json.RawMessage `db:"snapshot" json:"snapshot,omitempty"`
	Status      string          `db:"status" json:"status"`
	Attempts    int             `db:"attempts" json:"attempts"`
	LastError   string          `db:"last_error" json:"last_error"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	ProcessedAt *time.Time      `db:"processed_at" json:"processed_at"`
}

const (
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
)

const (
	EventStatusPending = "pending"
	EventStatusDone    = "done"
	EventStatusFailed  = "failed"
)
