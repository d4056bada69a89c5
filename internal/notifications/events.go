// Package notifications provides real-time change-event delivery for the feed.
package notifications

import (
	"time"

	"pawfeed/internal/models"
)

// Change event kinds.
const (
	EventPostCreated    = "post_created"
	EventPostUpdated    = "post_updated"
	EventPostDeleted    = "post_deleted"
	EventCommentAdded   = "comment_added"
	EventCommentUpdated = "comment_updated"
	EventCommentDeleted = "comment_deleted"
)

// ChangeEvent is one pushed update. Consumers merge events by entity id; no
// ordering across entities is guaranteed.
type ChangeEvent struct {
	Kind      string          `json:"kind"`
	PostID    string          `json:"post_id"`
	CommentID string          `json:"comment_id,omitempty"`
	Post      *models.Post    `json:"post,omitempty"`
	Comment   *models.Comment `json:"comment,omitempty"`
	At        time.Time       `json:"at"`
}

// Publisher is the capability services use to announce changes. A nil
// implementation is valid and drops events.
type Publisher interface {
	PublishChange(event ChangeEvent)
}
