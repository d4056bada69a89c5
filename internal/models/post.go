// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// DefaultTag is applied when a post's content contains no hashtags.
const DefaultTag = "general"

// TagAll is the feed filter value meaning "no tag restriction".
const TagAll = "all"

// Post represents a feed post. IDs are store-assigned UUID strings and the
// author fields are a denormalized snapshot taken at creation time, not a
// live join against the identity provider.
type Post struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	Title          string    `gorm:"not null" json:"title"`
	Content        string    `gorm:"type:text" json:"content"`
	AuthorID       string    `gorm:"not null;index;size:128" json:"author_id"`
	AuthorName     string    `json:"author_name"`
	AuthorPhotoRef string    `json:"author_photo_ref,omitempty"`
	MediaRef       string    `json:"media_ref,omitempty"`
	Tags           StringSet `gorm:"type:text" json:"tags"`
	IsQuestion     bool      `json:"is_question"`

	// PollOptions is non-nil only for poll posts.
	PollOptions StringSet `gorm:"type:text" json:"poll_options,omitempty"`

	// Likes is the membership map; LikeCount is derived from it inside the
	// same transaction that flips a key. A NULL Likes column marks a legacy
	// row whose counter predates the membership map.
	Likes        IdentitySet `gorm:"type:text" json:"likes"`
	LikeCount    int         `gorm:"not null;default:0" json:"like_count"`
	CommentCount int         `gorm:"not null;default:0" json:"comment_count"`
	ShareCount   int         `gorm:"not null;default:0" json:"share_count"`

	IsFlagged  bool       `gorm:"index" json:"is_flagged"`
	FlagReason string     `json:"flag_reason,omitempty"`
	FlaggedBy  string     `json:"flagged_by,omitempty"`
	FlaggedAt  *time.Time `json:"flagged_at,omitempty"`
	ResolvedBy string     `json:"resolved_by,omitempty"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`

	CreatedAt time.Time `gorm:"index:idx_posts_created_at,sort:desc" json:"created_at"`
}

// Comment represents a comment on a post. A comment never outlives its
// parent post.
type Comment struct {
	ID             string `gorm:"primaryKey;size:36" json:"id"`
	PostID         string `gorm:"not null;index;size:36" json:"post_id"`
	Text           string `gorm:"type:text;not null" json:"text"`
	AuthorID       string `gorm:"not null;size:128" json:"author_id"`
	AuthorName     string `json:"author_name"`
	AuthorPhotoRef string `json:"author_photo_ref,omitempty"`

	// IsVerified is true iff the author held moderator privilege when the
	// comment was created. It drives thread ordering.
	IsVerified bool `json:"is_verified"`

	IsFlagged  bool       `json:"is_flagged"`
	FlagReason string     `json:"flag_reason,omitempty"`
	FlaggedBy  string     `json:"flagged_by,omitempty"`
	FlaggedAt  *time.Time `json:"flagged_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// UserLikes is the secondary index row letting a client answer
// "have I liked post X" without scanning post membership maps. It is
// written by the same transaction that flips the post's likes map.
type UserLikes struct {
	Identity   string      `gorm:"primaryKey;size:128" json:"identity"`
	LikedPosts IdentitySet `gorm:"type:text" json:"liked_posts"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// TableName keeps the legacy collection name.
func (UserLikes) TableName() string { return "user_likes" }

// QuestionStatus values for the pending-questions view.
const (
	QuestionPending  = "pending"
	QuestionAnswered = "answered"
	QuestionRejected = "rejected"
)

// ModerationQuestion is a read-only view row over question posts; it has no
// lifecycle of its own, the post is the single source of truth.
type ModerationQuestion struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	AuthorID  string    `json:"author_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// QuestionStatusOf derives the view status from the post's moderation fields.
func QuestionStatusOf(p *Post) string {
	switch {
	case p.ResolvedAt != nil:
		return QuestionAnswered
	case p.IsFlagged:
		return QuestionRejected
	default:
		return QuestionPending
	}
}
