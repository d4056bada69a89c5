package service

import (
	"context"
	"time"

	"pawfeed/internal/identity"
	"pawfeed/internal/models"
	"pawfeed/internal/notifications"
	"pawfeed/internal/observability"
	"pawfeed/internal/repository"
)

// ModerationService drives the flag / resolve / delete state machine for
// posts and comments: Clean -> Flagged -> {Resolved, Deleted}. Illegal
// transitions fail without any state change.
type ModerationService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	provider    identity.Provider
	notifier    notifications.Publisher
}

// NewModerationService returns a new ModerationService.
func NewModerationService(
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	provider identity.Provider,
	notifier notifications.Publisher,
) *ModerationService {
	return &ModerationService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		provider:    provider,
		notifier:    notifier,
	}
}

// FlagPost marks a post for review. Re-flagging an already flagged post
// overwrites the reason and reporter; it is a resubmission, not an error.
func (s *ModerationService) FlagPost(ctx context.Context, postID, reason string, actor identity.Identity) (*models.Post, error) {
	if actor.ID == "" {
		return nil, models.NewPermissionError("sign in to report content")
	}
	if reason == "" {
		return nil, models.NewValidationError("A flag reason is required")
	}

	post, err := s.postRepo.MutateInTx(ctx, postID, func(p *models.Post) error {
		now := time.Now().UTC()
		p.IsFlagged = true
		p.FlagReason = reason
		p.FlaggedBy = actor.ID
		p.FlaggedAt = &now
		p.ResolvedBy = ""
		p.ResolvedAt = nil
		return nil
	})
	if err != nil {
		return nil, err
	}
	observability.ModerationTransitions.WithLabelValues("flag", "post").Inc()
	s.publishPost(notifications.EventPostUpdated, post)
	return post, nil
}

// ResolvePost clears a post's flag. Only a privileged identity may resolve,
// and only a flagged post can be resolved; the document persists.
func (s *ModerationService) ResolvePost(ctx context.Context, postID string, actor identity.Identity) (*models.Post, error) {
	if !s.provider.IsPrivileged(ctx, actor) {
		return nil, models.NewPermissionError("only moderators can resolve flags")
	}

	post, err := s.postRepo.MutateInTx(ctx, postID, func(p *models.Post) error {
		if !p.IsFlagged {
			return models.NewPermissionError("cannot resolve content that is not flagged")
		}
		now := time.Now().UTC()
		p.IsFlagged = false
		p.FlagReason = ""
		p.FlaggedBy = ""
		p.FlaggedAt = nil
		p.ResolvedBy = actor.ID
		p.ResolvedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	observability.ModerationTransitions.WithLabelValues("resolve", "post").Inc()
	s.publishPost(notifications.EventPostUpdated, post)
	return post, nil
}

// DeletePost removes a post and, transactionally, all of its comments.
// Allowed for a privileged identity or the post's own author, from any
// moderation state.
func (s *ModerationService) DeletePost(ctx context.Context, postID string, actor identity.Identity) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != actor.ID && !s.provider.IsPrivileged(ctx, actor) {
		return models.NewPermissionError("only moderators or the author can delete this post")
	}

	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return err
	}
	observability.ModerationTransitions.WithLabelValues("delete", "post").Inc()
	if s.notifier != nil {
		s.notifier.PublishChange(notifications.ChangeEvent{
			Kind:   notifications.EventPostDeleted,
			PostID: postID,
			At:     time.Now().UTC(),
		})
	}
	return nil
}

// FlagComment marks a comment for review with the same resubmission
// semantics as FlagPost.
func (s *ModerationService) FlagComment(ctx context.Context, commentID, reason string, actor identity.Identity) (*models.Comment, error) {
	if actor.ID == "" {
		return nil, models.NewPermissionError("sign in to report content")
	}
	if reason == "" {
		return nil, models.NewValidationError("A flag reason is required")
	}

	comment, err := s.commentRepo.MutateInTx(ctx, commentID, func(c *models.Comment) error {
		now := time.Now().UTC()
		c.IsFlagged = true
		c.FlagReason = reason
		c.FlaggedBy = actor.ID
		c.FlaggedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	observability.ModerationTransitions.WithLabelValues("flag", "comment").Inc()
	s.publishComment(notifications.EventCommentUpdated, comment)
	return comment, nil
}

// ResolveComment clears a comment's flag; privileged identities only.
func (s *ModerationService) ResolveComment(ctx context.Context, commentID string, actor identity.Identity) (*models.Comment, error) {
	if !s.provider.IsPrivileged(ctx, actor) {
		return nil, models.NewPermissionError("only moderators can resolve flags")
	}

	comment, err := s.commentRepo.MutateInTx(ctx, commentID, func(c *models.Comment) error {
		if !c.IsFlagged {
			return models.NewPermissionError("cannot resolve content that is not flagged")
		}
		c.IsFlagged = false
		c.FlagReason = ""
		c.FlaggedBy = ""
		c.FlaggedAt = nil
		return nil
	})
	if err != nil {
		return nil, err
	}
	observability.ModerationTransitions.WithLabelValues("resolve", "comment").Inc()
	s.publishComment(notifications.EventCommentUpdated, comment)
	return comment, nil
}

// DeleteComment removes a comment; the parent's comment_count is
// decremented in the same transaction. Allowed for a privileged identity or
// the comment's author.
func (s *ModerationService) DeleteComment(ctx context.Context, commentID string, actor identity.Identity) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.AuthorID != actor.ID && !s.provider.IsPrivileged(ctx, actor) {
		return models.NewPermissionError("only moderators or the author can delete this comment")
	}

	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		return err
	}
	observability.ModerationTransitions.WithLabelValues("delete", "comment").Inc()
	if s.notifier != nil {
		s.notifier.PublishChange(notifications.ChangeEvent{
			Kind:      notifications.EventCommentDeleted,
			PostID:    comment.PostID,
			CommentID: commentID,
			At:        time.Now().UTC(),
		})
	}
	return nil
}

func (s *ModerationService) publishPost(kind string, post *models.Post) {
	if s.notifier == nil {
		return
	}
	s.notifier.PublishChange(notifications.ChangeEvent{
		Kind:   kind,
		PostID: post.ID,
		Post:   post,
		At:     time.Now().UTC(),
	})
}

func (s *ModerationService) publishComment(kind string, comment *models.Comment) {
	if s.notifier == nil {
		return
	}
	s.notifier.PublishChange(notifications.ChangeEvent{
		Kind:      kind,
		PostID:    comment.PostID,
		CommentID: comment.ID,
		Comment:   comment,
		At:        time.Now().UTC(),
	})
}
