package service

import (
	"context"
	"sort"
	"time"

	"pawfeed/internal/identity"
	"pawfeed/internal/models"
	"pawfeed/internal/notifications"
	"pawfeed/internal/repository"
)

const maxCommentLen = 10000

// CommentService creates comments and maintains thread order: verified
// (moderator-authored) comments first, then recency within each block.
type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	provider    identity.Provider
	notifier    notifications.Publisher
}

// CreateCommentInput carries the fields for a new comment.
type CreateCommentInput struct {
	PostID string
	Text   string
}

// NewCommentService returns a new CommentService.
func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	provider identity.Provider,
	notifier notifications.Publisher,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		provider:    provider,
		notifier:    notifier,
	}
}

// CreateComment validates and stores a comment. is_verified is fixed at
// creation time from the author's privilege; the parent's comment_count is
// bumped in the same transaction as the insert.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput, actor identity.Identity) (*models.Comment, error) {
	if actor.ID == "" {
		return nil, models.NewPermissionError("sign in to comment")
	}
	if in.Text == "" {
		return nil, models.NewValidationError("Comment text is required")
	}
	if len(in.Text) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 10000 characters)")
	}

	comment := &models.Comment{
		PostID:         in.PostID,
		Text:           in.Text,
		AuthorID:       actor.ID,
		AuthorName:     actor.DisplayName,
		AuthorPhotoRef: actor.PhotoRef,
		IsVerified:     s.provider.IsPrivileged(ctx, actor),
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.PublishChange(notifications.ChangeEvent{
			Kind:      notifications.EventCommentAdded,
			PostID:    comment.PostID,
			CommentID: comment.ID,
			Comment:   comment,
			At:        time.Now().UTC(),
		})
	}
	return comment, nil
}

// ListThread returns the post's comments in thread order.
func (s *CommentService) ListThread(ctx context.Context, postID string) ([]*models.Comment, error) {
	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	return SortThread(comments), nil
}

// SortThread orders comments by is_verified desc, then created_at desc.
// The sort is stable so equal keys keep their incoming order.
func SortThread(comments []*models.Comment) []*models.Comment {
	out := make([]*models.Comment, len(comments))
	copy(out, comments)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsVerified != out[j].IsVerified {
			return out[i].IsVerified
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// verifiedBlockEnd returns the index of the first non-verified entry.
func verifiedBlockEnd(comments []*models.Comment) int {
	for i, c := range comments {
		if !c.IsVerified {
			return i
		}
	}
	return len(comments)
}

// MergeNew inserts a freshly created comment at the head of its block
// without refetching: verified comments go to the head of the verified
// block, others immediately after it.
func MergeNew(comments []*models.Comment, inserted *models.Comment) []*models.Comment {
	at := 0
	if !inserted.IsVerified {
		at = verifiedBlockEnd(comments)
	}
	out := make([]*models.Comment, 0, len(comments)+1)
	out = append(out, comments[:at]...)
	out = append(out, inserted)
	out = append(out, comments[at:]...)
	return out
}

// MergeRemote folds a pushed comment into the list by id: an existing entry
// is replaced in place, a new one is inserted via MergeNew. The result never
// holds duplicate ids.
func MergeRemote(comments []*models.Comment, incoming *models.Comment) []*models.Comment {
	for i, c := range comments {
		if c.ID == incoming.ID {
			out := make([]*models.Comment, len(comments))
			copy(out, comments)
			out[i] = incoming
			return out
		}
	}
	return MergeNew(comments, incoming)
}
