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

// EngagementService owns the like ledger: per-identity membership plus the
// derived aggregate count, mutated atomically in the repository.
type EngagementService struct {
	postRepo repository.PostRepository
	notifier notifications.Publisher
}

// NewEngagementService returns a new EngagementService.
func NewEngagementService(postRepo repository.PostRepository, notifier notifications.Publisher) *EngagementService {
	return &EngagementService{postRepo: postRepo, notifier: notifier}
}

// ToggleLike flips actor's like on the post and returns the authoritative
// state. Two sequential calls by the same identity restore the original
// state; conflicting concurrent writers are retried inside the repository.
func (s *EngagementService) ToggleLike(ctx context.Context, postID string, actor identity.Identity) (*repository.ToggleResult, error) {
	if actor.ID == "" {
		return nil, models.NewPermissionError("sign in to like posts")
	}

	result, err := s.postRepo.ToggleLike(ctx, postID, actor.ID)
	if err != nil {
		observability.LikeToggles.WithLabelValues("error").Inc()
		return nil, err
	}
	if result.Liked {
		observability.LikeToggles.WithLabelValues("liked").Inc()
	} else {
		observability.LikeToggles.WithLabelValues("unliked").Inc()
	}

	s.publishPostUpdate(ctx, postID)
	return result, nil
}

// HasLiked answers "has identity liked this post" via the user_likes index.
func (s *EngagementService) HasLiked(ctx context.Context, actor identity.Identity, postID string) (bool, error) {
	if actor.ID == "" {
		return false, nil
	}
	return s.postRepo.HasLiked(ctx, actor.ID, postID)
}

// Share bumps the post's share counter.
func (s *EngagementService) Share(ctx context.Context, postID string, actor identity.Identity) error {
	if actor.ID == "" {
		return models.NewPermissionError("sign in to share posts")
	}
	if err := s.postRepo.BumpShareCount(ctx, postID); err != nil {
		return err
	}
	s.publishPostUpdate(ctx, postID)
	return nil
}

func (s *EngagementService) publishPostUpdate(ctx context.Context, postID string) {
	if s.notifier == nil {
		return
	}
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		// The push is best-effort; subscribers resynchronize on fetch.
		return
	}
	s.notifier.PublishChange(notifications.ChangeEvent{
		Kind:   notifications.EventPostUpdated,
		PostID: postID,
		Post:   post,
		At:     time.Now().UTC(),
	})
}
