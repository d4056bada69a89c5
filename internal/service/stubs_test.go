package service

import (
	"context"
	"sync"

	"pawfeed/internal/models"
	"pawfeed/internal/notifications"
	"pawfeed/internal/repository"
)

type postRepoStub struct {
	createFn     func(context.Context, *models.Post) error
	getByIDFn    func(context.Context, string) (*models.Post, error)
	pageFn       func(context.Context, string, *repository.PageCursor, int) ([]*models.Post, error)
	mutateFn     func(context.Context, string, func(*models.Post) error) (*models.Post, error)
	deleteFn     func(context.Context, string) error
	toggleLikeFn func(context.Context, string, string) (*repository.ToggleResult, error)
	hasLikedFn   func(context.Context, string, string) (bool, error)
	bumpShareFn  func(context.Context, string) error
	questionsFn  func(context.Context, int) ([]*models.Post, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id string) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) Page(ctx context.Context, tag string, before *repository.PageCursor, limit int) ([]*models.Post, error) {
	return s.pageFn(ctx, tag, before, limit)
}
func (s *postRepoStub) MutateInTx(ctx context.Context, id string, fn func(*models.Post) error) (*models.Post, error) {
	return s.mutateFn(ctx, id, fn)
}
func (s *postRepoStub) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) ToggleLike(ctx context.Context, postID, identity string) (*repository.ToggleResult, error) {
	return s.toggleLikeFn(ctx, postID, identity)
}
func (s *postRepoStub) HasLiked(ctx context.Context, identity, postID string) (bool, error) {
	return s.hasLikedFn(ctx, identity, postID)
}
func (s *postRepoStub) BumpShareCount(ctx context.Context, id string) error {
	return s.bumpShareFn(ctx, id)
}
func (s *postRepoStub) QuestionPosts(ctx context.Context, limit int) ([]*models.Post, error) {
	return s.questionsFn(ctx, limit)
}

// singlePostRepo backs the stub with one in-memory post so MutateInTx
// behaves like the real read-modify-write.
func singlePostRepo(post *models.Post) *postRepoStub {
	return &postRepoStub{
		createFn: func(_ context.Context, p *models.Post) error {
			if p.ID == "" {
				p.ID = "generated-id"
			}
			return nil
		},
		getByIDFn: func(_ context.Context, id string) (*models.Post, error) {
			if post == nil || post.ID != id {
				return nil, models.NewNotFoundError("post", id)
			}
			copied := *post
			return &copied, nil
		},
		mutateFn: func(_ context.Context, id string, fn func(*models.Post) error) (*models.Post, error) {
			if post == nil || post.ID != id {
				return nil, models.NewNotFoundError("post", id)
			}
			if err := fn(post); err != nil {
				return nil, err
			}
			copied := *post
			return &copied, nil
		},
		deleteFn: func(_ context.Context, id string) error {
			if post == nil || post.ID != id {
				return models.NewNotFoundError("post", id)
			}
			return nil
		},
		toggleLikeFn: func(_ context.Context, _, _ string) (*repository.ToggleResult, error) {
			return &repository.ToggleResult{Liked: true, NewCount: 1}, nil
		},
		hasLikedFn: func(_ context.Context, _, _ string) (bool, error) { return false, nil },
		bumpShareFn: func(_ context.Context, id string) error {
			if post == nil || post.ID != id {
				return models.NewNotFoundError("post", id)
			}
			post.ShareCount++
			return nil
		},
		questionsFn: func(_ context.Context, _ int) ([]*models.Post, error) {
			if post != nil && post.IsQuestion {
				return []*models.Post{post}, nil
			}
			return nil, nil
		},
	}
}

type commentRepoStub struct {
	createFn func(context.Context, *models.Comment) error
	getFn    func(context.Context, string) (*models.Comment, error)
	listFn   func(context.Context, string) ([]*models.Comment, error)
	mutateFn func(context.Context, string, func(*models.Comment) error) (*models.Comment, error)
	deleteFn func(context.Context, string) error
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	return s.getFn(ctx, id)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID string) ([]*models.Comment, error) {
	return s.listFn(ctx, postID)
}
func (s *commentRepoStub) MutateInTx(ctx context.Context, id string, fn func(*models.Comment) error) (*models.Comment, error) {
	return s.mutateFn(ctx, id, fn)
}
func (s *commentRepoStub) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

func singleCommentRepo(comment *models.Comment) *commentRepoStub {
	return &commentRepoStub{
		createFn: func(_ context.Context, c *models.Comment) error {
			if c.ID == "" {
				c.ID = "generated-id"
			}
			return nil
		},
		getFn: func(_ context.Context, id string) (*models.Comment, error) {
			if comment == nil || comment.ID != id {
				return nil, models.NewNotFoundError("comment", id)
			}
			copied := *comment
			return &copied, nil
		},
		listFn: func(_ context.Context, _ string) ([]*models.Comment, error) { return nil, nil },
		mutateFn: func(_ context.Context, id string, fn func(*models.Comment) error) (*models.Comment, error) {
			if comment == nil || comment.ID != id {
				return nil, models.NewNotFoundError("comment", id)
			}
			if err := fn(comment); err != nil {
				return nil, err
			}
			copied := *comment
			return &copied, nil
		},
		deleteFn: func(_ context.Context, id string) error {
			if comment == nil || comment.ID != id {
				return models.NewNotFoundError("comment", id)
			}
			return nil
		},
	}
}

// recordingPublisher captures published change events for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	events []notifications.ChangeEvent
}

func (p *recordingPublisher) PublishChange(event notifications.ChangeEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) kinds() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Kind
	}
	return out
}
