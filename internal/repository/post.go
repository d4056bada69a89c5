package repository

import (
	"context"
	"log/slog"
	"time"

	"pawfeed/internal/cache"
	"pawfeed/internal/models"
	"pawfeed/internal/observability"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PageCursor marks the ordering key of the last item of a fetched page.
// ID breaks ties between posts sharing a creation timestamp.
type PageCursor struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id"`
}

// ToggleResult is the authoritative outcome of a like toggle.
type ToggleResult struct {
	Liked    bool `json:"liked"`
	NewCount int  `json:"new_count"`
}

// PostRepository defines the interface for post data operations.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	Page(ctx context.Context, tag string, before *PageCursor, limit int) ([]*models.Post, error)
	MutateInTx(ctx context.Context, id string, fn func(*models.Post) error) (*models.Post, error)
	Delete(ctx context.Context, id string) error
	ToggleLike(ctx context.Context, postID, identity string) (*ToggleResult, error)
	HasLiked(ctx context.Context, identity, postID string) (bool, error)
	BumpShareCount(ctx context.Context, id string) error
	QuestionPosts(ctx context.Context, limit int) ([]*models.Post, error)
}

type postRepository struct {
	db     *gorm.DB
	logger *observability.RepoLogger
}

// NewPostRepository creates a new post repository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db, logger: observability.NewRepoLogger("posts")}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if post.Title == "" || post.AuthorID == "" {
		return models.NewValidationError("post is missing required fields")
	}
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	post.CreatedAt = time.Now().UTC()
	if post.Likes == nil {
		post.Likes = models.IdentitySet{}
	}
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		r.logger.LogError(ctx, err, "create")
		return translateError(err, "post", post.ID)
	}
	cache.InvalidateFeed(ctx)
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	err := cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, func() error {
		return r.db.WithContext(ctx).First(&post, "id = ?", id).Error
	})
	if err != nil {
		return nil, translateError(err, "post", id)
	}
	return &post, nil
}

// Page fetches one page ordered by created_at desc (id desc tie-break),
// optionally restricted to posts carrying tag. There is no snapshot
// isolation across pages; concurrent inserts may be skipped or repeated.
func (r *postRepository) Page(ctx context.Context, tag string, before *PageCursor, limit int) ([]*models.Post, error) {
	var posts []*models.Post
	q := r.db.WithContext(ctx).Model(&models.Post{})
	if tag != "" && tag != models.TagAll {
		// Tags are stored as a sorted JSON array; membership is an exact
		// quoted-token match. Tags may contain underscores, which LIKE
		// treats as a wildcard, so the pattern is escaped.
		q = q.Where(`tags LIKE ? ESCAPE '\'`, `%"`+escapeLike(tag)+`"%`)
	}
	if before != nil {
		q = q.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			before.CreatedAt, before.CreatedAt, before.ID)
	}
	err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&posts).Error
	if err != nil {
		r.logger.LogError(ctx, err, "page")
		return nil, translateError(err, "post", tag)
	}
	return posts, nil
}

// MutateInTx runs a read-modify-write on one post document. fn sees the
// freshest snapshot under lock; any error from fn aborts without a write.
func (r *postRepository) MutateInTx(ctx context.Context, id string, fn func(*models.Post) error) (*models.Post, error) {
	var post models.Post
	err := runInTx(ctx, r.db, "post_mutate", func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&post, "id = ?", id).Error; err != nil {
			return err
		}
		if err := fn(&post); err != nil {
			return err
		}
		return tx.Save(&post).Error
	})
	if err != nil {
		return nil, translateError(err, "post", id)
	}
	cache.InvalidatePost(ctx, id)
	return &post, nil
}

// Delete removes a post and all of its comments in one transaction, so a
// comment can never outlive its parent.
func (r *postRepository) Delete(ctx context.Context, id string) error {
	err := runInTx(ctx, r.db, "post_delete", func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Post{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return translateError(err, "post", id)
	}
	r.logger.LogOp(ctx, "delete", map[string]interface{}{"post_id": id})
	cache.InvalidatePost(ctx, id)
	cache.InvalidateFeed(ctx)
	return nil
}

// ToggleLike flips identity's membership in the post's likes map, recomputes
// like_count from the map, and updates the user_likes index — all in one
// transaction. No intermediate state is observable by other readers.
func (r *postRepository) ToggleLike(ctx context.Context, postID, identity string) (*ToggleResult, error) {
	var result ToggleResult
	err := runInTx(ctx, r.db, "toggle_like", func(tx *gorm.DB) error {
		var post models.Post
		if err := lockForUpdate(tx).First(&post, "id = ?", postID).Error; err != nil {
			return err
		}

		if post.Likes == nil {
			// Legacy row: the membership map predates this schema. Treat it
			// as empty and recompute the counter from the map; the stored
			// counter is discarded, not trusted.
			observability.GlobalLogger.WarnContext(ctx, "migrating legacy likes row",
				slog.String("post_id", post.ID),
				slog.Int("discarded_like_count", post.LikeCount),
			)
			post.Likes = models.IdentitySet{}
		}

		result.Liked = post.Likes.Toggle(identity)
		post.LikeCount = len(post.Likes)
		result.NewCount = post.LikeCount
		if err := tx.Save(&post).Error; err != nil {
			return err
		}

		var ul models.UserLikes
		err := lockForUpdate(tx).First(&ul, "identity = ?", identity).Error
		switch {
		case err == nil:
			if ul.LikedPosts == nil {
				ul.LikedPosts = models.IdentitySet{}
			}
			ul.LikedPosts.Toggle(postID)
			return tx.Save(&ul).Error
		case err == gorm.ErrRecordNotFound:
			ul = models.UserLikes{Identity: identity, LikedPosts: models.IdentitySet{}}
			ul.LikedPosts.Toggle(postID)
			return tx.Create(&ul).Error
		default:
			return err
		}
	})
	if err != nil {
		return nil, translateError(err, "post", postID)
	}
	cache.InvalidatePost(ctx, postID)
	return &result, nil
}

// HasLiked answers via the user_likes index without scanning post maps.
func (r *postRepository) HasLiked(ctx context.Context, identity, postID string) (bool, error) {
	var ul models.UserLikes
	err := r.db.WithContext(ctx).First(&ul, "identity = ?", identity).Error
	if err == gorm.ErrRecordNotFound {
		return false, nil
	}
	if err != nil {
		return false, translateError(err, "user_likes", identity)
	}
	return ul.LikedPosts.Has(postID), nil
}

func (r *postRepository) BumpShareCount(ctx context.Context, id string) error {
	err := runInTx(ctx, r.db, "bump_share", func(tx *gorm.DB) error {
		res := tx.Model(&models.Post{}).Where("id = ?", id).
			UpdateColumn("share_count", gorm.Expr("share_count + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return translateError(err, "post", id)
	}
	cache.InvalidatePost(ctx, id)
	return nil
}

// QuestionPosts backs the pending-questions view; the post is the single
// source of truth for question status.
func (r *postRepository) QuestionPosts(ctx context.Context, limit int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Where("is_question = ?", true).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, translateError(err, "post", "questions")
	}
	return posts, nil
}
