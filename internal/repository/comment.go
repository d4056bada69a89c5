package repository

import (
	"context"
	"time"

	"pawfeed/internal/cache"
	"pawfeed/internal/models"
	"pawfeed/internal/observability"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations.
// Creation and deletion adjust the parent post's comment_count inside the
// same transaction as the row mutation, so the compensating counter can
// never drift from the documents on a partial failure.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	ListByPost(ctx context.Context, postID string) ([]*models.Comment, error)
	MutateInTx(ctx context.Context, id string, fn func(*models.Comment) error) (*models.Comment, error)
	Delete(ctx context.Context, id string) error
}

type commentRepository struct {
	db     *gorm.DB
	logger *observability.RepoLogger
}

// NewCommentRepository creates a new comment repository.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db, logger: observability.NewRepoLogger("comments")}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if comment.Text == "" || comment.AuthorID == "" || comment.PostID == "" {
		return models.NewValidationError("comment is missing required fields")
	}
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	comment.CreatedAt = time.Now().UTC()

	err := runInTx(ctx, r.db, "comment_create", func(tx *gorm.DB) error {
		var post models.Post
		if err := lockForUpdate(tx).First(&post, "id = ?", comment.PostID).Error; err != nil {
			return err
		}
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ?", comment.PostID).
			UpdateColumn("comment_count", gorm.Expr("comment_count + 1")).Error
	})
	if err != nil {
		r.logger.LogError(ctx, err, "create")
		return translateError(err, "post", comment.PostID)
	}
	cache.InvalidatePost(ctx, comment.PostID)
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "comment", id)
	}
	return &comment, nil
}

func (r *commentRepository) ListByPost(ctx context.Context, postID string) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at DESC").
		Find(&comments).Error
	if err != nil {
		return nil, translateError(err, "comment", postID)
	}
	return comments, nil
}

// MutateInTx runs a read-modify-write on one comment document.
func (r *commentRepository) MutateInTx(ctx context.Context, id string, fn func(*models.Comment) error) (*models.Comment, error) {
	var comment models.Comment
	err := runInTx(ctx, r.db, "comment_mutate", func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&comment, "id = ?", id).Error; err != nil {
			return err
		}
		if err := fn(&comment); err != nil {
			return err
		}
		return tx.Save(&comment).Error
	})
	if err != nil {
		return nil, translateError(err, "comment", id)
	}
	return &comment, nil
}

// Delete removes the comment and decrements the parent's comment_count by
// exactly one in the same transaction.
func (r *commentRepository) Delete(ctx context.Context, id string) error {
	var postID string
	err := runInTx(ctx, r.db, "comment_delete", func(tx *gorm.DB) error {
		var comment models.Comment
		if err := lockForUpdate(tx).First(&comment, "id = ?", id).Error; err != nil {
			return err
		}
		postID = comment.PostID
		if err := tx.Delete(&models.Comment{}, "id = ?", id).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ?", comment.PostID).
			UpdateColumn("comment_count", gorm.Expr("comment_count - 1")).Error
	})
	if err != nil {
		return translateError(err, "comment", id)
	}
	r.logger.LogOp(ctx, "delete", map[string]interface{}{"comment_id": id, "post_id": postID})
	cache.InvalidatePost(ctx, postID)
	return nil
}
