package repository

import (
	"context"
	"time"

	"pawfeed/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CommunityRepository manages community membership. Join and Leave keep
// member_count equal to |members| inside one transaction.
type CommunityRepository interface {
	Create(ctx context.Context, community *models.Community) error
	GetByID(ctx context.Context, id string) (*models.Community, error)
	Join(ctx context.Context, id, identity string) error
	Leave(ctx context.Context, id, identity string) error
	IsModerator(ctx context.Context, id, identity string) (bool, error)
}

type communityRepository struct {
	db *gorm.DB
}

// NewCommunityRepository creates a new community repository.
func NewCommunityRepository(db *gorm.DB) CommunityRepository {
	return &communityRepository{db: db}
}

func (r *communityRepository) Create(ctx context.Context, community *models.Community) error {
	if community.Name == "" {
		return models.NewValidationError("community name is required")
	}
	if community.ID == "" {
		community.ID = uuid.NewString()
	}
	community.CreatedAt = time.Now().UTC()
	if community.Members == nil {
		community.Members = models.IdentitySet{}
	}
	community.MemberCount = len(community.Members)
	if err := r.db.WithContext(ctx).Create(community).Error; err != nil {
		return translateError(err, "community", community.Name)
	}
	return nil
}

func (r *communityRepository) GetByID(ctx context.Context, id string) (*models.Community, error) {
	var community models.Community
	if err := r.db.WithContext(ctx).First(&community, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "community", id)
	}
	return &community, nil
}

func (r *communityRepository) mutateMembers(ctx context.Context, id string, fn func(models.IdentitySet)) error {
	err := runInTx(ctx, r.db, "community_members", func(tx *gorm.DB) error {
		var community models.Community
		if err := lockForUpdate(tx).First(&community, "id = ?", id).Error; err != nil {
			return err
		}
		if community.Members == nil {
			community.Members = models.IdentitySet{}
		}
		fn(community.Members)
		community.MemberCount = len(community.Members)
		return tx.Save(&community).Error
	})
	return translateError(err, "community", id)
}

func (r *communityRepository) Join(ctx context.Context, id, identity string) error {
	return r.mutateMembers(ctx, id, func(members models.IdentitySet) {
		members[identity] = true
	})
}

func (r *communityRepository) Leave(ctx context.Context, id, identity string) error {
	return r.mutateMembers(ctx, id, func(members models.IdentitySet) {
		delete(members, identity)
	})
}

func (r *communityRepository) IsModerator(ctx context.Context, id, identity string) (bool, error) {
	community, err := r.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return community.Moderators.Has(identity), nil
}
