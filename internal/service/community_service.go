package service

import (
	"context"

	"pawfeed/internal/identity"
	"pawfeed/internal/models"
	"pawfeed/internal/repository"
)

// CommunityService manages community membership on top of the repository's
// transactional member set.
type CommunityService struct {
	communityRepo repository.CommunityRepository
}

// NewCommunityService returns a new CommunityService.
func NewCommunityService(communityRepo repository.CommunityRepository) *CommunityService {
	return &CommunityService{communityRepo: communityRepo}
}

// CreateCommunity creates a community with the actor as owner and first
// member.
func (s *CommunityService) CreateCommunity(ctx context.Context, name string, actor identity.Identity) (*models.Community, error) {
	if actor.ID == "" {
		return nil, models.NewPermissionError("sign in to create a community")
	}
	if name == "" {
		return nil, models.NewValidationError("community name is required")
	}

	community := &models.Community{
		Name:    name,
		Members: models.IdentitySet{actor.ID: true},
		Moderators: models.ModeratorList{
			{Identity: actor.ID, Role: models.RoleOwner},
		},
	}
	if err := s.communityRepo.Create(ctx, community); err != nil {
		return nil, err
	}
	return community, nil
}

// GetCommunity fetches one community by id.
func (s *CommunityService) GetCommunity(ctx context.Context, id string) (*models.Community, error) {
	return s.communityRepo.GetByID(ctx, id)
}

// Join adds the actor to the community's member set.
func (s *CommunityService) Join(ctx context.Context, id string, actor identity.Identity) (*models.Community, error) {
	if actor.ID == "" {
		return nil, models.NewPermissionError("sign in to join a community")
	}
	if err := s.communityRepo.Join(ctx, id, actor.ID); err != nil {
		return nil, err
	}
	return s.communityRepo.GetByID(ctx, id)
}

// Leave removes the actor from the community's member set. Leaving a
// community the actor never joined is a no-op.
func (s *CommunityService) Leave(ctx context.Context, id string, actor identity.Identity) (*models.Community, error) {
	if actor.ID == "" {
		return nil, models.NewPermissionError("sign in to leave a community")
	}
	if err := s.communityRepo.Leave(ctx, id, actor.ID); err != nil {
		return nil, err
	}
	return s.communityRepo.GetByID(ctx, id)
}
