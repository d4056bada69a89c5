package server

import (
	"pawfeed/internal/models"

	"github.com/gofiber/fiber/v2"
)

type createCommunityRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleCreateCommunity(c *fiber.Ctx) error {
	var req createCommunityRequest
	if err := c.BodyParser(&req); err != nil {
		return respondErr(c, models.NewValidationError("Invalid request body"))
	}
	community, err := s.communityService.CreateCommunity(c.UserContext(), req.Name, actor(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(community)
}

func (s *Server) handleGetCommunity(c *fiber.Ctx) error {
	community, err := s.communityService.GetCommunity(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(community)
}

func (s *Server) handleJoinCommunity(c *fiber.Ctx) error {
	community, err := s.communityService.Join(c.UserContext(), c.Params("id"), actor(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(community)
}

func (s *Server) handleLeaveCommunity(c *fiber.Ctx) error {
	community, err := s.communityService.Leave(c.UserContext(), c.Params("id"), actor(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(community)
}
